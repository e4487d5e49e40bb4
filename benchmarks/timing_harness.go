// Package benchmarks provides self-contained RV32I benchmark programs and a
// harness that runs them through the functional hart and the timed core.
package benchmarks

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/timing/cache"
	"github.com/sarchlab/rv32sim/timing/core"
	"github.com/sarchlab/rv32sim/timing/pipeline"
)

// runLimit caps every benchmark run. A program that has not halted after
// this many instructions is reported as a failure instead of spinning.
const runLimit = 1000000

// defaultMemSize is the memory size used when a benchmark does not set one.
const defaultMemSize = 1024

// Result holds the timing results for a single benchmark run.
type Result struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// Instructions is the number of retired instructions
	Instructions uint64 `json:"instructions"`

	// Cycles is the total cycle count from the timing simulator
	Cycles uint64 `json:"cycles"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// Stalls is the number of front-end stall cycles
	Stalls uint64 `json:"stalls"`

	// Flushes is the number of pipeline flushes
	Flushes uint64 `json:"flushes"`

	// ICacheHits/Misses (if cache enabled)
	ICacheHits   uint64 `json:"icache_hits,omitempty"`
	ICacheMisses uint64 `json:"icache_misses,omitempty"`

	// DCacheHits/Misses (if cache enabled)
	DCacheHits   uint64 `json:"dcache_hits,omitempty"`
	DCacheMisses uint64 `json:"dcache_misses,omitempty"`

	// HaltReason is the reason the program stopped
	HaltReason string `json:"halt_reason"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Program is the RV32I machine code, loaded at address 0
	Program []byte

	// MemSize is the memory size for the run; 0 selects the default
	MemSize uint32

	// Setup prepares initial state (registers, data regions) before the run
	Setup func(regs *emu.RegFile, mem *emu.Memory)

	// Expected maps register numbers to the values they must hold after
	// the run
	Expected map[uint8]int32

	// ExpectedReason is the halt reason the program must end with
	ExpectedReason string
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// EnableICache enables instruction cache simulation
	EnableICache bool

	// EnableDCache enables data cache simulation
	EnableDCache bool

	// EnablePredictor enables dynamic branch prediction
	EnablePredictor bool

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose selects the detailed per-benchmark report over the
	// one-line-per-benchmark table
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		EnableICache:    true,
		EnableDCache:    true,
		EnablePredictor: false,
		Output:          os.Stdout,
		Verbose:         false,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results. Each benchmark is
// validated on the functional hart before the timed run; the first
// validation failure aborts the whole batch.
func (h *Harness) RunAll() ([]Result, error) {
	results := make([]Result, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result, err := h.runBenchmark(bench)
		if err != nil {
			return nil, fmt.Errorf("benchmark %s: %w", bench.Name, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// runBenchmark executes a single benchmark: a functional pass that checks
// the expected architectural state, then a timed pass that collects the
// statistics. Both passes must leave the expected values in the registers.
func (h *Harness) runBenchmark(bench Benchmark) (Result, error) {
	memory, err := h.newMemory(bench)
	if err != nil {
		return Result{}, err
	}

	hart := emu.NewHart(memory, emu.WithStdout(io.Discard))
	if bench.Setup != nil {
		bench.Setup(hart.Regs(), memory)
	}
	hart.Run(runLimit)

	if !hart.IsHalted() {
		return Result{}, fmt.Errorf("functional run: no halt within %d instructions", runLimit)
	}
	if bench.ExpectedReason != "" && hart.HaltReason() != bench.ExpectedReason {
		return Result{}, fmt.Errorf("functional run: halted with %q, want %q",
			hart.HaltReason(), bench.ExpectedReason)
	}
	if err := verifyRegs(bench, hart.Regs(), "functional"); err != nil {
		return Result{}, err
	}

	memory, err = h.newMemory(bench)
	if err != nil {
		return Result{}, err
	}

	c := core.NewCore(memory, h.coreOptions()...)
	if bench.Setup != nil {
		bench.Setup(c.Regs(), memory)
	}

	start := time.Now()
	c.Run(runLimit)
	wallTime := time.Since(start)

	if !c.Halted() {
		return Result{}, fmt.Errorf("timing run: no halt within %d instructions", runLimit)
	}
	if err := verifyRegs(bench, c.Regs(), "timing"); err != nil {
		return Result{}, err
	}

	stats := c.Stats()
	return Result{
		Name:         bench.Name,
		Description:  bench.Description,
		Instructions: stats.Instructions,
		Cycles:       stats.Cycles,
		CPI:          stats.CPI(),
		Stalls:       stats.Stalls,
		Flushes:      stats.Flushes,
		ICacheHits:   stats.ICacheHits,
		ICacheMisses: stats.ICacheMisses,
		DCacheHits:   stats.DCacheHits,
		DCacheMisses: stats.DCacheMisses,
		HaltReason:   c.HaltReason(),
		WallTime:     wallTime,
	}, nil
}

// newMemory builds a fresh memory with the benchmark image loaded at 0.
func (h *Harness) newMemory(bench Benchmark) (*emu.Memory, error) {
	size := bench.MemSize
	if size == 0 {
		size = defaultMemSize
	}
	memory := emu.NewMemory(size, emu.WithWarnOutput(io.Discard))
	if !memory.LoadImage(bench.Program) {
		return nil, fmt.Errorf("program (%d bytes) does not fit in %d bytes of memory",
			len(bench.Program), size)
	}
	return memory, nil
}

// coreOptions translates the harness configuration into core options.
func (h *Harness) coreOptions() []core.CoreOption {
	opts := []core.CoreOption{}
	if h.config.EnableICache {
		opts = append(opts, core.WithICache(cache.DefaultICacheConfig()))
	}
	if h.config.EnableDCache {
		opts = append(opts, core.WithDCache(cache.DefaultDCacheConfig()))
	}
	if h.config.EnablePredictor {
		opts = append(opts, core.WithBranchPredictor(pipeline.DefaultBranchPredictorConfig()))
	}
	return opts
}

// verifyRegs checks the expected register values after a run.
func verifyRegs(bench Benchmark, regs *emu.RegFile, phase string) error {
	nums := make([]int, 0, len(bench.Expected))
	for r := range bench.Expected {
		nums = append(nums, int(r))
	}
	sort.Ints(nums)

	for _, r := range nums {
		want := bench.Expected[uint8(r)]
		if got := regs.ReadReg(uint8(r)); got != want {
			return fmt.Errorf("%s run: x%d = %d (0x%08x), want %d (0x%08x)",
				phase, r, got, uint32(got), want, uint32(want))
		}
	}
	return nil
}

// PrintResults outputs benchmark results in a human-readable format. The
// default is a one-line-per-benchmark table; Verbose selects a detailed
// per-benchmark report.
func (h *Harness) PrintResults(results []Result) {
	if !h.config.Verbose {
		h.printTable(results)
		return
	}

	_, _ = fmt.Fprintln(h.config.Output, "=== rv32sim Timing Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Halt Reason: %s\n", r.HaltReason)
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles:     %d\n", r.Cycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions Retired: %d\n", r.Instructions)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:                  %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(h.config.Output, "  Stall Cycles:         %d\n", r.Stalls)
		_, _ = fmt.Fprintf(h.config.Output, "  Pipeline Flushes:     %d\n", r.Flushes)

		if r.ICacheHits > 0 || r.ICacheMisses > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- I-Cache ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Hits:   %d\n", r.ICacheHits)
			_, _ = fmt.Fprintf(h.config.Output, "  Misses: %d\n", r.ICacheMisses)
		}

		if r.DCacheHits > 0 || r.DCacheMisses > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- D-Cache ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Hits:   %d\n", r.DCacheHits)
			_, _ = fmt.Fprintf(h.config.Output, "  Misses: %d\n", r.DCacheMisses)
		}

		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// printTable writes the compact one-line-per-benchmark report.
func (h *Harness) printTable(results []Result) {
	_, _ = fmt.Fprintf(h.config.Output, "%-20s %12s %12s %8s %8s %8s\n",
		"name", "instructions", "cycles", "cpi", "stalls", "flushes")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%-20s %12d %12d %8.3f %8d %8d\n",
			r.Name, r.Instructions, r.Cycles, r.CPI, r.Stalls, r.Flushes)
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []Result) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,instructions,cycles,cpi,stalls,flushes,icache_hits,icache_misses,dcache_hits,dcache_misses")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%d,%d,%d\n",
			r.Name,
			r.Instructions,
			r.Cycles,
			r.CPI,
			r.Stalls,
			r.Flushes,
			r.ICacheHits,
			r.ICacheMisses,
			r.DCacheHits,
			r.DCacheMisses,
		)
	}
}

// Helper functions for building RV32I programs

// BuildProgram assembles instruction words into a little-endian byte image.
func BuildProgram(words ...uint32) []byte {
	program := make([]byte, 0, len(words)*4)
	for _, word := range words {
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, word)
		program = append(program, buf...)
	}
	return program
}

// Instruction encoding helpers

// encodeIType encodes an I-type instruction.
func encodeIType(opcode, funct3 uint32, rd, rs1 uint8, imm int32) uint32 {
	return uint32(imm&0xFFF)<<20 |
		uint32(rs1&0x1F)<<15 |
		funct3<<12 |
		uint32(rd&0x1F)<<7 |
		opcode
}

// encodeRType encodes an R-type instruction.
func encodeRType(funct7, funct3 uint32, rd, rs1, rs2 uint8) uint32 {
	return funct7<<25 |
		uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		funct3<<12 |
		uint32(rd&0x1F)<<7 |
		0b0110011
}

// encodeSType encodes an S-type (store) instruction.
func encodeSType(funct3 uint32, rs2, rs1 uint8, imm int32) uint32 {
	uimm := uint32(imm)
	return (uimm>>5&0x7F)<<25 |
		uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		funct3<<12 |
		(uimm&0x1F)<<7 |
		0b0100011
}

// encodeBType encodes a B-type (branch) instruction with a byte offset.
func encodeBType(funct3 uint32, rs1, rs2 uint8, offset int32) uint32 {
	uoff := uint32(offset)
	return (uoff>>12&0x1)<<31 |
		(uoff>>5&0x3F)<<25 |
		uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		funct3<<12 |
		(uoff>>1&0xF)<<8 |
		(uoff>>11&0x1)<<7 |
		0b1100011
}

// EncodeADDI encodes ADDI: rd = rs1 + imm12.
func EncodeADDI(rd, rs1 uint8, imm int32) uint32 {
	return encodeIType(0b0010011, 0b000, rd, rs1, imm)
}

// EncodeANDI encodes ANDI: rd = rs1 & imm12.
func EncodeANDI(rd, rs1 uint8, imm int32) uint32 {
	return encodeIType(0b0010011, 0b111, rd, rs1, imm)
}

// EncodeSLLI encodes SLLI: rd = rs1 << shamt.
func EncodeSLLI(rd, rs1 uint8, shamt uint32) uint32 {
	return encodeIType(0b0010011, 0b001, rd, rs1, int32(shamt&0x1F))
}

// EncodeSRLI encodes SRLI: rd = rs1 >> shamt (logical).
func EncodeSRLI(rd, rs1 uint8, shamt uint32) uint32 {
	return encodeIType(0b0010011, 0b101, rd, rs1, int32(shamt&0x1F))
}

// EncodeADD encodes ADD: rd = rs1 + rs2.
func EncodeADD(rd, rs1, rs2 uint8) uint32 {
	return encodeRType(0b0000000, 0b000, rd, rs1, rs2)
}

// EncodeSUB encodes SUB: rd = rs1 - rs2.
func EncodeSUB(rd, rs1, rs2 uint8) uint32 {
	return encodeRType(0b0100000, 0b000, rd, rs1, rs2)
}

// EncodeAND encodes AND: rd = rs1 & rs2.
func EncodeAND(rd, rs1, rs2 uint8) uint32 {
	return encodeRType(0b0000000, 0b111, rd, rs1, rs2)
}

// EncodeOR encodes OR: rd = rs1 | rs2.
func EncodeOR(rd, rs1, rs2 uint8) uint32 {
	return encodeRType(0b0000000, 0b110, rd, rs1, rs2)
}

// EncodeXOR encodes XOR: rd = rs1 ^ rs2.
func EncodeXOR(rd, rs1, rs2 uint8) uint32 {
	return encodeRType(0b0000000, 0b100, rd, rs1, rs2)
}

// EncodeLB encodes LB: rd = sign-extended byte at rs1+imm.
func EncodeLB(rd, rs1 uint8, imm int32) uint32 {
	return encodeIType(0b0000011, 0b000, rd, rs1, imm)
}

// EncodeLBU encodes LBU: rd = zero-extended byte at rs1+imm.
func EncodeLBU(rd, rs1 uint8, imm int32) uint32 {
	return encodeIType(0b0000011, 0b100, rd, rs1, imm)
}

// EncodeLHU encodes LHU: rd = zero-extended halfword at rs1+imm.
func EncodeLHU(rd, rs1 uint8, imm int32) uint32 {
	return encodeIType(0b0000011, 0b101, rd, rs1, imm)
}

// EncodeLW encodes LW: rd = word at rs1+imm.
func EncodeLW(rd, rs1 uint8, imm int32) uint32 {
	return encodeIType(0b0000011, 0b010, rd, rs1, imm)
}

// EncodeSB encodes SB: byte at rs1+imm = low byte of rs2.
func EncodeSB(rs2, rs1 uint8, imm int32) uint32 {
	return encodeSType(0b000, rs2, rs1, imm)
}

// EncodeSW encodes SW: word at rs1+imm = rs2.
func EncodeSW(rs2, rs1 uint8, imm int32) uint32 {
	return encodeSType(0b010, rs2, rs1, imm)
}

// EncodeBEQ encodes BEQ: branch to pc+offset when rs1 == rs2.
func EncodeBEQ(rs1, rs2 uint8, offset int32) uint32 {
	return encodeBType(0b000, rs1, rs2, offset)
}

// EncodeBNE encodes BNE: branch to pc+offset when rs1 != rs2.
func EncodeBNE(rs1, rs2 uint8, offset int32) uint32 {
	return encodeBType(0b001, rs1, rs2, offset)
}

// EncodeJAL encodes JAL: rd = pc+4, jump to pc+offset.
func EncodeJAL(rd uint8, offset int32) uint32 {
	uoff := uint32(offset)
	return (uoff>>20&0x1)<<31 |
		(uoff>>1&0x3FF)<<21 |
		(uoff>>11&0x1)<<20 |
		(uoff>>12&0xFF)<<12 |
		uint32(rd&0x1F)<<7 |
		0b1101111
}

// EncodeJALR encodes JALR: rd = pc+4, jump to (rs1+imm) with bit 0 cleared.
func EncodeJALR(rd, rs1 uint8, imm int32) uint32 {
	return encodeIType(0b1100111, 0b000, rd, rs1, imm)
}

// EncodeLUI encodes LUI: rd = imm20 << 12.
func EncodeLUI(rd uint8, imm20 uint32) uint32 {
	return (imm20&0xFFFFF)<<12 | uint32(rd&0x1F)<<7 | 0b0110111
}

// EncodeEBREAK encodes EBREAK, which halts the simulated machine.
func EncodeEBREAK() uint32 {
	return 0x00100073
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []Result `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// Version of the simulator
	Version string `json:"version"`

	// Config describes the benchmark configuration
	Config BenchmarkConfig `json:"config"`
}

// BenchmarkConfig describes the harness configuration used.
type BenchmarkConfig struct {
	ICacheEnabled    bool `json:"icache_enabled"`
	DCacheEnabled    bool `json:"dcache_enabled"`
	PredictorEnabled bool `json:"predictor_enabled"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	// TotalBenchmarks is the number of benchmarks run
	TotalBenchmarks int `json:"total_benchmarks"`

	// TotalCycles is the sum of all simulated cycles
	TotalCycles uint64 `json:"total_cycles"`

	// TotalInstructions is the sum of all instructions retired
	TotalInstructions uint64 `json:"total_instructions"`

	// AverageCPI is the average cycles per instruction
	AverageCPI float64 `json:"average_cpi"`

	// TotalWallTime is the total wall clock time for all benchmarks
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []Result) error {
	var totalCycles, totalInstructions uint64
	var totalWallTime time.Duration
	for _, r := range results {
		totalCycles += r.Cycles
		totalInstructions += r.Instructions
		totalWallTime += r.WallTime
	}

	avgCPI := float64(0)
	if totalInstructions > 0 {
		avgCPI = float64(totalCycles) / float64(totalInstructions)
	}

	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "0.1.0",
			Config: BenchmarkConfig{
				ICacheEnabled:    h.config.EnableICache,
				DCacheEnabled:    h.config.EnableDCache,
				PredictorEnabled: h.config.EnablePredictor,
			},
		},
		Results: results,
		Summary: ReportSummary{
			TotalBenchmarks:   len(results),
			TotalCycles:       totalCycles,
			TotalInstructions: totalInstructions,
			AverageCPI:        avgCPI,
			TotalWallTime:     totalWallTime,
		},
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
