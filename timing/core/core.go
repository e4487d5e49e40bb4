// Package core provides the cycle-accurate CPU core model.
// It assembles a register file, memory, and the 5-stage pipeline with
// optional caches and branch prediction behind a high-level interface.
package core

import (
	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/timing/cache"
	"github.com/sarchlab/rv32sim/timing/latency"
	"github.com/sarchlab/rv32sim/timing/pipeline"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// Stalls is the number of stall cycles.
	Stalls uint64
	// Flushes is the number of pipeline flushes.
	Flushes uint64

	// Cache hit and miss counters. All zero when the corresponding
	// cache is disabled.
	ICacheHits   uint64
	ICacheMisses uint64
	DCacheHits   uint64
	DCacheMisses uint64
}

// CPI returns the cycles per instruction.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

type coreConfig struct {
	timing    *latency.TimingConfig
	icache    *cache.Config
	dcache    *cache.Config
	predictor *pipeline.BranchPredictorConfig
	mhartid   uint32
}

// CoreOption configures a Core at construction time.
type CoreOption func(*coreConfig)

// WithTimingConfig sets the instruction latency configuration. Without it
// the core uses the default timing values.
func WithTimingConfig(config *latency.TimingConfig) CoreOption {
	return func(c *coreConfig) {
		c.timing = config
	}
}

// WithICache enables the L1 instruction cache.
func WithICache(config cache.Config) CoreOption {
	return func(c *coreConfig) {
		c.icache = &config
	}
}

// WithDCache enables the L1 data cache.
func WithDCache(config cache.Config) CoreOption {
	return func(c *coreConfig) {
		c.dcache = &config
	}
}

// WithDefaultCaches enables both L1 caches with their default
// configurations.
func WithDefaultCaches() CoreOption {
	return func(c *coreConfig) {
		icache := cache.DefaultICacheConfig()
		dcache := cache.DefaultDCacheConfig()
		c.icache = &icache
		c.dcache = &dcache
	}
}

// WithBranchPredictor enables dynamic branch prediction.
func WithBranchPredictor(config pipeline.BranchPredictorConfig) CoreOption {
	return func(c *coreConfig) {
		c.predictor = &config
	}
}

// WithMhartid sets the hart ID reported by CSR reads.
func WithMhartid(id uint32) CoreOption {
	return func(c *coreConfig) {
		c.mhartid = id
	}
}

// Core represents a cycle-accurate CPU core model.
// It owns its register file; the memory holding the program is shared
// with the caller.
type Core struct {
	// Pipeline is the underlying 5-stage pipeline.
	Pipeline *pipeline.Pipeline

	regFile *emu.RegFile
	memory  *emu.Memory
}

// NewCore creates a new Core executing from the given memory.
func NewCore(memory *emu.Memory, opts ...CoreOption) *Core {
	config := coreConfig{
		timing: latency.DefaultTimingConfig(),
	}
	for _, opt := range opts {
		opt(&config)
	}

	pipeOpts := []pipeline.PipelineOption{
		pipeline.WithLatencyTable(latency.NewTableWithConfig(config.timing)),
		pipeline.WithMhartid(config.mhartid),
	}
	if config.icache != nil {
		pipeOpts = append(pipeOpts, pipeline.WithICache(*config.icache))
	}
	if config.dcache != nil {
		pipeOpts = append(pipeOpts, pipeline.WithDCache(*config.dcache))
	}
	if config.predictor != nil {
		pipeOpts = append(pipeOpts, pipeline.WithBranchPredictor(*config.predictor))
	}

	regFile := emu.NewRegFile()
	return &Core{
		Pipeline: pipeline.NewPipeline(regFile, memory, pipeOpts...),
		regFile:  regFile,
		memory:   memory,
	}
}

// PC returns the current program counter.
func (c *Core) PC() uint32 {
	return c.Pipeline.PC()
}

// SetPC sets the program counter.
func (c *Core) SetPC(pc uint32) {
	c.Pipeline.SetPC(pc)
}

// Regs exposes the core's register file.
func (c *Core) Regs() *emu.RegFile {
	return c.regFile
}

// Memory returns the memory the core executes from.
func (c *Core) Memory() *emu.Memory {
	return c.memory
}

// Tick executes one pipeline cycle.
func (c *Core) Tick() {
	c.Pipeline.Tick()
}

// Halted returns true if the core has halted.
func (c *Core) Halted() bool {
	return c.Pipeline.Halted()
}

// HaltReason returns why the core halted, or the empty string if it is
// still running.
func (c *Core) HaltReason() string {
	return c.Pipeline.HaltReason()
}

// Run drives the core until it halts or execLimit instructions have
// retired; a limit of 0 means no limit. x2 is initialized to the memory
// size so programs start with a usable stack pointer.
func (c *Core) Run(execLimit uint64) {
	c.regFile.WriteReg(2, int32(c.memory.Size()))
	c.Pipeline.Run(execLimit)
}

// RunCycles executes the core for the specified number of cycles.
// Returns true if still running, false if halted.
func (c *Core) RunCycles(cycles uint64) bool {
	return c.Pipeline.RunCycles(cycles)
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	pipeStats := c.Pipeline.Stats()
	icacheStats := c.Pipeline.ICacheStats()
	dcacheStats := c.Pipeline.DCacheStats()
	return Stats{
		Cycles:       pipeStats.Cycles,
		Instructions: pipeStats.Instructions,
		Stalls:       pipeStats.Stalls,
		Flushes:      pipeStats.Flushes,
		ICacheHits:   icacheStats.Hits,
		ICacheMisses: icacheStats.Misses,
		DCacheHits:   dcacheStats.Hits,
		DCacheMisses: dcacheStats.Misses,
	}
}

// Reset clears all core state, including the register file.
func (c *Core) Reset() {
	c.Pipeline.Reset()
	c.regFile.Reset()
}
