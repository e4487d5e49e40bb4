package pipeline

import (
	"fmt"

	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/insts"
	"github.com/sarchlab/rv32sim/timing/cache"
	"github.com/sarchlab/rv32sim/timing/latency"
)

const (
	// minCacheLoadLatency is the minimum execute-stage latency for load
	// instructions when D-cache is enabled. The actual memory timing is
	// handled by the cache in the MEM stage, so we use 1 cycle here to
	// avoid double-counting latency.
	minCacheLoadLatency = 1

	// csrMhartid is the only CSR this machine implements.
	csrMhartid = 0xf14
)

// isUnconditionalJump checks if an instruction word is a JAL, whose target
// depends only on the PC and can be resolved at fetch time.
// Returns true and the target PC if it is, false otherwise.
// JALR is excluded: its target needs rs1, which is not read until execute.
func isUnconditionalJump(word uint32, pc uint32) (bool, uint32) {
	if word&0x7f != 0x6f {
		return false, 0
	}
	// J-type immediate: imm[20] = insn[31], imm[19:12] = insn[19:12],
	// imm[11] = insn[20], imm[10:1] = insn[30:21], sign-extended.
	v := (word>>31)<<20 |
		(word>>12&0xff)<<12 |
		(word>>20&0x1)<<11 |
		(word>>21&0x3ff)<<1
	offset := int32(v<<11) >> 11
	return true, pc + uint32(offset)
}

// haltReason reports whether an instruction halts the machine when it
// reaches the MEM stage, and why. The reason strings match the functional
// emulator so both models report termination identically.
func haltReason(inst *insts.Instruction) (string, bool) {
	if inst == nil {
		return "", false
	}

	switch inst.Op {
	case insts.OpEBREAK:
		return "EBREAK instruction", true
	case insts.OpCSRRS:
		if inst.CSR() != csrMhartid || inst.Rs1 != 0 {
			return "Illegal CSR in CRSS instruction", true
		}
		return "", false
	case insts.OpECALL,
		insts.OpCSRRW, insts.OpCSRRC,
		insts.OpCSRRWI, insts.OpCSRRSI, insts.OpCSRRCI,
		insts.OpUnknown:
		return "Illegal instruction", true
	}

	return "", false
}

// operandUse reports which source operands an instruction actually reads,
// for load-use hazard detection.
func operandUse(inst *insts.Instruction) (usesRs1, usesRs2 bool) {
	switch inst.Format {
	case insts.FormatR, insts.FormatS, insts.FormatB:
		return true, true
	case insts.FormatI:
		switch inst.Op {
		case insts.OpECALL, insts.OpEBREAK,
			insts.OpCSRRW, insts.OpCSRRS, insts.OpCSRRC,
			insts.OpCSRRWI, insts.OpCSRRSI, insts.OpCSRRCI:
			// System instructions either halt or read only the CSR.
			return false, false
		}
		return true, false
	default:
		return false, false
	}
}

// Statistics holds pipeline performance statistics.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions completed (retired).
	Instructions uint64
	// Stalls is the number of cycles the front end spent idle.
	Stalls uint64
	// Flushes is the number of pipeline flushes (due to branch mispredictions).
	Flushes uint64
	// ExecStalls is the number of stalls due to multi-cycle execution.
	ExecStalls uint64
	// MemStalls is the number of stalls due to data memory latency.
	MemStalls uint64
	// DataHazards is the number of RAW data hazards detected.
	DataHazards uint64
	// BranchPredictions is the total number of control transfers resolved.
	BranchPredictions uint64
	// BranchCorrect is the number of correct branch predictions.
	BranchCorrect uint64
	// BranchMispredictions is the number of branch mispredictions.
	BranchMispredictions uint64
}

// CPI returns the cycles per instruction.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// PipelineOption is a functional option for configuring the Pipeline.
type PipelineOption func(*Pipeline)

// WithLatencyTable sets a custom latency table for instruction timing.
// When set, multi-cycle operations will stall the pipeline appropriately.
func WithLatencyTable(table *latency.Table) PipelineOption {
	return func(p *Pipeline) {
		p.latencyTable = table
	}
}

// WithICache enables L1 instruction cache with the given configuration.
func WithICache(config cache.Config) PipelineOption {
	return func(p *Pipeline) {
		backing := cache.NewMemoryBacking(p.memory)
		icache := cache.New(config, backing)
		p.cachedFetchStage = NewCachedFetchStage(icache, p.memory)
		p.useICache = true
	}
}

// WithDCache enables L1 data cache with the given configuration.
func WithDCache(config cache.Config) PipelineOption {
	return func(p *Pipeline) {
		backing := cache.NewMemoryBacking(p.memory)
		dcache := cache.New(config, backing)
		p.cachedMemoryStage = NewCachedMemoryStage(dcache, p.memory)
		p.useDCache = true
	}
}

// WithDefaultCaches enables the L1 I-cache and D-cache with their default
// configurations.
func WithDefaultCaches() PipelineOption {
	return func(p *Pipeline) {
		// Initialize I-cache
		backing := cache.NewMemoryBacking(p.memory)
		icache := cache.New(cache.DefaultICacheConfig(), backing)
		p.cachedFetchStage = NewCachedFetchStage(icache, p.memory)
		p.useICache = true

		// Initialize D-cache
		dcache := cache.New(cache.DefaultDCacheConfig(), backing)
		p.cachedMemoryStage = NewCachedMemoryStage(dcache, p.memory)
		p.useDCache = true
	}
}

// WithBranchPredictor enables dynamic branch prediction with the given
// configuration. Without it, the pipeline statically predicts every branch
// not taken.
func WithBranchPredictor(config BranchPredictorConfig) PipelineOption {
	return func(p *Pipeline) {
		p.branchPredictor = NewBranchPredictor(config)
	}
}

// WithMhartid sets the hart ID reported by CSR reads.
func WithMhartid(id uint32) PipelineOption {
	return func(p *Pipeline) {
		p.mhartid = id
	}
}

// Pipeline implements a 5-stage pipelined RV32I core model.
// Stages: Fetch (IF) -> Decode (ID) -> Execute (EX) -> Memory (MEM) ->
// Writeback (WB).
type Pipeline struct {
	// Pipeline registers
	ifid  IFIDRegister
	idex  IDEXRegister
	exmem EXMEMRegister
	memwb MEMWBRegister

	// Pipeline stages
	fetchStage     *FetchStage
	decodeStage    *DecodeStage
	executeStage   *ExecuteStage
	memoryStage    *MemoryStage
	writebackStage *WritebackStage

	// Cached pipeline stages (optional)
	cachedFetchStage  *CachedFetchStage
	cachedMemoryStage *CachedMemoryStage
	useICache         bool
	useDCache         bool

	// Hazard detection
	hazardUnit *HazardUnit

	// Branch prediction; nil means static not-taken
	branchPredictor *BranchPredictor

	// Instruction timing
	latencyTable *latency.Table
	exLatency    uint64 // Remaining cycles for execute stage

	// Remaining front-end refill cycles after a redirect, beyond the two
	// flushed slots. Nonzero only when the configured taken-branch
	// penalty exceeds the natural refill time of this pipeline.
	redirectStall uint64

	// Shared resources
	regFile *emu.RegFile
	memory  *emu.Memory

	// Scratch instruction for the load-use peek at IF/ID
	peek insts.Instruction

	// Hart ID reported by CSR reads
	mhartid uint32

	// Program counter
	pc uint32

	// Statistics
	stats Statistics

	// Execution state
	halted    bool
	haltedWhy string
}

// NewPipeline creates a new 5-stage pipeline.
func NewPipeline(regFile *emu.RegFile, memory *emu.Memory, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		fetchStage:     NewFetchStage(memory),
		decodeStage:    NewDecodeStage(regFile),
		memoryStage:    NewMemoryStage(memory),
		writebackStage: NewWritebackStage(regFile),
		hazardUnit:     NewHazardUnit(),
		regFile:        regFile,
		memory:         memory,
	}

	// Apply options
	for _, opt := range opts {
		opt(p)
	}

	// The execute stage needs the hart ID, which options may set.
	p.executeStage = NewExecuteStage(p.mhartid)

	return p
}

// PC returns the current program counter.
func (p *Pipeline) PC() uint32 {
	return p.pc
}

// SetPC sets the program counter.
func (p *Pipeline) SetPC(pc uint32) {
	p.pc = pc
}

// GetIFID returns the IF/ID pipeline register.
func (p *Pipeline) GetIFID() *IFIDRegister {
	return &p.ifid
}

// GetIDEX returns the ID/EX pipeline register.
func (p *Pipeline) GetIDEX() *IDEXRegister {
	return &p.idex
}

// GetEXMEM returns the EX/MEM pipeline register.
func (p *Pipeline) GetEXMEM() *EXMEMRegister {
	return &p.exmem
}

// GetMEMWB returns the MEM/WB pipeline register.
func (p *Pipeline) GetMEMWB() *MEMWBRegister {
	return &p.memwb
}

// Stats returns pipeline statistics.
func (p *Pipeline) Stats() Statistics {
	return p.stats
}

// Halted returns true if the pipeline has halted.
func (p *Pipeline) Halted() bool {
	return p.halted
}

// HaltReason returns why the pipeline halted, or the empty string if it
// is still running.
func (p *Pipeline) HaltReason() string {
	return p.haltedWhy
}

// Run drives the pipeline until it halts or execLimit instructions have
// retired; a limit of 0 means no limit. Dirty cache lines are written
// back when the run ends so memory reflects the architectural state.
func (p *Pipeline) Run(execLimit uint64) {
	for !p.halted && (execLimit == 0 || p.stats.Instructions < execLimit) {
		p.Tick()
	}
	p.FlushCaches()
}

// RunCycles executes the pipeline for the specified number of cycles.
// Returns true if still running, false if halted.
func (p *Pipeline) RunCycles(cycles uint64) bool {
	for i := uint64(0); i < cycles && !p.halted; i++ {
		p.Tick()
	}
	return !p.halted
}

// Tick executes one pipeline cycle.
//
// The method models a classic 5-stage in-order pipeline (IF→ID→EX→MEM→WB).
//
// Hazard handling:
//   - Data forwarding from EX/MEM and MEM/WB stages to resolve RAW hazards
//   - Load-use stalls when a load result is needed immediately
//   - Optional branch prediction with 2-bit saturating counters and a BTB;
//     without a predictor every branch is statically predicted not taken
//   - A mispredicted branch flushes IF and ID
//
// Stages are evaluated in reverse order to compute new values before
// latching them into the pipeline registers at cycle end. The fetch stage
// is processed before decode because decode must not run on a cycle whose
// fetch is stalling on an I-cache miss.
func (p *Pipeline) Tick() {
	// Don't execute if halted
	if p.halted {
		return
	}

	p.stats.Cycles++

	// Detect hazards before executing stages
	forwarding := p.hazardUnit.DetectForwarding(&p.idex, &p.exmem, &p.memwb)

	// Track data hazards (RAW hazards resolved by forwarding)
	if forwarding.ForwardRs1 != ForwardNone || forwarding.ForwardRs2 != ForwardNone {
		p.stats.DataHazards++
	}

	// Detect load-use hazards between EX stage (ID/EX) and ID stage (IF/ID).
	// Load-use hazards require a stall because the loaded value isn't
	// available until after the MEM stage, so it can't be forwarded in time
	// for EX. ALU-to-ALU dependencies are handled by forwarding (no stall).
	loadUseHazard := false
	if p.idex.Valid && p.idex.MemRead && p.idex.Rd != 0 && p.ifid.Valid {
		// Peek at the next instruction to check for load-use hazard
		p.decodeStage.decoder.DecodeInto(p.ifid.InstructionWord, &p.peek)
		if p.peek.Op != insts.OpUnknown {
			usesRs1, usesRs2 := operandUse(&p.peek)

			loadUseHazard = p.hazardUnit.DetectLoadUseHazardDecoded(
				p.idex.Rd,
				p.peek.Rs1,
				p.peek.Rs2,
				usesRs1,
				usesRs2,
			)
			// Note: stall cycles for load-use hazards are counted in the
			// fetch stage when the pipeline is actually stalled (see
			// StallIF handling), so we do not increment p.stats.Stalls
			// here to avoid double-counting.
		}
	}

	// Branch resolution tracking
	branchMispredicted := false
	var branchTarget uint32

	// Stage 5: Writeback
	savedMEMWB := p.memwb
	p.writebackStage.Writeback(&p.memwb)
	if p.memwb.Valid {
		p.stats.Instructions++
	}

	// Stage 4: Memory
	var nextMEMWB MEMWBRegister
	memStall := false
	if p.exmem.Valid {
		if reason, halts := haltReason(p.exmem.Inst); halts {
			// The halting instruction retires; anything younger in the
			// pipeline is abandoned, matching the functional emulator
			// which stops at the faulting instruction.
			p.halted = true
			p.haltedWhy = reason
			p.stats.Instructions++
			return
		}

		var memResult MemoryResult
		if p.useDCache && p.cachedMemoryStage != nil {
			memResult, memStall = p.cachedMemoryStage.Access(&p.exmem)
			if memStall {
				p.stats.MemStalls++
			}
		} else {
			memResult = p.memoryStage.Access(&p.exmem)
		}

		if !memStall {
			nextMEMWB = MEMWBRegister{
				Valid:     true,
				PC:        p.exmem.PC,
				Inst:      p.exmem.Inst,
				ALUResult: p.exmem.ALUResult,
				MemData:   memResult.MemData,
				Rd:        p.exmem.Rd,
				RegWrite:  p.exmem.RegWrite,
				MemToReg:  p.exmem.MemToReg,
			}
		}
	}

	// Stage 3: Execute
	var nextEXMEM EXMEMRegister
	execStall := false
	if p.idex.Valid && !memStall {
		if p.latencyTable != nil && p.exLatency == 0 {
			if p.useDCache && p.latencyTable.IsLoadOp(p.idex.Inst) {
				p.exLatency = minCacheLoadLatency
			} else {
				p.exLatency = p.latencyTable.GetLatency(p.idex.Inst)
			}

			// Capture forwarded operands at issue time. The producers
			// drain out of the EX/MEM and MEM/WB forwarding windows
			// while a multi-cycle execution occupies this stage, so the
			// values must be latched now.
			p.idex.Rs1Value = p.hazardUnit.GetForwardedValue(
				forwarding.ForwardRs1, p.idex.Rs1Value, &p.exmem, &savedMEMWB)
			p.idex.Rs2Value = p.hazardUnit.GetForwardedValue(
				forwarding.ForwardRs2, p.idex.Rs2Value, &p.exmem, &savedMEMWB)
			forwarding.ForwardRs1 = ForwardNone
			forwarding.ForwardRs2 = ForwardNone
		}

		if p.exLatency > 0 {
			p.exLatency--
		}

		if p.exLatency > 0 {
			execStall = true
			p.stats.ExecStalls++
		} else {
			rs1Value := p.hazardUnit.GetForwardedValue(
				forwarding.ForwardRs1, p.idex.Rs1Value, &p.exmem, &savedMEMWB)
			rs2Value := p.hazardUnit.GetForwardedValue(
				forwarding.ForwardRs2, p.idex.Rs2Value, &p.exmem, &savedMEMWB)

			execResult := p.executeStage.Execute(&p.idex, rs1Value, rs2Value)

			// Verify the control-flow prediction captured at fetch time
			if p.idex.IsBranch {
				actualTaken := execResult.BranchTaken
				actualTarget := execResult.BranchTarget

				p.stats.BranchPredictions++

				// The prediction captured at fetch time reflects the PC
				// that was actually used for the next fetch.
				predictedTaken := p.idex.PredictedTaken
				predictedTarget := p.idex.PredictedTarget
				earlyResolved := p.idex.EarlyResolved

				wasMispredicted := false
				if actualTaken {
					if !predictedTaken {
						// Predicted not taken, but was taken
						wasMispredicted = true
					} else if predictedTarget != actualTarget {
						// Predicted taken but to wrong target
						wasMispredicted = true
					}
				} else {
					if predictedTaken {
						// Predicted taken, but was not taken
						wasMispredicted = true
					}
				}

				// Early-resolved jumps computed their exact target at
				// fetch, so they are never mispredicted.
				if earlyResolved && actualTaken {
					wasMispredicted = false
				}

				if p.branchPredictor != nil {
					// Train the predictor with the actual outcome
					p.branchPredictor.Update(p.idex.PC, actualTaken, actualTarget)
				}

				if wasMispredicted {
					p.stats.BranchMispredictions++
					branchMispredicted = true
					branchTarget = actualTarget
					if !actualTaken {
						branchTarget = p.idex.PC + 4 // Continue to next instruction
					}
				} else {
					p.stats.BranchCorrect++
					// Correct prediction - no flush needed
				}
			}

			nextEXMEM = EXMEMRegister{
				Valid:      true,
				PC:         p.idex.PC,
				Inst:       p.idex.Inst,
				ALUResult:  execResult.ALUResult,
				StoreValue: execResult.StoreValue,
				Rd:         p.idex.Rd,
				MemRead:    p.idex.MemRead,
				MemWrite:   p.idex.MemWrite,
				RegWrite:   p.idex.RegWrite,
				MemToReg:   p.idex.MemToReg,
			}
		}
	}

	// Compute stall signals.
	// Memory stalls also stall upstream stages. Only load-use hazards
	// require stalls; ALU-to-ALU dependencies are resolved through
	// forwarding. Mispredictions cause flushes, correct predictions don't.
	stallResult := p.hazardUnit.ComputeStalls(
		loadUseHazard || execStall || memStall, branchMispredicted)

	// Stage 1: Fetch (processed before decode to check for fetch stalls)
	var nextIFID IFIDRegister
	fetchStall := false
	if p.redirectStall > 0 {
		// The front end is still refilling after a redirect; fetch
		// idles and a bubble enters the pipeline.
		p.redirectStall--
		p.stats.Stalls++
	} else if !stallResult.StallIF && !stallResult.FlushIF && !memStall {
		var word uint32
		var ok bool

		if p.useICache && p.cachedFetchStage != nil {
			word, ok, fetchStall = p.cachedFetchStage.Fetch(p.pc)
			if fetchStall {
				p.stats.Stalls++
			}
		} else {
			word, ok = p.fetchStage.Fetch(p.pc)
		}

		if ok && !fetchStall {
			pred := Prediction{}
			earlyResolved := false
			if p.branchPredictor != nil {
				// Early jump resolution: JAL targets depend only on the
				// PC, so resolve them here instead of waiting for a BTB
				// hit. This eliminates their misprediction penalty.
				isJump, jumpTarget := isUnconditionalJump(word, p.pc)

				pred = p.branchPredictor.Predict(p.pc)

				if isJump {
					pred.Taken = true
					pred.Target = jumpTarget
					pred.TargetKnown = true
					earlyResolved = true
				}
			}

			nextIFID = IFIDRegister{
				Valid:           true,
				PC:              p.pc,
				InstructionWord: word,
				PredictedTaken:  pred.Taken,
				PredictedTarget: pred.Target,
				EarlyResolved:   earlyResolved,
			}

			// Speculative fetch: redirect PC based on prediction/resolution
			if pred.Taken && pred.TargetKnown {
				p.pc = pred.Target
			} else {
				p.pc += 4 // Default: sequential fetch
			}
		} else if fetchStall {
			nextIFID = p.ifid
		}
	} else if (stallResult.StallIF || memStall) && !stallResult.FlushIF {
		nextIFID = p.ifid
		p.stats.Stalls++
	}

	// Stage 2: Decode
	// Note: When fetch stalls, we must NOT decode because ifid is preserved
	// for next cycle. If we decode now, the instruction would be executed
	// twice.
	var nextIDEX IDEXRegister
	if p.ifid.Valid && !stallResult.StallID && !stallResult.FlushID && !execStall && !fetchStall {
		decResult := p.decodeStage.Decode(p.ifid.InstructionWord, p.ifid.PC)
		nextIDEX = IDEXRegister{
			Valid:           true,
			PC:              p.ifid.PC,
			Inst:            decResult.Inst,
			Rs1Value:        decResult.Rs1Value,
			Rs2Value:        decResult.Rs2Value,
			Rd:              decResult.Rd,
			Rs1:             decResult.Rs1,
			Rs2:             decResult.Rs2,
			MemRead:         decResult.MemRead,
			MemWrite:        decResult.MemWrite,
			RegWrite:        decResult.RegWrite,
			MemToReg:        decResult.MemToReg,
			IsBranch:        decResult.IsBranch,
			PredictedTaken:  p.ifid.PredictedTaken,
			PredictedTarget: p.ifid.PredictedTarget,
			EarlyResolved:   p.ifid.EarlyResolved,
		}
	} else if (stallResult.StallID || execStall || memStall || fetchStall) && !stallResult.FlushID {
		nextIDEX = p.idex
	}

	// Handle branch misprediction: update PC and flush the pipeline.
	// Only mispredictions cause flushes.
	if branchMispredicted {
		p.pc = branchTarget
		nextIFID.Clear()
		nextIDEX.Clear()
		p.stats.Flushes++

		// The two flushed slots are this pipeline's natural refill time;
		// a configured penalty beyond that idles fetch for the rest.
		if p.latencyTable != nil {
			if penalty := p.latencyTable.Config().BranchTakenPenalty; penalty > 2 {
				p.redirectStall = penalty - 2
			}
		}
	}

	if !memStall && !fetchStall {
		p.memwb = nextMEMWB
	} else {
		p.memwb.Clear()
	}
	if !memStall && !fetchStall {
		if execStall {
			// EX produced nothing this cycle and the instruction that
			// was here has already been handed to MEM/WB; holding it
			// would process it twice. A bubble enters MEM instead.
			p.exmem.Clear()
		} else {
			p.exmem = nextEXMEM
		}
	}
	if stallResult.InsertBubbleEX && !execStall && !memStall && !fetchStall {
		p.idex.Clear()
	} else if !memStall && !fetchStall {
		p.idex = nextIDEX
	}
	if !fetchStall {
		p.ifid = nextIFID
	}
}

// FlushCaches writes all dirty D-cache lines back to memory. The D-cache
// is write-back, so backing memory lags the architectural state until a
// flush. Call this before comparing or dumping memory contents.
func (p *Pipeline) FlushCaches() {
	if p.cachedMemoryStage != nil {
		p.cachedMemoryStage.cache.Flush()
	}
}

// Reset clears all pipeline state.
func (p *Pipeline) Reset() {
	p.ifid.Clear()
	p.idex.Clear()
	p.exmem.Clear()
	p.memwb.Clear()
	p.pc = 0
	p.stats = Statistics{}
	p.halted = false
	p.haltedWhy = ""
	p.exLatency = 0
	p.redirectStall = 0
	if p.cachedFetchStage != nil {
		p.cachedFetchStage.Reset()
		p.cachedFetchStage.cache.Reset()
	}
	if p.cachedMemoryStage != nil {
		p.cachedMemoryStage.Reset()
		p.cachedMemoryStage.cache.Reset()
	}
	if p.branchPredictor != nil {
		p.branchPredictor.Reset()
	}
}

// LatencyTable returns the current latency table, or nil if not set.
func (p *Pipeline) LatencyTable() *latency.Table {
	return p.latencyTable
}

// SetLatencyTable sets the latency table for instruction timing.
func (p *Pipeline) SetLatencyTable(table *latency.Table) {
	p.latencyTable = table
}

// ICacheStats returns I-cache statistics, or empty if I-cache not enabled.
func (p *Pipeline) ICacheStats() cache.Statistics {
	if p.cachedFetchStage != nil {
		return p.cachedFetchStage.CacheStats()
	}
	return cache.Statistics{}
}

// DCacheStats returns D-cache statistics, or empty if D-cache not enabled.
func (p *Pipeline) DCacheStats() cache.Statistics {
	if p.cachedMemoryStage != nil {
		return p.cachedMemoryStage.CacheStats()
	}
	return cache.Statistics{}
}

// UseICache returns true if I-cache is enabled.
func (p *Pipeline) UseICache() bool {
	return p.useICache
}

// UseDCache returns true if D-cache is enabled.
func (p *Pipeline) UseDCache() bool {
	return p.useDCache
}

// BranchPredictorStats returns predictor statistics, or empty if dynamic
// prediction is not enabled.
func (p *Pipeline) BranchPredictorStats() BranchPredictorStats {
	if p.branchPredictor != nil {
		return p.branchPredictor.Stats()
	}
	return BranchPredictorStats{}
}

// StallProfile returns a formatted string summarizing stall sources.
func (p *Pipeline) StallProfile() string {
	s := p.stats
	return fmt.Sprintf(
		"Stall Profile:\n"+
			"  Cycles:                %d\n"+
			"  Instructions:          %d\n"+
			"  CPI:                   %.3f\n"+
			"  Front-End Stalls:      %d\n"+
			"  Exec Stalls:           %d\n"+
			"  Mem Stalls:            %d\n"+
			"  Data Hazards:          %d\n"+
			"  Pipeline Flushes:      %d\n"+
			"  Branch Mispredictions: %d\n",
		s.Cycles,
		s.Instructions,
		s.CPI(),
		s.Stalls,
		s.ExecStalls,
		s.MemStalls,
		s.DataHazards,
		s.Flushes,
		s.BranchMispredictions,
	)
}
