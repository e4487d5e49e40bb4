package pipeline

import (
	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/insts"
	"github.com/sarchlab/rv32sim/timing/latency"
)

// FastTiming provides a simplified timing simulation optimized for speed.
// It executes instructions on the functional hart, so architectural results
// are exact, and charges each instruction its table latency plus a redirect
// penalty for taken control transfers. There is no pipeline overlap, hazard,
// or cache modeling.
//
// Note on CPI accuracy: the CPI reported by fast timing reflects the
// latency-weighted instruction mix, not pipeline-modeled CPI.
type FastTiming struct {
	hart         *emu.Hart
	memory       *emu.Memory
	decoder      *insts.Decoder
	latencyTable *latency.Table
	peek         insts.Instruction

	cycleCount      uint64
	maxInstructions uint64 // 0 means no limit
	limitReached    bool
}

// FastTimingOption configures fast timing simulation.
type FastTimingOption func(*FastTiming)

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) FastTimingOption {
	return func(ft *FastTiming) {
		ft.maxInstructions = max
	}
}

// NewFastTiming creates a fast timing simulation executing from memory.
func NewFastTiming(memory *emu.Memory, latencyTable *latency.Table, opts ...FastTimingOption) *FastTiming {
	ft := &FastTiming{
		hart:         emu.NewHart(memory),
		memory:       memory,
		decoder:      insts.NewDecoder(),
		latencyTable: latencyTable,
	}

	for _, opt := range opts {
		opt(ft)
	}

	return ft
}

// Run executes until the program halts or the instruction limit is
// reached. x2 is initialized to the memory size so programs start with a
// usable stack pointer.
func (ft *FastTiming) Run() {
	ft.hart.Regs().WriteReg(2, int32(ft.memory.Size()))
	for !ft.Halted() {
		ft.Tick()
	}
}

// Tick executes one instruction and charges its latency.
func (ft *FastTiming) Tick() {
	if ft.Halted() {
		return
	}
	if ft.maxInstructions > 0 && ft.hart.InsnCounter() >= ft.maxInstructions {
		ft.limitReached = true
		return
	}

	pc := ft.hart.PC()
	if pc+4 > ft.memory.Size() || pc+4 < pc {
		// Fetch out of range: the hart will warn and halt on the zero
		// word it reads back. Charge the minimum one cycle.
		ft.cycleCount++
	} else {
		ft.decoder.DecodeInto(ft.memory.Read32(pc), &ft.peek)
		ft.cycleCount += ft.latencyTable.GetLatency(&ft.peek)
	}

	ft.hart.Tick("")

	// A taken branch or jump redirects the front end.
	if !ft.hart.IsHalted() && ft.hart.PC() != pc+4 {
		ft.cycleCount += ft.latencyTable.Config().BranchTakenPenalty
	}
}

// Halted reports whether execution has stopped, either because the hart
// halted or because the instruction limit was reached.
func (ft *FastTiming) Halted() bool {
	return ft.limitReached || ft.hart.IsHalted()
}

// HaltReason describes why the hart halted, or "none" while it is still
// running.
func (ft *FastTiming) HaltReason() string {
	return ft.hart.HaltReason()
}

// Regs exposes the register file for result validation.
func (ft *FastTiming) Regs() *emu.RegFile {
	return ft.hart.Regs()
}

// Stats returns simulation statistics. Only Cycles and Instructions are
// meaningful: fast timing has no stall or prediction tracking.
func (ft *FastTiming) Stats() Statistics {
	return Statistics{
		Cycles:       ft.cycleCount,
		Instructions: ft.hart.InsnCounter(),
	}
}
