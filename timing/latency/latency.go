// Package latency provides instruction timing models for cycle-level simulation.
//
// The latency values model a small in-order RV32 core and can be configured
// via TimingConfig.
package latency

import (
	"github.com/sarchlab/rv32sim/insts"
)

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// GetLatency returns the execution latency in cycles for the given instruction.
func (t *Table) GetLatency(inst *insts.Instruction) uint64 {
	if inst == nil {
		return 1
	}

	switch inst.Op {
	case insts.OpLUI, insts.OpAUIPC,
		insts.OpADDI, insts.OpSLTI, insts.OpSLTIU,
		insts.OpXORI, insts.OpORI, insts.OpANDI,
		insts.OpSLLI, insts.OpSRLI, insts.OpSRAI,
		insts.OpADD, insts.OpSUB, insts.OpSLL,
		insts.OpSLT, insts.OpSLTU, insts.OpXOR,
		insts.OpSRL, insts.OpSRA, insts.OpOR, insts.OpAND:
		return t.config.ALULatency

	case insts.OpBEQ, insts.OpBNE, insts.OpBLT,
		insts.OpBGE, insts.OpBLTU, insts.OpBGEU:
		return t.config.BranchLatency

	case insts.OpJAL, insts.OpJALR:
		return t.config.JumpLatency

	case insts.OpLB, insts.OpLH, insts.OpLW, insts.OpLBU, insts.OpLHU:
		return t.config.LoadLatency

	case insts.OpSB, insts.OpSH, insts.OpSW:
		return t.config.StoreLatency

	case insts.OpECALL, insts.OpEBREAK,
		insts.OpCSRRW, insts.OpCSRRS, insts.OpCSRRC,
		insts.OpCSRRWI, insts.OpCSRRSI, insts.OpCSRRCI:
		return t.config.SystemLatency

	default:
		return 1
	}
}

// GetMinLatency returns the minimum execution latency for variable-latency operations.
func (t *Table) GetMinLatency(inst *insts.Instruction) uint64 {
	if inst == nil {
		return 1
	}

	// Base RV32I instructions all have fixed latency. This method is for
	// future M-extension multiply/divide support.
	return t.GetLatency(inst)
}

// GetMaxLatency returns the maximum execution latency for variable-latency operations.
func (t *Table) GetMaxLatency(inst *insts.Instruction) uint64 {
	if inst == nil {
		return 1
	}

	// Base RV32I instructions all have fixed latency.
	return t.GetLatency(inst)
}

// IsMemoryOp returns true if the instruction accesses memory.
func (t *Table) IsMemoryOp(inst *insts.Instruction) bool {
	return t.IsLoadOp(inst) || t.IsStoreOp(inst)
}

// IsLoadOp returns true if the instruction is a load operation.
func (t *Table) IsLoadOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	switch inst.Op {
	case insts.OpLB, insts.OpLH, insts.OpLW, insts.OpLBU, insts.OpLHU:
		return true
	default:
		return false
	}
}

// IsStoreOp returns true if the instruction is a store operation.
func (t *Table) IsStoreOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	switch inst.Op {
	case insts.OpSB, insts.OpSH, insts.OpSW:
		return true
	default:
		return false
	}
}

// IsBranchOp returns true if the instruction is a conditional branch.
func (t *Table) IsBranchOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	switch inst.Op {
	case insts.OpBEQ, insts.OpBNE, insts.OpBLT,
		insts.OpBGE, insts.OpBLTU, insts.OpBGEU:
		return true
	default:
		return false
	}
}

// IsJumpOp returns true if the instruction is an unconditional jump.
func (t *Table) IsJumpOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Op == insts.OpJAL || inst.Op == insts.OpJALR
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
