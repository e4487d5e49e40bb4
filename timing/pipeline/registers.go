// Package pipeline provides the 5-stage pipeline implementation for timing simulation.
package pipeline

import "github.com/sarchlab/rv32sim/insts"

// IFIDRegister holds state between Fetch and Decode stages.
type IFIDRegister struct {
	// Valid indicates if this pipeline register contains valid data.
	Valid bool

	// PC is the program counter of the fetched instruction.
	PC uint32

	// InstructionWord is the raw 32-bit instruction word.
	InstructionWord uint32

	// PredictedTaken indicates if the branch predictor predicted taken.
	PredictedTaken bool

	// PredictedTarget is the predicted branch target (from BTB or early resolution).
	PredictedTarget uint32

	// EarlyResolved indicates if this was an unconditional jump resolved at fetch time.
	EarlyResolved bool
}

// Clear resets the IF/ID register to empty state.
func (r *IFIDRegister) Clear() {
	r.Valid = false
	r.PC = 0
	r.InstructionWord = 0
	r.PredictedTaken = false
	r.PredictedTarget = 0
	r.EarlyResolved = false
}

// IDEXRegister holds state between Decode and Execute stages.
type IDEXRegister struct {
	// Valid indicates if this pipeline register contains valid data.
	Valid bool

	// PC is the program counter of the instruction.
	PC uint32

	// Inst is the decoded instruction.
	Inst *insts.Instruction

	// Register values read from the register file.
	Rs1Value uint32
	Rs2Value uint32

	// Register numbers for hazard detection.
	Rd  uint8
	Rs1 uint8
	Rs2 uint8

	// Control signals.
	MemRead  bool // True for load instructions
	MemWrite bool // True for store instructions
	RegWrite bool // True if instruction writes to register
	MemToReg bool // True if result comes from memory (load)
	IsBranch bool // True for control transfers (branches and jumps)

	// Branch prediction info (propagated from IF/ID).
	PredictedTaken  bool   // Whether predicted taken
	PredictedTarget uint32 // Predicted target address
	EarlyResolved   bool   // Whether resolved at fetch time (unconditional jump)
}

// Clear resets the ID/EX register to empty state.
func (r *IDEXRegister) Clear() {
	r.Valid = false
	r.PC = 0
	r.Inst = nil
	r.Rs1Value = 0
	r.Rs2Value = 0
	r.Rd = 0
	r.Rs1 = 0
	r.Rs2 = 0
	r.MemRead = false
	r.MemWrite = false
	r.RegWrite = false
	r.MemToReg = false
	r.IsBranch = false
	r.PredictedTaken = false
	r.PredictedTarget = 0
	r.EarlyResolved = false
}

// EXMEMRegister holds state between Execute and Memory stages.
type EXMEMRegister struct {
	// Valid indicates if this pipeline register contains valid data.
	Valid bool

	// PC is the program counter of the instruction.
	PC uint32

	// Inst is the decoded instruction.
	Inst *insts.Instruction

	// ALU result (address for load/store, result for ALU ops).
	ALUResult uint32

	// Value to store for store instructions.
	StoreValue uint32

	// Destination register number.
	Rd uint8

	// Control signals (propagated from ID/EX).
	MemRead  bool
	MemWrite bool
	RegWrite bool
	MemToReg bool
}

// Clear resets the EX/MEM register to empty state.
func (r *EXMEMRegister) Clear() {
	r.Valid = false
	r.PC = 0
	r.Inst = nil
	r.ALUResult = 0
	r.StoreValue = 0
	r.Rd = 0
	r.MemRead = false
	r.MemWrite = false
	r.RegWrite = false
	r.MemToReg = false
}

// MEMWBRegister holds state between Memory and Writeback stages.
type MEMWBRegister struct {
	// Valid indicates if this pipeline register contains valid data.
	Valid bool

	// PC is the program counter of the instruction.
	PC uint32

	// Inst is the decoded instruction.
	Inst *insts.Instruction

	// ALU result (for ALU instructions).
	ALUResult uint32

	// Data read from memory (for load instructions), already extended.
	MemData uint32

	// Destination register number.
	Rd uint8

	// Control signals.
	RegWrite bool
	MemToReg bool // True if result comes from memory
}

// Clear resets the MEM/WB register to empty state.
func (r *MEMWBRegister) Clear() {
	r.Valid = false
	r.PC = 0
	r.Inst = nil
	r.ALUResult = 0
	r.MemData = 0
	r.Rd = 0
	r.RegWrite = false
	r.MemToReg = false
}
