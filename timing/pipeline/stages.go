package pipeline

import (
	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/insts"
)

// FetchStage handles instruction fetch from memory.
type FetchStage struct {
	memory *emu.Memory
}

// NewFetchStage creates a new fetch stage.
func NewFetchStage(memory *emu.Memory) *FetchStage {
	return &FetchStage{
		memory: memory,
	}
}

// Fetch reads the instruction at the given PC. Fetches past the end of
// memory return 0, which decodes as an illegal instruction; speculative
// wrong-path fetches must not trip the memory's address warnings.
func (s *FetchStage) Fetch(pc uint32) (uint32, bool) {
	if pc+4 > s.memory.Size() || pc+4 < pc {
		return 0, true
	}
	word := s.memory.Read32(pc)
	return word, true
}

// DecodeStage handles instruction decode and register read.
type DecodeStage struct {
	regFile *emu.RegFile
	decoder *insts.Decoder
}

// NewDecodeStage creates a new decode stage.
func NewDecodeStage(regFile *emu.RegFile) *DecodeStage {
	return &DecodeStage{
		regFile: regFile,
		decoder: insts.NewDecoder(),
	}
}

// DecodeResult holds the result of the decode stage.
type DecodeResult struct {
	Inst     *insts.Instruction
	Rs1Value uint32
	Rs2Value uint32

	// Destination and source registers.
	Rd  uint8
	Rs1 uint8
	Rs2 uint8

	// Control signals.
	MemRead  bool
	MemWrite bool
	RegWrite bool
	MemToReg bool
	IsBranch bool
}

// Decode decodes the instruction and reads register values.
func (s *DecodeStage) Decode(word uint32, pc uint32) DecodeResult {
	inst := s.decoder.Decode(word)
	result := DecodeResult{
		Inst: inst,
		Rd:   inst.Rd,
		Rs1:  inst.Rs1,
		Rs2:  inst.Rs2,
	}

	// Read register values.
	result.Rs1Value = uint32(s.regFile.ReadReg(inst.Rs1))
	result.Rs2Value = uint32(s.regFile.ReadReg(inst.Rs2))

	// Set control signals based on instruction type.
	switch inst.Format {
	case insts.FormatR, insts.FormatU:
		result.RegWrite = inst.Rd != 0 // Don't write to x0
	case insts.FormatI:
		switch inst.Op {
		case insts.OpLB, insts.OpLH, insts.OpLW, insts.OpLBU, insts.OpLHU:
			result.MemRead = true
			result.MemToReg = true
			result.RegWrite = inst.Rd != 0
		case insts.OpJALR:
			result.IsBranch = true
			result.RegWrite = inst.Rd != 0
		case insts.OpCSRRS:
			// The only system instruction that can retire with a
			// result; the rest halt the pipeline in MEM.
			result.RegWrite = inst.Rd != 0
		case insts.OpECALL, insts.OpEBREAK,
			insts.OpCSRRW, insts.OpCSRRC,
			insts.OpCSRRWI, insts.OpCSRRSI, insts.OpCSRRCI:
			// No register or memory effects before the halt.
		default:
			result.RegWrite = inst.Rd != 0
		}
	case insts.FormatS:
		result.MemWrite = true
	case insts.FormatB:
		result.IsBranch = true
	case insts.FormatJ:
		result.IsBranch = true
		result.RegWrite = inst.Rd != 0
	}

	return result
}

// ExecuteStage handles ALU operations, branch resolution, and address
// calculation.
type ExecuteStage struct {
	mhartid uint32
}

// NewExecuteStage creates a new execute stage.
func NewExecuteStage(mhartid uint32) *ExecuteStage {
	return &ExecuteStage{
		mhartid: mhartid,
	}
}

// ExecuteResult holds the result of the execute stage.
type ExecuteResult struct {
	ALUResult  uint32
	StoreValue uint32

	// Branch result.
	BranchTaken  bool
	BranchTarget uint32
}

// Execute performs ALU operations, branch resolution, or address
// calculation. Source operands arrive already forwarded.
func (s *ExecuteStage) Execute(idex *IDEXRegister, forwardedRs1, forwardedRs2 uint32) ExecuteResult {
	result := ExecuteResult{}
	inst := idex.Inst

	if inst == nil {
		return result
	}

	rs1Val := forwardedRs1
	rs2Val := forwardedRs2

	switch inst.Op {
	case insts.OpLUI:
		result.ALUResult = uint32(inst.ImmU)
	case insts.OpAUIPC:
		result.ALUResult = idex.PC + uint32(inst.ImmU)

	case insts.OpADDI:
		result.ALUResult = rs1Val + uint32(inst.ImmI)
	case insts.OpSLTI:
		if int32(rs1Val) < inst.ImmI {
			result.ALUResult = 1
		}
	case insts.OpSLTIU:
		if rs1Val < uint32(inst.ImmI) {
			result.ALUResult = 1
		}
	case insts.OpXORI:
		result.ALUResult = rs1Val ^ uint32(inst.ImmI)
	case insts.OpORI:
		result.ALUResult = rs1Val | uint32(inst.ImmI)
	case insts.OpANDI:
		result.ALUResult = rs1Val & uint32(inst.ImmI)
	case insts.OpSLLI:
		result.ALUResult = rs1Val << inst.Shamt()
	case insts.OpSRLI:
		result.ALUResult = rs1Val >> inst.Shamt()
	case insts.OpSRAI:
		result.ALUResult = uint32(int32(rs1Val) >> inst.Shamt())

	case insts.OpADD:
		result.ALUResult = rs1Val + rs2Val
	case insts.OpSUB:
		result.ALUResult = rs1Val - rs2Val
	case insts.OpSLL:
		result.ALUResult = rs1Val << (rs2Val & 0x1f)
	case insts.OpSLT:
		if int32(rs1Val) < int32(rs2Val) {
			result.ALUResult = 1
		}
	case insts.OpSLTU:
		if rs1Val < rs2Val {
			result.ALUResult = 1
		}
	case insts.OpXOR:
		result.ALUResult = rs1Val ^ rs2Val
	case insts.OpSRL:
		result.ALUResult = rs1Val >> (rs2Val & 0x1f)
	case insts.OpSRA:
		result.ALUResult = uint32(int32(rs1Val) >> (rs2Val & 0x1f))
	case insts.OpOR:
		result.ALUResult = rs1Val | rs2Val
	case insts.OpAND:
		result.ALUResult = rs1Val & rs2Val

	case insts.OpLB, insts.OpLH, insts.OpLW, insts.OpLBU, insts.OpLHU:
		// Address calculation; the access happens in MEM.
		result.ALUResult = rs1Val + uint32(inst.ImmI)
	case insts.OpSB, insts.OpSH, insts.OpSW:
		result.ALUResult = rs1Val + uint32(inst.ImmS)
		result.StoreValue = rs2Val

	case insts.OpBEQ:
		result.BranchTaken = rs1Val == rs2Val
	case insts.OpBNE:
		result.BranchTaken = rs1Val != rs2Val
	case insts.OpBLT:
		result.BranchTaken = int32(rs1Val) < int32(rs2Val)
	case insts.OpBGE:
		result.BranchTaken = int32(rs1Val) >= int32(rs2Val)
	case insts.OpBLTU:
		result.BranchTaken = rs1Val < rs2Val
	case insts.OpBGEU:
		result.BranchTaken = rs1Val >= rs2Val

	case insts.OpJAL:
		result.BranchTaken = true
		result.BranchTarget = idex.PC + uint32(inst.ImmJ)
		result.ALUResult = idex.PC + 4 // Return address
	case insts.OpJALR:
		result.BranchTaken = true
		result.BranchTarget = (rs1Val + uint32(inst.ImmI)) & 0xfffffffe
		result.ALUResult = idex.PC + 4 // Return address

	case insts.OpCSRRS:
		// Only the mhartid read form retires; anything else halts in MEM.
		result.ALUResult = s.mhartid
	}

	if result.BranchTaken && inst.Format == insts.FormatB {
		result.BranchTarget = idex.PC + uint32(inst.ImmB)
	}

	return result
}

// loadSize returns the access width in bytes of a load operation.
func loadSize(op insts.Op) int {
	switch op {
	case insts.OpLB, insts.OpLBU:
		return 1
	case insts.OpLH, insts.OpLHU:
		return 2
	default:
		return 4
	}
}

// storeSize returns the access width in bytes of a store operation.
func storeSize(op insts.Op) int {
	switch op {
	case insts.OpSB:
		return 1
	case insts.OpSH:
		return 2
	default:
		return 4
	}
}

// extendLoad applies the sign or zero extension a load performs on the
// raw value read from memory.
func extendLoad(op insts.Op, raw uint32) uint32 {
	switch op {
	case insts.OpLB:
		return uint32(int32(int8(raw)))
	case insts.OpLH:
		return uint32(int32(int16(raw)))
	case insts.OpLBU:
		return raw & 0xff
	case insts.OpLHU:
		return raw & 0xffff
	default:
		return raw
	}
}

// MemoryStage handles memory load/store operations.
type MemoryStage struct {
	memory *emu.Memory
}

// NewMemoryStage creates a new memory stage.
func NewMemoryStage(memory *emu.Memory) *MemoryStage {
	return &MemoryStage{
		memory: memory,
	}
}

// MemoryResult holds the result of the memory stage.
type MemoryResult struct {
	MemData uint32
}

// Access performs memory read or write. Loads come back already
// extended to a full word.
func (s *MemoryStage) Access(exmem *EXMEMRegister) MemoryResult {
	result := MemoryResult{}

	if !exmem.Valid || exmem.Inst == nil {
		return result
	}

	if exmem.MemRead {
		var raw uint32
		switch loadSize(exmem.Inst.Op) {
		case 1:
			raw = uint32(s.memory.Read8(exmem.ALUResult))
		case 2:
			raw = uint32(s.memory.Read16(exmem.ALUResult))
		default:
			raw = s.memory.Read32(exmem.ALUResult)
		}
		result.MemData = extendLoad(exmem.Inst.Op, raw)
	} else if exmem.MemWrite {
		switch storeSize(exmem.Inst.Op) {
		case 1:
			s.memory.Write8(exmem.ALUResult, uint8(exmem.StoreValue))
		case 2:
			s.memory.Write16(exmem.ALUResult, uint16(exmem.StoreValue))
		default:
			s.memory.Write32(exmem.ALUResult, exmem.StoreValue)
		}
	}

	return result
}

// WritebackStage handles register file writeback.
type WritebackStage struct {
	regFile *emu.RegFile
}

// NewWritebackStage creates a new writeback stage.
func NewWritebackStage(regFile *emu.RegFile) *WritebackStage {
	return &WritebackStage{
		regFile: regFile,
	}
}

// Writeback writes the result to the register file.
func (s *WritebackStage) Writeback(memwb *MEMWBRegister) {
	if !memwb.Valid || !memwb.RegWrite {
		return
	}

	if memwb.Rd == 0 {
		return // Don't write to x0
	}

	var value uint32
	if memwb.MemToReg {
		value = memwb.MemData
	} else {
		value = memwb.ALUResult
	}

	s.regFile.WriteReg(memwb.Rd, int32(value))
}
