package insts

// Primary opcodes (bits [6:0]).
const (
	opcodeLUI    = 0x37
	opcodeAUIPC  = 0x17
	opcodeJAL    = 0x6f
	opcodeJALR   = 0x67
	opcodeBranch = 0x63
	opcodeLoad   = 0x03
	opcodeStore  = 0x23
	opcodeALUImm = 0x13
	opcodeALUReg = 0x33
	opcodeSystem = 0x73
)

// Exact full-word encodings for the environment instructions.
const (
	wordECALL  = 0x00000073
	wordEBREAK = 0x00100073
)

// funct7 values distinguishing R-type and shift-immediate variants.
const (
	funct7Base = 0x00 // add, sll, slt, sltu, xor, srl, or, and, slli, srli
	funct7Alt  = 0x20 // sub, sra, srai
)

// Decoder decodes RV32I machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new RV32I instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit RV32I instruction word.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{}
	d.DecodeInto(word, inst)
	return inst
}

// DecodeInto decodes word into inst without allocating. Any encoding not
// covered by the (opcode, funct3, funct7) tables leaves inst.Op as
// OpUnknown.
func (d *Decoder) DecodeInto(word uint32, inst *Instruction) {
	*inst = Instruction{Word: word, Op: OpUnknown, Format: FormatUnknown}

	switch opcode(word) {
	case opcodeLUI:
		d.decodeUType(word, inst, OpLUI)
	case opcodeAUIPC:
		d.decodeUType(word, inst, OpAUIPC)
	case opcodeJAL:
		d.decodeJAL(word, inst)
	case opcodeJALR:
		d.decodeJALR(word, inst)
	case opcodeBranch:
		d.decodeBranch(word, inst)
	case opcodeLoad:
		d.decodeLoad(word, inst)
	case opcodeStore:
		d.decodeStore(word, inst)
	case opcodeALUImm:
		d.decodeALUImm(word, inst)
	case opcodeALUReg:
		d.decodeALUReg(word, inst)
	case opcodeSystem:
		d.decodeSystem(word, inst)
	}
}

// decodeUType decodes LUI and AUIPC.
// Format: imm[31:12] | rd | opcode
func (d *Decoder) decodeUType(word uint32, inst *Instruction, op Op) {
	inst.Op = op
	inst.Format = FormatU
	inst.Rd = rd(word)
	inst.ImmU = immU(word)
}

// decodeJAL decodes JAL.
// Format: imm[20|10:1|11|19:12] | rd | opcode
func (d *Decoder) decodeJAL(word uint32, inst *Instruction) {
	inst.Op = OpJAL
	inst.Format = FormatJ
	inst.Rd = rd(word)
	inst.ImmJ = immJ(word)
}

// decodeJALR decodes JALR.
// Format: imm[11:0] | rs1 | funct3 | rd | opcode
func (d *Decoder) decodeJALR(word uint32, inst *Instruction) {
	inst.Op = OpJALR
	inst.Format = FormatI
	inst.Rd = rd(word)
	inst.Rs1 = rs1(word)
	inst.Funct3 = funct3(word)
	inst.ImmI = immI(word)
}

// decodeBranch decodes the B-type conditional branches.
// Format: imm[12|10:5] | rs2 | rs1 | funct3 | imm[4:1|11] | opcode
func (d *Decoder) decodeBranch(word uint32, inst *Instruction) {
	inst.Format = FormatB
	inst.Rs1 = rs1(word)
	inst.Rs2 = rs2(word)
	inst.Funct3 = funct3(word)
	inst.ImmB = immB(word)

	switch inst.Funct3 {
	case 0x0:
		inst.Op = OpBEQ
	case 0x1:
		inst.Op = OpBNE
	case 0x4:
		inst.Op = OpBLT
	case 0x5:
		inst.Op = OpBGE
	case 0x6:
		inst.Op = OpBLTU
	case 0x7:
		inst.Op = OpBGEU
	default:
		inst.Op = OpUnknown
		inst.Format = FormatUnknown
	}
}

// decodeLoad decodes the I-type loads.
// Format: imm[11:0] | rs1 | funct3 | rd | opcode
func (d *Decoder) decodeLoad(word uint32, inst *Instruction) {
	inst.Format = FormatI
	inst.Rd = rd(word)
	inst.Rs1 = rs1(word)
	inst.Funct3 = funct3(word)
	inst.ImmI = immI(word)

	switch inst.Funct3 {
	case 0x0:
		inst.Op = OpLB
	case 0x1:
		inst.Op = OpLH
	case 0x2:
		inst.Op = OpLW
	case 0x4:
		inst.Op = OpLBU
	case 0x5:
		inst.Op = OpLHU
	default:
		inst.Op = OpUnknown
		inst.Format = FormatUnknown
	}
}

// decodeStore decodes the S-type stores.
// Format: imm[11:5] | rs2 | rs1 | funct3 | imm[4:0] | opcode
func (d *Decoder) decodeStore(word uint32, inst *Instruction) {
	inst.Format = FormatS
	inst.Rs1 = rs1(word)
	inst.Rs2 = rs2(word)
	inst.Funct3 = funct3(word)
	inst.ImmS = immS(word)

	switch inst.Funct3 {
	case 0x0:
		inst.Op = OpSB
	case 0x1:
		inst.Op = OpSH
	case 0x2:
		inst.Op = OpSW
	default:
		inst.Op = OpUnknown
		inst.Format = FormatUnknown
	}
}

// decodeALUImm decodes the I-type ALU instructions.
// Format: imm[11:0] | rs1 | funct3 | rd | opcode
// Shifts reuse the immediate field: shamt in imm[4:0], funct7 selects
// SRLI versus SRAI.
func (d *Decoder) decodeALUImm(word uint32, inst *Instruction) {
	inst.Format = FormatI
	inst.Rd = rd(word)
	inst.Rs1 = rs1(word)
	inst.Funct3 = funct3(word)
	inst.Funct7 = funct7(word)
	inst.ImmI = immI(word)

	switch inst.Funct3 {
	case 0x0:
		inst.Op = OpADDI
	case 0x1:
		inst.Op = OpSLLI
	case 0x2:
		inst.Op = OpSLTI
	case 0x3:
		inst.Op = OpSLTIU
	case 0x4:
		inst.Op = OpXORI
	case 0x5:
		switch inst.Funct7 {
		case funct7Base:
			inst.Op = OpSRLI
		case funct7Alt:
			inst.Op = OpSRAI
		default:
			inst.Op = OpUnknown
			inst.Format = FormatUnknown
		}
	case 0x6:
		inst.Op = OpORI
	case 0x7:
		inst.Op = OpANDI
	}
}

// decodeALUReg decodes the R-type ALU instructions.
// Format: funct7 | rs2 | rs1 | funct3 | rd | opcode
func (d *Decoder) decodeALUReg(word uint32, inst *Instruction) {
	inst.Format = FormatR
	inst.Rd = rd(word)
	inst.Rs1 = rs1(word)
	inst.Rs2 = rs2(word)
	inst.Funct3 = funct3(word)
	inst.Funct7 = funct7(word)

	switch inst.Funct3 {
	case 0x0:
		switch inst.Funct7 {
		case funct7Base:
			inst.Op = OpADD
		case funct7Alt:
			inst.Op = OpSUB
		default:
			inst.Op = OpUnknown
			inst.Format = FormatUnknown
		}
	case 0x1:
		inst.Op = OpSLL
	case 0x2:
		inst.Op = OpSLT
	case 0x3:
		inst.Op = OpSLTU
	case 0x4:
		inst.Op = OpXOR
	case 0x5:
		switch inst.Funct7 {
		case funct7Base:
			inst.Op = OpSRL
		case funct7Alt:
			inst.Op = OpSRA
		default:
			inst.Op = OpUnknown
			inst.Format = FormatUnknown
		}
	case 0x6:
		inst.Op = OpOR
	case 0x7:
		inst.Op = OpAND
	}
}

// decodeSystem decodes the SYSTEM opcode. ECALL and EBREAK match on the
// full instruction word; everything else dispatches on funct3 to the CSR
// instructions.
func (d *Decoder) decodeSystem(word uint32, inst *Instruction) {
	switch word {
	case wordECALL:
		inst.Op = OpECALL
		inst.Format = FormatI
		return
	case wordEBREAK:
		inst.Op = OpEBREAK
		inst.Format = FormatI
		return
	}

	inst.Format = FormatI
	inst.Rd = rd(word)
	inst.Rs1 = rs1(word)
	inst.Funct3 = funct3(word)
	inst.ImmI = immI(word)

	switch inst.Funct3 {
	case 0x1:
		inst.Op = OpCSRRW
	case 0x2:
		inst.Op = OpCSRRS
	case 0x3:
		inst.Op = OpCSRRC
	case 0x5:
		inst.Op = OpCSRRWI
	case 0x6:
		inst.Op = OpCSRRSI
	case 0x7:
		inst.Op = OpCSRRCI
	default:
		inst.Op = OpUnknown
		inst.Format = FormatUnknown
	}
}

func opcode(word uint32) uint32 {
	return word & 0x7f
}

func rd(word uint32) uint8 {
	return uint8((word >> 7) & 0x1f) // bits [11:7]
}

func funct3(word uint32) uint8 {
	return uint8((word >> 12) & 0x7) // bits [14:12]
}

func rs1(word uint32) uint8 {
	return uint8((word >> 15) & 0x1f) // bits [19:15]
}

func rs2(word uint32) uint8 {
	return uint8((word >> 20) & 0x1f) // bits [24:20]
}

func funct7(word uint32) uint8 {
	return uint8((word >> 25) & 0x7f) // bits [31:25]
}

// immI extracts the sign-extended I-type immediate from bits [31:20].
func immI(word uint32) int32 {
	return int32(word) >> 20
}

// immU extracts the U-type immediate: bits [31:12] in place, low 12 zero.
func immU(word uint32) int32 {
	return int32(word & 0xfffff000)
}

// immS extracts the sign-extended S-type immediate.
// imm[11:5] = insn[31:25], imm[4:0] = insn[11:7].
func immS(word uint32) int32 {
	v := (word>>25)<<5 | (word>>7)&0x1f
	return int32(v<<20) >> 20
}

// immB extracts the sign-extended B-type branch offset.
// imm[12] = insn[31], imm[11] = insn[7], imm[10:5] = insn[30:25],
// imm[4:1] = insn[11:8], imm[0] = 0.
func immB(word uint32) int32 {
	v := (word>>31)<<12 |
		(word>>7&0x1)<<11 |
		(word>>25&0x3f)<<5 |
		(word>>8&0xf)<<1
	return int32(v<<19) >> 19
}

// immJ extracts the sign-extended J-type jump offset.
// imm[20] = insn[31], imm[19:12] = insn[19:12], imm[11] = insn[20],
// imm[10:1] = insn[30:21], imm[0] = 0.
func immJ(word uint32) int32 {
	v := (word>>31)<<20 |
		(word>>12&0xff)<<12 |
		(word>>20&0x1)<<11 |
		(word>>21&0x3ff)<<1
	return int32(v<<11) >> 11
}
