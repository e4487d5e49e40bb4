// Package insts provides RV32I instruction definitions and decoding.
//
// This package implements decoding of RV32I machine code into structured
// instruction representations. It supports:
//   - Upper-immediate instructions: LUI, AUIPC
//   - Jumps: JAL, JALR
//   - Conditional branches: BEQ, BNE, BLT, BGE, BLTU, BGEU
//   - Loads and stores: LB, LH, LW, LBU, LHU, SB, SH, SW
//   - Immediate ALU: ADDI, SLTI, SLTIU, XORI, ORI, ANDI, SLLI, SRLI, SRAI
//   - Register ALU: ADD, SUB, SLL, SLT, SLTU, XOR, SRL, SRA, OR, AND
//   - System: ECALL, EBREAK, CSRRW, CSRRS, CSRRC, CSRRWI, CSRRSI, CSRRCI
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x00500093) // addi x1, x0, 5
//	fmt.Printf("Op: %v, Rd: %d, Rs1: %d, Imm: %d\n", inst.Op, inst.Rd, inst.Rs1, inst.ImmI)
package insts

// Op represents an RV32I operation.
type Op uint16

// RV32I operations.
const (
	OpUnknown Op = iota
	OpLUI
	OpAUIPC
	OpJAL
	OpJALR
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU
	OpSB
	OpSH
	OpSW
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND
	OpECALL
	OpEBREAK
	OpCSRRW
	OpCSRRS
	OpCSRRC
	OpCSRRWI
	OpCSRRSI
	OpCSRRCI
)

var opNames = [...]string{
	OpUnknown: "unknown",
	OpLUI:     "lui",
	OpAUIPC:   "auipc",
	OpJAL:     "jal",
	OpJALR:    "jalr",
	OpBEQ:     "beq",
	OpBNE:     "bne",
	OpBLT:     "blt",
	OpBGE:     "bge",
	OpBLTU:    "bltu",
	OpBGEU:    "bgeu",
	OpLB:      "lb",
	OpLH:      "lh",
	OpLW:      "lw",
	OpLBU:     "lbu",
	OpLHU:     "lhu",
	OpSB:      "sb",
	OpSH:      "sh",
	OpSW:      "sw",
	OpADDI:    "addi",
	OpSLTI:    "slti",
	OpSLTIU:   "sltiu",
	OpXORI:    "xori",
	OpORI:     "ori",
	OpANDI:    "andi",
	OpSLLI:    "slli",
	OpSRLI:    "srli",
	OpSRAI:    "srai",
	OpADD:     "add",
	OpSUB:     "sub",
	OpSLL:     "sll",
	OpSLT:     "slt",
	OpSLTU:    "sltu",
	OpXOR:     "xor",
	OpSRL:     "srl",
	OpSRA:     "sra",
	OpOR:      "or",
	OpAND:     "and",
	OpECALL:   "ecall",
	OpEBREAK:  "ebreak",
	OpCSRRW:   "csrrw",
	OpCSRRS:   "csrrs",
	OpCSRRC:   "csrrc",
	OpCSRRWI:  "csrrwi",
	OpCSRRSI:  "csrrsi",
	OpCSRRCI:  "csrrci",
}

// String returns the assembly mnemonic for the operation.
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "unknown"
}

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatR              // Register-register ALU
	FormatI              // Immediate ALU, loads, JALR, system
	FormatS              // Stores
	FormatB              // Conditional branches
	FormatU              // LUI, AUIPC
	FormatJ              // JAL
)

// Instruction represents a decoded RV32I instruction.
type Instruction struct {
	Word   uint32 // Raw instruction word
	Op     Op     // Operation code
	Format Format // Encoding format

	// Register fields
	Rd  uint8 // Destination register
	Rs1 uint8 // First source register
	Rs2 uint8 // Second source register

	// Function fields
	Funct3 uint8 // bits [14:12]
	Funct7 uint8 // bits [31:25]

	// Immediates, sign-extended per format
	ImmI int32 // I-type immediate
	ImmS int32 // S-type immediate
	ImmB int32 // B-type branch offset
	ImmU int32 // U-type immediate (upper 20 bits in place, low 12 zero)
	ImmJ int32 // J-type jump offset
}

// CSR returns the CSR address of a system instruction, taken from the
// unsigned 12-bit immediate field.
func (i *Instruction) CSR() uint32 {
	return (i.Word >> 20) & 0xfff
}

// Zimm returns the zero-extended 5-bit immediate of a CSRR*I instruction.
// It occupies the rs1 field.
func (i *Instruction) Zimm() uint8 {
	return i.Rs1
}

// Shamt returns the shift amount of a shift instruction, the low 5 bits
// of the I-type immediate.
func (i *Instruction) Shamt() uint8 {
	return uint8(i.ImmI & 0x1f)
}
