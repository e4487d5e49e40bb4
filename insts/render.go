package insts

import (
	"fmt"

	"github.com/sarchlab/rv32sim/hexfmt"
)

// mnemonicWidth is the width of the left-justified mnemonic column in
// rendered disassembly.
const mnemonicWidth = 8

// Render returns the disassembly of the instruction in canonical RV32I
// textual form. addr is the address the instruction was fetched from;
// JAL and branch targets render as absolute addresses resolved against
// it. Unrecognized encodings render as an error marker.
func (i *Instruction) Render(addr uint32) string {
	switch i.Op {
	case OpLUI, OpAUIPC:
		return renderMnemonic(i.Op) +
			fmt.Sprintf("x%d,%s", i.Rd, hexfmt.To0x20(uint32(i.ImmU)))
	case OpJAL:
		return renderMnemonic(i.Op) +
			fmt.Sprintf("x%d,0x%s", i.Rd, hexfmt.To32(addr+uint32(i.ImmJ)))
	case OpJALR:
		return renderMnemonic(i.Op) +
			fmt.Sprintf("x%d,%s", i.Rd, renderBaseDisp(i.Rs1, i.ImmI))
	case OpBEQ, OpBNE, OpBLT, OpBGE, OpBLTU, OpBGEU:
		return renderMnemonic(i.Op) +
			fmt.Sprintf("x%d,x%d,0x%s", i.Rs1, i.Rs2, hexfmt.To32(addr+uint32(i.ImmB)))
	case OpLB, OpLH, OpLW, OpLBU, OpLHU:
		return renderMnemonic(i.Op) +
			fmt.Sprintf("x%d,%s", i.Rd, renderBaseDisp(i.Rs1, i.ImmI))
	case OpSB, OpSH, OpSW:
		return renderMnemonic(i.Op) +
			fmt.Sprintf("x%d,%s", i.Rs2, renderBaseDisp(i.Rs1, i.ImmS))
	case OpADDI, OpSLTI, OpSLTIU, OpXORI, OpORI, OpANDI, OpSLLI, OpSRLI:
		return renderMnemonic(i.Op) +
			fmt.Sprintf("x%d,x%d,%d", i.Rd, i.Rs1, i.ImmI)
	case OpSRAI:
		// SRAI shows only the shift amount; the funct7 bit stays out of
		// the rendered immediate.
		return renderMnemonic(i.Op) +
			fmt.Sprintf("x%d,x%d,%d", i.Rd, i.Rs1, i.ImmI%32)
	case OpADD, OpSUB, OpSLL, OpSLT, OpSLTU, OpXOR, OpSRL, OpSRA, OpOR, OpAND:
		return renderMnemonic(i.Op) +
			fmt.Sprintf("x%d,x%d,x%d", i.Rd, i.Rs1, i.Rs2)
	case OpECALL, OpEBREAK:
		// Bare mnemonic, no padding and no operands.
		return i.Op.String()
	case OpCSRRW, OpCSRRS, OpCSRRC:
		return renderMnemonic(i.Op) +
			fmt.Sprintf("x%d,%s,x%d", i.Rd, hexfmt.To0x12(i.CSR()), i.Rs1)
	case OpCSRRWI, OpCSRRSI, OpCSRRCI:
		return renderMnemonic(i.Op) +
			fmt.Sprintf("x%d,%s,%d", i.Rd, hexfmt.To0x12(i.CSR()), i.Zimm())
	default:
		return "ERROR: UNIMPLEMENTED INSTRUCTION"
	}
}

// renderMnemonic left-justifies the mnemonic in the fixed-width column.
func renderMnemonic(op Op) string {
	return fmt.Sprintf("%-*s", mnemonicWidth, op.String())
}

// renderBaseDisp renders a base+displacement memory operand as
// "<disp>(x<base>)" with the displacement in signed decimal.
func renderBaseDisp(base uint8, disp int32) string {
	return fmt.Sprintf("%d(x%d)", disp, base)
}
