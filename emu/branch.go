package emu

import (
	"io"

	"github.com/sarchlab/rv32sim/hexfmt"
	"github.com/sarchlab/rv32sim/insts"
)

func (h *Hart) execJAL(i *insts.Instruction, trace io.Writer) {
	val := h.pc + uint32(i.ImmJ)
	if trace != nil {
		h.tracef(trace, i, "// x%d = %s,  pc = %s + %s = %s",
			i.Rd, hexfmt.To0x32(h.pc+4), hexfmt.To0x32(h.pc), hx(i.ImmJ),
			hexfmt.To0x32(val))
	}
	h.regs.WriteReg(i.Rd, int32(h.pc+4))
	h.pc = val
}

func (h *Hart) execJALR(i *insts.Instruction, trace io.Writer) {
	rs1 := h.regs.ReadReg(i.Rs1)
	val := uint32(rs1+i.ImmI) & 0xfffffffe
	if trace != nil {
		h.tracef(trace, i, "// x%d = %s,  pc = (%s + %s) & 0xfffffffe = %s",
			i.Rd, hexfmt.To0x32(h.pc+4), hx(i.ImmI), hx(rs1),
			hexfmt.To0x32(val))
	}
	h.regs.WriteReg(i.Rd, int32(h.pc+4))
	h.pc = val
}

// execBranch finishes any of the six conditional branches once the
// caller has evaluated the condition. op is the comparison symbol
// shown in the commentary.
func (h *Hart) execBranch(i *insts.Instruction, trace io.Writer, op string, taken bool) {
	target := h.pc + 4
	if taken {
		target = h.pc + uint32(i.ImmB)
	}
	if trace != nil {
		h.tracef(trace, i, "// pc += (%s %s %s ? %s : 4) = %s",
			hx(h.regs.ReadReg(i.Rs1)), op, hx(h.regs.ReadReg(i.Rs2)),
			hx(i.ImmB), hexfmt.To0x32(target))
	}
	h.pc = target
}
