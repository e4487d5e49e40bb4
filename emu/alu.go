package emu

import (
	"io"

	"github.com/sarchlab/rv32sim/hexfmt"
	"github.com/sarchlab/rv32sim/insts"
)

func (h *Hart) execLUI(i *insts.Instruction, trace io.Writer) {
	if trace != nil {
		h.tracef(trace, i, "// x%d = %s", i.Rd, hx(i.ImmU))
	}
	h.regs.WriteReg(i.Rd, i.ImmU)
	h.pc += 4
}

func (h *Hart) execAUIPC(i *insts.Instruction, trace io.Writer) {
	val := h.pc + uint32(i.ImmU)
	if trace != nil {
		h.tracef(trace, i, "// x%d = %s + %s = %s",
			i.Rd, hexfmt.To0x32(h.pc), hx(i.ImmU), hexfmt.To0x32(val))
	}
	h.regs.WriteReg(i.Rd, int32(val))
	h.pc += 4
}

func (h *Hart) execADDI(i *insts.Instruction, trace io.Writer) {
	rs1 := h.regs.ReadReg(i.Rs1)
	sum := rs1 + i.ImmI
	if trace != nil {
		h.tracef(trace, i, "// x%d = %s + %s = %s",
			i.Rd, hx(rs1), hx(i.ImmI), hx(sum))
	}
	h.regs.WriteReg(i.Rd, sum)
	h.pc += 4
}

func (h *Hart) execSLTI(i *insts.Instruction, trace io.Writer) {
	rs1 := h.regs.ReadReg(i.Rs1)
	var val int32
	if rs1 < i.ImmI {
		val = 1
	}
	if trace != nil {
		h.tracef(trace, i, "// x%d = (%s < %d) ? 1 : 0 = %s",
			i.Rd, hx(rs1), i.ImmI, hx(val))
	}
	h.regs.WriteReg(i.Rd, val)
	h.pc += 4
}

func (h *Hart) execSLTIU(i *insts.Instruction, trace io.Writer) {
	rs1 := h.regs.ReadReg(i.Rs1)
	var val int32
	if uint32(rs1) < uint32(i.ImmI) {
		val = 1
	}
	if trace != nil {
		h.tracef(trace, i, "// x%d = (%s <U %d) ? 1 : 0 = %s",
			i.Rd, hx(rs1), i.ImmI, hx(val))
	}
	h.regs.WriteReg(i.Rd, val)
	h.pc += 4
}

func (h *Hart) execXORI(i *insts.Instruction, trace io.Writer) {
	rs1 := h.regs.ReadReg(i.Rs1)
	val := rs1 ^ i.ImmI
	if trace != nil {
		h.tracef(trace, i, "// x%d = %s ^ %s = %s",
			i.Rd, hx(rs1), hx(i.ImmI), hx(val))
	}
	h.regs.WriteReg(i.Rd, val)
	h.pc += 4
}

func (h *Hart) execORI(i *insts.Instruction, trace io.Writer) {
	rs1 := h.regs.ReadReg(i.Rs1)
	val := rs1 | i.ImmI
	if trace != nil {
		h.tracef(trace, i, "// x%d = %s | %s = %s",
			i.Rd, hx(rs1), hx(i.ImmI), hx(val))
	}
	h.regs.WriteReg(i.Rd, val)
	h.pc += 4
}

func (h *Hart) execANDI(i *insts.Instruction, trace io.Writer) {
	rs1 := h.regs.ReadReg(i.Rs1)
	val := rs1 & i.ImmI
	if trace != nil {
		h.tracef(trace, i, "// x%d = %s & %s = %s",
			i.Rd, hx(rs1), hx(i.ImmI), hx(val))
	}
	h.regs.WriteReg(i.Rd, val)
	h.pc += 4
}

func (h *Hart) execSLLI(i *insts.Instruction, trace io.Writer) {
	rs1 := h.regs.ReadReg(i.Rs1)
	shift := uint32(i.ImmI) & 0x1f
	val := rs1 << shift
	if trace != nil {
		h.tracef(trace, i, "// x%d = %s << %d = %s",
			i.Rd, hx(rs1), shift, hx(val))
	}
	h.regs.WriteReg(i.Rd, val)
	h.pc += 4
}

func (h *Hart) execSRLI(i *insts.Instruction, trace io.Writer) {
	rs1 := h.regs.ReadReg(i.Rs1)
	shift := uint32(i.ImmI) & 0x1f
	val := int32(uint32(rs1) >> shift)
	if trace != nil {
		h.tracef(trace, i, "// x%d = %s >> %d = %s",
			i.Rd, hx(rs1), shift, hx(val))
	}
	h.regs.WriteReg(i.Rd, val)
	h.pc += 4
}

func (h *Hart) execSRAI(i *insts.Instruction, trace io.Writer) {
	rs1 := h.regs.ReadReg(i.Rs1)
	shift := uint32(i.ImmI) & 0x1f
	val := rs1 >> shift
	if trace != nil {
		h.tracef(trace, i, "// x%d = %s >> %d = %s",
			i.Rd, hx(rs1), shift, hx(val))
	}
	h.regs.WriteReg(i.Rd, val)
	h.pc += 4
}

func (h *Hart) execADD(i *insts.Instruction, trace io.Writer) {
	rs1 := h.regs.ReadReg(i.Rs1)
	rs2 := h.regs.ReadReg(i.Rs2)
	val := rs1 + rs2
	if trace != nil {
		h.tracef(trace, i, "// x%d = %s + %s = %s",
			i.Rd, hx(rs1), hx(rs2), hx(val))
	}
	h.regs.WriteReg(i.Rd, val)
	h.pc += 4
}

func (h *Hart) execSUB(i *insts.Instruction, trace io.Writer) {
	rs1 := h.regs.ReadReg(i.Rs1)
	rs2 := h.regs.ReadReg(i.Rs2)
	val := rs1 - rs2
	if trace != nil {
		h.tracef(trace, i, "// x%d = %s - %s = %s",
			i.Rd, hx(rs1), hx(rs2), hx(val))
	}
	h.regs.WriteReg(i.Rd, val)
	h.pc += 4
}

func (h *Hart) execSLL(i *insts.Instruction, trace io.Writer) {
	rs1 := h.regs.ReadReg(i.Rs1)
	shift := uint32(h.regs.ReadReg(i.Rs2)) & 0x1f
	val := rs1 << shift
	if trace != nil {
		h.tracef(trace, i, "// x%d = %s << %d = %s",
			i.Rd, hx(rs1), shift, hx(val))
	}
	h.regs.WriteReg(i.Rd, val)
	h.pc += 4
}

func (h *Hart) execSLT(i *insts.Instruction, trace io.Writer) {
	rs1 := h.regs.ReadReg(i.Rs1)
	rs2 := h.regs.ReadReg(i.Rs2)
	var val int32
	if rs1 < rs2 {
		val = 1
	}
	if trace != nil {
		h.tracef(trace, i, "// x%d = (%s < %s) ? 1 : 0 = %s",
			i.Rd, hx(rs1), hx(rs2), hx(val))
	}
	h.regs.WriteReg(i.Rd, val)
	h.pc += 4
}

func (h *Hart) execSLTU(i *insts.Instruction, trace io.Writer) {
	rs1 := h.regs.ReadReg(i.Rs1)
	rs2 := h.regs.ReadReg(i.Rs2)
	var val int32
	if uint32(rs1) < uint32(rs2) {
		val = 1
	}
	if trace != nil {
		h.tracef(trace, i, "// x%d = (%s <U %s) ? 1 : 0 = %s",
			i.Rd, hx(rs1), hx(rs2), hx(val))
	}
	h.regs.WriteReg(i.Rd, val)
	h.pc += 4
}

func (h *Hart) execXOR(i *insts.Instruction, trace io.Writer) {
	rs1 := h.regs.ReadReg(i.Rs1)
	rs2 := h.regs.ReadReg(i.Rs2)
	val := rs1 ^ rs2
	if trace != nil {
		h.tracef(trace, i, "// x%d = %s ^ %s = %s",
			i.Rd, hx(rs1), hx(rs2), hx(val))
	}
	h.regs.WriteReg(i.Rd, val)
	h.pc += 4
}

func (h *Hart) execSRL(i *insts.Instruction, trace io.Writer) {
	rs1 := h.regs.ReadReg(i.Rs1)
	shift := uint32(h.regs.ReadReg(i.Rs2)) & 0x1f
	val := int32(uint32(rs1) >> shift)
	if trace != nil {
		h.tracef(trace, i, "// x%d = %s >> %d = %s",
			i.Rd, hx(rs1), shift, hx(val))
	}
	h.regs.WriteReg(i.Rd, val)
	h.pc += 4
}

func (h *Hart) execSRA(i *insts.Instruction, trace io.Writer) {
	rs1 := h.regs.ReadReg(i.Rs1)
	shift := uint32(h.regs.ReadReg(i.Rs2)) & 0x1f
	val := rs1 >> shift
	if trace != nil {
		h.tracef(trace, i, "// x%d = %s >> %d = %s",
			i.Rd, hx(rs1), shift, hx(val))
	}
	h.regs.WriteReg(i.Rd, val)
	h.pc += 4
}

func (h *Hart) execOR(i *insts.Instruction, trace io.Writer) {
	rs1 := h.regs.ReadReg(i.Rs1)
	rs2 := h.regs.ReadReg(i.Rs2)
	val := rs1 | rs2
	if trace != nil {
		h.tracef(trace, i, "// x%d = %s | %s = %s",
			i.Rd, hx(rs1), hx(rs2), hx(val))
	}
	h.regs.WriteReg(i.Rd, val)
	h.pc += 4
}

func (h *Hart) execAND(i *insts.Instruction, trace io.Writer) {
	rs1 := h.regs.ReadReg(i.Rs1)
	rs2 := h.regs.ReadReg(i.Rs2)
	val := rs1 & rs2
	if trace != nil {
		h.tracef(trace, i, "// x%d = %s & %s = %s",
			i.Rd, hx(rs1), hx(rs2), hx(val))
	}
	h.regs.WriteReg(i.Rd, val)
	h.pc += 4
}
