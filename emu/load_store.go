package emu

import (
	"io"

	"github.com/sarchlab/rv32sim/hexfmt"
	"github.com/sarchlab/rv32sim/insts"
)

// execLoad simulates the five load instructions. The commentary names
// the access width and whether the loaded value was sign- or
// zero-extended.
func (h *Hart) execLoad(i *insts.Instruction, trace io.Writer) {
	rs1 := h.regs.ReadReg(i.Rs1)
	addr := uint32(rs1 + i.ImmI)

	var val int32
	var what string
	switch i.Op {
	case insts.OpLB:
		val, what = h.mem.Read8Signed(addr), "sx(m8"
	case insts.OpLH:
		val, what = h.mem.Read16Signed(addr), "sx(m16"
	case insts.OpLW:
		val, what = h.mem.Read32Signed(addr), "sx(m32"
	case insts.OpLBU:
		val, what = int32(uint32(h.mem.Read8(addr))), "zx(m8"
	case insts.OpLHU:
		val, what = int32(uint32(h.mem.Read16(addr))), "zx(m16"
	}

	if trace != nil {
		h.tracef(trace, i, "// x%d = %s(%s + %s)) = %s",
			i.Rd, what, hx(rs1), hx(i.ImmI), hx(val))
	}
	h.regs.WriteReg(i.Rd, val)
	h.pc += 4
}

// execStore simulates the three store instructions, writing the low
// bytes of rs2 to memory.
func (h *Hart) execStore(i *insts.Instruction, trace io.Writer) {
	rs1 := h.regs.ReadReg(i.Rs1)
	addr := uint32(rs1 + i.ImmS)
	val := uint32(h.regs.ReadReg(i.Rs2))

	var width string
	switch i.Op {
	case insts.OpSB:
		width, val = "m8", val&0xff
	case insts.OpSH:
		width, val = "m16", val&0xffff
	case insts.OpSW:
		width = "m32"
	}

	if trace != nil {
		h.tracef(trace, i, "// %s(%s + %s) = %s",
			width, hx(rs1), hx(i.ImmS), hexfmt.To0x32(val))
	}

	switch i.Op {
	case insts.OpSB:
		h.mem.Write8(addr, uint8(val))
	case insts.OpSH:
		h.mem.Write16(addr, uint16(val))
	case insts.OpSW:
		h.mem.Write32(addr, val)
	}
	h.pc += 4
}
