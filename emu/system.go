package emu

import (
	"io"

	"github.com/sarchlab/rv32sim/insts"
)

func (h *Hart) execEBREAK(i *insts.Instruction, trace io.Writer) {
	if trace != nil {
		h.tracef(trace, i, "// HALT")
	}
	h.halt = true
	h.haltReason = "EBREAK instruction"
}

// execCSRRS only supports reading mhartid with rs1 = x0. Any other
// CSR number or source register halts the hart; the commentary is
// still printed so the offending access shows up in traces.
func (h *Hart) execCSRRS(i *insts.Instruction, trace io.Writer) {
	if i.CSR() != csrMhartid || i.Rs1 != 0 {
		h.halt = true
		h.haltReason = "Illegal CSR in CRSS instruction"
	}
	if trace != nil {
		h.tracef(trace, i, "// x%d = %d", i.Rd, h.mhartid)
	}
	if !h.halt {
		h.regs.WriteReg(i.Rd, int32(h.mhartid))
		h.pc += 4
	}
}
