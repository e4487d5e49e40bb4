package emu

import (
	"fmt"
	"io"

	"github.com/sarchlab/rv32sim/hexfmt"
)

// resetValue is the pattern written into x1..x31 on reset. The
// distinctive bit pattern makes reads of never-written registers easy
// to spot in dumps and traces.
const resetValue uint32 = 0xf0f0f0f0

// RegFile models the 32 general-purpose registers of an RV32I hart.
// x0 is hardwired to zero: writes to it are dropped and reads always
// return 0.
type RegFile struct {
	regs [32]uint32
}

// NewRegFile creates a register file in its reset state.
func NewRegFile() *RegFile {
	rf := &RegFile{}
	rf.Reset()
	return rf
}

// Reset sets x0 to zero and every other register to the reset pattern.
func (rf *RegFile) Reset() {
	rf.regs[0] = 0
	for i := 1; i < 32; i++ {
		rf.regs[i] = resetValue
	}
}

// ReadReg returns the value of register r as a signed word. Reading x0
// always yields 0.
func (rf *RegFile) ReadReg(r uint8) int32 {
	if r == 0 {
		return 0
	}
	return int32(rf.regs[r])
}

// WriteReg sets register r to val. Writes to x0 are silently dropped.
func (rf *RegFile) WriteReg(r uint8, val int32) {
	if r == 0 {
		return
	}
	rf.regs[r] = uint32(val)
}

// Dump writes the register file to w as four rows of eight values.
// Each row starts with hdr and a right-aligned register label, and an
// extra space separates the two groups of four values in a row.
func (rf *RegFile) Dump(w io.Writer, hdr string) {
	for i := 0; i < 32; i++ {
		if i%8 == 0 {
			if i != 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%s%3s ", hdr, fmt.Sprintf("x%d", i))
		}
		switch {
		case i%8 == 7:
			fmt.Fprint(w, hexfmt.To32(rf.regs[i]))
		case i%4 == 0 && i%8 != 0:
			fmt.Fprintf(w, " %s ", hexfmt.To32(rf.regs[i]))
		default:
			fmt.Fprintf(w, "%s ", hexfmt.To32(rf.regs[i]))
		}
	}
	fmt.Fprintln(w)
}
