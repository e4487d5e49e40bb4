package emu_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32sim/emu"
)

var _ = Describe("RegFile", func() {
	var rf *emu.RegFile

	BeforeEach(func() {
		rf = emu.NewRegFile()
	})

	Describe("Reset", func() {
		It("should zero x0", func() {
			Expect(rf.ReadReg(0)).To(Equal(int32(0)))
		})

		It("should fill x1 through x31 with the reset pattern", func() {
			for r := uint8(1); r < 32; r++ {
				Expect(uint32(rf.ReadReg(r))).To(Equal(uint32(0xf0f0f0f0)))
			}
		})

		It("should clear previous writes", func() {
			rf.WriteReg(7, 42)
			rf.Reset()
			Expect(uint32(rf.ReadReg(7))).To(Equal(uint32(0xf0f0f0f0)))
		})
	})

	Describe("ReadReg and WriteReg", func() {
		It("should round-trip values", func() {
			rf.WriteReg(1, 5)
			rf.WriteReg(31, -1)
			Expect(rf.ReadReg(1)).To(Equal(int32(5)))
			Expect(rf.ReadReg(31)).To(Equal(int32(-1)))
		})

		It("should drop writes to x0", func() {
			rf.WriteReg(0, 123)
			Expect(rf.ReadReg(0)).To(Equal(int32(0)))
		})
	})

	Describe("Dump", func() {
		It("should print four rows of eight registers", func() {
			var buf bytes.Buffer
			rf.Dump(&buf, "")

			Expect(buf.String()).To(Equal(
				" x0 00000000 f0f0f0f0 f0f0f0f0 f0f0f0f0  f0f0f0f0 f0f0f0f0 f0f0f0f0 f0f0f0f0\n" +
					" x8 f0f0f0f0 f0f0f0f0 f0f0f0f0 f0f0f0f0  f0f0f0f0 f0f0f0f0 f0f0f0f0 f0f0f0f0\n" +
					"x16 f0f0f0f0 f0f0f0f0 f0f0f0f0 f0f0f0f0  f0f0f0f0 f0f0f0f0 f0f0f0f0 f0f0f0f0\n" +
					"x24 f0f0f0f0 f0f0f0f0 f0f0f0f0 f0f0f0f0  f0f0f0f0 f0f0f0f0 f0f0f0f0 f0f0f0f0\n"))
		})

		It("should show written values in place", func() {
			rf.WriteReg(10, 0x1234)
			var buf bytes.Buffer
			rf.Dump(&buf, "")

			Expect(buf.String()).To(ContainSubstring(
				" x8 f0f0f0f0 f0f0f0f0 00001234 f0f0f0f0  f0f0f0f0 f0f0f0f0 f0f0f0f0 f0f0f0f0\n"))
		})

		It("should prefix every row with the header", func() {
			var buf bytes.Buffer
			rf.Dump(&buf, "hart0 ")

			Expect(buf.String()).To(Equal(
				"hart0  x0 00000000 f0f0f0f0 f0f0f0f0 f0f0f0f0  f0f0f0f0 f0f0f0f0 f0f0f0f0 f0f0f0f0\n" +
					"hart0  x8 f0f0f0f0 f0f0f0f0 f0f0f0f0 f0f0f0f0  f0f0f0f0 f0f0f0f0 f0f0f0f0 f0f0f0f0\n" +
					"hart0 x16 f0f0f0f0 f0f0f0f0 f0f0f0f0 f0f0f0f0  f0f0f0f0 f0f0f0f0 f0f0f0f0 f0f0f0f0\n" +
					"hart0 x24 f0f0f0f0 f0f0f0f0 f0f0f0f0 f0f0f0f0  f0f0f0f0 f0f0f0f0 f0f0f0f0 f0f0f0f0\n"))
		})
	})
})
