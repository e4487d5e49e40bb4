package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/timing/latency"
	"github.com/sarchlab/rv32sim/timing/pipeline"
)

var _ = Describe("FastTiming", func() {
	var (
		memory *emu.Memory
		table  *latency.Table
	)

	BeforeEach(func() {
		memory = emu.NewMemory(1024)
		table = latency.NewTable()
	})

	It("should execute straight-line code with exact results", func() {
		loadWords(memory,
			encodeADDI(1, 0, 42),
			encodeADDI(3, 1, 8),
			instEBREAK,
		)
		ft := pipeline.NewFastTiming(memory, table)

		ft.Run()

		Expect(ft.Halted()).To(BeTrue())
		Expect(ft.HaltReason()).To(Equal("EBREAK instruction"))
		Expect(ft.Regs().ReadReg(1)).To(Equal(int32(42)))
		Expect(ft.Regs().ReadReg(3)).To(Equal(int32(50)))
	})

	It("should charge each instruction its table latency", func() {
		loadWords(memory,
			encodeADDI(1, 0, 1), // 1 cycle
			encodeADDI(2, 0, 2), // 1 cycle
			instEBREAK,          // 1 cycle
		)
		ft := pipeline.NewFastTiming(memory, table)

		ft.Run()

		stats := ft.Stats()
		Expect(stats.Instructions).To(Equal(uint64(3)))
		Expect(stats.Cycles).To(Equal(uint64(3)))
	})

	It("should charge the redirect penalty for taken control transfers", func() {
		loadWords(memory,
			encodeJAL(0, 8),     // jump 1 + penalty 2
			encodeADDI(1, 0, 9), // skipped
			instEBREAK,          // system 1
		)
		ft := pipeline.NewFastTiming(memory, table)

		ft.Run()

		stats := ft.Stats()
		Expect(stats.Instructions).To(Equal(uint64(2)))
		Expect(stats.Cycles).To(Equal(uint64(4)))
	})

	It("should charge loads their load latency", func() {
		loadWords(memory,
			encodeADDI(1, 0, 64), // 1 cycle
			encodeLW(2, 1, 0),    // 2 cycles
			instEBREAK,           // 1 cycle
		)
		memory.Write32(64, 5)
		ft := pipeline.NewFastTiming(memory, table)

		ft.Run()

		Expect(ft.Regs().ReadReg(2)).To(Equal(int32(5)))
		Expect(ft.Stats().Cycles).To(Equal(uint64(4)))
	})

	It("should match the functional model on a loop", func() {
		// Sum 5..1 into x2.
		loadWords(memory,
			encodeADDI(1, 0, 5),
			encodeADDI(2, 0, 0),
			encodeADD(2, 2, 1),
			encodeADDI(1, 1, -1),
			encodeBNE(1, 0, -8),
			instEBREAK,
		)
		ft := pipeline.NewFastTiming(memory, table)

		ft.Run()

		Expect(ft.Regs().ReadReg(2)).To(Equal(int32(15)))
		Expect(ft.Regs().ReadReg(1)).To(Equal(int32(0)))

		// 2 setup + 15 loop body + 4 taken-branch penalties + EBREAK.
		Expect(ft.Stats().Cycles).To(Equal(uint64(26)))
	})

	It("should initialize x2 to the memory size", func() {
		loadWords(memory,
			encodeADD(1, 0, 2),
			instEBREAK,
		)
		ft := pipeline.NewFastTiming(memory, table)

		ft.Run()

		Expect(ft.Regs().ReadReg(1)).To(Equal(int32(1024)))
	})

	It("should stop at the instruction limit", func() {
		loadWords(memory, encodeJAL(0, 0)) // jump to self
		ft := pipeline.NewFastTiming(memory, table,
			pipeline.WithMaxInstructions(3))

		ft.Run()

		Expect(ft.Halted()).To(BeTrue())
		Expect(ft.HaltReason()).To(Equal(""))
		Expect(ft.Stats().Instructions).To(Equal(uint64(3)))
	})

	It("should not tick once halted", func() {
		loadWords(memory, instEBREAK)
		ft := pipeline.NewFastTiming(memory, table)
		ft.Run()
		cycles := ft.Stats().Cycles

		ft.Tick()

		Expect(ft.Stats().Cycles).To(Equal(cycles))
	})
})
