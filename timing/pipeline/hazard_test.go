package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32sim/insts"
	"github.com/sarchlab/rv32sim/timing/pipeline"
)

var _ = Describe("HazardUnit", func() {
	var (
		hazard *pipeline.HazardUnit
		idex   *pipeline.IDEXRegister
		exmem  *pipeline.EXMEMRegister
		memwb  *pipeline.MEMWBRegister
	)

	BeforeEach(func() {
		hazard = pipeline.NewHazardUnit()
		idex = &pipeline.IDEXRegister{}
		exmem = &pipeline.EXMEMRegister{}
		memwb = &pipeline.MEMWBRegister{}
	})

	Describe("DetectForwarding", func() {
		Context("when no hazard exists", func() {
			It("should not forward when pipeline is empty", func() {
				idex.Valid = true
				idex.Rs1 = 1
				idex.Rs2 = 2

				result := hazard.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs1).To(Equal(pipeline.ForwardNone))
				Expect(result.ForwardRs2).To(Equal(pipeline.ForwardNone))
			})

			It("should not forward when destinations do not match sources", func() {
				idex.Valid = true
				idex.Rs1 = 1
				idex.Rs2 = 2
				exmem.Valid = true
				exmem.RegWrite = true
				exmem.Rd = 3
				memwb.Valid = true
				memwb.RegWrite = true
				memwb.Rd = 4

				result := hazard.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs1).To(Equal(pipeline.ForwardNone))
				Expect(result.ForwardRs2).To(Equal(pipeline.ForwardNone))
			})

			It("should not forward when the ID/EX register is invalid", func() {
				idex.Valid = false
				idex.Rs1 = 1
				exmem.Valid = true
				exmem.RegWrite = true
				exmem.Rd = 1

				result := hazard.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs1).To(Equal(pipeline.ForwardNone))
			})
		})

		Context("when the EX/MEM destination matches a source", func() {
			It("should forward rs1 from EX/MEM", func() {
				idex.Valid = true
				idex.Rs1 = 5
				idex.Rs2 = 2
				exmem.Valid = true
				exmem.RegWrite = true
				exmem.Rd = 5

				result := hazard.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs1).To(Equal(pipeline.ForwardFromEXMEM))
				Expect(result.ForwardRs2).To(Equal(pipeline.ForwardNone))
			})

			It("should forward rs2 from EX/MEM", func() {
				idex.Valid = true
				idex.Rs1 = 1
				idex.Rs2 = 5
				exmem.Valid = true
				exmem.RegWrite = true
				exmem.Rd = 5

				result := hazard.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs1).To(Equal(pipeline.ForwardNone))
				Expect(result.ForwardRs2).To(Equal(pipeline.ForwardFromEXMEM))
			})

			It("should forward both operands when both match", func() {
				idex.Valid = true
				idex.Rs1 = 5
				idex.Rs2 = 5
				exmem.Valid = true
				exmem.RegWrite = true
				exmem.Rd = 5

				result := hazard.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs1).To(Equal(pipeline.ForwardFromEXMEM))
				Expect(result.ForwardRs2).To(Equal(pipeline.ForwardFromEXMEM))
			})

			It("should not forward when EX/MEM does not write a register", func() {
				idex.Valid = true
				idex.Rs1 = 5
				exmem.Valid = true
				exmem.RegWrite = false
				exmem.Rd = 5

				result := hazard.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs1).To(Equal(pipeline.ForwardNone))
			})

			It("should not forward when EX/MEM is invalid", func() {
				idex.Valid = true
				idex.Rs1 = 5
				exmem.Valid = false
				exmem.RegWrite = true
				exmem.Rd = 5

				result := hazard.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs1).To(Equal(pipeline.ForwardNone))
			})
		})

		Context("when the MEM/WB destination matches a source", func() {
			It("should forward rs1 from MEM/WB", func() {
				idex.Valid = true
				idex.Rs1 = 7
				memwb.Valid = true
				memwb.RegWrite = true
				memwb.Rd = 7

				result := hazard.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs1).To(Equal(pipeline.ForwardFromMEMWB))
			})

			It("should forward rs2 from MEM/WB", func() {
				idex.Valid = true
				idex.Rs2 = 7
				memwb.Valid = true
				memwb.RegWrite = true
				memwb.Rd = 7

				result := hazard.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs2).To(Equal(pipeline.ForwardFromMEMWB))
			})
		})

		Context("when both EX/MEM and MEM/WB match", func() {
			It("should prefer EX/MEM as the most recent value", func() {
				idex.Valid = true
				idex.Rs1 = 9
				exmem.Valid = true
				exmem.RegWrite = true
				exmem.Rd = 9
				memwb.Valid = true
				memwb.RegWrite = true
				memwb.Rd = 9

				result := hazard.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs1).To(Equal(pipeline.ForwardFromEXMEM))
			})
		})

		Context("when the source register is x0", func() {
			It("should never forward to x0 reads", func() {
				idex.Valid = true
				idex.Rs1 = 0
				idex.Rs2 = 0
				exmem.Valid = true
				exmem.RegWrite = true
				exmem.Rd = 0
				memwb.Valid = true
				memwb.RegWrite = true
				memwb.Rd = 0

				result := hazard.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs1).To(Equal(pipeline.ForwardNone))
				Expect(result.ForwardRs2).To(Equal(pipeline.ForwardNone))
			})
		})

		Context("with store instructions", func() {
			It("should forward the store data operand through rs2", func() {
				// SW rs2, imm(rs1) carries the store data in rs2.
				idex.Valid = true
				idex.Rs1 = 2
				idex.Rs2 = 8
				idex.MemWrite = true
				exmem.Valid = true
				exmem.RegWrite = true
				exmem.Rd = 8

				result := hazard.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs2).To(Equal(pipeline.ForwardFromEXMEM))
			})
		})
	})

	Describe("DetectLoadUseHazard", func() {
		It("should detect a hazard when the next instruction uses the load result", func() {
			idex.Valid = true
			idex.MemRead = true
			idex.Rd = 6

			Expect(hazard.DetectLoadUseHazard(idex, 6, 2)).To(BeTrue())
			Expect(hazard.DetectLoadUseHazard(idex, 1, 6)).To(BeTrue())
		})

		It("should not detect a hazard for non-load instructions", func() {
			idex.Valid = true
			idex.MemRead = false
			idex.Rd = 6

			Expect(hazard.DetectLoadUseHazard(idex, 6, 6)).To(BeFalse())
		})

		It("should not detect a hazard when registers do not match", func() {
			idex.Valid = true
			idex.MemRead = true
			idex.Rd = 6

			Expect(hazard.DetectLoadUseHazard(idex, 1, 2)).To(BeFalse())
		})

		It("should not detect a hazard for loads into x0", func() {
			idex.Valid = true
			idex.MemRead = true
			idex.Rd = 0

			Expect(hazard.DetectLoadUseHazard(idex, 0, 0)).To(BeFalse())
		})

		It("should not detect a hazard when ID/EX is invalid", func() {
			idex.Valid = false
			idex.MemRead = true
			idex.Rd = 6

			Expect(hazard.DetectLoadUseHazard(idex, 6, 2)).To(BeFalse())
		})
	})

	Describe("DetectLoadUseHazardDecoded", func() {
		It("should respect operand usage flags", func() {
			Expect(hazard.DetectLoadUseHazardDecoded(6, 6, 0, true, false)).To(BeTrue())
			Expect(hazard.DetectLoadUseHazardDecoded(6, 6, 0, false, false)).To(BeFalse())
			Expect(hazard.DetectLoadUseHazardDecoded(6, 0, 6, false, true)).To(BeTrue())
			Expect(hazard.DetectLoadUseHazardDecoded(6, 0, 6, true, false)).To(BeFalse())
		})

		It("should ignore loads into x0", func() {
			Expect(hazard.DetectLoadUseHazardDecoded(0, 0, 0, true, true)).To(BeFalse())
		})
	})

	Describe("ComputeStalls", func() {
		Context("with no hazards", func() {
			It("should produce no stall or flush signals", func() {
				result := hazard.ComputeStalls(false, false)

				Expect(result.StallIF).To(BeFalse())
				Expect(result.StallID).To(BeFalse())
				Expect(result.InsertBubbleEX).To(BeFalse())
				Expect(result.FlushIF).To(BeFalse())
				Expect(result.FlushID).To(BeFalse())
			})
		})

		Context("with a load-use hazard", func() {
			It("should stall the front end and insert a bubble", func() {
				result := hazard.ComputeStalls(true, false)

				Expect(result.StallIF).To(BeTrue())
				Expect(result.StallID).To(BeTrue())
				Expect(result.InsertBubbleEX).To(BeTrue())
				Expect(result.FlushIF).To(BeFalse())
				Expect(result.FlushID).To(BeFalse())
			})
		})

		Context("with a taken branch", func() {
			It("should flush the front end", func() {
				result := hazard.ComputeStalls(false, true)

				Expect(result.StallIF).To(BeFalse())
				Expect(result.StallID).To(BeFalse())
				Expect(result.InsertBubbleEX).To(BeFalse())
				Expect(result.FlushIF).To(BeTrue())
				Expect(result.FlushID).To(BeTrue())
			})
		})

		Context("with both hazards at once", func() {
			It("should raise both stall and flush signals", func() {
				result := hazard.ComputeStalls(true, true)

				Expect(result.StallIF).To(BeTrue())
				Expect(result.StallID).To(BeTrue())
				Expect(result.InsertBubbleEX).To(BeTrue())
				Expect(result.FlushIF).To(BeTrue())
				Expect(result.FlushID).To(BeTrue())
			})
		})
	})

	Describe("GetForwardedValue", func() {
		BeforeEach(func() {
			exmem.ALUResult = 100
			memwb.ALUResult = 200
			memwb.MemData = 300
		})

		It("should return the original value when no forwarding is needed", func() {
			value := hazard.GetForwardedValue(pipeline.ForwardNone, 42, exmem, memwb)
			Expect(value).To(Equal(uint32(42)))
		})

		It("should return the ALU result when forwarding from EX/MEM", func() {
			value := hazard.GetForwardedValue(pipeline.ForwardFromEXMEM, 42, exmem, memwb)
			Expect(value).To(Equal(uint32(100)))
		})

		It("should return the ALU result when forwarding from MEM/WB", func() {
			memwb.MemToReg = false
			value := hazard.GetForwardedValue(pipeline.ForwardFromMEMWB, 42, exmem, memwb)
			Expect(value).To(Equal(uint32(200)))
		})

		It("should return memory data when forwarding a load from MEM/WB", func() {
			memwb.MemToReg = true
			value := hazard.GetForwardedValue(pipeline.ForwardFromMEMWB, 42, exmem, memwb)
			Expect(value).To(Equal(uint32(300)))
		})
	})

	Describe("ForwardSource values", func() {
		It("should order sources by pipeline recency", func() {
			Expect(int(pipeline.ForwardNone)).To(Equal(0))
			Expect(int(pipeline.ForwardFromEXMEM)).To(Equal(1))
			Expect(int(pipeline.ForwardFromMEMWB)).To(Equal(2))
		})
	})

	Describe("with decoded instructions", func() {
		It("should detect a RAW hazard between dependent ALU instructions", func() {
			// add x3, x1, x2 in EX/MEM, add x4, x3, x1 in ID/EX.
			exmem.Valid = true
			exmem.Inst = &insts.Instruction{Op: insts.OpADD, Rd: 3, Rs1: 1, Rs2: 2}
			exmem.RegWrite = true
			exmem.Rd = 3

			idex.Valid = true
			idex.Inst = &insts.Instruction{Op: insts.OpADD, Rd: 4, Rs1: 3, Rs2: 1}
			idex.Rs1 = 3
			idex.Rs2 = 1
			idex.Rd = 4

			result := hazard.DetectForwarding(idex, exmem, memwb)

			Expect(result.ForwardRs1).To(Equal(pipeline.ForwardFromEXMEM))
			Expect(result.ForwardRs2).To(Equal(pipeline.ForwardNone))
		})

		It("should detect a load-use hazard from a decoded load", func() {
			// lw x6, 0(x1) in ID/EX, add x7, x6, x6 entering decode.
			idex.Valid = true
			idex.Inst = &insts.Instruction{Op: insts.OpLW, Rd: 6, Rs1: 1}
			idex.MemRead = true
			idex.Rd = 6

			Expect(hazard.DetectLoadUseHazard(idex, 6, 6)).To(BeTrue())
		})
	})
})
