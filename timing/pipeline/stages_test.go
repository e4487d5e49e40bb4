package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/insts"
	"github.com/sarchlab/rv32sim/timing/pipeline"
)

var _ = Describe("Pipeline Stages", func() {
	var (
		regFile *emu.RegFile
		memory  *emu.Memory
		decoder *insts.Decoder
	)

	BeforeEach(func() {
		regFile = emu.NewRegFile()
		memory = emu.NewMemory(1024)
		decoder = insts.NewDecoder()
	})

	Describe("FetchStage", func() {
		var fetch *pipeline.FetchStage

		BeforeEach(func() {
			fetch = pipeline.NewFetchStage(memory)
		})

		It("should fetch the instruction word at the PC", func() {
			memory.Write32(0, encodeADDI(1, 0, 42))

			word, ok := fetch.Fetch(0)

			Expect(ok).To(BeTrue())
			Expect(word).To(Equal(encodeADDI(1, 0, 42)))
		})

		It("should fetch sequential instructions", func() {
			memory.Write32(0x100, encodeADDI(1, 0, 1))
			memory.Write32(0x104, encodeADDI(2, 0, 2))

			word1, _ := fetch.Fetch(0x100)
			word2, _ := fetch.Fetch(0x104)

			Expect(word1).To(Equal(encodeADDI(1, 0, 1)))
			Expect(word2).To(Equal(encodeADDI(2, 0, 2)))
		})

		It("should return a zero word past the end of memory", func() {
			// Speculative wrong-path fetches land here; the zero word
			// decodes as an illegal instruction if it ever retires.
			word, ok := fetch.Fetch(memory.Size())

			Expect(ok).To(BeTrue())
			Expect(word).To(Equal(uint32(0)))
		})

		It("should return a zero word when the PC wraps", func() {
			word, ok := fetch.Fetch(0xfffffffc)

			Expect(ok).To(BeTrue())
			Expect(word).To(Equal(uint32(0)))
		})
	})

	Describe("DecodeStage", func() {
		var decode *pipeline.DecodeStage

		BeforeEach(func() {
			decode = pipeline.NewDecodeStage(regFile)
		})

		Context("ALU immediate", func() {
			It("should decode ADDI and read rs1", func() {
				regFile.WriteReg(1, 100)

				result := decode.Decode(encodeADDI(2, 1, 5), 0)

				Expect(result.Inst.Op).To(Equal(insts.OpADDI))
				Expect(result.Rd).To(Equal(uint8(2)))
				Expect(result.Rs1).To(Equal(uint8(1)))
				Expect(result.Rs1Value).To(Equal(uint32(100)))
				Expect(result.RegWrite).To(BeTrue())
				Expect(result.MemRead).To(BeFalse())
				Expect(result.MemWrite).To(BeFalse())
				Expect(result.IsBranch).To(BeFalse())
			})

			It("should not set RegWrite when the destination is x0", func() {
				result := decode.Decode(encodeADDI(0, 0, 0), 0)

				Expect(result.RegWrite).To(BeFalse())
			})
		})

		Context("ALU register", func() {
			It("should decode ADD and read both operands", func() {
				regFile.WriteReg(1, 7)
				regFile.WriteReg(2, 9)

				result := decode.Decode(encodeADD(3, 1, 2), 0)

				Expect(result.Inst.Op).To(Equal(insts.OpADD))
				Expect(result.Rs1Value).To(Equal(uint32(7)))
				Expect(result.Rs2Value).To(Equal(uint32(9)))
				Expect(result.RegWrite).To(BeTrue())
			})
		})

		Context("loads and stores", func() {
			It("should decode LW with load control signals", func() {
				result := decode.Decode(encodeLW(2, 1, 8), 0)

				Expect(result.Inst.Op).To(Equal(insts.OpLW))
				Expect(result.MemRead).To(BeTrue())
				Expect(result.MemToReg).To(BeTrue())
				Expect(result.RegWrite).To(BeTrue())
				Expect(result.MemWrite).To(BeFalse())
			})

			It("should decode SW with store control signals", func() {
				result := decode.Decode(encodeSW(2, 1, 8), 0)

				Expect(result.Inst.Op).To(Equal(insts.OpSW))
				Expect(result.MemWrite).To(BeTrue())
				Expect(result.MemRead).To(BeFalse())
				Expect(result.RegWrite).To(BeFalse())
			})
		})

		Context("control transfers", func() {
			It("should decode BEQ as a branch without a register write", func() {
				result := decode.Decode(encodeBEQ(1, 2, 16), 0)

				Expect(result.Inst.Op).To(Equal(insts.OpBEQ))
				Expect(result.IsBranch).To(BeTrue())
				Expect(result.RegWrite).To(BeFalse())
			})

			It("should decode JAL as a branch with a link write", func() {
				result := decode.Decode(encodeJAL(1, 16), 0)

				Expect(result.Inst.Op).To(Equal(insts.OpJAL))
				Expect(result.IsBranch).To(BeTrue())
				Expect(result.RegWrite).To(BeTrue())
			})

			It("should not write a link for JAL with rd x0", func() {
				result := decode.Decode(encodeJAL(0, 16), 0)

				Expect(result.IsBranch).To(BeTrue())
				Expect(result.RegWrite).To(BeFalse())
			})

			It("should decode JALR as a branch with a link write", func() {
				result := decode.Decode(encodeJALR(1, 5, 0), 0)

				Expect(result.Inst.Op).To(Equal(insts.OpJALR))
				Expect(result.IsBranch).To(BeTrue())
				Expect(result.RegWrite).To(BeTrue())
			})
		})

		Context("system instructions", func() {
			It("should decode CSRRS with a register write", func() {
				result := decode.Decode(encodeCSRRS(5, 0xf14, 0), 0)

				Expect(result.Inst.Op).To(Equal(insts.OpCSRRS))
				Expect(result.RegWrite).To(BeTrue())
			})

			It("should decode EBREAK with no effects", func() {
				result := decode.Decode(instEBREAK, 0)

				Expect(result.Inst.Op).To(Equal(insts.OpEBREAK))
				Expect(result.RegWrite).To(BeFalse())
				Expect(result.MemRead).To(BeFalse())
				Expect(result.MemWrite).To(BeFalse())
				Expect(result.IsBranch).To(BeFalse())
			})

			It("should decode ECALL with no effects", func() {
				result := decode.Decode(instECALL, 0)

				Expect(result.Inst.Op).To(Equal(insts.OpECALL))
				Expect(result.RegWrite).To(BeFalse())
			})
		})

		Context("upper immediates", func() {
			It("should decode LUI with a register write", func() {
				result := decode.Decode(encodeLUI(1, 0x12345), 0)

				Expect(result.Inst.Op).To(Equal(insts.OpLUI))
				Expect(result.RegWrite).To(BeTrue())
			})
		})
	})

	Describe("ExecuteStage", func() {
		var execute *pipeline.ExecuteStage

		idexFor := func(word uint32, pc uint32) *pipeline.IDEXRegister {
			return &pipeline.IDEXRegister{
				Valid: true,
				PC:    pc,
				Inst:  decoder.Decode(word),
			}
		}

		BeforeEach(func() {
			execute = pipeline.NewExecuteStage(0)
		})

		Context("ALU operations", func() {
			It("should execute ADDI", func() {
				idex := idexFor(encodeADDI(2, 1, 5), 0)

				result := execute.Execute(idex, 100, 0)

				Expect(result.ALUResult).To(Equal(uint32(105)))
			})

			It("should execute ADD", func() {
				idex := idexFor(encodeADD(3, 1, 2), 0)

				result := execute.Execute(idex, 100, 23)

				Expect(result.ALUResult).To(Equal(uint32(123)))
			})

			It("should execute SUB", func() {
				idex := idexFor(encodeSUB(3, 1, 2), 0)

				result := execute.Execute(idex, 100, 23)

				Expect(result.ALUResult).To(Equal(uint32(77)))
			})

			It("should execute logic operations", func() {
				xor := execute.Execute(idexFor(0x0020c1b3, 0), 0xff00, 0x0ff0) // xor x3, x1, x2
				or := execute.Execute(idexFor(0x0020e1b3, 0), 0xff00, 0x0ff0)  // or x3, x1, x2
				and := execute.Execute(idexFor(0x0020f1b3, 0), 0xff00, 0x0ff0) // and x3, x1, x2

				Expect(xor.ALUResult).To(Equal(uint32(0xf0f0)))
				Expect(or.ALUResult).To(Equal(uint32(0xfff0)))
				Expect(and.ALUResult).To(Equal(uint32(0x0f00)))
			})

			It("should distinguish arithmetic and logical right shifts", func() {
				srl := execute.Execute(idexFor(0x0020d1b3, 0), 0x80000000, 4) // srl x3, x1, x2
				sra := execute.Execute(idexFor(0x4020d1b3, 0), 0x80000000, 4) // sra x3, x1, x2

				Expect(srl.ALUResult).To(Equal(uint32(0x08000000)))
				Expect(sra.ALUResult).To(Equal(uint32(0xf8000000)))
			})

			It("should distinguish immediate shift forms", func() {
				slli := execute.Execute(idexFor(0x00409113, 0), 0x1, 0)        // slli x2, x1, 4
				srli := execute.Execute(idexFor(0x0040d113, 0), 0x80000000, 0) // srli x2, x1, 4
				srai := execute.Execute(idexFor(0x4040d113, 0), 0x80000000, 0) // srai x2, x1, 4

				Expect(slli.ALUResult).To(Equal(uint32(0x10)))
				Expect(srli.ALUResult).To(Equal(uint32(0x08000000)))
				Expect(srai.ALUResult).To(Equal(uint32(0xf8000000)))
			})

			It("should compare signed for SLT and unsigned for SLTU", func() {
				slt := execute.Execute(idexFor(0x0020a1b3, 0), 0xffffffff, 1)  // slt x3, x1, x2
				sltu := execute.Execute(idexFor(0x0020b1b3, 0), 0xffffffff, 1) // sltu x3, x1, x2

				Expect(slt.ALUResult).To(Equal(uint32(1)))  // -1 < 1
				Expect(sltu.ALUResult).To(Equal(uint32(0))) // 0xffffffff > 1
			})
		})

		Context("upper immediates", func() {
			It("should execute LUI", func() {
				idex := idexFor(encodeLUI(1, 0x12345), 0)

				result := execute.Execute(idex, 0, 0)

				Expect(result.ALUResult).To(Equal(uint32(0x12345000)))
			})

			It("should add the PC for AUIPC", func() {
				idex := idexFor(0x01000097, 0x100) // auipc x1, 0x1000

				result := execute.Execute(idex, 0, 0)

				Expect(result.ALUResult).To(Equal(uint32(0x01000100)))
			})
		})

		Context("address calculation", func() {
			It("should calculate the load address", func() {
				idex := idexFor(encodeLW(2, 1, 8), 0)

				result := execute.Execute(idex, 0x100, 0)

				Expect(result.ALUResult).To(Equal(uint32(0x108)))
			})

			It("should calculate the store address and capture the value", func() {
				idex := idexFor(encodeSW(2, 1, -4), 0)

				result := execute.Execute(idex, 0x100, 0xcafebabe)

				Expect(result.ALUResult).To(Equal(uint32(0xfc)))
				Expect(result.StoreValue).To(Equal(uint32(0xcafebabe)))
			})
		})

		Context("branch resolution", func() {
			It("should take BEQ when operands are equal", func() {
				idex := idexFor(encodeBEQ(1, 2, 16), 0x100)

				result := execute.Execute(idex, 5, 5)

				Expect(result.BranchTaken).To(BeTrue())
				Expect(result.BranchTarget).To(Equal(uint32(0x110)))
			})

			It("should not take BEQ when operands differ", func() {
				idex := idexFor(encodeBEQ(1, 2, 16), 0x100)

				result := execute.Execute(idex, 5, 6)

				Expect(result.BranchTaken).To(BeFalse())
			})

			It("should resolve a negative branch offset", func() {
				idex := idexFor(encodeBNE(1, 2, -8), 0x100)

				result := execute.Execute(idex, 1, 2)

				Expect(result.BranchTaken).To(BeTrue())
				Expect(result.BranchTarget).To(Equal(uint32(0xf8)))
			})

			It("should compare signed for BLT", func() {
				idex := idexFor(encodeBLT(1, 2, 8), 0x100)

				result := execute.Execute(idex, 0xffffffff, 0) // -1 < 0

				Expect(result.BranchTaken).To(BeTrue())
			})

			It("should execute JAL with the return address", func() {
				idex := idexFor(encodeJAL(1, 0x20), 0x100)

				result := execute.Execute(idex, 0, 0)

				Expect(result.BranchTaken).To(BeTrue())
				Expect(result.BranchTarget).To(Equal(uint32(0x120)))
				Expect(result.ALUResult).To(Equal(uint32(0x104)))
			})

			It("should execute JALR and clear the target's low bit", func() {
				idex := idexFor(encodeJALR(1, 5, 3), 0x100)

				result := execute.Execute(idex, 0x200, 0)

				Expect(result.BranchTaken).To(BeTrue())
				Expect(result.BranchTarget).To(Equal(uint32(0x202)))
				Expect(result.ALUResult).To(Equal(uint32(0x104)))
			})
		})

		Context("system instructions", func() {
			It("should return the hart ID for CSRRS", func() {
				execute = pipeline.NewExecuteStage(7)
				idex := idexFor(encodeCSRRS(5, 0xf14, 0), 0)

				result := execute.Execute(idex, 0, 0)

				Expect(result.ALUResult).To(Equal(uint32(7)))
			})
		})

		Context("invalid input", func() {
			It("should return an empty result for a nil instruction", func() {
				idex := &pipeline.IDEXRegister{Valid: true}

				result := execute.Execute(idex, 1, 2)

				Expect(result.ALUResult).To(Equal(uint32(0)))
				Expect(result.BranchTaken).To(BeFalse())
			})
		})
	})

	Describe("MemoryStage", func() {
		var memStage *pipeline.MemoryStage

		exmemFor := func(word uint32, addr uint32, read, write bool, storeValue uint32) *pipeline.EXMEMRegister {
			return &pipeline.EXMEMRegister{
				Valid:      true,
				Inst:       decoder.Decode(word),
				ALUResult:  addr,
				StoreValue: storeValue,
				MemRead:    read,
				MemWrite:   write,
			}
		}

		BeforeEach(func() {
			memStage = pipeline.NewMemoryStage(memory)
		})

		Context("loads", func() {
			It("should load a word", func() {
				memory.Write32(0x100, 0x12345678)
				exmem := exmemFor(encodeLW(2, 1, 0), 0x100, true, false, 0)

				result := memStage.Access(exmem)

				Expect(result.MemData).To(Equal(uint32(0x12345678)))
			})

			It("should sign-extend LB and LH", func() {
				memory.Write32(0x100, 0x0000ff80)

				lb := memStage.Access(exmemFor(encodeLB(2, 1, 0), 0x100, true, false, 0))
				lh := memStage.Access(exmemFor(encodeLH(2, 1, 0), 0x100, true, false, 0))

				Expect(lb.MemData).To(Equal(uint32(0xffffff80)))
				Expect(lh.MemData).To(Equal(uint32(0xffffff80)))
			})

			It("should zero-extend LBU and LHU", func() {
				memory.Write32(0x100, 0x0000ff80)

				lbu := memStage.Access(exmemFor(encodeLBU(2, 1, 0), 0x100, true, false, 0))
				lhu := memStage.Access(exmemFor(encodeLHU(2, 1, 0), 0x100, true, false, 0))

				Expect(lbu.MemData).To(Equal(uint32(0x80)))
				Expect(lhu.MemData).To(Equal(uint32(0xff80)))
			})
		})

		Context("stores", func() {
			It("should store a word", func() {
				exmem := exmemFor(encodeSW(2, 1, 0), 0x100, false, true, 0xdeadbeef)

				memStage.Access(exmem)

				Expect(memory.Read32(0x100)).To(Equal(uint32(0xdeadbeef)))
			})

			It("should store only the low byte for SB", func() {
				memory.Write32(0x100, 0x11223344)
				exmem := exmemFor(encodeSB(2, 1, 0), 0x100, false, true, 0xdeadbeef)

				memStage.Access(exmem)

				Expect(memory.Read32(0x100)).To(Equal(uint32(0x112233ef)))
			})

			It("should store only the low halfword for SH", func() {
				memory.Write32(0x100, 0x11223344)
				exmem := exmemFor(encodeSH(2, 1, 0), 0x100, false, true, 0xdeadbeef)

				memStage.Access(exmem)

				Expect(memory.Read32(0x100)).To(Equal(uint32(0x1122beef)))
			})
		})

		Context("no memory access", func() {
			It("should do nothing for ALU instructions", func() {
				memory.Write32(0x100, 0x12345678)
				exmem := exmemFor(encodeADDI(1, 0, 5), 0x100, false, false, 0)

				result := memStage.Access(exmem)

				Expect(result.MemData).To(Equal(uint32(0)))
				Expect(memory.Read32(0x100)).To(Equal(uint32(0x12345678)))
			})

			It("should ignore an invalid register", func() {
				result := memStage.Access(&pipeline.EXMEMRegister{})

				Expect(result.MemData).To(Equal(uint32(0)))
			})
		})
	})

	Describe("WritebackStage", func() {
		var writeback *pipeline.WritebackStage

		BeforeEach(func() {
			writeback = pipeline.NewWritebackStage(regFile)
		})

		It("should write the ALU result", func() {
			memwb := &pipeline.MEMWBRegister{
				Valid:     true,
				ALUResult: 42,
				Rd:        1,
				RegWrite:  true,
			}

			writeback.Writeback(memwb)

			Expect(regFile.ReadReg(1)).To(Equal(int32(42)))
		})

		It("should write memory data when MemToReg is set", func() {
			memwb := &pipeline.MEMWBRegister{
				Valid:     true,
				ALUResult: 42,
				MemData:   77,
				Rd:        1,
				RegWrite:  true,
				MemToReg:  true,
			}

			writeback.Writeback(memwb)

			Expect(regFile.ReadReg(1)).To(Equal(int32(77)))
		})

		It("should not write when RegWrite is clear", func() {
			regFile.WriteReg(1, 5)
			memwb := &pipeline.MEMWBRegister{
				Valid:     true,
				ALUResult: 42,
				Rd:        1,
			}

			writeback.Writeback(memwb)

			Expect(regFile.ReadReg(1)).To(Equal(int32(5)))
		})

		It("should never write x0", func() {
			memwb := &pipeline.MEMWBRegister{
				Valid:     true,
				ALUResult: 42,
				Rd:        0,
				RegWrite:  true,
			}

			writeback.Writeback(memwb)

			Expect(regFile.ReadReg(0)).To(Equal(int32(0)))
		})
	})
})
