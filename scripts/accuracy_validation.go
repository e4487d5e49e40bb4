// Package main provides a standalone accuracy validation pass. It
// cross-checks the decoder fast path against the allocating decoder and
// verifies that the functional hart and the pipelined core agree on the
// final architectural state of every built-in benchmark.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/rv32sim/benchmarks"
	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/insts"
	"github.com/sarchlab/rv32sim/timing/core"
	"github.com/sarchlab/rv32sim/timing/pipeline"
)

const execLimit = 1000000

// testInstructionDecoding validates that DecodeInto produces results
// identical to Decode.
func testInstructionDecoding() bool {
	decoder := insts.NewDecoder()

	testCases := []uint32{
		0x00500093, // addi x1, x0, 5
		0x40208133, // sub x2, x1, x2
		0xFE208EE3, // beq x1, x2, -4
		0x0000A203, // lw x4, 0(x1)
		0x0050A223, // sw x5, 4(x1)
		0xDEADC2B7, // lui x5, 0xdeadc
		0x00100073, // ebreak
		0xA5A5A5A5, // not an instruction
	}

	fmt.Println("Testing instruction decoder accuracy...")

	for i, word := range testCases {
		inst1 := decoder.Decode(word)

		var inst2 insts.Instruction
		decoder.DecodeInto(word, &inst2)

		if *inst1 != inst2 {
			fmt.Printf("❌ Test case %d failed: Decode mismatch\n", i)
			fmt.Printf("  Decode():     %+v\n", *inst1)
			fmt.Printf("  DecodeInto(): %+v\n", inst2)
			return false
		}

		fmt.Printf("✅ Test case %d: Instruction 0x%08X decoded as %s\n",
			i, word, inst1.Op)
	}

	return true
}

// testEngineConsistency runs every built-in benchmark through the
// functional hart and the pipelined core and diffs the results.
func testEngineConsistency() bool {
	fmt.Println("\nTesting functional/timing engine consistency...")

	for _, b := range benchmarks.Programs() {
		size := b.MemSize
		if size == 0 {
			size = 1024
		}

		hartMem := emu.NewMemory(size, emu.WithWarnOutput(io.Discard))
		if !hartMem.LoadImage(b.Program) {
			fmt.Printf("❌ %s: program does not fit in memory\n", b.Name)
			return false
		}
		hart := emu.NewHart(hartMem, emu.WithStdout(io.Discard))
		if b.Setup != nil {
			b.Setup(hart.Regs(), hartMem)
		}
		hart.Run(execLimit)

		coreMem := emu.NewMemory(size, emu.WithWarnOutput(io.Discard))
		coreMem.LoadImage(b.Program)
		c := core.NewCore(coreMem, core.WithDefaultCaches())
		if b.Setup != nil {
			b.Setup(c.Regs(), coreMem)
		}
		c.Run(execLimit)

		if !hart.IsHalted() || !c.Halted() {
			fmt.Printf("❌ %s: did not halt (hart=%v, core=%v)\n",
				b.Name, hart.IsHalted(), c.Halted())
			return false
		}
		if hart.HaltReason() != c.HaltReason() {
			fmt.Printf("❌ %s: halt reason mismatch: hart=%q, core=%q\n",
				b.Name, hart.HaltReason(), c.HaltReason())
			return false
		}
		if hart.InsnCounter() != c.Stats().Instructions {
			fmt.Printf("❌ %s: instruction count mismatch: hart=%d, core=%d\n",
				b.Name, hart.InsnCounter(), c.Stats().Instructions)
			return false
		}
		for r := uint8(1); r < 32; r++ {
			hv := hart.Regs().ReadReg(r)
			cv := c.Regs().ReadReg(r)
			if hv != cv {
				fmt.Printf("❌ %s: x%d mismatch: hart=%d (0x%08x), core=%d (0x%08x)\n",
					b.Name, r, hv, uint32(hv), cv, uint32(cv))
				return false
			}
		}

		fmt.Printf("✅ %s: %d instructions, identical architectural state\n",
			b.Name, hart.InsnCounter())
	}

	return true
}

// testBranchPredictorConsistency validates that identically-driven
// predictors stay in lockstep and that Reset restores the initial state.
func testBranchPredictorConsistency() bool {
	fmt.Println("\nTesting branch predictor consistency...")

	config := pipeline.BranchPredictorConfig{
		BHTSize: 16,
		BTBSize: 8,
	}

	bp1 := pipeline.NewBranchPredictor(config)
	bp2 := pipeline.NewBranchPredictor(config)

	testPCs := []uint32{0x100, 0x104, 0x108, 0x10C}
	testTarget := uint32(0x200)

	for i, pc := range testPCs {
		pred1 := bp1.Predict(pc)
		pred2 := bp2.Predict(pc)

		if pred1.Taken != pred2.Taken || pred1.Target != pred2.Target ||
			pred1.TargetKnown != pred2.TargetKnown {
			fmt.Printf("❌ Prediction mismatch at PC 0x%X\n", pc)
			return false
		}

		bp1.Update(pc, i%2 == 0, testTarget)
		bp2.Update(pc, i%2 == 0, testTarget)

		fmt.Printf("✅ PC 0x%X: Prediction consistent (taken=%v, target known=%v)\n",
			pc, pred1.Taken, pred1.TargetKnown)
	}

	bp1.Reset()
	bp2.Reset()

	for _, pc := range testPCs {
		pred1 := bp1.Predict(pc)
		pred2 := bp2.Predict(pc)

		if pred1.Taken != pred2.Taken || pred1.TargetKnown != pred2.TargetKnown {
			fmt.Printf("❌ Post-reset prediction mismatch at PC 0x%X\n", pc)
			return false
		}
	}

	fmt.Println("✅ Branch predictor reset behavior validated")
	return true
}

func main() {
	fmt.Println("rv32sim Accuracy Validation")
	fmt.Println("=======================================================")

	allPassed := true

	if !testInstructionDecoding() {
		allPassed = false
	}

	if !testEngineConsistency() {
		allPassed = false
	}

	if !testBranchPredictorConsistency() {
		allPassed = false
	}

	fmt.Println("\n=======================================================")
	if allPassed {
		fmt.Println("🎉 ALL ACCURACY TESTS PASSED")
		fmt.Println("✅ Functional and timing engines agree on architectural state")
		os.Exit(0)
	} else {
		fmt.Println("❌ ACCURACY TESTS FAILED")
		fmt.Println("🚨 Engine results diverged; timing model needs review")
		os.Exit(1)
	}
}
