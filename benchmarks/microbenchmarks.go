package benchmarks

import "github.com/sarchlab/rv32sim/emu"

// Programs returns the standard set of microbenchmarks. Each one is a
// self-contained RV32I image with known final register values, so a run is
// validated before its timing numbers are trusted.
func Programs() []Benchmark {
	return []Benchmark{
		sumLoop(),
		fibonacci(),
		memcpyBytes(),
		bitOps(),
		branchMix(),
		callReturn(),
		storeLoad(),
	}
}

// 1. Sum Loop - Tests a counted loop with a backward branch
func sumLoop() Benchmark {
	return Benchmark{
		Name:        "sum_loop",
		Description: "sum of 1..10 with a backward BNE - measures loop overhead",
		Program: BuildProgram(
			EncodeADDI(5, 0, 0),  // x5 = sum = 0
			EncodeADDI(6, 0, 0),  // x6 = i = 0
			EncodeADDI(7, 0, 10), // x7 = limit
			EncodeADDI(6, 6, 1),  // loop: i++
			EncodeADD(5, 5, 6),   // sum += i
			EncodeBNE(6, 7, -8),  // repeat while i != limit
			EncodeEBREAK(),
		),
		Expected: map[uint8]int32{
			5: 55,
			6: 10,
		},
		ExpectedReason: "EBREAK instruction",
	}
}

// 2. Fibonacci - Tests dependent ALU operations in a loop
func fibonacci() Benchmark {
	return Benchmark{
		Name:        "fibonacci",
		Description: "iterative fib(10) - measures RAW dependency chains",
		Program: BuildProgram(
			EncodeADDI(5, 0, 0),  // x5 = a = fib(0)
			EncodeADDI(6, 0, 1),  // x6 = b = fib(1)
			EncodeADDI(7, 0, 10), // x7 = iterations
			EncodeADD(28, 5, 6),  // loop: t = a + b
			EncodeADDI(5, 6, 0),  // a = b
			EncodeADDI(6, 28, 0), // b = t
			EncodeADDI(7, 7, -1),
			EncodeBNE(7, 0, -16),
			EncodeEBREAK(),
		),
		Expected: map[uint8]int32{
			5: 55, // fib(10)
			6: 89, // fib(11)
		},
		ExpectedReason: "EBREAK instruction",
	}
}

// 3. Memcpy Bytes - Tests a byte-granular load/store loop
func memcpyBytes() Benchmark {
	return Benchmark{
		Name:        "memcpy_bytes",
		Description: "copy 16 bytes with LBU/SB - measures memory loop throughput",
		Setup: func(regs *emu.RegFile, mem *emu.Memory) {
			for i := uint32(0); i < 16; i++ {
				mem.Write8(0x200+i, uint8(0x10+i))
			}
		},
		Program: BuildProgram(
			EncodeADDI(5, 0, 0x200), // x5 = src
			EncodeADDI(6, 0, 0x240), // x6 = dst
			EncodeADDI(7, 0, 16),    // x7 = count
			EncodeLBU(28, 5, 0),     // loop: x28 = *src
			EncodeSB(28, 6, 0),      // *dst = x28
			EncodeADDI(5, 5, 1),
			EncodeADDI(6, 6, 1),
			EncodeADDI(7, 7, -1),
			EncodeBNE(7, 0, -20),
			EncodeEBREAK(),
		),
		Expected: map[uint8]int32{
			5:  0x210,
			6:  0x250,
			7:  0,
			28: 0x1F, // last byte copied
		},
		ExpectedReason: "EBREAK instruction",
	}
}

// 4. Bit Operations - Tests a straight-line chain of logic and shifts
func bitOps() Benchmark {
	return Benchmark{
		Name:        "bit_ops",
		Description: "AND/XOR/OR and shift chain - measures ALU forwarding",
		Program: BuildProgram(
			EncodeLUI(5, 0xDEADC),
			EncodeADDI(5, 5, -273), // x5 = 0xDEADBEEF
			EncodeLUI(6, 0xFFFF0),  // x6 = 0xFFFF0000
			EncodeAND(7, 5, 6),     // x7 = 0xDEAD0000
			EncodeXOR(28, 5, 7),    // x28 = 0x0000BEEF
			EncodeSRLI(29, 28, 4),  // x29 = 0x00000BEE
			EncodeSLLI(30, 29, 8),  // x30 = 0x000BEE00
			EncodeOR(31, 30, 28),   // x31 = 0x000BFEEF
			EncodeEBREAK(),
		),
		Expected: map[uint8]int32{
			5:  -559038737, // 0xDEADBEEF
			7:  -559087616, // 0xDEAD0000
			28: 0xBEEF,
			29: 0xBEE,
			30: 0xBEE00,
			31: 0xBFEEF,
		},
		ExpectedReason: "EBREAK instruction",
	}
}

// 5. Branch Mix - Tests alternating taken/not-taken branches
func branchMix() Benchmark {
	return Benchmark{
		Name:        "branch_mix",
		Description: "loop with a branch taken every other iteration - stresses prediction",
		Program: BuildProgram(
			EncodeADDI(5, 0, 0),  // x5 = odd count
			EncodeADDI(6, 0, 0),  // x6 = i
			EncodeADDI(7, 0, 8),  // x7 = limit
			EncodeANDI(28, 6, 1), // loop: x28 = i & 1
			EncodeBEQ(28, 0, 8),  // even iteration skips the count
			EncodeADDI(5, 5, 1),
			EncodeADDI(6, 6, 1), // skip: i++
			EncodeBNE(6, 7, -16),
			EncodeEBREAK(),
		),
		Expected: map[uint8]int32{
			5: 4,
			6: 8,
		},
		ExpectedReason: "EBREAK instruction",
	}
}

// 6. Call Return - Tests JAL/JALR call and return pairs
func callReturn() Benchmark {
	return Benchmark{
		Name:        "call_return",
		Description: "three JAL calls into a JALR-returning function - measures call overhead",
		Program: BuildProgram(
			EncodeADDI(5, 0, 0), // x5 = result
			EncodeJAL(1, 16),    // call add_seven
			EncodeJAL(1, 12),    // call add_seven
			EncodeJAL(1, 8),     // call add_seven
			EncodeEBREAK(),
			EncodeADDI(5, 5, 7), // add_seven: x5 += 7
			EncodeJALR(0, 1, 0), // return
		),
		Expected: map[uint8]int32{
			1: 0x10, // return address of the last call
			5: 21,
		},
		ExpectedReason: "EBREAK instruction",
	}
}

// 7. Store Load - Tests a word round trip plus sub-word extension
func storeLoad() Benchmark {
	return Benchmark{
		Name:        "store_load",
		Description: "SW/LW round trip with byte and halfword reloads - measures memory latency",
		Program: BuildProgram(
			EncodeLUI(5, 0xDEADC),
			EncodeADDI(5, 5, -273),  // x5 = 0xDEADBEEF
			EncodeADDI(6, 0, 0x200), // x6 = base
			EncodeSW(5, 6, 0),
			EncodeLW(7, 6, 0),   // x7 = full word back
			EncodeLBU(28, 6, 0), // low byte, zero-extended
			EncodeLB(29, 6, 3),  // high byte, sign-extended
			EncodeLHU(30, 6, 2), // high halfword, zero-extended
			EncodeEBREAK(),
		),
		Expected: map[uint8]int32{
			7:  -559038737, // 0xDEADBEEF
			28: 0xEF,
			29: -34, // 0xDE sign-extended
			30: 0xDEAD,
		},
		ExpectedReason: "EBREAK instruction",
	}
}
