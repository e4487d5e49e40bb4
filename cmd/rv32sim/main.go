// Package main provides the entry point for rv32sim, an RV32I
// instruction-set simulator with an optional cycle-level timing model.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/hexfmt"
	"github.com/sarchlab/rv32sim/insts"
	"github.com/sarchlab/rv32sim/loader"
	"github.com/sarchlab/rv32sim/timing/core"
	"github.com/sarchlab/rv32sim/timing/latency"
)

var (
	disasmFlag = flag.Bool("d", false, "Disassemble the image before execution")
	showInsts  = flag.Bool("i", false, "Trace each executed instruction")
	showRegs   = flag.Bool("r", false, "Dump registers before each instruction")
	dumpAfter  = flag.Bool("z", false, "Dump registers and memory after the run")
	execLimit  = flag.String("l", "0", "Execution limit, decimal or 0x-prefixed; 0 means unlimited")
	memSize    = flag.String("m", "100", "Memory size in hex, rounded up to a multiple of 16")
	timingMode = flag.Bool("t", false, "Run the cycle-level timing simulation instead of the functional hart")
	configPath = flag.String("config", "", "Path to a timing configuration JSON file (with -t)")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		usage("missing program image")
	}

	size, err := parseMemSize(*memSize)
	if err != nil {
		usage(fmt.Sprintf("bad -m value %q: %v", *memSize, err))
	}
	limit, err := parseExecLimit(*execLimit)
	if err != nil {
		usage(fmt.Sprintf("bad -l value %q: %v", *execLimit, err))
	}

	prog, err := loader.Load(flag.Arg(0))
	if err != nil {
		usage(err.Error())
	}

	memory := emu.NewMemory(size)
	if !memory.LoadImage(prog.Data) {
		usage(fmt.Sprintf("program (%d bytes) does not fit in %d bytes of memory",
			len(prog.Data), memory.Size()))
	}

	if *disasmFlag {
		disassembleImage(os.Stdout, prog)
	}

	if *timingMode {
		runTiming(memory, limit)
		return
	}
	runEmulation(memory, limit)
}

// usage reports a usage error on the diagnostic stream and exits.
func usage(msg string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	fmt.Fprintf(os.Stderr, "\nUsage: rv32sim [options] <program.img>\n")
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
	os.Exit(1)
}

// parseMemSize interprets s as a hex byte count, with or without a 0x
// prefix. NewMemory rounds the result up to the next multiple of 16.
func parseMemSize(s string) (uint32, error) {
	size, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(size), nil
}

// parseExecLimit accepts a decimal or 0x-prefixed instruction count;
// 0 disables the limit.
func parseExecLimit(s string) (uint64, error) {
	return strconv.ParseUint(s, 0, 64)
}

// disassembleImage prints one line per 4-byte word of the image:
// the address, the raw word, and the rendered instruction.
func disassembleImage(w io.Writer, prog *loader.Program) {
	decoder := insts.NewDecoder()
	for i, word := range prog.Words() {
		addr := uint32(i) * 4
		fmt.Fprintf(w, "%s: %s  %s\n",
			hexfmt.To32(addr), hexfmt.To32(word), decoder.Decode(word).Render(addr))
	}
}

// runEmulation executes the image on the functional hart. The hart
// reports the halt reason and instruction count itself.
func runEmulation(memory *emu.Memory, limit uint64) {
	hart := emu.NewHart(memory)
	hart.SetShowInstructions(*showInsts)
	hart.SetShowRegisters(*showRegs)

	hart.Run(limit)

	if *dumpAfter {
		hart.Dump(os.Stdout, "")
		memory.Dump(os.Stdout)
	}
}

// runTiming executes the image on the timed core and prints a cycle
// report.
func runTiming(memory *emu.Memory, limit uint64) {
	timingConfig := latency.DefaultTimingConfig()
	if *configPath != "" {
		var err error
		timingConfig, err = latency.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := timingConfig.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid timing config: %v\n", err)
			os.Exit(1)
		}
	}

	c := core.NewCore(memory,
		core.WithTimingConfig(timingConfig),
		core.WithDefaultCaches(),
	)
	c.Run(limit)

	if c.Halted() {
		fmt.Printf("Execution terminated. Reason: %s\n", c.HaltReason())
	}

	stats := c.Stats()
	fmt.Printf("%d instructions executed\n", stats.Instructions)
	fmt.Printf("\n")
	fmt.Printf("Total Cycles: %d\n", stats.Cycles)
	fmt.Printf("CPI: %.2f\n", stats.CPI())
	fmt.Printf("\n")
	fmt.Printf("Pipeline Events:\n")
	fmt.Printf("  Stalls:  %d\n", stats.Stalls)
	fmt.Printf("  Flushes: %d\n", stats.Flushes)
	fmt.Printf("\n")
	fmt.Printf("Caches:\n")
	fmt.Printf("  I-cache: %d hits, %d misses\n", stats.ICacheHits, stats.ICacheMisses)
	fmt.Printf("  D-cache: %d hits, %d misses\n", stats.DCacheHits, stats.DCacheMisses)

	if *dumpAfter {
		c.Regs().Dump(os.Stdout, "")
		fmt.Printf(" pc %s\n", hexfmt.To32(c.PC()))
		memory.Dump(os.Stdout)
	}
}
