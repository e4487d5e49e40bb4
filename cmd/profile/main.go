// Package main provides a profiling wrapper for rv32sim to identify
// simulator performance bottlenecks.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/loader"
	"github.com/sarchlab/rv32sim/timing/core"
	"github.com/sarchlab/rv32sim/timing/latency"
	"github.com/sarchlab/rv32sim/timing/pipeline"
)

var (
	timing     = flag.Bool("timing", false, "Profile the timing simulation instead of the emulator")
	fastTiming = flag.Bool("fast-timing", false, "Profile the fast timing estimator")
	cpuProfile = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile = flag.String("memprofile", "", "write memory profile to file")
	duration   = flag.Duration("duration", 30*time.Second, "max duration to run")
	maxInstr   = flag.Uint64("max-instr", 1000000, "max instructions to execute (0 = unlimited)")
	memSize    = flag.String("m", "10000", "memory size in hex bytes")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: profile [options] <program.img>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		atexit.Exit(1)
	}

	// Profile flushes run through atexit so the timeout path still
	// produces usable profiles.
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			atexit.Exit(1)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			atexit.Exit(1)
		}
		atexit.Register(func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		})
	}
	if *memProfile != "" {
		atexit.Register(func() {
			f, err := os.Create(*memProfile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
				return
			}
			if err := pprof.WriteHeapProfile(f); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
			}
			_ = f.Close()
		})
	}

	size64, err := strconv.ParseUint(strings.TrimPrefix(*memSize, "0x"), 16, 32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid memory size %q\n", *memSize)
		atexit.Exit(1)
	}

	programPath := flag.Arg(0)
	prog, err := loader.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		atexit.Exit(1)
	}

	memory := emu.NewMemory(uint32(size64))
	if !memory.LoadImage(prog.Data) {
		fmt.Fprintf(os.Stderr, "Error: program (%d bytes) does not fit in %d bytes of memory\n",
			prog.Size(), memory.Size())
		atexit.Exit(1)
	}

	fmt.Printf("Loaded: %s (%d bytes)\n", programPath, prog.Size())

	start := time.Now()

	// Stop a runaway program without losing the profiles.
	go func() {
		time.Sleep(*duration)
		fmt.Printf("\nTimeout reached after %v - stopping execution\n", *duration)
		atexit.Exit(2)
	}()

	var reason string
	var instrCount uint64

	if *fastTiming {
		reason, instrCount = runFastTimingProfile(memory)
	} else if *timing {
		reason, instrCount = runTimingProfile(memory)
	} else {
		reason, instrCount = runEmulationProfile(memory)
	}

	elapsed := time.Since(start)

	fmt.Printf("\nProfiling Results:\n")
	fmt.Printf("Halt reason: %s\n", reason)
	fmt.Printf("Instructions executed: %d\n", instrCount)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if instrCount > 0 && elapsed > 0 {
		fmt.Printf("Instructions/second: %.0f\n", float64(instrCount)/elapsed.Seconds())
	}

	atexit.Exit(0)
}

// runEmulationProfile runs the program on the functional hart.
func runEmulationProfile(memory *emu.Memory) (string, uint64) {
	hart := emu.NewHart(memory)
	hart.Run(*maxInstr)

	reason := "execution limit reached"
	if hart.IsHalted() {
		reason = hart.HaltReason()
	}
	return reason, hart.InsnCounter()
}

// runTimingProfile runs the program through the pipelined core with the
// default caches. The cache lookup path dominates timing-mode profiles,
// so it stays enabled here.
func runTimingProfile(memory *emu.Memory) (string, uint64) {
	c := core.NewCore(memory, core.WithDefaultCaches())
	c.Run(*maxInstr)

	stats := c.Stats()
	fmt.Printf("Simulated cycles: %d (CPI %.2f)\n", stats.Cycles, stats.CPI())

	reason := "execution limit reached"
	if c.Halted() {
		reason = c.HaltReason()
	}
	return reason, stats.Instructions
}

// runFastTimingProfile runs the program through the latency-table-only
// estimator.
func runFastTimingProfile(memory *emu.Memory) (string, uint64) {
	table := latency.NewTableWithConfig(latency.DefaultTimingConfig())

	var opts []pipeline.FastTimingOption
	if *maxInstr > 0 {
		opts = append(opts, pipeline.WithMaxInstructions(*maxInstr))
	}

	ft := pipeline.NewFastTiming(memory, table, opts...)
	ft.Run()

	stats := ft.Stats()
	fmt.Printf("Estimated cycles: %d (CPI %.2f)\n", stats.Cycles, stats.CPI())

	reason := "execution limit reached"
	if ft.HaltReason() != "none" {
		reason = ft.HaltReason()
	}
	return reason, stats.Instructions
}
