// Command benchmark runs the rv32sim timing benchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv        Output results in CSV format (default: human-readable)
//	-json       Output a full JSON report with metadata and summary
//	-no-icache  Disable instruction cache simulation
//	-no-dcache  Disable data cache simulation
//	-predictor  Enable the 2-bit branch predictor
//	-v          Verbose per-benchmark output
//
// Example:
//
//	# Run all benchmarks with human-readable output
//	go run ./cmd/benchmark
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
//
//	# Compare static not-taken against the 2-bit predictor
//	go run ./cmd/benchmark -csv
//	go run ./cmd/benchmark -csv -predictor
//
// Every benchmark is validated against the functional emulator before
// its timing run, so a result is only reported when both engines agree
// on the final architectural state.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/rv32sim/benchmarks"
)

func main() {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output a full JSON report")
	noICache := flag.Bool("no-icache", false, "Disable instruction cache simulation")
	noDCache := flag.Bool("no-dcache", false, "Disable data cache simulation")
	predictor := flag.Bool("predictor", false, "Enable the 2-bit branch predictor")
	verbose := flag.Bool("v", false, "Verbose per-benchmark output")
	flag.Parse()

	config := benchmarks.DefaultConfig()
	config.EnableICache = !*noICache
	config.EnableDCache = !*noDCache
	config.EnablePredictor = *predictor
	config.Verbose = *verbose
	config.Output = os.Stdout

	harness := benchmarks.NewHarness(config)
	harness.AddBenchmarks(benchmarks.Programs())

	if !*csvOutput && !*jsonOutput {
		fmt.Println("rv32sim Timing Benchmark Harness")
		fmt.Println("================================")
		fmt.Printf("I-Cache:   %v\n", config.EnableICache)
		fmt.Printf("D-Cache:   %v\n", config.EnableDCache)
		fmt.Printf("Predictor: %v\n", config.EnablePredictor)
		fmt.Println("")
	}

	results, err := harness.RunAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)
	}
}
