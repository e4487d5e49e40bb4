// Package main provides the entry point for rv32sim.
// rv32sim is an RV32I instruction-set simulator with an optional
// cycle-level timing model.
//
// For the full CLI, use: go run ./cmd/rv32sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("rv32sim - RV32I Instruction-Set Simulator")
	fmt.Println("")
	fmt.Println("Usage: rv32sim [options] <program.img>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -d         Disassemble the program image before running")
	fmt.Println("  -i         Echo each instruction as it executes")
	fmt.Println("  -r         Dump registers after each instruction")
	fmt.Println("  -z         Dump registers and memory after the run")
	fmt.Println("  -l N       Stop after N instructions (0 = unlimited)")
	fmt.Println("  -m HEX     Memory size in hex bytes (default 100)")
	fmt.Println("  -t         Enable timing simulation mode")
	fmt.Println("  -config    Path to timing configuration JSON file")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rv32sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/rv32sim' instead.")
	}
}
