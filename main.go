// Package main provides the entry point for apexsim.
// apexsim is a cycle-by-cycle APEX five-stage pipeline simulator.
//
// For the full CLI, use: go run ./cmd/apexsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("apexsim - APEX pipeline simulator")
	fmt.Println("")
	fmt.Println("Usage: apexsim [options] <input_file> <mode> <extra>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config    Path to timing configuration JSON file")
	fmt.Println("  -emulate   Run the single-cycle reference emulator")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/apexsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/apexsim' instead.")
	}
}
