// Package main provides the entry point for apexsim.
// apexsim is a cycle-by-cycle simulator for the APEX five-stage pipeline.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/apexlab/apexsim/emu"
	"github.com/apexlab/apexsim/insts"
	"github.com/apexlab/apexsim/loader"
	"github.com/apexlab/apexsim/timing/core"
	"github.com/apexlab/apexsim/timing/latency"
	"github.com/apexlab/apexsim/timing/pipeline"
)

var (
	configPath = flag.String("config", "", "Path to timing configuration JSON file")
	emulate    = flag.Bool("emulate", false, "Run the single-cycle reference emulator instead of the pipeline")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 3 {
		fmt.Fprintf(os.Stderr, "Usage: apexsim [options] <input_file> <mode> <extra>\n")
		fmt.Fprintf(os.Stderr, "\n<mode> is display or simulate; <extra> is reserved.\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programPath := flag.Arg(0)
	display := isDisplayMode(flag.Arg(1))
	_ = flag.Arg(2) // Reserved.

	code, err := loader.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "apexsim: %v\n", err)
		os.Exit(1)
	}

	config, err := loadTimingConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "apexsim: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		printCodeMemory(code)
	}

	regFile := emu.NewRegFile()
	memory := emu.NewMemory(config.DataMemoryWords)
	tracer := pipeline.NewTracer(os.Stdout, display)

	if *emulate {
		runEmulation(code, regFile, memory, tracer)
		return
	}

	c := core.NewCore(code, regFile, memory,
		pipeline.WithLatencyTable(latency.NewTableWithConfig(config)),
		pipeline.WithTracer(tracer),
	)

	runErr := c.Run()
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "apexsim: %v\n", runErr)
		tracer.DumpState(regFile, memory)
		os.Exit(1)
	}

	tracer.Complete()
	tracer.DumpState(regFile, memory)

	if *verbose {
		printStats(c.Stats())
	}
}

// isDisplayMode compares the mode argument case-insensitively to
// "display"; any other value means simulate.
func isDisplayMode(mode string) bool {
	return strings.EqualFold(mode, "display")
}

// loadTimingConfig resolves the timing configuration: the file at path,
// or the defaults when path is empty.
func loadTimingConfig(path string) (*latency.TimingConfig, error) {
	if path == "" {
		return latency.DefaultTimingConfig(), nil
	}
	config, err := latency.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// runEmulation executes the program on the single-cycle reference
// emulator and prints the same final dumps.
func runEmulation(code *insts.CodeMemory, regFile *emu.RegFile, memory *emu.Memory, tracer *pipeline.Tracer) {
	e := emu.NewEmulator(code, regFile, memory)
	if err := e.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "apexsim: %v\n", err)
		tracer.DumpState(regFile, memory)
		os.Exit(1)
	}

	tracer.Complete()
	tracer.DumpState(regFile, memory)

	if *verbose {
		fmt.Fprintf(os.Stderr, "Instructions executed: %d\n", e.InstructionCount())
	}
}

// printCodeMemory prints the loaded instruction table.
func printCodeMemory(code *insts.CodeMemory) {
	fmt.Fprintf(os.Stderr, "apexsim: loaded %d instructions\n", code.Len())
	for i, in := range code.Instructions() {
		fmt.Fprintf(os.Stderr, "  pc(%d) %s\n", insts.BaseAddress+4*i, in)
	}
}

// printStats prints the pipeline statistics report.
func printStats(stats pipeline.Stats) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "Total Instructions: %d\n", stats.Instructions)
	fmt.Fprintf(os.Stderr, "Total Cycles: %d\n", stats.Cycles)
	fmt.Fprintf(os.Stderr, "CPI: %.2f\n", stats.CPI())
	fmt.Fprintf(os.Stderr, "Stalls:  %d\n", stats.Stalls)
	fmt.Fprintf(os.Stderr, "Flushes: %d\n", stats.Flushes)
}
