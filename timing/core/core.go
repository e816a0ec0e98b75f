// Package core provides the cycle-accurate APEX core model.
// It wraps the pipeline implementation to provide a high-level interface.
package core

import (
	"github.com/apexlab/apexsim/emu"
	"github.com/apexlab/apexsim/insts"
	"github.com/apexlab/apexsim/timing/pipeline"
)

// Core represents one APEX core: the five-stage pipeline plus its shared
// architectural resources.
type Core struct {
	// Pipeline is the underlying five-stage pipeline.
	Pipeline *pipeline.Pipeline

	regFile *emu.RegFile
	memory  *emu.Memory
}

// NewCore creates a Core over the given program, register file, and data
// memory. Pipeline options pass through.
func NewCore(code *insts.CodeMemory, regFile *emu.RegFile, memory *emu.Memory, opts ...pipeline.PipelineOption) *Core {
	return &Core{
		Pipeline: pipeline.NewPipeline(code, regFile, memory, opts...),
		regFile:  regFile,
		memory:   memory,
	}
}

// RegFile returns the core's register file.
func (c *Core) RegFile() *emu.RegFile {
	return c.regFile
}

// Memory returns the core's data memory.
func (c *Core) Memory() *emu.Memory {
	return c.memory
}

// Tick executes one pipeline cycle.
func (c *Core) Tick() {
	c.Pipeline.Tick()
}

// Halted returns true once the core has retired HALT.
func (c *Core) Halted() bool {
	return c.Pipeline.Halted()
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() pipeline.Stats {
	return c.Pipeline.Stats()
}

// Run executes the core until it halts or faults.
func (c *Core) Run() error {
	return c.Pipeline.Run()
}

// RunCycles executes at most n cycles. Returns true if still running.
func (c *Core) RunCycles(n uint64) bool {
	return c.Pipeline.RunCycles(n)
}

// Reset clears all core state, including the register file and memory.
func (c *Core) Reset() {
	c.Pipeline.Reset()
}
