package pipeline

import (
	"github.com/apexlab/apexsim/emu"
	"github.com/apexlab/apexsim/insts"
	"github.com/apexlab/apexsim/timing/latency"
)

// Pipeline represents the APEX five-stage instruction pipeline.
type Pipeline struct {
	code    *insts.CodeMemory
	regFile *emu.RegFile
	memory  *emu.Memory

	table  *latency.Table
	hazard *HazardUnit
	tracer *Tracer

	// Stage latches.
	fetchLatch     Latch
	decodeLatch    Latch
	executeLatch   Latch
	memoryLatch    Latch
	writebackLatch Latch

	// Fetch state.
	pc          int
	fetchHalted bool

	// Redirect event raised by execute, consumed by the next fetch.
	flushPending bool
	flushTarget  int

	// Execution state.
	halted bool
	err    error

	// Statistics.
	cycleCount   uint64
	retiredCount uint64
	stallCount   uint64
	branchCount  uint64
	flushCount   uint64
}

// PipelineOption is a functional option for configuring the Pipeline.
type PipelineOption func(*Pipeline)

// WithLatencyTable sets a custom timing table.
func WithLatencyTable(table *latency.Table) PipelineOption {
	return func(p *Pipeline) {
		p.table = table
	}
}

// WithTracer attaches a tracer for display-mode per-cycle output.
func WithTracer(tracer *Tracer) PipelineOption {
	return func(p *Pipeline) {
		p.tracer = tracer
	}
}

// NewPipeline creates a pipeline over the given program, register file,
// and data memory. All latches start as bubbles and the PC at the code
// base address.
func NewPipeline(code *insts.CodeMemory, regFile *emu.RegFile, memory *emu.Memory, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		code:    code,
		regFile: regFile,
		memory:  memory,
		pc:      insts.BaseAddress,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.table == nil {
		p.table = latency.NewTable()
	}
	p.hazard = NewHazardUnit(regFile, p.table)

	return p
}

// PC returns the current program counter.
func (p *Pipeline) PC() int {
	return p.pc
}

// Halted returns true once HALT has retired.
func (p *Pipeline) Halted() bool {
	return p.halted
}

// Err returns the fatal simulation fault, if any.
func (p *Pipeline) Err() error {
	return p.err
}

// Stats holds pipeline performance statistics.
type Stats struct {
	Cycles       uint64
	Instructions uint64
	Stalls       uint64
	Branches     uint64
	Flushes      uint64
}

// CPI returns cycles per retired instruction.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Stats returns pipeline performance statistics.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Cycles:       p.cycleCount,
		Instructions: p.retiredCount,
		Stalls:       p.stallCount,
		Branches:     p.branchCount,
		Flushes:      p.flushCount,
	}
}

// Tick advances the pipeline by one cycle.
//
// Stages run tail first (WB, MEM, EX, DRF, F) so that each stage
// consumes the latch its predecessor produced in the previous cycle, and
// stall flags computed downstream are observed upstream within the same
// tick. This emulates edge-triggered latches without double-buffering.
func (p *Pipeline) Tick() {
	if p.halted || p.err != nil {
		return
	}

	p.cycleCount++
	if p.tracer != nil {
		p.tracer.CycleHeader(p.cycleCount)
	}

	p.doWriteback()
	p.doMemory()
	if p.err != nil {
		return
	}
	p.doExecute()
	p.doDecode()
	p.doFetch()
}

// Run executes the pipeline until HALT retires or a fatal fault occurs.
func (p *Pipeline) Run() error {
	for !p.halted && p.err == nil {
		p.Tick()
	}
	return p.err
}

// RunCycles executes at most n cycles. Returns true if still running.
func (p *Pipeline) RunCycles(n uint64) bool {
	for i := uint64(0); i < n && !p.halted && p.err == nil; i++ {
		p.Tick()
	}
	return !p.halted && p.err == nil
}

// Reset clears all pipeline state, ready for another run over the same
// program. The register file and data memory are reset too.
func (p *Pipeline) Reset() {
	p.fetchLatch.Clear()
	p.decodeLatch.Clear()
	p.executeLatch.Clear()
	p.memoryLatch.Clear()
	p.writebackLatch.Clear()

	p.pc = insts.BaseAddress
	p.fetchHalted = false
	p.flushPending = false
	p.flushTarget = 0
	p.halted = false
	p.err = nil

	p.cycleCount = 0
	p.retiredCount = 0
	p.stallCount = 0
	p.branchCount = 0
	p.flushCount = 0

	p.regFile.Reset()
	p.memory.Reset()
}

// FetchLatch returns the current fetch latch for inspection.
func (p *Pipeline) FetchLatch() Latch {
	return p.fetchLatch
}

// DecodeLatch returns the current decode latch for inspection.
func (p *Pipeline) DecodeLatch() Latch {
	return p.decodeLatch
}

// ExecuteLatch returns the current execute latch for inspection.
func (p *Pipeline) ExecuteLatch() Latch {
	return p.executeLatch
}

// MemoryLatch returns the current memory latch for inspection.
func (p *Pipeline) MemoryLatch() Latch {
	return p.memoryLatch
}

// WritebackLatch returns the current writeback latch for inspection.
func (p *Pipeline) WritebackLatch() Latch {
	return p.writebackLatch
}

// raiseFlush records the redirect event resolved by execute. The next
// fetch invocation squashes the younger stages and moves the PC.
func (p *Pipeline) raiseFlush(target int) {
	p.flushPending = true
	p.flushTarget = target
	p.branchCount++
	p.flushCount++
}

// fail records a fatal simulation fault.
func (p *Pipeline) fail(err error) {
	p.err = err
}

func (p *Pipeline) trace(stage string, l *Latch) {
	if p.tracer != nil {
		p.tracer.StageLine(stage, l)
	}
}
