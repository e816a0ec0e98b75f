package pipeline

import (
	"fmt"
	"io"

	"github.com/apexlab/apexsim/emu"
)

// dumpMemoryWords is how many data-memory words the final dump prints.
const dumpMemoryWords = 100

// Tracer renders simulator output: the per-cycle stage trace in display
// mode, and the architectural-file and data-memory dumps emitted in both
// modes at the end of the run.
type Tracer struct {
	w       io.Writer
	display bool
}

// NewTracer creates a tracer writing to w. Per-cycle lines are printed
// only when display is true.
func NewTracer(w io.Writer, display bool) *Tracer {
	return &Tracer{
		w:       w,
		display: display,
	}
}

// CycleHeader prints the clock-cycle banner.
func (t *Tracer) CycleHeader(cycle uint64) {
	if !t.display {
		return
	}
	fmt.Fprintf(t.w, "--------------------------------\n")
	fmt.Fprintf(t.w, "Clock Cycle #: %d\n", cycle)
	fmt.Fprintf(t.w, "--------------------------------\n")
}

// StageLine prints one stage's latch content. Bubbles print only the
// pc prefix.
func (t *Tracer) StageLine(stage string, l *Latch) {
	if !t.display {
		return
	}
	fmt.Fprintf(t.w, "%-15s: pc(%d) ", stage, l.PC)
	if l.Valid {
		fmt.Fprintf(t.w, "%s ", l.Inst)
	}
	fmt.Fprintf(t.w, "\n")
}

// Complete prints the end-of-simulation banner.
func (t *Tracer) Complete() {
	fmt.Fprintf(t.w, "(apex) >> Simulation Complete")
}

// DumpState prints the architectural register file and the first
// dumpMemoryWords words of data memory.
func (t *Tracer) DumpState(regFile *emu.RegFile, memory *emu.Memory) {
	fmt.Fprintf(t.w, "\n=================STATE OF ARCHITECTURAL FILE================\n")
	for i := 0; i < emu.NumRegs; i++ {
		status := "INVALID"
		if regFile.Valid[i] {
			status = "VALID"
		}
		fmt.Fprintf(t.w, "|REG[%d] | value=%d | Status=%s |\n", i, regFile.Regs[i], status)
	}

	fmt.Fprintf(t.w, "===============STATE OF DATA MEMORY==================\n")
	for j := 0; j < dumpMemoryWords && j < memory.Size(); j++ {
		value, _ := memory.Read(j)
		fmt.Fprintf(t.w, "|MEM[%d} | Data Value=%d \n\n", j, value)
	}
}
