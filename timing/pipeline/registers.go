// Package pipeline implements the APEX five-stage in-order pipeline:
// Fetch, Decode/Register-Read, Execute, Memory, Writeback.
//
// Features:
//   - One latch per stage, updated tail-first (WB, MEM, EX, DRF, F) so
//     that each stage consumes its predecessor's previous-cycle output
//   - A register scoreboard serialising producer/consumer pairs without
//     renaming or forwarding
//   - Multi-cycle execute occupancy (MUL) with bubble insertion
//   - Branch resolution in execute with a one-shot flush of the two
//     younger stages and rollback of their scoreboard claims
package pipeline

import (
	"github.com/apexlab/apexsim/insts"
)

// Latch is the per-stage snapshot of the in-flight instruction plus the
// stage's control state. A latch with Valid == false is a bubble.
type Latch struct {
	// Valid indicates this latch holds an instruction, not a bubble.
	Valid bool

	// PC of the instruction.
	PC int

	// Inst is the decoded instruction.
	Inst insts.Instruction

	// Source operand values resolved at decode.
	Rs1Value int32
	Rs2Value int32

	// Result is the stage scratch register: the ALU result or effective
	// address out of execute, replaced by the loaded value in memory.
	Result int32

	// Stalled marks the stage as holding this latch for another cycle.
	// It is recomputed every cycle and observed by the upstream stage
	// later in the same tick.
	Stalled bool

	// BubbleCycles counts the remaining zero-flag wait of a conditional
	// branch sitting in decode.
	BubbleCycles uint64

	// FlagWaitArmed records that BubbleCycles has been computed. The
	// wait is derived once, from the opcode occupying execute on the
	// branch's first decode cycle.
	FlagWaitArmed bool

	// CyclesInExecute counts how long the instruction has occupied the
	// execute stage, for multi-cycle opcodes.
	CyclesInExecute uint64

	// ClaimedRd records that decode cleared the valid bit of Inst.Rd for
	// this instruction. A flush restores exactly the claims of the
	// latches it squashes.
	ClaimedRd bool
}

// Clear resets the latch to a bubble.
func (l *Latch) Clear() {
	*l = Latch{}
}
