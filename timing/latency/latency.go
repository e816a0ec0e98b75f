// Package latency provides the instruction timing model for the APEX
// pipeline: per-opcode execute-stage occupancy and the zero-flag wait
// consumed by conditional branches.
package latency

import (
	"github.com/apexlab/apexsim/insts"
)

// Table provides instruction timing lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a table with the default APEX timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a table with a custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// ExecuteCycles returns how many cycles the opcode occupies the execute
// stage. MUL is the only multi-cycle opcode in the default configuration.
func (t *Table) ExecuteCycles(op insts.Op) uint64 {
	switch op {
	case insts.OpMUL:
		return t.config.MultiplyCycles
	default:
		return t.config.ALUCycles
	}
}

// ZeroFlagWait returns the number of bubbles a conditional branch in
// decode must wait when op occupies the execute stage. A flag producer
// ahead of the branch needs its full execute occupancy plus the memory
// stage before the flag commits at writeback; waiting ExecuteCycles
// bubbles puts the branch's own execute in the same cycle as that
// commit, and since writeback runs first in each cycle the branch reads
// the committed flag. Non-producers impose no wait.
func (t *Table) ZeroFlagWait(op insts.Op) uint64 {
	if !op.SetsZeroFlag() {
		return 0
	}
	return t.ExecuteCycles(op)
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
