// Package emu provides the APEX architectural state and a functional
// single-cycle reference interpreter.
package emu

// NumRegs is the size of the architectural register file.
const NumRegs = 32

// RegFile represents the APEX register file: 32 signed 32-bit registers,
// a parallel valid-bit scoreboard, and the global zero flag.
//
// A valid bit of true means the register value is readable; false means a
// producer is in flight and consumers must wait. The decode stage is the
// only component that clears valid bits; writeback sets them when the
// producer commits, and a branch flush sets them back for the claims of
// the instructions it squashes.
type RegFile struct {
	// Regs holds the architectural register values.
	Regs [NumRegs]int32

	// Valid holds the scoreboard bits.
	Valid [NumRegs]bool

	// Zero is the condition flag written by retiring ADD/SUB/MUL.
	Zero bool
}

// NewRegFile creates a register file with all registers zero and valid.
func NewRegFile() *RegFile {
	r := &RegFile{}
	for i := range r.Valid {
		r.Valid[i] = true
	}
	return r
}

// Read returns the value of register reg.
func (r *RegFile) Read(reg int) int32 {
	return r.Regs[reg]
}

// Write stores value into register reg.
func (r *RegFile) Write(reg int, value int32) {
	r.Regs[reg] = value
}

// IsReady reports whether register reg is readable.
func (r *RegFile) IsReady(reg int) bool {
	return r.Valid[reg]
}

// MarkPending clears the valid bit of reg: a producer is in flight.
func (r *RegFile) MarkPending(reg int) {
	r.Valid[reg] = false
}

// MarkReady sets the valid bit of reg: the producer has committed.
func (r *RegFile) MarkReady(reg int) {
	r.Valid[reg] = true
}

// UpdateZero commits the zero flag from a retired arithmetic result.
func (r *RegFile) UpdateZero(result int32) {
	r.Zero = result == 0
}

// Reset returns the register file to its initial state.
func (r *RegFile) Reset() {
	for i := range r.Regs {
		r.Regs[i] = 0
		r.Valid[i] = true
	}
	r.Zero = false
}
