package pipeline

import (
	"github.com/apexlab/apexsim/emu"
	"github.com/apexlab/apexsim/insts"
	"github.com/apexlab/apexsim/timing/latency"
)

// HazardUnit applies the scoreboard policy: source readiness, destination
// claims and their rollback, and the zero-flag wait for conditional
// branches.
type HazardUnit struct {
	regFile *emu.RegFile
	table   *latency.Table
}

// NewHazardUnit creates a hazard unit over the given register file and
// timing table.
func NewHazardUnit(regFile *emu.RegFile, table *latency.Table) *HazardUnit {
	return &HazardUnit{
		regFile: regFile,
		table:   table,
	}
}

// SourcesReady reports whether every source register the instruction
// reads is valid.
func (h *HazardUnit) SourcesReady(in insts.Instruction) bool {
	if in.Op.ReadsRs1() && !h.regFile.IsReady(in.Rs1) {
		return false
	}
	if in.Op.ReadsRs2() && !h.regFile.IsReady(in.Rs2) {
		return false
	}
	return true
}

// ReadSources copies the source register values into the latch.
func (h *HazardUnit) ReadSources(l *Latch) {
	if l.Inst.Op.ReadsRs1() {
		l.Rs1Value = h.regFile.Read(l.Inst.Rs1)
	}
	if l.Inst.Op.ReadsRs2() {
		l.Rs2Value = h.regFile.Read(l.Inst.Rs2)
	}
}

// ClaimDest clears the valid bit of the destination register and records
// the claim in the latch. No-op for non-writing opcodes and for latches
// that already claimed.
func (h *HazardUnit) ClaimDest(l *Latch) {
	if !l.Inst.Op.WritesReg() || l.ClaimedRd {
		return
	}
	h.regFile.MarkPending(l.Inst.Rd)
	l.ClaimedRd = true
}

// RollbackClaim restores the valid bit a squashed latch claimed. The
// speculative-writer rollback on flush.
func (h *HazardUnit) RollbackClaim(l *Latch) {
	if !l.Valid || !l.ClaimedRd {
		return
	}
	h.regFile.MarkReady(l.Inst.Rd)
	l.ClaimedRd = false
}

// ZeroFlagWait returns the number of bubbles a conditional branch in
// decode must insert, given the latch currently occupying execute: the
// flag producer's execute occupancy (1 for ADD/SUB, 2 for MUL), zero
// when execute holds anything else.
func (h *HazardUnit) ZeroFlagWait(ex *Latch) uint64 {
	if !ex.Valid {
		return 0
	}
	return h.table.ZeroFlagWait(ex.Inst.Op)
}
