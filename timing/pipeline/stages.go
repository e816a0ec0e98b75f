package pipeline

import (
	"fmt"

	"github.com/apexlab/apexsim/insts"
)

// Stage names as printed in the trace.
const (
	stageFetch     = "Fetch"
	stageDecode    = "Decode/RF"
	stageExecute   = "Execute"
	stageMemory    = "Memory"
	stageWriteback = "Writeback"
)

// doFetch performs the fetch stage.
//
// A pending flush takes priority: the decode latch is squashed, the PC
// moves to the branch target, and fetch resumes there next cycle. After
// HALT has been decoded fetch stays idle until the driver terminates.
func (p *Pipeline) doFetch() {
	if p.flushPending {
		p.flushPending = false
		p.fetchHalted = false
		p.decodeLatch.Clear()
		p.fetchLatch.Clear()
		if !p.code.Contains(p.flushTarget) {
			p.fail(fmt.Errorf("branch target outside code memory: pc %d", p.flushTarget))
			return
		}
		p.pc = p.flushTarget
		p.trace(stageFetch, &p.fetchLatch)
		return
	}

	if p.fetchHalted {
		p.trace(stageFetch, &p.fetchLatch)
		return
	}

	l := &p.fetchLatch
	switch {
	case !l.Stalled:
		in, ok := p.code.At(p.pc)
		if !ok {
			// Ran past the end of code memory: feed bubbles until a
			// branch redirects or the program drains.
			if !p.decodeLatch.Stalled {
				p.decodeLatch.Clear()
			}
			l.Clear()
			break
		}

		l.Clear()
		l.Valid = true
		l.PC = p.pc
		l.Inst = in
		p.pc += 4

		if !p.decodeLatch.Stalled {
			p.decodeLatch = *l
		} else {
			// Hold the fetched instruction undelivered.
			l.Stalled = true
		}

	case !p.decodeLatch.Stalled:
		// Decode drained its stall: deliver the held instruction.
		l.Stalled = false
		p.decodeLatch = *l
	}

	p.trace(stageFetch, l)
}

// doDecode performs the decode / register-read stage.
//
// The stall flag is recomputed from scratch every cycle: source
// readiness, the zero-flag wait of a conditional branch, and execute
// back-pressure. A stalled decode feeds a bubble into execute; an
// unstalled one forwards its latch.
func (p *Pipeline) doDecode() {
	l := &p.decodeLatch

	if p.flushPending {
		// This instruction is younger than the taken branch: roll back
		// its scoreboard claim and bubble execute. Fetch squashes the
		// latch itself later this cycle.
		p.hazard.RollbackClaim(l)
		p.executeLatch.Clear()
		l.Stalled = false
		p.trace(stageDecode, l)
		return
	}

	if !l.Valid {
		if !p.executeLatch.Stalled {
			p.executeLatch = *l
		}
		p.trace(stageDecode, l)
		return
	}

	stalled := false
	switch op := l.Inst.Op; {
	case op == insts.OpBZ || op == insts.OpBNZ:
		// Wait out the flag producer ahead of us, if any. The wait is
		// derived once, from the opcode occupying execute right now.
		if !l.FlagWaitArmed {
			l.FlagWaitArmed = true
			l.BubbleCycles = p.hazard.ZeroFlagWait(&p.executeLatch)
		}
		if l.BubbleCycles > 0 {
			l.BubbleCycles--
			stalled = true
		}

	case op == insts.OpHALT:
		p.fetchHalted = true

	default:
		if p.hazard.SourcesReady(l.Inst) {
			p.hazard.ReadSources(l)
			p.hazard.ClaimDest(l)
		} else {
			stalled = true
		}
	}

	if p.executeLatch.Stalled {
		stalled = true
	}
	l.Stalled = stalled

	if stalled {
		p.stallCount++
		if !p.executeLatch.Stalled {
			p.executeLatch.Clear()
		}
	} else {
		p.executeLatch = *l
	}

	p.trace(stageDecode, l)
}

// doExecute performs the execute stage: ALU operations, effective
// addresses, and branch resolution.
func (p *Pipeline) doExecute() {
	l := &p.executeLatch

	if !l.Valid {
		p.memoryLatch = *l
		p.trace(stageExecute, l)
		return
	}

	// Multi-cycle occupancy: hold the latch and bubble downstream until
	// the final cycle, then compute and emit.
	l.CyclesInExecute++
	if l.CyclesInExecute < p.table.ExecuteCycles(l.Inst.Op) {
		l.Stalled = true
		p.memoryLatch.Clear()
		p.trace(stageExecute, l)
		return
	}
	l.Stalled = false
	l.CyclesInExecute = 0

	in := l.Inst
	switch in.Op {
	case insts.OpMOVC:
		l.Result = in.Imm
	case insts.OpADD:
		l.Result = l.Rs1Value + l.Rs2Value
	case insts.OpSUB:
		l.Result = l.Rs1Value - l.Rs2Value
	case insts.OpMUL:
		l.Result = l.Rs1Value * l.Rs2Value
	case insts.OpAND:
		l.Result = l.Rs1Value & l.Rs2Value
	case insts.OpOR:
		l.Result = l.Rs1Value | l.Rs2Value
	case insts.OpEXOR:
		l.Result = l.Rs1Value ^ l.Rs2Value
	case insts.OpLOAD:
		l.Result = l.Rs1Value + in.Imm
	case insts.OpSTORE:
		l.Result = l.Rs2Value + in.Imm
	case insts.OpBZ:
		if p.regFile.Zero {
			p.raiseFlush(l.PC + int(in.Imm))
		}
	case insts.OpBNZ:
		if !p.regFile.Zero {
			p.raiseFlush(l.PC + int(in.Imm))
		}
	case insts.OpJUMP:
		p.raiseFlush(int(l.Rs1Value + in.Imm))
	case insts.OpHALT:
		// Propagates.
	}

	p.memoryLatch = *l
	p.trace(stageExecute, l)
}

// doMemory performs the memory stage. LOAD replaces the effective
// address in the scratch result with the loaded value; STORE writes its
// data word. Everything else passes through. The latch always moves on
// to writeback.
func (p *Pipeline) doMemory() {
	l := &p.memoryLatch

	if l.Valid {
		switch l.Inst.Op {
		case insts.OpLOAD:
			value, err := p.memory.Read(int(l.Result))
			if err != nil {
				p.fail(err)
				return
			}
			l.Result = value
		case insts.OpSTORE:
			if err := p.memory.Write(int(l.Result), l.Rs1Value); err != nil {
				p.fail(err)
				return
			}
		}
	}

	p.writebackLatch = *l
	p.trace(stageMemory, l)
}

// doWriteback performs retirement: the register file commit, the zero
// flag for arithmetic opcodes, and halt detection.
func (p *Pipeline) doWriteback() {
	l := &p.writebackLatch

	if l.Valid {
		op := l.Inst.Op
		if op.WritesReg() {
			p.regFile.Write(l.Inst.Rd, l.Result)
			p.regFile.MarkReady(l.Inst.Rd)
		}
		if op.SetsZeroFlag() {
			p.regFile.UpdateZero(l.Result)
		}
		if op == insts.OpHALT {
			p.halted = true
		}
		p.retiredCount++
	}

	p.trace(stageWriteback, l)
}
