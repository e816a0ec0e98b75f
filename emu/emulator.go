package emu

import (
	"fmt"

	"github.com/apexlab/apexsim/insts"
)

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Halted is true if the program executed HALT.
	Halted bool

	// Err is set if an error occurred during execution.
	Err error
}

// Emulator executes APEX instructions functionally, one full instruction
// per step. It is the single-cycle reference for the timing pipeline: the
// two must agree on final register and memory state for any program whose
// result depends only on that state.
type Emulator struct {
	code    *insts.CodeMemory
	regFile *RegFile
	memory  *Memory

	pc     int
	halted bool

	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithMaxInstructions bounds the number of instructions Run will execute.
// Zero means no limit.
func WithMaxInstructions(n uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = n
	}
}

// NewEmulator creates an emulator over the given program, register file,
// and data memory.
func NewEmulator(code *insts.CodeMemory, regFile *RegFile, memory *Memory, opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		code:    code,
		regFile: regFile,
		memory:  memory,
		pc:      insts.BaseAddress,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PC returns the current program counter.
func (e *Emulator) PC() int {
	return e.pc
}

// Halted returns true once HALT has executed.
func (e *Emulator) Halted() bool {
	return e.halted
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Step executes the instruction at PC and advances.
func (e *Emulator) Step() StepResult {
	if e.halted {
		return StepResult{Halted: true}
	}

	in, ok := e.code.At(e.pc)
	if !ok {
		return StepResult{Err: fmt.Errorf("instruction fetch outside code memory: pc %d", e.pc)}
	}

	nextPC := e.pc + 4
	redirected := false

	switch in.Op {
	case insts.OpMOVC:
		e.regFile.Write(in.Rd, in.Imm)

	case insts.OpADD, insts.OpSUB, insts.OpMUL, insts.OpAND, insts.OpOR, insts.OpEXOR:
		rs1 := e.regFile.Read(in.Rs1)
		rs2 := e.regFile.Read(in.Rs2)
		var result int32
		switch in.Op {
		case insts.OpADD:
			result = rs1 + rs2
		case insts.OpSUB:
			result = rs1 - rs2
		case insts.OpMUL:
			result = rs1 * rs2
		case insts.OpAND:
			result = rs1 & rs2
		case insts.OpOR:
			result = rs1 | rs2
		case insts.OpEXOR:
			result = rs1 ^ rs2
		}
		e.regFile.Write(in.Rd, result)
		if in.Op.SetsZeroFlag() {
			e.regFile.UpdateZero(result)
		}

	case insts.OpLOAD:
		addr := int(e.regFile.Read(in.Rs1) + in.Imm)
		value, err := e.memory.Read(addr)
		if err != nil {
			return StepResult{Err: err}
		}
		e.regFile.Write(in.Rd, value)

	case insts.OpSTORE:
		addr := int(e.regFile.Read(in.Rs2) + in.Imm)
		if err := e.memory.Write(addr, e.regFile.Read(in.Rs1)); err != nil {
			return StepResult{Err: err}
		}

	case insts.OpBZ:
		if e.regFile.Zero {
			nextPC = e.pc + int(in.Imm)
			redirected = true
		}

	case insts.OpBNZ:
		if !e.regFile.Zero {
			nextPC = e.pc + int(in.Imm)
			redirected = true
		}

	case insts.OpJUMP:
		nextPC = int(e.regFile.Read(in.Rs1) + in.Imm)
		redirected = true

	case insts.OpHALT:
		e.halted = true
	}

	e.instructionCount++

	if e.halted {
		return StepResult{Halted: true}
	}

	if redirected && !e.code.Contains(nextPC) {
		return StepResult{Err: fmt.Errorf("branch target outside code memory: pc %d", nextPC)}
	}
	e.pc = nextPC
	return StepResult{}
}

// Run executes until HALT, an error, or the instruction limit.
func (e *Emulator) Run() error {
	for !e.halted {
		if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
			return fmt.Errorf("instruction limit reached (%d)", e.maxInstructions)
		}
		result := e.Step()
		if result.Err != nil {
			return result.Err
		}
	}
	return nil
}
