// Package loader provides the APEX text assembler.
//
// It reads a program source file (one instruction per line, fields
// separated by whitespace or commas in the order OPCODE RD RS1 RS2 IMM)
// and produces the code memory consumed by the emulator and the timing
// pipeline. Registers are integers 0..31 (an optional leading R is
// accepted); immediates are signed decimal (an optional leading # is
// accepted); unused operand fields are zero.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/apexlab/apexsim/insts"
)

// NumRegs is the size of the architectural register file.
const NumRegs = 32

// Load reads and assembles the program at path.
func Load(path string) (*insts.CodeMemory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program file: %w", err)
	}
	defer func() { _ = f.Close() }()

	code, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return code, nil
}

// LoadString assembles program source held in a string. Tests and tools
// use this to avoid temp files.
func LoadString(source string) (*insts.CodeMemory, error) {
	return parse(strings.NewReader(source))
}

func parse(r io.Reader) (*insts.CodeMemory, error) {
	var instructions []insts.Instruction

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		in, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		instructions = append(instructions, in)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	return insts.NewCodeMemory(instructions), nil
}

// parseLine assembles one OPCODE RD RS1 RS2 IMM line.
func parseLine(line string) (insts.Instruction, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 5 {
		return insts.Instruction{}, fmt.Errorf(
			"malformed instruction %q: want 5 fields, got %d", line, len(fields))
	}

	op, ok := insts.OpFromMnemonic(strings.ToUpper(fields[0]))
	if !ok {
		return insts.Instruction{}, fmt.Errorf("unknown opcode %q", fields[0])
	}

	rd, err := parseReg(fields[1])
	if err != nil {
		return insts.Instruction{}, fmt.Errorf("rd: %w", err)
	}
	rs1, err := parseReg(fields[2])
	if err != nil {
		return insts.Instruction{}, fmt.Errorf("rs1: %w", err)
	}
	rs2, err := parseReg(fields[3])
	if err != nil {
		return insts.Instruction{}, fmt.Errorf("rs2: %w", err)
	}
	imm, err := parseImm(fields[4])
	if err != nil {
		return insts.Instruction{}, fmt.Errorf("imm: %w", err)
	}

	return insts.Instruction{Op: op, Rd: rd, Rs1: rs1, Rs2: rs2, Imm: imm}, nil
}

func parseReg(field string) (int, error) {
	s := strings.TrimPrefix(strings.ToUpper(field), "R")
	r, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("malformed register %q", field)
	}
	if r < 0 || r >= NumRegs {
		return 0, fmt.Errorf("register R%d out of range [0, %d]", r, NumRegs-1)
	}
	return r, nil
}

func parseImm(field string) (int32, error) {
	s := strings.TrimPrefix(field, "#")
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("malformed immediate %q", field)
	}
	return int32(v), nil
}
