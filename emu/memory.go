package emu

import "fmt"

// DefaultMemoryWords is the default data-memory size. It matches the
// 4000-word store the programs in circulation assume.
const DefaultMemoryWords = 4000

// Memory is the word-addressable data memory used by LOAD and STORE.
// Effective addresses index words directly; they are not divided by 4.
type Memory struct {
	words []int32
}

// NewMemory creates a zero-filled data memory of size words.
func NewMemory(size int) *Memory {
	return &Memory{words: make([]int32, size)}
}

// Size returns the number of words.
func (m *Memory) Size() int {
	return len(m.words)
}

// Read returns the word at addr. Out-of-range addresses are a fatal
// simulation fault.
func (m *Memory) Read(addr int) (int32, error) {
	if addr < 0 || addr >= len(m.words) {
		return 0, fmt.Errorf("memory read out of range: address %d (size %d words)", addr, len(m.words))
	}
	return m.words[addr], nil
}

// Write stores value at addr.
func (m *Memory) Write(addr int, value int32) error {
	if addr < 0 || addr >= len(m.words) {
		return fmt.Errorf("memory write out of range: address %d (size %d words)", addr, len(m.words))
	}
	m.words[addr] = value
	return nil
}

// Reset zeroes all words.
func (m *Memory) Reset() {
	for i := range m.words {
		m.words[i] = 0
	}
}
