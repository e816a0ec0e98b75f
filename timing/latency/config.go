package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds the structural timing parameters of the simulated
// machine.
type TimingConfig struct {
	// ALUCycles is the execute-stage occupancy of every opcode other
	// than MUL (ALU operations, MOVC, LOAD, STORE, branches, HALT).
	// Default: 1.
	ALUCycles uint64 `json:"alu_cycles"`

	// MultiplyCycles is the execute-stage occupancy of MUL. Default: 2.
	MultiplyCycles uint64 `json:"multiply_cycles"`

	// DataMemoryWords is the size of data memory in 32-bit words.
	// Default: 4000.
	DataMemoryWords int `json:"data_memory_words"`
}

// DefaultTimingConfig returns a TimingConfig with the APEX defaults.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ALUCycles:       1,
		MultiplyCycles:  2,
		DataMemoryWords: 4000,
	}
}

// LoadConfig loads a TimingConfig from a JSON file. Fields absent from
// the file keep their defaults.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that all parameters are usable.
func (c *TimingConfig) Validate() error {
	if c.ALUCycles == 0 {
		return fmt.Errorf("alu_cycles must be > 0")
	}
	if c.MultiplyCycles == 0 {
		return fmt.Errorf("multiply_cycles must be > 0")
	}
	if c.DataMemoryWords <= 0 {
		return fmt.Errorf("data_memory_words must be > 0")
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	return &TimingConfig{
		ALUCycles:       c.ALUCycles,
		MultiplyCycles:  c.MultiplyCycles,
		DataMemoryWords: c.DataMemoryWords,
	}
}
