package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds latency values for different instruction types.
// Values model a small in-order embedded RV32 core.
type TimingConfig struct {
	// ALULatency is the execution latency for ALU operations
	// (LUI, AUIPC, and the immediate and register forms of
	// ADD/SLT/XOR/OR/AND and shifts). Default: 1 cycle.
	ALULatency uint64 `json:"alu_latency"`

	// BranchLatency is the base execution latency for conditional
	// branches. This does not include the taken penalty. Default: 1 cycle.
	BranchLatency uint64 `json:"branch_latency"`

	// BranchTakenPenalty is the additional cycles lost when a branch
	// redirects the front end (taken or mispredicted). Default: 2 cycles,
	// the refill time of a 5-stage pipeline that resolves branches in EX.
	BranchTakenPenalty uint64 `json:"branch_taken_penalty"`

	// JumpLatency is the execution latency for JAL and JALR. Default: 1 cycle.
	JumpLatency uint64 `json:"jump_latency"`

	// LoadLatency is the latency for load operations when no data cache
	// is modeled. Default: 2 cycles.
	LoadLatency uint64 `json:"load_latency"`

	// StoreLatency is the latency for store operations. Default: 1 cycle.
	StoreLatency uint64 `json:"store_latency"`

	// SystemLatency is the latency for system instructions
	// (EBREAK, CSR reads). Default: 1 cycle.
	SystemLatency uint64 `json:"system_latency"`

	// L1HitLatency is the L1 cache hit latency. Default: 1 cycle.
	L1HitLatency uint64 `json:"l1_hit_latency"`

	// MemoryLatency is the main memory access latency, paid by L1 misses.
	// Default: 10 cycles.
	MemoryLatency uint64 `json:"memory_latency"`
}

// DefaultTimingConfig returns a TimingConfig with default values for a
// small in-order RV32 core.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ALULatency:         1,
		BranchLatency:      1,
		BranchTakenPenalty: 2,
		JumpLatency:        1,
		LoadLatency:        2,
		StoreLatency:       1,
		SystemLatency:      1,
		L1HitLatency:       1,
		MemoryLatency:      10,
	}
}

// LoadConfig loads a TimingConfig from a JSON file.
// Fields missing from the file keep their default values.
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

// Validate checks that all latency values are valid (> 0).
func (c *TimingConfig) Validate() error {
	if c.ALULatency == 0 {
		return fmt.Errorf("alu_latency must be > 0")
	}
	if c.BranchLatency == 0 {
		return fmt.Errorf("branch_latency must be > 0")
	}
	if c.JumpLatency == 0 {
		return fmt.Errorf("jump_latency must be > 0")
	}
	if c.LoadLatency == 0 {
		return fmt.Errorf("load_latency must be > 0")
	}
	if c.StoreLatency == 0 {
		return fmt.Errorf("store_latency must be > 0")
	}
	if c.SystemLatency == 0 {
		return fmt.Errorf("system_latency must be > 0")
	}
	if c.L1HitLatency == 0 {
		return fmt.Errorf("l1_hit_latency must be > 0")
	}
	if c.MemoryLatency == 0 {
		return fmt.Errorf("memory_latency must be > 0")
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	return &TimingConfig{
		ALULatency:         c.ALULatency,
		BranchLatency:      c.BranchLatency,
		BranchTakenPenalty: c.BranchTakenPenalty,
		JumpLatency:        c.JumpLatency,
		LoadLatency:        c.LoadLatency,
		StoreLatency:       c.StoreLatency,
		SystemLatency:      c.SystemLatency,
		L1HitLatency:       c.L1HitLatency,
		MemoryLatency:      c.MemoryLatency,
	}
}
