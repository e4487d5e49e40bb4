package cache

import (
	"github.com/sarchlab/rv32sim/emu"
)

// MemoryBacking wraps emu.Memory as a BackingStore. Block fills are
// clamped to the memory bounds so that speculative accesses past the end
// of memory read as zero instead of raising address warnings.
type MemoryBacking struct {
	memory *emu.Memory
}

// NewMemoryBacking creates a new MemoryBacking adapter.
func NewMemoryBacking(memory *emu.Memory) *MemoryBacking {
	return &MemoryBacking{memory: memory}
}

// Read fetches data from the backing memory.
func (m *MemoryBacking) Read(addr uint32, size int) []byte {
	data := make([]byte, size)
	for i := 0; i < size; i++ {
		a := addr + uint32(i)
		if a < m.memory.Size() {
			data[i] = m.memory.Read8(a)
		}
	}
	return data
}

// Write stores data to the backing memory.
func (m *MemoryBacking) Write(addr uint32, data []byte) {
	for i, b := range data {
		a := addr + uint32(i)
		if a < m.memory.Size() {
			m.memory.Write8(a, b)
		}
	}
}
