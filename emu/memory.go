package emu

import (
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/rv32sim/hexfmt"
	"github.com/sarchlab/rv32sim/loader"
)

// fillValue is the byte the memory is initialized with. Like the
// register reset pattern, it makes reads of never-written locations
// stand out.
const fillValue = 0xa5

// Memory is the flat little-endian byte-addressable memory of the
// simulated machine. Its size is always a multiple of 16 bytes.
//
// Accesses outside the allocated range never fault: reads return zero,
// writes are dropped, and either emits a warning on the diagnostic
// stream so runaway programs are visible without stopping the
// simulation.
type Memory struct {
	data    []byte
	warnOut io.Writer
}

// MemoryOption configures a Memory during construction.
type MemoryOption func(*Memory)

// WithWarnOutput redirects out-of-range warnings and load diagnostics,
// which default to os.Stderr.
func WithWarnOutput(w io.Writer) MemoryOption {
	return func(m *Memory) {
		m.warnOut = w
	}
}

// NewMemory creates a memory of the given size, rounded up to the next
// multiple of 16, with every byte set to the fill pattern.
func NewMemory(size uint32, opts ...MemoryOption) *Memory {
	size = (size + 15) & 0xfffffff0
	m := &Memory{
		data:    make([]byte, size),
		warnOut: os.Stderr,
	}
	for i := range m.data {
		m.data[i] = fillValue
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Size returns the number of bytes of simulated memory.
func (m *Memory) Size() uint32 {
	return uint32(len(m.data))
}

// checkAddr reports whether addr is inside the allocated range,
// warning on the diagnostic stream when it is not.
func (m *Memory) checkAddr(addr uint32) bool {
	if addr < uint32(len(m.data)) {
		return true
	}
	fmt.Fprintf(m.warnOut, "WARNING: Address out of range: %s\n", hexfmt.To0x32(addr))
	return false
}

// Read8 returns the byte at addr, or 0 if addr is out of range.
func (m *Memory) Read8(addr uint32) uint8 {
	if !m.checkAddr(addr) {
		return 0
	}
	return m.data[addr]
}

// Read16 returns the little-endian halfword at addr.
func (m *Memory) Read16(addr uint32) uint16 {
	return uint16(m.Read8(addr)) | uint16(m.Read8(addr+1))<<8
}

// Read32 returns the little-endian word at addr.
func (m *Memory) Read32(addr uint32) uint32 {
	return uint32(m.Read16(addr)) | uint32(m.Read16(addr+2))<<16
}

// Read8Signed returns the byte at addr sign-extended to 32 bits.
func (m *Memory) Read8Signed(addr uint32) int32 {
	return int32(int8(m.Read8(addr)))
}

// Read16Signed returns the halfword at addr sign-extended to 32 bits.
func (m *Memory) Read16Signed(addr uint32) int32 {
	return int32(int16(m.Read16(addr)))
}

// Read32Signed returns the word at addr as a signed value.
func (m *Memory) Read32Signed(addr uint32) int32 {
	return int32(m.Read32(addr))
}

// Write8 stores val at addr. Out-of-range writes are dropped.
func (m *Memory) Write8(addr uint32, val uint8) {
	if !m.checkAddr(addr) {
		return
	}
	m.data[addr] = val
}

// Write16 stores val at addr in little-endian order.
func (m *Memory) Write16(addr uint32, val uint16) {
	m.Write8(addr, uint8(val))
	m.Write8(addr+1, uint8(val>>8))
}

// Write32 stores val at addr in little-endian order.
func (m *Memory) Write32(addr uint32, val uint32) {
	m.Write16(addr, uint16(val))
	m.Write16(addr+2, uint16(val>>16))
}

// LoadImage copies a raw program image into memory starting at address
// 0. It reports failure on the diagnostic stream if the image does not
// fit.
func (m *Memory) LoadImage(data []byte) bool {
	if uint32(len(data)) > m.Size() {
		fmt.Fprintln(m.warnOut, "Program too big.")
		return false
	}
	copy(m.data, data)
	return true
}

// LoadFile reads the raw program image at path into memory starting at
// address 0. Failures are reported on the diagnostic stream.
func (m *Memory) LoadFile(path string) bool {
	prog, err := loader.Load(path)
	if err != nil {
		fmt.Fprintf(m.warnOut, "Can't open file %s for reading\n", path)
		return false
	}
	return m.LoadImage(prog.Data)
}

// Dump writes a hex listing of the full memory image to w: 16 bytes
// per line with an extra space between bytes 7 and 8, followed by the
// printable ASCII rendering of the same bytes between '*' markers.
// The fill pattern and non-printable bytes render as '.'.
func (m *Memory) Dump(w io.Writer) {
	for base := 0; base < len(m.data); base += 16 {
		fmt.Fprintf(w, "%s:", hexfmt.To32(uint32(base)))
		for j := 0; j < 16; j++ {
			if j == 8 {
				fmt.Fprint(w, " ")
			}
			fmt.Fprintf(w, " %s", hexfmt.To8(m.data[base+j]))
		}
		fmt.Fprint(w, " *")
		for j := 0; j < 16; j++ {
			b := m.data[base+j]
			if b == fillValue || b < 0x20 || b > 0x7e {
				fmt.Fprint(w, ".")
			} else {
				fmt.Fprintf(w, "%c", b)
			}
		}
		fmt.Fprintln(w, "*")
	}
}
