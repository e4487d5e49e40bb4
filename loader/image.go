// Package loader reads raw program images for the RV32I simulator.
package loader

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Program is a loaded program image: a flat byte sequence with no
// header and no relocation, placed at address 0. Multi-byte values in
// the image are already in little-endian order.
type Program struct {
	// Path is the file the image was read from.
	Path string
	// Data contains the raw image bytes.
	Data []byte
}

// Load reads the raw image at path.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program image: %w", err)
	}
	return &Program{Path: path, Data: data}, nil
}

// Size returns the image size in bytes.
func (p *Program) Size() uint32 {
	return uint32(len(p.Data))
}

// Words returns the image as 32-bit little-endian words. A trailing
// partial word is zero-padded.
func (p *Program) Words() []uint32 {
	words := make([]uint32, 0, (len(p.Data)+3)/4)
	for off := 0; off < len(p.Data); off += 4 {
		var buf [4]byte
		copy(buf[:], p.Data[off:])
		words = append(words, binary.LittleEndian.Uint32(buf[:]))
	}
	return words
}
