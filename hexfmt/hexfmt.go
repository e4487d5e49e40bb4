// Package hexfmt provides the fixed-width hex formatting helpers shared by
// the simulator's disassembly, trace, and dump output.
package hexfmt

import "fmt"

// To8 formats v as exactly 2 lowercase hex digits.
func To8(v uint8) string {
	return fmt.Sprintf("%02x", v)
}

// To32 formats v as exactly 8 lowercase hex digits.
func To32(v uint32) string {
	return fmt.Sprintf("%08x", v)
}

// To0x32 formats v as "0x" followed by exactly 8 lowercase hex digits.
func To0x32(v uint32) string {
	return "0x" + To32(v)
}

// To0x20 formats the upper 20 bits of v as "0x" followed by exactly 5
// lowercase hex digits. Used for U-type immediates.
func To0x20(v uint32) string {
	return fmt.Sprintf("0x%05x", v>>12)
}

// To0x12 formats the low 12 bits of v as "0x" followed by exactly 3
// lowercase hex digits. Used for CSR addresses.
func To0x12(v uint32) string {
	return fmt.Sprintf("0x%03x", v&0x0fff)
}
