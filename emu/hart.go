// Package emu provides functional RV32I simulation.
package emu

import (
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/rv32sim/hexfmt"
	"github.com/sarchlab/rv32sim/insts"
)

// instructionWidth is the column where trace commentary starts. The
// rendered instruction is padded with spaces up to this width.
const instructionWidth = 35

// csrMhartid is the CSR number of the hart ID register, the only CSR
// the hart implements.
const csrMhartid = 0xf14

// Hart is a single RV32I hardware thread. It owns its register file
// and program counter and borrows the memory it executes from. A hart
// starts in the running state and halts on EBREAK, on an illegal
// instruction, or on an unsupported CSR access; once halted it stays
// halted until Reset.
type Hart struct {
	mem     *Memory
	regs    *RegFile
	decoder *insts.Decoder
	inst    insts.Instruction

	pc          uint32
	insnCounter uint64
	halt        bool
	haltReason  string
	mhartid     uint32

	showInstructions bool
	showRegisters    bool

	stdout io.Writer
}

// HartOption configures a Hart during construction.
type HartOption func(*Hart)

// WithStdout redirects trace and dump output, which defaults to
// os.Stdout.
func WithStdout(w io.Writer) HartOption {
	return func(h *Hart) {
		h.stdout = w
	}
}

// WithMhartid sets the value the mhartid CSR reads as. The default is
// hart 0.
func WithMhartid(id uint32) HartOption {
	return func(h *Hart) {
		h.mhartid = id
	}
}

// NewHart creates a hart in its reset state, executing from mem.
func NewHart(mem *Memory, opts ...HartOption) *Hart {
	h := &Hart{
		mem:     mem,
		regs:    NewRegFile(),
		decoder: insts.NewDecoder(),
		stdout:  os.Stdout,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.Reset()
	return h
}

// Reset returns the hart to its power-on state: PC 0, instruction
// counter 0, running, with the register file re-initialized.
func (h *Hart) Reset() {
	h.pc = 0
	h.regs.Reset()
	h.insnCounter = 0
	h.halt = false
	h.haltReason = "none"
}

// PC returns the current program counter.
func (h *Hart) PC() uint32 {
	return h.pc
}

// InsnCounter returns the number of instructions executed since reset.
func (h *Hart) InsnCounter() uint64 {
	return h.insnCounter
}

// IsHalted reports whether the hart has stopped executing.
func (h *Hart) IsHalted() bool {
	return h.halt
}

// HaltReason describes why the hart halted, or "none" while it is
// still running.
func (h *Hart) HaltReason() string {
	return h.haltReason
}

// Regs exposes the hart's register file.
func (h *Hart) Regs() *RegFile {
	return h.regs
}

// SetShowInstructions enables printing each instruction with its
// execution commentary as it runs.
func (h *Hart) SetShowInstructions(b bool) {
	h.showInstructions = b
}

// SetShowRegisters enables a full register dump before each
// instruction.
func (h *Hart) SetShowRegisters(b bool) {
	h.showRegisters = b
}

// Dump writes the register file followed by the program counter. Each
// register row is prefixed by hdr; the pc line is not.
func (h *Hart) Dump(w io.Writer, hdr string) {
	h.regs.Dump(w, hdr)
	fmt.Fprintf(w, " pc %s\n", hexfmt.To32(h.pc))
}

// Tick executes one instruction: fetch at PC, decode, execute. A
// halted hart ticks to nothing. The hdr string prefixes any per-tick
// output produced by the show-registers and show-instructions modes.
func (h *Hart) Tick(hdr string) {
	if h.halt {
		return
	}

	h.insnCounter++

	if h.showRegisters {
		h.Dump(h.stdout, hdr)
	}

	insn := h.mem.Read32(h.pc)
	if h.showInstructions {
		fmt.Fprintf(h.stdout, "%s%s: %s  ", hdr, hexfmt.To32(h.pc), hexfmt.To32(insn))
		h.exec(insn, h.stdout)
	} else {
		h.exec(insn, nil)
	}
}

// Run drives the hart until it halts or execLimit instructions have
// executed; a limit of 0 means no limit. x2 is initialized to the
// memory size so programs start with a usable stack pointer. The
// termination status is reported on the hart's stdout.
func (h *Hart) Run(execLimit uint64) {
	h.regs.WriteReg(2, int32(h.mem.Size()))

	for !h.halt && (execLimit == 0 || h.insnCounter < execLimit) {
		h.Tick("")
	}

	if h.halt {
		fmt.Fprintf(h.stdout, "Execution terminated. Reason: %s\n", h.haltReason)
	}
	fmt.Fprintf(h.stdout, "%d instructions executed\n", h.insnCounter)
}

// exec decodes insn and simulates it. When trace is non-nil the
// rendered instruction and a commentary explaining what it did are
// written there.
func (h *Hart) exec(insn uint32, trace io.Writer) {
	h.decoder.DecodeInto(insn, &h.inst)
	i := &h.inst

	switch i.Op {
	case insts.OpLUI:
		h.execLUI(i, trace)
	case insts.OpAUIPC:
		h.execAUIPC(i, trace)
	case insts.OpJAL:
		h.execJAL(i, trace)
	case insts.OpJALR:
		h.execJALR(i, trace)
	case insts.OpBEQ:
		h.execBranch(i, trace, "==", h.regs.ReadReg(i.Rs1) == h.regs.ReadReg(i.Rs2))
	case insts.OpBNE:
		h.execBranch(i, trace, "!=", h.regs.ReadReg(i.Rs1) != h.regs.ReadReg(i.Rs2))
	case insts.OpBLT:
		h.execBranch(i, trace, "<", h.regs.ReadReg(i.Rs1) < h.regs.ReadReg(i.Rs2))
	case insts.OpBGE:
		h.execBranch(i, trace, ">=", h.regs.ReadReg(i.Rs1) >= h.regs.ReadReg(i.Rs2))
	case insts.OpBLTU:
		h.execBranch(i, trace, "<U", uint32(h.regs.ReadReg(i.Rs1)) < uint32(h.regs.ReadReg(i.Rs2)))
	case insts.OpBGEU:
		h.execBranch(i, trace, ">=U", uint32(h.regs.ReadReg(i.Rs1)) >= uint32(h.regs.ReadReg(i.Rs2)))
	case insts.OpLB, insts.OpLH, insts.OpLW, insts.OpLBU, insts.OpLHU:
		h.execLoad(i, trace)
	case insts.OpSB, insts.OpSH, insts.OpSW:
		h.execStore(i, trace)
	case insts.OpADDI:
		h.execADDI(i, trace)
	case insts.OpSLTI:
		h.execSLTI(i, trace)
	case insts.OpSLTIU:
		h.execSLTIU(i, trace)
	case insts.OpXORI:
		h.execXORI(i, trace)
	case insts.OpORI:
		h.execORI(i, trace)
	case insts.OpANDI:
		h.execANDI(i, trace)
	case insts.OpSLLI:
		h.execSLLI(i, trace)
	case insts.OpSRLI:
		h.execSRLI(i, trace)
	case insts.OpSRAI:
		h.execSRAI(i, trace)
	case insts.OpADD:
		h.execADD(i, trace)
	case insts.OpSUB:
		h.execSUB(i, trace)
	case insts.OpSLL:
		h.execSLL(i, trace)
	case insts.OpSLT:
		h.execSLT(i, trace)
	case insts.OpSLTU:
		h.execSLTU(i, trace)
	case insts.OpXOR:
		h.execXOR(i, trace)
	case insts.OpSRL:
		h.execSRL(i, trace)
	case insts.OpSRA:
		h.execSRA(i, trace)
	case insts.OpOR:
		h.execOR(i, trace)
	case insts.OpAND:
		h.execAND(i, trace)
	case insts.OpEBREAK:
		h.execEBREAK(i, trace)
	case insts.OpCSRRS:
		h.execCSRRS(i, trace)
	default:
		h.execIllegal(trace)
	}
}

// execIllegal halts the hart at the current PC. ECALL and the CSR
// instructions other than register-form CSRRS land here too: the
// simulated machine has no environment to call into.
func (h *Hart) execIllegal(trace io.Writer) {
	if trace != nil {
		fmt.Fprintln(trace, "ERROR: UNIMPLEMENTED INSTRUCTION")
	}
	h.halt = true
	h.haltReason = "Illegal instruction"
}

// tracef writes the rendered instruction padded to the commentary
// column, then the formatted commentary and a newline.
func (h *Hart) tracef(w io.Writer, i *insts.Instruction, format string, args ...any) {
	fmt.Fprintf(w, "%-*s", instructionWidth, i.Render(h.pc))
	fmt.Fprintf(w, format, args...)
	fmt.Fprintln(w)
}

// hx formats a signed word the way trace commentary shows values.
func hx(v int32) string {
	return hexfmt.To0x32(uint32(v))
}
