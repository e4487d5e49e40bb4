package pipeline

// ForwardSource indicates where a forwarded value should come from.
type ForwardSource int

const (
	// ForwardNone means no forwarding needed - use register file value.
	ForwardNone ForwardSource = iota
	// ForwardFromEXMEM means forward from EX/MEM pipeline register.
	ForwardFromEXMEM
	// ForwardFromMEMWB means forward from MEM/WB pipeline register.
	ForwardFromMEMWB
)

// ForwardingResult contains forwarding decisions for both source operands.
type ForwardingResult struct {
	// ForwardRs1 specifies the forwarding source for the rs1 operand.
	ForwardRs1 ForwardSource
	// ForwardRs2 specifies the forwarding source for the rs2 operand.
	// For stores this also covers the data register, since store data
	// travels in rs2.
	ForwardRs2 ForwardSource
}

// StallResult contains stall and flush control signals.
type StallResult struct {
	// StallIF indicates the IF stage should stall (hold current instruction).
	StallIF bool
	// StallID indicates the ID stage should stall.
	StallID bool
	// InsertBubbleEX indicates a bubble (NOP) should be inserted in EX stage.
	InsertBubbleEX bool
	// FlushIF indicates the IF stage should be flushed (for branch).
	FlushIF bool
	// FlushID indicates the ID stage should be flushed (for branch).
	FlushID bool
}

// HazardUnit detects data hazards and determines forwarding/stall signals.
type HazardUnit struct{}

// NewHazardUnit creates a new hazard detection unit.
func NewHazardUnit() *HazardUnit {
	return &HazardUnit{}
}

// DetectForwarding determines if forwarding is needed for the ID/EX stage.
// It checks if the source registers (rs1, rs2) match the destination
// register of instructions in later pipeline stages.
func (h *HazardUnit) DetectForwarding(
	idex *IDEXRegister,
	exmem *EXMEMRegister,
	memwb *MEMWBRegister,
) ForwardingResult {
	result := ForwardingResult{
		ForwardRs1: ForwardNone,
		ForwardRs2: ForwardNone,
	}

	if !idex.Valid {
		return result
	}

	// Check forwarding for rs1 operand
	result.ForwardRs1 = h.detectForwardForReg(idex.Rs1, exmem, memwb)

	// Check forwarding for rs2 operand
	result.ForwardRs2 = h.detectForwardForReg(idex.Rs2, exmem, memwb)

	return result
}

// detectForwardForReg checks if a specific register needs forwarding.
func (h *HazardUnit) detectForwardForReg(
	reg uint8,
	exmem *EXMEMRegister,
	memwb *MEMWBRegister,
) ForwardSource {
	// x0 always reads as 0, no need to forward
	if reg == 0 {
		return ForwardNone
	}

	// Priority: EX/MEM has precedence over MEM/WB (more recent value)
	// Check EX/MEM forwarding
	if exmem.Valid && exmem.RegWrite && exmem.Rd == reg {
		return ForwardFromEXMEM
	}

	// Check MEM/WB forwarding
	if memwb.Valid && memwb.RegWrite && memwb.Rd == reg {
		return ForwardFromMEMWB
	}

	return ForwardNone
}

// DetectLoadUseHazard detects load-use hazards where a load instruction
// is immediately followed by an instruction using the loaded value.
// This requires a stall because the value isn't available until MEM stage.
func (h *HazardUnit) DetectLoadUseHazard(idex *IDEXRegister, nextRs1, nextRs2 uint8) bool {
	// Only load instructions cause load-use hazards
	if !idex.Valid || !idex.MemRead {
		return false
	}

	// x0 doesn't cause hazards
	if idex.Rd == 0 {
		return false
	}

	// Check if next instruction uses the load destination
	return idex.Rd == nextRs1 || idex.Rd == nextRs2
}

// DetectLoadUseHazardDecoded detects load-use hazard using decoded register info.
// loadRd is the destination of the load instruction in ID/EX.
// nextRs1, nextRs2 are the source registers of the next instruction.
// usesRs1, usesRs2 indicate if the instruction actually uses these operands.
func (h *HazardUnit) DetectLoadUseHazardDecoded(
	loadRd uint8,
	nextRs1, nextRs2 uint8,
	usesRs1, usesRs2 bool,
) bool {
	// x0 doesn't cause hazards
	if loadRd == 0 {
		return false
	}

	// Check if next instruction uses the load destination as a source
	if usesRs1 && loadRd == nextRs1 {
		return true
	}
	if usesRs2 && loadRd == nextRs2 {
		return true
	}

	return false
}

// ComputeStalls computes stall and flush signals based on hazard conditions.
func (h *HazardUnit) ComputeStalls(loadUseHazard bool, branchTaken bool) StallResult {
	result := StallResult{}

	// Load-use hazard: stall IF and ID, insert bubble in EX
	if loadUseHazard {
		result.StallIF = true
		result.StallID = true
		result.InsertBubbleEX = true
	}

	// Branch taken: flush IF and ID (kill fetched/decoded instructions)
	if branchTaken {
		result.FlushIF = true
		result.FlushID = true
	}

	return result
}

// GetForwardedValue returns the value to use based on forwarding decision.
func (h *HazardUnit) GetForwardedValue(
	forward ForwardSource,
	originalValue uint32,
	exmem *EXMEMRegister,
	memwb *MEMWBRegister,
) uint32 {
	switch forward {
	case ForwardFromEXMEM:
		return exmem.ALUResult
	case ForwardFromMEMWB:
		// For load instructions, use memory data; otherwise use ALU result
		if memwb.MemToReg {
			return memwb.MemData
		}
		return memwb.ALUResult
	default:
		return originalValue
	}
}
