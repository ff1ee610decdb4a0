package encoder

import "armsim/pkg/token"

// encodeMemory builds a single-data-transfer word for LDR/STR (spec
// §4.5): pre/post-indexed, optional writeback, optional byte access, and
// an immediate or shifted-register offset.
func encodeMemory(head token.Token, ops []token.Token) (uint32, error) {
	if len(ops) != 2 || ops[0].Kind != token.Reg || ops[1].Kind != token.MemAccess {
		return 0, EncodeError{"LDR/STR requires a register and a memory operand"}
	}
	mem := ops[1].Mem

	word := baseWord(head.Cond)
	word |= 1 << 26
	if mem.OffsetIsReg {
		word |= 1 << 25
	}
	if mem.PreIndexed {
		word |= 1 << 24
	}
	if !mem.Negative {
		word |= 1 << 23
	}
	if head.Byte {
		word |= 1 << 22
	}
	if mem.Writeback {
		word |= 1 << 21
	}
	if head.Mnemonic == "LDR" {
		word |= 1 << 20
	}
	word |= uint32(mem.Base) << 16
	word |= uint32(ops[0].RegIndex) << 12

	if mem.OffsetIsReg {
		var kindBits, amt uint32
		if mem.HasShift {
			kindBits = uint32(mem.ShiftKind) & 0x3
			amt = uint32(mem.ShiftAmt) & 0x1F
		}
		word |= amt<<7 | kindBits<<5 | uint32(mem.OffsetReg)
		return word, nil
	}
	if mem.OffsetImm < 0 || mem.OffsetImm > 0xFFF {
		return 0, RangeError{"memory offset out of 12-bit range"}
	}
	word |= uint32(mem.OffsetImm) & 0xFFF
	return word, nil
}
