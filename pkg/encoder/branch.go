package encoder

import "armsim/pkg/token"

// encodeBranch builds B/BL from the PC-relative MEMACCESS descriptor the
// assembler's resolution pass synthesized for a label reference (spec
// §4.2 pass 3): offset is already relative to PC+8, so only the /4 word
// shift remains.
func encodeBranch(head token.Token, ops []token.Token) (uint32, error) {
	if len(ops) != 1 || ops[0].Kind != token.MemAccess || ops[0].Mem.Base != 15 {
		return 0, EncodeError{"expected a branch target"}
	}
	mem := ops[0].Mem
	offset := int64(mem.OffsetImm)
	if mem.Negative {
		offset = -offset
	}
	if offset%4 != 0 {
		return 0, RangeError{"branch target is not word-aligned"}
	}
	imm24 := offset / 4
	if imm24 > 0x7FFFFF || imm24 < -0x800000 {
		return 0, RangeError{"branch offset out of 24-bit range"}
	}
	word := baseWord(head.Cond)
	word |= 0b101 << 25
	if head.Mnemonic == "BL" {
		word |= 1 << 24
	}
	word |= uint32(imm24) & 0xFFFFFF
	return word, nil
}
