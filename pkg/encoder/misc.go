package encoder

import (
	"armsim/pkg/inst"
	"armsim/pkg/token"
)

// encodeSwap builds SWP{B}: "SWP Rd, Rm, [Rn]" (spec §4.3, memory-write-
// before-register-write ordering is an execution-time concern, not
// encoded here).
func encodeSwap(head token.Token, ops []token.Token) (uint32, error) {
	if len(ops) != 3 || ops[0].Kind != token.Reg || ops[1].Kind != token.Reg || ops[2].Kind != token.MemAccess {
		return 0, EncodeError{"SWP requires Rd, Rm, [Rn]"}
	}
	word := baseWord(head.Cond)
	word |= 1 << 24
	if head.Byte {
		word |= 1 << 22
	}
	word |= uint32(ops[2].Mem.Base) << 16
	word |= uint32(ops[0].RegIndex) << 12
	word |= 0b1001 << 4
	word |= uint32(ops[1].RegIndex)
	return word, nil
}

// encodePSR builds MRS/MSR. Both share the 00010 class marker; MRS reads a
// PSR into Rd, MSR writes Rd or a rotated immediate into the whole PSR
// (spec doesn't model field masks, so CPSR_f-style partial writes are out
// of scope — matching the subset of instructions spec §4 actually lists).
func encodePSR(head token.Token, ops []token.Token) (uint32, error) {
	word := baseWord(head.Cond)
	word |= 0b00010 << 23

	if head.Mnemonic == "MRS" {
		if len(ops) != 2 || ops[0].Kind != token.Reg || ops[1].Kind != token.Modifier {
			return 0, EncodeError{"MRS requires Rd, CPSR|SPSR"}
		}
		if ops[1].Text == "SPSR" {
			word |= 1 << 22
		}
		word |= uint32(ops[0].RegIndex) << 12
		return word, nil
	}

	if len(ops) != 2 || ops[0].Kind != token.Modifier {
		return 0, EncodeError{"MSR requires CPSR|SPSR, source"}
	}
	word |= 1 << 21
	if ops[0].Text == "SPSR" {
		word |= 1 << 22
	}
	switch ops[1].Kind {
	case token.Reg:
		word |= uint32(ops[1].RegIndex)
	case token.Const:
		imm8, rot, ok := inst.EncodeRotatedImmediate(uint32(ops[1].ImmValue))
		if !ok {
			return 0, RangeError{"MSR immediate has no rotated-8-bit form"}
		}
		word |= 1 << 25
		word |= uint32(rot)<<8 | uint32(imm8)
	default:
		return 0, EncodeError{"bad MSR source operand"}
	}
	return word, nil
}

// encodeSWI builds SVC/SWI: cond 1111 imm24, the comment field read back
// by pkg/cpu's interrupt dispatch (spec §4.3, §3.8).
func encodeSWI(head token.Token, ops []token.Token) (uint32, error) {
	if len(ops) != 1 || ops[0].Kind != token.Const {
		return 0, EncodeError{"SVC/SWI requires an immediate comment field"}
	}
	v := ops[0].ImmValue
	if v < 0 || v > 0xFFFFFF {
		return 0, RangeError{"SWI comment field out of 24-bit range"}
	}
	word := baseWord(head.Cond)
	word |= 0b1111 << 24
	word |= uint32(v) & 0xFFFFFF
	return word, nil
}
