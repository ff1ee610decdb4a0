package encoder

import (
	"armsim/pkg/inst"
	"armsim/pkg/token"
)

// encodeDataProcessing builds the cond-00-I-opcode-S-Rn-Rd-operand2 word
// shared by AND..MVN (spec §4.3, §4.5). Comparison ops (TST/TEQ/CMP/CMN)
// have no Rd operand and force S; unary ops (MOV/MVN) have no Rn operand.
func encodeDataProcessing(head token.Token, ops []token.Token) (uint32, error) {
	opc, ok := inst.DPOpcodeByName(head.Mnemonic)
	if !ok {
		return 0, EncodeError{"not a data-processing mnemonic"}
	}
	info := inst.DPCatalog[opc]

	idx := 0
	var rd, rn int
	if !info.Comparison {
		if idx >= len(ops) || ops[idx].Kind != token.Reg {
			return 0, EncodeError{"expected destination register"}
		}
		rd = ops[idx].RegIndex
		idx++
	}
	if !info.Unary {
		if idx >= len(ops) || ops[idx].Kind != token.Reg {
			return 0, EncodeError{"expected first source register"}
		}
		rn = ops[idx].RegIndex
		idx++
	}

	op2, isImm, err := encodeOperand2(ops[idx:])
	if err != nil {
		return 0, err
	}

	word := baseWord(head.Cond)
	if isImm {
		word |= 1 << 25
	}
	word |= uint32(opc) << 21
	if head.SetFlags || info.Comparison {
		word |= 1 << 20
	}
	word |= uint32(rn) << 16
	word |= uint32(rd) << 12
	word |= op2
	return word, nil
}

// encodeOperand2 encodes the shifter operand: an 8-bit-rotated immediate,
// a bare register, or a register shifted by an immediate or another
// register (spec §4.5's five ShiftKinds).
func encodeOperand2(ops []token.Token) (bits uint32, isImm bool, err error) {
	if len(ops) == 0 {
		return 0, false, EncodeError{"missing operand2"}
	}
	if ops[0].Kind == token.Const {
		imm8, rot, ok := inst.EncodeRotatedImmediate(uint32(ops[0].ImmValue))
		if !ok {
			return 0, false, RangeError{"immediate operand2 has no rotated-8-bit form"}
		}
		return uint32(rot)<<8 | uint32(imm8), true, nil
	}
	if ops[0].Kind != token.Reg {
		return 0, false, EncodeError{"bad operand2"}
	}
	rm := uint32(ops[0].RegIndex)
	if len(ops) == 1 {
		return rm, false, nil
	}
	shiftTok := ops[1]
	if shiftTok.Kind != token.Shift {
		return 0, false, EncodeError{"expected shift after register operand2"}
	}
	if shiftTok.ShiftKind == inst.RRX {
		return uint32(inst.ROR)<<5 | rm, false, nil
	}
	kindBits := uint32(shiftTok.ShiftKind) & 0x3
	if shiftTok.ShiftIsReg {
		return uint32(shiftTok.ShiftReg)<<8 | kindBits<<5 | 1<<4 | rm, false, nil
	}
	amt := uint32(shiftTok.ShiftAmt) & 0x1F
	return amt<<7 | kindBits<<5 | rm, false, nil
}
