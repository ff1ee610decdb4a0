package decoder

import "armsim/pkg/inst"

// Decode recognizes word's instruction class and extracts its fields.
// Classification follows ARMv4's bit-pattern precedence: the multiply,
// multiply-long, swap and PSR-transfer encodings all nest inside the
// data-processing bits[27:26]==00 space and must be checked first.
func Decode(word uint32) (Instruction, error) {
	cond := inst.Condition(word >> 28)
	top := (word >> 23) & 0x1F // bits 27:23

	switch {
	case top == 0b00010 && word&(1<<25) == 0 && (word>>4)&0xF == 0b1001:
		return decodeSwap(word, cond), nil
	case (word>>26)&0x3 == 0b00 && (word>>23)&0x3 == 0b10 && word&(1<<20) == 0:
		// MRS/MSR (register or immediate operand, bit 25 either way) share
		// the comparison opcodes' top bits (TST/TEQ/CMP/CMN also have
		// bits 24:23 == 10) and are distinguished only by S==0 — the
		// comparisons always set S, PSR transfers never do.
		return decodePSR(word, cond), nil
	case (word>>22)&0x3F == 0b000000 && (word>>4)&0xF == 0b1001:
		return decodeMultiply(word, cond), nil
	case top == 0b00001 && (word>>4)&0xF == 0b1001:
		return decodeMultiplyLong(word, cond), nil
	case (word>>26)&0x3 == 0b00:
		return decodeDataProc(word, cond), nil
	case (word>>26)&0x3 == 0b01:
		return decodeMemory(word, cond), nil
	case (word>>25)&0x7 == 0b100:
		return decodeBlockTransfer(word, cond), nil
	case (word>>25)&0x7 == 0b101:
		return decodeBranch(word, cond), nil
	case (word>>24)&0xF == 0b1111:
		return Instruction{Kind: KindSWI, Cond: cond, Raw: word, Comment: word & 0xFFFFFF}, nil
	default:
		return Instruction{}, InvalidWordError{word}
	}
}

func decodeDataProc(word uint32, cond inst.Condition) Instruction {
	in := Instruction{
		Kind:     KindDataProc,
		Cond:     cond,
		Raw:      word,
		DPOp:     inst.DPOpcode((word >> 21) & 0xF),
		SetFlags: word&(1<<20) != 0,
		Rn:       int((word >> 16) & 0xF),
		Rd:       int((word >> 12) & 0xF),
	}
	if word&(1<<25) != 0 {
		imm8 := uint8(word & 0xFF)
		rot := uint8((word >> 8) & 0xF)
		v, carry := inst.RotateImmediate(imm8, rot)
		in.Op2 = Operand2{IsImmediate: true, ImmValue: v, ImmCarry: carry, ImmRot: rot}
		return in
	}
	kind := inst.ShiftKind((word >> 5) & 0x3)
	rm := int(word & 0xF)
	if word&(1<<4) != 0 {
		in.Op2 = Operand2{Rm: rm, ShiftKind: kind, ShiftReg: int((word >> 8) & 0xF), ShiftIsReg: true}
	} else {
		amt := (word >> 7) & 0x1F
		if amt == 0 && kind == inst.ROR {
			kind = inst.RRX
		}
		in.Op2 = Operand2{Rm: rm, ShiftKind: kind, ShiftAmt: amt}
	}
	return in
}

func decodeMemory(word uint32, cond inst.Condition) Instruction {
	in := Instruction{
		Kind:        KindMemory,
		Cond:        cond,
		Raw:         word,
		OffsetIsReg: word&(1<<25) != 0,
		PreIndexed:  word&(1<<24) != 0,
		Negative:    word&(1<<23) == 0,
		Byte:        word&(1<<22) != 0,
		Writeback:   word&(1<<21) != 0,
		Load:        word&(1<<20) != 0,
		MemRn:       int((word >> 16) & 0xF),
		Rd:          int((word >> 12) & 0xF),
	}
	if in.OffsetIsReg {
		in.Op2 = Operand2{Rm: int(word & 0xF), ShiftKind: inst.ShiftKind((word >> 5) & 0x3), ShiftAmt: (word >> 7) & 0x1F}
	} else {
		in.Op2 = Operand2{IsImmediate: true, ImmValue: word & 0xFFF}
	}
	return in
}

func decodeBlockTransfer(word uint32, cond inst.Condition) Instruction {
	p := word&(1<<24) != 0
	u := word&(1<<23) != 0
	var am inst.AddrMode
	switch {
	case p && u:
		am = inst.IB
	case !p && u:
		am = inst.IA
	case p && !u:
		am = inst.DB
	default:
		am = inst.DA
	}
	return Instruction{
		Kind:      KindBlockTransfer,
		Cond:      cond,
		Raw:       word,
		AddrMode:  am,
		Writeback: word&(1<<21) != 0,
		Load:      word&(1<<20) != 0,
		MemRn:     int((word >> 16) & 0xF),
		RegList:   inst.RegList(word & 0xFFFF),
	}
}

func decodeBranch(word uint32, cond inst.Condition) Instruction {
	imm24 := inst.SignExtend24(word & 0xFFFFFF)
	return Instruction{
		Kind:       KindBranch,
		Cond:       cond,
		Raw:        word,
		Link:       word&(1<<24) != 0,
		BranchWord: imm24 * 4,
	}
}

func decodeMultiply(word uint32, cond inst.Condition) Instruction {
	return Instruction{
		Kind:       KindMultiply,
		Cond:       cond,
		Raw:        word,
		Accumulate: word&(1<<21) != 0,
		SetFlags:   word&(1<<20) != 0,
		Rd:         int((word >> 16) & 0xF),
		Rn:         int((word >> 12) & 0xF), // accumulate register for MLA
		Rs:         int((word >> 8) & 0xF),
		Rm:         int(word & 0xF),
	}
}

func decodeMultiplyLong(word uint32, cond inst.Condition) Instruction {
	return Instruction{
		Kind:       KindMultiplyLong,
		Cond:       cond,
		Raw:        word,
		Signed:     word&(1<<22) != 0,
		Accumulate: word&(1<<21) != 0,
		SetFlags:   word&(1<<20) != 0,
		RdHi:       int((word >> 16) & 0xF),
		RdLo:       int((word >> 12) & 0xF),
		Rs:         int((word >> 8) & 0xF),
		Rm:         int(word & 0xF),
	}
}

func decodeSwap(word uint32, cond inst.Condition) Instruction {
	return Instruction{
		Kind:   KindSwap,
		Cond:   cond,
		Raw:    word,
		Byte:   word&(1<<22) != 0,
		SwapRn: int((word >> 16) & 0xF),
		SwapRd: int((word >> 12) & 0xF),
		SwapRm: int(word & 0xF),
	}
}

func decodePSR(word uint32, cond inst.Condition) Instruction {
	in := Instruction{
		Kind:    KindPSR,
		Cond:    cond,
		Raw:     word,
		IsMSR:   word&(1<<21) != 0,
		UseSPSR: word&(1<<22) != 0,
	}
	if !in.IsMSR {
		in.Rd = int((word >> 12) & 0xF)
		return in
	}
	if word&(1<<25) != 0 {
		imm8 := uint8(word & 0xFF)
		rot := uint8((word >> 8) & 0xF)
		v, carry := inst.RotateImmediate(imm8, rot)
		in.Op2 = Operand2{IsImmediate: true, ImmValue: v, ImmCarry: carry, ImmRot: rot}
	} else {
		in.Op2 = Operand2{Rm: int(word & 0xF)}
	}
	return in
}
