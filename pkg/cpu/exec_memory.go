package cpu

import (
	"armsim/pkg/decoder"
	"armsim/pkg/inst"
)

// execMemory carries out LDR/STR, including byte access, pre/post
// indexing and writeback, and an immediate or shifted-register offset.
func (x *Executor) execMemory(d *Delta, in decoder.Instruction, curAddr uint32) (pcWritten bool, err error) {
	base := x.Regs.ReadOperand(in.MemRn, curAddr)
	offset := x.resolveMemoryOffset(in.Op2, curAddr)
	if in.Negative {
		offset = -offset
	}

	effective := base
	if in.PreIndexed {
		effective = uint32(int64(base) + int64(offset))
	}

	if in.Load {
		var value uint32
		if in.Byte {
			value = uint32(x.Mem.ReadByte(effective))
		} else {
			trackWord(d, x.Mem, effective)
			value = x.Mem.ReadWord(effective)
		}
		trackReg(d, x.Regs, in.Rd)
		x.Regs.Write(in.Rd, value)
		pcWritten = in.Rd == 15
	} else {
		// STR storing R15 reads addr+12 (two instructions ahead), not the
		// usual addr+8 operand-read convention every other register use
		// gets — one of the two ARMv4-legal behaviors here (SPEC_FULL.md
		// §3.10); DESIGN.md pins down the choice.
		var value uint32
		if in.Rd == 15 {
			value = curAddr + 12
		} else {
			value = x.Regs.ReadOperand(in.Rd, curAddr)
		}
		if in.Byte {
			trackByte(d, x.Mem, effective)
			x.Mem.WriteByte(effective, uint8(value))
		} else {
			trackWord(d, x.Mem, effective)
			x.Mem.WriteWord(effective, value)
		}
	}

	if !in.PreIndexed {
		effective = uint32(int64(base) + int64(offset))
	}
	if in.Writeback && (!in.Load || in.Rd != in.MemRn) {
		trackReg(d, x.Regs, in.MemRn)
		x.Regs.Write(in.MemRn, effective)
	}
	return pcWritten, nil
}

func (x *Executor) resolveMemoryOffset(op2 decoder.Operand2, curAddr uint32) int32 {
	if op2.IsImmediate {
		return int32(op2.ImmValue)
	}
	rm := x.Regs.ReadOperand(op2.Rm, curAddr)
	shifted, _ := inst.Shift(op2.ShiftKind, rm, op2.ShiftAmt, false)
	return int32(shifted)
}
