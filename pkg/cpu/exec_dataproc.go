package cpu

import (
	"armsim/pkg/decoder"
	"armsim/pkg/inst"
)

// execDataProc carries out AND..MVN. pcWritten reports whether Rd==15 so
// Step skips its own PC+=4.
func (x *Executor) execDataProc(d *Delta, in decoder.Instruction, curAddr uint32) (pcWritten bool, err error) {
	info := inst.DPCatalog[in.DPOp]
	carryIn := d.CPSRBefore.C

	op2, shifterCarry := x.resolveOperand2(in.Op2, curAddr, carryIn)

	var rn uint32
	if !info.Unary {
		rn = x.Regs.ReadOperand(in.Rn, curAddr)
	}

	var result uint32
	var c, v bool
	switch in.DPOp {
	case inst.AND, inst.TST:
		result, c, v = rn&op2, shifterCarry, d.CPSRBefore.V
	case inst.EOR, inst.TEQ:
		result, c, v = rn^op2, shifterCarry, d.CPSRBefore.V
	case inst.ORR:
		result, c, v = rn|op2, shifterCarry, d.CPSRBefore.V
	case inst.BIC:
		result, c, v = rn&^op2, shifterCarry, d.CPSRBefore.V
	case inst.MOV:
		result, c, v = op2, shifterCarry, d.CPSRBefore.V
	case inst.MVN:
		result, c, v = ^op2, shifterCarry, d.CPSRBefore.V
	case inst.ADD, inst.CMN:
		result, c, v = addWithFlags(rn, op2, false)
	case inst.ADC:
		result, c, v = addWithFlags(rn, op2, carryIn)
	case inst.SUB, inst.CMP:
		result, c, v = addWithFlags(rn, ^op2, true)
	case inst.SBC:
		result, c, v = addWithFlags(rn, ^op2, carryIn)
	case inst.RSB:
		result, c, v = addWithFlags(op2, ^rn, true)
	case inst.RSC:
		result, c, v = addWithFlags(op2, ^rn, carryIn)
	}

	if in.SetFlags || info.Comparison {
		if in.Rd == 15 {
			// Writing CPSR from SPSR is the documented "S-bit + Rd==15"
			// privileged return sequence; this subset handles it as a
			// plain SPSR restore.
			if spsr, ok := x.Regs.SPSR(); ok {
				x.Regs.SetCPSR(spsr)
			}
		} else {
			x.Regs.SetCPSR(Flags{
				N: result&0x80000000 != 0, Z: result == 0, C: c, V: v,
				I: d.CPSRBefore.I, F: d.CPSRBefore.F, Mode: x.Regs.CPSR().Mode,
			})
		}
	}

	if !info.Comparison {
		trackReg(d, x.Regs, in.Rd)
		x.Regs.Write(in.Rd, result)
		if in.Rd == 15 {
			return true, nil
		}
	}
	return false, nil
}

// resolveOperand2 computes Operand2's value and shifter carry-out at
// execution time, since a register-specified shift amount depends on the
// current register contents (spec §4.5).
func (x *Executor) resolveOperand2(op2 decoder.Operand2, curAddr uint32, carryIn bool) (value uint32, carryOut bool) {
	if op2.IsImmediate {
		if op2.ImmRot == 0 {
			return op2.ImmValue, carryIn
		}
		return op2.ImmValue, op2.ImmCarry
	}
	rm := x.Regs.ReadOperand(op2.Rm, curAddr)
	if op2.ShiftKind == inst.RRX {
		return inst.Shift(inst.RRX, rm, 1, carryIn)
	}
	amount := op2.ShiftAmt
	if op2.ShiftIsReg {
		amount = x.Regs.ReadOperand(op2.ShiftReg, curAddr) & 0xFF
	}
	return inst.Shift(op2.ShiftKind, rm, amount, carryIn)
}

// addWithFlags computes a+b+carryIn as a 32-bit addition, returning the
// unsigned carry-out and signed overflow used by the additive/subtractive
// data-processing opcodes (spec §4.5's arithmetic flag rule). Subtraction
// is expressed as addition of the one's complement plus a forced carry,
// the standard ARM identity a-b == a + ^b + 1.
func addWithFlags(a, b uint32, carryIn bool) (result uint32, carryOut, overflow bool) {
	var cin uint64
	if carryIn {
		cin = 1
	}
	sum := uint64(a) + uint64(b) + cin
	result = uint32(sum)
	carryOut = sum > 0xFFFFFFFF
	overflow = (a^b)&0x80000000 == 0 && (a^result)&0x80000000 != 0
	return
}
