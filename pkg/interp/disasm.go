package interp

import (
	"fmt"
	"strings"

	"armsim/pkg/decoder"
	"armsim/pkg/inst"
)

// DisassemblyInfo is the language-neutral shape of the original
// getCurrentInfos' event list: the registers the last step wrote
// (WriteRegs), the source line to highlight next, and a human-readable
// rendering of the instruction that just ran (spec §4.9 "disassembly
// info"). buildDisassembly leaves ReadRegs, ReadFlags and WriteFlags
// empty. A front-end decides how to render each field; none of this is
// HTML (out of scope per spec §1).
type DisassemblyInfo struct {
	ReadRegs   []int
	WriteRegs  []int
	ReadFlags  []string
	WriteFlags []string
	NextLine   int
	HasLine    bool
	Text       string
}

// disassemble renders in as one line of ARM UAL-ish assembly for the
// DisassemblyInfo.Text field. It is intentionally approximate — a debug
// aid, not the Encoder's inverse (pkg/decoder + pkg/encoder already prove
// the exact round-trip, spec §8).
func disassemble(in decoder.Instruction) string {
	cond := in.Cond.Mnemonic()
	switch in.Kind {
	case decoder.KindDataProc:
		info := inst.DPCatalog[in.DPOp]
		s := info.Mnemonic + cond
		if in.SetFlags && !info.Comparison {
			s += "S"
		}
		if info.Comparison {
			return fmt.Sprintf("%s R%d, %s", s, in.Rn, operand2String(in.Op2))
		}
		if info.Unary {
			return fmt.Sprintf("%s R%d, %s", s, in.Rd, operand2String(in.Op2))
		}
		return fmt.Sprintf("%s R%d, R%d, %s", s, in.Rd, in.Rn, operand2String(in.Op2))
	case decoder.KindMemory:
		op := "STR"
		if in.Load {
			op = "LDR"
		}
		if in.Byte {
			op += "B"
		}
		return fmt.Sprintf("%s%s R%d, [R%d, #%d]", op, cond, in.Rd, in.MemRn, in.Op2.ImmValue)
	case decoder.KindBlockTransfer:
		op := "STM"
		if in.Load {
			op = "LDM"
		}
		regs := make([]string, 0, 16)
		for _, r := range in.RegList.Registers() {
			regs = append(regs, fmt.Sprintf("R%d", r))
		}
		return fmt.Sprintf("%s%s%s R%d, {%s}", op, in.AddrMode.String(), cond, in.MemRn, strings.Join(regs, ", "))
	case decoder.KindBranch:
		op := "B"
		if in.Link {
			op = "BL"
		}
		return fmt.Sprintf("%s%s #%d", op, cond, in.BranchWord)
	case decoder.KindMultiply:
		op := "MUL"
		if in.Accumulate {
			op = "MLA"
		}
		return fmt.Sprintf("%s%s R%d, R%d, R%d", op, cond, in.Rd, in.Rm, in.Rs)
	case decoder.KindMultiplyLong:
		return fmt.Sprintf("MULL%s R%d, R%d, R%d, R%d", cond, in.RdLo, in.RdHi, in.Rm, in.Rs)
	case decoder.KindSwap:
		op := "SWP"
		if in.Byte {
			op += "B"
		}
		return fmt.Sprintf("%s%s R%d, R%d, [R%d]", op, cond, in.SwapRd, in.SwapRm, in.SwapRn)
	case decoder.KindPSR:
		if in.IsMSR {
			return fmt.Sprintf("MSR%s %s, ...", cond, psrName(in.UseSPSR))
		}
		return fmt.Sprintf("MRS%s R%d, %s", cond, in.Rd, psrName(in.UseSPSR))
	case decoder.KindSWI:
		return fmt.Sprintf("SWI%s #%d", cond, in.Comment)
	default:
		return "???"
	}
}

func psrName(useSPSR bool) string {
	if useSPSR {
		return "SPSR"
	}
	return "CPSR"
}

func operand2String(op2 decoder.Operand2) string {
	if op2.IsImmediate {
		return fmt.Sprintf("#%d", op2.ImmValue)
	}
	if op2.ShiftIsReg {
		return fmt.Sprintf("R%d, %s R%d", op2.Rm, op2.ShiftKind.String(), op2.ShiftReg)
	}
	if op2.ShiftAmt == 0 && op2.ShiftKind == inst.LSL {
		return fmt.Sprintf("R%d", op2.Rm)
	}
	return fmt.Sprintf("R%d, %s #%d", op2.Rm, op2.ShiftKind.String(), op2.ShiftAmt)
}
