package decoder

import (
	"encoding/binary"
	"testing"

	"armsim/pkg/encoder"
	"armsim/pkg/inst"
	"armsim/pkg/token"
)

func encodeWord(t *testing.T, toks []token.Token) uint32 {
	t.Helper()
	b, err := encoder.Encode(toks)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return binary.LittleEndian.Uint32(b)
}

func TestDecodeDataProcessingRoundTrip(t *testing.T) {
	word := encodeWord(t, []token.Token{
		{Kind: token.Instr, Mnemonic: "ADD", Cond: inst.NE, SetFlags: true},
		{Kind: token.Reg, RegIndex: 3},
		{Kind: token.Reg, RegIndex: 4},
		{Kind: token.Const, ImmValue: 10},
	})
	in, err := Decode(word)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Kind != KindDataProc {
		t.Fatalf("Kind = %v, want KindDataProc", in.Kind)
	}
	if in.Cond != inst.NE || in.DPOp != inst.ADD || !in.SetFlags {
		t.Errorf("got cond=%v op=%v setFlags=%v", in.Cond, in.DPOp, in.SetFlags)
	}
	if in.Rn != 4 || in.Rd != 3 {
		t.Errorf("Rn=%d Rd=%d, want 4,3", in.Rn, in.Rd)
	}
	if !in.Op2.IsImmediate || in.Op2.ImmValue != 10 {
		t.Errorf("Op2 = %+v, want immediate 10", in.Op2)
	}
}

func TestDecodeShiftedRegisterOperand2(t *testing.T) {
	word := encodeWord(t, []token.Token{
		{Kind: token.Instr, Mnemonic: "MOV", Cond: inst.AL},
		{Kind: token.Reg, RegIndex: 0},
		{Kind: token.Reg, RegIndex: 1},
		{Kind: token.Shift, ShiftKind: inst.LSR, ShiftAmt: 5},
	})
	in, err := Decode(word)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Op2.IsImmediate || in.Op2.Rm != 1 || in.Op2.ShiftKind != inst.LSR || in.Op2.ShiftAmt != 5 {
		t.Errorf("Op2 = %+v", in.Op2)
	}
}

func TestDecodeMemoryRoundTrip(t *testing.T) {
	word := encodeWord(t, []token.Token{
		{Kind: token.Instr, Mnemonic: "STR", Cond: inst.AL, Byte: true},
		{Kind: token.Reg, RegIndex: 5},
		{Kind: token.MemAccess, Mem: token.MemOperand{Base: 6, OffsetImm: 20, Negative: true, PreIndexed: true}},
	})
	in, err := Decode(word)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Kind != KindMemory || in.Load || !in.Byte || !in.PreIndexed || !in.Negative {
		t.Errorf("got %+v", in)
	}
	if in.MemRn != 6 || in.Rd != 5 || in.Op2.ImmValue != 20 {
		t.Errorf("MemRn=%d Rd=%d imm=%d", in.MemRn, in.Rd, in.Op2.ImmValue)
	}
}

func TestDecodeBlockTransferRoundTrip(t *testing.T) {
	word := encodeWord(t, []token.Token{
		{Kind: token.Instr, Mnemonic: "LDM", Cond: inst.AL, AddrMode: inst.DB, HasAddrMode: true},
		{Kind: token.Reg, RegIndex: 13, RegWriteback: true},
		{Kind: token.Shift, Mnemonic: "REGLIST", ImmValue: (1 << 0) | (1 << 2) | (1 << 15)},
	})
	in, err := Decode(word)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Kind != KindBlockTransfer || !in.Load || !in.Writeback || in.AddrMode != inst.DB {
		t.Errorf("got %+v", in)
	}
	if in.RegList.Count() != 3 {
		t.Errorf("Count() = %d, want 3", in.RegList.Count())
	}
	regs := in.RegList.Registers()
	want := []int{0, 2, 15}
	for i, r := range want {
		if regs[i] != r {
			t.Errorf("Registers()[%d] = %d, want %d", i, regs[i], r)
		}
	}
}

func TestDecodeBranchRoundTrip(t *testing.T) {
	word := encodeWord(t, []token.Token{
		{Kind: token.Instr, Mnemonic: "BL", Cond: inst.AL},
		{Kind: token.MemAccess, Mem: token.MemOperand{Base: 15, OffsetImm: 100}},
	})
	in, err := Decode(word)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Kind != KindBranch || !in.Link || in.BranchWord != 100 {
		t.Errorf("got %+v", in)
	}
}

func TestDecodeMultiplyRoundTrip(t *testing.T) {
	word := encodeWord(t, []token.Token{
		{Kind: token.Instr, Mnemonic: "MLA", Cond: inst.AL, SetFlags: true},
		{Kind: token.Reg, RegIndex: 1}, {Kind: token.Reg, RegIndex: 2},
		{Kind: token.Reg, RegIndex: 3}, {Kind: token.Reg, RegIndex: 4},
	})
	in, err := Decode(word)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Kind != KindMultiply || !in.Accumulate || !in.SetFlags {
		t.Errorf("got %+v", in)
	}
	if in.Rd != 1 || in.Rm != 2 || in.Rs != 3 || in.Rn != 4 {
		t.Errorf("Rd=%d Rm=%d Rs=%d Rn(acc)=%d", in.Rd, in.Rm, in.Rs, in.Rn)
	}
}

func TestDecodeMultiplyLongRoundTrip(t *testing.T) {
	word := encodeWord(t, []token.Token{
		{Kind: token.Instr, Mnemonic: "SMLAL", Cond: inst.AL},
		{Kind: token.Reg, RegIndex: 1}, {Kind: token.Reg, RegIndex: 2},
		{Kind: token.Reg, RegIndex: 3}, {Kind: token.Reg, RegIndex: 4},
	})
	in, err := Decode(word)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Kind != KindMultiplyLong || !in.Signed || !in.Accumulate {
		t.Errorf("got %+v", in)
	}
	if in.RdLo != 1 || in.RdHi != 2 || in.Rm != 3 || in.Rs != 4 {
		t.Errorf("RdLo=%d RdHi=%d Rm=%d Rs=%d", in.RdLo, in.RdHi, in.Rm, in.Rs)
	}
}

func TestDecodeSwapRoundTrip(t *testing.T) {
	word := encodeWord(t, []token.Token{
		{Kind: token.Instr, Mnemonic: "SWP", Cond: inst.AL, Byte: true},
		{Kind: token.Reg, RegIndex: 1}, {Kind: token.Reg, RegIndex: 2},
		{Kind: token.MemAccess, Mem: token.MemOperand{Base: 3}},
	})
	in, err := Decode(word)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Kind != KindSwap || !in.Byte || in.SwapRd != 1 || in.SwapRm != 2 || in.SwapRn != 3 {
		t.Errorf("got %+v", in)
	}
}

func TestDecodePSRRoundTrip(t *testing.T) {
	mrsWord := encodeWord(t, []token.Token{
		{Kind: token.Instr, Mnemonic: "MRS", Cond: inst.AL},
		{Kind: token.Reg, RegIndex: 7},
		{Kind: token.Modifier, Text: "SPSR"},
	})
	in, err := Decode(mrsWord)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Kind != KindPSR || in.IsMSR || !in.UseSPSR || in.Rd != 7 {
		t.Errorf("got %+v", in)
	}

	msrRegWord := encodeWord(t, []token.Token{
		{Kind: token.Instr, Mnemonic: "MSR", Cond: inst.AL},
		{Kind: token.Modifier, Text: "CPSR"},
		{Kind: token.Reg, RegIndex: 2},
	})
	in, err = Decode(msrRegWord)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Kind != KindPSR || !in.IsMSR || in.UseSPSR || in.Op2.Rm != 2 {
		t.Errorf("got %+v", in)
	}

	msrImmWord := encodeWord(t, []token.Token{
		{Kind: token.Instr, Mnemonic: "MSR", Cond: inst.AL},
		{Kind: token.Modifier, Text: "CPSR"},
		{Kind: token.Const, ImmValue: 0xF0},
	})
	in, err = Decode(msrImmWord)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Kind != KindPSR || !in.IsMSR || !in.Op2.IsImmediate || in.Op2.ImmValue != 0xF0 {
		t.Errorf("got %+v", in)
	}
}

// TestDecodeComparisonNotMistakenForPSR guards against the overlap
// between TST/TEQ/CMP/CMN's opcode bits and MRS/MSR's: both occupy
// opcode nibble 10xx, and are distinguished only by the S bit (always
// set on the comparisons, always clear on PSR transfers).
func TestDecodeComparisonNotMistakenForPSR(t *testing.T) {
	word := encodeWord(t, []token.Token{
		{Kind: token.Instr, Mnemonic: "CMP", Cond: inst.AL},
		{Kind: token.Reg, RegIndex: 0},
		{Kind: token.Reg, RegIndex: 1},
	})
	in, err := Decode(word)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Kind != KindDataProc || in.DPOp != inst.CMP || in.Rn != 0 {
		t.Errorf("got %+v, want KindDataProc/CMP", in)
	}
}

func TestDecodeSWIRoundTrip(t *testing.T) {
	word := encodeWord(t, []token.Token{
		{Kind: token.Instr, Mnemonic: "SVC", Cond: inst.AL},
		{Kind: token.Const, ImmValue: 0x42},
	})
	in, err := Decode(word)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Kind != KindSWI || in.Comment != 0x42 {
		t.Errorf("got %+v", in)
	}
}

func TestDecodeUndefinedWord(t *testing.T) {
	// An AL-condition coprocessor register transfer (bits 27:24 = 1110,
	// bit 4 set) falls outside every class this subset recognizes and
	// isn't producible by the encoder, so build it by hand.
	word := uint32(0xEE000010)
	if _, err := Decode(word); err == nil {
		t.Error("expected an error for an unrecognized instruction class")
	}
}
