package encoder

import (
	"encoding/binary"
	"testing"

	"armsim/pkg/inst"
	"armsim/pkg/token"
)

func reg(n int) token.Token { return token.Token{Kind: token.Reg, RegIndex: n} }
func imm(v int32) token.Token { return token.Token{Kind: token.Const, ImmValue: v} }

func TestEncodeDataProcessingImmediate(t *testing.T) {
	// ADDS R0, R1, #1
	toks := []token.Token{
		{Kind: token.Instr, Mnemonic: "ADD", Cond: inst.AL, SetFlags: true},
		reg(0), reg(1), imm(1),
	}
	b, err := Encode(toks)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	word := binary.LittleEndian.Uint32(b)
	if word>>28 != uint32(inst.AL) {
		t.Errorf("condition field = %#x", word>>28)
	}
	if word&(1<<25) == 0 {
		t.Error("immediate bit (I) should be set")
	}
	if (word>>21)&0xF != uint32(inst.ADD) {
		t.Errorf("opcode field = %#x, want ADD", (word>>21)&0xF)
	}
	if word&(1<<20) == 0 {
		t.Error("S bit should be set")
	}
	if (word>>16)&0xF != 1 {
		t.Errorf("Rn field = %d, want 1", (word>>16)&0xF)
	}
	if (word>>12)&0xF != 0 {
		t.Errorf("Rd field = %d, want 0", (word>>12)&0xF)
	}
	if word&0xFF != 1 {
		t.Errorf("imm8 field = %d, want 1", word&0xFF)
	}
}

func TestEncodeDataProcessingShiftedRegister(t *testing.T) {
	// ADD R0, R1, R2, LSL #2
	toks := []token.Token{
		{Kind: token.Instr, Mnemonic: "ADD", Cond: inst.AL},
		reg(0), reg(1), reg(2),
		{Kind: token.Shift, ShiftKind: inst.LSL, ShiftAmt: 2},
	}
	b, err := Encode(toks)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	word := binary.LittleEndian.Uint32(b)
	if word&(1<<25) != 0 {
		t.Error("I bit should be clear for a register operand2")
	}
	if (word>>7)&0x1F != 2 {
		t.Errorf("shift amount field = %d, want 2", (word>>7)&0x1F)
	}
	if word&0xF != 2 {
		t.Errorf("Rm field = %d, want 2", word&0xF)
	}
}

func TestEncodeDataProcessingRangeError(t *testing.T) {
	toks := []token.Token{
		{Kind: token.Instr, Mnemonic: "MOV", Cond: inst.AL},
		reg(0), imm(0x101), // not expressible as an 8-bit value rotated by an even amount
	}
	_, err := Encode(toks)
	if _, ok := err.(RangeError); !ok {
		t.Fatalf("Encode error = %v (%T), want RangeError", err, err)
	}
}

func TestEncodeComparisonForcesS(t *testing.T) {
	// CMP R0, #0 — no Rd, S forced even without a written "S" suffix.
	toks := []token.Token{
		{Kind: token.Instr, Mnemonic: "CMP", Cond: inst.AL},
		reg(0), imm(0),
	}
	b, err := Encode(toks)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	word := binary.LittleEndian.Uint32(b)
	if word&(1<<20) == 0 {
		t.Error("CMP must force the S bit")
	}
}

func TestEncodeMemoryPreIndexedImmediate(t *testing.T) {
	// LDR R2, [R1, #4]!
	toks := []token.Token{
		{Kind: token.Instr, Mnemonic: "LDR", Cond: inst.AL},
		reg(2),
		{Kind: token.MemAccess, Mem: token.MemOperand{Base: 1, OffsetImm: 4, PreIndexed: true, Writeback: true}},
	}
	b, err := Encode(toks)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	word := binary.LittleEndian.Uint32(b)
	if word&(1<<20) == 0 {
		t.Error("L bit should be set for LDR")
	}
	if word&(1<<24) == 0 {
		t.Error("P bit should be set for pre-indexed")
	}
	if word&(1<<21) == 0 {
		t.Error("W bit should be set for writeback")
	}
	if word&0xFFF != 4 {
		t.Errorf("offset field = %d, want 4", word&0xFFF)
	}
}

func TestEncodeBranchOffset(t *testing.T) {
	// A label 16 bytes behind the branch, PC read as instrAddr+8:
	// offset = -16 - 8 = -24, word offset = -6.
	toks := []token.Token{
		{Kind: token.Instr, Mnemonic: "B", Cond: inst.AL},
		{Kind: token.MemAccess, Mem: token.MemOperand{Base: 15, OffsetImm: 24, Negative: true}},
	}
	b, err := Encode(toks)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	word := binary.LittleEndian.Uint32(b)
	got := inst.SignExtend24(word & 0xFFFFFF)
	if got != -6 {
		t.Errorf("branch imm24 = %d, want -6", got)
	}
}

func TestEncodeBlockTransferAscendingIrrelevantToBits(t *testing.T) {
	// STMIA R0!, {R1,R3,R5}
	toks := []token.Token{
		{Kind: token.Instr, Mnemonic: "STM", Cond: inst.AL, AddrMode: inst.IA, HasAddrMode: true},
		{Kind: token.Reg, RegIndex: 0, RegWriteback: true},
		{Kind: token.Shift, Mnemonic: "REGLIST", ImmValue: (1 << 1) | (1 << 3) | (1 << 5)},
	}
	b, err := Encode(toks)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	word := binary.LittleEndian.Uint32(b)
	if word&0xFFFF != (1<<1)|(1<<3)|(1<<5) {
		t.Errorf("register list field = %#x", word&0xFFFF)
	}
	if word&(1<<21) == 0 {
		t.Error("W bit should be set")
	}
	if word&(1<<20) != 0 {
		t.Error("L bit should be clear for STM")
	}
}

func TestEncodeDeclarationInitAndReserve(t *testing.T) {
	dc := token.Token{Kind: token.Declaration, NBits: 32, Init: []int32{1, 2, -1}, Dim: 3}
	b, err := EncodeDeclaration(dc, 0xAA)
	if err != nil {
		t.Fatalf("EncodeDeclaration: %v", err)
	}
	if len(b) != 12 {
		t.Fatalf("len = %d, want 12", len(b))
	}
	if binary.LittleEndian.Uint32(b[8:]) != 0xFFFFFFFF {
		t.Errorf("third word = %#x, want 0xFFFFFFFF", binary.LittleEndian.Uint32(b[8:]))
	}

	ds := token.Token{Kind: token.Declaration, NBits: 8, Dim: 4}
	b, err = EncodeDeclaration(ds, 0xAA)
	if err != nil {
		t.Fatalf("EncodeDeclaration: %v", err)
	}
	for _, v := range b {
		if v != 0xAA {
			t.Errorf("fill byte = %#x, want 0xAA", v)
		}
	}
}
