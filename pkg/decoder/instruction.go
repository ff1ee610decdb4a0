// Package decoder turns a raw 32-bit ARMv4 instruction word back into a
// typed Instruction the executor can switch on (spec §4.4). It is the
// encoder's inverse: Decode(Encode(toks)) should reproduce every field
// Encode consulted.
package decoder

import "armsim/pkg/inst"

// Kind tags which instruction class a decoded word belongs to.
type Kind int

const (
	KindDataProc Kind = iota
	KindMemory
	KindBlockTransfer
	KindBranch
	KindMultiply
	KindMultiplyLong
	KindSwap
	KindPSR
	KindSWI
	KindUndefined
)

func (k Kind) String() string {
	switch k {
	case KindDataProc:
		return "DATAPROC"
	case KindMemory:
		return "MEMORY"
	case KindBlockTransfer:
		return "BLOCKTRANSFER"
	case KindBranch:
		return "BRANCH"
	case KindMultiply:
		return "MULTIPLY"
	case KindMultiplyLong:
		return "MULTIPLYLONG"
	case KindSwap:
		return "SWAP"
	case KindPSR:
		return "PSR"
	case KindSWI:
		return "SWI"
	default:
		return "UNDEFINED"
	}
}

// Operand2 is the decoded shifter operand of a data-processing or
// single-data-transfer-register-offset instruction.
type Operand2 struct {
	IsImmediate bool
	ImmValue    uint32 // rotated immediate, already applied
	ImmCarry    bool   // carry-out produced by the immediate rotate; meaningless when ImmRot==0
	ImmRot      uint8  // raw rotate field; 0 means "carry-out unchanged from carry-in"

	Rm         int
	ShiftKind  inst.ShiftKind
	ShiftAmt   uint32 // valid when !ShiftIsReg
	ShiftReg   int    // valid when ShiftIsReg
	ShiftIsReg bool
}

// Instruction is a tagged variant over every ARMv4 word this subset
// recognizes. Only the fields relevant to Kind are populated.
type Instruction struct {
	Kind Kind
	Cond inst.Condition
	Raw  uint32

	// DATAPROC
	DPOp     inst.DPOpcode
	SetFlags bool
	Rd, Rn   int
	Op2      Operand2

	// MEMORY
	Byte        bool
	Load        bool
	PreIndexed  bool
	Writeback   bool
	Negative    bool
	OffsetIsReg bool
	MemRn       int

	// BLOCKTRANSFER
	AddrMode inst.AddrMode
	RegList  inst.RegList

	// BRANCH
	Link       bool
	BranchWord int32 // signed byte offset: imm24 sign-extended and multiplied by 4

	// MULTIPLY / MULTIPLYLONG
	Accumulate bool
	Signed     bool
	Rm, Rs     int
	RdHi, RdLo int

	// SWAP
	SwapRn, SwapRd, SwapRm int

	// PSR
	IsMSR   bool
	UseSPSR bool

	// SWI
	Comment uint32
}

// InvalidWordError reports a 32-bit pattern that matches none of this
// subset's instruction classes (spec's INVINSTR at decode time).
type InvalidWordError struct{ Word uint32 }

func (e InvalidWordError) Error() string {
	return "undecodable instruction word"
}
