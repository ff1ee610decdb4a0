// Package token defines the lexical tokens produced from one line of ARM
// assembly source (spec §3, §4.1). pkg/asm's resolution pass replaces
// label-reference tokens in place, in its own per-line token slices, with
// synthesized MemAccess tokens.
package token

import "armsim/pkg/inst"

// Kind tags which variant a Token holds.
type Kind int

const (
	Section Kind = iota
	Label
	Declaration
	Instr
	Reg
	Const
	Shift
	MemAccess
	RefLabel
	RefLabelAddr
	ConditionTok
	Modifier
)

func (k Kind) String() string {
	switch k {
	case Section:
		return "SECTION"
	case Label:
		return "LABEL"
	case Declaration:
		return "DECLARATION"
	case Instr:
		return "INSTR"
	case Reg:
		return "REG"
	case Const:
		return "CONST"
	case Shift:
		return "SHIFT"
	case MemAccess:
		return "MEMACCESS"
	case RefLabel:
		return "REFLABEL"
	case RefLabelAddr:
		return "REFLABELADDR"
	case ConditionTok:
		return "CONDITION"
	case Modifier:
		return "MODIFIER"
	default:
		return "UNKNOWN"
	}
}

// MemOperand is the payload of a MemAccess token: [Rn, #+/-offset]{!} style
// addressing, or a register-offset form when OffsetIsReg is true.
type MemOperand struct {
	Base        int  // base register 0..15
	OffsetIsReg bool
	OffsetReg   int // valid when OffsetIsReg
	OffsetImm   int32
	Negative    bool // offset subtracted rather than added
	PreIndexed  bool // [Rn, ...] vs post-indexed [Rn], ...
	Writeback   bool // '!' suffix, or always-on for post-indexed
	ShiftKind   inst.ShiftKind
	ShiftAmt    int32
	HasShift    bool
}

// Token is a tagged variant over the forms listed in spec §3. Only the
// fields relevant to Kind are populated; the rest hold zero values.
type Token struct {
	Kind Kind
	Line int

	// SECTION / LABEL / REFLABEL / REFLABELADDR / INSTR mnemonic / MODIFIER
	Text string

	// REFLABELADDR: "LDR Rd, =expr" where expr is a bare number rather than
	// a label places the number itself in the literal pool.
	RefIsImmediate bool
	RefImmValue    int32

	// INSTR
	Mnemonic string
	Cond     inst.Condition
	SetFlags bool // "S" suffix
	Byte     bool // "B" suffix
	AddrMode inst.AddrMode
	HasAddrMode bool

	// DECLARATION
	NBits int // 8, 16 or 32
	Dim   int
	Init  []int32 // nil for DSn (reserve), populated for DCn

	// REG
	RegIndex int
	// REG: '!' suffix on a bare base register, as in "LDM R0!, {...}"
	RegWriteback bool

	// CONST
	ImmValue int32

	// SHIFT (standalone, e.g. operand2 register shift)
	ShiftKind  inst.ShiftKind
	ShiftAmt   int32
	ShiftReg   int
	ShiftIsReg bool

	// MEMACCESS
	Mem MemOperand
}
