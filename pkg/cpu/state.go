package cpu

// Mode is one of the ARMv4 processor modes. Banking only affects R13/R14
// (and R8-R12 for FIQ); R0-R7 and R15 are always the single physical
// registers.
type Mode uint8

const (
	ModeUser Mode = iota
	ModeFIQ
	ModeIRQ
	ModeSupervisor
	ModeAbort
	ModeSystem
	ModeUndefined
)

var modeMnemonic = [...]string{"USR", "FIQ", "IRQ", "SVC", "ABT", "SYS", "UND"}

func (m Mode) String() string { return modeMnemonic[m&0x7] }

// HasSPSR reports whether m has a private saved-status register. User and
// System share the single CPSR and have none.
func (m Mode) HasSPSR() bool { return m != ModeUser && m != ModeSystem }

// RegisterBank holds the 16 general registers across every banked mode
// plus CPSR/SPSR, following the same "plain struct, no hidden state"
// approach as the teacher's State. Unlike State it isn't a value type:
// the banked arrays make copying expensive and pointer semantics match
// how pkg/interp shares one bank across steps.
type RegisterBank struct {
	user [16]uint32 // R0-R15 for User/System mode; R15 always read from here
	fiq  [7]uint32  // r8_fiq..r14_fiq
	irq  [2]uint32  // r13_irq, r14_irq
	svc  [2]uint32  // r13_svc, r14_svc
	abt  [2]uint32  // r13_abt, r14_abt
	und  [2]uint32  // r13_und, r14_und

	cpsr Flags

	spsrFIQ, spsrIRQ, spsrSVC, spsrABT, spsrUND Flags
}

// NewRegisterBank returns a bank reset to User mode with every register
// and flag zero.
func NewRegisterBank() *RegisterBank {
	b := &RegisterBank{}
	b.cpsr.Mode = ModeUser
	return b
}

// Read returns register n's value as seen by the current mode. Reading
// R15 this way returns the raw stored program counter, not the
// pipeline-adjusted address an instruction sees as an operand — use
// ReadOperand for that (spec §4.5's "PC reads as address+8").
func (b *RegisterBank) Read(n int) uint32 {
	switch {
	case n == 15:
		return b.user[15]
	case n <= 7:
		return b.user[n]
	case n <= 12:
		if b.cpsr.Mode == ModeFIQ {
			return b.fiq[n-8]
		}
		return b.user[n]
	default: // 13, 14
		switch b.cpsr.Mode {
		case ModeFIQ:
			return b.fiq[n-8]
		case ModeIRQ:
			return b.irq[n-13]
		case ModeSupervisor:
			return b.svc[n-13]
		case ModeAbort:
			return b.abt[n-13]
		case ModeUndefined:
			return b.und[n-13]
		default:
			return b.user[n]
		}
	}
}

// ReadOperand returns register n's value the way an executing instruction
// sees it: R15 reads as the current instruction's address plus 8.
func (b *RegisterBank) ReadOperand(n int, currentInstrAddr uint32) uint32 {
	if n == 15 {
		return currentInstrAddr + 8
	}
	return b.Read(n)
}

// Write stores v into register n under the current mode's banking.
func (b *RegisterBank) Write(n int, v uint32) {
	switch {
	case n == 15:
		b.user[15] = v
	case n <= 7:
		b.user[n] = v
	case n <= 12:
		if b.cpsr.Mode == ModeFIQ {
			b.fiq[n-8] = v
		} else {
			b.user[n] = v
		}
	default:
		switch b.cpsr.Mode {
		case ModeFIQ:
			b.fiq[n-8] = v
		case ModeIRQ:
			b.irq[n-13] = v
		case ModeSupervisor:
			b.svc[n-13] = v
		case ModeAbort:
			b.abt[n-13] = v
		case ModeUndefined:
			b.und[n-13] = v
		default:
			b.user[n] = v
		}
	}
}

// CPSR returns the current program status flags and mode.
func (b *RegisterBank) CPSR() Flags { return b.cpsr }

// SetCPSR installs f as the current status, banking registers if the mode
// changed.
func (b *RegisterBank) SetCPSR(f Flags) {
	b.cpsr = f
}

// SetMode changes only the mode field of CPSR, switching which banked
// registers Read/Write address.
func (b *RegisterBank) SetMode(m Mode) { b.cpsr.Mode = m }

// SPSR returns the saved status for the current mode. ok is false in
// User/System mode, which has no SPSR.
func (b *RegisterBank) SPSR() (Flags, bool) {
	switch b.cpsr.Mode {
	case ModeFIQ:
		return b.spsrFIQ, true
	case ModeIRQ:
		return b.spsrIRQ, true
	case ModeSupervisor:
		return b.spsrSVC, true
	case ModeAbort:
		return b.spsrABT, true
	case ModeUndefined:
		return b.spsrUND, true
	default:
		return Flags{}, false
	}
}

// SetSPSR writes f into the current mode's saved status. It is a no-op in
// User/System mode.
func (b *RegisterBank) SetSPSR(f Flags) {
	switch b.cpsr.Mode {
	case ModeFIQ:
		b.spsrFIQ = f
	case ModeIRQ:
		b.spsrIRQ = f
	case ModeSupervisor:
		b.spsrSVC = f
	case ModeAbort:
		b.spsrABT = f
	case ModeUndefined:
		b.spsrUND = f
	}
}

// RegisterBankSnapshot is the gob-serializable form of RegisterBank, used
// by pkg/history's checkpointing.
type RegisterBankSnapshot struct {
	User                                         [16]uint32
	FIQ                                           [7]uint32
	IRQ, SVC, ABT, UND                            [2]uint32
	CPSR                                          Flags
	SPSRFIQ, SPSRIRQ, SPSRSVC, SPSRABT, SPSRUND Flags
}

// Snapshot captures b's entire state for checkpointing.
func (b *RegisterBank) Snapshot() RegisterBankSnapshot {
	return RegisterBankSnapshot{
		User: b.user, FIQ: b.fiq, IRQ: b.irq, SVC: b.svc, ABT: b.abt, UND: b.und,
		CPSR: b.cpsr,
		SPSRFIQ: b.spsrFIQ, SPSRIRQ: b.spsrIRQ, SPSRSVC: b.spsrSVC, SPSRABT: b.spsrABT, SPSRUND: b.spsrUND,
	}
}

// RestoreSnapshot replaces b's entire state with s.
func (b *RegisterBank) RestoreSnapshot(s RegisterBankSnapshot) {
	b.user, b.fiq, b.irq, b.svc, b.abt, b.und = s.User, s.FIQ, s.IRQ, s.SVC, s.ABT, s.UND
	b.cpsr = s.CPSR
	b.spsrFIQ, b.spsrIRQ, b.spsrSVC, b.spsrABT, b.spsrUND = s.SPSRFIQ, s.SPSRIRQ, s.SPSRSVC, s.SPSRABT, s.SPSRUND
}
