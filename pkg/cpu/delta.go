package cpu

// Delta is everything one executed instruction changed, in a form
// pkg/history can invert to implement stepBack (spec §3 HistoryDelta):
// old register/memory values, old flags, and the PC the instruction
// started at. Delta never records values that didn't change — an empty
// Delta (condition failed to match) still advances PC and cycle count.
type Delta struct {
	PCBefore, PCAfter uint32
	CyclesBefore      uint64

	RegsBefore map[int]uint32
	MemBefore  map[uint32]uint8
	// MemWasUninit holds the subset of MemBefore's addresses that had
	// never been written before this step touched them — undo must erase
	// these back to uninitialized rather than writing the recorded
	// (zero) byte, or a stepBack past a program's only store would leave
	// the address looking initialized.
	MemWasUninit map[uint32]bool

	CPSRBefore Flags
	SPSRBefore Flags
	SPSRMode   Mode // which SPSR bank SPSRBefore belongs to, if any
	SPSRValid  bool
}

func newDelta(pc uint32, cycles uint64, cpsr Flags) Delta {
	return Delta{
		PCBefore:     pc,
		CyclesBefore: cycles,
		CPSRBefore:   cpsr,
		RegsBefore:   make(map[int]uint32),
		MemBefore:    make(map[uint32]uint8),
		MemWasUninit: make(map[uint32]bool),
	}
}

// trackReg records n's pre-instruction value the first time it's touched
// this step, before w overwrites it.
func trackReg(d *Delta, regs *RegisterBank, n int) {
	if _, ok := d.RegsBefore[n]; !ok {
		d.RegsBefore[n] = regs.Read(n)
	}
}

// trackByte records addr's pre-instruction byte the first time it's
// touched this step, before a write overwrites it.
func trackByte(d *Delta, mem *Memory, addr uint32) {
	if _, ok := d.MemBefore[addr]; !ok {
		d.MemBefore[addr] = mem.ReadByte(addr)
		d.MemWasUninit[addr] = !mem.Initialized(addr)
	}
}

func trackWord(d *Delta, mem *Memory, addr uint32) {
	trackByte(d, mem, addr)
	trackByte(d, mem, addr+1)
	trackByte(d, mem, addr+2)
	trackByte(d, mem, addr+3)
}

// trackSPSR records the current mode's SPSR the first time this step
// overwrites it (MSR SPSR, or interrupt entry banking a new SPSR).
func trackSPSR(d *Delta, regs *RegisterBank) {
	if d.SPSRValid {
		return
	}
	if spsr, ok := regs.SPSR(); ok {
		d.SPSRBefore = spsr
		d.SPSRMode = regs.CPSR().Mode
		d.SPSRValid = true
	}
}
