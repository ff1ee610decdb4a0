package interp

import (
	"fmt"

	"armsim/pkg/cpu"
)

// MemoryChange is one byte that changed during the most recently executed
// step (spec §4.6 getMemoryChanges).
type MemoryChange struct {
	Addr uint32
	Old  uint8
}

// GetMemoryChanges returns the bytes recorded in the journal's most recent
// entry (the last executed instruction or exception entry), in no
// particular order; a stepBack immediately afterward would restore exactly
// these bytes. Reading does not consume them: repeated calls return the
// same list until the next instruction runs, and earlier instructions of a
// multi-instruction Step are not included.
func (ip *Interpreter) GetMemoryChanges() []MemoryChange {
	last, ok := ip.jrnl.Peek()
	if !ok {
		return nil
	}
	out := make([]MemoryChange, 0, len(last.MemBefore))
	for addr, old := range last.MemBefore {
		out = append(out, MemoryChange{Addr: addr, Old: old})
	}
	return out
}

// RegisterFlagChanges is the result of GetRegistersAndFlagsChanges (spec
// §4.7): which logical registers changed, whether CPSR/SPSR changed, and
// whether the processor mode banked a different register set.
type RegisterFlagChanges struct {
	Registers    []int
	FlagsChanged bool
	BankChanged  bool
	OldMode      cpu.Mode
	NewMode      cpu.Mode
}

// GetRegistersAndFlagsChanges reports what the last Step call wrote.
func (ip *Interpreter) GetRegistersAndFlagsChanges() RegisterFlagChanges {
	last, ok := ip.jrnl.Peek()
	if !ok {
		return RegisterFlagChanges{}
	}
	regs := make([]int, 0, len(last.RegsBefore))
	for n := range last.RegsBefore {
		regs = append(regs, n)
	}
	cur := ip.regs.CPSR()
	return RegisterFlagChanges{
		Registers:    regs,
		FlagsChanged: last.CPSRBefore != cur,
		BankChanged:  last.CPSRBefore.Mode != cur.Mode,
		OldMode:      last.CPSRBefore.Mode,
		NewMode:      cur.Mode,
	}
}

// SetFlags installs flagsDict into CPSR, and into the current mode's SPSR
// for any 'S'-prefixed key, without triggering flag breakpoints (spec
// §4.9 setFlags "mayTriggerBkpt=False").
func (ip *Interpreter) SetFlags(flags map[string]bool) {
	cpsr := ip.regs.CPSR()
	spsr, hasSPSR := ip.regs.SPSR()
	for name, v := range flags {
		target, key := &cpsr, name
		if hasSPSR && len(name) == 2 && name[0] == 'S' {
			target, key = &spsr, name[1:]
		}
		switch key {
		case "N":
			target.N = v
		case "Z":
			target.Z = v
		case "C":
			target.C = v
		case "V":
			target.V = v
		case "I":
			target.I = v
		case "F":
			target.F = v
		}
	}
	ip.regs.SetCPSR(cpsr)
	if hasSPSR {
		ip.regs.SetSPSR(spsr)
	}
}

// GetMemoryFormatted renders the sparse address space as hex-dump rows of
// 16 bytes, sorted by address (spec §4.6 serializeFormatted), skipping
// addresses never written.
func (ip *Interpreter) GetMemoryFormatted() string {
	snap := ip.mem.Snapshot()
	addrs := make([]uint32, 0, len(snap))
	for a := range snap {
		addrs = append(addrs, a)
	}
	sortUint32s(addrs)

	var out string
	for i, a := range addrs {
		if i == 0 || a/16 != addrs[i-1]/16 {
			if i != 0 {
				out += "\n"
			}
			out += fmt.Sprintf("%08X:", a/16*16)
		}
		out += fmt.Sprintf(" %02X", snap[a])
	}
	if out != "" {
		out += "\n"
	}
	return out
}

func sortUint32s(s []uint32) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
