// Package history implements the bounded step-back journal (spec §4.8):
// a ring of cpu.Delta entries an interpreter can replay backward by
// inverting each one against the live register bank and memory.
package history

import (
	"errors"

	"armsim/pkg/cpu"
)

// ErrUnderflow is HISTORY_UNDERFLOW: StepBack asked for more steps than
// the journal has recorded.
var ErrUnderflow = errors.New("history: not enough recorded steps")

// ErrCapacity is purely informational: Push never fails, it just drops
// the oldest entry once the ring is full (spec §3 "cannot step back that
// far" is ErrUnderflow's job, not this one's).
var ErrCapacity = errors.New("history: capacity reached, oldest entry dropped")

// Journal is a bounded ring of Delta, newest last.
type Journal struct {
	entries []cpu.Delta
	cap     int
}

// New returns a Journal that keeps at most capacity entries. capacity <=
// 0 means unbounded.
func New(capacity int) *Journal {
	return &Journal{cap: capacity}
}

// Push records d, dropping the oldest entry if the journal is at
// capacity.
func (j *Journal) Push(d cpu.Delta) {
	j.entries = append(j.entries, d)
	if j.cap > 0 && len(j.entries) > j.cap {
		j.entries = j.entries[1:]
	}
}

// Len reports how many steps can currently be undone.
func (j *Journal) Len() int { return len(j.entries) }

// Peek returns the most recently pushed Delta without removing it, for
// callers that want to inspect what the last step changed (pkg/interp's
// getMemoryChanges/getRegistersAndFlagsChanges). ok is false on an empty
// journal.
func (j *Journal) Peek() (cpu.Delta, bool) {
	if len(j.entries) == 0 {
		return cpu.Delta{}, false
	}
	return j.entries[len(j.entries)-1], true
}

// StepBack undoes the last n recorded instructions against x, newest
// first, without mutating the journal or the CPU state if n exceeds
// what's recorded.
func (j *Journal) StepBack(n int, x *cpu.Executor) error {
	if n <= 0 {
		return nil
	}
	if n > len(j.entries) {
		return ErrUnderflow
	}
	var oldestCycles uint64
	for i := 0; i < n; i++ {
		d := j.entries[len(j.entries)-1-i]
		undo(d, x.Regs, x.Mem)
		oldestCycles = d.CyclesBefore
	}
	x.Cycles = oldestCycles
	j.entries = j.entries[:len(j.entries)-n]
	return nil
}

// undo reverts one Delta: every register and memory byte it touched is
// restored to its pre-instruction value, then flags/PC/cycle count
// follow the same path.
func undo(d cpu.Delta, regs *cpu.RegisterBank, mem *cpu.Memory) {
	for n, v := range d.RegsBefore {
		regs.Write(n, v)
	}
	for addr, v := range d.MemBefore {
		if d.MemWasUninit[addr] {
			mem.Uninit(addr)
		} else {
			mem.WriteByte(addr, v)
		}
	}
	regs.SetCPSR(d.CPSRBefore)
	if d.SPSRValid {
		cur := regs.CPSR()
		regs.SetMode(d.SPSRMode)
		regs.SetSPSR(d.SPSRBefore)
		regs.SetMode(cur.Mode)
	}
	regs.Write(15, d.PCBefore)
}
