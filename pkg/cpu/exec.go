// Package cpu holds the ARMv4 processor model: banked registers,
// memory, flags, and the instruction executor (spec §3, §4.5). Exec
// mirrors the teacher's Exec(*State, op, imm) shape — one entry point, a
// switch on instruction kind, state mutated in place — generalized from a
// flat 8-bit register file to banked 32-bit registers and real memory.
package cpu

import (
	"fmt"

	"armsim/pkg/decoder"
)

// Executor runs decoded instructions against one RegisterBank and Memory.
// Non-goals (spec §4 Non-goals): no pipeline timing beyond the monotone
// cycle counter Step increments once per instruction, condition-failed or
// not.
type Executor struct {
	Regs   *RegisterBank
	Mem    *Memory
	Cycles uint64

	// Pending holds an exception latched by Step, which pkg/interp takes
	// at the next instruction boundary; nil when none is pending. Only SWI
	// sets it.
	Pending *PendingInterrupt
}

// PendingInterrupt describes an exception waiting to be taken at the next
// instruction boundary. SWI is the only source; it leaves FIQ false.
type PendingInterrupt struct {
	FIQ bool
}

// NewExecutor wires regs and mem together with a fresh cycle counter.
func NewExecutor(regs *RegisterBank, mem *Memory) *Executor {
	return &Executor{Regs: regs, Mem: mem}
}

// UnimplementedError reports a decoded instruction this executor
// recognizes the shape of but doesn't (yet) carry out.
type UnimplementedError struct{ Kind decoder.Kind }

func (e UnimplementedError) Error() string {
	return fmt.Sprintf("unimplemented instruction kind %v", e.Kind)
}

// Step decodes and executes the word at curAddr, returning the Delta a
// History can invert. curAddr is the instruction's own address — PC
// reads as curAddr+8 per spec §4.5, and the executor advances R15 to
// curAddr+4 afterward unless the instruction explicitly wrote R15.
func (x *Executor) Step(word uint32, curAddr uint32) (Delta, error) {
	in, err := decoder.Decode(word)
	if err != nil {
		return Delta{}, err
	}

	d := newDelta(curAddr, x.Cycles, x.Regs.CPSR())
	x.Cycles++

	if !in.Cond.Eval(d.CPSRBefore.N, d.CPSRBefore.Z, d.CPSRBefore.C, d.CPSRBefore.V) {
		d.PCAfter = curAddr + 4
		trackReg(&d, x.Regs, 15)
		x.Regs.Write(15, d.PCAfter)
		return d, nil
	}

	pcWritten := false
	switch in.Kind {
	case decoder.KindDataProc:
		pcWritten, err = x.execDataProc(&d, in, curAddr)
	case decoder.KindMemory:
		pcWritten, err = x.execMemory(&d, in, curAddr)
	case decoder.KindBlockTransfer:
		pcWritten, err = x.execBlockTransfer(&d, in, curAddr)
	case decoder.KindBranch:
		pcWritten, err = x.execBranch(&d, in, curAddr)
	case decoder.KindMultiply:
		err = x.execMultiply(&d, in)
	case decoder.KindMultiplyLong:
		err = x.execMultiplyLong(&d, in)
	case decoder.KindSwap:
		err = x.execSwap(&d, in)
	case decoder.KindPSR:
		err = x.execPSR(&d, in)
	case decoder.KindSWI:
		x.Pending = &PendingInterrupt{} // pkg/interp enters Supervisor mode at VectorSWI on the next boundary
	default:
		err = UnimplementedError{in.Kind}
	}
	if err != nil {
		return d, err
	}

	if !pcWritten {
		trackReg(&d, x.Regs, 15)
		x.Regs.Write(15, curAddr+4)
	}
	d.PCAfter = x.Regs.Read(15)
	return d, nil
}
