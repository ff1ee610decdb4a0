package cpu

// ExceptionVector is the fixed entry address ARMv4 dispatches to for each
// exception kind this subset recognizes (spec §4.5 SVC, §4.9/§6 IRQ/FIQ).
type ExceptionVector uint32

const (
	VectorSWI ExceptionVector = 0x08
	VectorIRQ ExceptionVector = 0x18
	VectorFIQ ExceptionVector = 0x1C
)

// EnterException carries out the shared exception-entry sequence: save
// the return address in LR_mode, save CPSR in SPSR_mode, switch mode,
// mask interrupts, and set PC to vector. It returns the Delta so the
// caller (pkg/interp) can push it to the journal — per spec §5 "interrupt
// injection happens between instructions, after history recording of the
// injection itself". It clears Pending before returning.
func (x *Executor) EnterException(mode Mode, vector ExceptionVector, disableFIQ bool) Delta {
	cpsr := x.Regs.CPSR()
	d := newDelta(x.Regs.Read(15), x.Cycles, cpsr)

	returnAddr := x.Regs.Read(15)
	x.Regs.SetMode(mode)
	trackReg(&d, x.Regs, 14)
	x.Regs.Write(14, returnAddr)

	trackSPSR(&d, x.Regs)
	x.Regs.SetSPSR(cpsr)

	newCPSR := cpsr
	newCPSR.Mode = mode
	newCPSR.I = true
	if disableFIQ {
		newCPSR.F = true
	}
	x.Regs.SetCPSR(newCPSR)

	trackReg(&d, x.Regs, 15)
	x.Regs.Write(15, uint32(vector))
	d.PCAfter = uint32(vector)
	x.Pending = nil
	return d
}
