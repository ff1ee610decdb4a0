package cpu

import "armsim/pkg/decoder"

// execSwap carries out SWP{B}: memory is written before the register, so
// rd==rm reads the old memory value rather than the value it just wrote
// (grounded on the reference simulator's swapOp.execute, which computes
// the write value before touching the register it will overwrite).
func (x *Executor) execSwap(d *Delta, in decoder.Instruction) error {
	addr := x.Regs.Read(in.SwapRn)
	var old uint32
	if in.Byte {
		old = uint32(x.Mem.ReadByte(addr))
	} else {
		trackWord(d, x.Mem, addr)
		old = x.Mem.ReadWord(addr)
	}

	toWrite := x.Regs.Read(in.SwapRm)
	if in.Byte {
		trackByte(d, x.Mem, addr)
		x.Mem.WriteByte(addr, uint8(toWrite))
	} else {
		x.Mem.WriteWord(addr, toWrite)
	}

	trackReg(d, x.Regs, in.SwapRd)
	x.Regs.Write(in.SwapRd, old)
	return nil
}

// execPSR carries out MRS/MSR against CPSR or the current mode's SPSR.
func (x *Executor) execPSR(d *Delta, in decoder.Instruction) error {
	if !in.IsMSR {
		var v uint32
		if in.UseSPSR {
			if spsr, ok := x.Regs.SPSR(); ok {
				v = spsr.Pack()
			}
		} else {
			v = x.Regs.CPSR().Pack()
		}
		trackReg(d, x.Regs, in.Rd)
		x.Regs.Write(in.Rd, v)
		return nil
	}

	var src uint32
	if in.Op2.IsImmediate {
		src = in.Op2.ImmValue
	} else {
		src = x.Regs.Read(in.Op2.Rm)
	}
	f := UnpackFlags(src)
	if in.UseSPSR {
		trackSPSR(d, x.Regs)
		x.Regs.SetSPSR(f)
	} else {
		x.Regs.SetCPSR(f)
	}
	return nil
}
