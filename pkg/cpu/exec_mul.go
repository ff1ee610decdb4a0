package cpu

import "armsim/pkg/decoder"

// execMultiply carries out MUL/MLA. Rd and Rm/Rs must not be R15 on real
// hardware; this subset doesn't special-case that restriction.
func (x *Executor) execMultiply(d *Delta, in decoder.Instruction) error {
	rm := x.Regs.Read(in.Rm)
	rs := x.Regs.Read(in.Rs)
	result := rm * rs
	if in.Accumulate {
		result += x.Regs.Read(in.Rn)
	}
	if in.SetFlags {
		cpsr := x.Regs.CPSR()
		x.Regs.SetCPSR(Flags{N: result&0x80000000 != 0, Z: result == 0, C: cpsr.C, V: cpsr.V, I: cpsr.I, F: cpsr.F, Mode: cpsr.Mode})
	}
	trackReg(d, x.Regs, in.Rd)
	x.Regs.Write(in.Rd, result)
	return nil
}

// execMultiplyLong carries out UMULL/SMULL/UMLAL/SMLAL, splitting the
// 64-bit product across RdHi:RdLo.
func (x *Executor) execMultiplyLong(d *Delta, in decoder.Instruction) error {
	rm := x.Regs.Read(in.Rm)
	rs := x.Regs.Read(in.Rs)

	var product uint64
	if in.Signed {
		product = uint64(int64(int32(rm)) * int64(int32(rs)))
	} else {
		product = uint64(rm) * uint64(rs)
	}
	if in.Accumulate {
		acc := uint64(x.Regs.Read(in.RdLo)) | uint64(x.Regs.Read(in.RdHi))<<32
		product += acc
	}

	lo := uint32(product)
	hi := uint32(product >> 32)

	if in.SetFlags {
		cpsr := x.Regs.CPSR()
		x.Regs.SetCPSR(Flags{N: hi&0x80000000 != 0, Z: product == 0, C: cpsr.C, V: cpsr.V, I: cpsr.I, F: cpsr.F, Mode: cpsr.Mode})
	}
	trackReg(d, x.Regs, in.RdLo)
	trackReg(d, x.Regs, in.RdHi)
	x.Regs.Write(in.RdLo, lo)
	x.Regs.Write(in.RdHi, hi)
	return nil
}
