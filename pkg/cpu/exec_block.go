package cpu

import (
	"armsim/pkg/decoder"
	"armsim/pkg/inst"
)

// execBlockTransfer carries out LDM/STM. Registers are always processed
// in ascending order regardless of addressing mode (spec §4.5); IA/DB
// transfer starting from the lowest address upward, IB/DA equivalently,
// matching the base register's final writeback value either way.
func (x *Executor) execBlockTransfer(d *Delta, in decoder.Instruction, curAddr uint32) (pcWritten bool, err error) {
	regs := in.RegList.Registers()
	base := x.Regs.ReadOperand(in.MemRn, curAddr)

	var start uint32
	switch in.AddrMode {
	case inst.IA:
		start = base
	case inst.IB:
		start = base + 4
	case inst.DA:
		start = base - uint32(4*len(regs)) + 4
	case inst.DB:
		start = base - uint32(4*len(regs))
	}

	addr := start
	for _, r := range regs {
		if in.Load {
			trackWord(d, x.Mem, addr)
			trackReg(d, x.Regs, r)
			x.Regs.Write(r, x.Mem.ReadWord(addr))
			if r == 15 {
				pcWritten = true
			}
		} else {
			trackWord(d, x.Mem, addr)
			x.Mem.WriteWord(addr, x.Regs.ReadOperand(r, curAddr))
		}
		addr += 4
	}

	if in.Writeback {
		var final uint32
		switch in.AddrMode {
		case inst.IA:
			final = base + uint32(4*len(regs))
		case inst.IB:
			final = base + uint32(4*len(regs))
		case inst.DA:
			final = base - uint32(4*len(regs))
		case inst.DB:
			final = base - uint32(4*len(regs))
		}
		trackReg(d, x.Regs, in.MemRn)
		x.Regs.Write(in.MemRn, final)
	}
	return pcWritten, nil
}
