package cpu

import "armsim/pkg/decoder"

// execBranch carries out B/BL: target = (curAddr+8) + offset, link saves
// the return address in R14.
func (x *Executor) execBranch(d *Delta, in decoder.Instruction, curAddr uint32) (pcWritten bool, err error) {
	if in.Link {
		trackReg(d, x.Regs, 14)
		x.Regs.Write(14, curAddr+4)
	}
	target := uint32(int64(curAddr) + 8 + int64(in.BranchWord))
	trackReg(d, x.Regs, 15)
	x.Regs.Write(15, target)
	return true, nil
}
