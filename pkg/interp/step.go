package interp

import (
	"armsim/pkg/cpu"
	"armsim/pkg/decoder"
	"armsim/pkg/inst"
)

// Step advances the simulation according to mode (spec §4.9): "into"
// executes exactly one instruction; "over" and "out" keep going under a
// depth counter incremented on BL and decremented on a PC-restoring
// instruction; "run" keeps going until a stop condition or runBudget is
// reached. It returns why control came back.
func (ip *Interpreter) Step(mode StepMode) (StopReason, error) {
	ip.stepMode = mode
	ip.stopped = false
	startDepth := ip.callDepth

	for budget := runBudget; budget > 0; budget-- {
		reason, err := ip.stepOnce()
		if err != nil {
			ip.stopped = true
			return reason, err
		}
		if reason != StopNone {
			ip.stopped = true
			return reason, nil
		}
		switch mode {
		case StepInto:
			ip.stopped = true
			return StopNone, nil
		case StepOver:
			if ip.callDepth <= startDepth {
				ip.stopped = true
				return StopNone, nil
			}
		case StepOut:
			if ip.callDepth < startDepth {
				ip.stopped = true
				return StopNone, nil
			}
		case StepRun:
			// keep going
		}
	}
	ip.stopped = true
	return StopBudget, nil
}

// stepOnce executes exactly one "cycle": either delivering a latched
// exception (spec §5 "interrupt injection happens between instructions")
// or fetching and executing the instruction at the current PC.
func (ip *Interpreter) stepOnce() (StopReason, error) {
	ip.breakpointTrigged = false
	ip.currentBkpt = nil

	if ip.exec.Pending != nil {
		d := ip.exec.EnterException(cpu.ModeSupervisor, cpu.VectorSWI, false)
		ip.jrnl.Push(d)
		return StopNone, nil
	}
	cpsr := ip.regs.CPSR()
	cycles := ip.exec.Cycles
	if ip.fiq.due(cycles) && !cpsr.F {
		d := ip.exec.EnterException(cpu.ModeFIQ, cpu.VectorFIQ, true)
		ip.jrnl.Push(d)
		return StopNone, nil
	}
	if ip.irq.due(cycles) && !cpsr.I {
		d := ip.exec.EnterException(cpu.ModeIRQ, cpu.VectorIRQ, false)
		ip.jrnl.Push(d)
		return StopNone, nil
	}

	curAddr := ip.regs.Read(15)
	if curAddr%4 != 0 {
		return StopAlign, ErrUnaligned{Addr: curAddr}
	}

	if mode := ip.memBkpt[curAddr]; mode&BkptExecute != 0 {
		ip.signalBreakpoint(&BreakpointInfo{Source: SourceMemory, Mode: BkptExecute, Addr: curAddr})
		return StopBreakpoint, nil
	}
	if info, ok := ip.assertInfo[curAddr]; ok {
		ip.signalBreakpoint(&BreakpointInfo{Source: SourceAssert, Line: info.Line, Desc: info.Desc})
		return StopAssert, nil
	}

	word := ip.mem.ReadWord(curAddr)
	in, err := decoder.Decode(word)
	if err != nil {
		return StopDecode, err
	}

	if in.Cond.Eval(cpsr.N, cpsr.Z, cpsr.C, cpsr.V) && !in.Byte &&
		(in.Kind == decoder.KindMemory || in.Kind == decoder.KindSwap || in.Kind == decoder.KindBlockTransfer) {
		for _, a := range ip.memoryAccesses(in, curAddr) {
			if a.addr%4 != 0 {
				return StopAlign, ErrUnaligned{Addr: a.addr}
			}
		}
	}

	if stop, bkpt := ip.checkMemoryAccess(in, curAddr); stop {
		ip.signalBreakpoint(bkpt)
		return StopBreakpoint, nil
	}
	if reason, err := ip.checkUninitRead(in, curAddr); err != nil {
		return reason, err
	}

	d, err := ip.exec.Step(word, curAddr)
	if err != nil {
		return StopDecode, err
	}
	ip.jrnl.Push(d)
	if in.Kind == decoder.KindBranch && in.Link {
		ip.callDepth++
	} else if d.PCAfter != curAddr+4 && in.Kind != decoder.KindBranch {
		ip.callDepth--
	}
	ip.lastDisasm = ip.buildDisassembly(in, d)
	if reason := ip.checkPostBreakpoints(d); reason != StopNone {
		return reason, nil
	}
	return StopNone, nil
}

func (ip *Interpreter) signalBreakpoint(b *BreakpointInfo) {
	ip.breakpointTrigged = true
	ip.currentBkpt = b
}

// checkPostBreakpoints inspects the registers, CPSR and SPSR that the
// step just wrote against configured register/flag watches (spec §4.7
// "writes respect per-register breakpoint modes"). Unlike the memory and
// execute watches, these can only be known after the step runs, since
// they depend on what the executor actually touched.
func (ip *Interpreter) checkPostBreakpoints(d cpu.Delta) StopReason {
	for n := range d.RegsBefore {
		if ip.regBkpt[n]&BkptWrite != 0 {
			ip.signalBreakpoint(&BreakpointInfo{Source: SourceRegister, Mode: BkptWrite, Reg: n})
			return StopBreakpoint
		}
	}
	cur := ip.regs.CPSR()
	spsr, hasSPSR := ip.regs.SPSR()
	for name, mode := range ip.flagBkpt {
		if mode&BkptWrite == 0 {
			continue
		}
		before, after, flag := d.CPSRBefore, cur, name
		if len(name) == 2 && name[0] == 'S' {
			if !d.SPSRValid || !hasSPSR {
				continue
			}
			before, after, flag = d.SPSRBefore, spsr, name[1:]
		}
		if flagChanged(before, after, flag) {
			ip.signalBreakpoint(&BreakpointInfo{Source: SourceFlag, Mode: BkptWrite, Flag: name})
			return StopBreakpoint
		}
	}
	return StopNone
}

func flagChanged(before, after cpu.Flags, name string) bool {
	switch name {
	case "N":
		return before.N != after.N
	case "Z":
		return before.Z != after.Z
	case "C":
		return before.C != after.C
	case "V":
		return before.V != after.V
	case "I":
		return before.I != after.I
	case "F":
		return before.F != after.F
	default:
		return false
	}
}

// checkMemoryAccess pre-computes the address(es) a load/store/swap/block
// transfer instruction is about to touch and checks them against
// configured memory watches before the access happens (spec §4.6
// "breakpointTrigged ... so the simulator may gracefully pause").
func (ip *Interpreter) checkMemoryAccess(in decoder.Instruction, curAddr uint32) (bool, *BreakpointInfo) {
	for _, a := range ip.memoryAccesses(in, curAddr) {
		mode := ip.memBkpt[a.addr]
		if a.write && mode&BkptWrite != 0 {
			return true, &BreakpointInfo{Source: SourceMemory, Mode: BkptWrite, Addr: a.addr}
		}
		if !a.write && mode&BkptRead != 0 {
			return true, &BreakpointInfo{Source: SourceMemory, Mode: BkptRead, Addr: a.addr}
		}
	}
	return false, nil
}

// checkUninitRead halts the step (spec §7 UNINIT_MEM) when a load
// touches an address never written, unless that address is specifically
// tagged with the uninitialized-access breakpoint mode (spec §6 "mode 8
// for memory"), in which case it's reported as a breakpoint instead.
func (ip *Interpreter) checkUninitRead(in decoder.Instruction, curAddr uint32) (StopReason, error) {
	for _, a := range ip.memoryAccesses(in, curAddr) {
		if a.write || ip.mem.Initialized(a.addr) {
			continue
		}
		if ip.memBkpt[a.addr]&BkptUninit != 0 {
			ip.signalBreakpoint(&BreakpointInfo{Source: SourceMemory, Mode: BkptUninit, Addr: a.addr})
			return StopBreakpoint, nil
		}
		return StopUninitMem, ErrUninitializedRead{Addr: a.addr}
	}
	return StopNone, nil
}

type memAccess struct {
	addr  uint32
	write bool
}

// memoryAccesses enumerates the accesses in makes, one entry per load or
// store with its start address, reusing the
// same effective-address arithmetic as pkg/cpu's executor (spec §4.5)
// without mutating any state — a read-only preview so breakpoints can be
// evaluated before the instruction actually runs.
func (ip *Interpreter) memoryAccesses(in decoder.Instruction, curAddr uint32) []memAccess {
	switch in.Kind {
	case decoder.KindMemory:
		base := ip.regs.ReadOperand(in.MemRn, curAddr)
		offset := resolveOffset(ip.regs, in.Op2, curAddr)
		if in.Negative {
			offset = -offset
		}
		addr := base
		if in.PreIndexed {
			addr = uint32(int64(base) + int64(offset))
		}
		return []memAccess{{addr: addr, write: !in.Load}}
	case decoder.KindBlockTransfer:
		regs := in.RegList.Registers()
		base := ip.regs.ReadOperand(in.MemRn, curAddr)
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
		out := make([]memAccess, 0, len(regs))
		addr := start
		for range regs {
			out = append(out, memAccess{addr: addr, write: !in.Load})
			addr += 4
		}
		return out
	case decoder.KindSwap:
		addr := ip.regs.Read(in.SwapRn)
		return []memAccess{{addr: addr, write: false}, {addr: addr, write: true}}
	default:
		return nil
	}
}

// resolveOffset mirrors pkg/cpu's unexported resolveMemoryOffset (spec
// §4.5's shifter operand, reused for single-data-transfer register
// offsets).
func resolveOffset(regs *cpu.RegisterBank, op2 decoder.Operand2, curAddr uint32) int32 {
	if op2.IsImmediate {
		return int32(op2.ImmValue)
	}
	rm := regs.ReadOperand(op2.Rm, curAddr)
	shifted, _ := inst.Shift(op2.ShiftKind, rm, op2.ShiftAmt, false)
	return int32(shifted)
}

// buildDisassembly assembles DisassemblyInfo for the instruction just
// executed, translating the written PC back to a source line (spec §4.9
// getCurrentInfos' "nextline").
func (ip *Interpreter) buildDisassembly(in decoder.Instruction, d cpu.Delta) DisassemblyInfo {
	info := DisassemblyInfo{Text: disassemble(in)}
	for n := range d.RegsBefore {
		info.WriteRegs = append(info.WriteRegs, n)
	}
	if line, ok := ip.addr.CurrentLine(d.PCAfter); ok {
		info.NextLine, info.HasLine = line, true
	}
	return info
}
