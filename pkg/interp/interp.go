// Package interp implements the Interpreter façade (spec §4.9): the only
// surface a front-end touches. It wires together pkg/cpu's Memory,
// RegisterBank and Executor with pkg/history's Journal and an interrupt
// controller, and owns all breakpoint/assertion bookkeeping — grounded on
// original_source/bytecodeinterpreter.py's BCInterpreter, restructured
// into Go's explicit-state/explicit-error idiom instead of Python
// properties and exceptions.
package interp

import (
	"fmt"

	"armsim/pkg/asm"
	"armsim/pkg/cpu"
	"armsim/pkg/history"
)

// AssertInfo is user-supplied assertion metadata keyed by instruction
// address (spec §4.9 "assertInfo?", §7 ASSERT).
type AssertInfo struct {
	Line int
	Desc string
}

// StepMode selects step's stop predicate (spec §4.9).
type StepMode int

const (
	StepInto StepMode = iota
	StepOver
	StepOut
	StepRun
)

// StopReason reports why the most recent Step call returned control.
type StopReason int

const (
	StopNone StopReason = iota
	StopBreakpoint
	StopAssert
	StopUninitMem
	StopAlign
	StopDecode
	StopBudget
)

func (r StopReason) String() string {
	switch r {
	case StopBreakpoint:
		return "BKPT"
	case StopAssert:
		return "ASSERT"
	case StopUninitMem:
		return "UNINIT_MEM"
	case StopAlign:
		return "ALIGN"
	case StopDecode:
		return "DECODE"
	case StopBudget:
		return "BUDGET"
	default:
		return "NONE"
	}
}

// runBudget bounds a single StepRun/StepOver/StepOut call so the front
// end stays responsive (spec §5 "internal per-call instruction budget").
const runBudget = 1_000_000

// ErrHistoryUnderflow is HISTORY_UNDERFLOW (spec §7), re-exported from
// pkg/history so callers needn't import it directly.
var ErrHistoryUnderflow = history.ErrUnderflow

// ErrUninitializedRead is UNINIT_MEM (spec §7): a load touched an address
// never written and not tagged with the uninitialized-access breakpoint
// mode.
type ErrUninitializedRead struct{ Addr uint32 }

func (e ErrUninitializedRead) Error() string {
	return fmt.Sprintf("interp: uninitialized read at 0x%08X", e.Addr)
}

// ErrUnaligned is ALIGN (spec §7): a word-sized access at a non-4-aligned
// address.
type ErrUnaligned struct{ Addr uint32 }

func (e ErrUnaligned) Error() string {
	return fmt.Sprintf("interp: unaligned word access at 0x%08X", e.Addr)
}

// Interpreter is the public façade over one assembled program (spec
// §4.9). Breakpoints, cfg and assertInfo survive Reset; everything else
// (registers, memory, journal, cycle count) is reloaded from the
// original bytecode sections.
type Interpreter struct {
	cfg        Config
	sections   map[asm.SectionName][]byte
	addr       asm.AddressMap
	assertInfo map[uint32]AssertInfo

	mem  *cpu.Memory
	regs *cpu.RegisterBank
	exec *cpu.Executor
	jrnl *history.Journal

	lineBreakpoints []int
	memBkpt         map[uint32]int
	regBkpt         [16]int
	flagBkpt        map[string]int

	irq interruptController
	fiq interruptController

	stepMode  StepMode
	callDepth int

	breakpointTrigged bool
	currentBkpt       *BreakpointInfo
	stopped           bool
	lastDisasm        DisassemblyInfo
}

// New constructs an Interpreter over already-assembled bytecode sections
// and their address↔line map (spec §6 "constructor takes
// (bytecode_sections, addr2line_map, assertInfo?)"). assertInfo may be
// nil.
func New(sections map[asm.SectionName][]byte, addrMap asm.AddressMap, cfg Config, assertInfo map[uint32]AssertInfo) (*Interpreter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if assertInfo == nil {
		assertInfo = map[uint32]AssertInfo{}
	}
	ip := &Interpreter{
		cfg:        cfg,
		sections:   sections,
		addr:       addrMap,
		assertInfo: assertInfo,
		memBkpt:    map[uint32]int{},
		flagBkpt:   map[string]int{},
	}
	ip.Reset()
	return ip, nil
}

// Reset reloads the original bytecode into memory, zeroes registers and
// cycle count, and clears the step-back journal; configured breakpoints
// and interrupt settings are left untouched, matching a debugger session
// that re-runs the same program without losing its watches.
func (ip *Interpreter) Reset() {
	ip.mem = cpu.NewMemory()
	for name, data := range ip.sections {
		ip.mem.LoadSection(asm.SectionBase(name), data)
	}
	ip.regs = cpu.NewRegisterBank()
	ip.exec = cpu.NewExecutor(ip.regs, ip.mem)
	ip.jrnl = history.New(ip.cfg.MaxHistorySize)
	ip.callDepth = 0
	ip.breakpointTrigged = false
	ip.currentBkpt = nil
	ip.stopped = false

	entry := asm.SectionBase(asm.SectionCode)
	if data, ok := ip.sections[asm.SectionIntVec]; ok && len(data) > 0 {
		entry = asm.SectionBase(asm.SectionIntVec)
	}
	ip.regs.Write(15, entry)
}

// SetInterrupt configures kind's periodic request (spec §6 setInterrupt):
// clear disarms it; a negative epoch binds t=0 to the current cycle
// count.
func (ip *Interpreter) SetInterrupt(kind InterruptKind, clear bool, delay, period, epoch int64) {
	c := &ip.irq
	if kind == FIQ {
		c = &ip.fiq
	}
	c.set(kind, clear, delay, period, epoch, ip.exec.Cycles)
}

// CycleCount returns the monotone instruction/cycle counter (spec §4.9).
func (ip *Interpreter) CycleCount() uint64 { return ip.exec.Cycles }

// GetRegisters returns all 16 logical registers as the current mode sees
// them, R15 adjusted per Config.PCBehavior for display (spec §4.7
// getAllRegisters).
func (ip *Interpreter) GetRegisters() [16]uint32 {
	var out [16]uint32
	for i := 0; i < 16; i++ {
		out[i] = ip.regs.Read(i)
	}
	out[15] += ip.cfg.pcDisplayAdjust()
	return out
}

// SetRegisters writes regsDict into the bank without triggering register
// breakpoints (spec §4.9 setRegisters "mayTriggerBkpt=False").
func (ip *Interpreter) SetRegisters(regs map[int]uint32) {
	for n, v := range regs {
		ip.regs.Write(n, v)
	}
}

// GetFlags returns CPSR's flags, plus the current mode's SPSR flags
// prefixed "S" if one exists (spec §4.9 getFlags).
func (ip *Interpreter) GetFlags() map[string]bool {
	f := ip.regs.CPSR()
	out := map[string]bool{"N": f.N, "Z": f.Z, "C": f.C, "V": f.V, "I": f.I, "F": f.F}
	if spsr, ok := ip.regs.SPSR(); ok {
		out["SN"], out["SZ"], out["SC"], out["SV"] = spsr.N, spsr.Z, spsr.C, spsr.V
		out["SI"], out["SF"] = spsr.I, spsr.F
	}
	return out
}

// ProcessorMode returns the live CPSR mode field.
func (ip *Interpreter) ProcessorMode() cpu.Mode { return ip.regs.CPSR().Mode }

// GetMemory returns the sparse byte map exactly as pkg/cpu.Memory holds
// it (spec §4.6 serialize).
func (ip *Interpreter) GetMemory() map[uint32]uint8 { return ip.mem.Snapshot() }

// SetMemory writes val at addr if addr was previously initialized; a
// write to a never-touched address is silently ignored, matching the
// original setMemory's "if not initialized, do nothing" guard (a
// debugger shouldn't be able to conjure new memory out of thin air).
func (ip *Interpreter) SetMemory(addr uint32, val uint8) {
	if !ip.mem.Initialized(addr) {
		return
	}
	ip.mem.WriteByte(addr, val)
}

// CurrentInstructionAddress returns the address of the instruction about
// to execute (or that just executed), independent of Config.PCBehavior's
// display adjustment (spec §4.9 getCurrentInstructionAddress).
func (ip *Interpreter) CurrentInstructionAddress() uint32 { return ip.regs.Read(15) }

// CurrentLine returns the source line mapped to CurrentInstructionAddress,
// or false if the address has no mapping (spec §4.9 getCurrentLine).
func (ip *Interpreter) CurrentLine() (int, bool) {
	return ip.addr.CurrentLine(ip.CurrentInstructionAddress())
}

// LastDisassembly returns the DisassemblyInfo produced by the most recent
// Step call.
func (ip *Interpreter) LastDisassembly() DisassemblyInfo { return ip.lastDisasm }

// StepBack undoes the last n recorded instructions (spec §4.8, §7
// HISTORY_UNDERFLOW).
func (ip *Interpreter) StepBack(n int) error {
	return ip.jrnl.StepBack(n, ip.exec)
}
