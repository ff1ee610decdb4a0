package interp

import (
	"strings"
	"testing"

	"armsim/pkg/asm"
)

// assembleAndRun lexes src (one instruction per line, SECTION CODE
// implied), builds an Interpreter, and returns it ready to step — the
// harness shared by the spec §8 end-to-end scenarios below.
func assembleAndRun(t *testing.T, body string) *Interpreter {
	t.Helper()
	lines := append([]string{"SECTION CODE"}, strings.Split(strings.TrimSpace(body), "\n")...)
	prog, diags := asm.Assemble(lines, asm.Config{})
	for _, d := range diags {
		t.Fatalf("assemble: %v", d)
	}
	ip, err := New(prog.Sections, prog.Addr, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ip
}

func stepN(t *testing.T, ip *Interpreter, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		reason, err := ip.Step(StepInto)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if reason != StopNone {
			t.Fatalf("step %d: unexpected stop %s", i, reason)
		}
	}
}

func TestScenarioAddTwoRegisters(t *testing.T) {
	ip := assembleAndRun(t, `
MOV R0, #5
MOV R1, #3
ADD R2, R0, R1
`)
	stepN(t, ip, 3)
	regs := ip.GetRegisters()
	if regs[2] != 8 {
		t.Errorf("R2 = %d, want 8", regs[2])
	}
	flags := ip.GetFlags()
	if flags["Z"] || flags["N"] {
		t.Errorf("flags = %+v, want Z=0 N=0", flags)
	}
}

func TestScenarioOverflowCarry(t *testing.T) {
	ip := assembleAndRun(t, `
MOVS R0, #0x80000000
ADDS R1, R0, R0
`)
	stepN(t, ip, 2)
	regs := ip.GetRegisters()
	if regs[1] != 0 {
		t.Errorf("R1 = %#x, want 0", regs[1])
	}
	flags := ip.GetFlags()
	if !flags["Z"] || !flags["C"] || !flags["V"] || flags["N"] {
		t.Errorf("flags = %+v, want Z=1 C=1 V=1 N=0", flags)
	}
}

func TestScenarioLoopCountdown(t *testing.T) {
	ip := assembleAndRun(t, `
MOV R0, #3
loop:
SUBS R0, R0, #1
BNE loop
`)
	// 1 (MOV) + 3 * (SUBS + BNE) = 7 instructions before BNE falls through.
	stepN(t, ip, 7)
	regs := ip.GetRegisters()
	if regs[0] != 0 {
		t.Errorf("R0 = %d, want 0", regs[0])
	}
}

func TestScenarioLiteralPoolLoad(t *testing.T) {
	ip := assembleAndRun(t, `
LDR R0, =0xDEADBEEF
`)
	stepN(t, ip, 1)
	regs := ip.GetRegisters()
	if regs[0] != 0xDEADBEEF {
		t.Errorf("R0 = %#x, want 0xDEADBEEF", regs[0])
	}
}

func TestScenarioStoreLoadAndStepBack(t *testing.T) {
	ip := assembleAndRun(t, `
MOV R0, #42
MOV R1, #0x1000
STR R0, [R1]
LDR R2, [R1]
`)
	stepN(t, ip, 4)
	regs := ip.GetRegisters()
	if regs[2] != 42 {
		t.Fatalf("R2 = %d, want 42", regs[2])
	}
	if err := ip.StepBack(3); err != nil {
		t.Fatalf("StepBack: %v", err)
	}
	if ip.mem.Initialized(0x1000) {
		t.Errorf("addr 0x1000 still initialized after stepping back past the STR")
	}
}

func TestScenarioSwapByte(t *testing.T) {
	ip := assembleAndRun(t, `
MOV R1, #0x2000
MOV R2, #0xAA
SWPB R3, R2, [R1]
`)
	stepN(t, ip, 2)
	ip.mem.WriteByte(0x2000, 0x11)
	stepN(t, ip, 1)
	regs := ip.GetRegisters()
	if regs[3] != 0x11 {
		t.Errorf("R3 = %#x, want 0x11", regs[3])
	}
	if got := ip.mem.ReadByte(0x2000); got != 0xAA {
		t.Errorf("mem[0x2000] = %#x, want 0xAA", got)
	}
}

func TestHistoryUnderflow(t *testing.T) {
	ip := assembleAndRun(t, `MOV R0, #1`)
	stepN(t, ip, 1)
	if err := ip.StepBack(5); err != ErrHistoryUnderflow {
		t.Errorf("StepBack(5) = %v, want ErrHistoryUnderflow", err)
	}
}

func TestReversibilityFullRun(t *testing.T) {
	ip := assembleAndRun(t, `
MOV R0, #3
loop:
SUBS R0, R0, #1
BNE loop
`)
	stepN(t, ip, 7)
	if err := ip.StepBack(7); err != nil {
		t.Fatalf("StepBack: %v", err)
	}
	regs := ip.GetRegisters()
	for i := 0; i < 15; i++ {
		if regs[i] != 0 {
			t.Errorf("R%d = %d after full stepBack, want 0", i, regs[i])
		}
	}
	if ip.CycleCount() != 0 {
		t.Errorf("cycles = %d after full stepBack, want 0", ip.CycleCount())
	}
}

func TestExecuteBreakpointStopsBeforeInstruction(t *testing.T) {
	ip := assembleAndRun(t, `
MOV R0, #1
MOV R1, #2
`)
	addr := asm.SectionBase(asm.SectionCode) + 4
	ip.SetBreakpointMem(addr, BkptExecute)

	reason, err := ip.Step(StepInto)
	if err != nil || reason != StopNone {
		t.Fatalf("first step: reason=%v err=%v", reason, err)
	}
	reason, err = ip.Step(StepInto)
	if err != nil {
		t.Fatalf("second step: %v", err)
	}
	if reason != StopBreakpoint {
		t.Fatalf("reason = %s, want StopBreakpoint", reason)
	}
	regs := ip.GetRegisters()
	if regs[1] != 0 {
		t.Errorf("R1 = %d, want 0 (instruction at breakpoint must not execute)", regs[1])
	}
}

func TestUninitializedReadHalts(t *testing.T) {
	ip := assembleAndRun(t, `
MOV R1, #0x3000
LDR R2, [R1]
`)
	stepN(t, ip, 1)
	_, err := ip.Step(StepInto)
	if err == nil {
		t.Fatal("expected ErrUninitializedRead, got nil")
	}
	if _, ok := err.(ErrUninitializedRead); !ok {
		t.Fatalf("err = %v (%T), want ErrUninitializedRead", err, err)
	}
}

func TestRunStepModeStopsAtBreakpoint(t *testing.T) {
	ip := assembleAndRun(t, `
MOV R0, #1
MOV R1, #2
MOV R2, #3
`)
	// A breakpoint three instructions in bounds the run so it completes
	// in one Step("run") call instead of running to the instruction
	// budget cap.
	addr := asm.SectionBase(asm.SectionCode) + 8
	ip.SetBreakpointMem(addr, BkptExecute)

	reason, err := ip.Step(StepRun)
	if err != nil {
		t.Fatalf("Step(run): %v", err)
	}
	if reason != StopBreakpoint {
		t.Fatalf("reason = %s, want StopBreakpoint", reason)
	}
	regs := ip.GetRegisters()
	if regs[0] != 1 || regs[1] != 2 {
		t.Errorf("R0=%d R1=%d, want 1 and 2 (both MOVs before the breakpoint should have run)", regs[0], regs[1])
	}
	if regs[2] != 0 {
		t.Errorf("R2 = %d, want 0 (instruction at breakpoint must not execute)", regs[2])
	}
}
