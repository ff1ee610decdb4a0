package inst

import "testing"

// TestConditionTruthTable verifies every condition code against all 16
// N,Z,C,V flag combinations, per spec §8 "Condition correctness".
func TestConditionTruthTable(t *testing.T) {
	want := map[Condition]func(n, z, c, v bool) bool{
		EQ: func(n, z, c, v bool) bool { return z },
		NE: func(n, z, c, v bool) bool { return !z },
		CS: func(n, z, c, v bool) bool { return c },
		CC: func(n, z, c, v bool) bool { return !c },
		MI: func(n, z, c, v bool) bool { return n },
		PL: func(n, z, c, v bool) bool { return !n },
		VS: func(n, z, c, v bool) bool { return v },
		VC: func(n, z, c, v bool) bool { return !v },
		HI: func(n, z, c, v bool) bool { return c && !z },
		LS: func(n, z, c, v bool) bool { return !c || z },
		GE: func(n, z, c, v bool) bool { return n == v },
		LT: func(n, z, c, v bool) bool { return n != v },
		GT: func(n, z, c, v bool) bool { return !z && n == v },
		LE: func(n, z, c, v bool) bool { return z || n != v },
		AL: func(n, z, c, v bool) bool { return true },
		NV: func(n, z, c, v bool) bool { return false },
	}

	for cond, fn := range want {
		for mask := 0; mask < 16; mask++ {
			n := mask&8 != 0
			z := mask&4 != 0
			c := mask&2 != 0
			v := mask&1 != 0
			got := cond.Eval(n, z, c, v)
			if got != fn(n, z, c, v) {
				t.Errorf("%s.Eval(n=%v,z=%v,c=%v,v=%v) = %v, want %v", cond.Mnemonic(), n, z, c, v, got, fn(n, z, c, v))
			}
		}
	}
}

// TestShiftSpecialCases verifies the ARMv4 shifter special-case table.
func TestShiftSpecialCases(t *testing.T) {
	tests := []struct {
		name        string
		kind        ShiftKind
		value       uint32
		amount      uint32
		carryIn     bool
		wantResult  uint32
		wantCarry   bool
	}{
		{"LSL#0 passthrough", LSL, 0xABCD1234, 0, true, 0xABCD1234, true},
		{"LSL#1", LSL, 0x80000000, 1, false, 0, true},
		{"LSL#32 via shift-by-0-register path", LSL, 0x1, 32, false, 0, true},
		{"LSR#0 means shift by 32", LSR, 0x80000000, 0, false, 0, true},
		{"LSR#1", LSR, 0x1, 1, false, 0, true},
		{"ASR#0 means shift by 32, negative", ASR, 0x80000000, 0, false, 0xFFFFFFFF, true},
		{"ASR#0 means shift by 32, positive", ASR, 0x7FFFFFFF, 0, false, 0, false},
		{"ROR#1", ROR, 0x1, 1, false, 0x80000000, true},
		{"RRX", RRX, 0x2, 0, true, 0x80000001, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gotResult, gotCarry := Shift(tc.kind, tc.value, tc.amount, tc.carryIn)
			if gotResult != tc.wantResult || gotCarry != tc.wantCarry {
				t.Errorf("Shift(%v,%#x,%d,%v) = (%#x,%v), want (%#x,%v)",
					tc.kind, tc.value, tc.amount, tc.carryIn, gotResult, gotCarry, tc.wantResult, tc.wantCarry)
			}
		})
	}
}

func TestRotatedImmediateRoundTrip(t *testing.T) {
	values := []uint32{0, 0xFF, 0xFF00, 0xFF000000, 0x000000FF, 0xF000000F, 5}
	for _, v := range values {
		imm8, rot, ok := EncodeRotatedImmediate(v)
		if !ok {
			t.Errorf("EncodeRotatedImmediate(%#x) not encodable", v)
			continue
		}
		got, _ := RotateImmediate(imm8, rot)
		if got != v {
			t.Errorf("RotateImmediate(EncodeRotatedImmediate(%#x)) = %#x, want %#x", v, got, v)
		}
	}
}

func TestRegListAscendingOrder(t *testing.T) {
	l := RegList(0b1000_0000_0000_0101) // R0, R2, R15
	got := l.Registers()
	want := []int{0, 2, 15}
	if len(got) != len(want) {
		t.Fatalf("Registers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Registers()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
