package encoder

import "armsim/pkg/token"

// encodeMultiply builds MUL/MLA: "MUL Rd, Rm, Rs" or "MLA Rd, Rm, Rs, Rn",
// note the Rm/Rs operand order swap relative to data processing.
func encodeMultiply(head token.Token, ops []token.Token) (uint32, error) {
	accumulate := head.Mnemonic == "MLA"
	want := 3
	if accumulate {
		want = 4
	}
	if len(ops) != want {
		return 0, EncodeError{"bad operand count for " + head.Mnemonic}
	}
	for _, o := range ops {
		if o.Kind != token.Reg {
			return 0, EncodeError{"expected register operand"}
		}
	}
	word := baseWord(head.Cond)
	if accumulate {
		word |= 1 << 21
	}
	if head.SetFlags {
		word |= 1 << 20
	}
	word |= uint32(ops[0].RegIndex) << 16
	if accumulate {
		word |= uint32(ops[3].RegIndex) << 12
	}
	word |= uint32(ops[2].RegIndex) << 8
	word |= 0b1001 << 4
	word |= uint32(ops[1].RegIndex)
	return word, nil
}

// encodeMultiplyLong builds UMULL/SMULL/UMLAL/SMLAL: "<op> RdLo, RdHi, Rm, Rs".
func encodeMultiplyLong(head token.Token, ops []token.Token) (uint32, error) {
	if len(ops) != 4 {
		return 0, EncodeError{"bad operand count for " + head.Mnemonic}
	}
	for _, o := range ops {
		if o.Kind != token.Reg {
			return 0, EncodeError{"expected register operand"}
		}
	}
	word := baseWord(head.Cond)
	word |= 1 << 23
	signed := head.Mnemonic == "SMULL" || head.Mnemonic == "SMLAL"
	if signed {
		word |= 1 << 22
	}
	accumulate := head.Mnemonic == "UMLAL" || head.Mnemonic == "SMLAL"
	if accumulate {
		word |= 1 << 21
	}
	if head.SetFlags {
		word |= 1 << 20
	}
	word |= uint32(ops[1].RegIndex) << 16 // RdHi
	word |= uint32(ops[0].RegIndex) << 12 // RdLo
	word |= uint32(ops[3].RegIndex) << 8  // Rs
	word |= 0b1001 << 4
	word |= uint32(ops[2].RegIndex) // Rm
	return word, nil
}
