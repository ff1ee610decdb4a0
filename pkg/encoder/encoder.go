// Package encoder turns a resolved instruction's token sequence into its
// 32-bit ARMv4 encoding (spec §4.3), and a DECLARATION token into the raw
// bytes it reserves or initializes.
package encoder

import (
	"encoding/binary"

	"armsim/pkg/inst"
	"armsim/pkg/token"
)

// Encode consumes toks[0] (an INSTR token) and its operand tokens and
// returns the instruction's four-byte little-endian encoding.
func Encode(toks []token.Token) ([]byte, error) {
	if len(toks) == 0 || toks[0].Kind != token.Instr {
		return nil, EncodeError{"expected an instruction token"}
	}
	head := toks[0]
	ops := toks[1:]

	var word uint32
	var err error
	switch head.Mnemonic {
	case "LDR", "STR":
		word, err = encodeMemory(head, ops)
	case "LDM", "STM":
		word, err = encodeBlockTransfer(head, ops)
	case "B", "BL":
		word, err = encodeBranch(head, ops)
	case "MUL", "MLA":
		word, err = encodeMultiply(head, ops)
	case "UMULL", "SMULL", "UMLAL", "SMLAL":
		word, err = encodeMultiplyLong(head, ops)
	case "SWP":
		word, err = encodeSwap(head, ops)
	case "MRS", "MSR":
		word, err = encodePSR(head, ops)
	case "SVC", "SWI":
		word, err = encodeSWI(head, ops)
	default:
		if _, ok := inst.DPOpcodeByName(head.Mnemonic); ok {
			word, err = encodeDataProcessing(head, ops)
		} else {
			err = EncodeError{"unknown mnemonic " + head.Mnemonic}
		}
	}
	if err != nil {
		return nil, err
	}
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], word)
	return b[:], nil
}

// EncodeDeclaration packs a DC8/16/32 (Init populated) or DS8/16/32
// (reservation, filled with fillValue) token into bytes.
func EncodeDeclaration(tok token.Token, fillValue uint8) ([]byte, error) {
	unit := tok.NBits / 8
	if unit != 1 && unit != 2 && unit != 4 {
		return nil, EncodeError{"bad declaration width"}
	}
	if tok.Init != nil {
		out := make([]byte, 0, unit*len(tok.Init))
		for _, v := range tok.Init {
			out = append(out, packLE(uint32(v), unit)...)
		}
		return out, nil
	}
	out := make([]byte, unit*tok.Dim)
	for i := range out {
		out[i] = fillValue
	}
	return out, nil
}

func packLE(v uint32, unit int) []byte {
	b := make([]byte, unit)
	for i := 0; i < unit; i++ {
		b[i] = byte(v >> (8 * uint(i)))
	}
	return b
}

func baseWord(cond inst.Condition) uint32 {
	return uint32(cond) << 28
}
