package encoder

import (
	"armsim/pkg/inst"
	"armsim/pkg/token"
)

// encodeBlockTransfer builds an LDM/STM word. The register list is always
// stored as a plain 16-bit bitmap (spec §4.5: ascending order is an
// execution-time property of RegList.Registers, not an encoding concern).
func encodeBlockTransfer(head token.Token, ops []token.Token) (uint32, error) {
	if len(ops) != 2 || ops[0].Kind != token.Reg {
		return 0, EncodeError{"LDM/STM requires a base register"}
	}
	if ops[1].Kind != token.Shift || ops[1].Mnemonic != "REGLIST" {
		return 0, EncodeError{"LDM/STM requires a register list"}
	}

	am := inst.IA
	if head.HasAddrMode {
		am = head.AddrMode
	}
	word := baseWord(head.Cond)
	word |= 1 << 27
	switch am {
	case inst.IA:
		word |= 1 << 23
	case inst.IB:
		word |= 1<<24 | 1<<23
	case inst.DB:
		word |= 1 << 24
	case inst.DA:
	}
	if ops[0].RegWriteback {
		word |= 1 << 21
	}
	if head.Mnemonic == "LDM" {
		word |= 1 << 20
	}
	word |= uint32(ops[0].RegIndex) << 16
	word |= uint32(ops[1].ImmValue) & 0xFFFF
	return word, nil
}
