package asm

// AddressMap is the two total maps from spec §3: every assigned address
// maps back to the source lines that produced it, and (partially) every
// line that produced code or data maps forward to its address.
type AddressMap struct {
	AddrToLines map[uint32][]int
	LineToAddr  map[int]uint32
}

func newAddressMap() *AddressMap {
	return &AddressMap{
		AddrToLines: make(map[uint32][]int),
		LineToAddr:  make(map[int]uint32),
	}
}

func (m *AddressMap) assign(line int, addr uint32) {
	m.AddrToLines[addr] = append(m.AddrToLines[addr], line)
	m.LineToAddr[line] = addr
}

// CurrentLine returns the most recently assigned source line for addr, or
// false if addr was never assigned (mirrors bytecodeinterpreter.py's
// addr2line[pc][-1] lookup).
func (m *AddressMap) CurrentLine(addr uint32) (int, bool) {
	lines, ok := m.AddrToLines[addr]
	if !ok || len(lines) == 0 {
		return 0, false
	}
	return lines[len(lines)-1], true
}
