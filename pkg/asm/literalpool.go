package asm

// literalPool builds each section's LiteralPool lazily as REFLABELADDR
// tokens are resolved (spec §3 LiteralPool, §4.2 pass 3). slotFor* returns
// the absolute address a load-literal instruction must reach, allocating a
// new pool slot at the section's current high-water mark the first time a
// given label or immediate is requested within that section.
type literalPool struct {
	// values[section] holds the resolved 32-bit words in pool order, ready
	// to be packed as little-endian bytes at encode time.
	values map[SectionName][]uint32
	// labelSlot[section][label] caches the absolute address of an
	// already-allocated label slot so repeated references reuse it.
	labelSlot map[SectionName]map[string]uint32
	// immSlot[section][value] does the same for "=imm" literals, matching
	// how a real assembler folds repeated literal-pool constants.
	immSlot map[SectionName]map[uint32]uint32
}

func newLiteralPool() *literalPool {
	return &literalPool{
		values:    make(map[SectionName][]uint32),
		labelSlot: make(map[SectionName]map[string]uint32),
		immSlot:   make(map[SectionName]map[uint32]uint32),
	}
}

func (p *literalPool) slotFor(section SectionName, label string, labelsAddr map[string]uint32, maxAddr map[SectionName]uint32) (uint32, bool) {
	target, ok := labelsAddr[label]
	if !ok {
		return 0, false
	}
	if p.labelSlot[section] == nil {
		p.labelSlot[section] = make(map[string]uint32)
	}
	if addr, ok := p.labelSlot[section][label]; ok {
		return addr, true
	}
	addr := maxAddr[section]
	p.labelSlot[section][label] = addr
	p.values[section] = append(p.values[section], target)
	maxAddr[section] = addr + 4
	return addr, true
}

// slotForImmediate allocates (or reuses) a pool slot holding value itself,
// for "LDR Rd, =0xDEADBEEF"-style literals that name no label.
func (p *literalPool) slotForImmediate(section SectionName, value uint32, maxAddr map[SectionName]uint32) uint32 {
	if p.immSlot[section] == nil {
		p.immSlot[section] = make(map[uint32]uint32)
	}
	if addr, ok := p.immSlot[section][value]; ok {
		return addr
	}
	addr := maxAddr[section]
	p.immSlot[section][value] = addr
	p.values[section] = append(p.values[section], value)
	maxAddr[section] = addr + 4
	return addr
}

// valuesFor returns the ordered literal values appended to section's
// bytecode at encode time.
func (p *literalPool) valuesFor(section SectionName) []uint32 {
	return p.values[section]
}
