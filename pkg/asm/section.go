// Package asm implements the multi-pass ARM assembler: lexing, section
// layout, label/literal-pool resolution, and bytecode emission (spec §4.2).
package asm

// SectionName identifies one of the three fixed memory regions.
type SectionName string

const (
	SectionIntVec SectionName = "INTVEC"
	SectionCode   SectionName = "CODE"
	SectionData   SectionName = "DATA"
)

// sectionBase gives each section's fixed starting address (spec §3).
var sectionBase = map[SectionName]uint32{
	SectionIntVec: 0x00,
	SectionCode:   0x80,
	SectionData:   0x1000,
}

// sectionOrder lists sections in ascending base-address order, used to
// enforce the "cursor never crosses the next section's base" invariant.
var sectionOrder = []SectionName{SectionIntVec, SectionCode, SectionData}

// SectionBase returns name's fixed starting address (spec §3), for
// callers outside this package that need to load assembled bytes into a
// real address space (pkg/interp's Memory loader).
func SectionBase(name SectionName) uint32 { return sectionBase[name] }

func sectionEnd(name SectionName) uint32 {
	for i, s := range sectionOrder {
		if s == name {
			if i+1 < len(sectionOrder) {
				return sectionBase[sectionOrder[i+1]]
			}
			return 0xFFFFFFFF
		}
	}
	return 0xFFFFFFFF
}

func parseSectionName(s string) (SectionName, bool) {
	switch s {
	case string(SectionIntVec):
		return SectionIntVec, true
	case string(SectionCode):
		return SectionCode, true
	case string(SectionData):
		return SectionData, true
	}
	return "", false
}
