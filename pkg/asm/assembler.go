package asm

import (
	"encoding/binary"

	"armsim/pkg/encoder"
	"armsim/pkg/inst"
	"armsim/pkg/token"
)

// Config holds the assembler's recognized options (spec §6). Unknown keys
// are rejected by the caller that builds a Config (typically cmd/armsim's
// flag parsing); Config itself has no "extra fields" escape hatch.
type Config struct {
	FillValue uint8 // byte used to fill DSn reservations
}

// Program is the assembler's output: one byte sequence per section plus
// the address↔line mapping (spec §4.2 pass 4, §6 "Bytecode output").
type Program struct {
	Sections map[SectionName][]byte
	Addr     AddressMap
}

// line is the per-source-line working state threaded through all four
// passes.
type line struct {
	tokens      []token.Token
	assignedAddr uint32
	hasAddr     bool
	section     SectionName
}

// Assemble runs the four-pass pipeline described in spec §4.2 over src
// (one string per source line, 1-indexed line numbers in diagnostics).
// It never aborts early: every line is lexed, every resolvable reference
// is resolved, and Program is still returned (possibly incomplete)
// alongside any diagnostics, so a caller can report every error from one
// pass (spec §7 "non-fatal; continue collecting").
func Assemble(src []string, cfg Config) (*Program, []Diagnostic) {
	diags := &diagnosticSink{}

	// Pass 1: lex.
	tokenLines := lexAll(src, diags)
	lines := make([]line, len(src))
	for i, toks := range tokenLines {
		lines[i].tokens = toks
	}

	// Pass 2: layout.
	addrMap := newAddressMap()
	labelsAddr := make(map[string]uint32)
	maxAddrBySection := map[SectionName]uint32{
		SectionIntVec: sectionBase[SectionIntVec],
		SectionCode:   sectionBase[SectionCode],
		SectionData:   sectionBase[SectionData],
	}
	var currentSection SectionName
	var currentAddr uint32
	haveSection := false

	for i := range lines {
		toks := lines[i].tokens
		if len(toks) == 0 {
			continue
		}
		idx := 0
		if toks[idx].Kind == token.Section {
			if haveSection {
				maxAddrBySection[currentSection] = currentAddr
			}
			name, ok := parseSectionName(toks[idx].Text)
			if !ok {
				diags.add(Diagnostic{Kind: KindSyntax, Line: i + 1, Msg: "unknown section " + toks[idx].Text})
				continue
			}
			currentSection = name
			currentAddr = sectionBase[name]
			haveSection = true
			idx++
		}
		if idx >= len(toks) {
			continue
		}
		if toks[idx].Kind == token.Label {
			if !haveSection {
				diags.add(Diagnostic{Kind: KindLink, Line: i + 1, Msg: "label outside any section"})
			} else {
				labelsAddr[toks[idx].Text] = currentAddr
			}
			idx++
		}
		if idx >= len(toks) {
			continue
		}
		if !haveSection {
			diags.add(Diagnostic{Kind: KindLink, Line: i + 1, Msg: "code/data outside any section"})
			continue
		}

		switch toks[idx].Kind {
		case token.Declaration:
			lines[i].assignedAddr = currentAddr
			lines[i].hasAddr = true
			lines[i].section = currentSection
			size := uint32(toks[idx].NBits/8) * uint32(toks[idx].Dim)
			if currentAddr+size > sectionEnd(currentSection) {
				diags.add(Diagnostic{Kind: KindLink, Line: i + 1, Msg: "declaration overflows section bounds"})
			}
			currentAddr += size
		case token.Instr:
			lines[i].assignedAddr = currentAddr
			lines[i].hasAddr = true
			lines[i].section = currentSection
			if currentAddr+4 > sectionEnd(currentSection) {
				diags.add(Diagnostic{Kind: KindLink, Line: i + 1, Msg: "instruction overflows section bounds"})
			}
			currentAddr += 4
		}
		if lines[i].hasAddr {
			addrMap.assign(i+1, lines[i].assignedAddr)
		}
	}
	if haveSection {
		maxAddrBySection[currentSection] = currentAddr
	}

	// Pass 3: resolve label references, synthesizing literal-pool slots
	// for REFLABELADDR as described in spec §4.2 pass 3.
	pool := newLiteralPool()
	currentSection = ""
	for i := range lines {
		toks := lines[i].tokens
		if len(toks) == 0 {
			continue
		}
		if toks[0].Kind == token.Section {
			name, ok := parseSectionName(toks[0].Text)
			if ok {
				currentSection = name
			}
		}
		if !lines[i].hasAddr {
			continue
		}
		for j := range toks {
			switch toks[j].Kind {
			case token.RefLabel:
				addrToReach, ok := labelsAddr[toks[j].Text]
				if !ok {
					diags.add(Diagnostic{Kind: KindLink, Line: i + 1, Msg: "unresolved label " + toks[j].Text})
					continue
				}
				diff := int64(lines[i].assignedAddr) - int64(addrToReach)
				toks[j] = pcRelativeToken(diff, toks[j].Line)
			case token.RefLabelAddr:
				var addrToReach uint32
				if toks[j].RefIsImmediate {
					addrToReach = pool.slotForImmediate(currentSection, uint32(toks[j].RefImmValue), maxAddrBySection)
				} else {
					var ok bool
					addrToReach, ok = pool.slotFor(currentSection, toks[j].Text, labelsAddr, maxAddrBySection)
					if !ok {
						diags.add(Diagnostic{Kind: KindLink, Line: i + 1, Msg: "unresolved label " + toks[j].Text})
						continue
					}
				}
				diff := int64(lines[i].assignedAddr) - int64(addrToReach)
				toks[j] = pcRelativeToken(diff, toks[j].Line)
			}
		}
	}

	// Pass 4: encode.
	sections := make(map[SectionName][]byte)
	currentSection = ""
	haveSection = false
	flush := func(sec SectionName) {
		if sec == "" {
			return
		}
		buf := sections[sec]
		for _, addr := range pool.valuesFor(sec) {
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], addr)
			buf = append(buf, b[:]...)
		}
		sections[sec] = buf
	}
	for i := range lines {
		toks := lines[i].tokens
		if len(toks) == 0 {
			continue
		}
		idx := 0
		if toks[idx].Kind == token.Section {
			if haveSection {
				flush(currentSection)
			}
			name, ok := parseSectionName(toks[idx].Text)
			if ok {
				currentSection = name
				haveSection = true
				if _, exists := sections[name]; !exists {
					sections[name] = nil
				}
			}
			idx++
		}
		if idx >= len(toks) || !haveSection {
			continue
		}
		if toks[idx].Kind == token.Label {
			idx++
		}
		if idx >= len(toks) {
			continue
		}
		switch toks[idx].Kind {
		case token.Declaration:
			b, err := encoder.EncodeDeclaration(toks[idx], cfg.FillValue)
			if err != nil {
				diags.add(Diagnostic{Kind: KindRange, Line: i + 1, Msg: err.Error()})
				continue
			}
			sections[currentSection] = append(sections[currentSection], b...)
		case token.Instr:
			unresolved := false
			for _, t := range toks[idx:] {
				// still a label reference: already reported as LINK in pass 3
				if t.Kind == token.RefLabel || t.Kind == token.RefLabelAddr {
					unresolved = true
				}
			}
			if unresolved {
				continue
			}
			b, err := encoder.Encode(toks[idx:])
			if err != nil {
				diags.add(Diagnostic{Kind: classifyEncodeError(err), Line: i + 1, Msg: err.Error()})
				continue
			}
			sections[currentSection] = append(sections[currentSection], b...)
		}
	}
	if haveSection {
		flush(currentSection)
	}

	prog := &Program{Sections: sections, Addr: *addrMap}
	return prog, diags.all()
}

// pcRelativeToken synthesizes the MEMACCESS descriptor a label reference
// resolves to (spec §4.2 pass 3). diff is assignedAddr(line) - targetAddr;
// the stored offset additionally folds in the +8 pipeline adjustment the
// executor applies whenever an instruction reads R15 as an operand (spec
// §4.5), so both the branch encoder (offset/4) and the literal-load encoder
// (offset directly) can use R15's value exactly as the executor exposes it.
func pcRelativeToken(diff int64, lineNo int) token.Token {
	offset := -diff - 8
	neg := offset < 0
	if neg {
		offset = -offset
	}
	return token.Token{
		Kind: token.MemAccess,
		Line: lineNo,
		Mem: token.MemOperand{
			Base: 15, OffsetImm: int32(offset), Negative: neg,
			PreIndexed: true, ShiftKind: inst.LSL,
		},
	}
}

func classifyEncodeError(err error) ErrorKind {
	if _, ok := err.(encoder.RangeError); ok {
		return KindRange
	}
	return KindInvInstr
}
