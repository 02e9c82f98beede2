package asm

import (
	"sort"
	"strings"
)

// GenerateListing renders the three-section human-readable trace of
// an assembly described in spec §6.3: a sorted label table, the code
// stream with addresses/bytes/source/labels, and a line map from
// source line number to the address and words it produced. lines is
// the preprocessed source (after defines and macro expansion) used
// only to recover each instruction's original text for display.
func GenerateListing(lines []Line, instrs []Instruction, img *Image) string {
	lineText := map[Origin]string{}
	for _, l := range lines {
		lineText[l.Origin] = l.Text
	}

	_, addrs := resolveLabels(instrs, img.PCStart)

	var b strings.Builder
	writeLabels(&b, img.Labels)
	b.WriteString("|Code|\n")
	writeCode(&b, instrs, addrs, lineText, img.Labels)
	b.WriteString("|Line Map|\n")
	writeLineMap(&b, instrs, addrs, img.Labels)
	return b.String()
}

func writeLabels(b *strings.Builder, labels map[string]uint16) {
	names := make([]string, 0, len(labels))
	for n := range labels {
		names = append(names, n)
	}
	sort.Strings(names)
	b.WriteString("|Labels|\n")
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte('\t')
		b.WriteString(HexWord(labels[n]))
		b.WriteByte('\n')
	}
}

func writeCode(b *strings.Builder, instrs []Instruction, addrs []uint16, lineText map[Origin]string, labels map[string]uint16) {
	for i, instr := range instrs {
		if _, isPadding := instr.(PaddingInstruction); isPadding {
			b.WriteByte('\n')
			continue
		}
		words, err := instr.Compile(addrs[i], labels)
		if err != nil {
			words = nil
		}
		b.WriteString(HexWord(addrs[i]))
		b.WriteByte('\t')
		wordStrs := make([]string, len(words))
		for j, w := range words {
			wordStrs[j] = HexWord(w)
		}
		b.WriteString(strings.Join(wordStrs, " "))
		b.WriteByte('\t')
		b.WriteString(lineText[instr.Origin()])
		b.WriteByte('\t')
		b.WriteString(strings.Join(instr.Labels(), ","))
		b.WriteByte('\n')
	}
}

func writeLineMap(b *strings.Builder, instrs []Instruction, addrs []uint16, labels map[string]uint16) {
	type entry struct {
		lineNo int
		addr   uint16
		words  []uint16
	}
	byOrigin := map[Origin]*entry{}
	var order []Origin
	for i, instr := range instrs {
		o := instr.Origin()
		if o.File == "" && o.LineNo == 0 {
			continue
		}
		e, ok := byOrigin[o]
		if !ok {
			e = &entry{lineNo: o.LineNo, addr: addrs[i]}
			byOrigin[o] = e
			order = append(order, o)
		}
		words, err := instr.Compile(addrs[i], labels)
		if err == nil {
			e.words = append(e.words, words...)
		}
	}
	for _, o := range order {
		e := byOrigin[o]
		wordStrs := make([]string, len(e.words))
		for j, w := range e.words {
			wordStrs[j] = HexWord(w)
		}
		b.WriteString(itoaFast(e.lineNo))
		b.WriteByte('\t')
		b.WriteString(HexWord(e.addr))
		b.WriteByte('\t')
		b.WriteString(strings.Join(wordStrs, " "))
		b.WriteByte('\n')
	}
}
