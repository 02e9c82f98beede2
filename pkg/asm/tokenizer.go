package asm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/master-g/msp430/pkg/isa"
)

var (
	dataDirectiveRe  = regexp.MustCompile(`^\.(data|text)$`)
	interruptRe      = regexp.MustCompile(`^\.interrupt\s+(\S+)\s+(\S+)$`)
	cstr8Re          = regexp.MustCompile(`^\.cstr8\s+(.*)$`)
	labelNameRe      = regexp.MustCompile(`^[A-Za-z$_][A-Za-z0-9$_]*$`)
	mnemonicSuffixRe = regexp.MustCompile(`^([A-Za-z]+)(?:\.([bBwW]))?$`)
)

type tokenizerState struct {
	dataMode    bool
	prefixStack []int
	nextPrefix  int
	textBuf     []Token
	dataBuf     []Token
}

func newTokenizerState() *tokenizerState {
	t := &tokenizerState{}
	t.prefixStack = []int{t.allocPrefix()}
	return t
}

func (t *tokenizerState) allocPrefix() int {
	p := t.nextPrefix
	t.nextPrefix++
	return p
}

func (t *tokenizerState) curPrefix() int {
	return t.prefixStack[len(t.prefixStack)-1]
}

func (t *tokenizerState) pushLocBlk() {
	t.prefixStack = append(t.prefixStack, t.allocPrefix())
}

func (t *tokenizerState) popLocBlk() {
	if len(t.prefixStack) <= 1 {
		t.prefixStack = []int{t.allocPrefix()}
		return
	}
	t.prefixStack = t.prefixStack[:len(t.prefixStack)-1]
}

func (t *tokenizerState) resetLocBlk() {
	t.prefixStack = []int{t.allocPrefix()}
}

// mangle rewrites a `$`-prefixed local label with the current block's
// prefix so that label reuse across macro expansions and includes
// doesn't collide.
func (t *tokenizerState) mangle(name string) string {
	if strings.HasPrefix(name, "$") {
		return "$" + strconv.Itoa(t.curPrefix()) + name
	}
	return name
}

func (t *tokenizerState) emit(buf *[]Token, tokens ...Token) {
	*buf = append(*buf, tokens...)
}

func (t *tokenizerState) targetBuf() *[]Token {
	if t.dataMode {
		return &t.dataBuf
	}
	return &t.textBuf
}

// Tokenize runs the single left-to-right lexing pass described in
// spec §4.3, returning the merged token stream and any diagnostics.
func Tokenize(lines []Line) ([]Token, []Diagnostic) {
	st := newTokenizerState()
	var diags []Diagnostic

	for _, l := range lines {
		st.emit(&st.textBuf, LineStart{Origin: l.Origin})
		text := strings.TrimSpace(stripComment(l.Text))
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, ";!!") {
			st.emit(&st.textBuf, ListingComment{Text: strings.TrimSpace(text[3:])})
			continue
		}
		if d := st.tokenizeLine(text, l.Origin); d != nil {
			diags = append(diags, *d)
		}
	}

	st.emit(&st.textBuf, DbgBreak{})
	st.emit(&st.textBuf, DataMode{})
	st.textBuf = append(st.textBuf, st.dataBuf...)

	return collapseLineStarts(st.textBuf), diags
}

func collapseLineStarts(in []Token) []Token {
	out := make([]Token, 0, len(in))
	for i, tok := range in {
		if i > 0 {
			_, curIsStart := tok.(LineStart)
			_, prevIsStart := in[i-1].(LineStart)
			if curIsStart && prevIsStart {
				continue
			}
		}
		out = append(out, tok)
	}
	return out
}

func (st *tokenizerState) tokenizeLine(text string, origin Origin) *Diagnostic {
	switch text {
	case ".dbgbrk":
		st.emit(&st.textBuf, DbgBreak{})
		return nil
	case ".data":
		if st.dataMode {
			d := newDiagnostic(origin, "already in data mode")
			return &d
		}
		st.dataMode = true
		return nil
	case ".text":
		if !st.dataMode {
			d := newDiagnostic(origin, "already in text mode")
			return &d
		}
		st.dataMode = false
		return nil
	case ".locblk":
		st.resetLocBlk()
		return nil
	case ".push_locblk":
		st.pushLocBlk()
		return nil
	case ".pop_locblk":
		st.popLocBlk()
		return nil
	}

	if m := interruptRe.FindStringSubmatch(text); m != nil {
		vec, err := parseNumber(m[1])
		if err != nil {
			d := newDiagnostic(origin, "malformed interrupt vector: "+m[1])
			return &d
		}
		target := st.mangle(m[2])
		st.emit(&st.textBuf, Interrupt{Vector: int(vec)}, LabelVal{Name: target})
		return nil
	}

	if st.dataMode {
		if m := cstr8Re.FindStringSubmatch(text); m != nil {
			st.emit(&st.dataBuf, CString8Data{Text: m[1]})
			return nil
		}
	}

	if idx := strings.Index(text, ":"); idx >= 0 {
		left := strings.TrimSpace(text[:idx])
		right := strings.TrimSpace(text[idx+1:])
		if !labelNameRe.MatchString(left) {
			d := newDiagnostic(origin, "invalid label: "+left)
			return &d
		}
		name := st.mangle(left)
		st.emit(st.targetBuf(), Label{Name: name})
		if right == "" {
			return nil
		}
		text = right
	}

	if dataDirectiveRe.MatchString(text) {
		return nil
	}

	return st.tokenizeInstruction(text, origin)
}

func (st *tokenizerState) tokenizeInstruction(text string, origin Origin) *Diagnostic {
	fields := splitFields(text)
	if len(fields) == 0 {
		return nil
	}
	head := fields[0]
	m := mnemonicSuffixRe.FindStringSubmatch(head)
	if m == nil {
		d := newDiagnostic(origin, "malformed mnemonic: "+head)
		return &d
	}
	mnemonic := strings.ToLower(m[1])
	st.emit(&st.textBuf, Mnemonic{Name: mnemonic})
	if m[2] != "" {
		st.emit(&st.textBuf, ModeIndicator{Byte: strings.ToLower(m[2]) == "b"})
	}

	args := fields[1:]

	if _, ok := isa.IsJumpMnemonic(mnemonic); ok {
		if len(args) != 1 {
			d := newDiagnostic(origin, "jump expects exactly one operand")
			return &d
		}
		return st.tokenizeJumpArg(args[0], origin)
	}

	for _, a := range args {
		if d := st.tokenizeArgument(a, origin); d != nil {
			return d
		}
	}
	return nil
}

func (st *tokenizerState) tokenizeJumpArg(arg string, origin Origin) *Diagnostic {
	if n, err := parseNumber(arg); err == nil {
		st.emit(&st.textBuf, Value{N: n})
		return nil
	}
	name := strings.TrimSpace(arg)
	if !labelNameRe.MatchString(name) {
		d := newDiagnostic(origin, "malformed jump target: "+arg)
		return &d
	}
	st.emit(&st.textBuf, LabelVal{Name: st.mangle(name)})
	return nil
}

// splitFields splits an instruction line on commas and whitespace:
// the mnemonic, then its operands. The number of fields is not
// limited here; surplus operands are rejected by the parser.
func splitFields(text string) []string {
	text = strings.ReplaceAll(text, ",", " ")
	return strings.Fields(text)
}

var (
	regDirectRe  = regexp.MustCompile(`^(?i)(r([0-9]|1[0-5])|pc|sp|sr|cg)$`)
	indexedRe    = regexp.MustCompile(`^([+-]?(?:0[xX][0-9A-Fa-f]+|[0-9]+))\(([A-Za-z0-9]+)\)$`)
	indexedLblRe = regexp.MustCompile(`^([A-Za-z_$][A-Za-z0-9_$]*)\(([A-Za-z0-9]+)\)$`)
	indirectRe   = regexp.MustCompile(`^@([A-Za-z0-9]+)(\+)?$`)
	immNumRe     = regexp.MustCompile(`^#([+-]?(?:0[xX][0-9A-Fa-f]+|[0-9]+))$`)
	immLblRe     = regexp.MustCompile(`^#([A-Za-z_$][A-Za-z0-9_$]*)$`)
	absNumRe     = regexp.MustCompile(`^&((?:0[xX][0-9A-Fa-f]+|[0-9]+))$`)
	absLblRe     = regexp.MustCompile(`^&([A-Za-z_$][A-Za-z0-9_$]*)$`)
	symNumRe     = regexp.MustCompile(`^(?:0[xX][0-9A-Fa-f]+|[0-9]+)$`)
	symLblRe     = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
)

func parseRegister(s string) (int, bool) {
	low := strings.ToLower(s)
	if n, ok := isa.RegisterAliases[low]; ok {
		return n, true
	}
	if strings.HasPrefix(low, "r") {
		if n, err := strconv.Atoi(low[1:]); err == nil && n >= 0 && n <= 15 {
			return n, true
		}
	}
	return 0, false
}

func parseNumber(s string) (int32, error) {
	neg := false
	if strings.HasPrefix(s, "+") {
		s = s[1:]
	} else if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var v int64
	var err error
	if strings.HasPrefix(strings.ToLower(s), "0x") {
		v, err = strconv.ParseInt(s[2:], 16, 64)
	} else {
		v, err = strconv.ParseInt(s, 10, 64)
	}
	if err != nil {
		return 0, err
	}
	if neg {
		v = -v
	}
	return int32(v), nil
}

// tokenizeArgument implements the argument parser of spec §4.3.
func (st *tokenizerState) tokenizeArgument(arg string, origin Origin) *Diagnostic {
	if regDirectRe.MatchString(arg) {
		reg, _ := parseRegister(arg)
		st.emit(&st.textBuf, ArgRegDirect{}, Value{N: int32(reg)})
		return nil
	}
	if m := indexedRe.FindStringSubmatch(arg); m != nil {
		off, err := parseNumber(m[1])
		if err != nil {
			d := newDiagnostic(origin, "malformed offset: "+arg)
			return &d
		}
		reg, ok := parseRegister(m[2])
		if !ok {
			d := newDiagnostic(origin, "unknown register: "+m[2])
			return &d
		}
		st.emit(&st.textBuf, ArgIndexed{}, Value{N: off}, Value{N: int32(reg)})
		return nil
	}
	if m := indirectRe.FindStringSubmatch(arg); m != nil {
		reg, ok := parseRegister(m[1])
		if !ok {
			d := newDiagnostic(origin, "unknown register: "+m[1])
			return &d
		}
		if m[2] == "+" {
			st.emit(&st.textBuf, ArgRegIndirectAuto{}, Value{N: int32(reg)})
		} else {
			st.emit(&st.textBuf, ArgRegIndirect{}, Value{N: int32(reg)})
		}
		return nil
	}
	if m := immNumRe.FindStringSubmatch(arg); m != nil {
		v, err := parseNumber(m[1])
		if err != nil {
			d := newDiagnostic(origin, "malformed immediate: "+arg)
			return &d
		}
		st.emit(&st.textBuf, ArgImmediate{}, Value{N: v})
		return nil
	}
	if m := immLblRe.FindStringSubmatch(arg); m != nil {
		st.emit(&st.textBuf, ArgImmediate{}, LabelVal{Name: st.mangle(m[1])})
		return nil
	}
	if m := absNumRe.FindStringSubmatch(arg); m != nil {
		v, err := parseNumber(m[1])
		if err != nil {
			d := newDiagnostic(origin, "malformed address: "+arg)
			return &d
		}
		st.emit(&st.textBuf, ArgAbsolute{}, Value{N: v})
		return nil
	}
	if m := absLblRe.FindStringSubmatch(arg); m != nil {
		st.emit(&st.textBuf, ArgAbsolute{}, LabelVal{Name: st.mangle(m[1])})
		return nil
	}
	if symNumRe.MatchString(arg) {
		v, err := parseNumber(arg)
		if err != nil {
			d := newDiagnostic(origin, "malformed value: "+arg)
			return &d
		}
		st.emit(&st.textBuf, ArgSymbolic{}, Value{N: v})
		return nil
	}
	if m := indexedLblRe.FindStringSubmatch(arg); m != nil {
		reg, ok := parseRegister(m[2])
		if !ok {
			d := newDiagnostic(origin, "unknown register: "+m[2])
			return &d
		}
		st.emit(&st.textBuf, ArgIndexed{}, LabelVal{Name: st.mangle(m[1])}, Value{N: int32(reg)})
		return nil
	}
	if symLblRe.MatchString(arg) {
		st.emit(&st.textBuf, ArgSymbolic{}, LabelVal{Name: st.mangle(arg)})
		return nil
	}
	d := newDiagnostic(origin, "malformed operand: "+arg)
	return &d
}

// parseOperandText builds an Operand directly from a literal operand
// spelling, used to resolve the fixed-literal slots (`#0`, `@sp+`,
// `sr`, ...) that the emulated-instruction rewrite table supplies
// alongside the user's own operand text.
func parseOperandText(s string) (Operand, error) {
	if regDirectRe.MatchString(s) {
		reg, _ := parseRegister(s)
		return RegDirectOperand{Reg: reg}, nil
	}
	if m := indexedRe.FindStringSubmatch(s); m != nil {
		off, err := parseNumber(m[1])
		if err != nil {
			return nil, err
		}
		reg, ok := parseRegister(m[2])
		if !ok {
			return nil, fmt.Errorf("unknown register: %s", m[2])
		}
		return IndexedOperand{Reg: reg, Offset: litRef(off)}, nil
	}
	if m := indirectRe.FindStringSubmatch(s); m != nil {
		reg, ok := parseRegister(m[1])
		if !ok {
			return nil, fmt.Errorf("unknown register: %s", m[1])
		}
		if m[2] == "+" {
			return RegIndirectAutoOperand{Reg: reg}, nil
		}
		return RegIndirectOperand{Reg: reg}, nil
	}
	if m := immNumRe.FindStringSubmatch(s); m != nil {
		v, err := parseNumber(m[1])
		if err != nil {
			return nil, err
		}
		return ImmediateOperand{Value: litRef(v)}, nil
	}
	if m := absNumRe.FindStringSubmatch(s); m != nil {
		v, err := parseNumber(m[1])
		if err != nil {
			return nil, err
		}
		return AbsoluteOperand{Target: litRef(v)}, nil
	}
	if symNumRe.MatchString(s) {
		v, err := parseNumber(s)
		if err != nil {
			return nil, err
		}
		return SymbolicOperand{Target: litRef(v)}, nil
	}
	return nil, fmt.Errorf("cannot parse operand literal: %s", s)
}
