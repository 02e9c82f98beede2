package asm

import "github.com/master-g/msp430/pkg/isa"

// argPlaceholder stands in for the user's own operand text when
// feeding an emulated instruction's rewrite pattern through
// isa.EmulatedInstruction.Operands; whichever resulting string equals
// this placeholder gets the user's already-parsed Operand substituted
// back in, and everything else is resolved via parseOperandText.
const argPlaceholder = "\x00arg\x00"

// Parse consumes a token stream (as produced by Tokenize) and returns
// the instruction list plus any diagnostics. Parsing resynchronizes on
// the next LineStart after an error so one bad line doesn't hide the
// rest.
func Parse(tokens []Token) ([]Instruction, []Diagnostic) {
	p := &parserState{stream: NewTokenStream(tokens)}
	return p.run()
}

type parserState struct {
	stream  *TokenStream
	origin  Origin
	pending []string
	dataMode bool
	diags   []Diagnostic
	out     []Instruction
}

func (p *parserState) run() ([]Instruction, []Diagnostic) {
	for !p.stream.Done() {
		tok, _ := p.stream.Next()
		switch t := tok.(type) {
		case LineStart:
			p.origin = t.Origin
		case Label:
			p.pending = append(p.pending, t.Name)
		case DbgBreak:
			p.emit(PaddingInstruction{baseInstruction: p.base()})
		case ListingComment:
			p.emit(ListingCommentInstruction{baseInstruction: p.base(), Text: t.Text})
		case DataMode:
			p.dataMode = true
		case Interrupt:
			p.parseInterrupt(t)
		case CString8Data:
			p.parseCString8(t)
		case Mnemonic:
			p.parseMnemonic(t)
		default:
			p.fail("unexpected token")
			p.resync()
		}
	}
	return p.out, p.diags
}

func (p *parserState) base() baseInstruction {
	b := baseInstruction{origin: p.origin, labels: p.pending}
	p.pending = nil
	return b
}

func (p *parserState) emit(i Instruction) {
	p.out = append(p.out, i)
}

func (p *parserState) fail(msg string) {
	p.diags = append(p.diags, newDiagnostic(p.origin, msg))
}

// resync discards tokens up to (not including) the next LineStart.
func (p *parserState) resync() {
	for {
		tok, ok := p.stream.Peek()
		if !ok {
			return
		}
		if _, isStart := tok.(LineStart); isStart {
			return
		}
		p.stream.Next()
	}
}

func (p *parserState) parseInterrupt(t Interrupt) {
	next, ok := p.stream.Next()
	lv, isLV := next.(LabelVal)
	if !ok || !isLV {
		p.fail("interrupt directive missing target label")
		p.resync()
		return
	}
	p.emit(InterruptInstruction{baseInstruction: p.base(), Vector: t.Vector, Target: labelRef(lv.Name)})
}

func (p *parserState) parseCString8(t CString8Data) {
	for _, r := range t.Text {
		if r > 0xFF {
			p.fail("character out of byte range in .cstr8")
			p.resync()
			return
		}
	}
	p.emit(CString8Instruction{baseInstruction: p.base(), Text: t.Text})
}

func (p *parserState) parseMnemonic(t Mnemonic) {
	name := t.Name
	byteMode := false
	hasMode := false
	if peek, ok := p.stream.Peek(); ok {
		if mi, ok2 := peek.(ModeIndicator); ok2 {
			byteMode = mi.Byte
			hasMode = true
			p.stream.Next()
		}
	}

	if name == isa.HCFMnemonic {
		p.emit(JumpInstruction{baseInstruction: p.base(), Cond: isa.JMP, Target: litRef(0)})
		return
	}

	if cond, ok := isa.IsJumpMnemonic(name); ok {
		next, ok := p.stream.Next()
		var target ValueRef
		switch v := next.(type) {
		case Value:
			target = litRef(v.N)
		case LabelVal:
			target = labelRef(v.Name)
		default:
			ok = false
		}
		if !ok {
			p.fail("malformed jump target")
			p.resync()
			return
		}
		p.emit(JumpInstruction{baseInstruction: p.base(), Cond: cond, Target: target})
		return
	}

	if name == "reti" {
		p.emit(RetiInstruction{baseInstruction: p.base()})
		return
	}

	if emu, ok := isa.EmulatedInstructionNamed(name); ok {
		if hasMode && !emu.ByteModeAllowed {
			p.fail("byte mode not allowed for " + name)
			p.resync()
			return
		}
		var userOperand Operand
		if emu.ArgCount == 1 {
			op, diag := p.readOperand()
			if diag != nil {
				p.diags = append(p.diags, *diag)
				p.resync()
				return
			}
			userOperand = op
		}
		texts := emu.Operands(argPlaceholder)
		if singleOp, ok := isa.IsSingleOperandMnemonic(emu.Real); ok {
			src, err := resolveEmulatedSlot(texts[0], userOperand)
			if err != nil {
				p.fail(err.Error())
				p.resync()
				return
			}
			p.emit(SingleOperandInstruction{baseInstruction: p.base(), Op: singleOp, ByteMode: byteMode, Src: src})
			return
		}
		if doubleOp, ok := isa.IsDoubleOperandMnemonic(emu.Real); ok {
			src, err := resolveEmulatedSlot(texts[0], userOperand)
			if err != nil {
				p.fail(err.Error())
				p.resync()
				return
			}
			dst, err := resolveEmulatedSlot(texts[1], userOperand)
			if err != nil {
				p.fail(err.Error())
				p.resync()
				return
			}
			p.emit(DoubleOperandInstruction{baseInstruction: p.base(), Op: doubleOp, ByteMode: byteMode, Src: src, Dst: dst})
			return
		}
		p.fail("emulated instruction rewrites to unknown real mnemonic " + emu.Real)
		p.resync()
		return
	}

	if op, ok := isa.IsSingleOperandMnemonic(name); ok {
		if byteMode && isa.ByteModeForbidden(op) {
			p.fail("byte mode forbidden for " + name)
			p.resync()
			return
		}
		src, diag := p.readOperand()
		if diag != nil {
			p.diags = append(p.diags, *diag)
			p.resync()
			return
		}
		p.emit(SingleOperandInstruction{baseInstruction: p.base(), Op: op, ByteMode: byteMode, Src: src})
		return
	}

	if op, ok := isa.IsDoubleOperandMnemonic(name); ok {
		src, diag := p.readOperand()
		if diag != nil {
			p.diags = append(p.diags, *diag)
			p.resync()
			return
		}
		dst, diag := p.readOperand()
		if diag != nil {
			p.diags = append(p.diags, *diag)
			p.resync()
			return
		}
		p.emit(DoubleOperandInstruction{baseInstruction: p.base(), Op: op, ByteMode: byteMode, Src: src, Dst: dst})
		return
	}

	p.fail("unknown mnemonic " + name)
	p.resync()
}

func resolveEmulatedSlot(text string, userOperand Operand) (Operand, error) {
	if text == argPlaceholder {
		return userOperand, nil
	}
	return parseOperandText(text)
}

// readOperand consumes one ArgKind marker token plus its trailing
// Value/LabelVal payload and builds the corresponding Operand.
func (p *parserState) readOperand() (Operand, *Diagnostic) {
	tok, ok := p.stream.Next()
	if !ok {
		d := newDiagnostic(p.origin, "expected operand, found end of input")
		return nil, &d
	}
	switch tok.(type) {
	case ArgRegDirect:
		v, ok := p.nextValue()
		if !ok {
			return nil, p.operandErr()
		}
		return RegDirectOperand{Reg: int(v)}, nil
	case ArgIndexed:
		offset, ok := p.nextOffsetOrLabel()
		if !ok {
			return nil, p.operandErr()
		}
		reg, ok := p.nextValue()
		if !ok {
			return nil, p.operandErr()
		}
		return IndexedOperand{Reg: int(reg), Offset: offset}, nil
	case ArgRegIndirect:
		v, ok := p.nextValue()
		if !ok {
			return nil, p.operandErr()
		}
		return RegIndirectOperand{Reg: int(v)}, nil
	case ArgRegIndirectAuto:
		v, ok := p.nextValue()
		if !ok {
			return nil, p.operandErr()
		}
		return RegIndirectAutoOperand{Reg: int(v)}, nil
	case ArgSymbolic:
		ref, ok := p.nextOffsetOrLabel()
		if !ok {
			return nil, p.operandErr()
		}
		return SymbolicOperand{Target: ref}, nil
	case ArgImmediate:
		ref, ok := p.nextOffsetOrLabel()
		if !ok {
			return nil, p.operandErr()
		}
		return ImmediateOperand{Value: ref}, nil
	case ArgAbsolute:
		ref, ok := p.nextOffsetOrLabel()
		if !ok {
			return nil, p.operandErr()
		}
		return AbsoluteOperand{Target: ref}, nil
	}
	return nil, p.operandErr()
}

func (p *parserState) operandErr() *Diagnostic {
	d := newDiagnostic(p.origin, "malformed operand")
	return &d
}

func (p *parserState) nextValue() (int32, bool) {
	tok, ok := p.stream.Next()
	if !ok {
		return 0, false
	}
	v, ok := tok.(Value)
	if !ok {
		return 0, false
	}
	return v.N, true
}

func (p *parserState) nextOffsetOrLabel() (ValueRef, bool) {
	tok, ok := p.stream.Next()
	if !ok {
		return ValueRef{}, false
	}
	switch v := tok.(type) {
	case Value:
		return litRef(v.N), true
	case LabelVal:
		return labelRef(v.Name), true
	}
	return ValueRef{}, false
}
