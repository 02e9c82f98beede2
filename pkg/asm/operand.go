package asm

import "github.com/master-g/msp430/pkg/isa"

// ValueRef is a deferred, late-bound value: either an immediate
// literal known at parse time, or a label name whose address is only
// known once the label map has been built in pass 1 of resolution.
// Carrying the unresolved reference on the operand (rather than a
// mutable "resolve later" setter) keeps Operand construction and
// compilation cleanly separated.
type ValueRef struct {
	HasLabel bool
	Label    string
	Lit      int32
}

func litRef(v int32) ValueRef       { return ValueRef{Lit: v} }
func labelRef(name string) ValueRef { return ValueRef{HasLabel: true, Label: name} }

// Resolve returns the literal value, looking it up in labels if this
// reference names a label. A missing label is a compile-time error.
func (r ValueRef) Resolve(labels map[string]uint16) (int32, error) {
	if !r.HasLabel {
		return r.Lit, nil
	}
	addr, ok := labels[r.Label]
	if !ok {
		return 0, errLabelNotFound(r.Label)
	}
	return int32(addr), nil
}

type labelNotFoundError string

func (e labelNotFoundError) Error() string { return "label not found: " + string(e) }
func errLabelNotFound(name string) error   { return labelNotFoundError(name) }

// Operand is the closed set of MSP430 addressing-mode operands. Every
// variant knows how many extension words it contributes and how to
// encode itself as a source or destination field; RegIndirect,
// RegIndirectAuto and Immediate refuse destination encoding.
type Operand interface {
	operandTag()
	// ExtWords reports 0 or 1: whether this operand contributes an
	// extension word. For Immediate this depends on whether the
	// literal falls in the constant-generator set; for everything
	// else it is fixed by the addressing mode itself.
	ExtWords(byteMode bool) int
	// EncodeSrc returns the (As, reg) source field plus an optional
	// extension word value (nil when ExtWords == 0).
	EncodeSrc(pc uint16, labels map[string]uint16, byteMode bool) (as uint8, reg uint8, ext *uint16, err error)
	// EncodeDst returns the (Ad, reg) destination field plus an
	// optional extension word value. Returns an error for modes that
	// cannot serve as a destination.
	EncodeDst(pc uint16, labels map[string]uint16) (ad uint8, reg uint8, ext *uint16, err error)
}

type illegalDestError string

func (e illegalDestError) Error() string { return "illegal destination addressing mode: " + string(e) }

// RegDirectOperand is `Rn`.
type RegDirectOperand struct{ Reg int }

func (RegDirectOperand) operandTag()             {}
func (RegDirectOperand) ExtWords(bool) int        { return 0 }
func (o RegDirectOperand) EncodeSrc(uint16, map[string]uint16, bool) (uint8, uint8, *uint16, error) {
	return 0b00, uint8(o.Reg), nil, nil
}
func (o RegDirectOperand) EncodeDst(uint16, map[string]uint16) (uint8, uint8, *uint16, error) {
	return 0, uint8(o.Reg), nil, nil
}

// IndexedOperand is `off(Rn)`.
type IndexedOperand struct {
	Reg    int
	Offset ValueRef
}

func (IndexedOperand) operandTag()      {}
func (IndexedOperand) ExtWords(bool) int { return 1 }
func (o IndexedOperand) EncodeSrc(pc uint16, labels map[string]uint16, _ bool) (uint8, uint8, *uint16, error) {
	v, err := o.Offset.Resolve(labels)
	if err != nil {
		return 0, 0, nil, err
	}
	ext := ToWord(v)
	return 0b01, uint8(o.Reg), &ext, nil
}
func (o IndexedOperand) EncodeDst(_ uint16, labels map[string]uint16) (uint8, uint8, *uint16, error) {
	v, err := o.Offset.Resolve(labels)
	if err != nil {
		return 0, 0, nil, err
	}
	ext := ToWord(v)
	return 1, uint8(o.Reg), &ext, nil
}

// RegIndirectOperand is `@Rn`.
type RegIndirectOperand struct{ Reg int }

func (RegIndirectOperand) operandTag()      {}
func (RegIndirectOperand) ExtWords(bool) int { return 0 }
func (o RegIndirectOperand) EncodeSrc(uint16, map[string]uint16, bool) (uint8, uint8, *uint16, error) {
	return 0b10, uint8(o.Reg), nil, nil
}
func (o RegIndirectOperand) EncodeDst(uint16, map[string]uint16) (uint8, uint8, *uint16, error) {
	return 0, 0, nil, illegalDestError("@Rn")
}

// RegIndirectAutoOperand is `@Rn+`.
type RegIndirectAutoOperand struct{ Reg int }

func (RegIndirectAutoOperand) operandTag()      {}
func (RegIndirectAutoOperand) ExtWords(bool) int { return 0 }
func (o RegIndirectAutoOperand) EncodeSrc(uint16, map[string]uint16, bool) (uint8, uint8, *uint16, error) {
	return 0b11, uint8(o.Reg), nil, nil
}
func (o RegIndirectAutoOperand) EncodeDst(uint16, map[string]uint16) (uint8, uint8, *uint16, error) {
	return 0, 0, nil, illegalDestError("@Rn+")
}

// SymbolicOperand is a bare label/address, PC-relative.
type SymbolicOperand struct{ Target ValueRef }

func (SymbolicOperand) operandTag()      {}
func (SymbolicOperand) ExtWords(bool) int { return 1 }
func (o SymbolicOperand) EncodeSrc(pc uint16, labels map[string]uint16, _ bool) (uint8, uint8, *uint16, error) {
	v, err := o.Target.Resolve(labels)
	if err != nil {
		return 0, 0, nil, err
	}
	ext := ToWord(v - int32(pc) - 2)
	return 0b01, isa.RegPC, &ext, nil
}
func (o SymbolicOperand) EncodeDst(pc uint16, labels map[string]uint16) (uint8, uint8, *uint16, error) {
	v, err := o.Target.Resolve(labels)
	if err != nil {
		return 0, 0, nil, err
	}
	ext := ToWord(v - int32(pc) - 2)
	return 1, isa.RegPC, &ext, nil
}

// AbsoluteOperand is `&label_or_address`.
type AbsoluteOperand struct{ Target ValueRef }

func (AbsoluteOperand) operandTag()      {}
func (AbsoluteOperand) ExtWords(bool) int { return 1 }
func (o AbsoluteOperand) EncodeSrc(_ uint16, labels map[string]uint16, _ bool) (uint8, uint8, *uint16, error) {
	v, err := o.Target.Resolve(labels)
	if err != nil {
		return 0, 0, nil, err
	}
	ext := ToWord(v)
	return 0b01, isa.RegSR, &ext, nil
}
func (o AbsoluteOperand) EncodeDst(_ uint16, labels map[string]uint16) (uint8, uint8, *uint16, error) {
	v, err := o.Target.Resolve(labels)
	if err != nil {
		return 0, 0, nil, err
	}
	ext := ToWord(v)
	return 1, isa.RegSR, &ext, nil
}

// ImmediateOperand is `#value`. Source-only: the constant generator
// lets six literal values skip the extension word entirely.
type ImmediateOperand struct{ Value ValueRef }

func (ImmediateOperand) operandTag() {}

func (o ImmediateOperand) ExtWords(byteMode bool) int {
	if o.Value.HasLabel {
		return 1
	}
	if _, ok := isa.ConstGenTable[int16(o.Value.Lit)]; ok {
		return 0
	}
	return 1
}

func (o ImmediateOperand) EncodeSrc(_ uint16, labels map[string]uint16, byteMode bool) (uint8, uint8, *uint16, error) {
	v, err := o.Value.Resolve(labels)
	if err != nil {
		return 0, 0, nil, err
	}
	if entry, ok := isa.ConstGenTable[int16(v)]; ok && !o.Value.HasLabel {
		return entry.As, entry.Reg, nil, nil
	}
	var ext uint16
	if byteMode {
		ext = uint16(ToByte(v)) << 8
	} else {
		ext = ToWord(v)
	}
	return 0b11, isa.RegPC, &ext, nil
}

func (o ImmediateOperand) EncodeDst(uint16, map[string]uint16) (uint8, uint8, *uint16, error) {
	return 0, 0, nil, illegalDestError("#immediate")
}
