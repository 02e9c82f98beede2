package asm

import "github.com/master-g/msp430/pkg/isa"

// Instruction is the closed set of compiled units the parser produces.
// Every variant carries its origin Line and the labels attached to it,
// and knows its own word count and how to compile itself given the
// final label→address map and its own address.
type Instruction interface {
	instructionTag()
	Origin() Origin
	Labels() []string
	// NumWords is the word count this instruction contributes to the
	// main code stream. Padding, ListingComment and Interrupt
	// instructions report 0; they never advance PC by their own
	// content (Padding and ListingComment still force segment/line
	// bookkeeping elsewhere in the resolver).
	NumWords() int
	// Compile renders the instruction to words, given its own address
	// pc and the final label map. Returns nil for zero-word variants.
	Compile(pc uint16, labels map[string]uint16) ([]uint16, error)
}

type baseInstruction struct {
	origin Origin
	labels []string
}

func (b baseInstruction) Origin() Origin   { return b.origin }
func (b baseInstruction) Labels() []string { return b.labels }

// JumpInstruction is a conditional or unconditional branch with a
// 10-bit PC-relative word offset.
type JumpInstruction struct {
	baseInstruction
	Cond   isa.JumpCond
	Target ValueRef
}

func (JumpInstruction) instructionTag() {}
func (JumpInstruction) NumWords() int   { return 1 }

func (i JumpInstruction) Compile(pc uint16, labels map[string]uint16) ([]uint16, error) {
	target, err := i.Target.Resolve(labels)
	if err != nil {
		return nil, newCompileError(i.origin, err.Error())
	}
	diff := target - int32(pc) - 2
	if diff%2 != 0 {
		return nil, newCompileError(i.origin, "jump target is not word-aligned")
	}
	offsetWords := diff / 2
	if offsetWords < -511 || offsetWords > 512 {
		return nil, newCompileError(i.origin, "jump offset out of range")
	}
	field := uint16(offsetWords) & 0x3FF
	word := uint16(0b001<<13) | (uint16(i.Cond) << 10) | field
	return []uint16{word}, nil
}

// SingleOperandInstruction is `OP[.b] src`.
type SingleOperandInstruction struct {
	baseInstruction
	Op       isa.SingleOp
	ByteMode bool
	Src      Operand
}

func (SingleOperandInstruction) instructionTag() {}

func (i SingleOperandInstruction) NumWords() int {
	return 1 + i.Src.ExtWords(i.ByteMode)
}

func (i SingleOperandInstruction) Compile(pc uint16, labels map[string]uint16) ([]uint16, error) {
	if i.ByteMode && isa.ByteModeForbidden(i.Op) {
		return nil, newCompileError(i.origin, "byte mode forbidden for "+isa.SingleOpName(i.Op))
	}
	as, reg, ext, err := i.Src.EncodeSrc(pc, labels, i.ByteMode)
	if err != nil {
		return nil, newCompileError(i.origin, err.Error())
	}
	var bw uint16
	if i.ByteMode {
		bw = 1
	}
	word := uint16(0b000100<<10) | (uint16(i.Op) << 7) | (bw << 6) | (uint16(as) << 4) | uint16(reg)
	if ext == nil {
		return []uint16{word}, nil
	}
	return []uint16{word, *ext}, nil
}

// DoubleOperandInstruction is `OP[.b] src, dst`.
type DoubleOperandInstruction struct {
	baseInstruction
	Op       isa.DoubleOp
	ByteMode bool
	Src      Operand
	Dst      Operand
}

func (DoubleOperandInstruction) instructionTag() {}

func (i DoubleOperandInstruction) NumWords() int {
	return 1 + i.Src.ExtWords(i.ByteMode) + i.Dst.ExtWords(i.ByteMode)
}

func (i DoubleOperandInstruction) Compile(pc uint16, labels map[string]uint16) ([]uint16, error) {
	srcAs, srcReg, srcExt, err := i.Src.EncodeSrc(pc, labels, i.ByteMode)
	if err != nil {
		return nil, newCompileError(i.origin, err.Error())
	}
	dstAd, dstReg, dstExt, err := i.Dst.EncodeDst(pc, labels)
	if err != nil {
		return nil, newCompileError(i.origin, err.Error())
	}
	var bw uint16
	if i.ByteMode {
		bw = 1
	}
	word := (uint16(i.Op) << 12) | (uint16(srcReg) << 8) | (uint16(dstAd) << 7) | (bw << 6) | (uint16(srcAs) << 4) | uint16(dstReg)
	words := []uint16{word}
	if srcExt != nil {
		words = append(words, *srcExt)
	}
	if dstExt != nil {
		words = append(words, *dstExt)
	}
	return words, nil
}

// RetiInstruction is the argument-less `reti`.
type RetiInstruction struct {
	baseInstruction
}

func (RetiInstruction) instructionTag()   {}
func (RetiInstruction) NumWords() int     { return 1 }
func (i RetiInstruction) Compile(uint16, map[string]uint16) ([]uint16, error) {
	return []uint16{uint16(0b000100<<10) | (uint16(isa.OpRETI) << 7)}, nil
}

// PaddingInstruction is a zero-word debug-break marker that forces a
// segment boundary in the compiler.
type PaddingInstruction struct {
	baseInstruction
}

func (PaddingInstruction) instructionTag()                                      {}
func (PaddingInstruction) NumWords() int                                        { return 0 }
func (PaddingInstruction) Compile(uint16, map[string]uint16) ([]uint16, error) { return nil, nil }

// ListingCommentInstruction carries a `;!!` comment through to the
// listing generator; it never contributes bytes.
type ListingCommentInstruction struct {
	baseInstruction
	Text string
}

func (ListingCommentInstruction) instructionTag()                                      {}
func (ListingCommentInstruction) NumWords() int                                        { return 0 }
func (ListingCommentInstruction) Compile(uint16, map[string]uint16) ([]uint16, error) { return nil, nil }

// CString8Instruction is a data-mode NUL-terminated byte string,
// packed two bytes per word, big-endian (high byte first).
type CString8Instruction struct {
	baseInstruction
	Text string
}

func (CString8Instruction) instructionTag() {}

func (i CString8Instruction) NumWords() int {
	n := len(i.Text) + 1
	return (n + 1) / 2
}

func (i CString8Instruction) Compile(uint16, map[string]uint16) ([]uint16, error) {
	bytes := append([]byte(i.Text), 0)
	words := make([]uint16, 0, (len(bytes)+1)/2)
	for j := 0; j < len(bytes); j += 2 {
		hi := bytes[j]
		var lo byte
		if j+1 < len(bytes) {
			lo = bytes[j+1]
		}
		words = append(words, uint16(hi)<<8|uint16(lo))
	}
	return words, nil
}

// InterruptInstruction fixes up a 1-word segment at the given vector
// address pointing at a label. It contributes zero bytes to the main
// code stream; the resolver buffers it into a postfix segment list.
type InterruptInstruction struct {
	baseInstruction
	Vector int
	Target ValueRef
}

func (InterruptInstruction) instructionTag() {}
func (InterruptInstruction) NumWords() int   { return 0 }
func (InterruptInstruction) Compile(uint16, map[string]uint16) ([]uint16, error) { return nil, nil }

// VectorWord resolves the instruction's target label to the word that
// belongs at its interrupt vector address.
func (i InterruptInstruction) VectorWord(labels map[string]uint16) (uint16, error) {
	v, err := i.Target.Resolve(labels)
	if err != nil {
		return 0, newCompileError(i.origin, err.Error())
	}
	return ToWord(v), nil
}
