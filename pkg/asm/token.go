package asm

// Token is the closed set of lexical units produced by the tokenizer.
// Each concrete type below implements the unexported marker so the
// set is closed to this package, per the "tagged variants over
// inheritance" design: a stream is just []Token and consumers switch
// on concrete type rather than calling virtual methods.
type Token interface {
	tokenTag()
}

// LineStart marks the beginning of a new source line and carries its
// origin for diagnostics and the listing's line map.
type LineStart struct{ Origin Origin }

// DbgBreak forces a segment boundary; it corresponds to `.dbgbrk` and
// to the sentinels the loader/macro-expander wrap around included or
// expanded blocks.
type DbgBreak struct{}

// ListingComment carries a `;!!`-prefixed comment through to the
// listing generator; it never contributes bytes.
type ListingComment struct{ Text string }

// Label attaches a label name to whatever instruction follows it.
type Label struct{ Name string }

// LabelVal is a label reference appearing as an operand value (as
// opposed to Label, which declares one).
type LabelVal struct{ Name string }

// Mnemonic names an instruction, pseudo or real.
type Mnemonic struct{ Name string }

// ModeIndicator carries an explicit `.b`/`.w` suffix; Byte is true for
// `.b`.
type ModeIndicator struct{ Byte bool }

// Value is a bare signed integer literal appearing inline in the
// token stream (numeric jump target addresses, operand values,
// register indices).
type Value struct{ N int32 }

// ArgRegDirect marks that the following Value is a register index for
// a register-direct operand.
type ArgRegDirect struct{}

// ArgIndexed marks an indexed operand; followed by Value(offset) or
// LabelVal, then Value(regN).
type ArgIndexed struct{}

// ArgRegIndirect marks `@Rn`; followed by Value(regN).
type ArgRegIndirect struct{}

// ArgRegIndirectAuto marks `@Rn+`; followed by Value(regN).
type ArgRegIndirectAuto struct{}

// ArgSymbolic marks a bare address/label operand; followed by Value or
// LabelVal.
type ArgSymbolic struct{}

// ArgImmediate marks `#value`; followed by Value or LabelVal.
type ArgImmediate struct{}

// ArgAbsolute marks `&value`; followed by Value or LabelVal.
type ArgAbsolute struct{}

// DataMode marks the transition into the accumulated data-section
// token block appended after the text-mode stream.
type DataMode struct{}

// CString8Data carries a data-mode `.cstr8` string literal.
type CString8Data struct{ Text string }

// Interrupt marks `.interrupt <vector>`; followed by a LabelVal naming
// the handler.
type Interrupt struct{ Vector int }

func (LineStart) tokenTag()          {}
func (DbgBreak) tokenTag()           {}
func (ListingComment) tokenTag()     {}
func (Label) tokenTag()              {}
func (LabelVal) tokenTag()           {}
func (Mnemonic) tokenTag()           {}
func (ModeIndicator) tokenTag()      {}
func (Value) tokenTag()              {}
func (ArgRegDirect) tokenTag()       {}
func (ArgIndexed) tokenTag()         {}
func (ArgRegIndirect) tokenTag()     {}
func (ArgRegIndirectAuto) tokenTag() {}
func (ArgSymbolic) tokenTag()        {}
func (ArgImmediate) tokenTag()       {}
func (ArgAbsolute) tokenTag()        {}
func (DataMode) tokenTag()           {}
func (CString8Data) tokenTag()       {}
func (Interrupt) tokenTag()          {}
