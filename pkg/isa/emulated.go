package isa

// EmulatedInstruction describes one pseudo-mnemonic rewrite: the assembler
// side (pkg/asm) uses Operands to synthesize the real instruction's operand
// text so it can be re-run through the normal argument parser, and the
// disassembler side (pkg/disasm) uses the same table (built once, via
// EmulatedInstructions()) to generate its reverse-substitution templates.
type EmulatedInstruction struct {
	// Name is the pseudo mnemonic, lower-case (e.g. "ret", "clrc").
	Name string
	// ArgCount is how many operands the pseudo form takes: 0 or 1.
	ArgCount int
	// ByteModeAllowed reports whether a .b/.w suffix is legal on this
	// pseudo mnemonic.
	ByteModeAllowed bool
	// Real is the real mnemonic this rewrites to.
	Real string
	// Operands synthesizes the real instruction's operand text(s) from
	// the pseudo instruction's single argument text (empty for
	// ArgCount==0). Returns one element for single-operand reals, two
	// for double-operand reals.
	Operands func(arg string) []string
}

var emulatedTable []EmulatedInstruction

// EmulatedInstructions returns the process-wide emulated-instruction
// table, building it on first use.
func EmulatedInstructions() []EmulatedInstruction {
	if emulatedTable == nil {
		emulatedTable = buildEmulatedTable()
	}
	return emulatedTable
}

// EmulatedInstructionNamed looks up a pseudo mnemonic by name.
func EmulatedInstructionNamed(name string) (EmulatedInstruction, bool) {
	for _, e := range EmulatedInstructions() {
		if e.Name == name {
			return e, true
		}
	}
	return EmulatedInstruction{}, false
}

func same(arg string) []string          { return []string{arg, arg} }
func dstOnly(arg string) []string       { return []string{"#0", arg} }
func srcToPC(arg string) []string       { return []string{arg, "pc"} }
func popInto(arg string) []string       { return []string{"@sp+", arg} }
func immDst(lit string) func(string) []string {
	return func(arg string) []string { return []string{lit, arg} }
}
func constSR(lit string) func(string) []string {
	return func(string) []string { return []string{lit, "sr"} }
}

func buildEmulatedTable() []EmulatedInstruction {
	return []EmulatedInstruction{
		{Name: "adc", ArgCount: 1, ByteModeAllowed: true, Real: "addc", Operands: immDst("#0")},
		{Name: "br", ArgCount: 1, ByteModeAllowed: false, Real: "mov", Operands: srcToPC},
		{Name: "clr", ArgCount: 1, ByteModeAllowed: true, Real: "mov", Operands: dstOnly},
		{Name: "clrc", ArgCount: 0, ByteModeAllowed: false, Real: "bic", Operands: constSR("#1")},
		{Name: "clrn", ArgCount: 0, ByteModeAllowed: false, Real: "bic", Operands: constSR("#4")},
		{Name: "clrz", ArgCount: 0, ByteModeAllowed: false, Real: "bic", Operands: constSR("#2")},
		{Name: "dadc", ArgCount: 1, ByteModeAllowed: true, Real: "dadd", Operands: immDst("#0")},
		{Name: "dec", ArgCount: 1, ByteModeAllowed: true, Real: "sub", Operands: immDst("#1")},
		{Name: "decd", ArgCount: 1, ByteModeAllowed: true, Real: "sub", Operands: immDst("#2")},
		{Name: "dint", ArgCount: 0, ByteModeAllowed: false, Real: "bic", Operands: constSR("#8")},
		{Name: "eint", ArgCount: 0, ByteModeAllowed: false, Real: "bis", Operands: constSR("#8")},
		{Name: "inc", ArgCount: 1, ByteModeAllowed: true, Real: "add", Operands: immDst("#1")},
		{Name: "incd", ArgCount: 1, ByteModeAllowed: true, Real: "add", Operands: immDst("#2")},
		{Name: "inv", ArgCount: 1, ByteModeAllowed: true, Real: "xor", Operands: immDst("#-1")},
		{Name: "nop", ArgCount: 0, ByteModeAllowed: false, Real: "mov", Operands: func(string) []string { return []string{"#0", "cg"} }},
		{Name: "pop", ArgCount: 1, ByteModeAllowed: true, Real: "mov", Operands: popInto},
		{Name: "ret", ArgCount: 0, ByteModeAllowed: false, Real: "mov", Operands: func(string) []string { return []string{"@sp+", "pc"} }},
		{Name: "rla", ArgCount: 1, ByteModeAllowed: true, Real: "add", Operands: same},
		{Name: "rlc", ArgCount: 1, ByteModeAllowed: true, Real: "addc", Operands: same},
		{Name: "sbc", ArgCount: 1, ByteModeAllowed: true, Real: "subc", Operands: immDst("#0")},
		{Name: "setc", ArgCount: 0, ByteModeAllowed: false, Real: "bis", Operands: constSR("#1")},
		{Name: "setn", ArgCount: 0, ByteModeAllowed: false, Real: "bis", Operands: constSR("#4")},
		{Name: "setz", ArgCount: 0, ByteModeAllowed: false, Real: "bis", Operands: constSR("#2")},
		{Name: "tst", ArgCount: 1, ByteModeAllowed: true, Real: "cmp", Operands: immDst("#0")},
		// hcf has no general-purpose rewrite (its real form is a jump,
		// not a single/double-operand instruction); pkg/asm special-cases
		// it directly rather than forcing it through Operands.
	}
}

// HCFMnemonic is the one pseudo mnemonic whose rewrite target is a jump
// instruction rather than a single/double-operand one, so it cannot be
// expressed through EmulatedInstruction.Operands.
const HCFMnemonic = "hcf"
