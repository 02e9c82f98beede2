// Package isa holds the process-wide, read-only tables that describe the
// MSP430 instruction set: addressing-mode identities, opcode encodings,
// mnemonic lookups and the constant-generator special cases. Both the
// assembler (pkg/asm) and the disassembler (pkg/disasm) consult these
// tables instead of each keeping their own copy.
package isa

// AddrMode identifies an addressing mode independently of which operand
// field (src or dst) it ends up encoded into.
type AddrMode uint8

const (
	AddrModeRegDirect AddrMode = iota
	AddrModeIndexed
	AddrModeRegIndirect
	AddrModeRegIndirectAuto
	AddrModeSymbolic
	AddrModeAbsolute
	AddrModeImmediate
)

// Register indices with specialized semantics.
const (
	RegPC = 0
	RegSP = 1
	RegSR = 2
	RegCG = 3
)

// RegisterAliases maps the assembler's register mnemonic aliases to their
// register index.
var RegisterAliases = map[string]int{
	"pc": RegPC,
	"sp": RegSP,
	"sr": RegSR,
	"cg": RegCG,
}

// JumpCond is the 3-bit condition field of a jump instruction.
type JumpCond uint8

const (
	JNE JumpCond = iota // 000
	JEQ                 // 001
	JNC                 // 010
	JC                  // 011
	JN                  // 100
	JGE                 // 101
	JL                  // 110
	JMP                 // 111
)

// jumpMnemonics maps every jump mnemonic spelling (including aliases) to
// its condition field.
var jumpMnemonics = map[string]JumpCond{
	"jne": JNE, "jnz": JNE,
	"jeq": JEQ, "jz": JEQ,
	"jnc": JNC, "jlo": JNC,
	"jc": JC, "jhs": JC,
	"jn":  JN,
	"jge": JGE,
	"jl":  JL,
	"jmp": JMP,
}

// jumpCondName is the canonical (disassembly) spelling of each condition.
var jumpCondName = map[JumpCond]string{
	JNE: "jne", JEQ: "jeq", JNC: "jnc", JC: "jc",
	JN: "jn", JGE: "jge", JL: "jl", JMP: "jmp",
}

// IsJumpMnemonic reports whether name is one of the jump mnemonics and
// returns its condition field.
func IsJumpMnemonic(name string) (JumpCond, bool) {
	c, ok := jumpMnemonics[name]
	return c, ok
}

// JumpCondName returns the canonical mnemonic for a jump condition.
func JumpCondName(c JumpCond) string {
	return jumpCondName[c]
}

// SingleOp is the 3-bit opcode field of a single-operand instruction.
type SingleOp uint8

const (
	OpRRC SingleOp = iota
	OpSWPB
	OpRRA
	OpSXT
	OpPUSH
	OpCALL
	OpRETI
)

var singleMnemonics = map[string]SingleOp{
	"rrc": OpRRC, "swpb": OpSWPB, "rra": OpRRA, "sxt": OpSXT,
	"push": OpPUSH, "call": OpCALL, "reti": OpRETI,
}

var singleOpName = map[SingleOp]string{
	OpRRC: "rrc", OpSWPB: "swpb", OpRRA: "rra", OpSXT: "sxt",
	OpPUSH: "push", OpCALL: "call", OpRETI: "reti",
}

// IsSingleOperandMnemonic reports whether name is a single-operand real
// mnemonic and returns its opcode field.
func IsSingleOperandMnemonic(name string) (SingleOp, bool) {
	op, ok := singleMnemonics[name]
	return op, ok
}

// SingleOpName returns the canonical mnemonic for a single-operand opcode.
func SingleOpName(op SingleOp) string {
	return singleOpName[op]
}

// byteModeForbidden is the set of single-operand opcodes that the real
// hardware (and this core) refuses to execute in byte mode.
var byteModeForbidden = map[SingleOp]bool{
	OpSWPB: true,
	OpSXT:  true,
	OpCALL: true,
}

// ByteModeForbidden reports whether op rejects the .b suffix.
func ByteModeForbidden(op SingleOp) bool {
	return byteModeForbidden[op]
}

// DoubleOp is the 4-bit opcode field of a double-operand instruction.
type DoubleOp uint8

const (
	OpMOV DoubleOp = iota + 4
	OpADD
	OpADDC
	OpSUBC
	OpSUB
	OpCMP
	OpDADD
	OpBIT
	OpBIC
	OpBIS
	OpXOR
	OpAND
)

var doubleMnemonics = map[string]DoubleOp{
	"mov": OpMOV, "add": OpADD, "addc": OpADDC, "subc": OpSUBC,
	"sub": OpSUB, "cmp": OpCMP, "dadd": OpDADD, "bit": OpBIT,
	"bic": OpBIC, "bis": OpBIS, "xor": OpXOR, "and": OpAND,
}

var doubleOpName = map[DoubleOp]string{
	OpMOV: "mov", OpADD: "add", OpADDC: "addc", OpSUBC: "subc",
	OpSUB: "sub", OpCMP: "cmp", OpDADD: "dadd", OpBIT: "bit",
	OpBIC: "bic", OpBIS: "bis", OpXOR: "xor", OpAND: "and",
}

// IsDoubleOperandMnemonic reports whether name is a double-operand real
// mnemonic and returns its opcode field.
func IsDoubleOperandMnemonic(name string) (DoubleOp, bool) {
	op, ok := doubleMnemonics[name]
	return op, ok
}

// DoubleOpName returns the canonical mnemonic for a double-operand opcode.
func DoubleOpName(op DoubleOp) string {
	return doubleOpName[op]
}

// discardsResult is the set of double-operand opcodes whose ALU result is
// never written back (it only updates flags).
var discardsResult = map[DoubleOp]bool{
	OpCMP: true,
	OpBIT: true,
}

// DiscardsResult reports whether op computes flags only and discards its
// result (CMP, BIT).
func DiscardsResult(op DoubleOp) bool {
	return discardsResult[op]
}

// ConstGenEntry is one row of the constant-generator table: the (As, reg)
// pair that synthesizes a literal value without an extension word.
type ConstGenEntry struct {
	As  uint8
	Reg uint8
}

// ConstGenTable maps a literal immediate value to its constant-generator
// encoding. Only these six values can be expressed without an extension
// word; every other immediate falls back to As=11,src=PC with a literal
// extension word.
var ConstGenTable = map[int16]ConstGenEntry{
	0:  {As: 0b00, Reg: RegCG},
	1:  {As: 0b01, Reg: RegCG},
	2:  {As: 0b10, Reg: RegCG},
	4:  {As: 0b10, Reg: RegSR},
	8:  {As: 0b11, Reg: RegSR},
	-1: {As: 0b11, Reg: RegCG},
}

// ConstGenValue is the inverse of ConstGenTable: given (As, reg) on a
// source operand, returns the literal value the constant generator
// produces, if any such mapping exists.
func ConstGenValue(as uint8, reg uint8) (int16, bool) {
	for v, e := range ConstGenTable {
		if e.As == as && e.Reg == reg {
			return v, true
		}
	}
	return 0, false
}
