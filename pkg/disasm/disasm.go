// Package disasm turns a word stream back into MSP430 mnemonic text.
// It mirrors the addressing-mode decoding pkg/emulator does for
// execution, except it renders operand text instead of producing a
// value, and it runs every decoded line through a reverse-substitution
// pass (reverse.go) that prefers the pseudo-mnemonic spelling whenever
// one renders shorter.
package disasm

import (
	"strconv"

	"github.com/master-g/msp430/pkg/isa"
)

// WordSource is anything a disassembly pass can read 16-bit words
// from. pkg/emulator's Memory satisfies this by structural typing;
// disasm does not need to import it.
type WordSource interface {
	ReadWord(addr uint16) (uint16, error)
}

// Disassembly is the result of a disassembly pass: the addresses
// visited, in order, and the rendered text at each one.
type Disassembly struct {
	Index []uint16
	Lines map[uint16]string
}

// decoded is the raw, pre-substitution rendering of one instruction:
// its real mnemonic, whether it carried a .b suffix, and its operand
// texts in encoding order (src, dst for double-operand; the sole
// operand for single-operand and jump forms).
type decoded struct {
	mnemonic string
	byteMode bool
	operands []string
}

type cursor struct {
	src  WordSource
	addr uint16
}

func (c *cursor) fetch() (uint16, error) {
	w, err := c.src.ReadWord(c.addr)
	if err != nil {
		return 0, err
	}
	c.addr += 2
	return w, nil
}

// Disassemble decodes every non-zero word from start to end inclusive,
// addr by addr, skipping padding words (value 0) entirely, and applies
// the reverse-substitution pass to each decoded line before recording
// it.
func Disassemble(src WordSource, start, end uint16, labels map[uint16]string) (*Disassembly, error) {
	d := &Disassembly{
		Index: []uint16{},
		Lines: make(map[uint16]string),
	}
	c := &cursor{src: src, addr: start}
	for c.addr <= end {
		lineAddr := c.addr
		word, err := c.fetch()
		if err != nil {
			return d, err
		}
		if word == 0 {
			continue
		}
		line, err := c.decodeOne(word, lineAddr, labels)
		if err != nil {
			return d, err
		}
		d.Index = append(d.Index, lineAddr)
		d.Lines[lineAddr] = applyReverseSubstitution(line)
	}
	return d, nil
}

func (c *cursor) decodeOne(word uint16, selfAddr uint16, labels map[uint16]string) (decoded, error) {
	switch {
	case word&0xFC00 == 0x1000:
		return c.decodeSingle(word, labels)
	case word&0xE000 == 0x2000:
		return c.decodeJump(word, selfAddr, labels), nil
	default:
		return c.decodeDouble(word, labels)
	}
}

func (c *cursor) decodeSingle(word uint16, labels map[uint16]string) (decoded, error) {
	op := isa.SingleOp((word >> 7) & 0x7)
	bw := (word>>6)&1 == 1
	as := uint8((word >> 4) & 0x3)
	reg := int(word & 0xF)

	if op == isa.OpRETI {
		return decoded{mnemonic: isa.SingleOpName(op)}, nil
	}

	operand, err := c.sourceOperandText(as, reg, labels)
	if err != nil {
		return decoded{}, err
	}
	return decoded{
		mnemonic: isa.SingleOpName(op),
		byteMode: bw,
		operands: []string{operand},
	}, nil
}

func (c *cursor) decodeDouble(word uint16, labels map[uint16]string) (decoded, error) {
	op := isa.DoubleOp((word >> 12) & 0xF)
	srcReg := int((word >> 8) & 0xF)
	ad := uint8((word >> 7) & 1)
	bw := (word>>6)&1 == 1
	as := uint8((word >> 4) & 0x3)
	dstReg := int(word & 0xF)

	src, err := c.sourceOperandText(as, srcReg, labels)
	if err != nil {
		return decoded{}, err
	}
	dst, err := c.destOperandText(ad, dstReg, labels)
	if err != nil {
		return decoded{}, err
	}
	return decoded{
		mnemonic: isa.DoubleOpName(op),
		byteMode: bw,
		operands: []string{src, dst},
	}, nil
}

func (c *cursor) decodeJump(word uint16, selfAddr uint16, labels map[uint16]string) decoded {
	cond := isa.JumpCond((word >> 10) & 0x7)
	offset := int32(int16(word<<6) >> 6)
	target := uint16(int32(selfAddr) + offset*2 + 2)
	return decoded{
		mnemonic: isa.JumpCondName(cond),
		operands: []string{hexOrLabelAddr(target, labels)},
	}
}

// sourceOperandText renders a 2-bit As / 4-bit register source field,
// the same field shared by double-operand sources and single-operand
// sole operands.
func (c *cursor) sourceOperandText(as uint8, reg int, labels map[uint16]string) (string, error) {
	if v, ok := isa.ConstGenValue(as, uint8(reg)); ok {
		return "#" + strconv.Itoa(int(v)), nil
	}
	switch as {
	case 0b00:
		return regName(reg), nil
	case 0b01:
		return c.indexedText(reg, labels)
	case 0b10:
		return "@" + regName(reg), nil
	default: // 0b11
		if reg == isa.RegPC {
			ext, err := c.fetch()
			if err != nil {
				return "", err
			}
			return "#" + hexWord(ext), nil
		}
		return "@" + regName(reg) + "+", nil
	}
}

// destOperandText renders a 1-bit Ad / 4-bit register destination
// field. Destinations only ever take register-direct or indexed form.
func (c *cursor) destOperandText(ad uint8, reg int, labels map[uint16]string) (string, error) {
	if ad == 0 {
		return regName(reg), nil
	}
	return c.indexedText(reg, labels)
}

// indexedText decodes the indexed/symbolic/absolute family, all of
// which consume one extension word: PC gives symbolic (PC-relative),
// SR gives absolute, anything else is plain indexed.
func (c *cursor) indexedText(reg int, labels map[uint16]string) (string, error) {
	switch reg {
	case isa.RegPC:
		base := c.addr
		ext, err := c.fetch()
		if err != nil {
			return "", err
		}
		target := base + ext
		return hexOrLabelAddr(target, labels), nil
	case isa.RegSR:
		ext, err := c.fetch()
		if err != nil {
			return "", err
		}
		return "&" + hexOrLabelAddr(ext, labels), nil
	default:
		ext, err := c.fetch()
		if err != nil {
			return "", err
		}
		return signedHex(ext) + "(" + regName(reg) + ")", nil
	}
}

var regAliasName = map[int]string{
	isa.RegPC: "pc",
	isa.RegSP: "sp",
	isa.RegSR: "sr",
	isa.RegCG: "cg",
}

func regName(reg int) string {
	if name, ok := regAliasName[reg]; ok {
		return name
	}
	return "r" + strconv.Itoa(reg)
}

func hexOrLabelAddr(addr uint16, labels map[uint16]string) string {
	if labels != nil {
		if name, ok := labels[addr]; ok {
			return name
		}
	}
	return hexWord(addr)
}

func hexWord(v uint16) string {
	const digits = "0123456789abcdef"
	b := make([]byte, 6)
	b[0] = '0'
	b[1] = 'x'
	for i := 0; i < 4; i++ {
		shift := uint(12 - 4*i)
		b[2+i] = digits[(v>>shift)&0xF]
	}
	return string(b)
}

func signedHex(v uint16) string {
	s := int16(v)
	if s < 0 {
		return "-0x" + hexWord(uint16(-int32(s)))[2:]
	}
	return hexWord(v)
}
