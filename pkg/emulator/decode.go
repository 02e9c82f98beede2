package emulator

import "github.com/master-g/msp430/pkg/isa"

// fetchExtWord reads the word at PC as an extension word and advances
// PC by 2, mirroring the real core's "decode consumes one more word"
// behavior for indexed/symbolic/absolute/immediate operands.
func (c *CPU) fetchExtWord() (uint16, error) {
	w, err := c.Mem.ReadWord(c.Regs.PC())
	if err != nil {
		return 0, err
	}
	if err := c.Regs.SetPC(c.Regs.PC() + 2); err != nil {
		return 0, err
	}
	return w, nil
}

// decodeSource decodes a 2-bit As / 4-bit register field shared by a
// double-operand instruction's source and a single-operand
// instruction's sole operand.
func (c *CPU) decodeSource(as uint8, reg int, byteMode bool) (uint16, WriteTarget, error) {
	if v, ok := isa.ConstGenValue(as, uint8(reg)); ok {
		return uint16(int16(v)), VoidTarget{}, nil
	}
	switch as {
	case 0b00:
		if reg == isa.RegSR && byteMode {
			return 0, nil, ErrByteAccessOnSR
		}
		v := c.Regs.Get(reg)
		if byteMode {
			v &= 0xFF
		}
		return v, RegisterTarget{Reg: reg}, nil
	case 0b01:
		addr, err := c.indexedAddr(reg)
		if err != nil {
			return 0, nil, err
		}
		v, err := c.readOperandMem(addr, byteMode)
		return v, MemoryTarget{Addr: addr}, err
	case 0b10:
		addr := c.Regs.Get(reg)
		v, err := c.readOperandMem(addr, byteMode)
		return v, MemoryTarget{Addr: addr}, err
	default: // 0b11
		if reg == isa.RegPC {
			ext, err := c.fetchExtWord()
			if byteMode {
				// The assembler stores a byte-mode immediate in the
				// high byte of the extension word.
				ext >>= 8
			}
			return ext, VoidTarget{}, err
		}
		addr := c.Regs.Get(reg)
		v, err := c.readOperandMem(addr, byteMode)
		if err != nil {
			return 0, nil, err
		}
		if err := c.autoIncrement(reg, byteMode); err != nil {
			return 0, nil, err
		}
		return v, MemoryTarget{Addr: addr}, nil
	}
}

// decodeDest decodes a 1-bit Ad / 4-bit register destination field.
func (c *CPU) decodeDest(ad uint8, reg int, byteMode bool) (uint16, WriteTarget, error) {
	if ad == 0 {
		if reg == isa.RegSR && byteMode {
			return 0, nil, ErrByteAccessOnSR
		}
		v := c.Regs.Get(reg)
		if byteMode {
			v &= 0xFF
		}
		return v, RegisterTarget{Reg: reg}, nil
	}
	addr, err := c.indexedAddr(reg)
	if err != nil {
		return 0, nil, err
	}
	v, err := c.readOperandMem(addr, byteMode)
	return v, MemoryTarget{Addr: addr}, err
}

// indexedAddr resolves the address for As/Ad == 1 (indexed, symbolic
// when reg is PC, absolute when reg is SR), consuming one extension
// word.
func (c *CPU) indexedAddr(reg int) (uint16, error) {
	switch reg {
	case isa.RegPC:
		base := c.Regs.PC()
		ext, err := c.fetchExtWord()
		if err != nil {
			return 0, err
		}
		return base + ext, nil
	case isa.RegSR:
		ext, err := c.fetchExtWord()
		return ext, err
	default:
		ext, err := c.fetchExtWord()
		if err != nil {
			return 0, err
		}
		return c.Regs.Get(reg) + ext, nil
	}
}

func (c *CPU) readOperandMem(addr uint16, byteMode bool) (uint16, error) {
	if byteMode {
		b, err := c.Mem.ReadByte(addr)
		return uint16(b), err
	}
	return c.Mem.ReadWord(addr)
}

// autoIncrement advances a register used in @Rn+ mode by 1 (byte) or
// 2 (word), per TI's convention. PC and SP always advance by 2, byte
// mode or not, so they never drift off a word boundary.
func (c *CPU) autoIncrement(reg int, byteMode bool) error {
	inc := uint16(2)
	if byteMode && reg != isa.RegPC && reg != isa.RegSP {
		inc = 1
	}
	v := c.Regs.Get(reg) + inc
	switch reg {
	case isa.RegPC:
		return c.Regs.SetPC(v)
	case isa.RegSP:
		return c.Regs.SetSP(v)
	default:
		c.Regs.Set(reg, v)
		return nil
	}
}
