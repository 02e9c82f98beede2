package emulator

import "github.com/master-g/msp430/pkg/isa"

// WriteTarget abstracts where a decoded operand's result can be
// written back: a register, a memory cell, or nowhere at all (the
// constant generator's synthesized values and immediate sources).
// CMP/BIT compute flags only and skip the write-back in execDouble.
// Modeling this as its own closed variant keeps the
// "can this operand be written to" question out of the execute step.
type WriteTarget interface {
	writeTargetTag()
	Write(cpu *CPU, v uint16, byteMode bool) error
}

// RegisterTarget writes back into register Reg.
type RegisterTarget struct{ Reg int }

func (RegisterTarget) writeTargetTag() {}

func (t RegisterTarget) Write(cpu *CPU, v uint16, byteMode bool) error {
	if t.Reg == isa.RegSR && byteMode {
		return ErrByteAccessOnSR
	}
	if byteMode {
		v &= 0xFF
	}
	switch t.Reg {
	case isa.RegPC:
		return cpu.Regs.SetPC(v)
	case isa.RegSP:
		return cpu.Regs.SetSP(v)
	default:
		cpu.Regs.Set(t.Reg, v)
		return nil
	}
}

// MemoryTarget writes back into memory at Addr.
type MemoryTarget struct{ Addr uint16 }

func (MemoryTarget) writeTargetTag() {}

func (t MemoryTarget) Write(cpu *CPU, v uint16, byteMode bool) error {
	if byteMode {
		return cpu.Mem.WriteByte(t.Addr, uint8(v))
	}
	return cpu.Mem.WriteWord(t.Addr, v)
}

// VoidTarget discards its write. Used for constant-generator sources
// and immediate (#value) sources.
type VoidTarget struct{}

func (VoidTarget) writeTargetTag()                {}
func (VoidTarget) Write(*CPU, uint16, bool) error { return nil }
