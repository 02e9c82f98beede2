package emulator

import "testing"

func newTestCPU() (*CPU, *PlainMemory) {
	mem := NewPlainMemory()
	cpu := NewCPU(mem)
	cpu.Silent = true
	return cpu, mem
}

func TestCPU_SwpbWord(t *testing.T) {
	cpu, mem := newTestCPU()
	mem.WriteWord(0x0010, 0x1085)
	cpu.Regs.Set(5, 0x1234)
	if err := cpu.Reset(0x0010); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if err := cpu.Step(); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if got := cpu.Regs.Get(5); got != 0x3412 {
		t.Errorf("r5 = %#04x, want 0x3412", got)
	}
}

func TestCPU_JumpFromZero(t *testing.T) {
	cpu, mem := newTestCPU()
	mem.WriteWord(0x0000, 0x3c07)
	if err := cpu.Reset(0x0000); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if err := cpu.Step(); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if pc := cpu.Regs.PC(); pc != 0x0010 {
		t.Errorf("pc = %#04x, want 0x0010", pc)
	}
}

func TestCPU_AddSetsCarryAndZero(t *testing.T) {
	cpu, mem := newTestCPU()
	cpu.Regs.Set(5, 0xFFFF)
	cpu.Regs.Set(6, 1)

	// add r6,r5: opcode 5 (OpADD), src reg 6, dst reg 5, As=0 (reg direct), Ad=0.
	addWord := uint16(5<<12 | 6<<8 | 0<<7 | 0<<6 | 0<<4 | 5)
	mem.WriteWord(0x0000, addWord)
	if err := cpu.Reset(0x0000); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if err := cpu.Step(); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if got := cpu.Regs.Get(5); got != 0 {
		t.Errorf("r5 = %#04x, want 0", got)
	}
	if !cpu.Regs.Flag(FlagC) {
		t.Errorf("expected carry set on 0xffff+1 overflow")
	}
	if !cpu.Regs.Flag(FlagZ) {
		t.Errorf("expected zero flag set")
	}
}

func TestRegisters_PCMustStayWordAligned(t *testing.T) {
	var r Registers
	if err := r.SetPC(1); err == nil {
		t.Errorf("expected an error setting PC to an odd address")
	}
	if err := r.SetPC(2); err != nil {
		t.Errorf("unexpected error setting PC to an even address: %v", err)
	}
}

func TestCPU_StackOverflowOnPushAtZeroSP(t *testing.T) {
	cpu, mem := newTestCPU()
	// push r5, opcode 4 (OpPUSH), As=0, reg=5.
	pushWord := uint16(0x1000 | 4<<7 | 0<<6 | 0<<4 | 5)
	mem.WriteWord(0x0000, pushWord)
	if err := cpu.Reset(0x0000); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if err := cpu.Regs.SetSP(0); err != nil {
		t.Fatalf("could not zero SP: %v", err)
	}
	if err := cpu.Step(); err != ErrStackOverflow {
		t.Errorf("Step() = %v, want ErrStackOverflow", err)
	}
}
