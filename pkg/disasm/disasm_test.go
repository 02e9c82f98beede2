package disasm

import "testing"

type wordMem map[uint16]uint16

func (m wordMem) ReadWord(addr uint16) (uint16, error) {
	return m[addr], nil
}

func TestDisassemble_Swpb(t *testing.T) {
	d, err := Disassemble(wordMem{0x0010: 0x1085}, 0x0010, 0x0010, nil)
	if err != nil {
		t.Fatalf("disassemble failed: %v", err)
	}
	if len(d.Index) != 1 || d.Lines[0x0010] != "swpb r5" {
		t.Errorf("got %q, want %q", d.Lines[0x0010], "swpb r5")
	}
}

func TestDisassemble_RetCollapsesFromMovSpPc(t *testing.T) {
	// mov @sp+,pc: As=11 (autoincrement), src=sp(1), Ad=0, dst=pc(0).
	word := uint16(4<<12 | 1<<8 | 0<<7 | 0<<6 | 3<<4 | 0)
	d, err := Disassemble(wordMem{0x0010: word}, 0x0010, 0x0010, nil)
	if err != nil {
		t.Fatalf("disassemble failed: %v", err)
	}
	if got := d.Lines[0x0010]; got != "ret" {
		t.Errorf("got %q, want %q", got, "ret")
	}
}

func TestDisassemble_SkipsPaddingWords(t *testing.T) {
	mem := wordMem{0x0010: 0, 0x0012: 0x1085}
	d, err := Disassemble(mem, 0x0010, 0x0012, nil)
	if err != nil {
		t.Fatalf("disassemble failed: %v", err)
	}
	if len(d.Index) != 1 || d.Index[0] != 0x0012 {
		t.Errorf("expected only the non-zero word to produce a line, got index=%v", d.Index)
	}
}

func TestDisassemble_JumpRendersKnownLabel(t *testing.T) {
	d, err := Disassemble(wordMem{0x0000: 0x3c07}, 0x0000, 0x0000, map[uint16]string{0x0010: "loop"})
	if err != nil {
		t.Fatalf("disassemble failed: %v", err)
	}
	if got := d.Lines[0x0000]; got != "jmp loop" {
		t.Errorf("got %q, want %q", got, "jmp loop")
	}
}
