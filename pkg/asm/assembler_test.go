package asm

import "testing"

type noIncludes struct{}

func (noIncludes) ReadFile(string) (string, bool) { return "", false }

func wordAt(img *Image, addr uint16) (uint16, bool) {
	for _, seg := range img.Segments {
		if addr >= seg.Start && addr < seg.End() {
			return seg.Words[(addr-seg.Start)/2], true
		}
	}
	return 0, false
}

func TestAssemble_MovImmediateToSP(t *testing.T) {
	r := Assemble("mov #0x4400 sp\nreti", "t", noIncludes{}, 0)
	if r.Failed() {
		t.Fatalf("assembly failed: diags=%v errs=%v", r.Diagnostics, r.CompileErrs)
	}
	w0, ok := wordAt(r.Image, 0)
	if !ok || w0 != 0x4031 {
		t.Errorf("word at 0 = %#04x, ok=%v, want 0x4031", w0, ok)
	}
	w1, ok := wordAt(r.Image, 2)
	if !ok || w1 != 0x4400 {
		t.Errorf("word at 2 = %#04x, ok=%v, want 0x4400", w1, ok)
	}
	w2, ok := wordAt(r.Image, 4)
	if !ok || w2 != 0x1300 {
		t.Errorf("word at 4 = %#04x, ok=%v, want 0x1300 (reti)", w2, ok)
	}
}

func TestAssemble_Swpb(t *testing.T) {
	r := Assemble("swpb r5", "t", noIncludes{}, 0)
	if r.Failed() {
		t.Fatalf("assembly failed: diags=%v errs=%v", r.Diagnostics, r.CompileErrs)
	}
	w, ok := wordAt(r.Image, 0)
	if !ok || w != 0x1085 {
		t.Errorf("word at 0 = %#04x, ok=%v, want 0x1085", w, ok)
	}
}

func TestAssemble_MacroExpandsToEquivalentBinary(t *testing.T) {
	withMacro := Assemble(".macro test(a,b)\nmov {a} {b}\n.endmacro\ntest(r5, r6)", "t", noIncludes{}, 0)
	plain := Assemble("mov r5 r6", "t", noIncludes{}, 0)
	if withMacro.Failed() || plain.Failed() {
		t.Fatalf("assembly failed: macro diags=%v plain diags=%v", withMacro.Diagnostics, plain.Diagnostics)
	}
	w0, _ := wordAt(withMacro.Image, 0)
	w1, _ := wordAt(plain.Image, 0)
	if w0 != w1 {
		t.Errorf("macro expansion = %#04x, plain = %#04x, want equal", w0, w1)
	}
}

func TestAssemble_SelfReferentialMacroHitsRecursionLimit(t *testing.T) {
	src := ".macro test(a,b)\ntest(b, a)\n.endmacro\ntest(r5, r6)"
	r := Assemble(src, "t", noIncludes{}, 0)
	if !r.Failed() {
		t.Fatalf("expected assembly to fail on unbounded macro recursion")
	}
	found := false
	for _, d := range r.Diagnostics {
		if d.Message == "macro recursion limit reached" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected at least one diagnostic for the recursion limit")
	}
}

func TestAssemble_JumpOffsetFromZero(t *testing.T) {
	r := Assemble("jmp 0x10", "t", noIncludes{}, 0)
	if r.Failed() {
		t.Fatalf("assembly failed: diags=%v errs=%v", r.Diagnostics, r.CompileErrs)
	}
	w, ok := wordAt(r.Image, 0)
	if !ok || w != 0x3c07 {
		t.Errorf("word at 0 = %#04x, ok=%v, want 0x3c07", w, ok)
	}
}

func TestAssemble_ConstantGeneratorNoExtensionWord(t *testing.T) {
	for _, lit := range []string{"#0", "#1", "#2", "#4", "#8", "#-1"} {
		r := Assemble("mov "+lit+" r5\nmov r6 r7", "t", noIncludes{}, 0)
		if r.Failed() {
			t.Fatalf("assembly of %q failed: %v", lit, r.Diagnostics)
		}
		w0, _ := wordAt(r.Image, 0)
		w1, _ := wordAt(r.Image, 2)
		if w1 != 0x4607 {
			t.Errorf("%q: expected the second mov at word 2, constant generator must not consume an extension word", lit)
		}
		_ = w0
	}
}
