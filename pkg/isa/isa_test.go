package isa

import "testing"

func TestConstGenTable_RoundTrips(t *testing.T) {
	for lit, entry := range ConstGenTable {
		v, ok := ConstGenValue(entry.As, entry.Reg)
		if !ok {
			t.Fatalf("ConstGenValue(%v,%v) not found for literal %v", entry.As, entry.Reg, lit)
		}
		if v != lit {
			t.Errorf("ConstGenValue(%v,%v) = %v, want %v", entry.As, entry.Reg, v, lit)
		}
	}
}

func TestByteModeForbidden_MatchesSpecSet(t *testing.T) {
	want := map[SingleOp]bool{OpSWPB: true, OpSXT: true, OpCALL: true}
	for op := OpRRC; op <= OpRETI; op++ {
		if ByteModeForbidden(op) != want[op] {
			t.Errorf("ByteModeForbidden(%v) = %v, want %v", SingleOpName(op), ByteModeForbidden(op), want[op])
		}
	}
}

func TestDoubleOpName_RoundTripsThroughMnemonic(t *testing.T) {
	for name, op := range map[string]DoubleOp{"mov": OpMOV, "add": OpADD, "xor": OpXOR, "and": OpAND} {
		got, ok := IsDoubleOperandMnemonic(name)
		if !ok || got != op {
			t.Errorf("IsDoubleOperandMnemonic(%q) = (%v,%v), want (%v,true)", name, got, ok, op)
		}
		if DoubleOpName(op) != name {
			t.Errorf("DoubleOpName(%v) = %q, want %q", op, DoubleOpName(op), name)
		}
	}
}

func TestEmulatedInstructionNamed_Ret(t *testing.T) {
	e, ok := EmulatedInstructionNamed("ret")
	if !ok {
		t.Fatal("expected to find the ret emulated instruction")
	}
	if e.Real != "mov" {
		t.Errorf("ret rewrites to %q, want mov", e.Real)
	}
	if got := e.Operands(""); len(got) != 2 || got[0] != "@sp+" || got[1] != "pc" {
		t.Errorf("ret operands = %v, want [@sp+ pc]", got)
	}
}
