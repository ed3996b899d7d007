package bank

import "testing"

func TestPrgBankRegistersDefaults(t *testing.T) {
	regs := NewPrgBankRegisters()
	loc := regs.Get(P0)
	if loc.IsCiram() || loc.Index != ZeroNumber {
		t.Fatalf("expected P0 to default to index 0, got %+v", loc)
	}
	if regs.Status(S0) != StatusReadWrite {
		t.Fatalf("expected S0 to default to read-write, got %v", regs.Status(S0))
	}
	if regs.Mode(R0) != ModeRom {
		t.Fatalf("expected R0 to default to ROM, got %v", regs.Mode(R0))
	}
}

func TestPrgBankRegistersSetAndGet(t *testing.T) {
	regs := NewPrgBankRegisters()
	regs.Set(P3, NumberFromU8(7))
	loc := regs.Get(P3)
	if loc.IsCiram() || loc.Index.ToRaw() != 7 {
		t.Fatalf("expected P3 == 7, got %+v", loc)
	}

	// Writing the same value twice must leave the register unchanged.
	regs.Set(P3, NumberFromU8(7))
	loc2 := regs.Get(P3)
	if loc2 != loc {
		t.Fatalf("expected idempotent write, got %+v then %+v", loc, loc2)
	}
}

func TestPrgBankRegistersSetBitsMasksOnlyTargetedBits(t *testing.T) {
	regs := NewPrgBankRegisters()
	regs.Set(P0, NumberFromU16(0b1111_0000))
	regs.SetBits(P0, 0b0000_1010, 0b0000_1111)
	got := regs.Get(P0).Index.ToRaw()
	want := uint16(0b1111_1010)
	if got != want {
		t.Fatalf("SetBits: got %b, want %b", got, want)
	}
}

func TestPrgBankRegistersUpdate(t *testing.T) {
	regs := NewPrgBankRegisters()
	regs.Set(P1, NumberFromU8(3))
	regs.Update(P1, func(v uint16) uint16 { return v + 1 })
	if got := regs.Get(P1).Index.ToRaw(); got != 4 {
		t.Fatalf("Update: got %d, want 4", got)
	}
}

func TestChrBankRegistersMetaIndirection(t *testing.T) {
	regs := NewChrBankRegisters()
	regs.Set(C5, NumberFromU8(9))
	regs.SetMeta(M0, C5)
	loc := regs.GetFromMeta(M0)
	if loc.IsCiram() || loc.Index.ToRaw() != 9 {
		t.Fatalf("expected meta-register M0 to resolve through C5 to 9, got %+v", loc)
	}

	// Repointing the meta-register changes what it resolves to without
	// touching the underlying concrete registers.
	regs.Set(C6, NumberFromU8(2))
	regs.SetMeta(M0, C6)
	if got := regs.GetFromMeta(M0).Index.ToRaw(); got != 2 {
		t.Fatalf("expected meta-register M0 to now resolve through C6 to 2, got %d", got)
	}
}

func TestSetToCiramSide(t *testing.T) {
	regs := NewChrBankRegisters()
	regs.SetToCiramSide(C12, CiramRight)
	loc := regs.Get(C12)
	if !loc.IsCiram() || loc.Side != CiramRight {
		t.Fatalf("expected C12 to be CIRAM right side, got %+v", loc)
	}
}

func TestNumberFromI16WrapsModuloBankCount(t *testing.T) {
	last := NumberFromI16(-1)
	if got := last.Resolve(64); got != 63 {
		t.Fatalf("expected -1 to resolve to the last of 64 banks (63), got %d", got)
	}

	secondLast := NumberFromI16(-2)
	if got := secondLast.Resolve(64); got != 62 {
		t.Fatalf("expected -2 to resolve to 62 of 64 banks, got %d", got)
	}
}

func TestNumberResolveWrapsOversizedRegisterValues(t *testing.T) {
	n := NumberFromU16(0xFFFF)
	if got := n.Resolve(4); got != 3 {
		t.Fatalf("expected 0xFFFF mod 4 == 3, got %d", got)
	}
}
