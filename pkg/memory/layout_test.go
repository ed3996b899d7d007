package memory

import "testing"

func TestNewPrgLayoutRejectsGap(t *testing.T) {
	_, err := NewPrgLayout([]PrgWindow{
		NewPrgWindow(0x6000, 0x7FFF, PrgBankEmpty()),
		NewPrgWindow(0x8000, 0xBFFF, PrgBankRomFixed(0)),
		// gap: 0xC000-0xFEFF missing
		NewPrgWindow(0xFF00, 0xFFFF, PrgBankRomFixed(0)),
	})
	if err == nil {
		t.Fatal("expected an error for a layout with a gap")
	}
}

func TestNewPrgLayoutRejectsOverlap(t *testing.T) {
	_, err := NewPrgLayout([]PrgWindow{
		NewPrgWindow(0x6000, 0x9FFF, PrgBankEmpty()),
		NewPrgWindow(0x8000, 0xFFFF, PrgBankRomFixed(0)),
	})
	if err == nil {
		t.Fatal("expected an error for overlapping windows")
	}
}

func TestNewPrgLayoutRejectsWrongBaseOrTop(t *testing.T) {
	_, err := NewPrgLayout([]PrgWindow{
		NewPrgWindow(0x8000, 0xFFFF, PrgBankRomFixed(0)),
	})
	if err == nil {
		t.Fatal("expected an error for a layout not starting at 0x6000")
	}
}

func TestNewPrgLayoutRejectsMirrorChain(t *testing.T) {
	_, err := NewPrgLayout([]PrgWindow{
		NewPrgWindow(0x6000, 0x9FFF, PrgBankMirrorOf(0xA000)),
		NewPrgWindow(0xA000, 0xDFFF, PrgBankMirrorOf(0xE000)),
		NewPrgWindow(0xE000, 0xFFFF, PrgBankRomFixed(0)),
	})
	if err == nil {
		t.Fatal("expected an error for a mirror targeting another mirror")
	}
}

func TestNewPrgLayoutAcceptsValidNrom128(t *testing.T) {
	layout, err := NewPrgLayout([]PrgWindow{
		NewPrgWindow(0x6000, 0x7FFF, PrgBankEmpty()),
		NewPrgWindow(0x8000, 0xBFFF, PrgBankRomFixed(0)),
		NewPrgWindow(0xC000, 0xFFFF, PrgBankMirrorOf(0x8000)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(layout.Windows()) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(layout.Windows()))
	}
}

func TestNewChrLayoutAcceptsValidCnrom(t *testing.T) {
	layout, err := NewChrLayout([]ChrWindow{
		NewChrWindow(0x0000, 0x1FFF, ChrBankRomFixed(0)),
		NewChrWindow(0x2000, 0x23FF, ChrBankNameTable(0)),
		NewChrWindow(0x2400, 0x27FF, ChrBankNameTable(1)),
		NewChrWindow(0x2800, 0x2BFF, ChrBankNameTable(2)),
		NewChrWindow(0x2C00, 0x2FFF, ChrBankNameTable(3)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(layout.Windows()) != 5 {
		t.Fatalf("expected 5 windows, got %d", len(layout.Windows()))
	}
}
