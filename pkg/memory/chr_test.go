package memory

import (
	"testing"

	"github.com/wrenfield/nesmapper/pkg/bank"
)

func ntLayout(t *testing.T) *ChrLayout {
	t.Helper()
	layout, err := NewChrLayout([]ChrWindow{
		NewChrWindow(0x0000, 0x1FFF, ChrBankRamSwitchable(bank.C0, bank.S0)),
		NewChrWindow(0x2000, 0x23FF, ChrBankNameTable(0)),
		NewChrWindow(0x2400, 0x27FF, ChrBankNameTable(1)),
		NewChrWindow(0x2800, 0x2BFF, ChrBankNameTable(2)),
		NewChrWindow(0x2C00, 0x2FFF, ChrBankNameTable(3)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return layout
}

// In horizontal
// mirroring, a PPU write to 0x2000 must be observable at 0x2400 but not
// at 0x2800.
func TestHorizontalMirroringObservability(t *testing.T) {
	mem := NewChrMemory(make([]byte, 8*1024), make([]byte, 8*1024), []*ChrLayout{ntLayout(t)}, Horizontal())

	mem.Write(0x2000, 0xAA)
	if got := mem.Peek(0x2400).Value; got != 0xAA {
		t.Fatalf("expected horizontal mirroring to mirror 0x2000 at 0x2400, got 0x%02X", got)
	}
	if got := mem.Peek(0x2800).Value; got == 0xAA {
		t.Fatalf("expected 0x2800 to NOT mirror 0x2000 under horizontal mirroring")
	}
}

func TestMirroringToggleRoundTripLeavesMapUnchanged(t *testing.T) {
	mem := NewChrMemory(make([]byte, 8*1024), make([]byte, 8*1024), []*ChrLayout{ntLayout(t)}, Horizontal())

	before := mem.PageIdAt(0x2000)
	mem.SetMirroring(Vertical())
	mem.RebuildIfDirty()
	mem.SetMirroring(Horizontal())
	mem.RebuildIfDirty()
	after := mem.PageIdAt(0x2000)

	if before != after {
		t.Fatalf("expected toggling A->B->A to restore the original resolution, got %+v then %+v", before, after)
	}
}

// Sub-page windows share one 1 KiB map slot: each resolves independently
// at 128-byte granularity, and switching one window's register moves only
// that window's slice of the page.
func TestSubPageWindowsResolveIndependentlyWithinOneSlot(t *testing.T) {
	layout, err := NewChrLayout([]ChrWindow{
		NewChrWindow(0x0000, 0x00FF, ChrBankRomSwitchable(bank.C0)),
		NewChrWindow(0x0100, 0x01FF, ChrBankRomSwitchable(bank.C1)),
		NewChrWindow(0x0200, 0x03FF, ChrBankRomSwitchable(bank.C2)),
		NewChrWindow(0x0400, 0x07FF, ChrBankRomSwitchable(bank.C3)),
		NewChrWindow(0x0800, 0x0FFF, ChrBankRomSwitchable(bank.C4)),
		NewChrWindow(0x1000, 0x1FFF, ChrBankRomSwitchable(bank.C5)),
		NewChrWindow(0x2000, 0x23FF, ChrBankNameTable(0)),
		NewChrWindow(0x2400, 0x27FF, ChrBankNameTable(1)),
		NewChrWindow(0x2800, 0x2BFF, ChrBankNameTable(2)),
		NewChrWindow(0x2C00, 0x2FFF, ChrBankNameTable(3)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rom := make([]byte, 8*1024)
	for i := range rom {
		rom[i] = byte(i / 128) // every 128-byte chunk is tagged with its index
	}
	mem := NewChrMemory(rom, nil, []*ChrLayout{layout}, Horizontal())

	mem.Registers().Set(bank.C0, 3) // 256-byte banks: chunk 6 starts the window
	mem.Registers().Set(bank.C1, 0)
	mem.RebuildIfDirty()

	if got := mem.Peek(0x0000).Value; got != 6 {
		t.Fatalf("sub-page window C0=3 resolved to chunk %d at 0x0000, want 6", got)
	}
	if got := mem.Peek(0x0080).Value; got != 7 {
		t.Fatalf("second half of the C0 window = chunk %d, want 7", got)
	}
	if got := mem.Peek(0x0100).Value; got != 0 {
		t.Fatalf("neighboring sub-page window C1=0 = chunk %d, want 0 (unaffected by C0)", got)
	}

	mem.Registers().Set(bank.C1, 5)
	mem.RebuildIfDirty()
	if got := mem.Peek(0x0100).Value; got != 10 {
		t.Fatalf("after C1=5, 0x0100 = chunk %d, want 10", got)
	}
	if got := mem.Peek(0x0000).Value; got != 6 {
		t.Fatalf("C0's window moved when C1 changed: chunk %d, want 6", got)
	}
}

func TestChrWriteThenPeekRoundTrip(t *testing.T) {
	mem := NewChrMemory(nil, make([]byte, 8*1024), []*ChrLayout{ntLayout(t)}, Horizontal())

	mem.Registers().Set(bank.C0, bank.ZeroNumber)
	mem.RebuildIfDirty()
	mem.Write(0x0010, 0x55)
	if got := mem.Peek(0x0010).Value; got != 0x55 {
		t.Fatalf("expected write/peek round trip on CHR RAM, got 0x%02X", got)
	}
}
