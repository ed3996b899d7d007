package memory

import (
	"testing"

	"github.com/wrenfield/nesmapper/pkg/bank"
)

func nrom128Layout(t *testing.T) *PrgLayout {
	t.Helper()
	layout, err := NewPrgLayout([]PrgWindow{
		NewPrgWindow(0x6000, 0x7FFF, PrgBankEmpty()),
		NewPrgWindow(0x8000, 0xBFFF, PrgBankRomFixed(0)),
		NewPrgWindow(0xC000, 0xFFFF, PrgBankMirrorOf(0x8000)),
	})
	if err != nil {
		t.Fatalf("unexpected error building layout: %v", err)
	}
	return layout
}

// NROM-128 with 16 KiB PRG: peek(0x8000) and peek(0xC000) return the
// same byte, and writes to 0x8000-0xFFFF are discarded.
func TestNrom128MirrorsLastBank(t *testing.T) {
	rom := make([]byte, 16*1024)
	rom[0] = 0xAB
	rom[0x3FFF] = 0xCD

	mem := NewPrgMemory(rom, nil, nil, []*PrgLayout{nrom128Layout(t)})

	low := mem.Peek(0x8000)
	high := mem.Peek(0xC000)
	if low != high {
		t.Fatalf("expected 0x8000 and 0xC000 to mirror, got %+v vs %+v", low, high)
	}
	if low.Value != 0xAB {
		t.Fatalf("expected 0xAB at 0x8000, got 0x%02X", low.Value)
	}

	mem.Write(0x8000, 0x99)
	after := mem.Peek(0x8000)
	if after.Value != 0xAB {
		t.Fatalf("expected write to ROM to be discarded, got 0x%02X", after.Value)
	}
}

// UxROM-shaped layout: switchable 16 KiB window at 0x8000 + fixed last
// bank at 0xC000.
func uxromLayout(t *testing.T) *PrgLayout {
	t.Helper()
	layout, err := NewPrgLayout([]PrgWindow{
		NewPrgWindow(0x6000, 0x7FFF, PrgBankEmpty()),
		NewPrgWindow(0x8000, 0xBFFF, PrgBankRomSwitchable(bank.P0)),
		NewPrgWindow(0xC000, 0xFFFF, PrgBankRomFixed(bank.NumberFromI16(-1))),
	})
	if err != nil {
		t.Fatalf("unexpected error building layout: %v", err)
	}
	return layout
}

func TestUxromBankSwitchAndLastBankFixed(t *testing.T) {
	const bankSize = 16 * 1024
	rom := make([]byte, bankSize*8)
	for b := 0; b < 8; b++ {
		rom[b*bankSize] = byte(b)
	}

	mem := NewPrgMemory(rom, nil, nil, []*PrgLayout{uxromLayout(t)})

	mem.Registers().Set(bank.P0, bank.NumberFromU8(5))
	mem.RebuildIfDirty()
	if got := mem.Peek(0x8000).Value; got != 5 {
		t.Fatalf("expected switchable window to read bank 5, got %d", got)
	}
	if got := mem.Peek(0xC000).Value; got != 7 {
		t.Fatalf("expected fixed window to always read the last bank (7), got %d", got)
	}

	// Idempotence: writing the same register value twice must leave the
	// resolved map unchanged.
	before := mem.Peek(0x8000)
	mem.Registers().Set(bank.P0, bank.NumberFromU8(5))
	mem.RebuildIfDirty()
	after := mem.Peek(0x8000)
	if before != after {
		t.Fatalf("expected idempotent register write, got %+v then %+v", before, after)
	}
}

func TestRomUndersizedMirrorsLowBanksIntoHighSelections(t *testing.T) {
	const bankSize = 16 * 1024
	rom := make([]byte, bankSize*2) // only 2 banks exist
	rom[0*bankSize] = 0
	rom[1*bankSize] = 1

	mem := NewPrgMemory(rom, nil, nil, []*PrgLayout{uxromLayout(t)})

	// Register can address up to 256 banks (u8), but only 2 exist: bank 4
	// should fold to bank 4 % 2 == 0.
	mem.Registers().Set(bank.P0, bank.NumberFromU8(4))
	mem.RebuildIfDirty()
	if got := mem.Peek(0x8000).Value; got != 0 {
		t.Fatalf("expected bank 4 to fold to bank 0 on a 2-bank ROM, got %d", got)
	}
}

func TestWriteThenPeekRoundTripsOnWritableRam(t *testing.T) {
	layout, err := NewPrgLayout([]PrgWindow{
		NewPrgWindow(0x6000, 0x7FFF, PrgBankWorkRam(bank.S0)),
		NewPrgWindow(0x8000, 0xBFFF, PrgBankRomFixed(0)),
		NewPrgWindow(0xC000, 0xFFFF, PrgBankMirrorOf(0x8000)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rom := make([]byte, 16*1024)
	workRam := make([]byte, 8*1024)
	mem := NewPrgMemory(rom, workRam, nil, []*PrgLayout{layout})

	mem.Write(0x6010, 0x42)
	if got := mem.Peek(0x6010).Value; got != 0x42 {
		t.Fatalf("expected write/peek round trip on RAM, got 0x%02X", got)
	}

	mem.Registers().SetStatus(bank.S0, bank.StatusReadOnly)
	mem.RebuildIfDirty()
	mem.Write(0x6010, 0x99)
	if got := mem.Peek(0x6010).Value; got != 0x42 {
		t.Fatalf("expected write to a read-only-status RAM to be dropped, got 0x%02X", got)
	}
}
