package bus

import (
	"testing"

	"github.com/wrenfield/nesmapper/pkg/apu"
	"github.com/wrenfield/nesmapper/pkg/clock"
	"github.com/wrenfield/nesmapper/pkg/mapper"
	"github.com/wrenfield/nesmapper/pkg/ppu"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	prgRom := make([]byte, 16*1024)
	prgRom[0] = 0x77
	m, mem, err := mapper.New(0, -1, prgRom, make([]byte, 8*1024))
	if err != nil {
		t.Fatalf("mapper.New: %v", err)
	}
	mem.RebuildIfDirty()
	p := ppu.New(m, mem)
	a := apu.New()
	return New(m, mem, p, a)
}

func TestInternalRamMirrorsEveryTwoKiB(t *testing.T) {
	b := newTestBus(t)
	b.Write(0x0000, 0xAB)
	if got := b.Read(0x0800); got != 0xAB {
		t.Fatalf("mirrored RAM read at 0x0800 = %#x, want 0xAB", got)
	}
	if got := b.Read(0x1800); got != 0xAB {
		t.Fatalf("mirrored RAM read at 0x1800 = %#x, want 0xAB", got)
	}
}

func TestCartridgeSpaceReadsThroughMapper(t *testing.T) {
	b := newTestBus(t)
	if got := b.Read(0x8000); got != 0x77 {
		t.Fatalf("Read(0x8000) = %#x, want 0x77", got)
	}
	// 16 KiB PRG mirrors into the upper half.
	if got := b.Read(0xC000); got != 0x77 {
		t.Fatalf("Read(0xC000) = %#x, want 0x77", got)
	}
}

func TestCartridgeWritesAreDiscardedByRomButOpenBusUpdates(t *testing.T) {
	b := newTestBus(t)
	b.Write(0x8000, 0x55)
	if b.openBus != 0x55 {
		t.Fatalf("open bus after ROM write = %#x, want 0x55", b.openBus)
	}
	if got := b.Read(0x8000); got != 0x77 {
		t.Fatalf("ROM write should be ignored: Read(0x8000) = %#x, want 0x77", got)
	}
}

func TestOamDmaCopies256BytesFromCpuPage(t *testing.T) {
	b := newTestBus(t)
	for i := 0; i < 256; i++ {
		b.ram[i] = byte(i)
	}
	b.Write(0x4014, 0x00) // page 0x00

	parity := clock.Get
	for i := 0; i < 1024 && b.oamDma.Active(); i++ {
		b.TickDma(parity)
		if parity == clock.Get {
			parity = clock.Put
		} else {
			parity = clock.Get
		}
	}
	if b.oamDma.Active() {
		t.Fatalf("expected OAM DMA to complete within 1024 half-cycles")
	}
	for i := 0; i < 256; i++ {
		b.Write(0x2003, byte(i)) // OAMADDR, does not itself touch OAM contents
		if got := b.Read(0x2004); got != byte(i) {
			t.Fatalf("OAM[%d] = %#x, want %#x", i, got, byte(i))
		}
	}
}

func TestControllerStrobeAndShiftOrder(t *testing.T) {
	b := newTestBus(t)
	b.Controller(0).SetButton(0, true) // ButtonA
	b.Write(0x4016, 0x01)
	b.Write(0x4016, 0x00)
	if got := b.Read(0x4016) & 0x01; got != 1 {
		t.Fatalf("first controller-1 bit = %d, want 1 (button A)", got)
	}
}
