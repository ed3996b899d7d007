package mapper

import (
	"github.com/wrenfield/nesmapper/pkg/bank"
	"github.com/wrenfield/nesmapper/pkg/memory"
)

// Latched is the shared engine for mapper 9 (MMC2/PxROM) and mapper 10
// (MMC4/FxROM): CHR reads toggle one of two banks per 4 KiB half depending
// on which of two "latch" tile addresses the PPU most recently fetched
// from — the mechanism Punch-Out!! uses for its ring-side parallax. The
// two mappers differ only in how much PRG is bank-switched: MMC2 switches
// a single 8 KiB window and fixes the rest, MMC4 switches 16 KiB.
type Latched struct {
	BaseMapper

	layout MapperLayout
}

func latchedChrLayout() *memory.ChrLayout {
	l, err := memory.NewChrLayout([]memory.ChrWindow{
		memory.NewChrWindow(0x0000, 0x0FFF, memory.ChrBankRomViaMeta(bank.M0)),
		memory.NewChrWindow(0x1000, 0x1FFF, memory.ChrBankRomViaMeta(bank.M1)),
		memory.NewChrWindow(0x2000, 0x23FF, memory.ChrBankNameTable(0)),
		memory.NewChrWindow(0x2400, 0x27FF, memory.ChrBankNameTable(1)),
		memory.NewChrWindow(0x2800, 0x2BFF, memory.ChrBankNameTable(2)),
		memory.NewChrWindow(0x2C00, 0x2FFF, memory.ChrBankNameTable(3)),
	})
	if err != nil {
		panic(err)
	}
	return l
}

// Registers C0/C1 back the low (0x0000-0x0FFF) window's FD/FE banks,
// C2/C3 back the high (0x1000-0x1FFF) window's FD/FE banks. Meta
// registers M0/M1 point at whichever of the pair the latch currently
// selects.
const (
	latchLowFD  = bank.C0
	latchLowFE  = bank.C1
	latchHighFD = bank.C2
	latchHighFE = bank.C3
)

func mmc2PrgLayout() *memory.PrgLayout {
	l, err := memory.NewPrgLayout([]memory.PrgWindow{
		memory.NewPrgWindow(0x6000, 0x7FFF, memory.PrgBankEmpty()),
		memory.NewPrgWindow(0x8000, 0x9FFF, memory.PrgBankRomSwitchable(bank.P0)),
		memory.NewPrgWindow(0xA000, 0xBFFF, memory.PrgBankRomFixed(bank.NumberFromI16(-3))),
		memory.NewPrgWindow(0xC000, 0xDFFF, memory.PrgBankRomFixed(bank.NumberFromI16(-2))),
		memory.NewPrgWindow(0xE000, 0xFFFF, memory.PrgBankRomFixed(bank.NumberFromI16(-1))),
	})
	if err != nil {
		panic(err)
	}
	return l
}

func mmc4PrgLayout() *memory.PrgLayout {
	l, err := memory.NewPrgLayout([]memory.PrgWindow{
		memory.NewPrgWindow(0x6000, 0x7FFF, memory.PrgBankWorkRam(bank.S0)),
		memory.NewPrgWindow(0x8000, 0xBFFF, memory.PrgBankRomSwitchable(bank.P0)),
		memory.NewPrgWindow(0xC000, 0xFFFF, memory.PrgBankRomFixed(bank.NumberFromI16(-1))),
	})
	if err != nil {
		panic(err)
	}
	return l
}

func (m *Latched) Layout() MapperLayout { return m.layout }

func (m *Latched) WriteToCartridgeSpace(mem *Memory, addr uint16, value byte) {
	switch {
	case addr < 0xA000:
		return
	case addr <= 0xAFFF:
		mem.Prg.Registers().Set(bank.P0, bank.NumberFromU8(value&0x0F))
	case addr <= 0xBFFF:
		mem.Chr.Registers().Set(latchLowFD, bank.NumberFromU8(value&0x1F))
	case addr <= 0xCFFF:
		mem.Chr.Registers().Set(latchLowFE, bank.NumberFromU8(value&0x1F))
	case addr <= 0xDFFF:
		mem.Chr.Registers().Set(latchHighFD, bank.NumberFromU8(value&0x1F))
	case addr <= 0xEFFF:
		mem.Chr.Registers().Set(latchHighFE, bank.NumberFromU8(value&0x1F))
	default:
		if value&1 == 0 {
			mem.Chr.SetMirroring(memory.Vertical())
		} else {
			mem.Chr.SetMirroring(memory.Horizontal())
		}
	}
}

// OnPpuAddressChange watches for the PPU fetching one of the four
// latch-triggering tile addresses and repoints the corresponding meta
// register.
func (m *Latched) OnPpuAddressChange(mem *Memory, addr uint16) {
	switch addr & 0x1FF8 {
	case 0x0FD8:
		mem.Chr.Registers().SetMeta(bank.M0, latchLowFD)
	case 0x0FE8:
		mem.Chr.Registers().SetMeta(bank.M0, latchLowFE)
	case 0x1FD8:
		mem.Chr.Registers().SetMeta(bank.M1, latchHighFD)
	case 0x1FE8:
		mem.Chr.Registers().SetMeta(bank.M1, latchHighFE)
	default:
		return
	}
	mem.Chr.MarkDirty()
}

func newLatched(prgLayout *memory.PrgLayout, prgRamSize uint32) Constructor {
	return func(prgRom, chrRom []byte) (Mapper, *Memory) {
		layout := MapperLayout{
			PrgLayouts:       []*memory.PrgLayout{prgLayout},
			ChrLayouts:       []*memory.ChrLayout{latchedChrLayout()},
			InitialMirroring: memory.Vertical(),
			PrgRamSize:       prgRamSize,
			ChrRamSize:       chrRamSizeIfMissing(chrRom),
		}
		m := &Latched{layout: layout}
		return m, NewMemory(layout, prgRom, chrRom)
	}
}

func init() {
	Register(9, -1, newLatched(mmc2PrgLayout(), 0))
	Register(10, -1, newLatched(mmc4PrgLayout(), 8*1024))
}
