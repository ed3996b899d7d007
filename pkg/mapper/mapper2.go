package mapper

import (
	"github.com/wrenfield/nesmapper/pkg/bank"
	"github.com/wrenfield/nesmapper/pkg/memory"
)

// Uxrom is mapper 2 (UxROM): a switchable 16 KiB window at 0x8000 and a
// fixed-to-the-last-bank 16 KiB window at 0xC000. Some UxROM boards have
// bus conflicts; submapper 0 has none, submapper 2 does (per nesdev
// convention for this mapper's submapper split).
type Uxrom struct {
	BaseMapper
	layout       MapperLayout
	busConflicts bool
}

func uxromLayout() *memory.PrgLayout {
	layout, err := memory.NewPrgLayout([]memory.PrgWindow{
		memory.NewPrgWindow(0x6000, 0x7FFF, memory.PrgBankEmpty()),
		memory.NewPrgWindow(0x8000, 0xBFFF, memory.PrgBankRomSwitchable(bank.P0)),
		memory.NewPrgWindow(0xC000, 0xFFFF, memory.PrgBankRomFixed(bank.NumberFromI16(-1))),
	})
	if err != nil {
		panic(err)
	}
	return layout
}

func (m *Uxrom) WriteToCartridgeSpace(mem *Memory, addr uint16, value byte) {
	if addr < 0x8000 {
		return
	}
	mem.Prg.Registers().Set(bank.P0, bank.NumberFromU8(value))
}

func (m *Uxrom) HasBusConflicts() bool { return m.busConflicts }

func (m *Uxrom) Layout() MapperLayout { return m.layout }

func newUxromWithConflicts(busConflicts bool) Constructor {
	return func(prgRom, chrRom []byte) (Mapper, *Memory) {
		layout := MapperLayout{
			PrgLayouts:       []*memory.PrgLayout{uxromLayout()},
			ChrLayouts:       []*memory.ChrLayout{nromChrLayout()},
			InitialMirroring: memory.Vertical(),
			ChrRamSize:       chrRamSizeIfMissing(chrRom),
		}
		m := &Uxrom{layout: layout, busConflicts: busConflicts}
		return m, NewMemory(layout, prgRom, chrRom)
	}
}

func init() {
	Register(2, 0, newUxromWithConflicts(false))
	Register(2, 2, newUxromWithConflicts(true))
	Register(2, -1, newUxromWithConflicts(false))
}
