package mapper

import (
	"github.com/wrenfield/nesmapper/pkg/bank"
	"github.com/wrenfield/nesmapper/pkg/memory"
)

// Axrom is mapper 7 (AxROM): a single switchable 32 KiB PRG window, plus
// a single-screen mirroring select packed into the same register write.
type Axrom struct {
	BaseMapper
	layout MapperLayout
}

func axromPrgLayout() *memory.PrgLayout {
	layout, err := memory.NewPrgLayout([]memory.PrgWindow{
		memory.NewPrgWindow(0x6000, 0x7FFF, memory.PrgBankEmpty()),
		memory.NewPrgWindow(0x8000, 0xFFFF, memory.PrgBankRomSwitchable(bank.P0)),
	})
	if err != nil {
		panic(err)
	}
	return layout
}

func (m *Axrom) WriteToCartridgeSpace(mem *Memory, addr uint16, value byte) {
	if addr < 0x8000 {
		return
	}
	mem.Prg.Registers().Set(bank.P0, bank.NumberFromU8(value&0x07))
	if value&0x10 == 0 {
		mem.Chr.SetMirroring(memory.OneScreenLeft())
	} else {
		mem.Chr.SetMirroring(memory.OneScreenRight())
	}
}

func (m *Axrom) Layout() MapperLayout { return m.layout }

func newAxrom(prgRom, chrRom []byte) (Mapper, *Memory) {
	layout := MapperLayout{
		PrgLayouts:       []*memory.PrgLayout{axromPrgLayout()},
		ChrLayouts:       []*memory.ChrLayout{nromChrLayout()},
		InitialMirroring: memory.OneScreenLeft(),
		ChrRamSize:       chrRamSizeIfMissing(chrRom),
	}
	m := &Axrom{layout: layout}
	return m, NewMemory(layout, prgRom, chrRom)
}

func init() {
	Register(7, -1, newAxrom)
}
