package mapper

import (
	"github.com/wrenfield/nesmapper/pkg/bank"
	"github.com/wrenfield/nesmapper/pkg/memory"
)

// Nrom is mapper 0: no registers, no bank switching. 16 KiB PRG ROM
// mirrors into both halves of 0x8000-0xFFFF; 32 KiB PRG ROM fills it
// directly.
type Nrom struct {
	BaseMapper
	layout MapperLayout
}

func newNromLayout(prgSize int) *memory.PrgLayout {
	var windows []memory.PrgWindow
	windows = append(windows, memory.NewPrgWindow(0x6000, 0x7FFF, memory.PrgBankWorkRam(bank.S0)))
	if prgSize <= 16*1024 {
		windows = append(windows,
			memory.NewPrgWindow(0x8000, 0xBFFF, memory.PrgBankRomFixed(0)),
			memory.NewPrgWindow(0xC000, 0xFFFF, memory.PrgBankMirrorOf(0x8000)),
		)
	} else {
		windows = append(windows, memory.NewPrgWindow(0x8000, 0xFFFF, memory.PrgBankRomFixed(0)))
	}
	layout, err := memory.NewPrgLayout(windows)
	if err != nil {
		panic(err)
	}
	return layout
}

func nromChrLayout() *memory.ChrLayout {
	layout, err := memory.NewChrLayout([]memory.ChrWindow{
		memory.NewChrWindow(0x0000, 0x1FFF, memory.ChrBankRomFixed(0)),
		memory.NewChrWindow(0x2000, 0x23FF, memory.ChrBankNameTable(0)),
		memory.NewChrWindow(0x2400, 0x27FF, memory.ChrBankNameTable(1)),
		memory.NewChrWindow(0x2800, 0x2BFF, memory.ChrBankNameTable(2)),
		memory.NewChrWindow(0x2C00, 0x2FFF, memory.ChrBankNameTable(3)),
	})
	if err != nil {
		panic(err)
	}
	return layout
}

func (m *Nrom) Layout() MapperLayout { return m.layout }

func (m *Nrom) WriteToCartridgeSpace(mem *Memory, addr uint16, value byte) {}

func newNrom(prgRom, chrRom []byte) (Mapper, *Memory) {
	layout := MapperLayout{
		PrgLayouts:       []*memory.PrgLayout{newNromLayout(len(prgRom))},
		ChrLayouts:       []*memory.ChrLayout{nromChrLayout()},
		InitialMirroring: memory.Horizontal(),
		PrgRamSize:       8 * 1024,
		ChrRamSize:       chrRamSizeIfMissing(chrRom),
	}
	m := &Nrom{layout: layout}
	return m, NewMemory(layout, prgRom, chrRom)
}

func chrRamSizeIfMissing(chrRom []byte) uint32 {
	if len(chrRom) == 0 {
		return 8 * 1024
	}
	return 0
}

func init() {
	Register(0, -1, newNrom)
}
