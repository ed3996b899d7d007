package mapper

import (
	"github.com/wrenfield/nesmapper/pkg/bank"
	"github.com/wrenfield/nesmapper/pkg/memory"
)

// Cnrom is mapper 3 (CNROM): fixed PRG, a single switchable 8 KiB CHR
// window. Some boards have bus conflicts; newCnrom never sets
// busConflicts, so HasBusConflicts always reports false.
type Cnrom struct {
	BaseMapper
	layout       MapperLayout
	busConflicts bool
}

func cnromChrLayout() *memory.ChrLayout {
	layout, err := memory.NewChrLayout([]memory.ChrWindow{
		memory.NewChrWindow(0x0000, 0x1FFF, memory.ChrBankRomSwitchable(bank.C0)),
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

func (m *Cnrom) WriteToCartridgeSpace(mem *Memory, addr uint16, value byte) {
	if addr < 0x8000 {
		return
	}
	mem.Chr.Registers().Set(bank.C0, bank.NumberFromU8(value&0x03))
}

func (m *Cnrom) HasBusConflicts() bool { return m.busConflicts }
func (m *Cnrom) Layout() MapperLayout  { return m.layout }

func newCnrom(prgRom, chrRom []byte) (Mapper, *Memory) {
	layout := MapperLayout{
		PrgLayouts:       []*memory.PrgLayout{newNromLayout(len(prgRom))},
		ChrLayouts:       []*memory.ChrLayout{cnromChrLayout()},
		InitialMirroring: memory.Horizontal(),
	}
	m := &Cnrom{layout: layout}
	return m, NewMemory(layout, prgRom, chrRom)
}

func init() {
	Register(3, -1, newCnrom)
}
