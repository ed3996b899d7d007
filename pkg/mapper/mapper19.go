package mapper

import (
	"github.com/wrenfield/nesmapper/pkg/bank"
	"github.com/wrenfield/nesmapper/pkg/counter"
	"github.com/wrenfield/nesmapper/pkg/memory"
)

// Namco163 is mapper 19: eight independently switchable 1 KiB CHR
// windows, three switchable 8 KiB PRG windows with a fixed last bank,
// and a 15-bit up-counter IRQ addressed through a pair of low/high
// registers at 0x5000/0x5800 rather than the bank-select space.
type Namco163 struct {
	BaseMapper

	layout MapperLayout
	irq    *counter.DirectlySetCounter
}

func namco163PrgLayout() *memory.PrgLayout {
	l, err := memory.NewPrgLayout([]memory.PrgWindow{
		memory.NewPrgWindow(0x6000, 0x7FFF, memory.PrgBankWorkRam(bank.S0)),
		memory.NewPrgWindow(0x8000, 0x9FFF, memory.PrgBankRomSwitchable(bank.P0)),
		memory.NewPrgWindow(0xA000, 0xBFFF, memory.PrgBankRomSwitchable(bank.P1)),
		memory.NewPrgWindow(0xC000, 0xDFFF, memory.PrgBankRomSwitchable(bank.P2)),
		memory.NewPrgWindow(0xE000, 0xFFFF, memory.PrgBankRomFixed(bank.NumberFromI16(-1))),
	})
	if err != nil {
		panic(err)
	}
	return l
}

func namco163ChrLayout() *memory.ChrLayout {
	l, err := memory.NewChrLayout([]memory.ChrWindow{
		memory.NewChrWindow(0x0000, 0x03FF, memory.ChrBankRomSwitchable(bank.C0)),
		memory.NewChrWindow(0x0400, 0x07FF, memory.ChrBankRomSwitchable(bank.C1)),
		memory.NewChrWindow(0x0800, 0x0BFF, memory.ChrBankRomSwitchable(bank.C2)),
		memory.NewChrWindow(0x0C00, 0x0FFF, memory.ChrBankRomSwitchable(bank.C3)),
		memory.NewChrWindow(0x1000, 0x13FF, memory.ChrBankRomSwitchable(bank.C4)),
		memory.NewChrWindow(0x1400, 0x17FF, memory.ChrBankRomSwitchable(bank.C5)),
		memory.NewChrWindow(0x1800, 0x1BFF, memory.ChrBankRomSwitchable(bank.C6)),
		memory.NewChrWindow(0x1C00, 0x1FFF, memory.ChrBankRomSwitchable(bank.C7)),
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

var namco163ChrRegisters = [8]bank.ChrRegisterID{
	bank.C0, bank.C1, bank.C2, bank.C3, bank.C4, bank.C5, bank.C6, bank.C7,
}

func (m *Namco163) Layout() MapperLayout { return m.layout }

func (m *Namco163) WriteToCartridgeSpace(mem *Memory, addr uint16, value byte) {
	switch {
	case addr >= 0x5000 && addr <= 0x57FF:
		m.irq.SetCountLowByte(value)
	case addr >= 0x5800 && addr <= 0x5FFF:
		m.irq.SetCountHighByte(value & 0x7F)
		m.irq.SetEnabled(value&0x80 != 0)
	case addr >= 0x8000 && addr <= 0x9FFF:
		mem.Chr.Registers().Set(namco163ChrRegisters[(addr>>11)&0x3], bank.NumberFromU8(value))
	case addr >= 0xA000 && addr <= 0xBFFF:
		mem.Chr.Registers().Set(namco163ChrRegisters[4+((addr>>11)&0x3)], bank.NumberFromU8(value))
	case addr >= 0xC000 && addr <= 0xDFFF:
		// Nametable-vs-CHR select registers (0xC000-0xDFFF) are not wired:
		// this implementation always serves CIRAM for name tables, the
		// common case; the rarer CHR-ROM-as-nametable mode is unused by
		// the mapper roster this package targets.
		return
	case addr >= 0xE000 && addr <= 0xE7FF:
		mem.Prg.Registers().Set(bank.P0, bank.NumberFromU8(value&0x3F))
	case addr >= 0xE800 && addr <= 0xEFFF:
		mem.Prg.Registers().Set(bank.P1, bank.NumberFromU8(value&0x3F))
	case addr >= 0xF000 && addr <= 0xF7FF:
		mem.Prg.Registers().Set(bank.P2, bank.NumberFromU8(value&0x3F))
	}
}

func (m *Namco163) OnEndOfCpuCycle(mem *Memory, cycle int64) {
	m.irq.Tick()
}

func (m *Namco163) IrqCounterInfo() (IrqInfo, bool) {
	info := m.irq.Info()
	return IrqInfo{CountingEnabled: info.CountingEnabled, TriggeringEnabled: info.TriggeringEnabled, Count: info.Count, Pending: info.Count == 0x7FFF && info.TriggeringEnabled}, true
}

func newNamco163IrqCounter() *counter.DirectlySetCounter {
	return counter.NewBuilder().
		FullRange(0, 0x7FFF).
		Wraps(false).
		Step(1).
		AutoTriggerWhen(counter.EndingOn(0x7FFF)).
		WhenDisabledPrevent(counter.PreventCounting).
		BuildDirectlySet()
}

func newNamco163(prgRom, chrRom []byte) (Mapper, *Memory) {
	layout := MapperLayout{
		PrgLayouts:       []*memory.PrgLayout{namco163PrgLayout()},
		ChrLayouts:       []*memory.ChrLayout{namco163ChrLayout()},
		InitialMirroring: memory.Horizontal(),
		PrgRamSize:       8 * 1024,
		ChrRamSize:       chrRamSizeIfMissing(chrRom),
	}
	m := &Namco163{layout: layout, irq: newNamco163IrqCounter()}
	return m, NewMemory(layout, prgRom, chrRom)
}

func init() {
	Register(19, -1, newNamco163)
}
