package mapper

import (
	"github.com/wrenfield/nesmapper/pkg/bank"
	"github.com/wrenfield/nesmapper/pkg/counter"
	"github.com/wrenfield/nesmapper/pkg/memory"
)

// Fme7 is mapper 69 (Sunsoft FME-7): sixteen internal registers selected
// by a command write to 0x8000 and loaded by a data write to 0xA000 —
// eight 1 KiB CHR banks, four PRG windows, a mirroring select, and a
// 16-bit down-counter IRQ ticking every CPU cycle.
type Fme7 struct {
	BaseMapper

	layout            MapperLayout
	selectedRegister  int
	irq               *counter.DirectlySetCounter
	irqPending        bool
	irqCountingMode   bool
	irqTriggerEnabled bool
}

func fme7PrgLayout() *memory.PrgLayout {
	l, err := memory.NewPrgLayout([]memory.PrgWindow{
		memory.NewPrgWindow(0x6000, 0x7FFF, memory.PrgBankRomRam(bank.P0, bank.S0, bank.R0)),
		memory.NewPrgWindow(0x8000, 0x9FFF, memory.PrgBankRomSwitchable(bank.P1)),
		memory.NewPrgWindow(0xA000, 0xBFFF, memory.PrgBankRomSwitchable(bank.P2)),
		memory.NewPrgWindow(0xC000, 0xDFFF, memory.PrgBankRomSwitchable(bank.P3)),
		memory.NewPrgWindow(0xE000, 0xFFFF, memory.PrgBankRomFixed(bank.NumberFromI16(-1))),
	})
	if err != nil {
		panic(err)
	}
	return l
}

func fme7ChrLayout() *memory.ChrLayout {
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

func (m *Fme7) Layout() MapperLayout { return m.layout }

func (m *Fme7) WriteToCartridgeSpace(mem *Memory, addr uint16, value byte) {
	switch {
	case addr < 0x8000:
		return
	case addr <= 0x9FFF:
		m.selectedRegister = int(value & 0x0F)
	case addr <= 0xBFFF:
		m.writeRegisterData(mem, value)
	}
}

func (m *Fme7) writeRegisterData(mem *Memory, value byte) {
	switch {
	case m.selectedRegister <= 0x7:
		mem.Chr.Registers().Set(bank.ChrRegisterID(m.selectedRegister), bank.NumberFromU8(value))
	case m.selectedRegister == 0x8:
		mem.Prg.Registers().Set(bank.P0, bank.NumberFromU8(value&0x3F))
		if value&0x40 == 0 {
			mem.Prg.Registers().SetMode(bank.R0, bank.ModeRom)
		} else {
			mem.Prg.Registers().SetMode(bank.R0, bank.ModeWorkRam)
		}
		if value&0x80 == 0 {
			mem.Prg.Registers().SetStatus(bank.S0, bank.StatusDisabled)
		} else {
			mem.Prg.Registers().SetStatus(bank.S0, bank.StatusReadWrite)
		}
	case m.selectedRegister == 0x9:
		mem.Prg.Registers().Set(bank.P1, bank.NumberFromU8(value&0x3F))
	case m.selectedRegister == 0xA:
		mem.Prg.Registers().Set(bank.P2, bank.NumberFromU8(value&0x3F))
	case m.selectedRegister == 0xB:
		mem.Prg.Registers().Set(bank.P3, bank.NumberFromU8(value&0x3F))
	case m.selectedRegister == 0xC:
		switch value & 0x03 {
		case 0:
			mem.Chr.SetMirroring(memory.Vertical())
		case 1:
			mem.Chr.SetMirroring(memory.Horizontal())
		case 2:
			mem.Chr.SetMirroring(memory.OneScreenLeft())
		default:
			mem.Chr.SetMirroring(memory.OneScreenRight())
		}
	case m.selectedRegister == 0xD:
		// Bit 7 enables the down-counter, bit 0 enables IRQ generation;
		// clearing bit 0 also acknowledges a pending IRQ.
		m.irqCountingMode = value&0x80 != 0
		m.irqTriggerEnabled = value&0x01 != 0
		m.irq.SetCountingEnabled(m.irqCountingMode)
		m.irq.SetTriggeringEnabled(m.irqTriggerEnabled)
		if !m.irqTriggerEnabled {
			m.irqPending = false
		}
	case m.selectedRegister == 0xE:
		m.irq.SetCountLowByte(value)
	case m.selectedRegister == 0xF:
		m.irq.SetCountHighByte(value)
	}
}

// OnEndOfCpuCycle ticks the 16-bit down-counter every CPU cycle while
// counting mode is enabled; IRQ asserts when the counter wraps through
// zero.
func (m *Fme7) OnEndOfCpuCycle(mem *Memory, cycle int64) {
	if !m.irqCountingMode {
		return
	}
	result := m.irq.Tick()
	if result.Wrapped && m.irqTriggerEnabled {
		m.irqPending = true
	}
}

func (m *Fme7) IrqCounterInfo() (IrqInfo, bool) {
	info := m.irq.Info()
	return IrqInfo{CountingEnabled: info.CountingEnabled, TriggeringEnabled: info.TriggeringEnabled, Count: info.Count, Pending: m.irqPending}, true
}

func (m *Fme7) IrqPending() bool { return m.irqPending }
func (m *Fme7) AckIrq()          { m.irqPending = false }

func newFme7IrqCounter() *counter.DirectlySetCounter {
	return counter.NewBuilder().
		FullRange(0, 0xFFFF).
		Wraps(true).
		Step(-1).
		AutoTriggerWhen(counter.Wrapping()).
		WhenDisabledPrevent(counter.PreventCounting).
		BuildDirectlySet()
}

func newFme7(prgRom, chrRom []byte) (Mapper, *Memory) {
	layout := MapperLayout{
		PrgLayouts:       []*memory.PrgLayout{fme7PrgLayout()},
		ChrLayouts:       []*memory.ChrLayout{fme7ChrLayout()},
		InitialMirroring: memory.Vertical(),
		PrgRamSize:       8 * 1024,
		ChrRamSize:       chrRamSizeIfMissing(chrRom),
	}
	m := &Fme7{layout: layout, irq: newFme7IrqCounter()}
	return m, NewMemory(layout, prgRom, chrRom)
}

func init() {
	Register(69, -1, newFme7)
}
