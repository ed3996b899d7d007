package mapper

import (
	"github.com/wrenfield/nesmapper/pkg/bank"
	"github.com/wrenfield/nesmapper/pkg/counter"
	"github.com/wrenfield/nesmapper/pkg/memory"
)

// Vrc4 covers the VRC4 family (mappers 21, 23, 25): two switchable 8 KiB
// PRG windows, with a mode bit that swaps the P0 window between 0x8000
// and 0xC000 (the fixed second-to-last bank takes the other slot),
// eight independently switchable 1 KiB CHR windows loaded a nibble at a
// time, and a CPU-cycle IRQ counter with an optional scanline mode that
// ticks once every 113 CPU cycles. Boards in this family disagree only on which two address
// lines carry the low/high nibble select for CHR and IRQ writes; that
// wiring difference is what distinguishes mappers 21/23/25 and is not
// modeled here, all three register with the same address decode.
type Vrc4 struct {
	BaseMapper

	layout       MapperLayout
	prgSwapMode  bool
	irq          *counter.DirectlySetCounter
	irqPending   bool
	scanlineMode bool
	irqLatchLow  uint8
	irqLatchHigh uint8
}

func vrc4PrgLayout(swap bool) *memory.PrgLayout {
	var windows []memory.PrgWindow
	windows = append(windows, memory.NewPrgWindow(0x6000, 0x7FFF, memory.PrgBankWorkRam(bank.S0)))
	if !swap {
		windows = append(windows,
			memory.NewPrgWindow(0x8000, 0x9FFF, memory.PrgBankRomSwitchable(bank.P0)),
			memory.NewPrgWindow(0xA000, 0xBFFF, memory.PrgBankRomSwitchable(bank.P1)),
			memory.NewPrgWindow(0xC000, 0xDFFF, memory.PrgBankRomFixed(bank.NumberFromI16(-2))),
		)
	} else {
		windows = append(windows,
			memory.NewPrgWindow(0x8000, 0x9FFF, memory.PrgBankRomFixed(bank.NumberFromI16(-2))),
			memory.NewPrgWindow(0xA000, 0xBFFF, memory.PrgBankRomSwitchable(bank.P1)),
			memory.NewPrgWindow(0xC000, 0xDFFF, memory.PrgBankRomSwitchable(bank.P0)),
		)
	}
	windows = append(windows, memory.NewPrgWindow(0xE000, 0xFFFF, memory.PrgBankRomFixed(bank.NumberFromI16(-1))))
	l, err := memory.NewPrgLayout(windows)
	if err != nil {
		panic(err)
	}
	return l
}

var vrc4ChrRegisters = [8]bank.ChrRegisterID{
	bank.C0, bank.C1, bank.C2, bank.C3, bank.C4, bank.C5, bank.C6, bank.C7,
}

func vrc4ChrLayout() *memory.ChrLayout {
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

func (m *Vrc4) Layout() MapperLayout { return m.layout }

func (m *Vrc4) WriteToCartridgeSpace(mem *Memory, addr uint16, value byte) {
	reg := int((addr >> 1) & 1)
	switch {
	case addr < 0x8000:
		return
	case addr <= 0x8FFF:
		mem.Prg.Registers().Set(bank.P0, bank.NumberFromU8(value&0x1F))
	case addr <= 0x9FFF:
		if reg == 0 {
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
		} else {
			m.prgSwapMode = value&0x02 != 0
			mem.Prg.SetLayoutIndex(boolToLayoutIndex(m.prgSwapMode))
		}
	case addr <= 0xAFFF:
		mem.Prg.Registers().Set(bank.P1, bank.NumberFromU8(value&0x1F))
	case addr <= 0xEFFF:
		m.writeChrNibble(mem, addr, value)
	case addr <= 0xFFFF:
		m.writeIrqRegister(addr, value)
	}
}

func (m *Vrc4) writeChrNibble(mem *Memory, addr uint16, value byte) {
	slot := int((addr-0xB000)/0x1000)*2 + int((addr>>1)&1)
	if slot < 0 || slot >= 8 {
		return
	}
	id := vrc4ChrRegisters[slot]
	current := mem.Chr.Registers().Get(id).Index.ToRaw()
	if addr&1 == 0 {
		mem.Chr.Registers().Set(id, bank.NumberFromU16((current&0x1F0)|uint16(value&0x0F)))
	} else {
		mem.Chr.Registers().Set(id, bank.NumberFromU16((current&0x00F)|(uint16(value&0x1F)<<4)))
	}
}

func (m *Vrc4) writeIrqRegister(addr uint16, value byte) {
	switch addr & 0x03 {
	case 0:
		m.irqLatchLow = value & 0x0F
		m.irq.SetCountLowByte((m.irq.CountLowByte() & 0xF0) | m.irqLatchLow)
	case 1:
		m.irqLatchHigh = value & 0x0F
		m.irq.SetCountHighByte((m.irq.CountHighByte() & 0xF0) | m.irqLatchHigh)
	case 2:
		m.scanlineMode = value&0x04 != 0
		m.irq.SetEnabled(value&0x02 != 0)
		if value&0x02 != 0 {
			m.irq.SetCount(m.irqLatchLow | (m.irqLatchHigh << 4))
		}
		m.irqPending = false
	default:
		m.irqPending = false
	}
}

func boolToLayoutIndex(swap bool) int {
	if swap {
		return 1
	}
	return 0
}

// OnEndOfCpuCycle advances the IRQ counter once per CPU cycle in cycle
// mode, or, in scanline mode, only on cycles that are a multiple of 113.
// A scanline is 341 PPU cycles (113⅔ CPU cycles), so the 113-cycle period
// is an approximation; the counter's prescaler axis is not used.
func (m *Vrc4) OnEndOfCpuCycle(mem *Memory, cycle int64) {
	if m.scanlineMode {
		if cycle%113 != 0 {
			return
		}
	}
	result := m.irq.Tick()
	if result.Wrapped {
		m.irqPending = true
		m.irq.SetCount(m.irqLatchLow | m.irqLatchHigh<<4)
	}
}

func (m *Vrc4) IrqCounterInfo() (IrqInfo, bool) {
	info := m.irq.Info()
	return IrqInfo{CountingEnabled: info.CountingEnabled, TriggeringEnabled: info.TriggeringEnabled, Count: info.Count, Pending: m.irqPending}, true
}

func (m *Vrc4) IrqPending() bool { return m.irqPending }
func (m *Vrc4) AckIrq()          { m.irqPending = false }

func newVrc4IrqCounter() *counter.DirectlySetCounter {
	return counter.NewBuilder().
		FullRange(0, 0xFF).
		Wraps(true).
		Step(1).
		AutoTriggerWhen(counter.Wrapping()).
		WhenDisabledPrevent(counter.PreventCounting).
		BuildDirectlySet()
}

func newVrc4(prgRom, chrRom []byte) (Mapper, *Memory) {
	layout := MapperLayout{
		PrgLayouts:       []*memory.PrgLayout{vrc4PrgLayout(false), vrc4PrgLayout(true)},
		ChrLayouts:       []*memory.ChrLayout{vrc4ChrLayout()},
		InitialMirroring: memory.Vertical(),
		PrgRamSize:       8 * 1024,
		ChrRamSize:       chrRamSizeIfMissing(chrRom),
	}
	m := &Vrc4{layout: layout, irq: newVrc4IrqCounter()}
	return m, NewMemory(layout, prgRom, chrRom)
}

func init() {
	Register(21, -1, newVrc4)
	Register(23, -1, newVrc4)
	Register(25, -1, newVrc4)
}
