package mapper

import (
	"github.com/wrenfield/nesmapper/pkg/bank"
	"github.com/wrenfield/nesmapper/pkg/bitfield"
	"github.com/wrenfield/nesmapper/pkg/counter"
	"github.com/wrenfield/nesmapper/pkg/memory"
)

// Mmc3 is mapper 4: 8 switchable
// bank registers (R0-R7) selected by a bank-select write and loaded by a
// following bank-data write, two swappable PRG/CHR layout halves, PRG-RAM
// write protect, and a scanline IRQ counter edge-triggered off the PPU's
// A12 address line.
type Mmc3 struct {
	BaseMapper

	layout MapperLayout

	selectedRegister int
	prgMode          int // 0: 0x8000 switchable; 1: 0xC000 switchable
	chrMode          int // 0: 2KiB-first; 1: 1KiB-first

	irq              *counter.ReloadDrivenCounter
	irqPending       bool
	lastA12          bool
	a12SuppressUntil int64
	cycle            int64
}

const mmc3A12Mask = 0x1000

func mmc3PrgLayout(mode int) *memory.PrgLayout {
	var windows []memory.PrgWindow
	windows = append(windows, memory.NewPrgWindow(0x6000, 0x7FFF, memory.PrgBankWorkRam(bank.S0)))
	if mode == 0 {
		windows = append(windows,
			memory.NewPrgWindow(0x8000, 0x9FFF, memory.PrgBankRomSwitchable(bank.P0)),
			memory.NewPrgWindow(0xA000, 0xBFFF, memory.PrgBankRomSwitchable(bank.P1)),
			memory.NewPrgWindow(0xC000, 0xDFFF, memory.PrgBankRomFixed(bank.NumberFromI16(-2))),
			memory.NewPrgWindow(0xE000, 0xFFFF, memory.PrgBankRomFixed(bank.NumberFromI16(-1))),
		)
	} else {
		windows = append(windows,
			memory.NewPrgWindow(0x8000, 0x9FFF, memory.PrgBankRomFixed(bank.NumberFromI16(-2))),
			memory.NewPrgWindow(0xA000, 0xBFFF, memory.PrgBankRomSwitchable(bank.P1)),
			memory.NewPrgWindow(0xC000, 0xDFFF, memory.PrgBankRomSwitchable(bank.P0)),
			memory.NewPrgWindow(0xE000, 0xFFFF, memory.PrgBankRomFixed(bank.NumberFromI16(-1))),
		)
	}
	l, err := memory.NewPrgLayout(windows)
	if err != nil {
		panic(err)
	}
	return l
}

func mmc3ChrLayout(mode int) *memory.ChrLayout {
	var windows []memory.ChrWindow
	if mode == 0 {
		windows = append(windows,
			memory.NewChrWindow(0x0000, 0x07FF, memory.ChrBankRomSwitchable(bank.C0)),
			memory.NewChrWindow(0x0800, 0x0FFF, memory.ChrBankRomSwitchable(bank.C1)),
			memory.NewChrWindow(0x1000, 0x13FF, memory.ChrBankRomSwitchable(bank.C2)),
			memory.NewChrWindow(0x1400, 0x17FF, memory.ChrBankRomSwitchable(bank.C3)),
			memory.NewChrWindow(0x1800, 0x1BFF, memory.ChrBankRomSwitchable(bank.C4)),
			memory.NewChrWindow(0x1C00, 0x1FFF, memory.ChrBankRomSwitchable(bank.C5)),
		)
	} else {
		windows = append(windows,
			memory.NewChrWindow(0x0000, 0x03FF, memory.ChrBankRomSwitchable(bank.C2)),
			memory.NewChrWindow(0x0400, 0x07FF, memory.ChrBankRomSwitchable(bank.C3)),
			memory.NewChrWindow(0x0800, 0x0BFF, memory.ChrBankRomSwitchable(bank.C4)),
			memory.NewChrWindow(0x0C00, 0x0FFF, memory.ChrBankRomSwitchable(bank.C5)),
			memory.NewChrWindow(0x1000, 0x17FF, memory.ChrBankRomSwitchable(bank.C0)),
			memory.NewChrWindow(0x1800, 0x1FFF, memory.ChrBankRomSwitchable(bank.C1)),
		)
	}
	windows = append(windows,
		memory.NewChrWindow(0x2000, 0x23FF, memory.ChrBankNameTable(0)),
		memory.NewChrWindow(0x2400, 0x27FF, memory.ChrBankNameTable(1)),
		memory.NewChrWindow(0x2800, 0x2BFF, memory.ChrBankNameTable(2)),
		memory.NewChrWindow(0x2C00, 0x2FFF, memory.ChrBankNameTable(3)),
	)
	l, err := memory.NewChrLayout(windows)
	if err != nil {
		panic(err)
	}
	return l
}

func (m *Mmc3) Layout() MapperLayout { return m.layout }

func (m *Mmc3) WriteToCartridgeSpace(mem *Memory, addr uint16, value byte) {
	switch {
	case addr < 0x8000:
		return
	case addr <= 0x9FFF && addr%2 == 0:
		fields := bitfield.Extract(value, "cp...rrr")
		m.chrMode = int(fields['c'])
		m.prgMode = int(fields['p'])
		m.selectedRegister = int(fields['r'])
		mem.Chr.SetLayoutIndex(m.chrMode)
		mem.Prg.SetLayoutIndex(m.prgMode)
	case addr <= 0x9FFF:
		m.setBankData(mem, value)
	case addr <= 0xBFFF && addr%2 == 0:
		if value&1 == 0 {
			mem.Chr.SetMirroring(memory.Vertical())
		} else {
			mem.Chr.SetMirroring(memory.Horizontal())
		}
	case addr <= 0xBFFF:
		// Bit 7 gates the RAM chip entirely; bit 6, only consulted while
		// the chip is enabled, write-protects it.
		switch {
		case value&0x80 == 0:
			mem.Prg.Registers().SetStatus(bank.S0, bank.StatusDisabled)
		case value&0x40 != 0:
			mem.Prg.Registers().SetStatus(bank.S0, bank.StatusReadOnly)
		default:
			mem.Prg.Registers().SetStatus(bank.S0, bank.StatusReadWrite)
		}
	case addr <= 0xDFFF && addr%2 == 0:
		m.irq.SetReloadValue(value)
	case addr <= 0xDFFF:
		m.irq.ForceReload()
	case addr <= 0xFFFF && addr%2 == 0:
		m.irq.Disable()
		m.irqPending = false
	default:
		m.irq.Enable()
	}
}

func (m *Mmc3) setBankData(mem *Memory, value byte) {
	switch m.selectedRegister {
	case 0:
		// C0/C1 address 2KiB windows; the register's low bit (the 1KiB
		// sub-selector) is dropped, leaving a 2KiB-granularity bank index.
		mem.Chr.Registers().Set(bank.C0, bank.NumberFromU8(value>>1))
	case 1:
		mem.Chr.Registers().Set(bank.C1, bank.NumberFromU8(value>>1))
	case 2:
		mem.Chr.Registers().Set(bank.C2, bank.NumberFromU8(value))
	case 3:
		mem.Chr.Registers().Set(bank.C3, bank.NumberFromU8(value))
	case 4:
		mem.Chr.Registers().Set(bank.C4, bank.NumberFromU8(value))
	case 5:
		mem.Chr.Registers().Set(bank.C5, bank.NumberFromU8(value))
	case 6:
		mem.Prg.Registers().Set(bank.P0, bank.NumberFromU8(value&0x3F))
	case 7:
		mem.Prg.Registers().Set(bank.P1, bank.NumberFromU8(value&0x3F))
	}
}

// OnPpuAddressChange implements the A12-edge IRQ trigger: the counter
// ticks on every low-to-high transition of PPU address bit 12, with a
// 16-CPU-cycle suppression window preventing rapid re-edges from
// chain-triggering.
func (m *Mmc3) OnPpuAddressChange(mem *Memory, addr uint16) {
	a12 := addr&mmc3A12Mask != 0
	if a12 && !m.lastA12 && m.cycle >= m.a12SuppressUntil {
		result := m.irq.Tick()
		if result.Triggered {
			m.irqPending = true
		}
		m.a12SuppressUntil = m.cycle + 16
	}
	m.lastA12 = a12
}

func (m *Mmc3) OnEndOfCpuCycle(mem *Memory, cycle int64) {
	m.cycle = cycle
}

func (m *Mmc3) HasBusConflicts() bool { return false }

func (m *Mmc3) IrqCounterInfo() (IrqInfo, bool) {
	info := m.irq.Info()
	return IrqInfo{
		CountingEnabled:   info.CountingEnabled,
		TriggeringEnabled: info.TriggeringEnabled,
		Count:             info.Count,
		Pending:           m.irqPending,
	}, true
}

// AckIrq clears the pending IRQ flag; called by the owning bus once it
// has latched the assertion onto the CPU's interrupt line.
func (m *Mmc3) AckIrq() { m.irqPending = false }

// IrqPending reports whether this mapper currently wants to assert IRQ.
func (m *Mmc3) IrqPending() bool { return m.irqPending }

// newMmc3IrqCounter builds the Rev-A flavor of the scanline counter: the
// 0xE000 disable write stops triggering but the counter keeps clocking,
// and IRQ fires only on the step-sized transition into zero, not on a
// reload that happens to land there.
func newMmc3IrqCounter() *counter.ReloadDrivenCounter {
	return counter.NewBuilder().
		FullRange(0, 0xFF).
		Wraps(true).
		Step(-1).
		AutoTriggerWhen(counter.StepSizedTransitionTo(0)).
		ForcedReloadTiming(counter.OnNextTick).
		WhenDisabledPrevent(counter.PreventTriggering).
		BuildReloadDriven()
}

func newMmc3(prgRom, chrRom []byte) (Mapper, *Memory) {
	layout := MapperLayout{
		PrgLayouts:       []*memory.PrgLayout{mmc3PrgLayout(0), mmc3PrgLayout(1)},
		ChrLayouts:       []*memory.ChrLayout{mmc3ChrLayout(0), mmc3ChrLayout(1)},
		InitialMirroring: memory.Vertical(),
		PrgRamSize:       8 * 1024,
		ChrRamSize:       chrRamSizeIfMissing(chrRom),
	}
	m := &Mmc3{layout: layout, irq: newMmc3IrqCounter()}
	return m, NewMemory(layout, prgRom, chrRom)
}

func init() {
	Register(4, -1, newMmc3)
}
