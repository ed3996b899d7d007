package mapper

import (
	"github.com/wrenfield/nesmapper/pkg/bank"
	"github.com/wrenfield/nesmapper/pkg/memory"
)

// Mmc1 is mapper 1 (MMC1): every cartridge-space write feeds one bit into
// a 5-bit serial shift register; the fifth write copies the accumulated
// value into whichever internal register the write address selected.
// A write with bit 7 set resets the shift register immediately and also
// forces PRG mode back to "fix last bank", independent of shift progress.
type Mmc1 struct {
	BaseMapper

	layout MapperLayout

	shiftRegister uint8
	shiftCount    uint8

	prgMode int // 0: 32KiB; 1: fix first bank; 2: fix last bank
	chrMode int // 0: 8KiB; 1: 4KiB

	prgBankValue uint8
}

func mmc1PrgLayout32k() *memory.PrgLayout {
	l, err := memory.NewPrgLayout([]memory.PrgWindow{
		memory.NewPrgWindow(0x6000, 0x7FFF, memory.PrgBankWorkRam(bank.S0)),
		memory.NewPrgWindow(0x8000, 0xBFFF, memory.PrgBankRomSwitchable(bank.P0)),
		memory.NewPrgWindow(0xC000, 0xFFFF, memory.PrgBankRomSwitchable(bank.P1)),
	})
	if err != nil {
		panic(err)
	}
	return l
}

func mmc1PrgLayoutFixFirst() *memory.PrgLayout {
	l, err := memory.NewPrgLayout([]memory.PrgWindow{
		memory.NewPrgWindow(0x6000, 0x7FFF, memory.PrgBankWorkRam(bank.S0)),
		memory.NewPrgWindow(0x8000, 0xBFFF, memory.PrgBankRomFixed(bank.NumberFromI16(0))),
		memory.NewPrgWindow(0xC000, 0xFFFF, memory.PrgBankRomSwitchable(bank.P1)),
	})
	if err != nil {
		panic(err)
	}
	return l
}

func mmc1PrgLayoutFixLast() *memory.PrgLayout {
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

func mmc1ChrLayout() *memory.ChrLayout {
	l, err := memory.NewChrLayout([]memory.ChrWindow{
		memory.NewChrWindow(0x0000, 0x0FFF, memory.ChrBankRomSwitchable(bank.C0)),
		memory.NewChrWindow(0x1000, 0x1FFF, memory.ChrBankRomSwitchable(bank.C1)),
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

func (m *Mmc1) Layout() MapperLayout { return m.layout }

func (m *Mmc1) WriteToCartridgeSpace(mem *Memory, addr uint16, value byte) {
	if addr < 0x8000 {
		return
	}
	if value&0x80 != 0 {
		m.shiftRegister = 0
		m.shiftCount = 0
		m.prgMode = 2
		mem.Prg.SetLayoutIndex(m.prgMode)
		return
	}

	m.shiftRegister = (m.shiftRegister >> 1) | ((value & 1) << 4)
	m.shiftCount++
	if m.shiftCount < 5 {
		return
	}

	loaded := m.shiftRegister
	m.shiftRegister = 0
	m.shiftCount = 0
	m.writeInternalRegister(mem, addr, loaded)
}

func (m *Mmc1) writeInternalRegister(mem *Memory, addr uint16, value uint8) {
	switch {
	case addr <= 0x9FFF:
		switch value & 0x03 {
		case 0:
			mem.Chr.SetMirroring(memory.OneScreenLeft())
		case 1:
			mem.Chr.SetMirroring(memory.OneScreenRight())
		case 2:
			mem.Chr.SetMirroring(memory.Vertical())
		default:
			mem.Chr.SetMirroring(memory.Horizontal())
		}
		switch (value >> 2) & 0x03 {
		case 0, 1:
			m.prgMode = 0
		case 2:
			m.prgMode = 1
		default:
			m.prgMode = 2
		}
		m.chrMode = int((value >> 4) & 0x01)
		mem.Prg.SetLayoutIndex(m.prgMode)
		m.applyPrgBank(mem)

	case addr <= 0xBFFF:
		m.setChrBank(mem, bank.C0, value)

	case addr <= 0xDFFF:
		m.setChrBank(mem, bank.C1, value)

	default:
		m.prgBankValue = value & 0x0F
		if value&0x10 == 0 {
			mem.Prg.Registers().SetStatus(bank.S0, bank.StatusReadWrite)
		} else {
			mem.Prg.Registers().SetStatus(bank.S0, bank.StatusDisabled)
		}
		m.applyPrgBank(mem)
	}
}

// setChrBank writes a CHR-bank register honoring the current CHR mode:
// 4 KiB mode targets each register independently, 8 KiB mode ignores the
// low bit of the first register and derives the second from it.
func (m *Mmc1) setChrBank(mem *Memory, id bank.ChrRegisterID, value uint8) {
	if m.chrMode == 1 {
		mem.Chr.Registers().Set(id, bank.NumberFromU8(value&0x1F))
		return
	}
	if id != bank.C0 {
		return
	}
	base := value & 0x1E
	mem.Chr.Registers().Set(bank.C0, bank.NumberFromU8(base))
	mem.Chr.Registers().Set(bank.C1, bank.NumberFromU8(base|1))
}

func (m *Mmc1) applyPrgBank(mem *Memory) {
	if m.prgMode == 0 {
		base := m.prgBankValue & 0xFE
		mem.Prg.Registers().Set(bank.P0, bank.NumberFromU8(base))
		mem.Prg.Registers().Set(bank.P1, bank.NumberFromU8(base|1))
		return
	}
	mem.Prg.Registers().Set(bank.P0, bank.NumberFromU8(m.prgBankValue))
	mem.Prg.Registers().Set(bank.P1, bank.NumberFromU8(m.prgBankValue))
}

func newMmc1(prgRom, chrRom []byte) (Mapper, *Memory) {
	layout := MapperLayout{
		PrgLayouts:       []*memory.PrgLayout{mmc1PrgLayout32k(), mmc1PrgLayoutFixFirst(), mmc1PrgLayoutFixLast()},
		ChrLayouts:       []*memory.ChrLayout{mmc1ChrLayout()},
		InitialMirroring: memory.Horizontal(),
		PrgRamSize:       8 * 1024,
		ChrRamSize:       chrRamSizeIfMissing(chrRom),
	}
	m := &Mmc1{layout: layout, prgMode: 2}
	mem := NewMemory(layout, prgRom, chrRom)
	mem.Prg.SetLayoutIndex(2)
	mem.RebuildIfDirty()
	return m, mem
}

func init() {
	Register(1, -1, newMmc1)
}
