package mapper

import (
	"github.com/wrenfield/nesmapper/pkg/bank"
	"github.com/wrenfield/nesmapper/pkg/memory"
)

// Mmc5 is mapper 5: a fixed 8 KiB work-RAM window plus four independently
// switchable PRG windows (three with a per-window ROM/RAM mode bit, the
// top one always ROM), eight independently switchable 1 KiB CHR windows,
// and per-quadrant nametable mapping that can serve CIRAM, the 1 KiB
// extended RAM, or the fill-mode tile generator. MMC5's audio expansion
// channels and split-screen scroll register live outside the
// memory/mapper subsystem and are not modeled here.
type Mmc5 struct {
	BaseMapper
	layout MapperLayout

	exRamMode     byte
	fillModeTile  byte
	fillModeColor byte
}

func mmc5PrgLayout() *memory.PrgLayout {
	l, err := memory.NewPrgLayout([]memory.PrgWindow{
		memory.NewPrgWindow(0x6000, 0x7FFF, memory.PrgBankWorkRam(bank.S0)),
		memory.NewPrgWindow(0x8000, 0x9FFF, memory.PrgBankRomRam(bank.P0, bank.S1, bank.R0)),
		memory.NewPrgWindow(0xA000, 0xBFFF, memory.PrgBankRomRam(bank.P1, bank.S2, bank.R1)),
		memory.NewPrgWindow(0xC000, 0xDFFF, memory.PrgBankRomRam(bank.P2, bank.S3, bank.R2)),
		memory.NewPrgWindow(0xE000, 0xFFFF, memory.PrgBankRomSwitchable(bank.P3)),
	})
	if err != nil {
		panic(err)
	}
	return l
}

func mmc5ChrLayout() *memory.ChrLayout {
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

var mmc5PrgRegs = [3]bank.PrgRegisterID{bank.P0, bank.P1, bank.P2}
var mmc5PrgModes = [3]bank.ModeRegisterID{bank.R0, bank.R1, bank.R2}
var mmc5PrgStatus = [3]bank.StatusRegisterID{bank.S1, bank.S2, bank.S3}
var mmc5ChrRegs = [8]bank.ChrRegisterID{bank.C0, bank.C1, bank.C2, bank.C3, bank.C4, bank.C5, bank.C6, bank.C7}

func (m *Mmc5) Layout() MapperLayout { return m.layout }

// PeekCartridgeSpace adds the 0x5C00-0x5FFF ExRAM window to the default
// PRG routing. ExRAM is CPU-readable only in modes 2 and 3; in the
// nametable modes (0 and 1) a CPU read sees open bus.
func (m *Mmc5) PeekCartridgeSpace(mem *Memory, addr uint16) memory.ReadResult {
	if addr >= 0x5C00 && addr <= 0x5FFF {
		if m.exRamMode >= 2 {
			buf := mem.Chr.ExtendedRam()
			if len(buf) > 0 {
				return memory.FullByte(buf[int(addr-0x5C00)%len(buf)])
			}
		}
		return memory.OpenBus
	}
	return m.BaseMapper.PeekCartridgeSpace(mem, addr)
}

func (m *Mmc5) WriteToCartridgeSpace(mem *Memory, addr uint16, value byte) {
	switch {
	case addr == 0x5104:
		m.exRamMode = value & 0x03
	case addr == 0x5105:
		mem.Chr.SetMirroring(mmc5NameTableMapping(value))
	case addr == 0x5106:
		m.fillModeTile = value
		mem.Chr.SetFillModeTile(m.fillModeTile, m.fillModeColor)
	case addr == 0x5107:
		// The 2-bit fill color is replicated across all four attribute
		// quadrants, the way the fill generator presents it.
		c := value & 0x03
		m.fillModeColor = c | c<<2 | c<<4 | c<<6
		mem.Chr.SetFillModeTile(m.fillModeTile, m.fillModeColor)
	case addr >= 0x5100 && addr <= 0x5102:
		i := addr - 0x5100
		if value&0x01 != 0 {
			mem.Prg.Registers().SetMode(mmc5PrgModes[i], bank.ModeWorkRam)
		} else {
			mem.Prg.Registers().SetMode(mmc5PrgModes[i], bank.ModeRom)
		}
	case addr >= 0x5104 && addr <= 0x5106:
		i := addr - 0x5104
		if value&0x02 != 0 {
			mem.Prg.Registers().SetStatus(mmc5PrgStatus[i], bank.StatusReadWrite)
		} else {
			mem.Prg.Registers().SetStatus(mmc5PrgStatus[i], bank.StatusDisabled)
		}
	case addr >= 0x5114 && addr <= 0x5116:
		i := int(addr - 0x5114)
		mem.Prg.Registers().Set(mmc5PrgRegs[i], bank.NumberFromU8(value&0x7F))
	case addr == 0x5117:
		mem.Prg.Registers().Set(bank.P3, bank.NumberFromU8(value&0x7F))
	case addr >= 0x5120 && addr <= 0x5127:
		i := int(addr - 0x5120)
		mem.Chr.Registers().Set(mmc5ChrRegs[i], bank.NumberFromU8(value))
	case addr >= 0x5C00 && addr <= 0x5FFF:
		// ExRAM is CPU-writable in every mode but 3 (read-only expansion
		// RAM).
		if m.exRamMode != 3 {
			buf := mem.Chr.ExtendedRam()
			if len(buf) > 0 {
				buf[int(addr-0x5C00)%len(buf)] = value
			}
		}
	}
}

// mmc5NameTableMapping decodes a 0x5105 write: two bits per quadrant
// selecting CIRAM left/right, extended RAM, or the fill-mode tile.
func mmc5NameTableMapping(value byte) memory.Mirroring {
	var quadrants [4]memory.NameTableSource
	for i := range quadrants {
		switch (value >> (2 * i)) & 0x03 {
		case 0:
			quadrants[i] = memory.CiramSource(bank.CiramLeft)
		case 1:
			quadrants[i] = memory.CiramSource(bank.CiramRight)
		case 2:
			quadrants[i] = memory.ExtendedRamSource()
		default:
			quadrants[i] = memory.FillModeSource()
		}
	}
	return memory.FourScreen(quadrants)
}

func newMmc5(prgRom, chrRom []byte) (Mapper, *Memory) {
	layout := MapperLayout{
		PrgLayouts:       []*memory.PrgLayout{mmc5PrgLayout()},
		ChrLayouts:       []*memory.ChrLayout{mmc5ChrLayout()},
		InitialMirroring: memory.Horizontal(),
		PrgRamSize:       64 * 1024,
		ChrRamSize:       chrRamSizeIfMissing(chrRom),
	}
	m := &Mmc5{layout: layout}
	return m, NewMemory(layout, prgRom, chrRom)
}

func init() {
	Register(5, -1, newMmc5)
}
