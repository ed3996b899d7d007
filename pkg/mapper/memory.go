package mapper

import "github.com/wrenfield/nesmapper/pkg/memory"

// Memory is the per-cartridge PRG+CHR memory pair a Mapper mutates.
// The mapper/Memory relationship is message passing: the owning loop
// (pkg/nes) holds both the active Mapper and its Memory and passes one
// into the other's methods as a parameter, rather than either side
// holding a back-reference.
type Memory struct {
	Prg *memory.PrgMemory
	Chr *memory.ChrMemory
}

// NewMemory builds a Memory from a resolved MapperLayout and buffers.
// Layout-set invariants that can only be checked once every layout a
// mapper switches between is known are checked here; a violation is a
// mapper-implementation bug and panics.
func NewMemory(layout MapperLayout, prgRom, chrRom []byte) *Memory {
	if err := memory.ValidatePrgMinimumBankSize(layout.PrgLayouts); err != nil {
		panic(err)
	}
	if err := memory.ValidateChrMinimumBankSize(layout.ChrLayouts); err != nil {
		panic(err)
	}
	prgRam := make([]byte, layout.PrgRamSize)
	prgSaveRam := make([]byte, layout.PrgSaveRamSize)
	var chrRam []byte
	if layout.ChrRamSize > 0 {
		chrRam = make([]byte, layout.ChrRamSize)
	}

	m := &Memory{
		Prg: memory.NewPrgMemory(prgRom, prgRam, prgSaveRam, layout.PrgLayouts),
		Chr: memory.NewChrMemory(chrRom, chrRam, layout.ChrLayouts, layout.InitialMirroring),
	}

	// A cartridge with no CHR ROM serves its pattern tables out of CHR
	// RAM through the same windows; the override rewrites every ROM bank
	// to RAM so those windows become writable.
	if len(chrRom) == 0 && layout.ChrRamSize > 0 {
		m.Chr.SetAccessOverride(memory.ForceRam)
		m.Chr.RebuildIfDirty()
	}

	// One shared ExRAM buffer: a mapper that exposes extended RAM on both
	// the CPU and PPU sides (MMC5) sees the same bytes through each.
	extendedRam := make([]byte, 1024)
	m.Prg.SetExtendedRam(extendedRam)
	m.Chr.SetExtendedRam(extendedRam)
	return m
}

// RebuildIfDirty recomputes both MemoryMaps if any tracked input changed.
// Called by the owning loop after every mapper register mutation.
func (m *Memory) RebuildIfDirty() {
	m.Prg.RebuildIfDirty()
	m.Chr.RebuildIfDirty()
}
