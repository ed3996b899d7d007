package memory

import "github.com/wrenfield/nesmapper/pkg/bank"

// ChrMemory owns CHR ROM/RAM, the 2 KiB of console-resident CIRAM, the
// layout set, and the current Mirroring/MemoryMap.
type ChrMemory struct {
	rom         []byte
	ram         []byte
	extendedRam []byte

	ciram [2 * 1024]byte

	fillModeTileByte      byte
	fillModeAttributeByte byte

	layouts     []*ChrLayout
	layoutIndex int

	regs      *bank.ChrBankRegisters
	mirroring Mirroring
	override  AccessOverride

	outerBankCount int
	outerBankIndex int
	// activeRom is the outer-bank slice of rom the current MemoryMap was
	// resolved against; equal to rom when no outer banking is configured.
	activeRom []byte

	currentMap *MemoryMap
	dirty      bool
}

// NewChrMemory builds ChrMemory over the given buffers, layout set, and
// initial mirroring preset.
func NewChrMemory(rom, ram []byte, layouts []*ChrLayout, initial Mirroring) *ChrMemory {
	m := &ChrMemory{
		rom:            rom,
		ram:            ram,
		layouts:        layouts,
		regs:           bank.NewChrBankRegisters(),
		mirroring:      initial,
		outerBankCount: 1,
		dirty:          true,
	}
	m.RebuildIfDirty()
	return m
}

// SetExtendedRam installs the mapper-internal scratch buffer that
// ExtendedRam-backed nametable quadrants resolve to; pass the same buffer
// given to the PRG side so both views observe the same bytes.
func (m *ChrMemory) SetExtendedRam(buf []byte) { m.extendedRam = buf }

// ExtendedRam exposes that buffer to mappers that also serve it through
// their private register window.
func (m *ChrMemory) ExtendedRam() []byte { return m.extendedRam }

// Registers exposes the live CHR bank-register file for mapper mutation.
// Any caller may mutate through it, so handing it out marks the MemoryMap
// dirty.
func (m *ChrMemory) Registers() *bank.ChrBankRegisters {
	m.dirty = true
	return m.regs
}

func (m *ChrMemory) SetLayoutIndex(i int) {
	if i != m.layoutIndex {
		m.layoutIndex = i
		m.dirty = true
	}
}

// SetMirroring installs a new name-table mirroring assignment. Toggling
// A -> B -> A must leave the MemoryMap identical to before the first
// toggle, which holds here because
// Mirroring is a plain value compared by re-derivation, not by a stateful
// diff.
func (m *ChrMemory) SetMirroring(mr Mirroring) {
	if mr != m.mirroring {
		m.mirroring = mr
		m.dirty = true
	}
}

func (m *ChrMemory) Mirroring() Mirroring { return m.mirroring }

func (m *ChrMemory) SetAccessOverride(o AccessOverride) {
	if o != m.override {
		m.override = o
		m.dirty = true
	}
}

// SetOuterBankCount splits CHR ROM into count equal sub-cartridges; see
// PrgMemory.SetOuterBankCount.
func (m *ChrMemory) SetOuterBankCount(count int) {
	if count < 1 {
		count = 1
	}
	if count != m.outerBankCount {
		m.outerBankCount = count
		m.dirty = true
	}
}

func (m *ChrMemory) SetOuterBankIndex(i int) {
	if i != m.outerBankIndex {
		m.outerBankIndex = i
		m.dirty = true
	}
}

func (m *ChrMemory) MarkDirty() { m.dirty = true }

// SetFillModeTile installs the two bytes a fill-mode nametable quadrant
// (MMC5) reads back: tile for the first 960 bytes of the quadrant,
// attribute for the last 64.
func (m *ChrMemory) SetFillModeTile(tile, attribute byte) {
	m.fillModeTileByte = tile
	m.fillModeAttributeByte = attribute
}

func (m *ChrMemory) RebuildIfDirty() {
	if !m.dirty && m.currentMap != nil {
		return
	}
	layout := m.layouts[m.layoutIndex]
	m.activeRom = outerBankSlice(m.rom, m.outerBankCount, m.outerBankIndex)
	sizes := ChrMediumSizes{
		RomSize: uint32(len(m.activeRom)),
		RamSize: uint32(len(m.ram)),
	}
	m.currentMap = BuildChrMemoryMap(layout, m.regs, sizes, m.mirroring, m.override)
	m.dirty = false
}

// Peek reads a CHR/nametable address without side effects.
func (m *ChrMemory) Peek(addr uint16) ReadResult {
	if addr >= 0x3000 && addr < 0x3F00 {
		addr -= 0x1000
	}
	page, status, index := m.currentMap.Lookup(addr)
	if status.ReadsAsZero() {
		return FullByte(0)
	}
	if !status.Readable() {
		return OpenBus
	}
	switch page.Kind {
	case PageRom:
		if len(m.activeRom) == 0 {
			return OpenBus
		}
		return FullByte(m.activeRom[int(index)%len(m.activeRom)])
	case PageRam:
		if len(m.ram) == 0 {
			return OpenBus
		}
		return FullByte(m.ram[int(index)%len(m.ram)])
	case PageCiram:
		off := int(page.Side) * 1024
		return FullByte(m.ciram[off+int(addr%1024)])
	case PageExtendedRam:
		if len(m.extendedRam) == 0 {
			return OpenBus
		}
		return FullByte(m.extendedRam[int(addr)%len(m.extendedRam)])
	case PageFillModeTile:
		if addr%1024 < 960 {
			return FullByte(m.fillModeTileByte)
		}
		return FullByte(m.fillModeAttributeByte)
	default:
		return OpenBus
	}
}

// Write stores value at a CHR/nametable address if the slot permits it.
func (m *ChrMemory) Write(addr uint16, value byte) {
	if addr >= 0x3000 && addr < 0x3F00 {
		addr -= 0x1000
	}
	page, status, index := m.currentMap.Lookup(addr)
	if !status.Writable() {
		return
	}
	switch page.Kind {
	case PageRam:
		if len(m.ram) > 0 {
			m.ram[int(index)%len(m.ram)] = value
		}
	case PageCiram:
		off := int(page.Side) * 1024
		m.ciram[off+int(addr%1024)] = value
	case PageExtendedRam:
		if len(m.extendedRam) > 0 {
			m.extendedRam[int(addr)%len(m.extendedRam)] = value
		}
	}
}

// PageIdAt exposes page-id introspection for mapper/debug tooling.
func (m *ChrMemory) PageIdAt(addr uint16) PageId {
	page, _, _ := m.currentMap.Lookup(addr)
	return page
}
