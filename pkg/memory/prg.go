package memory

import "github.com/wrenfield/nesmapper/pkg/bank"

// ReadResult is a (value, mask) pair: mask marks which bits of value are
// "real" data, the remainder coming from the CPU's open-bus latch. This
// lets partial-width registers compose correctly with open-bus behavior.
type ReadResult struct {
	Value byte
	Mask  byte
}

// FullByte wraps a fully-determined byte (mask = 0xFF).
func FullByte(v byte) ReadResult { return ReadResult{Value: v, Mask: 0xFF} }

// OpenBus is the all-undetermined-bits result: the caller should splice in
// its own open-bus latch for every bit.
var OpenBus = ReadResult{Value: 0, Mask: 0x00}

// PrgMemory owns the raw PRG ROM/work-RAM/save-RAM buffers, the set of
// layouts a mapper can switch between, and the MemoryMap resolved from
// whichever layout is currently active.
type PrgMemory struct {
	rom         []byte
	workRam     []byte
	saveRam     []byte
	extendedRam []byte

	layouts     []*PrgLayout
	layoutIndex int

	regs     *bank.PrgBankRegisters
	override AccessOverride

	outerBankCount int
	outerBankIndex int
	// activeRom is the outer-bank slice of rom the current MemoryMap was
	// resolved against; equal to rom when no outer banking is configured.
	activeRom []byte

	currentMap *MemoryMap
	dirty      bool
}

// NewPrgMemory builds PrgMemory over the given buffers and layout set.
// layouts[0] becomes the active layout; callers mutate registers and call
// SetLayoutIndex through the exported setters below, then RebuildIfDirty
// before the next bus access.
func NewPrgMemory(rom, workRam, saveRam []byte, layouts []*PrgLayout) *PrgMemory {
	m := &PrgMemory{
		rom:            rom,
		workRam:        workRam,
		saveRam:        saveRam,
		layouts:        layouts,
		regs:           bank.NewPrgBankRegisters(),
		outerBankCount: 1,
		dirty:          true,
	}
	m.RebuildIfDirty()
	return m
}

// SetExtendedRam installs the 1 KiB mapper-internal scratch buffer that
// ExtendedRam banks resolve to. Callers share one buffer between the PRG
// and CHR sides when the mapper exposes it on both (MMC5's ExRAM).
func (m *PrgMemory) SetExtendedRam(buf []byte) { m.extendedRam = buf }

// Registers exposes the live PRG bank-register file for mapper mutation.
// Any caller may mutate through it, so handing it out marks the MemoryMap
// dirty.
func (m *PrgMemory) Registers() *bank.PrgBankRegisters {
	m.dirty = true
	return m.regs
}

// SetLayoutIndex switches which of the mapper's PRG layouts is active.
func (m *PrgMemory) SetLayoutIndex(i int) {
	if i != m.layoutIndex {
		m.layoutIndex = i
		m.dirty = true
	}
}

// SetAccessOverride installs a ForceRom/ForceRam override, used by mappers
// whose mode registers blanket-override every RAM-capable window.
func (m *PrgMemory) SetAccessOverride(o AccessOverride) {
	if o != m.override {
		m.override = o
		m.dirty = true
	}
}

// SetOuterBankCount splits the ROM into count equal "sub-cartridges";
// ordinary bank registers then resolve within whichever one
// SetOuterBankIndex has selected. Count 1 (the default) disables outer
// banking.
func (m *PrgMemory) SetOuterBankCount(count int) {
	if count < 1 {
		count = 1
	}
	if count != m.outerBankCount {
		m.outerBankCount = count
		m.dirty = true
	}
}

// SetOuterBankIndex selects which outer-bank "sub-cartridge" subsequent
// bank-register resolutions index into, for mappers whose address space
// exceeds their base register width.
func (m *PrgMemory) SetOuterBankIndex(i int) {
	if i != m.outerBankIndex {
		m.outerBankIndex = i
		m.dirty = true
	}
}

// MarkDirty forces a MemoryMap recompute on the next RebuildIfDirty call.
// Every mapper register mutation path should call this (or go through
// Registers() or the typed setters above, which mark the map implicitly).
func (m *PrgMemory) MarkDirty() { m.dirty = true }

// RebuildIfDirty recomputes the MemoryMap iff any tracked input changed
// since the last rebuild. Must be called before
// any bus access following a mapper register write.
func (m *PrgMemory) RebuildIfDirty() {
	if !m.dirty && m.currentMap != nil {
		return
	}
	layout := m.layouts[m.layoutIndex]
	m.activeRom = outerBankSlice(m.rom, m.outerBankCount, m.outerBankIndex)
	sizes := PrgMediumSizes{
		RomSize:     uint32(len(m.activeRom)),
		WorkRamSize: uint32(len(m.workRam)),
		SaveRamSize: uint32(len(m.saveRam)),
	}
	m.currentMap = BuildPrgMemoryMap(layout, m.regs, sizes, m.override)
	m.dirty = false
}

// outerBankSlice folds the outer-bank index into a raw-buffer slice: the
// buffer is split into count equal sub-cartridges and index (modulo
// count) selects one. With count <= 1 the whole buffer is returned.
func outerBankSlice(buf []byte, count, index int) []byte {
	if count <= 1 || len(buf) == 0 || len(buf)%count != 0 {
		return buf
	}
	size := len(buf) / count
	i := index % count
	return buf[i*size : (i+1)*size]
}

// Peek reads addr without side effects. Addresses below 0x6000 are not
// this package's concern (mapper-private register space, routed by the
// bus/mapper directly); this method only serves 0x6000-0xFFFF.
func (m *PrgMemory) Peek(addr uint16) ReadResult {
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
		if len(m.workRam) == 0 {
			return OpenBus
		}
		return FullByte(m.workRam[int(index)%len(m.workRam)])
	case PageSaveRam:
		if len(m.saveRam) == 0 {
			return OpenBus
		}
		return FullByte(m.saveRam[int(index)%len(m.saveRam)])
	case PageExtendedRam:
		if len(m.extendedRam) == 0 {
			return OpenBus
		}
		return FullByte(m.extendedRam[int(addr)%len(m.extendedRam)])
	default:
		return OpenBus
	}
}

// Write stores value at addr if the slot's status permits writes. Writes
// to ROM are always dropped: the mapper's on_cpu_write notification still
// fires regardless, but that is the caller's (Bus's) responsibility, not
// PrgMemory's.
func (m *PrgMemory) Write(addr uint16, value byte) {
	page, status, index := m.currentMap.Lookup(addr)
	if !status.Writable() {
		return
	}
	switch page.Kind {
	case PageRam:
		if len(m.workRam) > 0 {
			m.workRam[int(index)%len(m.workRam)] = value
		}
	case PageSaveRam:
		if len(m.saveRam) > 0 {
			m.saveRam[int(index)%len(m.saveRam)] = value
		}
	case PageExtendedRam:
		if len(m.extendedRam) > 0 {
			m.extendedRam[int(addr)%len(m.extendedRam)] = value
		}
	}
}

// PageIdAt exposes page-id introspection for the mapper/debug tooling
// without going through a full Peek.
func (m *PrgMemory) PageIdAt(addr uint16) PageId {
	page, _, _ := m.currentMap.Lookup(addr)
	return page
}

// RomByteAt reads the raw ROM byte at the bank-resolved address, used by
// bus-conflict AND logic, which needs "what's physically in ROM here"
// independent of read/write status.
func (m *PrgMemory) RomByteAt(addr uint16) (byte, bool) {
	page, _, index := m.currentMap.Lookup(addr)
	if page.Kind != PageRom || len(m.activeRom) == 0 {
		return 0, false
	}
	return m.activeRom[int(index)%len(m.activeRom)], true
}

// SaveRam exposes the save-RAM buffer for persistence on shutdown.
func (m *PrgMemory) SaveRam() []byte { return m.saveRam }

// WorkRam exposes the work-RAM buffer. Battery-backed cartridges whose
// mapper serves the 0x6000 window out of work RAM rather than a separate
// save-RAM chip persist this buffer instead.
func (m *PrgMemory) WorkRam() []byte { return m.workRam }
