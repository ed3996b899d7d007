package memory

import "github.com/wrenfield/nesmapper/pkg/bank"

const (
	prgPageSize = 8192
	chrPageSize = 1024
	subSlotSize = 128
)

// AccessOverride forces every resolved ROM bank to read as RAM or vice
// versa, used by mappers whose registers select "RAM-backed ROM window"
// behavior (MMC5 ExRAM windows configured as RAM-backed PRG).
type AccessOverride int

const (
	NoOverride AccessOverride = iota
	ForceRom
	ForceRam
)

// normalEntry is one resolved (page, status) pair, the unit the hot read
// path consults directly.
type normalEntry struct {
	page   PageId
	status bank.Status
}

// mapSlot is one page-sized (or sub-page, for Multi) entry in a
// MemoryMap.
type mapSlot struct {
	multi bool
	entry normalEntry   // valid when !multi
	sub   []normalEntry // valid when multi; len == pageSize/subSlotSize
}

// MemoryMap is the precomputed page table:
// one slot per page-sized address range, pre-resolved to a (PageId,
// Status) tuple so the hot path is a single table lookup.
type MemoryMap struct {
	base     uint16
	pageSize uint32
	slots    []mapSlot
}

// Lookup resolves addr to its current (PageId, Status, bufferIndex).
// bufferIndex is the exact byte offset into whichever backing buffer
// page.Kind names (Rom/Ram/SaveRam); it folds the page- or sub-page-
// granularity bank number together with addr's own position inside that
// bank, since one resolved slot serves every address in its range and
// can't bake a single byte's offset in ahead of time. Callers still take
// the modulus against the buffer's actual length themselves, to fold
// away a register's high bits against an undersized ROM/RAM.
func (m *MemoryMap) Lookup(addr uint16) (PageId, bank.Status, uint32) {
	offset := uint32(addr) - uint32(m.base)
	slotIndex := offset / m.pageSize
	within := offset % m.pageSize
	if int(slotIndex) >= len(m.slots) {
		return emptyPage, bank.StatusDisabled, 0
	}
	s := m.slots[slotIndex]
	if !s.multi {
		return s.entry.page, s.entry.status, s.entry.page.Number*m.pageSize + within
	}
	sub := s.sub[within/subSlotSize]
	return sub.page, sub.status, sub.page.Number*subSlotSize + within%subSlotSize
}

func foldPage(n, count uint32) uint32 {
	if count == 0 {
		return 0
	}
	return n % count
}

func pagesPerBank(windowSize, pageSize uint32) uint32 {
	if windowSize < pageSize {
		return 1
	}
	return windowSize / pageSize
}

func mediumPageCount(mediumSize, pageSize uint32) uint32 {
	if mediumSize == 0 || pageSize == 0 {
		return 0
	}
	n := mediumSize / pageSize
	if n == 0 {
		return 1
	}
	return n
}

// mediumSubSlotCount is mediumPageCount at subSlotSize granularity, used
// to fold a Multi slot's sub-page bank number against an undersized
// backing buffer the same way a Normal slot folds against pageSize.
func mediumSubSlotCount(mediumSize uint32) uint32 {
	if mediumSize == 0 {
		return 0
	}
	n := mediumSize / subSlotSize
	if n == 0 {
		return 1
	}
	return n
}

func bankCountForWindow(mediumSize uint32, windowSize uint32) uint32 {
	if windowSize == 0 {
		return 0
	}
	n := mediumSize / windowSize
	if n == 0 {
		return 1
	}
	return n
}

// --- PRG resolution ---

// PrgMediumSizes carries the byte sizes of every backing buffer a PRG
// layout's banks may reference.
type PrgMediumSizes struct {
	RomSize      uint32
	WorkRamSize  uint32
	SaveRamSize  uint32
}

func resolvePrgEntry(layout *PrgLayout, w PrgWindow, regs *bank.PrgBankRegisters, pageOffsetInWindow uint32, sizes PrgMediumSizes, override AccessOverride) normalEntry {
	kind := w.Bank.Kind
	if override == ForceRom && (kind == PrgRam || kind == PrgRomRam) {
		kind = PrgRom
	} else if override == ForceRam && (kind == PrgRom || kind == PrgRomRam) {
		kind = PrgRam
	} else if kind == PrgRomRam {
		if regs.Mode(w.Bank.ModeReg) == bank.ModeRom {
			kind = PrgRom
		} else {
			kind = PrgRam
		}
	}

	status := bank.StatusReadWrite
	if kind == PrgRom {
		status = bank.StatusReadOnly
	}
	if w.Bank.HasStatusReg() {
		status = regs.Status(w.Bank.StatusReg)
	}

	ppb := pagesPerBank(uint32(w.Size()), prgPageSize)

	switch kind {
	case PrgEmpty:
		return normalEntry{page: emptyPage, status: bank.StatusDisabled}
	case PrgSaveRam:
		n := w.Bank.SaveRamOffset/prgPageSize + pageOffsetInWindow
		return normalEntry{page: PageId{Kind: PageSaveRam, Number: n}, status: status}
	case PrgExtendedRam:
		return normalEntry{page: extendedRamPage, status: status}
	case PrgMirrorOf:
		target, ok := layout.WindowStartingAt(w.Bank.MirrorStart)
		if !ok {
			return normalEntry{page: emptyPage, status: bank.StatusDisabled}
		}
		return resolvePrgEntry(layout, target, regs, pageOffsetInWindow, sizes, override)
	case PrgRom:
		bankIdx := resolvePrgBankIndex(w, regs, sizes.RomSize)
		page := bankIdx*ppb + pageOffsetInWindow
		page = foldPage(page, mediumPageCount(sizes.RomSize, prgPageSize))
		return normalEntry{page: romPage(page), status: status}
	case PrgRam, PrgWorkRam:
		bankIdx := resolvePrgBankIndex(w, regs, sizes.WorkRamSize)
		page := bankIdx*ppb + pageOffsetInWindow
		page = foldPage(page, mediumPageCount(sizes.WorkRamSize, prgPageSize))
		return normalEntry{page: ramPage(page), status: status}
	default:
		return normalEntry{page: emptyPage, status: bank.StatusDisabled}
	}
}

// resolvePrgSubEntry is resolvePrgEntry's counterpart for windows smaller
// than a page: rather than a page number in prgPageSize units, it numbers
// its result in subSlotSize units, since several of these share a single
// mapSlot and must each land on a distinct, addressable chunk of their
// backing buffer.
func resolvePrgSubEntry(layout *PrgLayout, w PrgWindow, regs *bank.PrgBankRegisters, subIndex uint32, sizes PrgMediumSizes, override AccessOverride) normalEntry {
	kind := w.Bank.Kind
	if override == ForceRom && (kind == PrgRam || kind == PrgRomRam) {
		kind = PrgRom
	} else if override == ForceRam && (kind == PrgRom || kind == PrgRomRam) {
		kind = PrgRam
	} else if kind == PrgRomRam {
		if regs.Mode(w.Bank.ModeReg) == bank.ModeRom {
			kind = PrgRom
		} else {
			kind = PrgRam
		}
	}

	status := bank.StatusReadWrite
	if kind == PrgRom {
		status = bank.StatusReadOnly
	}
	if w.Bank.HasStatusReg() {
		status = regs.Status(w.Bank.StatusReg)
	}

	subsPerBank := uint32(w.Size()) / subSlotSize

	switch kind {
	case PrgEmpty:
		return normalEntry{page: emptyPage, status: bank.StatusDisabled}
	case PrgSaveRam:
		n := w.Bank.SaveRamOffset/subSlotSize + subIndex
		return normalEntry{page: PageId{Kind: PageSaveRam, Number: n}, status: status}
	case PrgExtendedRam:
		return normalEntry{page: extendedRamPage, status: status}
	case PrgMirrorOf:
		target, ok := layout.WindowStartingAt(w.Bank.MirrorStart)
		if !ok {
			return normalEntry{page: emptyPage, status: bank.StatusDisabled}
		}
		return resolvePrgSubEntry(layout, target, regs, subIndex, sizes, override)
	case PrgRom:
		bankIdx := resolvePrgBankIndex(w, regs, sizes.RomSize)
		n := bankIdx*subsPerBank + subIndex
		n = foldPage(n, mediumSubSlotCount(sizes.RomSize))
		return normalEntry{page: romPage(n), status: status}
	case PrgRam, PrgWorkRam:
		bankIdx := resolvePrgBankIndex(w, regs, sizes.WorkRamSize)
		n := bankIdx*subsPerBank + subIndex
		n = foldPage(n, mediumSubSlotCount(sizes.WorkRamSize))
		return normalEntry{page: ramPage(n), status: status}
	default:
		return normalEntry{page: emptyPage, status: bank.StatusDisabled}
	}
}

func resolvePrgBankIndex(w PrgWindow, regs *bank.PrgBankRegisters, mediumSize uint32) uint32 {
	src := w.Bank.source
	var raw bank.Number
	switch src.kind {
	case sourceFixed:
		raw = src.fixed
	case sourceRegister:
		loc := regs.Get(bank.PrgRegisterID(src.reg))
		raw = loc.Index
	default:
		raw = bank.ZeroNumber
	}
	count := bankCountForWindow(mediumSize, uint32(w.Size()))
	return uint32(raw.Resolve(uint16(count)))
}

// BuildPrgMemoryMap builds a MemoryMap for the given PRG layout and the
// currently live register/mode state.
func BuildPrgMemoryMap(layout *PrgLayout, regs *bank.PrgBankRegisters, sizes PrgMediumSizes, override AccessOverride) *MemoryMap {
	numSlots := int((0x10000 - uint32(0x6000)) / prgPageSize)
	slots := make([]mapSlot, numSlots)

	for _, w := range layout.Windows() {
		sz := uint32(w.Size())
		if sz >= prgPageSize {
			pages := sz / prgPageSize
			for p := uint32(0); p < pages; p++ {
				addr := uint32(w.Start) + p*prgPageSize
				idx := (addr - 0x6000) / prgPageSize
				slots[idx] = mapSlot{entry: resolvePrgEntry(layout, w, regs, p, sizes, override)}
			}
		} else {
			subCount := prgPageSize / subSlotSize
			idx := (uint32(w.Start) - 0x6000) / prgPageSize
			existing := slots[idx]
			if !existing.multi {
				existing = mapSlot{multi: true, sub: make([]normalEntry, subCount)}
				for i := range existing.sub {
					existing.sub[i] = normalEntry{page: emptyPage, status: bank.StatusDisabled}
				}
			}
			startSub := (uint32(w.Start) - 0x6000) % prgPageSize / subSlotSize
			span := sz / subSlotSize
			for i := uint32(0); i < span; i++ {
				existing.sub[startSub+i] = resolvePrgSubEntry(layout, w, regs, i, sizes, override)
			}
			slots[idx] = existing
		}
	}

	return &MemoryMap{base: 0x6000, pageSize: prgPageSize, slots: slots}
}

// --- CHR resolution ---

// ChrMediumSizes carries the byte sizes of every backing buffer a CHR
// layout's banks may reference.
type ChrMediumSizes struct {
	RomSize     uint32
	RamSize     uint32
	SaveRamSize uint32
}

func resolveChrEntry(w ChrWindow, regs *bank.ChrBankRegisters, pageOffsetInWindow uint32, sizes ChrMediumSizes, mirroring Mirroring, override AccessOverride) normalEntry {
	kind := w.Bank.Kind
	if override == ForceRom && kind == ChrRam {
		kind = ChrRom
	} else if override == ForceRam && kind == ChrRom {
		kind = ChrRam
	}

	status := bank.StatusReadWrite
	if kind == ChrRom {
		status = bank.StatusReadOnly
	}
	if w.Bank.HasStatusReg() {
		status = regs.Status(w.Bank.StatusReg)
	}

	ppb := pagesPerBank(uint32(w.Size()), chrPageSize)

	switch kind {
	case ChrSaveRam:
		return normalEntry{page: saveRamPage, status: status}
	case ChrNameTable:
		src := mirroring[w.Bank.Quadrant%4]
		switch src.Kind {
		case NameTableCiram:
			return normalEntry{page: ciramPage(src.Side), status: bank.StatusReadWrite}
		case NameTableFillMode:
			return normalEntry{page: fillModeTilePage, status: bank.StatusReadOnly}
		case NameTableExtendedRam:
			return normalEntry{page: extendedRamPage, status: bank.StatusReadWrite}
		case NameTableSaveRam:
			return normalEntry{page: saveRamPage, status: bank.StatusReadWrite}
		default:
			return normalEntry{page: ramPage(0), status: bank.StatusReadWrite}
		}
	case ChrRom:
		bankIdx := resolveChrBankIndex(w, regs, sizes.RomSize)
		page := bankIdx*ppb + pageOffsetInWindow
		page = foldPage(page, mediumPageCount(sizes.RomSize, chrPageSize))
		return normalEntry{page: romPage(page), status: status}
	case ChrRam:
		bankIdx := resolveChrBankIndex(w, regs, sizes.RamSize)
		page := bankIdx*ppb + pageOffsetInWindow
		page = foldPage(page, mediumPageCount(sizes.RamSize, chrPageSize))
		return normalEntry{page: ramPage(page), status: status}
	default:
		return normalEntry{page: emptyPage, status: bank.StatusDisabled}
	}
}

// resolveChrSubEntry is resolveChrEntry's counterpart for windows smaller
// than a page, numbering its result in subSlotSize units for the same
// reason resolvePrgSubEntry does.
func resolveChrSubEntry(w ChrWindow, regs *bank.ChrBankRegisters, subIndex uint32, sizes ChrMediumSizes, mirroring Mirroring, override AccessOverride) normalEntry {
	kind := w.Bank.Kind
	if override == ForceRom && kind == ChrRam {
		kind = ChrRom
	} else if override == ForceRam && kind == ChrRom {
		kind = ChrRam
	}

	status := bank.StatusReadWrite
	if kind == ChrRom {
		status = bank.StatusReadOnly
	}
	if w.Bank.HasStatusReg() {
		status = regs.Status(w.Bank.StatusReg)
	}

	subsPerBank := uint32(w.Size()) / subSlotSize

	switch kind {
	case ChrSaveRam:
		return normalEntry{page: saveRamPage, status: status}
	case ChrNameTable:
		src := mirroring[w.Bank.Quadrant%4]
		switch src.Kind {
		case NameTableCiram:
			return normalEntry{page: ciramPage(src.Side), status: bank.StatusReadWrite}
		case NameTableFillMode:
			return normalEntry{page: fillModeTilePage, status: bank.StatusReadOnly}
		case NameTableExtendedRam:
			return normalEntry{page: extendedRamPage, status: bank.StatusReadWrite}
		case NameTableSaveRam:
			return normalEntry{page: saveRamPage, status: bank.StatusReadWrite}
		default:
			return normalEntry{page: ramPage(0), status: bank.StatusReadWrite}
		}
	case ChrRom:
		bankIdx := resolveChrBankIndex(w, regs, sizes.RomSize)
		n := bankIdx*subsPerBank + subIndex
		n = foldPage(n, mediumSubSlotCount(sizes.RomSize))
		return normalEntry{page: romPage(n), status: status}
	case ChrRam:
		bankIdx := resolveChrBankIndex(w, regs, sizes.RamSize)
		n := bankIdx*subsPerBank + subIndex
		n = foldPage(n, mediumSubSlotCount(sizes.RamSize))
		return normalEntry{page: ramPage(n), status: status}
	default:
		return normalEntry{page: emptyPage, status: bank.StatusDisabled}
	}
}

func resolveChrBankIndex(w ChrWindow, regs *bank.ChrBankRegisters, mediumSize uint32) uint32 {
	src := w.Bank.source
	var raw bank.Number
	switch src.kind {
	case sourceFixed:
		raw = src.fixed
	case sourceRegister:
		raw = regs.Get(bank.ChrRegisterID(src.reg)).Index
	case sourceMetaRegister:
		raw = regs.GetFromMeta(bank.MetaRegisterID(src.reg)).Index
	default:
		raw = bank.ZeroNumber
	}
	count := bankCountForWindow(mediumSize, uint32(w.Size()))
	return uint32(raw.Resolve(uint16(count)))
}

// BuildChrMemoryMap builds a MemoryMap for the given CHR layout, the
// currently live register state, and the currently installed Mirroring.
func BuildChrMemoryMap(layout *ChrLayout, regs *bank.ChrBankRegisters, sizes ChrMediumSizes, mirroring Mirroring, override AccessOverride) *MemoryMap {
	numSlots := int(0x3000 / chrPageSize)
	slots := make([]mapSlot, numSlots)

	for _, w := range layout.Windows() {
		sz := uint32(w.Size())
		if sz >= chrPageSize {
			pages := sz / chrPageSize
			for p := uint32(0); p < pages; p++ {
				addr := uint32(w.Start) + p*chrPageSize
				idx := addr / chrPageSize
				slots[idx] = mapSlot{entry: resolveChrEntry(w, regs, p, sizes, mirroring, override)}
			}
		} else {
			subCount := chrPageSize / subSlotSize
			idx := uint32(w.Start) / chrPageSize
			existing := slots[idx]
			if !existing.multi {
				existing = mapSlot{multi: true, sub: make([]normalEntry, subCount)}
				for i := range existing.sub {
					existing.sub[i] = normalEntry{page: emptyPage, status: bank.StatusDisabled}
				}
			}
			startSub := uint32(w.Start) % chrPageSize / subSlotSize
			span := sz / subSlotSize
			for i := uint32(0); i < span; i++ {
				existing.sub[startSub+i] = resolveChrSubEntry(w, regs, i, sizes, mirroring, override)
			}
			slots[idx] = existing
		}
	}

	return &MemoryMap{base: 0x0000, pageSize: chrPageSize, slots: slots}
}
