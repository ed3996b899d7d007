package bank

// PrgRegisterID names one of the ten PRG bank-location registers a mapper
// can target (P0-P9). Stored as a small integer so the register file below
// can be a fixed-size array instead of a map.
type PrgRegisterID int

const (
	P0 PrgRegisterID = iota
	P1
	P2
	P3
	P4
	P5
	P6
	P7
	P8
	P9
	prgRegisterCount
)

// ChrRegisterID names one of the sixteen CHR bank-location registers
// (C0-C15). The last four (C12-C15) are conventionally used as the
// nametable-quadrant slots, since CHR addressing also covers $2000-$2FFF.
type ChrRegisterID int

const (
	C0 ChrRegisterID = iota
	C1
	C2
	C3
	C4
	C5
	C6
	C7
	C8
	C9
	C10
	C11
	C12
	C13
	C14
	C15
	chrRegisterCount
)

// StatusRegisterID names one of the sixteen read/write-status registers
// shared by PRG and CHR banks (S0-S15).
type StatusRegisterID int

const (
	S0 StatusRegisterID = iota
	S1
	S2
	S3
	S4
	S5
	S6
	S7
	S8
	S9
	S10
	S11
	S12
	S13
	S14
	S15
	statusRegisterCount
)

// ModeRegisterID names one of the ROM/RAM mode registers used by
// RomRam-type banks (R0-R11).
type ModeRegisterID int

const (
	R0 ModeRegisterID = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	R11
	modeRegisterCount
)

// MetaRegisterID names one of the two CHR meta-registers: one extra level
// of indirection letting a mapper redirect which concrete register backs a
// window (used by, e.g., MMC2/MMC4 latch-driven CHR banks).
type MetaRegisterID int

const (
	M0 MetaRegisterID = iota
	M1
	metaRegisterCount
)

// registerFile is the storage shared by the PRG and CHR register tables;
// both expose the same five-operation contract over it.
type registerFile struct {
	locations []Location
	statuses  [statusRegisterCount]Status
	modes     [modeRegisterCount]RomRamMode
}

func newRegisterFile(size int) registerFile {
	f := registerFile{locations: make([]Location, size)}
	for i := range f.locations {
		f.locations[i] = IndexLocation(ZeroNumber)
	}
	for i := range f.statuses {
		f.statuses[i] = StatusReadWrite
	}
	for i := range f.modes {
		f.modes[i] = ModeRom
	}
	return f
}

func (f *registerFile) get(id int) Location {
	return f.locations[id]
}

func (f *registerFile) set(id int, n Number) {
	f.locations[id] = IndexLocation(n)
}

func (f *registerFile) setBits(id int, value, mask uint16) {
	old := f.locations[id]
	var oldRaw uint16
	if !old.IsCiram() {
		oldRaw = old.Index.ToRaw()
	}
	f.locations[id] = IndexLocation(Number((oldRaw &^ mask) | (value & mask)))
}

func (f *registerFile) update(id int, fn func(uint16) uint16) {
	old := f.locations[id]
	var oldRaw uint16
	if !old.IsCiram() {
		oldRaw = old.Index.ToRaw()
	}
	f.locations[id] = IndexLocation(Number(fn(oldRaw)))
}

func (f *registerFile) setToCiramSide(id int, side CiramSide) {
	f.locations[id] = CiramLocation(side)
}

func (f *registerFile) status(id StatusRegisterID) Status {
	return f.statuses[id]
}

func (f *registerFile) setStatus(id StatusRegisterID, s Status) {
	f.statuses[id] = s
}

func (f *registerFile) mode(id ModeRegisterID) RomRamMode {
	return f.modes[id]
}

func (f *registerFile) setMode(id ModeRegisterID, m RomRamMode) {
	f.modes[id] = m
}

// PrgBankRegisters is the process-wide table of PRG bank locations and
// their auxiliary status/mode registers, mutated directly by mapper
// register-write handlers. Mutating it never recomputes a MemoryMap by
// itself: the owning PrgMemory recomputes on exit from any mapper call
// that touched a register (see memory.PrgMemory.RebuildIfDirty).
type PrgBankRegisters struct {
	registerFile
}

// NewPrgBankRegisters builds a register file with every location defaulted
// to bank 0, every status defaulted to read/write, and every ROM/RAM mode
// defaulted to ROM.
func NewPrgBankRegisters() *PrgBankRegisters {
	return &PrgBankRegisters{registerFile: newRegisterFile(int(prgRegisterCount))}
}

func (r *PrgBankRegisters) Get(id PrgRegisterID) Location            { return r.get(int(id)) }
func (r *PrgBankRegisters) Set(id PrgRegisterID, n Number)            { r.set(int(id), n) }
func (r *PrgBankRegisters) SetBits(id PrgRegisterID, value, mask uint16) {
	r.setBits(int(id), value, mask)
}
func (r *PrgBankRegisters) Update(id PrgRegisterID, fn func(uint16) uint16) {
	r.update(int(id), fn)
}
func (r *PrgBankRegisters) SetToCiramSide(id PrgRegisterID, side CiramSide) {
	r.setToCiramSide(int(id), side)
}
func (r *PrgBankRegisters) Status(id StatusRegisterID) Status          { return r.status(id) }
func (r *PrgBankRegisters) SetStatus(id StatusRegisterID, s Status)     { r.setStatus(id, s) }
func (r *PrgBankRegisters) Mode(id ModeRegisterID) RomRamMode           { return r.mode(id) }
func (r *PrgBankRegisters) SetMode(id ModeRegisterID, m RomRamMode)     { r.setMode(id, m) }

// ChrBankRegisters is the CHR-side analog of PrgBankRegisters. It carries
// two additional meta-registers: one level of indirection letting a mapper
// redirect a window's register lookup at runtime (MMC2/MMC4's
// pattern-table latch being the canonical user).
type ChrBankRegisters struct {
	registerFile
	meta [metaRegisterCount]ChrRegisterID
}

// NewChrBankRegisters builds a CHR register file with the same defaults as
// NewPrgBankRegisters, plus both meta-registers pointed at C0.
func NewChrBankRegisters() *ChrBankRegisters {
	return &ChrBankRegisters{registerFile: newRegisterFile(int(chrRegisterCount))}
}

func (r *ChrBankRegisters) Get(id ChrRegisterID) Location            { return r.get(int(id)) }
func (r *ChrBankRegisters) Set(id ChrRegisterID, n Number)            { r.set(int(id), n) }
func (r *ChrBankRegisters) SetBits(id ChrRegisterID, value, mask uint16) {
	r.setBits(int(id), value, mask)
}
func (r *ChrBankRegisters) Update(id ChrRegisterID, fn func(uint16) uint16) {
	r.update(int(id), fn)
}
func (r *ChrBankRegisters) SetToCiramSide(id ChrRegisterID, side CiramSide) {
	r.setToCiramSide(int(id), side)
}
func (r *ChrBankRegisters) Status(id StatusRegisterID) Status      { return r.status(id) }
func (r *ChrBankRegisters) SetStatus(id StatusRegisterID, s Status) { r.setStatus(id, s) }
func (r *ChrBankRegisters) Mode(id ModeRegisterID) RomRamMode       { return r.mode(id) }
func (r *ChrBankRegisters) SetMode(id ModeRegisterID, m RomRamMode) { r.setMode(id, m) }

// GetFromMeta resolves a meta-register one level further: whichever
// concrete ChrRegisterID the meta-register currently points at.
func (r *ChrBankRegisters) GetFromMeta(m MetaRegisterID) Location {
	return r.Get(r.meta[m])
}

// SetMeta repoints a meta-register at a different concrete CHR register.
func (r *ChrBankRegisters) SetMeta(m MetaRegisterID, target ChrRegisterID) {
	r.meta[m] = target
}
