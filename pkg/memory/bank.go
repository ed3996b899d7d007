package memory

import "github.com/wrenfield/nesmapper/pkg/bank"

// sourceKind tags how a Bank's underlying bank.Number is obtained: either
// baked into the layout at construction time, or read live out of a bank
// register (optionally through one more level of meta-register
// indirection).
type sourceKind int

const (
	sourceFixed sourceKind = iota
	sourceRegister
	sourceMetaRegister
)

// bankSource is the declarative half of a Bank: *how* to find the current
// bank.Number, as opposed to bank.Location, which is the already-resolved
// runtime value sitting in a register. A Window is constructed once with a
// bankSource and consults the live register file on every resolution.
type bankSource struct {
	kind   sourceKind
	fixed  bank.Number
	reg    int
	isChr  bool
}

func fixedSource(n bank.Number) bankSource { return bankSource{kind: sourceFixed, fixed: n} }

func prgRegisterSource(id bank.PrgRegisterID) bankSource {
	return bankSource{kind: sourceRegister, reg: int(id)}
}

func chrRegisterSource(id bank.ChrRegisterID) bankSource {
	return bankSource{kind: sourceRegister, reg: int(id), isChr: true}
}

func chrMetaSource(id bank.MetaRegisterID) bankSource {
	return bankSource{kind: sourceMetaRegister, reg: int(id), isChr: true}
}

// PrgBankKind tags which variant a PrgBank currently holds.
type PrgBankKind int

const (
	PrgEmpty PrgBankKind = iota
	PrgWorkRam
	PrgSaveRam
	PrgExtendedRam
	PrgRom
	PrgRam
	PrgRomRam
	PrgMirrorOf
)

// PrgBank is the PRG-side tagged union: Empty,
// WorkRam, SaveRam, ExtendedRam, Rom, Ram, RomRam, or MirrorOf.
type PrgBank struct {
	Kind          PrgBankKind
	source        bankSource
	StatusReg     bank.StatusRegisterID
	hasStatusReg  bool
	ModeReg       bank.ModeRegisterID
	SaveRamOffset uint32
	MirrorStart   uint16
}

// PrgBankEmpty reads open-bus and ignores writes.
func PrgBankEmpty() PrgBank { return PrgBank{Kind: PrgEmpty} }

// PrgBankRom is fixed program ROM at a baked-in bank number.
func PrgBankRomFixed(n bank.Number) PrgBank {
	return PrgBank{Kind: PrgRom, source: fixedSource(n)}
}

// PrgBankRomSwitchable is program ROM whose bank number is read live out of
// the given register.
func PrgBankRomSwitchable(id bank.PrgRegisterID) PrgBank {
	return PrgBank{Kind: PrgRom, source: prgRegisterSource(id)}
}

// PrgBankRam is writable program space switched by the given register.
func PrgBankRamSwitchable(id bank.PrgRegisterID, status bank.StatusRegisterID) PrgBank {
	return PrgBank{Kind: PrgRam, source: prgRegisterSource(id), StatusReg: status, hasStatusReg: true}
}

// PrgBankWorkRam is console/cartridge work RAM, optionally status-gated.
func PrgBankWorkRam(status bank.StatusRegisterID) PrgBank {
	return PrgBank{Kind: PrgWorkRam, StatusReg: status, hasStatusReg: true}
}

// PrgBankSaveRam is battery-backed RAM at a fixed byte offset into the
// save-RAM buffer.
func PrgBankSaveRam(offset uint32) PrgBank {
	return PrgBank{Kind: PrgSaveRam, SaveRamOffset: offset}
}

// PrgBankExtendedRam is the 1 KiB mapper-internal scratch RAM (MMC5 ExRAM).
func PrgBankExtendedRam(status bank.StatusRegisterID) PrgBank {
	return PrgBank{Kind: PrgExtendedRam, StatusReg: status, hasStatusReg: true}
}

// PrgBankRomRam resolves to ROM or RAM depending on the live mode register.
func PrgBankRomRam(id bank.PrgRegisterID, status bank.StatusRegisterID, mode bank.ModeRegisterID) PrgBank {
	return PrgBank{Kind: PrgRomRam, source: prgRegisterSource(id), StatusReg: status, hasStatusReg: true, ModeReg: mode}
}

// PrgBankMirrorOf aliases whatever window starts at the given address.
func PrgBankMirrorOf(windowStart uint16) PrgBank {
	return PrgBank{Kind: PrgMirrorOf, MirrorStart: windowStart}
}

// HasStatusReg reports whether this bank's readability is gated by a
// status register rather than being unconditionally read/write.
func (b PrgBank) HasStatusReg() bool { return b.hasStatusReg }

// ChrBankKind tags which variant a ChrBank currently holds.
type ChrBankKind int

const (
	ChrRom ChrBankKind = iota
	ChrRam
	ChrSaveRam
	ChrNameTable
)

// ChrBank is the smaller CHR-side analog of PrgBank.
type ChrBank struct {
	Kind      ChrBankKind
	source    bankSource
	StatusReg bank.StatusRegisterID
	hasStatus bool
	Quadrant  int
}

func ChrBankRomFixed(n bank.Number) ChrBank {
	return ChrBank{Kind: ChrRom, source: fixedSource(n)}
}

func ChrBankRomSwitchable(id bank.ChrRegisterID) ChrBank {
	return ChrBank{Kind: ChrRom, source: chrRegisterSource(id)}
}

func ChrBankRomViaMeta(id bank.MetaRegisterID) ChrBank {
	return ChrBank{Kind: ChrRom, source: chrMetaSource(id)}
}

func ChrBankRamSwitchable(id bank.ChrRegisterID, status bank.StatusRegisterID) ChrBank {
	return ChrBank{Kind: ChrRam, source: chrRegisterSource(id), StatusReg: status, hasStatus: true}
}

func ChrBankSaveRam() ChrBank { return ChrBank{Kind: ChrSaveRam} }

// ChrBankNameTable marks a window as one of the four logical nametable
// quadrants (0-3). What physically backs that quadrant is looked up at
// resolve time from ChrMemory's current Mirroring table, since mirroring
// is runtime-switchable by mapper register writes independent of the
// layout itself.
func ChrBankNameTable(quadrant int) ChrBank {
	return ChrBank{Kind: ChrNameTable, Quadrant: quadrant}
}

func (b ChrBank) HasStatusReg() bool { return b.hasStatus }
