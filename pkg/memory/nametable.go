package memory

import "github.com/wrenfield/nesmapper/pkg/bank"

// NameTableSourceKind tags what backs one of the four 1 KiB nametable
// quadrants.
type NameTableSourceKind int

const (
	NameTableCiram NameTableSourceKind = iota
	NameTableWorkRam
	NameTableSaveRam
	NameTableExtendedRam
	NameTableFillMode
)

// NameTableSource names the physical medium backing one nametable
// quadrant.
type NameTableSource struct {
	Kind NameTableSourceKind
	Side bank.CiramSide
}

func ciramSource(side bank.CiramSide) NameTableSource {
	return NameTableSource{Kind: NameTableCiram, Side: side}
}

// CiramSource backs a quadrant with one side of the console's CIRAM.
func CiramSource(side bank.CiramSide) NameTableSource { return ciramSource(side) }

// ExtendedRamSource backs a quadrant with the mapper's extended RAM.
func ExtendedRamSource() NameTableSource {
	return NameTableSource{Kind: NameTableExtendedRam}
}

// FillModeSource backs a quadrant with the single-tile fill generator.
func FillModeSource() NameTableSource {
	return NameTableSource{Kind: NameTableFillMode}
}

// Mirroring is the [4]NameTableSource assignment for the four logical
// quadrants: top-left, top-right, bottom-left, bottom-right.
type Mirroring [4]NameTableSource

// Horizontal mirroring: top row shares one CIRAM half, bottom row the
// other.
func Horizontal() Mirroring {
	return Mirroring{
		ciramSource(bank.CiramLeft), ciramSource(bank.CiramLeft),
		ciramSource(bank.CiramRight), ciramSource(bank.CiramRight),
	}
}

// Vertical mirroring: left column shares one CIRAM half, right column the
// other.
func Vertical() Mirroring {
	return Mirroring{
		ciramSource(bank.CiramLeft), ciramSource(bank.CiramRight),
		ciramSource(bank.CiramLeft), ciramSource(bank.CiramRight),
	}
}

// OneScreenLeft maps every quadrant to CIRAM's left half.
func OneScreenLeft() Mirroring {
	s := ciramSource(bank.CiramLeft)
	return Mirroring{s, s, s, s}
}

// OneScreenRight maps every quadrant to CIRAM's right half.
func OneScreenRight() Mirroring {
	s := ciramSource(bank.CiramRight)
	return Mirroring{s, s, s, s}
}

// FourScreen requires four independent quadrants, backed by cartridge RAM
// rather than the console's 2 KiB of CIRAM; callers install a mapper-
// specific Mirroring rather than using a shared preset.
func FourScreen(quadrants [4]NameTableSource) Mirroring {
	return Mirroring(quadrants)
}
