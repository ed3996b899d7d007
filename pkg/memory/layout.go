package memory

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

type mirrorAware interface {
	MirrorTarget() (uint16, bool)
}

// Layout is an ordered, non-overlapping, gap-free set of windows spanning
// one full addressable range (PRG: 0x6000-0xFFFF; CHR: 0x0000-0x2FFF).
type Layout[B mirrorAware] struct {
	windows []Window[B]
	base    uint16
	top     uint16
}

// NewLayout validates and builds a Layout: the first window must start at
// base, the last must end at top, windows must be contiguous, ordered,
// and non-overlapping, and mirror windows must target a real, non-mirror
// window start. The minimum-bank-size sub-page rule depends on every
// layout a mapper owns and is checked separately by
// ValidatePrgMinimumBankSize/ValidateChrMinimumBankSize once all of a
// mapper's layouts are known.
func NewLayout[B mirrorAware](base, top uint16, windows []Window[B]) (*Layout[B], error) {
	var result error

	if len(windows) == 0 {
		return nil, ErrLayoutEmpty
	}

	if windows[0].Start != base {
		result = multierror.Append(result, fmt.Errorf("%w: got 0x%04X, want 0x%04X", ErrLayoutDoesNotStartAtBase, windows[0].Start, base))
	}
	last := windows[len(windows)-1]
	if last.End != top {
		result = multierror.Append(result, fmt.Errorf("%w: got 0x%04X, want 0x%04X", ErrLayoutDoesNotEndAtTop, last.End, top))
	}

	starts := make(map[uint16]bool, len(windows))
	for i, w := range windows {
		if uint32(w.End)-uint32(w.Start)+1 != w.Size() {
			result = multierror.Append(result, fmt.Errorf("%w: window at 0x%04X", ErrWindowSizeMismatch, w.Start))
		}
		starts[w.Start] = true

		if i > 0 {
			prev := windows[i-1]
			if w.Start < prev.End+1 {
				result = multierror.Append(result, fmt.Errorf("%w: window at 0x%04X overlaps window ending at 0x%04X", ErrLayoutOverlap, w.Start, prev.End))
			} else if w.Start > prev.End+1 {
				result = multierror.Append(result, fmt.Errorf("%w: gap between 0x%04X and 0x%04X", ErrLayoutGap, prev.End, w.Start))
			}
		}
	}

	for _, w := range windows {
		target, isMirror := w.Bank.MirrorTarget()
		if !isMirror {
			continue
		}
		if !starts[target] {
			result = multierror.Append(result, fmt.Errorf("%w: window at 0x%04X mirrors 0x%04X", ErrMirrorTargetMissing, w.Start, target))
			continue
		}
		for _, candidate := range windows {
			if candidate.Start != target {
				continue
			}
			if _, chained := candidate.Bank.MirrorTarget(); chained {
				result = multierror.Append(result, fmt.Errorf("%w: window at 0x%04X mirrors a mirror at 0x%04X", ErrMirrorChain, w.Start, target))
			}
		}
	}

	if result != nil {
		return nil, result
	}

	cp := make([]Window[B], len(windows))
	copy(cp, windows)
	return &Layout[B]{windows: cp, base: base, top: top}, nil
}

// Windows returns the ordered window list.
func (l *Layout[B]) Windows() []Window[B] { return l.windows }

// WindowAt returns the window covering addr, and whether one was found.
func (l *Layout[B]) WindowAt(addr uint16) (Window[B], bool) {
	for _, w := range l.windows {
		if w.Contains(addr) {
			return w, true
		}
	}
	var zero Window[B]
	return zero, false
}

// WindowStartingAt returns the window whose Start equals addr, used to
// resolve MirrorOf targets.
func (l *Layout[B]) WindowStartingAt(addr uint16) (Window[B], bool) {
	for _, w := range l.windows {
		if w.Start == addr {
			return w, true
		}
	}
	var zero Window[B]
	return zero, false
}

// MinimumWindowSize is the smallest window size in this layout, counting
// every window kind. ValidatePrgMinimumBankSize/ValidateChrMinimumBankSize
// do not use it; they compute their own minimum over ROM/RAM windows.
func (l *Layout[B]) MinimumWindowSize() uint32 {
	min := uint32(1) << 31
	for _, w := range l.windows {
		if w.Size() < min {
			min = w.Size()
		}
	}
	return min
}

// isSubPageSize reports whether size is a power-of-two multiple of the
// 128-byte sub-slot unit, the only window sizes a Multi map slot can
// represent. It sets no upper bound; its callers pass only windows smaller
// than the mapper's bank size.
func isSubPageSize(size uint32) bool {
	if size < subSlotSize || size%subSlotSize != 0 {
		return false
	}
	units := size / subSlotSize
	return units&(units-1) == 0
}

// ValidatePrgMinimumBankSize checks every PRG layout a mapper owns
// against the smallest page-aligned ROM/RAM window size found across all
// of them (the mapper's bank size): a ROM/RAM window smaller than that
// must be a sub-page window, since anything else could not be resolved
// on an aligned bank boundary. Empty and MirrorOf windows are exempt.
func ValidatePrgMinimumBankSize(layouts []*PrgLayout) error {
	minBank := uint32(1) << 31
	for _, l := range layouts {
		for _, w := range l.Windows() {
			if prgBankIsRomRam(w.Bank) && w.Size() >= prgPageSize && w.Size() < minBank {
				minBank = w.Size()
			}
		}
	}
	var result error
	for _, l := range layouts {
		for _, w := range l.Windows() {
			if w.Size() >= minBank || !prgBankIsRomRam(w.Bank) {
				continue
			}
			if !isSubPageSize(w.Size()) {
				result = multierror.Append(result, fmt.Errorf("%w: window at 0x%04X, size %d", ErrSubPageWindowTooSmall, w.Start, w.Size()))
			}
		}
	}
	return result
}

// ValidateChrMinimumBankSize is ValidatePrgMinimumBankSize for the CHR
// side.
func ValidateChrMinimumBankSize(layouts []*ChrLayout) error {
	minBank := uint32(1) << 31
	for _, l := range layouts {
		for _, w := range l.Windows() {
			if chrBankIsRomRam(w.Bank) && w.Size() >= chrPageSize && w.Size() < minBank {
				minBank = w.Size()
			}
		}
	}
	var result error
	for _, l := range layouts {
		for _, w := range l.Windows() {
			if w.Size() >= minBank || !chrBankIsRomRam(w.Bank) {
				continue
			}
			if !isSubPageSize(w.Size()) {
				result = multierror.Append(result, fmt.Errorf("%w: window at 0x%04X, size %d", ErrSubPageWindowTooSmall, w.Start, w.Size()))
			}
		}
	}
	return result
}

func prgBankIsRomRam(b PrgBank) bool {
	switch b.Kind {
	case PrgRom, PrgRam, PrgWorkRam, PrgRomRam, PrgSaveRam:
		return true
	default:
		return false
	}
}

func chrBankIsRomRam(b ChrBank) bool {
	switch b.Kind {
	case ChrRom, ChrRam, ChrSaveRam:
		return true
	default:
		return false
	}
}

// PrgLayout is the PRG-space specialization of Layout.
type PrgLayout = Layout[PrgBank]

// ChrLayout is the CHR-space specialization of Layout.
type ChrLayout = Layout[ChrBank]

// NewPrgLayout builds a Layout spanning the PRG cartridge-space range
// 0x6000-0xFFFF.
func NewPrgLayout(windows []PrgWindow) (*PrgLayout, error) {
	return NewLayout[PrgBank](0x6000, 0xFFFF, windows)
}

// NewChrLayout builds a Layout spanning the CHR pattern-table-plus-
// nametable range 0x0000-0x2FFF.
func NewChrLayout(windows []ChrWindow) (*ChrLayout, error) {
	return NewLayout[ChrBank](0x0000, 0x2FFF, windows)
}
