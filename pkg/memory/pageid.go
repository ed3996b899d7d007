package memory

import "github.com/wrenfield/nesmapper/pkg/bank"

// PageIdKind tags which physical medium a resolved page slot refers to.
type PageIdKind int

const (
	PageEmpty PageIdKind = iota
	PageRom
	PageRam
	PageCiram
	PageSaveRam
	PageExtendedRam
	PageFillModeTile
)

// PageId identifies the physical page a resolved MemoryMap slot points at.
// Page numbers are already post-modulo: if the underlying buffer has fewer
// pages than a register can address, high bits were silently folded away
// during MemoryMap construction.
type PageId struct {
	Kind   PageIdKind
	Number uint32
	Side   bank.CiramSide
}

func romPage(n uint32) PageId        { return PageId{Kind: PageRom, Number: n} }
func ramPage(n uint32) PageId        { return PageId{Kind: PageRam, Number: n} }
func ciramPage(side bank.CiramSide) PageId {
	return PageId{Kind: PageCiram, Side: side}
}

var (
	emptyPage          = PageId{Kind: PageEmpty}
	saveRamPage        = PageId{Kind: PageSaveRam}
	extendedRamPage    = PageId{Kind: PageExtendedRam}
	fillModeTilePage   = PageId{Kind: PageFillModeTile}
)
