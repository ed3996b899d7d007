package memory

import "errors"

// Construction-invariant sentinel errors:
// a layout that violates any of these is a mapper-implementation bug, not
// a runtime condition, and is reported as an aggregated error rather than
// a bare panic so a malformed mapper's own tests can see every affected
// window in one failure.
var (
	ErrLayoutEmpty          = errors.New("memory: layout has no windows")
	ErrLayoutDoesNotStartAtBase = errors.New("memory: first window does not start at the layout base address")
	ErrLayoutDoesNotEndAtTop    = errors.New("memory: last window does not end at the layout top address")
	ErrLayoutGap                = errors.New("memory: windows are not contiguous")
	ErrLayoutOverlap            = errors.New("memory: windows overlap")
	ErrWindowSizeMismatch       = errors.New("memory: window size does not match end - start + 1")
	ErrMirrorTargetMissing      = errors.New("memory: MirrorOf window has no matching target window start address")
	ErrMirrorChain           = errors.New("memory: MirrorOf window targets another MirrorOf window")
	ErrSubPageWindowTooSmall = errors.New("memory: window smaller than the minimum bank size is not a valid sub-page size and is not Empty/Mirror")
)
