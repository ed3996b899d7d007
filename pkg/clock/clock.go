// Package clock implements the master-clock scheduling fabric that
// interleaves CPU, PPU, and APU half-cycles.
package clock

// CycleParity distinguishes the CPU's two half-cycle phases: Get is
// read-capable, Put is write-capable. DMA controllers observe this
// parity to decide when they may halt or read.
type CycleParity int

const (
	Get CycleParity = iota
	Put
)

// SubTick names one of the three things a master-clock phase can invoke.
type SubTick int

const (
	TickApu SubTick = iota
	TickCpuFirstHalf
	TickCpuSecondHalf
	TickPpu
)

// Phase is one entry in the master schedule: a fixed, ordered list of
// sub-ticks to invoke before advancing.
type Phase struct {
	SubTicks []SubTick
}

// NtscSchedule is the NTSC three-phase schedule:
// Phase 0 runs the APU tick and the CPU's first half; Phase 1 runs the
// CPU's second half; Phase 2 runs the PPU. This is data, not branching
// code, so a PAL schedule is a second table rather than a code fork.
var NtscSchedule = []Phase{
	{SubTicks: []SubTick{TickApu, TickCpuFirstHalf}},
	{SubTicks: []SubTick{TickCpuSecondHalf}},
	{SubTicks: []SubTick{TickPpu}},
}

// Hooks are the callbacks a MasterClock invokes for each sub-tick kind.
// CpuHalf receives the parity of the half-cycle it's about to run so
// callers (the CPU, DMA controllers) can apply Get/Put-specific logic.
type Hooks struct {
	Apu    func()
	CpuHalf func(parity CycleParity)
	Ppu    func()
}

// MasterClock drives Hooks through a fixed Phase schedule, one master
// tick at a time.
type MasterClock struct {
	schedule  []Phase
	hooks     Hooks
	phaseIdx  int
	cycle     int64
}

// New builds a MasterClock over the given schedule (pass NtscSchedule for
// standard NTSC timing).
func New(schedule []Phase, hooks Hooks) *MasterClock {
	return &MasterClock{schedule: schedule, hooks: hooks}
}

// Cycle returns the number of master ticks executed so far.
func (m *MasterClock) Cycle() int64 { return m.cycle }

// Tick runs exactly one master-clock tick: the current phase's sub-ticks,
// in fixed order, then advances to the next phase (wrapping at the end of
// the schedule).
func (m *MasterClock) Tick() {
	phase := m.schedule[m.phaseIdx]
	for _, st := range phase.SubTicks {
		switch st {
		case TickApu:
			if m.hooks.Apu != nil {
				m.hooks.Apu()
			}
		case TickCpuFirstHalf:
			if m.hooks.CpuHalf != nil {
				m.hooks.CpuHalf(Get)
			}
		case TickCpuSecondHalf:
			if m.hooks.CpuHalf != nil {
				m.hooks.CpuHalf(Put)
			}
		case TickPpu:
			if m.hooks.Ppu != nil {
				m.hooks.Ppu()
			}
		}
	}
	m.phaseIdx = (m.phaseIdx + 1) % len(m.schedule)
	m.cycle++
}
