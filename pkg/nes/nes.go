// Package nes wires a loaded cartridge's mapper and memory to a PPU, an
// APU register shell, and the system bus, and drives them through the
// master-clock schedule. An external CPU module drives NES.Step: this
// package exposes the bus surface a 6502 core would read/write and the
// interrupt lines it would poll, but does not implement or depend on one.
package nes

import (
	"fmt"

	"github.com/wrenfield/nesmapper/pkg/apu"
	"github.com/wrenfield/nesmapper/pkg/bus"
	"github.com/wrenfield/nesmapper/pkg/cartridge"
	"github.com/wrenfield/nesmapper/pkg/clock"
	"github.com/wrenfield/nesmapper/pkg/ppu"
)

// CPU is the external interface boundary a 6502 core implements to be
// driven by NES. RunHalfCycle is invoked once per Get half-cycle and
// once per Put half-cycle of every CPU cycle, mirroring the real
// hardware's two-phase clock; the implementation is responsible for
// reading/writing through the Bus passed at construction and for
// checking NmiAsserted/IrqAsserted at an instruction boundary.
type CPU interface {
	RunHalfCycle(parity clock.CycleParity)
}

// NES coordinates one cartridge's mapper/memory, its PPU and APU, the
// system bus, and the master-clock schedule that interleaves them. The
// CPU itself is supplied by the caller.
type NES struct {
	cart  *cartridge.Cartridge
	ppu   *ppu.PPU
	apu   *apu.Apu
	bus   *bus.Bus
	clock *clock.MasterClock
	cpu   CPU
}

// New loads romPath and wires a complete NES system around it; cpu is the
// external CPU module driving execution.
func New(romPath string, cpu CPU) (*NES, error) {
	cart, err := cartridge.Load(romPath)
	if err != nil {
		return nil, fmt.Errorf("nes: loading ROM: %w", err)
	}
	return NewFromCartridge(cart, cpu), nil
}

// NewFromCartridge wires a complete NES system around an already-loaded
// cartridge.
func NewFromCartridge(cart *cartridge.Cartridge, cpu CPU) *NES {
	p := ppu.New(cart.Mapper, cart.Memory)
	a := apu.New()
	b := bus.New(cart.Mapper, cart.Memory, p, a)

	n := &NES{cart: cart, ppu: p, apu: a, bus: b, cpu: cpu}

	n.clock = clock.New(clock.NtscSchedule, clock.Hooks{
		Apu: func() {},
		CpuHalf: func(parity clock.CycleParity) {
			if !b.CpuShouldBeHalted() {
				cpu.RunHalfCycle(parity)
			}
			b.TickDma(parity)
			if parity == clock.Put {
				// Master ticks run three per CPU cycle; mappers count in
				// CPU cycles.
				b.EndOfCpuCycle(n.clock.Cycle() / 3)
			}
		},
		Ppu: func() {
			b.TickPpu()
		},
	})

	return n
}

// Step runs one full CPU cycle (the three-phase NTSC schedule: APU tick
// plus CPU first half, CPU second half, PPU tick).
func (n *NES) Step() {
	n.clock.Tick()
	n.clock.Tick()
	n.clock.Tick()
}

// RunFrame steps until the PPU reports a completed frame.
func (n *NES) RunFrame() {
	for !n.ppu.FrameReady() {
		n.Step()
	}
}

// NmiAsserted reports and clears whether the PPU has asserted NMI since
// the last call. The external CPU module should check this at an
// instruction boundary.
func (n *NES) NmiAsserted() bool { return n.bus.NmiAsserted() }

// IrqAsserted reports whether the mapper's IRQ counter or the APU
// currently wants the CPU's IRQ line held low.
func (n *NES) IrqAsserted() bool { return n.bus.IrqAsserted() }

// Bus returns the system bus, for the CPU module to read/write through.
func (n *NES) Bus() *bus.Bus { return n.bus }

// PPU returns the PPU, for diagnostic/test access.
func (n *NES) PPU() *ppu.PPU { return n.ppu }

// Apu returns the APU register shell, for diagnostic/test access and for
// a host audio sink to drain PopSample from.
func (n *NES) Apu() *apu.Apu { return n.apu }

// Cartridge returns the loaded cartridge.
func (n *NES) Cartridge() *cartridge.Cartridge { return n.cart }

// Shutdown flushes the cartridge's save RAM, if any, to disk.
func (n *NES) Shutdown() { n.cart.FlushSaveRam() }
