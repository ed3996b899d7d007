// Package bus implements the NES system bus connecting the CPU's address
// space to RAM, the PPU register window, the APU/IO register window, and
// cartridge space. It also owns the OAM/DMC DMA
// controllers and the open-bus data latch those bus-conflict and
// undriven-read semantics depend on.
package bus

import (
	"github.com/wrenfield/nesmapper/pkg/apu"
	"github.com/wrenfield/nesmapper/pkg/clock"
	"github.com/wrenfield/nesmapper/pkg/controller"
	"github.com/wrenfield/nesmapper/pkg/dma"
	"github.com/wrenfield/nesmapper/pkg/mapper"
	"github.com/wrenfield/nesmapper/pkg/ppu"
)

// Bus is the CPU-visible memory map:
//
//	$0000-$1FFF: 2KB internal RAM, mirrored every 0x0800 bytes
//	$2000-$3FFF: PPU registers, mirrored every 8 bytes
//	$4000-$4013, $4015, $4017: APU registers
//	$4014: OAM DMA trigger
//	$4016: joypad strobe (both controllers) / controller 1 read
//	$4017: controller 2 read (shared address with the APU frame counter)
//	$4018-$401F: CPU test mode, unimplemented, reads as open bus
//	$4020-$FFFF: cartridge space, resolved through the active mapper
type Bus struct {
	ram [2048]byte

	ppu *ppu.PPU
	apu *apu.Apu
	mp  mapper.Mapper
	mem *mapper.Memory

	controller1 *controller.Controller
	controller2 *controller.Controller

	oamDma dma.OamDma
	dmcDma dma.DmcDma

	// openBus is the CPU data-bus latch: the last byte any device drove
	// onto the bus. Reads from addresses no device determines splice in
	// whatever bits this holds.
	openBus byte
}

// New builds a Bus wired to the cartridge's mapper/memory pair and a PPU
// and APU already constructed over that same mapper/memory pair.
func New(mp mapper.Mapper, mem *mapper.Memory, p *ppu.PPU, a *apu.Apu) *Bus {
	return &Bus{
		ppu:         p,
		apu:         a,
		mp:          mp,
		mem:         mem,
		controller1: controller.New(),
		controller2: controller.New(),
	}
}

// Controller returns controller 1 (num == 0) or controller 2 (otherwise),
// for a caller to update button state on.
func (b *Bus) Controller(num int) *controller.Controller {
	if num == 0 {
		return b.controller1
	}
	return b.controller2
}

// Read services a CPU read, updating the open-bus latch with whatever the
// responding device determined and leaving undetermined bits holding
// their previous value.
func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr < 0x2000:
		b.openBus = b.ram[addr&0x07FF]
		return b.openBus

	case addr < 0x4000:
		res := b.ppu.ReadCPURegister(0x2000 + addr&0x0007)
		b.openBus = (res.Value & res.Mask) | (b.openBus &^ res.Mask)
		return b.openBus

	case addr == 0x4015:
		b.openBus = b.apu.ReadStatus()
		return b.openBus

	case addr == 0x4016:
		b.openBus = (b.openBus &^ 0x01) | (b.controller1.Read() & 0x01)
		return b.openBus

	case addr == 0x4017:
		b.openBus = (b.openBus &^ 0x01) | (b.controller2.Read() & 0x01)
		return b.openBus

	case addr < 0x4020:
		return b.openBus

	default:
		return b.readCartridge(addr)
	}
}

// Write services a CPU write. The CPU always drives the full byte onto
// the bus regardless of which device, if any, is listening.
func (b *Bus) Write(addr uint16, value byte) {
	b.openBus = value

	switch {
	case addr < 0x2000:
		b.ram[addr&0x07FF] = value

	case addr < 0x4000:
		b.ppu.WriteCPURegister(0x2000+addr&0x0007, value)

	case addr == 0x4014:
		b.oamDma.Start(value)

	case addr == 0x4016:
		b.controller1.Write(value)
		b.controller2.Write(value)

	case addr < 0x4018:
		wantsLoad, loadAddr := b.apu.WriteRegister(addr, value)
		if wantsLoad {
			b.dmcDma.StartLoad(loadAddr)
		}

	case addr < 0x4020:
		// CPU test-mode registers, not implemented.

	default:
		b.writeCartridge(addr, value)
	}
}

func (b *Bus) readCartridge(addr uint16) byte {
	res := b.mp.PeekCartridgeSpace(b.mem, addr)
	value := (res.Value & res.Mask) | (b.openBus &^ res.Mask)
	b.mp.OnCpuRead(b.mem, addr, value)
	b.mem.RebuildIfDirty()
	b.openBus = value
	return value
}

// writeCartridge applies bus-conflict AND semantics before handing the
// write to the mapper: when the mapper reports bus conflicts and the ROM
// is also driving the target address, the byte actually latched is the
// AND of what the CPU and the ROM both drive.
func (b *Bus) writeCartridge(addr uint16, value byte) {
	actual := value
	if b.mp.HasBusConflicts() {
		if romByte, ok := b.mem.Prg.RomByteAt(addr); ok {
			actual = value & romByte
		}
	}
	b.mp.WriteToCartridgeSpace(b.mem, addr, actual)
	b.mem.RebuildIfDirty()
	b.mp.OnCpuWrite(b.mem, addr, actual)
}

// TickDma advances the OAM and DMC DMA state machines by one CPU cycle.
// DMC DMA takes priority when both want the bus in the same cycle,
// matching the real hardware's audio-over-sprites precedence.
func (b *Bus) TickDma(parity clock.CycleParity) {
	if b.dmcDma.Active() {
		switch b.dmcDma.Step(parity) {
		case dma.DmcRead:
			value := b.Read(b.dmcDma.SourceAddress())
			if wantsReload, reloadAddr := b.apu.FeedDmcByte(value); wantsReload {
				b.dmcDma.StartReload(reloadAddr)
			}
		}
		return
	}
	if b.oamDma.Active() {
		switch b.oamDma.Step(parity) {
		case dma.OamRead:
			b.oamDma.RecordReadByte(b.Read(b.oamDma.SourceAddress()))
		case dma.OamWrite_:
			b.ppu.WriteCPURegister(0x2004, b.oamDma.PendingByte())
		}
	}
}

// CpuShouldBeHalted reports whether a DMA transfer currently owns the bus
// and the CPU must stall this cycle.
func (b *Bus) CpuShouldBeHalted() bool {
	return b.dmcDma.CpuShouldBeHalted() || b.oamDma.CpuShouldBeHalted()
}

// TickPpu runs the three PPU cycles that correspond to one CPU cycle.
func (b *Bus) TickPpu() {
	b.ppu.Clock()
	b.ppu.Clock()
	b.ppu.Clock()
}

// EndOfCpuCycle notifies the mapper's per-cycle IRQ-counter tick. The
// APU's interrupt sources are folded into the IRQ line by IrqAsserted.
func (b *Bus) EndOfCpuCycle(cycle int64) {
	b.mp.OnEndOfCpuCycle(b.mem, cycle)
}

// NmiAsserted reports and clears whether the PPU has asserted NMI since
// the last call.
func (b *Bus) NmiAsserted() bool { return b.ppu.TakeNMI() }

// IrqAsserted reports whether the mapper's IRQ counter or the APU
// currently wants the CPU's IRQ line held low.
func (b *Bus) IrqAsserted() bool {
	info, hasIrq := b.mp.IrqCounterInfo()
	return (hasIrq && info.Pending) || b.apu.IrqAsserted()
}
