// Package mapper defines the cartridge mapper contract and the concrete
// mapper implementations that respond to CPU register writes, PPU
// address-bus sniffing, and per-cycle ticks.
package mapper

import "github.com/wrenfield/nesmapper/pkg/memory"

// IrqInfo is a diagnostic snapshot of a mapper's IRQ counter state, for
// mappers that have one.
type IrqInfo struct {
	CountingEnabled   bool
	TriggeringEnabled bool
	Count             uint16
	Pending           bool
}

// Mapper is the eleven-method contract every cartridge-resident mapper
// implements. Default behavior is provided by BaseMapper, which concrete
// mappers embed and override selectively.
type Mapper interface {
	// Layout returns the (possibly multiple) PRG/CHR layouts this mapper
	// can switch between. Called once at init.
	Layout() MapperLayout

	// InitMapperParams is an optional post-construction hook for
	// registers that can't be expressed declaratively in Layout.
	InitMapperParams(mem *Memory)

	// PeekCartridgeSpace reads addr, which may be in the mapper-private
	// register window (0x4020-0x5FFF) or ordinary PRG space.
	PeekCartridgeSpace(mem *Memory, addr uint16) memory.ReadResult

	// WriteToCartridgeSpace is the main mutation entry point: mappers
	// decode addr/value into bank-register/layout/mirroring/status
	// mutations on mem.
	WriteToCartridgeSpace(mem *Memory, addr uint16, value byte)

	// OnCpuRead/OnCpuWrite are address-bus sniffing hooks, invoked after
	// the byte has been fetched/stored so they observe post-state.
	OnCpuRead(mem *Memory, addr uint16, value byte)
	OnCpuWrite(mem *Memory, addr uint16, value byte)

	// OnPpuRead/OnPpuAddressChange are the PPU-side analogs.
	// OnPpuAddressChange fires before the corresponding read resolves,
	// because some mappers (MMC3) derive their IRQ edge from the
	// address-bus transition itself.
	OnPpuRead(mem *Memory, addr uint16, value byte)
	OnPpuAddressChange(mem *Memory, addr uint16)

	// OnEndOfCpuCycle is a per-cycle tick, used primarily by IRQ counters
	// in cycle-counting mode.
	OnEndOfCpuCycle(mem *Memory, cycle int64)

	// HasBusConflicts enables the bus-conflict AND in the CPU write path.
	HasBusConflicts() bool

	// IrqCounterInfo is diagnostic; mappers without IRQs return false.
	IrqCounterInfo() (IrqInfo, bool)
}

// MapperLayout is the set of PRG/CHR layouts a mapper can switch between
// plus the starting mirroring.
type MapperLayout struct {
	PrgLayouts       []*memory.PrgLayout
	ChrLayouts       []*memory.ChrLayout
	InitialMirroring memory.Mirroring
	PrgRamSize       uint32
	PrgSaveRamSize   uint32
	ChrRamSize       uint32
}

// BaseMapper supplies the uniform-by-default parts of the contract so
// concrete mappers only override what differs.
type BaseMapper struct{}

func (BaseMapper) InitMapperParams(mem *Memory) {}

func (BaseMapper) PeekCartridgeSpace(mem *Memory, addr uint16) memory.ReadResult {
	if addr < 0x6000 {
		return memory.OpenBus
	}
	return mem.Prg.Peek(addr)
}

func (BaseMapper) OnCpuRead(mem *Memory, addr uint16, value byte)  {}
func (BaseMapper) OnCpuWrite(mem *Memory, addr uint16, value byte) {}
func (BaseMapper) OnPpuRead(mem *Memory, addr uint16, value byte)  {}
func (BaseMapper) OnPpuAddressChange(mem *Memory, addr uint16)     {}
func (BaseMapper) OnEndOfCpuCycle(mem *Memory, cycle int64)        {}
func (BaseMapper) HasBusConflicts() bool                           { return false }
func (BaseMapper) IrqCounterInfo() (IrqInfo, bool)                 { return IrqInfo{}, false }
