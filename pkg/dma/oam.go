// Package dma implements the OAM and DMC DMA state machines that steal
// bus cycles from the CPU.
package dma

import "github.com/wrenfield/nesmapper/pkg/clock"

// OamState names a state in the OAM DMA state machine.
type OamState int

const (
	OamIdle OamState = iota
	OamTryHalt
	OamTryRead
	OamWrite
)

// OamAction is what the CPU should do this cycle in response to OAM DMA.
type OamAction int

const (
	OamDoNothing OamAction = iota
	OamHalt
	OamAlign
	OamRead
	OamWrite_
)

// OamDma copies 256 bytes from page pp00..ppFF into PPU OAM, triggered by
// a CPU write to the OAM-DMA register (0x4014).
type OamDma struct {
	state     OamState
	page      byte
	index     int
	pendingByte byte
	halted    bool
}

// Start arms the DMA for the given source page.
func (d *OamDma) Start(page byte) {
	d.state = OamTryHalt
	d.page = page
	d.index = 0
}

// Active reports whether a transfer is in progress.
func (d *OamDma) Active() bool { return d.state != OamIdle }

// CpuShouldBeHalted reports whether the CPU must stall this cycle.
func (d *OamDma) CpuShouldBeHalted() bool { return d.halted }

// SourceAddress returns the PRG address the next Read action should
// fetch from.
func (d *OamDma) SourceAddress() uint16 {
	return uint16(d.page)<<8 | uint16(d.index)
}

// Step advances the state machine by one CPU half-cycle, given that
// half's Get/Put parity, and returns what the CPU bus should do.
// DMA cannot halt except on a Get (read-capable) cycle, and cannot issue
// a Read on a Put cycle; those cases insert an Align wait instead.
func (d *OamDma) Step(parity clock.CycleParity) OamAction {
	switch d.state {
	case OamIdle:
		d.halted = false
		return OamDoNothing

	case OamTryHalt:
		if parity != clock.Get {
			return OamAlign
		}
		d.halted = true
		d.state = OamTryRead
		return OamHalt

	case OamTryRead:
		if parity != clock.Get {
			return OamAlign
		}
		d.state = OamWrite
		return OamRead

	case OamWrite:
		d.state = OamTryRead
		d.index++
		if d.index >= 256 {
			d.state = OamIdle
			d.halted = false
		}
		return OamWrite_
	}
	return OamDoNothing
}

// RecordReadByte stashes the byte fetched by an OamRead action so the
// following OamWrite_ action's caller knows what to write into OAM.
func (d *OamDma) RecordReadByte(b byte) { d.pendingByte = b }

// PendingByte returns the byte to write into OAM on an OamWrite_ action.
func (d *OamDma) PendingByte() byte { return d.pendingByte }
