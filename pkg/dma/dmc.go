package dma

import "github.com/wrenfield/nesmapper/pkg/clock"

// DmcState names a state in the DMC DMA state machine. The load path
// (explicit program trigger) and the reload path (mid-playback refill)
// share the tail of the same state machine but the reload path skips
// the longer initial handshake.
type DmcState int

const (
	DmcIdle DmcState = iota
	DmcWaitingForGet
	DmcFirstSkip
	DmcSecondSkip
	DmcTryHalt
	DmcDummy
	DmcTryRead
)

// DmcAction is what the CPU bus should do this cycle in response to DMC
// DMA.
type DmcAction int

const (
	DmcDoNothing DmcAction = iota
	DmcHalt
	DmcDummyCycle
	DmcAlign
	DmcRead
)

// DmcDma fetches one sample byte for the APU's delta-modulation channel,
// triggered either by an explicit program load or a mid-playback reload.
type DmcDma struct {
	state   DmcState
	address uint16
	halted  bool
}

// StartLoad begins the longer load-path handshake (explicit program
// trigger).
func (d *DmcDma) StartLoad(address uint16) {
	d.state = DmcWaitingForGet
	d.address = address
}

// StartReload begins the shorter reload-path handshake (mid-playback
// refill), skipping straight to the halt attempt.
func (d *DmcDma) StartReload(address uint16) {
	d.state = DmcTryHalt
	d.address = address
}

func (d *DmcDma) Active() bool { return d.state != DmcIdle }

func (d *DmcDma) CpuShouldBeHalted() bool { return d.halted }

func (d *DmcDma) SourceAddress() uint16 { return d.address }

// Step advances the state machine by one CPU half-cycle and returns the
// action the CPU bus should take.
func (d *DmcDma) Step(parity clock.CycleParity) DmcAction {
	switch d.state {
	case DmcIdle:
		d.halted = false
		return DmcDoNothing

	case DmcWaitingForGet:
		if parity != clock.Get {
			return DmcAlign
		}
		d.state = DmcFirstSkip
		return DmcDoNothing

	case DmcFirstSkip:
		d.state = DmcSecondSkip
		return DmcDummyCycle

	case DmcSecondSkip:
		d.state = DmcTryHalt
		return DmcDummyCycle

	case DmcTryHalt:
		if parity != clock.Get {
			return DmcAlign
		}
		d.halted = true
		d.state = DmcDummy
		return DmcHalt

	case DmcDummy:
		d.state = DmcTryRead
		return DmcDummyCycle

	case DmcTryRead:
		if parity != clock.Get {
			return DmcAlign
		}
		d.state = DmcIdle
		d.halted = false
		return DmcRead
	}
	return DmcDoNothing
}
