// Package apu implements the APU's CPU-visible register shell and the
// bounded sample queue a full channel-synthesis module would feed.
// Channel synthesis itself (the pulse/triangle/noise/DMC
// waveform generators and the NES mixer formula) is an external
// collaborator this module does not implement; what lives here is enough
// register state to answer $4015 status reads correctly and to trigger
// the DMC DMA load/reload a real APU's sample-playback unit would.
package apu

import "sync"

// sampleQueueCapacity bounds the producer/consumer queue at roughly two
// seconds of 44.1kHz audio; a synthesis module that falls behind drops
// samples rather than growing this unboundedly.
const sampleQueueCapacity = 2 * 44100

// lengthTable is the standard NES length-counter lookup, used to decode
// the length-counter-load field pulse/triangle/noise writes carry even
// though this module does not clock the counters down itself.
var lengthTable = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6,
	160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 8, 48, 6, 96, 4,
	192, 2, 72, 16, 28, 32, 52, 2,
}

// dmcRateTable is the NTSC DMC playback-rate lookup (CPU cycles per
// output bit), keyed by the low nibble of a $4010 write.
var dmcRateTable = [16]uint16{
	428, 380, 340, 320, 286, 254, 226, 214,
	190, 160, 142, 128, 106, 84, 72, 54,
}

type channel struct {
	lengthCounter uint8
}

// Apu holds the $4000-$4017 register shell, the derived DMC
// sample-playback parameters, and a ring-buffer sample queue a caller-
// owned consumer goroutine drains.
type Apu struct {
	pulse1, pulse2, triangle, noise channel

	dmcIrqEnable   bool
	dmcLoop        bool
	dmcRate        uint16
	dmcOutputLevel byte
	dmcSampleAddr  uint16
	dmcSampleLen   uint16
	dmcBytesLeft   uint16
	dmcIrqFlag     bool

	frameMode      bool
	frameIrqInhibit bool
	frameIrqFlag   bool

	mu      sync.Mutex
	queue   []float32
	muted   bool
}

// New builds an Apu with its sample queue preallocated to capacity.
func New() *Apu {
	return &Apu{queue: make([]float32, 0, sampleQueueCapacity)}
}

// Reset returns the APU to power-on state. The mute flag is sticky: it
// belongs to the host audio sink, not the console.
func (a *Apu) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pulse1, a.pulse2, a.triangle, a.noise = channel{}, channel{}, channel{}, channel{}
	a.dmcIrqEnable, a.dmcLoop = false, false
	a.dmcRate, a.dmcOutputLevel = 0, 0
	a.dmcSampleAddr, a.dmcSampleLen, a.dmcBytesLeft = 0, 0, 0
	a.dmcIrqFlag = false
	a.frameMode, a.frameIrqInhibit, a.frameIrqFlag = false, false, false
	a.queue = a.queue[:0]
}

// WriteRegister services a CPU write to $4000-$4017. It returns whether
// the write should start a DMC DMA load and, if so, the sample address to
// load from; the bus is responsible for actually driving that DMA, since
// DMA controllers live outside this package.
func (a *Apu) WriteRegister(addr uint16, value byte) (wantsDmcLoad bool, loadAddr uint16) {
	switch addr {
	case 0x4003, 0x4007:
		pulse := &a.pulse1
		if addr == 0x4007 {
			pulse = &a.pulse2
		}
		pulse.lengthCounter = lengthTable[(value>>3)&0x1F]
	case 0x400B:
		a.triangle.lengthCounter = lengthTable[(value>>3)&0x1F]
	case 0x400F:
		a.noise.lengthCounter = lengthTable[(value>>3)&0x1F]
	case 0x4010:
		a.dmcIrqEnable = value&0x80 != 0
		a.dmcLoop = value&0x40 != 0
		a.dmcRate = dmcRateTable[value&0x0F]
		if !a.dmcIrqEnable {
			a.dmcIrqFlag = false
		}
	case 0x4011:
		a.dmcOutputLevel = value & 0x7F
	case 0x4012:
		a.dmcSampleAddr = 0xC000 + uint16(value)*64
	case 0x4013:
		a.dmcSampleLen = uint16(value)*16 + 1
	case 0x4015:
		if value&0x01 == 0 {
			a.pulse1.lengthCounter = 0
		}
		if value&0x02 == 0 {
			a.pulse2.lengthCounter = 0
		}
		if value&0x04 == 0 {
			a.triangle.lengthCounter = 0
		}
		if value&0x08 == 0 {
			a.noise.lengthCounter = 0
		}
		a.dmcIrqFlag = false
		if value&0x10 == 0 {
			a.dmcBytesLeft = 0
		} else if a.dmcBytesLeft == 0 {
			a.dmcBytesLeft = a.dmcSampleLen
			return true, a.dmcSampleAddr
		}
	case 0x4017:
		a.frameMode = value&0x80 != 0
		a.frameIrqInhibit = value&0x40 != 0
		if a.frameIrqInhibit {
			a.frameIrqFlag = false
		}
	}
	return false, 0
}

// ReadStatus services a CPU read of $4015. Reading clears the frame IRQ
// flag, matching real hardware.
func (a *Apu) ReadStatus() byte {
	var status byte
	if a.pulse1.lengthCounter > 0 {
		status |= 0x01
	}
	if a.pulse2.lengthCounter > 0 {
		status |= 0x02
	}
	if a.triangle.lengthCounter > 0 {
		status |= 0x04
	}
	if a.noise.lengthCounter > 0 {
		status |= 0x08
	}
	if a.dmcBytesLeft > 0 {
		status |= 0x10
	}
	if a.frameIrqFlag {
		status |= 0x40
	}
	if a.dmcIrqFlag {
		status |= 0x80
	}
	a.frameIrqFlag = false
	return status
}

// FeedDmcByte delivers a byte the owning bus fetched on the DMC DMA's
// behalf, decrementing the remaining-bytes counter and, on exhaustion,
// either looping (requesting a reload at the original sample address) or
// raising the DMC IRQ.
func (a *Apu) FeedDmcByte(value byte) (wantsReload bool, reloadAddr uint16) {
	if a.dmcBytesLeft == 0 {
		return false, 0
	}
	a.dmcBytesLeft--
	if a.dmcBytesLeft == 0 {
		if a.dmcLoop {
			a.dmcBytesLeft = a.dmcSampleLen
			return true, a.dmcSampleAddr
		}
		if a.dmcIrqEnable {
			a.dmcIrqFlag = true
		}
	}
	return false, 0
}

// IrqAsserted reports whether either the frame counter or the DMC channel
// currently wants the CPU's IRQ line held low.
func (a *Apu) IrqAsserted() bool { return a.frameIrqFlag || a.dmcIrqFlag }

// SetMuted silences the sample queue: PushSample becomes a no-op and
// PopSample always reports no sample available, without the consumer
// needing to special-case anything.
func (a *Apu) SetMuted(muted bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.muted = muted
}

// PushSample enqueues one synthesized sample. Intended for a future
// channel-synthesis module producing real audio; over-capacity samples
// are dropped silently rather than blocking the caller or growing the
// queue without bound.
func (a *Apu) PushSample(s float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.muted || len(a.queue) >= sampleQueueCapacity {
		return
	}
	a.queue = append(a.queue, s)
}

// PopSample dequeues one sample for a host audio sink, reporting false
// when muted or empty.
func (a *Apu) PopSample() (float32, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.muted || len(a.queue) == 0 {
		return 0, false
	}
	s := a.queue[0]
	a.queue = a.queue[1:]
	return s, true
}

// QueueLength reports the number of samples currently buffered, for
// monitoring a consumer's drain rate against the producer.
func (a *Apu) QueueLength() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queue)
}
