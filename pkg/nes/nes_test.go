package nes

import (
	"testing"

	"github.com/wrenfield/nesmapper/pkg/cartridge"
	"github.com/wrenfield/nesmapper/pkg/clock"
)

// buildNrom assembles a minimal one-bank iNES/NROM image so tests can
// exercise NES without a real ROM file on disk.
func buildNrom() []byte {
	const prgBankSize = 16384
	const chrBankSize = 8192
	data := make([]byte, 16)
	copy(data[0:4], "NES\x1a")
	data[4] = 1 // 1 PRG bank
	data[5] = 1 // 1 CHR bank
	data = append(data, make([]byte, prgBankSize)...)
	data = append(data, make([]byte, chrBankSize)...)
	return data
}

// noopCPU drives NES without executing any instructions, only recording
// how many half-cycles it was asked to run.
type noopCPU struct {
	halfCycles int
}

func (c *noopCPU) RunHalfCycle(parity clock.CycleParity) { c.halfCycles++ }

func newTestNES(t *testing.T) (*NES, *noopCPU) {
	t.Helper()
	cart, err := cartridge.LoadFromBytes(buildNrom())
	if err != nil {
		t.Fatalf("LoadFromBytes: %v", err)
	}
	cpu := &noopCPU{}
	return NewFromCartridge(cart, cpu), cpu
}

func TestStepRunsOneFullThreePhaseSchedule(t *testing.T) {
	n, cpu := newTestNES(t)
	n.Step()
	if cpu.halfCycles != 2 {
		t.Fatalf("expected 2 CPU half-cycles per Step, got %d", cpu.halfCycles)
	}
}

func TestRunFrameStopsOnceAFrameCompletes(t *testing.T) {
	n, _ := newTestNES(t)
	n.RunFrame()
	if n.PPU().FrameReady() {
		t.Fatalf("expected RunFrame to have already consumed the frame-ready flag")
	}
}

func TestShutdownIsSafeWithoutBatteryBackedRam(t *testing.T) {
	n, _ := newTestNES(t)
	n.Shutdown() // must not panic even though this cartridge has no save RAM
}

func TestBusBlocksCpuHalfCyclesWhileOamDmaOwnsTheBus(t *testing.T) {
	n, cpu := newTestNES(t)
	n.Bus().Write(0x4014, 0x00)

	const steps = 600
	sawHalt := false
	for i := 0; i < steps; i++ {
		if n.Bus().CpuShouldBeHalted() {
			sawHalt = true
		}
		n.Step()
	}
	if !sawHalt {
		t.Fatalf("expected OAM DMA to halt the CPU for at least one step")
	}
	if cpu.halfCycles >= steps*2 {
		t.Fatalf("expected some CPU half-cycles to be skipped while halted, ran %d of a possible %d", cpu.halfCycles, steps*2)
	}
}
