package dma

import (
	"testing"

	"github.com/wrenfield/nesmapper/pkg/clock"
)

func TestOamDmaTransfers256Bytes(t *testing.T) {
	var d OamDma
	d.Start(0x02)

	reads, writes := 0, 0
	parity := clock.Get
	for i := 0; i < 2000 && d.Active(); i++ {
		switch d.Step(parity) {
		case OamRead:
			reads++
			d.RecordReadByte(byte(reads))
		case OamWrite_:
			writes++
		}
		if parity == clock.Get {
			parity = clock.Put
		} else {
			parity = clock.Get
		}
	}

	if reads != 256 || writes != 256 {
		t.Fatalf("expected 256 reads and 256 writes, got reads=%d writes=%d", reads, writes)
	}
	if d.Active() {
		t.Fatal("expected OAM DMA to be idle after 256 bytes")
	}
}

func TestOamDmaCannotHaltOnPutCycle(t *testing.T) {
	var d OamDma
	d.Start(0x02)

	action := d.Step(clock.Put)
	if action != OamAlign {
		t.Fatalf("expected Align when trying to halt on a Put cycle, got %v", action)
	}
	if d.CpuShouldBeHalted() {
		t.Fatal("expected the CPU to not yet be halted")
	}
}

// A DMC load triggered while the CPU is about
// to perform a read must not issue its first real Read action until the
// fixed skip/halt/dummy sequence has elapsed.
func TestDmcLoadSequenceBeforeFirstRead(t *testing.T) {
	var d DmcDma
	d.StartLoad(0xC000)

	var actions []DmcAction
	parity := clock.Get
	for i := 0; i < 10 && d.Active(); i++ {
		actions = append(actions, d.Step(parity))
		if parity == clock.Get {
			parity = clock.Put
		} else {
			parity = clock.Get
		}
	}

	firstRead := -1
	for i, a := range actions {
		if a == DmcRead {
			firstRead = i
			break
		}
	}
	if firstRead < 4 {
		t.Fatalf("expected the DMC load handshake to take at least 4 steps before Read, got Read at step %d (actions=%v)", firstRead, actions)
	}
}

func TestDmcReloadSkipsTheLongHandshake(t *testing.T) {
	var d DmcDma
	d.StartReload(0xC000)

	first := d.Step(clock.Get)
	if first != DmcHalt {
		t.Fatalf("expected the reload path to attempt Halt immediately on a Get cycle, got %v", first)
	}
}
