package apu

import "testing"

func TestWriteRegisterSetsLengthCounterAndStatusReflectsIt(t *testing.T) {
	a := New()
	a.WriteRegister(0x4000, 0x00)
	a.WriteRegister(0x4003, 0x08) // length-counter-load index 1 -> 254
	if a.pulse1.lengthCounter != 254 {
		t.Fatalf("pulse1.lengthCounter = %d, want 254", a.pulse1.lengthCounter)
	}
	if status := a.ReadStatus(); status&0x01 == 0 {
		t.Fatalf("status = %#x, want pulse1 bit set", status)
	}
}

func TestStatusWriteClearsLengthCounters(t *testing.T) {
	a := New()
	a.WriteRegister(0x4003, 0x08)
	a.WriteRegister(0x4015, 0x00) // clear all channel enables
	if a.pulse1.lengthCounter != 0 {
		t.Fatalf("expected pulse1 length counter cleared, got %d", a.pulse1.lengthCounter)
	}
}

func TestDmcLoadTriggersOnFifteenBitEnableWithNoBytesLeft(t *testing.T) {
	a := New()
	a.WriteRegister(0x4012, 0x01) // sample address 0xC000 + 64
	a.WriteRegister(0x4013, 0x00) // sample length 1 byte
	wantsLoad, addr := a.WriteRegister(0x4015, 0x10)
	if !wantsLoad {
		t.Fatalf("expected $4015 bit 4 set with no bytes left to request a DMC load")
	}
	if addr != 0xC000+64 {
		t.Fatalf("load address = %#x, want %#x", addr, 0xC000+64)
	}
}

func TestFeedDmcByteLoopsWhenLoopFlagSet(t *testing.T) {
	a := New()
	a.WriteRegister(0x4010, 0x40) // loop flag, no IRQ enable
	a.WriteRegister(0x4012, 0x00)
	a.WriteRegister(0x4013, 0x00) // 1-byte sample
	a.WriteRegister(0x4015, 0x10)

	wantsReload, addr := a.FeedDmcByte(0xFF)
	if !wantsReload {
		t.Fatalf("expected a looping DMC sample to request a reload on exhaustion")
	}
	if addr != a.dmcSampleAddr {
		t.Fatalf("reload address = %#x, want %#x", addr, a.dmcSampleAddr)
	}
}

func TestFeedDmcByteAssertsIrqWithoutLoop(t *testing.T) {
	a := New()
	a.WriteRegister(0x4010, 0x80) // IRQ enable, no loop
	a.WriteRegister(0x4012, 0x00)
	a.WriteRegister(0x4013, 0x00)
	a.WriteRegister(0x4015, 0x10)

	a.FeedDmcByte(0xFF)
	if !a.IrqAsserted() {
		t.Fatalf("expected DMC IRQ to assert once the sample is exhausted without looping")
	}
	// Reading $4015 clears only the frame IRQ flag, not the DMC flag.
	a.ReadStatus()
	if !a.IrqAsserted() {
		t.Fatalf("expected DMC IRQ flag to survive a status read")
	}
}

func TestSampleQueueRespectsMute(t *testing.T) {
	a := New()
	a.PushSample(1.0)
	if got := a.QueueLength(); got != 1 {
		t.Fatalf("QueueLength = %d, want 1", got)
	}
	a.SetMuted(true)
	if _, ok := a.PopSample(); ok {
		t.Fatalf("expected PopSample to report none while muted")
	}
	a.PushSample(2.0)
	if got := a.QueueLength(); got != 1 {
		t.Fatalf("expected PushSample to be a no-op while muted, got length %d", got)
	}
}
