package controller

import "testing"

func TestControllerShiftOrder(t *testing.T) {
	c := New()
	c.SetButton(ButtonA, true)
	c.SetButton(ButtonStart, true)
	c.SetButton(ButtonRight, true)

	c.Write(1)
	c.Write(0)

	want := []uint8{1, 0, 0, 1, 0, 0, 0, 1}
	for i, w := range want {
		if got := c.Read(); got != w {
			t.Fatalf("bit %d: got %d, want %d", i, got, w)
		}
	}
}

func TestControllerOverreadReturnsOnes(t *testing.T) {
	c := New()
	c.Write(1)
	c.Write(0)
	for i := Button(0); i < buttonCount; i++ {
		c.Read()
	}
	for i := 0; i < 16; i++ {
		if got := c.Read(); got != overreadValue {
			t.Fatalf("overread %d: got %d, want %d", i, got, overreadValue)
		}
	}
}

func TestControllerStrobeHighAlwaysReadsButtonA(t *testing.T) {
	c := New()
	c.SetButton(ButtonA, true)
	c.Write(1)
	for i := 0; i < 5; i++ {
		if got := c.Read(); got != 1 {
			t.Fatalf("strobed read %d: got %d, want 1", i, got)
		}
	}
}

func TestControllerResetPreservesButtons(t *testing.T) {
	c := New()
	c.SetButton(ButtonB, true)
	c.Write(1)
	c.Read()
	c.Reset()
	if !c.IsPressed(ButtonB) {
		t.Fatalf("expected Reset to preserve button state")
	}
}
