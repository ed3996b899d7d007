package counter

import "testing"

// FME-7-style IRQ:
// set reload to 0x0100, enable counting and triggering, tick 0x0101 CPU
// cycles; IRQ must assert on exactly the 0x0101-th tick, not earlier.
func TestFme7StyleDownCounterAssertsOnExactTick(t *testing.T) {
	c := NewBuilder().
		FullRange(0, 0xFFFF).
		Wraps(true).
		Step(-1).
		AutoTriggerWhen(Wrapping()).
		WhenDisabledPrevent(PreventBoth).
		BuildDirectlySet()

	c.SetCount(0) // will be overwritten below; FME-7 loads a 16-bit reload value directly
	c.SetCountLowByte(0x00)
	c.SetCountHighByte(0x01) // 0x0100
	c.SetCountingEnabled(true)
	c.SetTriggeringEnabled(true)

	triggeredAt := -1
	for i := 1; i <= 0x0101; i++ {
		result := c.Tick()
		if result.Triggered {
			triggeredAt = i
			break
		}
	}

	if triggeredAt != 0x0101 {
		t.Fatalf("expected IRQ to assert on tick 0x0101, got %d", triggeredAt)
	}
}

func TestMmc3StyleReloadDrivenCounterReloadsOnZeroOrForced(t *testing.T) {
	c := NewBuilder().
		FullRange(0, 0xFF).
		Wraps(true).
		Step(-1).
		AutoTriggerWhen(EndingOn(0)).
		ForcedReloadTiming(OnNextTick).
		WhenDisabledPrevent(PreventBoth).
		BuildReloadDriven()

	c.SetReloadValue(4)
	c.Enable()

	c.ForceReload()
	r := c.Tick()
	if !r.Wrapped && c.Info().Count != 4 {
		t.Fatalf("expected forced reload to load the reload value 4, got %d", c.Info().Count)
	}

	for i := 0; i < 4; i++ {
		c.Tick()
	}
	if got := c.Info().Count; got != 0 {
		t.Fatalf("expected counter to reach 0 after 4 more ticks, got %d", got)
	}

	c.Tick()
	if got := c.Info().Count; got != 4 {
		t.Fatalf("expected the tick after 0 to reload the reload value 4, got %d", got)
	}
}

func TestDisabledCounterPreventsCountingNotJustTriggering(t *testing.T) {
	c := NewBuilder().
		FullRange(0, 0xFF).
		Wraps(true).
		Step(1).
		AutoTriggerWhen(EndingOn(0xFF)).
		WhenDisabledPrevent(PreventCounting).
		BuildDirectlySet()

	before := c.Info().Count
	c.Disable()
	c.Tick()
	if got := c.Info().Count; got != before {
		t.Fatalf("expected PreventCounting to stop the count from advancing, got %d want %d", got, before)
	}
}
