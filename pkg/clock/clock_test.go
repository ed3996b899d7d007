package clock

import "testing"

func TestNtscScheduleOrdersSubTicksPerPhase(t *testing.T) {
	var order []SubTick
	c := New(NtscSchedule, Hooks{
		Apu:     func() { order = append(order, TickApu) },
		CpuHalf: func(p CycleParity) { order = append(order, map[CycleParity]SubTick{Get: TickCpuFirstHalf, Put: TickCpuSecondHalf}[p]) },
		Ppu:     func() { order = append(order, TickPpu) },
	})

	c.Tick()
	c.Tick()
	c.Tick()

	want := []SubTick{TickApu, TickCpuFirstHalf, TickCpuSecondHalf, TickPpu}
	if len(order) != len(want) {
		t.Fatalf("expected %d sub-ticks across 3 master ticks, got %d: %v", len(want), len(order), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("sub-tick %d: got %v, want %v (full: %v)", i, order[i], want[i], order)
		}
	}
}

func TestCpuHalfParityAlternatesGetThenPut(t *testing.T) {
	var parities []CycleParity
	c := New(NtscSchedule, Hooks{
		CpuHalf: func(p CycleParity) { parities = append(parities, p) },
	})
	for i := 0; i < 3; i++ {
		c.Tick()
	}
	if len(parities) != 2 || parities[0] != Get || parities[1] != Put {
		t.Fatalf("expected [Get, Put], got %v", parities)
	}
}

func TestCycleCounterAdvancesOnePerTick(t *testing.T) {
	c := New(NtscSchedule, Hooks{})
	for i := 0; i < 10; i++ {
		c.Tick()
	}
	if c.Cycle() != 10 {
		t.Fatalf("expected 10 cycles, got %d", c.Cycle())
	}
}
