package sim

import "testing"

func TestPhaseClockHalvesCycle(t *testing.T) {
	c := phaseClock{cycleTicks: 100}

	for i := 0; i < 250; i++ {
		newCycle := c.Advance()
		tick := c.Tick()
		wantExpanding := tick%100 < 50
		if c.Expanding() != wantExpanding {
			t.Fatalf("tick %d: Expanding = %v, want %v", tick, c.Expanding(), wantExpanding)
		}
		wantNew := tick%100 == 0
		if newCycle != wantNew {
			t.Fatalf("tick %d: Advance = %v, want %v", tick, newCycle, wantNew)
		}
	}
}

func TestPhaseClockBoundaries(t *testing.T) {
	tests := []struct {
		tick          int
		wantExpanding bool
		wantNewCycle  bool
	}{
		{1, true, false},
		{49, true, false},
		{50, false, false},
		{99, false, false},
		{100, true, true},
		{149, true, false},
		{150, false, false},
		{200, true, true},
	}

	c := phaseClock{cycleTicks: 100}
	next := 1
	for _, tt := range tests {
		var newCycle bool
		for ; next <= tt.tick; next++ {
			newCycle = c.Advance()
		}
		if c.Expanding() != tt.wantExpanding {
			t.Errorf("tick %d: Expanding = %v, want %v", tt.tick, c.Expanding(), tt.wantExpanding)
		}
		if newCycle != tt.wantNewCycle {
			t.Errorf("tick %d: new cycle = %v, want %v", tt.tick, newCycle, tt.wantNewCycle)
		}
	}
}

func TestEndlessClockNeverContracts(t *testing.T) {
	c := phaseClock{cycleTicks: 100, endless: true}

	for i := 0; i < 500; i++ {
		if c.Advance() {
			t.Fatalf("tick %d: endless clock signalled a new cycle", c.Tick())
		}
		if !c.Expanding() {
			t.Fatalf("tick %d: endless clock contracted", c.Tick())
		}
	}
}

func TestZeroCycleAlwaysExpands(t *testing.T) {
	c := phaseClock{cycleTicks: 0}

	for i := 0; i < 100; i++ {
		if c.Advance() {
			t.Fatal("zero-length cycle signalled a new cycle")
		}
		if !c.Expanding() {
			t.Fatal("zero-length cycle contracted")
		}
	}
}
