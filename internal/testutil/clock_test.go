package testutil

import (
	"testing"
	"time"
)

func TestClock_AdvancesByStep(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewClock(start, time.Second)

	first := c.Now()
	second := c.Now()

	if !first.Equal(start.Add(time.Second)) {
		t.Errorf("first Now() = %v, want %v", first, start.Add(time.Second))
	}
	if !second.Equal(start.Add(2 * time.Second)) {
		t.Errorf("second Now() = %v, want %v", second, start.Add(2*time.Second))
	}
}

func TestClock_CurrentDoesNotAdvance(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewClock(start, time.Second)

	if !c.Current().Equal(start) {
		t.Errorf("Current() = %v, want %v", c.Current(), start)
	}
	c.Now()
	if !c.Current().Equal(start.Add(time.Second)) {
		t.Errorf("Current() after Now() = %v, want %v", c.Current(), start.Add(time.Second))
	}
}

func TestClock_Reset(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewClock(start, time.Minute)

	c.Now()
	c.Now()
	c.Reset()

	if !c.Now().Equal(start.Add(time.Minute)) {
		t.Error("Reset() did not rewind the clock")
	}
}
