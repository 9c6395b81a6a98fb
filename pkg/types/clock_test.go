package types

import (
	"testing"
	"time"
)

func TestRealClock(t *testing.T) {
	clock := NewRealClock()

	start := clock.Now()
	time.Sleep(5 * time.Millisecond)
	if elapsed := clock.Since(start); elapsed < 5*time.Millisecond {
		t.Errorf("expected at least 5ms elapsed, got %v", elapsed)
	}
}

func TestRealTimer(t *testing.T) {
	clock := NewRealClock()

	t.Run("Fires", func(t *testing.T) {
		timer := clock.NewTimer(5 * time.Millisecond)
		select {
		case <-timer.C():
		case <-time.After(time.Second):
			t.Fatal("timer did not fire")
		}
	})

	t.Run("Stop", func(t *testing.T) {
		timer := clock.NewTimer(time.Hour)
		if !timer.Stop() {
			t.Errorf("expected Stop to report an active timer")
		}
		if timer.Stop() {
			t.Errorf("expected second Stop to report an inactive timer")
		}
	})

	t.Run("Reset", func(t *testing.T) {
		timer := clock.NewTimer(time.Hour)
		timer.Stop()
		timer.Reset(5 * time.Millisecond)
		select {
		case <-timer.C():
		case <-time.After(time.Second):
			t.Fatal("reset timer did not fire")
		}
	})
}
