package globaltime

import (
	"testing"
	"time"
)

func TestSetMockTimePinsClock(t *testing.T) {
	pinned := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	SetMockTime(pinned)
	defer ResetTime()

	if got := UTC(); !got.Equal(pinned) {
		t.Fatalf("unexpected clock value: got %s want %s", got, pinned)
	}
	if got := Since(pinned.Add(-3 * time.Second)); got != 3*time.Second {
		t.Fatalf("unexpected elapsed time: %s", got)
	}
	if got := Since(pinned.Add(time.Minute)); got != 0 {
		t.Fatalf("expected negative elapsed time to clamp to zero, got %s", got)
	}
}
