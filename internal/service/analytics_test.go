package service

import (
	"testing"
	"time"
)

func TestNormalizeRangeDefaultsToLast30Days(t *testing.T) {
	from, to := normalizeRange(time.Time{}, time.Time{})

	if to.Before(time.Now().Add(-time.Minute)) {
		t.Fatalf("expected to ~ now, got %s", to)
	}
	if got := to.Sub(from); got < 29*24*time.Hour || got > 31*24*time.Hour {
		t.Fatalf("expected a ~30 day window, got %s", got)
	}
}

func TestNormalizeRangeKeepsExplicitWindow(t *testing.T) {
	wantFrom := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	from, to := normalizeRange(wantFrom, wantTo)
	if !from.Equal(wantFrom) || !to.Equal(wantTo) {
		t.Fatalf("expected window kept, got [%s, %s)", from, to)
	}
}

func TestNormalizeRangeRepairsInvertedWindow(t *testing.T) {
	to := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	from, got := normalizeRange(to.AddDate(0, 0, 10), to)

	if !got.Equal(to) {
		t.Fatalf("expected to kept, got %s", got)
	}
	if !from.Before(got) {
		t.Fatalf("expected from before to, got [%s, %s)", from, got)
	}
}
