package valueobject

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewPeriod(t *testing.T) {
	t.Run("spans five inclusive days from the anchor", func(t *testing.T) {
		p := NewPeriod(date(2024, time.January, 2))

		if !p.Start.Equal(date(2024, time.January, 2)) {
			t.Errorf("expected start 2024-01-02, got %s", p.Start)
		}
		if !p.End.Equal(date(2024, time.January, 6)) {
			t.Errorf("expected end 2024-01-06, got %s", p.End)
		}
	})

	t.Run("anchor timestamps truncate to their UTC date", func(t *testing.T) {
		anchor := time.Date(2024, time.January, 2, 23, 45, 0, 0, time.UTC)
		p := NewPeriod(anchor)

		if !p.Start.Equal(date(2024, time.January, 2)) {
			t.Errorf("expected start 2024-01-02, got %s", p.Start)
		}
	})

	t.Run("contains both boundary dates", func(t *testing.T) {
		p := NewPeriod(date(2024, time.January, 2))

		if !p.Contains(date(2024, time.January, 2)) {
			t.Error("expected period to contain its start date")
		}
		if !p.Contains(date(2024, time.January, 6)) {
			t.Error("expected period to contain its end date")
		}
		if p.Contains(date(2024, time.January, 1)) {
			t.Error("expected period to exclude the day before the start")
		}
		if p.Contains(date(2024, time.January, 7)) {
			t.Error("expected period to exclude the day after the end")
		}
	})
}

func TestDateOnly(t *testing.T) {
	t.Run("truncates non-UTC timestamps to their UTC date", func(t *testing.T) {
		manila := time.FixedZone("PST", 8*3600)
		// 2024-01-03 06:00 in Manila is 2024-01-02 22:00 UTC.
		ts := time.Date(2024, time.January, 3, 6, 0, 0, 0, manila)

		got := DateOnly(ts)
		if !got.Equal(date(2024, time.January, 2)) {
			t.Errorf("expected 2024-01-02, got %s", got)
		}
	})
}
