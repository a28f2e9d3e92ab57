package models

import (
	"testing"
	"time"
)

func TestPromotionIsLive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name   string
		active bool
		end    time.Time
		want   bool
	}{
		{name: "active_future", active: true, end: now.Add(time.Hour), want: true},
		{name: "active_equal_now", active: true, end: now, want: false},
		{name: "active_past", active: true, end: now.Add(-time.Hour), want: false},
		{name: "inactive_future", active: false, end: now.Add(time.Hour), want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &Promotion{IsActive: tc.active, EndDate: tc.end}
			if got := p.IsLive(now); got != tc.want {
				t.Fatalf("IsLive() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPromotionOriginalDuration(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	p := &Promotion{StartDate: start, EndDate: start.Add(48 * time.Hour), DurationDays: 30}
	if got := p.OriginalDuration(); got != 30*24*time.Hour {
		t.Fatalf("expected stored duration to win, got %s", got)
	}
	p.DurationDays = 0
	if got := p.OriginalDuration(); got != 48*time.Hour {
		t.Fatalf("expected window fallback 48h, got %s", got)
	}
	p.EndDate = start
	if got := p.OriginalDuration(); got != 0 {
		t.Fatalf("expected zero duration for empty window, got %s", got)
	}
}
