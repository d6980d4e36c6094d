package engine

import (
	"testing"
	"time"

	"github.com/crescentlab/postpilot/internal/models"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad test time %q: %v", value, err)
	}
	return parsed
}

func TestNextRunAtOneTime(t *testing.T) {
	lastRun := mustTime(t, "2024-01-01T00:00:00Z")
	if next := NextRunAt(models.ScheduleTypeOneTime, "24h", nil, lastRun); next != nil {
		t.Fatalf("one_time schedule produced a next run: %v", next)
	}
}

func TestNextRunAtRecurringInterval(t *testing.T) {
	lastRun := mustTime(t, "2024-01-01T00:00:00Z")
	next := NextRunAt(models.ScheduleTypeRecurring, "24h", nil, lastRun)
	if next == nil {
		t.Fatal("expected a next run")
	}
	want := mustTime(t, "2024-01-02T00:00:00Z")
	if !next.Equal(want) {
		t.Fatalf("next run = %v, want %v", next, want)
	}
}

func TestNextRunAtPastEndDate(t *testing.T) {
	lastRun := mustTime(t, "2024-01-01T00:00:00Z")
	endDate := mustTime(t, "2024-01-05T00:00:00Z")
	if next := NextRunAt(models.ScheduleTypeRecurring, "7d", &endDate, lastRun); next != nil {
		t.Fatalf("recurrence past its end date produced a next run: %v", next)
	}
}

func TestNextRunAtEndDateBoundary(t *testing.T) {
	lastRun := mustTime(t, "2024-01-01T00:00:00Z")
	endDate := mustTime(t, "2024-01-08T00:00:00Z")
	next := NextRunAt(models.ScheduleTypeRecurring, "7d", &endDate, lastRun)
	if next == nil {
		t.Fatal("next run landing exactly on the end date should still fire")
	}
	if !next.Equal(endDate) {
		t.Fatalf("next run = %v, want %v", next, endDate)
	}
}

func TestNextRunAtUnparseableRule(t *testing.T) {
	lastRun := mustTime(t, "2024-01-01T00:00:00Z")
	for _, rule := range []string{"", "0 9 * * 1", "daily", "-5h", "h", "10x"} {
		if next := NextRunAt(models.ScheduleTypeRecurring, rule, nil, lastRun); next != nil {
			t.Errorf("rule %q produced a next run: %v", rule, next)
		}
	}
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		rule string
		want time.Duration
	}{
		{"30m", 30 * time.Minute},
		{"24h", 24 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"1w", 7 * 24 * time.Hour},
	}
	for _, tt := range tests {
		got, err := ParseInterval(tt.rule)
		if err != nil {
			t.Errorf("ParseInterval(%q): %v", tt.rule, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseInterval(%q) = %v, want %v", tt.rule, got, tt.want)
		}
	}
}
