package engine

import (
	"fmt"
	"strconv"
	"time"

	"github.com/crescentlab/postpilot/internal/models"
)

// The canonical recurrence grammar is a magnitude plus a unit letter:
// "30m", "24h", "7d", "1w". Cron-style five-field expressions are not
// accepted; a rule that does not parse makes the schedule behave as a
// one-shot.

// NextRunAt computes when a recurring schedule should fire next, given
// the timestamp of the run that just completed. It returns nil when
// there are no further runs: one-time schedules, recurring schedules
// with an absent or unparseable rule, and recurrences whose next run
// would land past the end date.
func NextRunAt(scheduleType, rule string, endDate *time.Time, lastRun time.Time) *time.Time {
	if scheduleType != models.ScheduleTypeRecurring {
		return nil
	}

	interval, err := ParseInterval(rule)
	if err != nil {
		return nil
	}

	next := lastRun.Add(interval)
	if endDate != nil && next.After(*endDate) {
		return nil
	}
	return &next
}

// ParseInterval parses the interval grammar. Units: m (minutes),
// h (hours), d (days), w (weeks). The magnitude must be a positive
// integer.
func ParseInterval(rule string) (time.Duration, error) {
	if len(rule) < 2 {
		return 0, fmt.Errorf("invalid recurrence rule %q", rule)
	}

	magnitude, err := strconv.Atoi(rule[:len(rule)-1])
	if err != nil || magnitude <= 0 {
		return 0, fmt.Errorf("invalid recurrence magnitude in %q", rule)
	}

	switch rule[len(rule)-1] {
	case 'm':
		return time.Duration(magnitude) * time.Minute, nil
	case 'h':
		return time.Duration(magnitude) * time.Hour, nil
	case 'd':
		return time.Duration(magnitude) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(magnitude) * 7 * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("invalid recurrence unit in %q", rule)
}
