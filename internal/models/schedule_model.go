package models

import "time"

type Schedule struct {
	ID                int64      `db:"id" json:"id"`
	PostID            int64      `db:"post_id" json:"post_id"`
	ScheduleType      string     `db:"schedule_type" json:"schedule_type"`
	NextRunAt         time.Time  `db:"next_run_at" json:"next_run_at"`
	RecurrenceRule    string     `db:"recurrence_rule" json:"recurrence_rule"`
	RecurrenceEndDate *time.Time `db:"recurrence_end_date" json:"recurrence_end_date"`
	Timezone          string     `db:"timezone" json:"timezone"`
	IsActive          bool       `db:"is_active" json:"is_active"`
	LastRunAt         *time.Time `db:"last_run_at" json:"last_run_at"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

const (
	ScheduleTypeOneTime   = "one_time"
	ScheduleTypeRecurring = "recurring"
)

// DueSchedule pairs a due schedule with its publishable post, as
// returned by the due-schedule query.
type DueSchedule struct {
	Schedule *Schedule
	Post     *Post
}
