package models

import "time"

// PublishAttempt is one row of the append-only attempt ledger: one
// entry per (schedule, post, platform) per engine run. Rows are never
// updated or deleted.
type PublishAttempt struct {
	ID             int64     `db:"id" json:"id"`
	ScheduleID     int64     `db:"schedule_id" json:"schedule_id"`
	PostID         int64     `db:"post_id" json:"post_id"`
	Platform       string    `db:"platform" json:"platform"`
	Status         string    `db:"status" json:"status"`
	PlatformPostID string    `db:"platform_post_id" json:"platform_post_id"`
	ErrorMessage   string    `db:"error_message" json:"error_message"`
	RunID          string    `db:"run_id" json:"run_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

const (
	AttemptStatusSuccess = "success"
	AttemptStatusFailed  = "failed"
)
