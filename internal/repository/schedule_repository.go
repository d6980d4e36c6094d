package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/crescentlab/postpilot/internal/models"
)

type ScheduleRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Schedule, error)
	ListDue(ctx context.Context, cutoff time.Time) ([]*models.DueSchedule, error)
	CompleteRun(ctx context.Context, id int64, lastRunAt time.Time, nextRunAt *time.Time, isActive bool) error
}

type scheduleRepository struct {
	db *sql.DB
}

func NewScheduleRepository(db *sql.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) GetByID(ctx context.Context, id int64) (*models.Schedule, error) {
	query := `
		SELECT id, post_id, schedule_type, next_run_at, recurrence_rule, recurrence_end_date,
			timezone, is_active, last_run_at, created_at, updated_at
		FROM schedules WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)

	s, err := scanSchedule(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return s, nil
}

// ListDue returns every active schedule whose next_run_at has arrived,
// joined with its post, oldest-due first so a backlog drains in FIFO
// order. Rows whose post is missing or no longer publishable are
// filtered out by the join itself.
func (r *scheduleRepository) ListDue(ctx context.Context, cutoff time.Time) ([]*models.DueSchedule, error) {
	query := `
		SELECT s.id, s.post_id, s.schedule_type, s.next_run_at, s.recurrence_rule, s.recurrence_end_date,
			s.timezone, s.is_active, s.last_run_at, s.created_at, s.updated_at,
			p.id, p.title, p.body, p.target_platforms, p.platform_content, p.media_urls, p.status,
			p.created_at, p.updated_at
		FROM schedules s
		INNER JOIN posts p ON p.id = s.post_id
		WHERE s.is_active = true
			AND s.next_run_at <= $1
			AND p.status IN ($2, $3)
		ORDER BY s.next_run_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, cutoff, models.PostStatusScheduled, models.PostStatusApproved)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var due []*models.DueSchedule
	for rows.Next() {
		var s models.Schedule
		var p models.Post
		var rule sql.NullString
		var endDate, lastRun sql.NullTime
		var platformContent []byte

		err := rows.Scan(
			&s.ID, &s.PostID, &s.ScheduleType, &s.NextRunAt, &rule, &endDate,
			&s.Timezone, &s.IsActive, &lastRun, &s.CreatedAt, &s.UpdatedAt,
			&p.ID, &p.Title, &p.Body, pq.Array(&p.TargetPlatforms), &platformContent,
			pq.Array(&p.MediaURLs), &p.Status, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}

		s.RecurrenceRule = rule.String
		if endDate.Valid {
			t := endDate.Time
			s.RecurrenceEndDate = &t
		}
		if lastRun.Valid {
			t := lastRun.Time
			s.LastRunAt = &t
		}
		if len(platformContent) > 0 {
			if err := json.Unmarshal(platformContent, &p.PlatformContent); err != nil {
				slog.Info(err.Error())
				return nil, err
			}
		}

		due = append(due, &models.DueSchedule{Schedule: &s, Post: &p})
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return due, nil
}

// CompleteRun records the outcome of one run attempt in a single
// update. A nil nextRunAt leaves next_run_at untouched, which is how a
// failed run stays naturally due on the next cycle.
func (r *scheduleRepository) CompleteRun(ctx context.Context, id int64, lastRunAt time.Time, nextRunAt *time.Time, isActive bool) error {
	query := `
		UPDATE schedules
		SET last_run_at = $2,
			next_run_at = COALESCE($3, next_run_at),
			is_active = $4,
			updated_at = $5
		WHERE id = $1
	`
	var next sql.NullTime
	if nextRunAt != nil {
		next = sql.NullTime{Time: *nextRunAt, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, query, id, lastRunAt, next, isActive, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (*models.Schedule, error) {
	var s models.Schedule
	var rule sql.NullString
	var endDate, lastRun sql.NullTime

	err := row.Scan(&s.ID, &s.PostID, &s.ScheduleType, &s.NextRunAt, &rule, &endDate,
		&s.Timezone, &s.IsActive, &lastRun, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	s.RecurrenceRule = rule.String
	if endDate.Valid {
		t := endDate.Time
		s.RecurrenceEndDate = &t
	}
	if lastRun.Valid {
		t := lastRun.Time
		s.LastRunAt = &t
	}
	return &s, nil
}
