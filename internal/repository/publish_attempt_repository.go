package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/crescentlab/postpilot/internal/models"
)

// PublishAttemptRepository is the append-only attempt ledger. Attempts
// are only ever inserted; CountFailedSince feeds the retry-ceiling
// check with a windowed scan over the same rows.
type PublishAttemptRepository interface {
	Create(ctx context.Context, a *models.PublishAttempt) (int64, error)
	CountFailedSince(ctx context.Context, scheduleID int64, since time.Time) (int, error)
	ListByPostID(ctx context.Context, postID int64) ([]*models.PublishAttempt, error)
}

type publishAttemptRepository struct {
	db *sql.DB
}

func NewPublishAttemptRepository(db *sql.DB) PublishAttemptRepository {
	return &publishAttemptRepository{db: db}
}

func (r *publishAttemptRepository) Create(ctx context.Context, a *models.PublishAttempt) (int64, error) {
	query := `
		INSERT INTO publish_attempts (schedule_id, post_id, platform, status, platform_post_id, error_message, run_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		a.ScheduleID, a.PostID, a.Platform, a.Status, a.PlatformPostID, a.ErrorMessage, a.RunID, a.CreatedAt,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *publishAttemptRepository) CountFailedSince(ctx context.Context, scheduleID int64, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM publish_attempts
		WHERE schedule_id = $1 AND status = $2 AND created_at >= $3
	`
	var count int
	err := r.db.QueryRowContext(ctx, query, scheduleID, models.AttemptStatusFailed, since).Scan(&count)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}

func (r *publishAttemptRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.PublishAttempt, error) {
	query := `
		SELECT id, schedule_id, post_id, platform, status, platform_post_id, error_message, run_id, created_at
		FROM publish_attempts WHERE post_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var attempts []*models.PublishAttempt
	for rows.Next() {
		var a models.PublishAttempt
		err := rows.Scan(&a.ID, &a.ScheduleID, &a.PostID, &a.Platform, &a.Status,
			&a.PlatformPostID, &a.ErrorMessage, &a.RunID, &a.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		attempts = append(attempts, &a)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return attempts, nil
}
