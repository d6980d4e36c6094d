package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/crescentlab/postpilot/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) (int64, error)
}

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) (int64, error) {
	query := `
		INSERT INTO notifications (recipient_id, post_id, message)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, n.RecipientID, n.PostID, n.Message).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}
