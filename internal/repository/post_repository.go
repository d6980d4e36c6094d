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

type PostRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	UpdateStatus(ctx context.Context, status string, postID int64) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `
		SELECT id, title, body, target_platforms, platform_content, media_urls, status, created_at, updated_at
		FROM posts WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)

	var post models.Post
	var platformContent []byte
	err := row.Scan(&post.ID, &post.Title, &post.Body, pq.Array(&post.TargetPlatforms),
		&platformContent, pq.Array(&post.MediaURLs), &post.Status, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	if len(platformContent) > 0 {
		if err := json.Unmarshal(platformContent, &post.PlatformContent); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
	}
	return &post, nil
}

func (r *postRepository) UpdateStatus(ctx context.Context, status string, postID int64) error {
	query := `
		UPDATE posts
		SET status = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
