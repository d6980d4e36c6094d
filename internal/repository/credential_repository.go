package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/crescentlab/postpilot/internal/models"
)

// CredentialRepository is read-only from the engine's point of view;
// credential lifecycle belongs to the OAuth subsystem.
type CredentialRepository interface {
	ListConnected(ctx context.Context) ([]*models.PlatformCredential, error)
}

type credentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) ListConnected(ctx context.Context) ([]*models.PlatformCredential, error) {
	query := `
		SELECT id, platform, access_token, account_id, metadata, created_at, updated_at
		FROM platform_credentials
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var creds []*models.PlatformCredential
	for rows.Next() {
		var c models.PlatformCredential
		var metadata []byte
		err := rows.Scan(&c.ID, &c.Platform, &c.AccessToken, &c.AccountID, &metadata, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &c.Metadata); err != nil {
				slog.Info(err.Error())
				return nil, err
			}
		}
		creds = append(creds, &c)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return creds, nil
}
