package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/crescentlab/postpilot/internal/models"
)

type TeamMemberRepository interface {
	ListOperators(ctx context.Context) ([]*models.TeamMember, error)
}

type teamMemberRepository struct {
	db *sql.DB
}

func NewTeamMemberRepository(db *sql.DB) TeamMemberRepository {
	return &teamMemberRepository{db: db}
}

// ListOperators returns the active members that receive publish
// failure notifications.
func (r *teamMemberRepository) ListOperators(ctx context.Context) ([]*models.TeamMember, error) {
	query := `
		SELECT id, name, email, role, is_active, created_at, updated_at
		FROM team_members
		WHERE is_active = true AND role IN ($1, $2)
	`
	rows, err := r.db.QueryContext(ctx, query, models.RoleAdmin, models.RoleOperator)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var members []*models.TeamMember
	for rows.Next() {
		var m models.TeamMember
		err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Role, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		members = append(members, &m)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return members, nil
}
