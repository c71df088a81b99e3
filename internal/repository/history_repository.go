package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ProjectHistory is one entry of a project's append-only audit trail.
type ProjectHistory struct {
	ID           string    `db:"id"`
	ProjectID    string    `db:"project_id"`
	ChangedBy    *string   `db:"changed_by"`
	Action       string    `db:"action"`
	FieldChanged *string   `db:"field_changed"`
	OldValue     *string   `db:"old_value"`
	NewValue     *string   `db:"new_value"`
	CreatedAt    time.Time `db:"created_at"`
}

type HistoryFilter struct {
	ProjectID *string
	CompanyID *string
	ClientID  *string
}

type HistoryRepository interface {
	Create(ctx context.Context, entry *ProjectHistory) error
	FindAll(ctx context.Context, filter HistoryFilter) ([]*ProjectHistory, error)
}

type sqlHistoryRepository struct {
	db *sqlx.DB
}

func NewHistoryRepository(db *sqlx.DB) HistoryRepository {
	return &sqlHistoryRepository{db: db}
}

func (r *sqlHistoryRepository) Create(ctx context.Context, entry *ProjectHistory) error {
	query := `
		INSERT INTO project_history (project_id, changed_by, action, field_changed, old_value, new_value)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	return r.db.QueryRowxContext(ctx, query,
		entry.ProjectID, entry.ChangedBy, entry.Action,
		entry.FieldChanged, entry.OldValue, entry.NewValue,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *sqlHistoryRepository) FindAll(ctx context.Context, filter HistoryFilter) ([]*ProjectHistory, error) {
	query := `
		SELECT id, project_id, changed_by, action, field_changed, old_value, new_value, created_at
		FROM project_history WHERE TRUE`
	var args []interface{}
	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		query += fmt.Sprintf(` AND project_id = $%d`, len(args))
	}
	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		query += fmt.Sprintf(` AND project_id IN (SELECT id FROM projects WHERE company_id = $%d)`, len(args))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		query += fmt.Sprintf(` AND project_id IN (SELECT id FROM projects WHERE client_id = $%d)`, len(args))
	}
	query += ` ORDER BY created_at DESC`

	entries := []*ProjectHistory{}
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, err
	}
	return entries, nil
}
