package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Issue struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Status      string         `db:"status"`
	Priority    string         `db:"priority"`
	ProjectID   string         `db:"project_id"`
	AssignedTo  *string        `db:"assigned_to"`
	CreatedBy   *string        `db:"created_by"`
	Labels      pq.StringArray `db:"labels"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (i *Issue) Clone() *Issue {
	cp := *i
	cp.Labels = append(pq.StringArray(nil), i.Labels...)
	return &cp
}

type IssueComment struct {
	ID        string    `db:"id"`
	IssueID   string    `db:"issue_id"`
	UserID    *string   `db:"user_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

// IssueFilter narrows a fetch. CompanyID limits to issues of the company's
// projects; ClientID limits to issues of the client's projects or created
// by the client.
type IssueFilter struct {
	CompanyID *string
	ClientID  *string
}

type IssuePatch struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	AssignedTo  *string
	Labels      []string
}

func (patch IssuePatch) Apply(i *Issue) *Issue {
	out := i.Clone()
	if patch.Title != nil {
		out.Title = *patch.Title
	}
	if patch.Description != nil {
		out.Description = *patch.Description
	}
	if patch.Status != nil {
		out.Status = *patch.Status
	}
	if patch.Priority != nil {
		out.Priority = *patch.Priority
	}
	if patch.AssignedTo != nil {
		out.AssignedTo = strPtr(*patch.AssignedTo)
	}
	if patch.Labels != nil {
		out.Labels = append(pq.StringArray(nil), patch.Labels...)
	}
	return out
}

type IssueRepository interface {
	Create(ctx context.Context, issue *Issue) error
	FindByID(ctx context.Context, id string) (*Issue, error)
	FindAll(ctx context.Context, filter IssueFilter) ([]*Issue, error)
	Update(ctx context.Context, issue *Issue) error
	Delete(ctx context.Context, id string) error
	AddComment(ctx context.Context, comment *IssueComment) error
	FindComments(ctx context.Context, issueID string) ([]*IssueComment, error)
}

type sqlIssueRepository struct {
	db *sqlx.DB
}

func NewIssueRepository(db *sqlx.DB) IssueRepository {
	return &sqlIssueRepository{db: db}
}

const issueColumns = `id, title, description, status, priority, project_id, assigned_to,
	created_by, labels, created_at, updated_at`

func (r *sqlIssueRepository) Create(ctx context.Context, issue *Issue) error {
	if issue.Labels == nil {
		issue.Labels = pq.StringArray{}
	}
	query := `
		INSERT INTO issues (title, description, status, priority, project_id, assigned_to, created_by, labels)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, query,
		issue.Title, issue.Description, issue.Status, issue.Priority,
		issue.ProjectID, issue.AssignedTo, issue.CreatedBy, issue.Labels,
	).Scan(&issue.ID, &issue.CreatedAt, &issue.UpdatedAt)
}

func (r *sqlIssueRepository) FindByID(ctx context.Context, id string) (*Issue, error) {
	var issue Issue
	err := r.db.GetContext(ctx, &issue, `SELECT `+issueColumns+` FROM issues WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *sqlIssueRepository) FindAll(ctx context.Context, filter IssueFilter) ([]*Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE TRUE`
	var args []interface{}
	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		query += fmt.Sprintf(` AND project_id IN (SELECT id FROM projects WHERE company_id = $%d)`, len(args))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		n := len(args)
		query += fmt.Sprintf(` AND (project_id IN (SELECT id FROM projects WHERE client_id = $%d) OR created_by = $%d)`, n, n)
	}
	query += ` ORDER BY created_at DESC`

	issues := []*Issue{}
	if err := r.db.SelectContext(ctx, &issues, query, args...); err != nil {
		return nil, err
	}
	return issues, nil
}

func (r *sqlIssueRepository) Update(ctx context.Context, issue *Issue) error {
	query := `
		UPDATE issues SET
			title = $2, description = $3, status = $4, priority = $5,
			assigned_to = $6, labels = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		issue.ID, issue.Title, issue.Description, issue.Status, issue.Priority,
		issue.AssignedTo, issue.Labels,
	).Scan(&issue.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoRows
	}
	return err
}

func (r *sqlIssueRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM issues WHERE id = $1`, id)
	return err
}

func (r *sqlIssueRepository) AddComment(ctx context.Context, comment *IssueComment) error {
	query := `
		INSERT INTO issue_comments (issue_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	return r.db.QueryRowxContext(ctx, query, comment.IssueID, comment.UserID, comment.Content).
		Scan(&comment.ID, &comment.CreatedAt)
}

func (r *sqlIssueRepository) FindComments(ctx context.Context, issueID string) ([]*IssueComment, error) {
	comments := []*IssueComment{}
	err := r.db.SelectContext(ctx, &comments, `
		SELECT id, issue_id, user_id, content, created_at
		FROM issue_comments WHERE issue_id = $1
		ORDER BY created_at ASC
	`, issueID)
	if err != nil {
		return nil, err
	}
	return comments, nil
}
