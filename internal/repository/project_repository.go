package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Project struct {
	ID            string
	Name          string
	Description   string
	Status        string
	Progress      int
	Priority      string
	DueDate       *time.Time
	CompanyID     string
	ClientID      *string
	ClientName    string
	Budget        decimal.Decimal
	Spent         decimal.Decimal
	Phase         string
	NextMilestone string
	AssignedTo    []string
	CreatedBy     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LastUpdate is the calendar date of the most recent write.
func (p *Project) LastUpdate() string {
	return p.UpdatedAt.Format("2006-01-02")
}

// Clone returns a copy that shares no slices with p.
func (p *Project) Clone() *Project {
	cp := *p
	cp.AssignedTo = append([]string(nil), p.AssignedTo...)
	return &cp
}

// ProjectFilter narrows a fetch. Nil fields are not applied.
type ProjectFilter struct {
	CompanyID *string
	ClientID  *string
}

// ProjectPatch is a partial update. CompanyID is deliberately absent.
type ProjectPatch struct {
	Name          *string
	Description   *string
	Status        *string
	Progress      *int
	Priority      *string
	DueDate       *time.Time
	ClientID      *string
	ClientName    *string
	Budget        *decimal.Decimal
	Spent         *decimal.Decimal
	Phase         *string
	NextMilestone *string
}

// FieldChange records one field moving from Old to New.
type FieldChange struct {
	Field string
	Old   string
	New   string
}

// Apply returns a copy of p with the patch applied and the list of fields
// whose value actually changed.
func (patch ProjectPatch) Apply(p *Project) (*Project, []FieldChange) {
	out := p.Clone()
	var changes []FieldChange

	setString := func(field string, dst *string, v *string) {
		if v != nil && *dst != *v {
			changes = append(changes, FieldChange{Field: field, Old: *dst, New: *v})
			*dst = *v
		}
	}
	setDecimal := func(field string, dst *decimal.Decimal, v *decimal.Decimal) {
		if v != nil && !dst.Equal(*v) {
			changes = append(changes, FieldChange{Field: field, Old: dst.StringFixed(2), New: v.StringFixed(2)})
			*dst = *v
		}
	}

	setString("name", &out.Name, patch.Name)
	setString("description", &out.Description, patch.Description)
	setString("status", &out.Status, patch.Status)
	setString("priority", &out.Priority, patch.Priority)
	setString("phase", &out.Phase, patch.Phase)
	setString("next_milestone", &out.NextMilestone, patch.NextMilestone)
	setString("client_name", &out.ClientName, patch.ClientName)
	setDecimal("budget", &out.Budget, patch.Budget)
	setDecimal("spent", &out.Spent, patch.Spent)

	if patch.Progress != nil && out.Progress != *patch.Progress {
		changes = append(changes, FieldChange{
			Field: "progress",
			Old:   fmt.Sprint(out.Progress),
			New:   fmt.Sprint(*patch.Progress),
		})
		out.Progress = *patch.Progress
	}
	if patch.DueDate != nil && (out.DueDate == nil || !out.DueDate.Equal(*patch.DueDate)) {
		changes = append(changes, FieldChange{Field: "due_date", Old: formatDate(out.DueDate), New: formatDate(patch.DueDate)})
		d := *patch.DueDate
		out.DueDate = &d
	}
	if patch.ClientID != nil && derefString(out.ClientID) != *patch.ClientID {
		changes = append(changes, FieldChange{Field: "client_id", Old: derefString(out.ClientID), New: *patch.ClientID})
		out.ClientID = strPtr(*patch.ClientID)
	}

	return out, changes
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type ProjectRepository interface {
	// Create inserts the project and links it to every member in AssignedTo
	// in one transaction.
	Create(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, id string) (*Project, error)
	FindAll(ctx context.Context, filter ProjectFilter) ([]*Project, error)
	Update(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id string) error
	// AssignToTeam replaces the project's assignees, unlinks members that
	// were dropped and links the new set, all in a single transaction.
	AssignToTeam(ctx context.Context, projectID string, memberIDs []string) error
}

type pgProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &pgProjectRepository{pool: pool}
}

const projectColumns = `id, name, description, status, progress, priority, due_date, company_id,
	client_id, client_name, budget, spent, phase, next_milestone, assigned_to, created_by,
	created_at, updated_at`

func scanProject(row pgx.Row) (*Project, error) {
	p := &Project{}
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Status, &p.Progress, &p.Priority, &p.DueDate,
		&p.CompanyID, &p.ClientID, &p.ClientName, &p.Budget, &p.Spent, &p.Phase,
		&p.NextMilestone, &p.AssignedTo, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.AssignedTo == nil {
		p.AssignedTo = []string{}
	}
	return p, nil
}

func (r *pgProjectRepository) Create(ctx context.Context, project *Project) error {
	if project.AssignedTo == nil {
		project.AssignedTo = []string{}
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO projects (name, description, status, progress, priority, due_date, company_id,
			client_id, client_name, budget, spent, phase, next_milestone, assigned_to, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRow(ctx, query,
		project.Name, project.Description, project.Status, project.Progress, project.Priority,
		project.DueDate, project.CompanyID, project.ClientID, project.ClientName,
		project.Budget, project.Spent, project.Phase, project.NextMilestone,
		project.AssignedTo, project.CreatedBy,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return err
	}

	if err := linkMembers(ctx, tx, project.ID, project.AssignedTo); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *pgProjectRepository) FindByID(ctx context.Context, id string) (*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	p, err := scanProject(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *pgProjectRepository) FindAll(ctx context.Context, filter ProjectFilter) ([]*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE TRUE`
	var args []interface{}
	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		query += fmt.Sprintf(` AND company_id = $%d`, len(args))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		query += fmt.Sprintf(` AND client_id = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *pgProjectRepository) Update(ctx context.Context, project *Project) error {
	query := `
		UPDATE projects SET
			name = $2, description = $3, status = $4, progress = $5, priority = $6,
			due_date = $7, client_id = $8, client_name = $9, budget = $10, spent = $11,
			phase = $12, next_milestone = $13, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		project.ID, project.Name, project.Description, project.Status, project.Progress,
		project.Priority, project.DueDate, project.ClientID, project.ClientName,
		project.Budget, project.Spent, project.Phase, project.NextMilestone,
	).Scan(&project.UpdatedAt)
	if err == pgx.ErrNoRows {
		return ErrNoRows
	}
	return err
}

func (r *pgProjectRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return err
}

func (r *pgProjectRepository) AssignToTeam(ctx context.Context, projectID string, memberIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var previous []string
	err = tx.QueryRow(ctx,
		`SELECT assigned_to FROM projects WHERE id = $1 FOR UPDATE`, projectID,
	).Scan(&previous)
	if err == pgx.ErrNoRows {
		return ErrNoRows
	}
	if err != nil {
		return fmt.Errorf("read project assignees: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE projects SET assigned_to = $2, updated_at = NOW() WHERE id = $1`,
		projectID, memberIDs,
	); err != nil {
		return fmt.Errorf("update project assignees: %w", err)
	}

	if removed := missingFrom(previous, memberIDs); len(removed) > 0 {
		if _, err := tx.Exec(ctx, `
			UPDATE team_members SET projects = array_remove(projects, $1::uuid), updated_at = NOW()
			WHERE id = ANY($2::uuid[])`,
			projectID, removed,
		); err != nil {
			return fmt.Errorf("unlink removed members: %w", err)
		}
	}

	if err := linkMembers(ctx, tx, projectID, memberIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// linkMembers appends projectID to each member's project list. An unknown
// member aborts the transaction.
func linkMembers(ctx context.Context, tx pgx.Tx, projectID string, memberIDs []string) error {
	for _, memberID := range memberIDs {
		var projects []string
		err := tx.QueryRow(ctx,
			`SELECT projects FROM team_members WHERE id = $1 FOR UPDATE`, memberID,
		).Scan(&projects)
		if err == pgx.ErrNoRows {
			return fmt.Errorf("team member %s: %w", memberID, ErrNoRows)
		}
		if err != nil {
			return fmt.Errorf("read team member %s: %w", memberID, err)
		}

		updated := appendUnique(projects, projectID)
		if len(updated) == len(projects) {
			continue
		}
		if _, err := tx.Exec(ctx,
			`UPDATE team_members SET projects = $2, updated_at = NOW() WHERE id = $1`,
			memberID, updated,
		); err != nil {
			return fmt.Errorf("update team member %s: %w", memberID, err)
		}
	}
	return nil
}
