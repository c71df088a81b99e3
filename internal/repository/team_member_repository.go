package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Marga-Ghale/projecthub-backend/internal/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TeamMember is a company roster entry, optionally linked to a login.
type TeamMember struct {
	ID          string
	Name        string
	Email       string
	Role        string
	Status      string
	Department  string
	Phone       string
	Avatar      string
	HireDate    time.Time
	Salary      decimal.Decimal
	Permissions []string
	Projects    []string
	CompanyID   string
	UserID      *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (m *TeamMember) Clone() *TeamMember {
	cp := *m
	cp.Permissions = append([]string(nil), m.Permissions...)
	cp.Projects = append([]string(nil), m.Projects...)
	return &cp
}

// NotifyTarget is the id notifications for this member are addressed to:
// the linked login when there is one, the roster id otherwise.
func (m *TeamMember) NotifyTarget() string {
	if m.UserID != nil && *m.UserID != "" {
		return *m.UserID
	}
	return m.ID
}

// applyDefaults fills optional fields the store may leave empty.
func (m *TeamMember) applyDefaults(now time.Time) {
	if m.Avatar == "" {
		m.Avatar = Initials(m.Name)
	}
	if m.Department == "" {
		m.Department = "Engineering"
	}
	if m.Status == "" {
		m.Status = types.MemberActive
	}
	if m.HireDate.IsZero() {
		m.HireDate = now
	}
	if m.Permissions == nil {
		m.Permissions = []string{}
	}
	if m.Projects == nil {
		m.Projects = []string{}
	}
}

type TeamMemberFilter struct {
	CompanyID *string
	// ClientID limits the roster to members assigned to that client's projects.
	ClientID *string
}

type TeamMemberPatch struct {
	Name        *string
	Email       *string
	Role        *string
	Status      *string
	Department  *string
	Phone       *string
	Salary      *decimal.Decimal
	Permissions []string
}

func (patch TeamMemberPatch) Apply(m *TeamMember) *TeamMember {
	out := m.Clone()
	if patch.Name != nil {
		out.Name = *patch.Name
		out.Avatar = Initials(out.Name)
	}
	if patch.Email != nil {
		out.Email = *patch.Email
	}
	if patch.Role != nil {
		out.Role = *patch.Role
	}
	if patch.Status != nil {
		out.Status = *patch.Status
	}
	if patch.Department != nil {
		out.Department = *patch.Department
	}
	if patch.Phone != nil {
		out.Phone = *patch.Phone
	}
	if patch.Salary != nil {
		out.Salary = *patch.Salary
	}
	if patch.Permissions != nil {
		out.Permissions = append([]string(nil), patch.Permissions...)
	}
	return out
}

type TeamMemberRepository interface {
	Create(ctx context.Context, member *TeamMember) error
	FindByID(ctx context.Context, id string) (*TeamMember, error)
	FindByIDs(ctx context.Context, ids []string) ([]*TeamMember, error)
	FindAll(ctx context.Context, filter TeamMemberFilter) ([]*TeamMember, error)
	Update(ctx context.Context, member *TeamMember) error
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

type pgTeamMemberRepository struct {
	pool *pgxpool.Pool
}

func NewTeamMemberRepository(pool *pgxpool.Pool) TeamMemberRepository {
	return &pgTeamMemberRepository{pool: pool}
}

const teamMemberColumns = `id, name, email, role, status, department, phone, avatar, hire_date,
	salary, permissions, projects, company_id, user_id, created_at, updated_at`

func scanTeamMember(row pgx.Row) (*TeamMember, error) {
	m := &TeamMember{}
	err := row.Scan(
		&m.ID, &m.Name, &m.Email, &m.Role, &m.Status, &m.Department, &m.Phone, &m.Avatar,
		&m.HireDate, &m.Salary, &m.Permissions, &m.Projects, &m.CompanyID, &m.UserID,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.applyDefaults(m.CreatedAt)
	return m, nil
}

func (r *pgTeamMemberRepository) Create(ctx context.Context, member *TeamMember) error {
	member.applyDefaults(time.Now())
	query := `
		INSERT INTO team_members (name, email, role, status, department, phone, avatar, hire_date,
			salary, permissions, projects, company_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		member.Name, member.Email, member.Role, member.Status, member.Department, member.Phone,
		member.Avatar, member.HireDate, member.Salary, member.Permissions, member.Projects,
		member.CompanyID, member.UserID,
	).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)
}

func (r *pgTeamMemberRepository) FindByID(ctx context.Context, id string) (*TeamMember, error) {
	query := `SELECT ` + teamMemberColumns + ` FROM team_members WHERE id = $1`
	m, err := scanTeamMember(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (r *pgTeamMemberRepository) FindByIDs(ctx context.Context, ids []string) ([]*TeamMember, error) {
	if len(ids) == 0 {
		return []*TeamMember{}, nil
	}
	query := `SELECT ` + teamMemberColumns + ` FROM team_members WHERE id = ANY($1)`
	return r.query(ctx, query, ids)
}

func (r *pgTeamMemberRepository) FindAll(ctx context.Context, filter TeamMemberFilter) ([]*TeamMember, error) {
	query := `SELECT ` + teamMemberColumns + ` FROM team_members WHERE TRUE`
	var args []interface{}
	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		query += fmt.Sprintf(` AND company_id = $%d`, len(args))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		query += fmt.Sprintf(` AND id IN (
			SELECT UNNEST(assigned_to) FROM projects WHERE client_id = $%d
		)`, len(args))
	}
	query += ` ORDER BY name`
	return r.query(ctx, query, args...)
}

func (r *pgTeamMemberRepository) query(ctx context.Context, query string, args ...interface{}) ([]*TeamMember, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*TeamMember
	for rows.Next() {
		m, err := scanTeamMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *pgTeamMemberRepository) Update(ctx context.Context, member *TeamMember) error {
	query := `
		UPDATE team_members SET
			name = $2, email = $3, role = $4, status = $5, department = $6, phone = $7,
			avatar = $8, salary = $9, permissions = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		member.ID, member.Name, member.Email, member.Role, member.Status, member.Department,
		member.Phone, member.Avatar, member.Salary, member.Permissions,
	).Scan(&member.UpdatedAt)
	if err == pgx.ErrNoRows {
		return ErrNoRows
	}
	return err
}

func (r *pgTeamMemberRepository) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE team_members SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

func (r *pgTeamMemberRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM team_members WHERE id = $1`, id)
	return err
}
