package repository

import (
	"context"
	"time"

	"github.com/Marga-Ghale/projecthub-backend/internal/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Profile is the application-side view of an authenticated identity.
type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"fullName"`
	Role        string    `json:"role"`
	CompanyID   *string   `json:"companyId,omitempty"`
	CompanyName *string   `json:"companyName,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p *Profile) Permissions() []string {
	return types.PermissionsForRole(p.Role)
}

func (p *Profile) IsAdmin() bool   { return p.Role == types.RoleAdmin }
func (p *Profile) IsCompany() bool { return p.Role == types.RoleCompany }
func (p *Profile) IsClient() bool  { return p.Role == types.RoleClient }

func (p *Profile) IsActive() bool { return p.Status == types.ProfileActive }

// Company returns the affiliated company id, or "" when there is none.
func (p *Profile) Company() string {
	if p.CompanyID == nil {
		return ""
	}
	return *p.CompanyID
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error
	FindByID(ctx context.Context, id string) (*Profile, error)
	FindByEmail(ctx context.Context, email string) (*Profile, error)
	FindAll(ctx context.Context) ([]*Profile, error)
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateCompany(ctx context.Context, id, companyID, companyName string) error
}

type pgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &pgProfileRepository{pool: pool}
}

const profileColumns = `id, email, full_name, role, company_id, company_name, status, created_at, updated_at`

func scanProfile(row pgx.Row) (*Profile, error) {
	p := &Profile{}
	err := row.Scan(
		&p.ID, &p.Email, &p.FullName, &p.Role, &p.CompanyID,
		&p.CompanyName, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.FullName == "" {
		p.FullName = EmailLocalPart(p.Email)
	}
	return p, nil
}

func (r *pgProfileRepository) Create(ctx context.Context, profile *Profile) error {
	if profile.Status == "" {
		profile.Status = types.ProfileActive
	}
	if profile.Role == "" {
		profile.Role = types.RoleClient
	}
	query := `
		INSERT INTO profiles (email, full_name, role, company_id, company_name, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		profile.Email, profile.FullName, profile.Role,
		profile.CompanyID, profile.CompanyName, profile.Status,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
}

func (r *pgProfileRepository) FindByID(ctx context.Context, id string) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	p, err := scanProfile(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *pgProfileRepository) FindByEmail(ctx context.Context, email string) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE LOWER(email) = LOWER($1)`
	p, err := scanProfile(r.pool.QueryRow(ctx, query, email))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *pgProfileRepository) FindAll(ctx context.Context) ([]*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *pgProfileRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE profiles SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, status)
	return err
}

func (r *pgProfileRepository) UpdateCompany(ctx context.Context, id, companyID, companyName string) error {
	query := `UPDATE profiles SET company_id = $2, company_name = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, companyID, companyName)
	return err
}
