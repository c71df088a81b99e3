package repository

import (
	"context"
	"time"

	"github.com/Marga-Ghale/projecthub-backend/internal/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Company struct {
	ID                  string
	Name                string
	Email               string
	Status              string
	SubscriptionPlan    string
	SubscriptionStatus  string
	SubscriptionEndDate *time.Time
	TrialStartDate      *time.Time
	TrialEndDate        *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsActive reports whether the company is active with a paid subscription.
func (c *Company) IsActive() bool {
	return c.Status == types.CompanyActive && c.SubscriptionStatus == types.SubscriptionActive
}

type CompanyFilter struct {
	ID *string
}

type CompanyRepository interface {
	Create(ctx context.Context, company *Company) error
	FindByID(ctx context.Context, id string) (*Company, error)
	FindAll(ctx context.Context, filter CompanyFilter) ([]*Company, error)
	Update(ctx context.Context, company *Company) error
	// ExpireOverdue flips companies whose subscription ended before now to
	// inactive/expired and returns the ids it changed.
	ExpireOverdue(ctx context.Context, now time.Time) ([]string, error)
}

type pgCompanyRepository struct {
	pool *pgxpool.Pool
}

func NewCompanyRepository(pool *pgxpool.Pool) CompanyRepository {
	return &pgCompanyRepository{pool: pool}
}

const companyColumns = `id, name, email, status, subscription_plan, subscription_status,
	subscription_end_date, trial_start_date, trial_end_date, created_at, updated_at`

func scanCompany(row pgx.Row) (*Company, error) {
	c := &Company{}
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Status, &c.SubscriptionPlan, &c.SubscriptionStatus,
		&c.SubscriptionEndDate, &c.TrialStartDate, &c.TrialEndDate, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *pgCompanyRepository) Create(ctx context.Context, company *Company) error {
	query := `
		INSERT INTO companies (name, email, status, subscription_plan, subscription_status,
			subscription_end_date, trial_start_date, trial_end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		company.Name, company.Email, company.Status, company.SubscriptionPlan,
		company.SubscriptionStatus, company.SubscriptionEndDate,
		company.TrialStartDate, company.TrialEndDate,
	).Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt)
}

func (r *pgCompanyRepository) FindByID(ctx context.Context, id string) (*Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	c, err := scanCompany(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *pgCompanyRepository) FindAll(ctx context.Context, filter CompanyFilter) ([]*Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies`
	var args []interface{}
	if filter.ID != nil {
		query += ` WHERE id = $1`
		args = append(args, *filter.ID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []*Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (r *pgCompanyRepository) Update(ctx context.Context, company *Company) error {
	query := `
		UPDATE companies SET
			name = $2, email = $3, status = $4, subscription_plan = $5,
			subscription_status = $6, subscription_end_date = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		company.ID, company.Name, company.Email, company.Status,
		company.SubscriptionPlan, company.SubscriptionStatus, company.SubscriptionEndDate,
	).Scan(&company.UpdatedAt)
	if err == pgx.ErrNoRows {
		return ErrNoRows
	}
	return err
}

func (r *pgCompanyRepository) ExpireOverdue(ctx context.Context, now time.Time) ([]string, error) {
	query := `
		UPDATE companies SET
			status = 'inactive', subscription_status = 'expired', updated_at = NOW()
		WHERE subscription_end_date < $1
		  AND subscription_status IN ('active', 'trial')
		RETURNING id
	`
	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
