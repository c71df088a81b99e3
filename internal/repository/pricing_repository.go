package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

type PricingRequest struct {
	ID          string     `db:"id"`
	UserID      string     `db:"user_id"`
	PlanName    string     `db:"plan_name"`
	PlanPrice   string     `db:"plan_price"`
	CompanyName *string    `db:"company_name"`
	Email       string     `db:"email"`
	Phone       *string    `db:"phone"`
	Status      string     `db:"status"`
	Notes       *string    `db:"notes"`
	RequestedAt time.Time  `db:"requested_at"`
	ApprovedAt  *time.Time `db:"approved_at"`
	ApprovedBy  *string    `db:"approved_by"`
}

type PricingRepository interface {
	Create(ctx context.Context, req *PricingRequest) error
	FindByID(ctx context.Context, id string) (*PricingRequest, error)
	// FindAll returns every request, or only userID's when it is non-nil.
	FindAll(ctx context.Context, userID *string) ([]*PricingRequest, error)
	// Decide moves a pending request to status. It returns ErrNoRows when the
	// request does not exist or is no longer pending.
	Decide(ctx context.Context, req *PricingRequest) error
}

type sqlPricingRepository struct {
	db *sqlx.DB
}

func NewPricingRepository(db *sqlx.DB) PricingRepository {
	return &sqlPricingRepository{db: db}
}

const pricingColumns = `id, user_id, plan_name, plan_price, company_name, email, phone, status,
	notes, requested_at, approved_at, approved_by`

func (r *sqlPricingRepository) Create(ctx context.Context, req *PricingRequest) error {
	query := `
		INSERT INTO pricing_requests (user_id, plan_name, plan_price, company_name, email, phone, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, requested_at
	`
	return r.db.QueryRowxContext(ctx, query,
		req.UserID, req.PlanName, req.PlanPrice, req.CompanyName, req.Email, req.Phone, req.Status,
	).Scan(&req.ID, &req.RequestedAt)
}

func (r *sqlPricingRepository) FindByID(ctx context.Context, id string) (*PricingRequest, error) {
	var req PricingRequest
	err := r.db.GetContext(ctx, &req, `SELECT `+pricingColumns+` FROM pricing_requests WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *sqlPricingRepository) FindAll(ctx context.Context, userID *string) ([]*PricingRequest, error) {
	requests := []*PricingRequest{}
	var err error
	if userID != nil {
		err = r.db.SelectContext(ctx, &requests,
			`SELECT `+pricingColumns+` FROM pricing_requests WHERE user_id = $1 ORDER BY requested_at DESC`, *userID)
	} else {
		err = r.db.SelectContext(ctx, &requests,
			`SELECT `+pricingColumns+` FROM pricing_requests ORDER BY requested_at DESC`)
	}
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *sqlPricingRepository) Decide(ctx context.Context, req *PricingRequest) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pricing_requests
		SET status = $2, notes = $3, approved_at = $4, approved_by = $5
		WHERE id = $1 AND status = 'pending'
	`, req.ID, req.Status, req.Notes, req.ApprovedAt, req.ApprovedBy)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoRows
	}
	return nil
}
