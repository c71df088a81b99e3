package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RPCRepository calls the stored procedures exposed by the database.
type RPCRepository interface {
	SendNotification(ctx context.Context, userID, title, message, notifType string, actionURL *string) (string, error)
	TrialDaysLeft(ctx context.Context, userID string) (int, error)
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

type pgRPCRepository struct {
	pool *pgxpool.Pool
}

func NewRPCRepository(pool *pgxpool.Pool) RPCRepository {
	return &pgRPCRepository{pool: pool}
}

func (r *pgRPCRepository) SendNotification(ctx context.Context, userID, title, message, notifType string, actionURL *string) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx,
		`SELECT send_notification($1, $2, $3, $4, $5)`,
		userID, title, message, notifType, actionURL,
	).Scan(&id)
	return id, err
}

func (r *pgRPCRepository) TrialDaysLeft(ctx context.Context, userID string) (int, error) {
	var days int
	err := r.pool.QueryRow(ctx, `SELECT get_trial_days_left($1)`, userID).Scan(&days)
	return days, err
}

func (r *pgRPCRepository) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var admin bool
	err := r.pool.QueryRow(ctx, `SELECT is_admin($1)`, userID).Scan(&admin)
	return admin, err
}
