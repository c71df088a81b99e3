package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Account holds identity-provider credentials for a profile.
type Account struct {
	ID           string
	Email        string
	PasswordHash *string
	Provider     string
	Subject      *string
	CreatedAt    time.Time
}

type RefreshToken struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type AccountRepository interface {
	// CreateWithProfile inserts the profile and its account in one transaction.
	// The account id is taken from the created profile.
	CreateWithProfile(ctx context.Context, profile *Profile, account *Account) error
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindBySubject(ctx context.Context, provider, subject string) (*Account, error)
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteUserRefreshTokens(ctx context.Context, userID string) error
}

type pgAccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &pgAccountRepository{pool: pool}
}

func (r *pgAccountRepository) CreateWithProfile(ctx context.Context, profile *Profile, account *Account) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO profiles (email, full_name, role, company_id, company_name, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, profile.Email, profile.FullName, profile.Role,
		profile.CompanyID, profile.CompanyName, profile.Status,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return err
	}

	account.ID = profile.ID
	if account.Provider == "" {
		account.Provider = "password"
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO auth_accounts (id, email, password_hash, provider, subject)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, account.ID, account.Email, account.PasswordHash, account.Provider, account.Subject,
	).Scan(&account.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *pgAccountRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	query := `
		SELECT id, email, password_hash, provider, subject, created_at
		FROM auth_accounts WHERE LOWER(email) = LOWER($1)
	`
	return r.findOne(ctx, query, email)
}

func (r *pgAccountRepository) FindBySubject(ctx context.Context, provider, subject string) (*Account, error) {
	query := `
		SELECT id, email, password_hash, provider, subject, created_at
		FROM auth_accounts WHERE provider = $1 AND subject = $2
	`
	return r.findOne(ctx, query, provider, subject)
}

func (r *pgAccountRepository) findOne(ctx context.Context, query string, args ...interface{}) (*Account, error) {
	a := &Account{}
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.Provider, &a.Subject, &a.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *pgAccountRepository) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (token, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query, token.Token, token.UserID, token.ExpiresAt).
		Scan(&token.ID, &token.CreatedAt)
}

func (r *pgAccountRepository) FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	query := `SELECT id, token, user_id, expires_at, created_at FROM refresh_tokens WHERE token = $1`
	rt := &RefreshToken{}
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&rt.ID, &rt.Token, &rt.UserID, &rt.ExpiresAt, &rt.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *pgAccountRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	return err
}

func (r *pgAccountRepository) DeleteUserRefreshTokens(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	return err
}
