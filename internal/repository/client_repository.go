package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Marga-Ghale/projecthub-backend/internal/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Client is a company's view of a client account.
type Client struct {
	ID        string
	FullName  string
	Email     string
	Phone     *string
	AvatarURL *string
	Status    string
	CompanyID *string
	UserID    *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Avatar is the avatar URL when set, otherwise the client's initials.
func (c *Client) Avatar() string {
	if c.AvatarURL != nil && *c.AvatarURL != "" {
		return *c.AvatarURL
	}
	return strings.ToUpper(Initials(c.FullName))
}

func (c *Client) applyDefaults() {
	if c.FullName == "" {
		c.FullName = EmailLocalPart(c.Email)
	}
	if c.Status == "" {
		c.Status = types.ClientActive
	}
}

type ClientFilter struct {
	CompanyID *string
	UserID    *string
	// LinkedOnly drops clients that are not backed by a login.
	LinkedOnly bool
}

type ClientRepository interface {
	Create(ctx context.Context, client *Client) error
	FindByID(ctx context.Context, id string) (*Client, error)
	FindAll(ctx context.Context, filter ClientFilter) ([]*Client, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

type pgClientRepository struct {
	pool *pgxpool.Pool
}

func NewClientRepository(pool *pgxpool.Pool) ClientRepository {
	return &pgClientRepository{pool: pool}
}

const clientColumns = `id, full_name, email, phone, avatar_url, status, company_id, user_id, created_at, updated_at`

func scanClient(row pgx.Row) (*Client, error) {
	c := &Client{}
	err := row.Scan(
		&c.ID, &c.FullName, &c.Email, &c.Phone, &c.AvatarURL, &c.Status,
		&c.CompanyID, &c.UserID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.applyDefaults()
	return c, nil
}

func (r *pgClientRepository) Create(ctx context.Context, client *Client) error {
	client.applyDefaults()
	query := `
		INSERT INTO clients (full_name, email, phone, avatar_url, status, company_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		client.FullName, client.Email, client.Phone, client.AvatarURL,
		client.Status, client.CompanyID, client.UserID,
	).Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
}

func (r *pgClientRepository) FindByID(ctx context.Context, id string) (*Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	c, err := scanClient(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *pgClientRepository) FindAll(ctx context.Context, filter ClientFilter) ([]*Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE TRUE`
	var args []interface{}
	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		query += fmt.Sprintf(` AND company_id = $%d`, len(args))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		query += fmt.Sprintf(` AND user_id = $%d`, len(args))
	}
	if filter.LinkedOnly {
		query += ` AND user_id IS NOT NULL`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *pgClientRepository) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE clients SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

func (r *pgClientRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	return err
}
