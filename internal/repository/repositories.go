package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

// ErrNoRows is returned by writes that matched no row.
var ErrNoRows = errors.New("no matching row")

type Repositories struct {
	// Core repositories (pgxpool)
	ProfileRepo      ProfileRepository
	AccountRepo      AccountRepository
	CompanyRepo      CompanyRepository
	ProjectRepo      ProjectRepository
	TeamMemberRepo   TeamMemberRepository
	ClientRepo       ClientRepository
	NotificationRepo NotificationRepository
	RPC              RPCRepository

	// Issue, history and pricing repositories (sqlx)
	IssueRepo   IssueRepository
	HistoryRepo HistoryRepository
	PricingRepo PricingRepository
}

func NewRepositories(pool *pgxpool.Pool, db *sqlx.DB) *Repositories {
	return &Repositories{
		ProfileRepo:      NewProfileRepository(pool),
		AccountRepo:      NewAccountRepository(pool),
		CompanyRepo:      NewCompanyRepository(pool),
		ProjectRepo:      NewProjectRepository(pool),
		TeamMemberRepo:   NewTeamMemberRepository(pool),
		ClientRepo:       NewClientRepository(pool),
		NotificationRepo: NewNotificationRepository(pool),
		RPC:              NewRPCRepository(pool),

		IssueRepo:   NewIssueRepository(db),
		HistoryRepo: NewHistoryRepository(db),
		PricingRepo: NewPricingRepository(db),
	}
}
