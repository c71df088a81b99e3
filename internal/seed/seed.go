// internal/seed/seed.go
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/Marga-Ghale/projecthub-backend/internal/logger"
	"github.com/Marga-Ghale/projecthub-backend/internal/repository"
	"github.com/Marga-Ghale/projecthub-backend/internal/types"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const (
	AdminEmail   = "admin@projecthub.io"
	CompanyEmail = "owner@acme-studio.test"
	ClientEmail  = "client@globex.test"
	Password     = "password123"
)

// SeedData creates an admin, a demo company with one client, a team member
// and a project. It does nothing when the admin account already exists.
func SeedData(ctx context.Context, repos *repository.Repositories) error {
	existing, err := repos.AccountRepo.FindByEmail(ctx, AdminEmail)
	if err != nil {
		return fmt.Errorf("check seed admin: %w", err)
	}
	if existing != nil {
		logger.L().Info("[Seed] Data already exists, skipping")
		return nil
	}

	logger.L().Info("[Seed] Creating demo data")
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now()

	if _, err := createAccount(ctx, repos, hash, &repository.Profile{
		Email:    AdminEmail,
		FullName: "Platform Admin",
		Role:     types.RoleAdmin,
	}); err != nil {
		return err
	}

	// Demo company on a running trial
	trialEnd := now.Add(types.TrialPeriod)
	company := &repository.Company{
		Name:                "Acme Studio",
		Email:               CompanyEmail,
		Status:              types.CompanyActive,
		SubscriptionPlan:    types.PlanTrial,
		SubscriptionStatus:  types.SubscriptionTrial,
		SubscriptionEndDate: &trialEnd,
		TrialStartDate:      &now,
		TrialEndDate:        &trialEnd,
	}
	if err := repos.CompanyRepo.Create(ctx, company); err != nil {
		return fmt.Errorf("create demo company: %w", err)
	}

	if _, err := createAccount(ctx, repos, hash, &repository.Profile{
		Email:       CompanyEmail,
		FullName:    "Alex Owner",
		Role:        types.RoleCompany,
		CompanyID:   &company.ID,
		CompanyName: &company.Name,
	}); err != nil {
		return err
	}

	client, err := createAccount(ctx, repos, hash, &repository.Profile{
		Email:     ClientEmail,
		FullName:  "Gina Globex",
		Role:      types.RoleClient,
		CompanyID: &company.ID,
	})
	if err != nil {
		return err
	}
	if err := repos.ClientRepo.Create(ctx, &repository.Client{
		FullName:  client.FullName,
		Email:     client.Email,
		Status:    types.ClientActive,
		CompanyID: &company.ID,
		UserID:    &client.ID,
	}); err != nil {
		return fmt.Errorf("create demo client row: %w", err)
	}

	member := &repository.TeamMember{
		Name:        "Sam Developer",
		Email:       "sam@acme-studio.test",
		Role:        "Developer",
		Status:      types.MemberActive,
		Department:  "Engineering",
		HireDate:    now.AddDate(-1, 0, 0),
		Salary:      decimal.NewFromInt(72000),
		Permissions: []string{types.PermRead, types.PermWrite},
		CompanyID:   company.ID,
	}
	if err := repos.TeamMemberRepo.Create(ctx, member); err != nil {
		return fmt.Errorf("create demo team member: %w", err)
	}

	due := now.AddDate(0, 2, 0)
	project := &repository.Project{
		Name:          "Website Redesign",
		Description:   "New marketing site and customer portal",
		Status:        types.ProjectInProgress,
		Progress:      35,
		Priority:      types.PriorityHigh,
		DueDate:       &due,
		CompanyID:     company.ID,
		ClientID:      &client.ID,
		ClientName:    client.FullName,
		Budget:        decimal.NewFromInt(25000),
		Spent:         decimal.NewFromInt(8200),
		Phase:         "Design",
		NextMilestone: "Homepage mockups",
	}
	if err := repos.ProjectRepo.Create(ctx, project); err != nil {
		return fmt.Errorf("create demo project: %w", err)
	}
	if err := repos.ProjectRepo.AssignToTeam(ctx, project.ID, []string{member.ID}); err != nil {
		return fmt.Errorf("assign demo team: %w", err)
	}

	logger.L().Infow("[Seed] Demo data created", "admin", AdminEmail, "company", CompanyEmail, "client", ClientEmail)
	return nil
}

func createAccount(ctx context.Context, repos *repository.Repositories, hash []byte, profile *repository.Profile) (*repository.Profile, error) {
	profile.Status = types.ProfileActive
	passwordHash := string(hash)
	account := &repository.Account{Email: profile.Email, PasswordHash: &passwordHash}
	if err := repos.AccountRepo.CreateWithProfile(ctx, profile, account); err != nil {
		return nil, fmt.Errorf("create seed account %s: %w", profile.Email, err)
	}
	return profile, nil
}
