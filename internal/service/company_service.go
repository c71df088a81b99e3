package service

import (
	"context"
	"strings"
	"time"

	"github.com/Marga-Ghale/projecthub-backend/internal/logger"
	"github.com/Marga-Ghale/projecthub-backend/internal/repository"
	"github.com/Marga-Ghale/projecthub-backend/internal/scope"
	"github.com/Marga-Ghale/projecthub-backend/internal/session"
	"github.com/Marga-Ghale/projecthub-backend/internal/socket"
	"github.com/Marga-Ghale/projecthub-backend/internal/telemetry"
	"github.com/Marga-Ghale/projecthub-backend/internal/types"
)

// ============================================
// Company Service
// ============================================

type CompanyInput struct {
	Name               string
	Email              string
	Plan               string
	SubscriptionStatus string
}

type CompanyPatch struct {
	Name  *string
	Email *string
}

type CompanyService interface {
	Fetch(ctx context.Context, sess *session.Session) ([]*repository.Company, error)
	// ListActive returns companies open for client sign-up.
	ListActive(ctx context.Context) ([]*repository.Company, error)
	Create(ctx context.Context, sess *session.Session, in CompanyInput) (*repository.Company, error)
	Update(ctx context.Context, sess *session.Session, id string, patch CompanyPatch) (*repository.Company, error)
	SetStatus(ctx context.Context, sess *session.Session, id, status string) error
	UpdateSubscription(ctx context.Context, sess *session.Session, id, plan, status string) (*repository.Company, error)
	Renew(ctx context.Context, sess *session.Session, id, plan string) (*repository.Company, error)
	// SweepExpired expires overdue subscriptions on behalf of an admin and
	// refreshes the admin's company list.
	SweepExpired(ctx context.Context, sess *session.Session, now time.Time) (int, error)
	// Sweep is SweepExpired without a session, for scheduled runs.
	Sweep(ctx context.Context, now time.Time) (int, error)
	TrialDaysLeft(ctx context.Context, sess *session.Session) (int, error)
}

type companyService struct {
	companyRepo repository.CompanyRepository
	rpc         repository.RPCRepository
	bc          broadcast
	now         func() time.Time
}

func NewCompanyService(companyRepo repository.CompanyRepository, rpc repository.RPCRepository, bc broadcast) CompanyService {
	return &companyService{companyRepo: companyRepo, rpc: rpc, bc: bc, now: time.Now}
}

// subscriptionEnd is the end date of a subscription starting at from, or nil
// for a status that does not run.
func subscriptionEnd(plan, status string, from time.Time) *time.Time {
	if status != types.SubscriptionActive && status != types.SubscriptionTrial {
		return nil
	}
	end := from.Add(types.SubscriptionPeriod(plan))
	return &end
}

func (s *companyService) Fetch(ctx context.Context, sess *session.Session) ([]*repository.Company, error) {
	viewer := viewerOf(sess)
	if viewer == nil {
		return []*repository.Company{}, nil
	}

	var filter repository.CompanyFilter
	switch {
	case viewer.IsAdmin():
	case viewer.IsCompany() && viewer.Company() != "":
		filter.ID = strPtr(viewer.Company())
	default:
		return []*repository.Company{}, nil
	}

	companies, err := s.companyRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fail("fetch", "companies", err)
	}
	if companies == nil {
		companies = []*repository.Company{}
	}
	sess.Companies.Replace(companies)
	return companies, nil
}

func (s *companyService) ListActive(ctx context.Context) ([]*repository.Company, error) {
	companies, err := s.companyRepo.FindAll(ctx, repository.CompanyFilter{})
	if err != nil {
		return nil, fail("fetch", "companies", err)
	}
	return scope.ActiveCompanies(companies), nil
}

func (s *companyService) Create(ctx context.Context, sess *session.Session, in CompanyInput) (*repository.Company, error) {
	admin, err := requireAdmin(sess)
	if err != nil {
		return nil, err
	}

	if in.Plan == "" {
		in.Plan = types.PlanTrial
	}
	if in.SubscriptionStatus == "" {
		in.SubscriptionStatus = types.SubscriptionTrial
		if in.Plan != types.PlanTrial {
			in.SubscriptionStatus = types.SubscriptionActive
		}
	}

	var errs ValidationErrors
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" {
		errs = append(errs, MsgRequiredFields)
	}
	if !types.IsValidPlan(in.Plan) {
		errs = append(errs, "Invalid subscription plan")
	}
	if !isSubscriptionStatus(in.SubscriptionStatus) {
		errs = append(errs, "Invalid subscription status")
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}

	now := s.now()
	company := &repository.Company{
		Name:                strings.TrimSpace(in.Name),
		Email:               strings.TrimSpace(in.Email),
		Status:              types.CompanyActive,
		SubscriptionPlan:    in.Plan,
		SubscriptionStatus:  in.SubscriptionStatus,
		SubscriptionEndDate: subscriptionEnd(in.Plan, in.SubscriptionStatus, now),
	}
	if in.SubscriptionStatus == types.SubscriptionExpired {
		company.Status = types.CompanyInactive
	}
	if in.SubscriptionStatus == types.SubscriptionTrial {
		company.TrialStartDate = &now
		company.TrialEndDate = company.SubscriptionEndDate
	}

	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, fail("create", "company", err)
	}
	sess.Companies.Add(company)

	s.reconcile(ctx, sess)
	s.bc.changed(company.ID, socket.MessageCompanyChanged, "created", company.ID, admin.ID)
	return company, nil
}

// Update edits the company's details. Company users may only edit their own.
func (s *companyService) Update(ctx context.Context, sess *session.Session, id string, patch CompanyPatch) (*repository.Company, error) {
	viewer, err := requireManager(sess)
	if err != nil {
		return nil, err
	}
	if !viewer.IsAdmin() && viewer.Company() != id {
		return nil, ErrNotFound
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, invalid("Company name is required")
	}

	company, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := *company
	if patch.Name != nil {
		updated.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		updated.Email = strings.TrimSpace(*patch.Email)
	}
	return s.write(ctx, sess, viewer, &updated, "updated")
}

func (s *companyService) SetStatus(ctx context.Context, sess *session.Session, id, status string) error {
	admin, err := requireAdmin(sess)
	if err != nil {
		return err
	}
	if status != types.CompanyActive && status != types.CompanyInactive {
		return invalid("Invalid company status")
	}
	company, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	updated := *company
	updated.Status = status
	_, err = s.write(ctx, sess, admin, &updated, "status")
	return err
}

// UpdateSubscription moves the company along the subscription lifecycle.
// Expiry also deactivates the company; activation restarts the period.
func (s *companyService) UpdateSubscription(ctx context.Context, sess *session.Session, id, plan, status string) (*repository.Company, error) {
	admin, err := requireAdmin(sess)
	if err != nil {
		return nil, err
	}
	company, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan == "" {
		plan = company.SubscriptionPlan
	}
	if !types.IsValidPlan(plan) {
		return nil, invalid("Invalid subscription plan")
	}
	if !isSubscriptionStatus(status) {
		return nil, invalid("Invalid subscription status")
	}

	updated, err := s.transition(company, plan, status)
	if err != nil {
		return nil, err
	}
	return s.write(ctx, sess, admin, updated, "subscription")
}

// Renew reactivates the subscription on plan for a fresh period.
func (s *companyService) Renew(ctx context.Context, sess *session.Session, id, plan string) (*repository.Company, error) {
	return s.UpdateSubscription(ctx, sess, id, plan, types.SubscriptionActive)
}

func (s *companyService) transition(company *repository.Company, plan, status string) (*repository.Company, error) {
	from := company.SubscriptionStatus
	if !types.CanTransitionSubscription(from, status) {
		return nil, ErrInvalidTransition
	}

	updated := *company
	updated.SubscriptionPlan = plan
	updated.SubscriptionStatus = status
	switch status {
	case types.SubscriptionExpired:
		updated.Status = types.CompanyInactive
	case types.SubscriptionActive:
		updated.Status = types.CompanyActive
		updated.SubscriptionEndDate = subscriptionEnd(plan, status, s.now())
	}
	telemetry.SubscriptionTransitionsTotal.WithLabelValues(from, status).Inc()
	return &updated, nil
}

func (s *companyService) SweepExpired(ctx context.Context, sess *session.Session, now time.Time) (int, error) {
	admin, err := requireAdmin(sess)
	if err != nil {
		return 0, err
	}
	ids, err := s.sweep(ctx, now)
	if err != nil {
		return 0, err
	}
	s.reconcile(ctx, sess)
	for _, id := range ids {
		s.bc.changed(id, socket.MessageCompanyChanged, "expired", id, admin.ID)
	}
	return len(ids), nil
}

func (s *companyService) Sweep(ctx context.Context, now time.Time) (int, error) {
	ids, err := s.sweep(ctx, now)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		s.bc.changed(id, socket.MessageCompanyChanged, "expired", id, "")
	}
	return len(ids), nil
}

func (s *companyService) sweep(ctx context.Context, now time.Time) ([]string, error) {
	ids, err := s.companyRepo.ExpireOverdue(ctx, now)
	if err != nil {
		return nil, fail("expire", "subscriptions", err)
	}
	if len(ids) > 0 {
		telemetry.SubscriptionsExpiredTotal.Add(float64(len(ids)))
		logger.L().Infow("[Subscription] expired overdue subscriptions", "count", len(ids))
	}
	return ids, nil
}

func (s *companyService) TrialDaysLeft(ctx context.Context, sess *session.Session) (int, error) {
	viewer, err := requireViewer(sess)
	if err != nil {
		return 0, err
	}
	days, err := s.rpc.TrialDaysLeft(ctx, viewer.ID)
	if err != nil {
		return 0, fail("fetch", "trial days", err)
	}
	return days, nil
}

func (s *companyService) find(ctx context.Context, id string) (*repository.Company, error) {
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fail("fetch", "company", err)
	}
	if company == nil {
		return nil, ErrNotFound
	}
	return company, nil
}

// write stores company, patches the session and reconciles.
func (s *companyService) write(ctx context.Context, sess *session.Session, actor *repository.Profile, company *repository.Company, action string) (*repository.Company, error) {
	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, fail("update", "company", err)
	}
	sess.Companies.Patch(company.ID, func(*repository.Company) *repository.Company { return company })

	s.reconcile(ctx, sess)
	s.bc.changed(company.ID, socket.MessageCompanyChanged, action, company.ID, actor.ID)
	return company, nil
}

func (s *companyService) reconcile(ctx context.Context, sess *session.Session) {
	if _, err := s.Fetch(ctx, sess); err != nil {
		reconcileFailed("companies", err)
	}
}

func isSubscriptionStatus(status string) bool {
	switch status {
	case types.SubscriptionTrial, types.SubscriptionActive, types.SubscriptionExpired:
		return true
	}
	return false
}
