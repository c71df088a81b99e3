package service

import (
	"context"
	"strings"
	"time"

	"github.com/Marga-Ghale/projecthub-backend/internal/email"
	"github.com/Marga-Ghale/projecthub-backend/internal/logger"
	"github.com/Marga-Ghale/projecthub-backend/internal/repository"
	"github.com/Marga-Ghale/projecthub-backend/internal/session"
	"github.com/Marga-Ghale/projecthub-backend/internal/socket"
	"github.com/Marga-Ghale/projecthub-backend/internal/types"
)

// ============================================
// Pricing Service
// ============================================

type PricingInput struct {
	PlanName    string
	PlanPrice   string
	CompanyName *string
	Phone       *string
}

type PricingService interface {
	Submit(ctx context.Context, sess *session.Session, in PricingInput) (*repository.PricingRequest, error)
	// Fetch lists every request for admins and the viewer's own otherwise.
	Fetch(ctx context.Context, sess *session.Session) ([]*repository.PricingRequest, error)
	Decide(ctx context.Context, sess *session.Session, id string, approve bool, notes string) (*repository.PricingRequest, error)
}

type pricingService struct {
	pricingRepo  repository.PricingRepository
	notifier     Notifier
	mailer       PricingMailer
	dashboardURL string
	bc           broadcast
	now          func() time.Time
}

func NewPricingService(pricingRepo repository.PricingRepository, notifier Notifier, mailer PricingMailer, dashboardURL string, bc broadcast) PricingService {
	return &pricingService{
		pricingRepo:  pricingRepo,
		notifier:     notifier,
		mailer:       mailer,
		dashboardURL: dashboardURL,
		bc:           bc,
		now:          time.Now,
	}
}

func (s *pricingService) Fetch(ctx context.Context, sess *session.Session) ([]*repository.PricingRequest, error) {
	viewer := viewerOf(sess)
	if viewer == nil {
		return []*repository.PricingRequest{}, nil
	}
	var userID *string
	if !viewer.IsAdmin() {
		userID = &viewer.ID
	}
	requests, err := s.pricingRepo.FindAll(ctx, userID)
	if err != nil {
		return nil, fail("fetch", "pricing requests", err)
	}
	if requests == nil {
		requests = []*repository.PricingRequest{}
	}
	sess.Pricing.Replace(requests)
	return requests, nil
}

func (s *pricingService) Submit(ctx context.Context, sess *session.Session, in PricingInput) (*repository.PricingRequest, error) {
	viewer, err := requireViewer(sess)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.PlanName) == "" || strings.TrimSpace(in.PlanPrice) == "" {
		return nil, invalid(MsgRequiredFields)
	}
	companyName := in.CompanyName
	if companyName == nil || *companyName == "" {
		companyName = viewer.CompanyName
	}

	req := &repository.PricingRequest{
		UserID:      viewer.ID,
		PlanName:    strings.TrimSpace(in.PlanName),
		PlanPrice:   strings.TrimSpace(in.PlanPrice),
		CompanyName: companyName,
		Email:       viewer.Email,
		Phone:       in.Phone,
		Status:      types.PricingPending,
	}
	if err := s.pricingRepo.Create(ctx, req); err != nil {
		return nil, fail("submit", "pricing request", err)
	}
	sess.Pricing.Add(req)

	s.notifier.NotifyPricingRequest(ctx, viewer.ID, req.PlanName)
	s.reconcile(ctx, sess)
	s.bc.changed(viewer.Company(), socket.MessagePricingChanged, "submitted", req.ID, viewer.ID)
	return req, nil
}

// Decide approves or rejects a pending request and tells the requester.
func (s *pricingService) Decide(ctx context.Context, sess *session.Session, id string, approve bool, notes string) (*repository.PricingRequest, error) {
	admin, err := requireAdmin(sess)
	if err != nil {
		return nil, err
	}
	req, err := s.pricingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fail("fetch", "pricing request", err)
	}
	if req == nil {
		return nil, ErrNotFound
	}
	if req.Status != types.PricingPending {
		return nil, invalid("Pricing request has already been decided")
	}

	decided := *req
	decided.Status = types.PricingRejected
	decided.Notes = strPtr(strings.TrimSpace(notes))
	if approve {
		now := s.now()
		decided.Status = types.PricingApproved
		decided.ApprovedAt = &now
		decided.ApprovedBy = &admin.ID
	}
	if err := s.pricingRepo.Decide(ctx, &decided); err != nil {
		return nil, fail("update", "pricing request", err)
	}
	sess.Pricing.Patch(id, func(*repository.PricingRequest) *repository.PricingRequest { return &decided })

	s.notifier.NotifyPricingDecision(ctx, req.UserID, req.PlanName, approve)
	if s.mailer != nil {
		err := s.mailer.SendPricingDecision(req.Email, email.PricingDecisionData{
			PlanName:     req.PlanName,
			PlanPrice:    req.PlanPrice,
			Approved:     approve,
			Notes:        deref(decided.Notes),
			DashboardURL: s.dashboardURL,
		})
		if err != nil {
			logger.L().Warnw("[Pricing] decision email failed", "request", id, "error", err)
		}
	}
	s.reconcile(ctx, sess)
	return &decided, nil
}

func (s *pricingService) reconcile(ctx context.Context, sess *session.Session) {
	if _, err := s.Fetch(ctx, sess); err != nil {
		reconcileFailed("pricing requests", err)
	}
}
