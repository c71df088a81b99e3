package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Marga-Ghale/projecthub-backend/internal/config"
	"github.com/Marga-Ghale/projecthub-backend/internal/email"
	"github.com/Marga-Ghale/projecthub-backend/internal/logger"
	"github.com/Marga-Ghale/projecthub-backend/internal/repository"
	"github.com/Marga-Ghale/projecthub-backend/internal/session"
	"github.com/Marga-Ghale/projecthub-backend/internal/socket"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidTransition  = errors.New("invalid subscription transition")
)

// OpError is a store failure surfaced to the caller as "Failed to {op} {entity}".
type OpError struct {
	Op     string
	Entity string
	Err    error
}

func (e *OpError) Error() string { return fmt.Sprintf("Failed to %s %s", e.Op, e.Entity) }
func (e *OpError) Unwrap() error { return e.Err }

// fail logs err and wraps it as an OpError. Sentinel errors pass through
// unchanged so handlers can still map them.
func fail(op, entity string, err error) error {
	if isSentinel(err) {
		return err
	}
	if errors.Is(err, repository.ErrNoRows) {
		return ErrNotFound
	}
	logger.L().Errorw("[Service] operation failed", "op", op, "entity", entity, "error", err)
	return &OpError{Op: op, Entity: entity, Err: err}
}

func isSentinel(err error) bool {
	for _, s := range []error{ErrNotFound, ErrUnauthorized, ErrForbidden, ErrValidation, ErrInvalidTransition, ErrInvalidCredentials, ErrUserExists, ErrInvalidToken} {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}

// ValidationErrors lists every failed check, in the order they were made.
type ValidationErrors []string

func (v ValidationErrors) Error() string { return strings.Join(v, " ") }

func (v ValidationErrors) Is(target error) bool { return target == ErrValidation }

func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func invalid(msg string) error { return ValidationErrors{msg} }

// ============================================
// Collaborators
// ============================================

// Notifier fans out assignment and pricing notifications. Implemented by
// notification.Service.
type Notifier interface {
	NotifyProjectAssignment(ctx context.Context, members []*repository.TeamMember, projectName string) int
	NotifyIssueAssignment(ctx context.Context, assigneeID, issueTitle string) int
	NotifyPricingRequest(ctx context.Context, requesterID, planName string) int
	NotifyPricingDecision(ctx context.Context, requesterID, planName string, approved bool) int
}

// ChangeBroadcaster announces entity changes to a company's connected clients.
type ChangeBroadcaster interface {
	EntityChanged(companyID string, msgType socket.MessageType, action, entityID, actorID string)
}

// ProfileCache is a read-through cache for profiles. Implemented by db.RedisDB.
type ProfileCache interface {
	SetCache(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetCache(ctx context.Context, key string, dest interface{}) error
	DeleteCache(ctx context.Context, key string) error
}

// PricingMailer emails the outcome of a pricing request.
type PricingMailer interface {
	SendPricingDecision(to string, data email.PricingDecisionData) error
}

type broadcast struct {
	b ChangeBroadcaster
}

func (bc broadcast) changed(companyID string, msgType socket.MessageType, action, id, actor string) {
	if bc.b != nil {
		bc.b.EntityChanged(companyID, msgType, action, id, actor)
	}
}

// ============================================
// Helpers shared by the entity services
// ============================================

func viewerOf(sess *session.Session) *repository.Profile {
	if sess == nil {
		return nil
	}
	return sess.Viewer()
}

// requireViewer returns the signed-in profile or ErrUnauthorized.
func requireViewer(sess *session.Session) (*repository.Profile, error) {
	v := viewerOf(sess)
	if v == nil {
		return nil, ErrUnauthorized
	}
	return v, nil
}

// requireManager admits admins and company users.
func requireManager(sess *session.Session) (*repository.Profile, error) {
	v, err := requireViewer(sess)
	if err != nil {
		return nil, err
	}
	if !v.IsAdmin() && !v.IsCompany() {
		return nil, ErrForbidden
	}
	return v, nil
}

func requireAdmin(sess *session.Session) (*repository.Profile, error) {
	v, err := requireViewer(sess)
	if err != nil {
		return nil, err
	}
	if !v.IsAdmin() {
		return nil, ErrForbidden
	}
	return v, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// reconcileFailed is logged when the follow-up fetch after a write fails. The
// optimistic state stays in place.
func reconcileFailed(entity string, err error) {
	logger.L().Warnw("[Service] reconcile failed, keeping optimistic state", "entity", entity, "error", err)
}

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth         AuthService
	User         UserService
	Project      ProjectService
	TeamMember   TeamMemberService
	Issue        IssueService
	Client       ClientService
	Notification NotificationService
	History      HistoryService
	Company      CompanyService
	Pricing      PricingService
	Sessions     *session.Registry
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config   *config.Config
	Repos    *repository.Repositories
	Sessions *session.Registry
	// Optional collaborators; nil disables the feature.
	ProfileCache ProfileCache
	Notifier     Notifier
	Broadcaster  ChangeBroadcaster
	Counts       CountPusher
	Mailer       PricingMailer
}

func NewServices(deps *ServiceDeps) *Services {
	repos := deps.Repos
	bc := broadcast{b: deps.Broadcaster}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}

	history := NewHistoryService(repos.HistoryRepo, repos.ProjectRepo)
	company := NewCompanyService(repos.CompanyRepo, repos.RPC, bc)

	return &Services{
		Auth:         NewAuthService(deps.Config, repos.AccountRepo, repos.ProfileRepo, repos.CompanyRepo, repos.ClientRepo, deps.ProfileCache),
		User:         NewUserService(repos.ProfileRepo, deps.ProfileCache),
		Project:      NewProjectService(repos.ProjectRepo, repos.TeamMemberRepo, history, notifier, bc),
		TeamMember:   NewTeamMemberService(repos.TeamMemberRepo, repos.ProjectRepo, bc),
		Issue:        NewIssueService(repos.IssueRepo, repos.ProjectRepo, repos.TeamMemberRepo, notifier, bc),
		Client:       NewClientService(repos.ClientRepo, bc),
		Notification: NewNotificationService(repos.NotificationRepo, deps.Counts),
		History:      history,
		Company:      company,
		Pricing:      NewPricingService(repos.PricingRepo, notifier, deps.Mailer, deps.Config.FrontendURL, bc),
		Sessions:     deps.Sessions,
	}
}

type nopNotifier struct{}

func (nopNotifier) NotifyProjectAssignment(context.Context, []*repository.TeamMember, string) int {
	return 0
}
func (nopNotifier) NotifyIssueAssignment(context.Context, string, string) int       { return 0 }
func (nopNotifier) NotifyPricingRequest(context.Context, string, string) int        { return 0 }
func (nopNotifier) NotifyPricingDecision(context.Context, string, string, bool) int { return 0 }
