package handlers

import (
	"context"

	"github.com/Marga-Ghale/projecthub-backend/internal/auth/oidc"
	"github.com/Marga-Ghale/projecthub-backend/internal/config"
	"github.com/Marga-Ghale/projecthub-backend/internal/email"
	"github.com/Marga-Ghale/projecthub-backend/internal/models"
	"github.com/Marga-Ghale/projecthub-backend/internal/repository"
	"github.com/Marga-Ghale/projecthub-backend/internal/service"
)

// IdentityProvider is the OIDC flow used by the external sign-in routes.
// Implemented by oidc.Provider.
type IdentityProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oidc.Identity, error)
}

// ContactMailer forwards contact messages. Implemented by email.Service.
type ContactMailer interface {
	SendContactMessage(supportInbox string, data email.ContactMessageData) error
}

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Company      *CompanyHandler
	Project      *ProjectHandler
	TeamMember   *TeamMemberHandler
	Issue        *IssueHandler
	Client       *ClientHandler
	Notification *NotificationHandler
	Pricing      *PricingHandler
	Contact      *ContactHandler
}

// Options carries the optional collaborators. Nil fields disable the
// matching feature.
type Options struct {
	Identity IdentityProvider
	Mailer   ContactMailer
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services, cfg *config.Config, opts Options) *Handlers {
	return &Handlers{
		Auth: &AuthHandler{
			authService:  services.Auth,
			sessions:     services.Sessions,
			identity:     opts.Identity,
			frontendURL:  cfg.FrontendURL,
			secureCookie: cfg.IsProduction(),
		},
		User:         &UserHandler{userService: services.User},
		Company:      &CompanyHandler{companyService: services.Company},
		Project:      &ProjectHandler{projectService: services.Project, historyService: services.History},
		TeamMember:   &TeamMemberHandler{memberService: services.TeamMember},
		Issue:        &IssueHandler{issueService: services.Issue},
		Client:       &ClientHandler{clientService: services.Client},
		Notification: &NotificationHandler{notificationService: services.Notification},
		Pricing:      &PricingHandler{pricingService: services.Pricing},
		Contact: &ContactHandler{
			mailer: opts.Mailer,
			info:   models.ContactInfo{Phone: cfg.SupportPhone, Email: cfg.SupportEmail},
		},
	}
}

// ============================================
// Response Mappers
// ============================================

func toUserResponse(p *repository.Profile) models.UserResponse {
	return models.UserResponse{
		ID:          p.ID,
		Email:       p.Email,
		FullName:    p.FullName,
		Role:        p.Role,
		CompanyID:   p.CompanyID,
		CompanyName: p.CompanyName,
		Status:      p.Status,
		Permissions: p.Permissions(),
		CreatedAt:   p.CreatedAt,
	}
}

func toCompanyResponse(c *repository.Company) models.CompanyResponse {
	return models.CompanyResponse{
		ID:                  c.ID,
		Name:                c.Name,
		Email:               c.Email,
		Status:              c.Status,
		SubscriptionPlan:    c.SubscriptionPlan,
		SubscriptionStatus:  c.SubscriptionStatus,
		SubscriptionEndDate: c.SubscriptionEndDate,
		TrialStartDate:      c.TrialStartDate,
		TrialEndDate:        c.TrialEndDate,
		CreatedAt:           c.CreatedAt,
	}
}

func toProjectResponse(p *repository.Project) models.ProjectResponse {
	return models.ProjectResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Status:        p.Status,
		Progress:      p.Progress,
		Priority:      p.Priority,
		DueDate:       p.DueDate,
		CompanyID:     p.CompanyID,
		ClientID:      p.ClientID,
		ClientName:    p.ClientName,
		Budget:        p.Budget,
		Spent:         p.Spent,
		Phase:         p.Phase,
		NextMilestone: p.NextMilestone,
		AssignedTo:    safeStringSlice(p.AssignedTo),
		CreatedBy:     p.CreatedBy,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toHistoryResponse(h *repository.ProjectHistory) models.ProjectHistoryResponse {
	return models.ProjectHistoryResponse{
		ID:           h.ID,
		ProjectID:    h.ProjectID,
		ChangedBy:    h.ChangedBy,
		Action:       h.Action,
		FieldChanged: h.FieldChanged,
		OldValue:     h.OldValue,
		NewValue:     h.NewValue,
		CreatedAt:    h.CreatedAt,
	}
}

func toTeamMemberResponse(m *repository.TeamMember) models.TeamMemberResponse {
	return models.TeamMemberResponse{
		ID:          m.ID,
		Name:        m.Name,
		Email:       m.Email,
		Role:        m.Role,
		Status:      m.Status,
		Department:  m.Department,
		Phone:       m.Phone,
		Avatar:      m.Avatar,
		HireDate:    m.HireDate,
		Salary:      m.Salary,
		Permissions: safeStringSlice(m.Permissions),
		Projects:    safeStringSlice(m.Projects),
		CompanyID:   m.CompanyID,
		UserID:      m.UserID,
		CreatedAt:   m.CreatedAt,
	}
}

func toIssueResponse(i *repository.Issue) models.IssueResponse {
	return models.IssueResponse{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		Status:      i.Status,
		Priority:    i.Priority,
		ProjectID:   i.ProjectID,
		AssignedTo:  i.AssignedTo,
		CreatedBy:   i.CreatedBy,
		Labels:      safeStringSlice(i.Labels),
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func toCommentResponse(cm *repository.IssueComment) models.CommentResponse {
	return models.CommentResponse{
		ID:        cm.ID,
		IssueID:   cm.IssueID,
		UserID:    cm.UserID,
		Content:   cm.Content,
		CreatedAt: cm.CreatedAt,
	}
}

func toClientResponse(cl *repository.Client) models.ClientResponse {
	return models.ClientResponse{
		ID:        cl.ID,
		FullName:  cl.FullName,
		Email:     cl.Email,
		Phone:     cl.Phone,
		AvatarURL: cl.AvatarURL,
		Status:    cl.Status,
		CompanyID: cl.CompanyID,
		UserID:    cl.UserID,
		CreatedAt: cl.CreatedAt,
	}
}

func toNotificationResponse(n *repository.Notification) models.NotificationResponse {
	return models.NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Read:      n.Read,
		ActionURL: n.ActionURL,
		CreatedAt: n.CreatedAt,
	}
}

func toPricingResponse(r *repository.PricingRequest) models.PricingRequestResponse {
	return models.PricingRequestResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		PlanName:    r.PlanName,
		PlanPrice:   r.PlanPrice,
		CompanyName: r.CompanyName,
		Email:       r.Email,
		Phone:       r.Phone,
		Status:      r.Status,
		Notes:       r.Notes,
		RequestedAt: r.RequestedAt,
		ApprovedAt:  r.ApprovedAt,
		ApprovedBy:  r.ApprovedBy,
	}
}

// mapAll converts a slice with fn, returning an empty (not nil) slice.
func mapAll[T any, R any](in []T, fn func(T) R) []R {
	out := make([]R, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}

func safeStringSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
