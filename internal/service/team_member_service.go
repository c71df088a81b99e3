package service

import (
	"context"
	"strings"
	"time"

	"github.com/Marga-Ghale/projecthub-backend/internal/repository"
	"github.com/Marga-Ghale/projecthub-backend/internal/scope"
	"github.com/Marga-Ghale/projecthub-backend/internal/session"
	"github.com/Marga-Ghale/projecthub-backend/internal/socket"
	"github.com/Marga-Ghale/projecthub-backend/internal/types"
	"github.com/shopspring/decimal"
)

// ============================================
// Team Member Service
// ============================================

type TeamMemberInput struct {
	Name        string
	Email       string
	Role        string
	Department  string
	Phone       string
	HireDate    *time.Time
	Salary      decimal.Decimal
	Permissions []string
	CompanyID   string
	UserID      *string
}

type TeamMemberService interface {
	Fetch(ctx context.Context, sess *session.Session) ([]*repository.TeamMember, error)
	Create(ctx context.Context, sess *session.Session, in TeamMemberInput) (*repository.TeamMember, error)
	Update(ctx context.Context, sess *session.Session, id string, patch repository.TeamMemberPatch) (*repository.TeamMember, error)
	Deactivate(ctx context.Context, sess *session.Session, id string) error
	Delete(ctx context.Context, sess *session.Session, id string) error
}

type teamMemberService struct {
	memberRepo  repository.TeamMemberRepository
	projectRepo repository.ProjectRepository
	bc          broadcast
}

func NewTeamMemberService(memberRepo repository.TeamMemberRepository, projectRepo repository.ProjectRepository, bc broadcast) TeamMemberService {
	return &teamMemberService{memberRepo: memberRepo, projectRepo: projectRepo, bc: bc}
}

func (s *teamMemberService) Fetch(ctx context.Context, sess *session.Session) ([]*repository.TeamMember, error) {
	viewer := viewerOf(sess)
	if viewer == nil {
		return []*repository.TeamMember{}, nil
	}

	var filter repository.TeamMemberFilter
	switch viewer.Role {
	case types.RoleAdmin:
	case types.RoleCompany:
		if viewer.Company() == "" {
			return []*repository.TeamMember{}, nil
		}
		filter.CompanyID = strPtr(viewer.Company())
	case types.RoleClient:
		filter.ClientID = strPtr(viewer.ID)
	default:
		return []*repository.TeamMember{}, nil
	}

	members, err := s.memberRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fail("fetch", "team members", err)
	}
	if viewer.IsClient() {
		projects, err := visibleProjects(ctx, sess, s.projectRepo)
		if err != nil {
			return nil, fail("fetch", "team members", err)
		}
		members = scope.TeamMembersForRole(viewer, projects, members)
	}

	sess.TeamMembers.Replace(members)
	return members, nil
}

func (s *teamMemberService) manageable(ctx context.Context, viewer *repository.Profile, id string) (*repository.TeamMember, error) {
	member, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fail("fetch", "team member", err)
	}
	if member == nil || (!viewer.IsAdmin() && member.CompanyID != viewer.Company()) {
		return nil, ErrNotFound
	}
	return member, nil
}

func (s *teamMemberService) Create(ctx context.Context, sess *session.Session, in TeamMemberInput) (*repository.TeamMember, error) {
	viewer, err := requireManager(sess)
	if err != nil {
		return nil, err
	}
	if viewer.IsCompany() {
		in.CompanyID = viewer.Company()
	}

	var errs ValidationErrors
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || strings.TrimSpace(in.Role) == "" {
		errs = append(errs, MsgRequiredFields)
	}
	if in.CompanyID == "" {
		errs = append(errs, "Company is required")
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}

	member := &repository.TeamMember{
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.TrimSpace(in.Email),
		Role:        in.Role,
		Department:  in.Department,
		Phone:       in.Phone,
		Salary:      in.Salary,
		Permissions: in.Permissions,
		CompanyID:   in.CompanyID,
		UserID:      in.UserID,
	}
	if in.HireDate != nil {
		member.HireDate = *in.HireDate
	}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, fail("create", "team member", err)
	}
	sess.TeamMembers.Add(member)

	s.reconcile(ctx, sess)
	s.bc.changed(member.CompanyID, socket.MessageTeamMemberChanged, "created", member.ID, viewer.ID)
	return member, nil
}

func (s *teamMemberService) Update(ctx context.Context, sess *session.Session, id string, patch repository.TeamMemberPatch) (*repository.TeamMember, error) {
	viewer, err := requireManager(sess)
	if err != nil {
		return nil, err
	}
	if patch.Status != nil && *patch.Status != types.MemberActive && *patch.Status != types.MemberInactive {
		return nil, invalid("Invalid team member status")
	}

	member, err := s.manageable(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	updated := patch.Apply(member)
	if err := s.memberRepo.Update(ctx, updated); err != nil {
		return nil, fail("update", "team member", err)
	}
	sess.TeamMembers.Patch(id, func(*repository.TeamMember) *repository.TeamMember { return updated })

	s.reconcile(ctx, sess)
	s.bc.changed(updated.CompanyID, socket.MessageTeamMemberChanged, "updated", id, viewer.ID)
	return updated, nil
}

// Deactivate marks the member Inactive. The roster entry and its project
// links stay.
func (s *teamMemberService) Deactivate(ctx context.Context, sess *session.Session, id string) error {
	viewer, err := requireManager(sess)
	if err != nil {
		return err
	}
	member, err := s.manageable(ctx, viewer, id)
	if err != nil {
		return err
	}
	if err := s.memberRepo.UpdateStatus(ctx, id, types.MemberInactive); err != nil {
		return fail("deactivate", "team member", err)
	}
	sess.TeamMembers.Patch(id, func(m *repository.TeamMember) *repository.TeamMember {
		cp := m.Clone()
		cp.Status = types.MemberInactive
		return cp
	})

	s.reconcile(ctx, sess)
	s.bc.changed(member.CompanyID, socket.MessageTeamMemberChanged, "deactivated", id, viewer.ID)
	return nil
}

func (s *teamMemberService) Delete(ctx context.Context, sess *session.Session, id string) error {
	viewer, err := requireManager(sess)
	if err != nil {
		return err
	}
	member, err := s.manageable(ctx, viewer, id)
	if err != nil {
		return err
	}
	if err := s.memberRepo.Delete(ctx, id); err != nil {
		return fail("delete", "team member", err)
	}
	sess.TeamMembers.Remove(id)

	s.reconcile(ctx, sess)
	s.bc.changed(member.CompanyID, socket.MessageTeamMemberChanged, "deleted", id, viewer.ID)
	return nil
}

func (s *teamMemberService) reconcile(ctx context.Context, sess *session.Session) {
	if _, err := s.Fetch(ctx, sess); err != nil {
		reconcileFailed("team members", err)
	}
}
