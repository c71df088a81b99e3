package service

import (
	"context"
	"strings"

	"github.com/Marga-Ghale/projecthub-backend/internal/repository"
	"github.com/Marga-Ghale/projecthub-backend/internal/scope"
	"github.com/Marga-Ghale/projecthub-backend/internal/session"
	"github.com/Marga-Ghale/projecthub-backend/internal/socket"
	"github.com/Marga-Ghale/projecthub-backend/internal/types"
	"github.com/lib/pq"
)

// ============================================
// Issue Service
// ============================================

type IssueInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	ProjectID   string
	AssignedTo  *string
	Labels      []string
}

type IssueService interface {
	Fetch(ctx context.Context, sess *session.Session) ([]*repository.Issue, error)
	Create(ctx context.Context, sess *session.Session, in IssueInput) (*repository.Issue, error)
	Update(ctx context.Context, sess *session.Session, id string, patch repository.IssuePatch) (*repository.Issue, error)
	Delete(ctx context.Context, sess *session.Session, id string) error
	AddComment(ctx context.Context, sess *session.Session, issueID, content string) (*repository.IssueComment, error)
	ListComments(ctx context.Context, sess *session.Session, issueID string) ([]*repository.IssueComment, error)
}

type issueService struct {
	issueRepo   repository.IssueRepository
	projectRepo repository.ProjectRepository
	memberRepo  repository.TeamMemberRepository
	notifier    Notifier
	bc          broadcast
}

func NewIssueService(
	issueRepo repository.IssueRepository,
	projectRepo repository.ProjectRepository,
	memberRepo repository.TeamMemberRepository,
	notifier Notifier,
	bc broadcast,
) IssueService {
	return &issueService{
		issueRepo:   issueRepo,
		projectRepo: projectRepo,
		memberRepo:  memberRepo,
		notifier:    notifier,
		bc:          bc,
	}
}

func (s *issueService) Fetch(ctx context.Context, sess *session.Session) ([]*repository.Issue, error) {
	viewer := viewerOf(sess)
	if viewer == nil {
		return []*repository.Issue{}, nil
	}

	var filter repository.IssueFilter
	switch viewer.Role {
	case types.RoleAdmin:
	case types.RoleCompany:
		if viewer.Company() == "" {
			return []*repository.Issue{}, nil
		}
		filter.CompanyID = strPtr(viewer.Company())
	case types.RoleClient:
		filter.ClientID = strPtr(viewer.ID)
	default:
		return []*repository.Issue{}, nil
	}

	issues, err := s.issueRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fail("fetch", "issues", err)
	}
	projects, err := visibleProjects(ctx, sess, s.projectRepo)
	if err != nil {
		return nil, fail("fetch", "issues", err)
	}
	issues = scope.IssuesForRole(viewer, projects, issues)

	sess.Issues.Replace(issues)
	return issues, nil
}

// visibleProject finds projectID among the viewer's projects.
func (s *issueService) visibleProject(ctx context.Context, sess *session.Session, projectID string) (*repository.Project, error) {
	projects, err := visibleProjects(ctx, sess, s.projectRepo)
	if err != nil {
		return nil, fail("fetch", "project", err)
	}
	for _, p := range projects {
		if p.ID == projectID {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

// visibleIssue loads an issue and checks the viewer may see it.
func (s *issueService) visibleIssue(ctx context.Context, sess *session.Session, viewer *repository.Profile, id string) (*repository.Issue, error) {
	issue, err := s.issueRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fail("fetch", "issue", err)
	}
	if issue == nil {
		return nil, ErrNotFound
	}
	projects, err := visibleProjects(ctx, sess, s.projectRepo)
	if err != nil {
		return nil, fail("fetch", "issue", err)
	}
	if len(scope.IssuesForRole(viewer, projects, []*repository.Issue{issue})) == 0 {
		return nil, ErrNotFound
	}
	return issue, nil
}

// companyOf returns the company owning projectID, or "" when it is unknown.
func (s *issueService) companyOf(sess *session.Session, projectID string) string {
	if p, ok := sess.Projects.Get(projectID); ok {
		return p.CompanyID
	}
	return ""
}

func (s *issueService) Create(ctx context.Context, sess *session.Session, in IssueInput) (*repository.Issue, error) {
	viewer, err := requireViewer(sess)
	if err != nil {
		return nil, err
	}

	var errs ValidationErrors
	if strings.TrimSpace(in.Title) == "" || in.ProjectID == "" {
		errs = append(errs, MsgRequiredFields)
	}
	if in.Status == "" {
		in.Status = types.IssueOpen
	} else if !types.IsValidIssueStatus(in.Status) {
		errs = append(errs, "Invalid issue status")
	}
	if in.Priority == "" {
		in.Priority = types.PriorityMedium
	} else if !types.IsValidPriority(in.Priority) {
		errs = append(errs, "Invalid priority")
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}

	project, err := s.visibleProject(ctx, sess, in.ProjectID)
	if err != nil {
		return nil, err
	}

	issue := &repository.Issue{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		ProjectID:   in.ProjectID,
		AssignedTo:  in.AssignedTo,
		CreatedBy:   &viewer.ID,
		Labels:      pq.StringArray(in.Labels),
	}
	if issue.Labels == nil {
		issue.Labels = pq.StringArray{}
	}
	if err := s.issueRepo.Create(ctx, issue); err != nil {
		return nil, fail("create", "issue", err)
	}
	sess.Issues.Add(issue)

	if issue.AssignedTo != nil {
		s.notifyAssignee(ctx, *issue.AssignedTo, issue.Title)
	}
	s.reconcile(ctx, sess)
	s.bc.changed(project.CompanyID, socket.MessageIssueChanged, "created", issue.ID, viewer.ID)
	return issue, nil
}

func (s *issueService) Update(ctx context.Context, sess *session.Session, id string, patch repository.IssuePatch) (*repository.Issue, error) {
	viewer, err := requireViewer(sess)
	if err != nil {
		return nil, err
	}
	if patch.Status != nil && !types.IsValidIssueStatus(*patch.Status) {
		return nil, invalid("Invalid issue status")
	}
	if patch.Priority != nil && !types.IsValidPriority(*patch.Priority) {
		return nil, invalid("Invalid priority")
	}

	issue, err := s.visibleIssue(ctx, sess, viewer, id)
	if err != nil {
		return nil, err
	}
	updated := patch.Apply(issue)
	if err := s.issueRepo.Update(ctx, updated); err != nil {
		return nil, fail("update", "issue", err)
	}
	sess.Issues.Patch(id, func(*repository.Issue) *repository.Issue { return updated })

	if updated.AssignedTo != nil && deref(updated.AssignedTo) != deref(issue.AssignedTo) {
		s.notifyAssignee(ctx, *updated.AssignedTo, updated.Title)
	}
	s.reconcile(ctx, sess)
	s.bc.changed(s.companyOf(sess, updated.ProjectID), socket.MessageIssueChanged, "updated", id, viewer.ID)
	return updated, nil
}

func (s *issueService) Delete(ctx context.Context, sess *session.Session, id string) error {
	viewer, err := requireManager(sess)
	if err != nil {
		return err
	}
	issue, err := s.visibleIssue(ctx, sess, viewer, id)
	if err != nil {
		return err
	}
	if err := s.issueRepo.Delete(ctx, id); err != nil {
		return fail("delete", "issue", err)
	}
	sess.Issues.Remove(id)

	s.reconcile(ctx, sess)
	s.bc.changed(s.companyOf(sess, issue.ProjectID), socket.MessageIssueChanged, "deleted", id, viewer.ID)
	return nil
}

func (s *issueService) AddComment(ctx context.Context, sess *session.Session, issueID, content string) (*repository.IssueComment, error) {
	viewer, err := requireViewer(sess)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("Comment cannot be empty")
	}
	issue, err := s.visibleIssue(ctx, sess, viewer, issueID)
	if err != nil {
		return nil, err
	}

	comment := &repository.IssueComment{
		IssueID: issueID,
		UserID:  &viewer.ID,
		Content: content,
	}
	if err := s.issueRepo.AddComment(ctx, comment); err != nil {
		return nil, fail("add", "comment", err)
	}
	s.bc.changed(s.companyOf(sess, issue.ProjectID), socket.MessageIssueChanged, "commented", issueID, viewer.ID)
	return comment, nil
}

func (s *issueService) ListComments(ctx context.Context, sess *session.Session, issueID string) ([]*repository.IssueComment, error) {
	viewer, err := requireViewer(sess)
	if err != nil {
		return nil, err
	}
	if _, err := s.visibleIssue(ctx, sess, viewer, issueID); err != nil {
		return nil, err
	}
	comments, err := s.issueRepo.FindComments(ctx, issueID)
	if err != nil {
		return nil, fail("fetch", "comments", err)
	}
	if comments == nil {
		comments = []*repository.IssueComment{}
	}
	return comments, nil
}

// notifyAssignee addresses the assignment to the member's linked login when
// the assignee is a roster entry with one.
func (s *issueService) notifyAssignee(ctx context.Context, assigneeID, title string) {
	target := assigneeID
	if member, err := s.memberRepo.FindByID(ctx, assigneeID); err == nil && member != nil {
		target = member.NotifyTarget()
	}
	s.notifier.NotifyIssueAssignment(ctx, target, title)
}

func (s *issueService) reconcile(ctx context.Context, sess *session.Session) {
	if _, err := s.Fetch(ctx, sess); err != nil {
		reconcileFailed("issues", err)
	}
}
