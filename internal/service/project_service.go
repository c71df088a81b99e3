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
// Project Service
// ============================================

type ProjectInput struct {
	Name          string
	Description   string
	Status        string
	Priority      string
	Progress      int
	DueDate       *time.Time
	CompanyID     string
	ClientID      *string
	ClientName    string
	Budget        decimal.Decimal
	Spent         decimal.Decimal
	Phase         string
	NextMilestone string
	AssignedTo    []string
}

type ProjectService interface {
	Fetch(ctx context.Context, sess *session.Session) ([]*repository.Project, error)
	Get(ctx context.Context, sess *session.Session, id string) (*repository.Project, error)
	Create(ctx context.Context, sess *session.Session, in ProjectInput) (*repository.Project, error)
	Update(ctx context.Context, sess *session.Session, id string, patch repository.ProjectPatch) (*repository.Project, error)
	Delete(ctx context.Context, sess *session.Session, id string) error
	AssignToTeam(ctx context.Context, sess *session.Session, projectID string, memberIDs []string) error
}

type projectService struct {
	projectRepo repository.ProjectRepository
	memberRepo  repository.TeamMemberRepository
	history     HistoryService
	notifier    Notifier
	bc          broadcast
}

func NewProjectService(
	projectRepo repository.ProjectRepository,
	memberRepo repository.TeamMemberRepository,
	history HistoryService,
	notifier Notifier,
	bc broadcast,
) ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		memberRepo:  memberRepo,
		history:     history,
		notifier:    notifier,
		bc:          bc,
	}
}

// projectFilterFor narrows a project fetch to the rows the viewer's role can
// reach. ok is false when the viewer can see no project at all.
func projectFilterFor(viewer *repository.Profile) (filter repository.ProjectFilter, ok bool) {
	switch viewer.Role {
	case types.RoleAdmin:
		return filter, true
	case types.RoleCompany:
		if viewer.Company() == "" {
			return filter, false
		}
		filter.CompanyID = strPtr(viewer.Company())
		return filter, true
	case types.RoleClient:
		filter.ClientID = strPtr(viewer.ID)
		return filter, true
	default:
		return filter, false
	}
}

func loadProjects(ctx context.Context, repo repository.ProjectRepository, viewer *repository.Profile) ([]*repository.Project, error) {
	filter, ok := projectFilterFor(viewer)
	if !ok {
		return []*repository.Project{}, nil
	}
	projects, err := repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return scope.ProjectsForRole(viewer, projects), nil
}

// visibleProjects reloads the viewer's projects from the store and replaces
// the session collection with them. Views derived from projects always go
// through here so rows written by other sessions are never filtered out.
func visibleProjects(ctx context.Context, sess *session.Session, repo repository.ProjectRepository) ([]*repository.Project, error) {
	projects, err := loadProjects(ctx, repo, sess.Viewer())
	if err != nil {
		return nil, err
	}
	sess.Projects.Replace(projects)
	return projects, nil
}

func (s *projectService) Fetch(ctx context.Context, sess *session.Session) ([]*repository.Project, error) {
	viewer := viewerOf(sess)
	if viewer == nil {
		return []*repository.Project{}, nil
	}
	projects, err := loadProjects(ctx, s.projectRepo, viewer)
	if err != nil {
		return nil, fail("fetch", "projects", err)
	}
	sess.Projects.Replace(projects)
	return projects, nil
}

func (s *projectService) Get(ctx context.Context, sess *session.Session, id string) (*repository.Project, error) {
	viewer, err := requireViewer(sess)
	if err != nil {
		return nil, err
	}
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fail("fetch", "project", err)
	}
	if project == nil || len(scope.ProjectsForRole(viewer, []*repository.Project{project})) == 0 {
		return nil, ErrNotFound
	}
	return project, nil
}

// manageable loads a project the viewer may write to. Projects of another
// company are reported as missing.
func (s *projectService) manageable(ctx context.Context, viewer *repository.Profile, id string) (*repository.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fail("fetch", "project", err)
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if !viewer.IsAdmin() && project.CompanyID != viewer.Company() {
		return nil, ErrNotFound
	}
	return project, nil
}

func (s *projectService) Create(ctx context.Context, sess *session.Session, in ProjectInput) (*repository.Project, error) {
	viewer, err := requireManager(sess)
	if err != nil {
		return nil, err
	}

	if viewer.IsCompany() {
		in.CompanyID = viewer.Company()
	}
	var errs ValidationErrors
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, "Project name is required")
	}
	if in.CompanyID == "" {
		errs = append(errs, "Company is required")
	}
	if in.Status == "" {
		in.Status = types.ProjectPlanning
	} else if !types.IsValidProjectStatus(in.Status) {
		errs = append(errs, "Invalid project status")
	}
	if in.Priority == "" {
		in.Priority = types.PriorityMedium
	} else if !types.IsValidPriority(in.Priority) {
		errs = append(errs, "Invalid priority")
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}

	ids := dedupe(in.AssignedTo)
	members, err := s.assignable(ctx, in.CompanyID, ids)
	if err != nil {
		return nil, err
	}

	project := &repository.Project{
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Status:        in.Status,
		Progress:      in.Progress,
		Priority:      in.Priority,
		DueDate:       in.DueDate,
		CompanyID:     in.CompanyID,
		ClientID:      in.ClientID,
		ClientName:    in.ClientName,
		Budget:        in.Budget,
		Spent:         in.Spent,
		Phase:         in.Phase,
		NextMilestone: in.NextMilestone,
		AssignedTo:    ids,
		CreatedBy:     &viewer.ID,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fail("create", "project", err)
	}
	sess.Projects.Add(project)
	s.linkCached(sess, project.ID, ids, nil)

	if len(members) > 0 {
		s.notifier.NotifyProjectAssignment(ctx, members, project.Name)
	}

	s.history.Record(ctx, sess, &repository.ProjectHistory{ProjectID: project.ID, Action: "created", NewValue: &project.Name})
	s.reconcile(ctx, sess)
	s.bc.changed(project.CompanyID, socket.MessageProjectChanged, "created", project.ID, viewer.ID)

	return project, nil
}

func (s *projectService) Update(ctx context.Context, sess *session.Session, id string, patch repository.ProjectPatch) (*repository.Project, error) {
	viewer, err := requireManager(sess)
	if err != nil {
		return nil, err
	}
	if patch.Status != nil && !types.IsValidProjectStatus(*patch.Status) {
		return nil, invalid("Invalid project status")
	}
	if patch.Priority != nil && !types.IsValidPriority(*patch.Priority) {
		return nil, invalid("Invalid priority")
	}

	project, err := s.manageable(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	updated, changes := patch.Apply(project)
	if len(changes) == 0 {
		return project, nil
	}
	if err := s.projectRepo.Update(ctx, updated); err != nil {
		return nil, fail("update", "project", err)
	}
	sess.Projects.Patch(id, func(*repository.Project) *repository.Project { return updated })

	for _, change := range changes {
		change := change
		s.history.Record(ctx, sess, &repository.ProjectHistory{
			ProjectID:    id,
			Action:       "updated",
			FieldChanged: &change.Field,
			OldValue:     &change.Old,
			NewValue:     &change.New,
		})
	}
	s.reconcile(ctx, sess)
	s.bc.changed(updated.CompanyID, socket.MessageProjectChanged, "updated", id, viewer.ID)

	return updated, nil
}

func (s *projectService) Delete(ctx context.Context, sess *session.Session, id string) error {
	viewer, err := requireManager(sess)
	if err != nil {
		return err
	}
	project, err := s.manageable(ctx, viewer, id)
	if err != nil {
		return err
	}
	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return fail("delete", "project", err)
	}
	sess.Projects.Remove(id)

	s.reconcile(ctx, sess)
	s.bc.changed(project.CompanyID, socket.MessageProjectChanged, "deleted", id, viewer.ID)
	return nil
}

// AssignToTeam replaces the project's assignees. Members added to the set get
// the project linked back and are notified; members dropped from it are
// unlinked. Both sides are written in one transaction and notifications go
// out only after it commits.
func (s *projectService) AssignToTeam(ctx context.Context, sess *session.Session, projectID string, memberIDs []string) error {
	viewer, err := requireManager(sess)
	if err != nil {
		return err
	}
	project, err := s.manageable(ctx, viewer, projectID)
	if err != nil {
		return err
	}

	ids := dedupe(memberIDs)
	members, err := s.assignable(ctx, project.CompanyID, ids)
	if err != nil {
		return err
	}

	if err := s.projectRepo.AssignToTeam(ctx, projectID, ids); err != nil {
		return fail("assign", "project", err)
	}

	sess.Projects.Patch(projectID, func(p *repository.Project) *repository.Project {
		cp := p.Clone()
		cp.AssignedTo = append([]string(nil), ids...)
		return cp
	})
	s.linkCached(sess, projectID, ids, removedFrom(project.AssignedTo, ids))

	added := make([]*repository.TeamMember, 0, len(members))
	for _, m := range members {
		if !contains(project.AssignedTo, m.ID) {
			added = append(added, m)
		}
	}
	if len(added) > 0 {
		s.notifier.NotifyProjectAssignment(ctx, added, project.Name)
	}

	assigned := strings.Join(ids, ",")
	s.history.Record(ctx, sess, &repository.ProjectHistory{
		ProjectID:    projectID,
		Action:       "assigned",
		FieldChanged: strPtr("assigned_to"),
		OldValue:     strPtr(strings.Join(project.AssignedTo, ",")),
		NewValue:     &assigned,
	})
	s.reconcile(ctx, sess)
	s.bc.changed(project.CompanyID, socket.MessageProjectChanged, "assigned", projectID, viewer.ID)
	return nil
}

// assignable loads the members behind ids, rejecting unknown members and
// members of another company.
func (s *projectService) assignable(ctx context.Context, companyID string, ids []string) ([]*repository.TeamMember, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	members, err := s.memberRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fail("assign", "project", err)
	}
	if len(members) != len(ids) {
		return nil, invalid("One or more team members do not exist")
	}
	for _, m := range members {
		if m.CompanyID != companyID {
			return nil, invalid("Team members must belong to the project's company")
		}
	}
	return members, nil
}

// linkCached mirrors the member side of an assignment in the session cache.
func (s *projectService) linkCached(sess *session.Session, projectID string, linked, unlinked []string) {
	for _, id := range linked {
		sess.TeamMembers.Patch(id, func(tm *repository.TeamMember) *repository.TeamMember {
			cp := tm.Clone()
			cp.Projects = appendMissing(cp.Projects, projectID)
			return cp
		})
	}
	for _, id := range unlinked {
		sess.TeamMembers.Patch(id, func(tm *repository.TeamMember) *repository.TeamMember {
			cp := tm.Clone()
			cp.Projects = removedFrom(cp.Projects, []string{projectID})
			return cp
		})
	}
}

func (s *projectService) reconcile(ctx context.Context, sess *session.Session) {
	if _, err := s.Fetch(ctx, sess); err != nil {
		reconcileFailed("projects", err)
	}
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = appendMissing(out, id)
		}
	}
	return out
}

func contains(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}

// removedFrom returns the values of before that are not in after.
func removedFrom(before, after []string) []string {
	out := make([]string, 0, len(before))
	for _, v := range before {
		if !contains(after, v) {
			out = append(out, v)
		}
	}
	return out
}

func appendMissing(values []string, v string) []string {
	if contains(values, v) {
		return values
	}
	return append(values, v)
}
