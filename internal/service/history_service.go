package service

import (
	"context"

	"github.com/Marga-Ghale/projecthub-backend/internal/logger"
	"github.com/Marga-Ghale/projecthub-backend/internal/repository"
	"github.com/Marga-Ghale/projecthub-backend/internal/scope"
	"github.com/Marga-Ghale/projecthub-backend/internal/session"
	"github.com/Marga-Ghale/projecthub-backend/internal/types"
)

// ============================================
// History Service
// ============================================

type HistoryService interface {
	// Fetch returns the audit trail of the viewer's projects, or of projectID
	// only when it is non-nil.
	Fetch(ctx context.Context, sess *session.Session, projectID *string) ([]*repository.ProjectHistory, error)
	// Record appends an entry on behalf of the viewer. Failures are logged.
	Record(ctx context.Context, sess *session.Session, entry *repository.ProjectHistory)
}

type historyService struct {
	historyRepo repository.HistoryRepository
	projectRepo repository.ProjectRepository
}

func NewHistoryService(historyRepo repository.HistoryRepository, projectRepo repository.ProjectRepository) HistoryService {
	return &historyService{historyRepo: historyRepo, projectRepo: projectRepo}
}

func (s *historyService) Fetch(ctx context.Context, sess *session.Session, projectID *string) ([]*repository.ProjectHistory, error) {
	viewer := viewerOf(sess)
	if viewer == nil {
		return []*repository.ProjectHistory{}, nil
	}

	filter := repository.HistoryFilter{ProjectID: projectID}
	switch viewer.Role {
	case types.RoleAdmin:
	case types.RoleCompany:
		if viewer.Company() == "" {
			return []*repository.ProjectHistory{}, nil
		}
		filter.CompanyID = strPtr(viewer.Company())
	case types.RoleClient:
		filter.ClientID = strPtr(viewer.ID)
	default:
		return []*repository.ProjectHistory{}, nil
	}

	entries, err := s.historyRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fail("fetch", "project history", err)
	}
	projects, err := visibleProjects(ctx, sess, s.projectRepo)
	if err != nil {
		return nil, fail("fetch", "project history", err)
	}
	entries = scope.HistoryForRole(viewer, projects, entries)

	if projectID == nil {
		sess.History.Replace(entries)
	}
	return entries, nil
}

func (s *historyService) Record(ctx context.Context, sess *session.Session, entry *repository.ProjectHistory) {
	if viewer := viewerOf(sess); viewer != nil && entry.ChangedBy == nil {
		entry.ChangedBy = &viewer.ID
	}
	if err := s.historyRepo.Create(ctx, entry); err != nil {
		logger.L().Warnw("[History] could not record project change",
			"project", entry.ProjectID, "action", entry.Action, "error", err)
		return
	}
	if sess != nil && sess.History.Loaded() {
		sess.History.Add(entry)
	}
}
