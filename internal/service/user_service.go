package service

import (
	"context"

	"github.com/Marga-Ghale/projecthub-backend/internal/logger"
	"github.com/Marga-Ghale/projecthub-backend/internal/repository"
	"github.com/Marga-Ghale/projecthub-backend/internal/session"
	"github.com/Marga-Ghale/projecthub-backend/internal/types"
)

// ============================================
// User Service
// ============================================

// UserService is the admin view over every profile.
type UserService interface {
	List(ctx context.Context, sess *session.Session) ([]*repository.Profile, error)
	SetStatus(ctx context.Context, sess *session.Session, id, status string) error
}

type userService struct {
	profileRepo repository.ProfileRepository
	cache       ProfileCache
}

func NewUserService(profileRepo repository.ProfileRepository, cache ProfileCache) UserService {
	return &userService{profileRepo: profileRepo, cache: cache}
}

func (s *userService) List(ctx context.Context, sess *session.Session) ([]*repository.Profile, error) {
	if _, err := requireAdmin(sess); err != nil {
		return nil, err
	}
	profiles, err := s.profileRepo.FindAll(ctx)
	if err != nil {
		return nil, fail("fetch", "users", err)
	}
	if profiles == nil {
		profiles = []*repository.Profile{}
	}
	sess.Users.Replace(profiles)
	return profiles, nil
}

// SetStatus changes a profile's status. A non-active profile is refused on
// its next request, so the cached copy is dropped.
func (s *userService) SetStatus(ctx context.Context, sess *session.Session, id, status string) error {
	admin, err := requireAdmin(sess)
	if err != nil {
		return err
	}
	if !types.IsValidProfileStatus(status) {
		return invalid("Invalid user status")
	}
	if id == admin.ID && status != types.ProfileActive {
		return invalid("You cannot deactivate your own account")
	}

	if err := s.profileRepo.UpdateStatus(ctx, id, status); err != nil {
		return fail("update", "user status", err)
	}
	if s.cache != nil {
		if err := s.cache.DeleteCache(ctx, profileCacheKey(id)); err != nil {
			logger.L().Warnw("[User] could not drop cached profile", "user", id, "error", err)
		}
	}
	sess.Users.Patch(id, func(p *repository.Profile) *repository.Profile {
		cp := *p
		cp.Status = status
		return &cp
	})

	if _, err := s.List(ctx, sess); err != nil {
		reconcileFailed("users", err)
	}
	return nil
}
