package service

import (
	"context"
	"testing"

	"github.com/Marga-Ghale/projecthub-backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserSetStatusDropsCachedProfile(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	cache := mapCache{}
	repos := s.repos()
	users := NewUserService(repos.ProfileRepo, cache)
	auth := newAuth(s, cache)

	s.addProfile("c1", types.RoleClient, "")
	admin := sessionFor(s.addProfile("admin", types.RoleAdmin, ""))

	_, err := auth.CurrentUser(ctx, "c1")
	require.NoError(t, err)
	require.Contains(t, cache, "profile:c1")

	require.NoError(t, users.SetStatus(ctx, admin, "c1", types.ProfileInactive))
	assert.NotContains(t, cache, "profile:c1")

	_, err = auth.CurrentUser(ctx, "c1")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUserServiceIsAdminOnly(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	users := NewUserService(s.repos().ProfileRepo, nil)
	admin := sessionFor(s.addProfile("admin", types.RoleAdmin, ""))
	owner := sessionFor(s.addProfile("owner", types.RoleCompany, "acme"))

	_, err := users.List(ctx, owner)
	assert.ErrorIs(t, err, ErrForbidden)

	all, err := users.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.ErrorIs(t, users.SetStatus(ctx, admin, "admin", types.ProfileInactive), ErrValidation)
	assert.ErrorIs(t, users.SetStatus(ctx, admin, "owner", "banned"), ErrValidation)
	assert.ErrorIs(t, users.SetStatus(ctx, admin, "ghost", types.ProfileActive), ErrNotFound)
}
