package main

import (
	"context"
	"testing"

	"github.com/Marga-Ghale/projecthub-backend/internal/repository"
	"github.com/Marga-Ghale/projecthub-backend/internal/session"
	"github.com/Marga-Ghale/projecthub-backend/internal/socket"
	"github.com/Marga-Ghale/projecthub-backend/internal/types"
	"github.com/stretchr/testify/assert"
)

type mapProfiles map[string]*repository.Profile

func (m mapProfiles) FindByID(_ context.Context, id string) (*repository.Profile, error) {
	return m[id], nil
}

func TestCompanyRoomPolicy(t *testing.T) {
	acme := "acme"
	profiles := mapProfiles{
		"owner":    {ID: "owner", Role: types.RoleCompany, CompanyID: &acme, Status: types.ProfileActive},
		"admin":    {ID: "admin", Role: types.RoleAdmin, Status: types.ProfileActive},
		"inactive": {ID: "inactive", Role: types.RoleCompany, CompanyID: &acme, Status: types.ProfileInactive},
	}
	sessions := session.NewRegistry()
	sessions.Get("cached").SetViewer(&repository.Profile{ID: "cached", Role: types.RoleClient, CompanyID: &acme, Status: types.ProfileActive})

	allow := companyRoomPolicy(sessions, profiles)

	assert.True(t, allow("anyone", socket.UserRoom("anyone")))
	assert.False(t, allow("anyone", socket.UserRoom("owner")))
	assert.True(t, allow("owner", socket.CompanyRoom("acme")))
	assert.False(t, allow("owner", socket.CompanyRoom("globex")))
	assert.True(t, allow("admin", socket.CompanyRoom("globex")))
	assert.False(t, allow("inactive", socket.CompanyRoom("acme")))
	assert.True(t, allow("cached", socket.CompanyRoom("acme")))
	assert.False(t, allow("ghost", socket.CompanyRoom("acme")))
	assert.False(t, allow("owner", "lobby"))
}
