package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Marga-Ghale/projecthub-backend/internal/config"
	"github.com/Marga-Ghale/projecthub-backend/internal/db"
	"github.com/Marga-Ghale/projecthub-backend/internal/repository"
	"github.com/Marga-Ghale/projecthub-backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:     "test-secret",
		JWTExpiry:     1,
		RefreshExpiry: 1,
		FrontendURL:   "http://localhost:3000",
	}
}

type mapCache map[string][]byte

func (m mapCache) SetCache(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m[key] = b
	return nil
}

func (m mapCache) GetCache(_ context.Context, key string, dest interface{}) error {
	b, ok := m[key]
	if !ok {
		return db.ErrCacheMiss
	}
	return json.Unmarshal(b, dest)
}

func (m mapCache) DeleteCache(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

func newAuth(s *store, cache ProfileCache) AuthService {
	r := s.repos()
	return NewAuthService(testConfig(), r.AccountRepo, r.ProfileRepo, r.CompanyRepo, r.ClientRepo, cache)
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name string
		in   RegisterInput
		want ValidationErrors
	}{
		{
			name: "empty form",
			in:   RegisterInput{},
			want: ValidationErrors{MsgRequiredFields, MsgPasswordLength},
		},
		{
			name: "every check after required fields fails in order",
			in: RegisterInput{
				Email: "bad", Password: "123", ConfirmPassword: "124",
				FullName: "Ann", Role: types.RoleCompany,
			},
			want: ValidationErrors{MsgInvalidEmail, MsgPasswordLength, MsgPasswordMismatch, MsgCompanyName},
		},
		{
			name: "client without company",
			in: RegisterInput{
				Email: "ann@example.com", Password: "secret1", ConfirmPassword: "secret1",
				FullName: "Ann", Role: types.RoleClient,
			},
			want: ValidationErrors{MsgCompanySelection},
		},
		{
			name: "unknown role",
			in: RegisterInput{
				Email: "ann@example.com", Password: "secret1", ConfirmPassword: "secret1",
				FullName: "Ann", Role: "manager",
			},
			want: ValidationErrors{MsgInvalidRole},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegistration(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var got ValidationErrors
			require.True(t, errors.As(err, &got))
			assert.Equal(t, tt.want, got)
		})
	}

	assert.NoError(t, ValidateRegistration(RegisterInput{
		Email: "ann@example.com", Password: "secret1", ConfirmPassword: "secret1",
		FullName: "Ann", Role: types.RoleCompany, CompanyName: "Acme",
	}))
}

func TestRegisterValidationMakesNoStoreCall(t *testing.T) {
	s := newStore()
	_, _, _, err := newAuth(s, nil).Register(context.Background(), RegisterInput{Email: "x"})

	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, s.calls)
	assert.Empty(t, s.profiles)
}

func TestRegisterCompanyOpensTrial(t *testing.T) {
	s := newStore()
	auth := newAuth(s, nil)

	profile, access, refresh, err := auth.Register(context.Background(), RegisterInput{
		Email: "owner@acme.io", Password: "secret1", ConfirmPassword: "secret1",
		FullName: "Owner", Role: types.RoleCompany, CompanyName: "Acme",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	require.Len(t, s.companies, 1)
	var company *repository.Company
	for _, c := range s.companies {
		company = c
	}
	assert.Equal(t, "Acme", company.Name)
	assert.Equal(t, types.CompanyActive, company.Status)
	assert.Equal(t, types.PlanTrial, company.SubscriptionPlan)
	assert.Equal(t, types.SubscriptionTrial, company.SubscriptionStatus)
	require.NotNil(t, company.SubscriptionEndDate)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), *company.SubscriptionEndDate, time.Minute)

	assert.Equal(t, company.ID, profile.Company())
	assert.Equal(t, company.ID, s.profiles[profile.ID].Company())
}

func TestRegisterCompanyLinkFailureKeepsAccount(t *testing.T) {
	s := newStore()
	s.failing["profile.updateCompany"] = true

	profile, _, _, err := newAuth(s, nil).Register(context.Background(), RegisterInput{
		Email: "owner@acme.io", Password: "secret1", ConfirmPassword: "secret1",
		FullName: "Owner", Role: types.RoleCompany, CompanyName: "Acme",
	})

	require.Error(t, err)
	assert.Equal(t, "Failed to link company", err.Error())
	require.NotNil(t, profile)
	assert.Contains(t, s.profiles, profile.ID)
	assert.Len(t, s.companies, 1)
}

func TestRegisterClientJoinsCompany(t *testing.T) {
	s := newStore()
	s.addCompany("acme", types.SubscriptionActive, time.Now().Add(time.Hour))

	profile, _, _, err := newAuth(s, nil).Register(context.Background(), RegisterInput{
		Email: "client@example.com", Password: "secret1", ConfirmPassword: "secret1",
		FullName: "Cli Ent", Role: types.RoleClient, CompanyID: "acme",
	})
	require.NoError(t, err)

	assert.Equal(t, "acme", profile.Company())
	require.Len(t, s.clients, 1)
	for _, c := range s.clients {
		assert.Equal(t, "acme", deref(c.CompanyID))
		assert.Equal(t, profile.ID, deref(c.UserID))
		assert.Equal(t, "client@example.com", c.Email)
		assert.Equal(t, "Cli Ent", c.FullName)
	}
}

func TestRegisterClientLinkFailureIsNotFatal(t *testing.T) {
	s := newStore()
	s.failing["client.create"] = true

	profile, access, _, err := newAuth(s, nil).Register(context.Background(), RegisterInput{
		Email: "client@example.com", Password: "secret1", ConfirmPassword: "secret1",
		FullName: "Client", Role: types.RoleClient, CompanyID: "acme",
	})
	require.NoError(t, err)
	assert.NotNil(t, profile)
	assert.NotEmpty(t, access)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newStore()
	s.addProfile("taken", types.RoleClient, "")

	_, _, _, err := newAuth(s, nil).Register(context.Background(), RegisterInput{
		Email: "taken@example.com", Password: "secret1", ConfirmPassword: "secret1",
		FullName: "Dup", Role: types.RoleCompany, CompanyName: "Dup Inc",
	})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	auth := newAuth(s, nil)

	registered, _, _, err := auth.Register(ctx, RegisterInput{
		Email: "owner@acme.io", Password: "secret1", ConfirmPassword: "secret1",
		FullName: "Owner", Role: types.RoleCompany, CompanyName: "Acme",
	})
	require.NoError(t, err)

	_, _, _, err = auth.Login(ctx, "owner@acme.io", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, _, err = auth.Login(ctx, "nobody@acme.io", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	profile, access, _, err := auth.Login(ctx, "owner@acme.io", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, profile.ID)

	userID, err := auth.GetUserIDFromToken(access)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, userID)

	s.profiles[registered.ID].Status = types.ProfileInactive
	_, _, _, err = auth.Login(ctx, "owner@acme.io", "secret1")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestGetUserIDFromTokenRejectsGarbage(t *testing.T) {
	_, err := newAuth(newStore(), nil).GetUserIDFromToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenRotates(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	auth := newAuth(s, nil)

	_, _, refresh, err := auth.Register(ctx, RegisterInput{
		Email: "c@example.com", Password: "secret1", ConfirmPassword: "secret1",
		FullName: "C", Role: types.RoleClient, CompanyID: "acme",
	})
	require.NoError(t, err)

	_, rotated, err := auth.RefreshToken(ctx, refresh)
	require.NoError(t, err)
	assert.NotEqual(t, refresh, rotated)

	_, _, err = auth.RefreshToken(ctx, refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCurrentUserFailsClosed(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	auth := newAuth(s, nil)

	_, err := auth.CurrentUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrUnauthorized)

	s.addProfile("pending", types.RoleClient, "")
	s.profiles["pending"].Status = types.ProfilePending
	_, err = auth.CurrentUser(ctx, "pending")
	assert.ErrorIs(t, err, ErrUnauthorized)

	s.addProfile("ok", types.RoleClient, "")
	s.failing["profile.find"] = true
	_, err = auth.CurrentUser(ctx, "ok")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCurrentUserReadsThroughCache(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	cache := mapCache{}
	auth := newAuth(s, cache)
	s.addProfile("u1", types.RoleAdmin, "")

	p, err := auth.CurrentUser(ctx, "u1")
	require.NoError(t, err)
	assert.Contains(t, cache, "profile:u1")

	s.failing["profile.find"] = true
	cached, err := auth.CurrentUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, cached.ID)
	assert.Equal(t, 1, s.calls["profile.find"])
}

func TestSignInExternal(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	auth := newAuth(s, nil)
	id := ExternalIdentity{Provider: "https://issuer.example.com", Subject: "sub-1", Email: "jane.doe@example.com"}

	profile, access, _, err := auth.SignInExternal(ctx, id)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.Equal(t, types.RoleClient, profile.Role)
	assert.Equal(t, types.ProfileActive, profile.Status)
	assert.Equal(t, "jane.doe", profile.FullName)

	again, _, _, err := auth.SignInExternal(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)
	assert.Len(t, s.profiles, 1)

	_, _, _, err = auth.SignInExternal(ctx, ExternalIdentity{Provider: "other", Subject: "sub-2", Email: "jane.doe@example.com"})
	assert.ErrorIs(t, err, ErrUserExists)
}
