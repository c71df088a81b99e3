package service

import (
	"context"
	"testing"
	"time"

	"github.com/Marga-Ghale/projecthub-backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newStore()
	s.addCompany("overdue-active", types.SubscriptionActive, now.Add(-time.Hour))
	s.addCompany("overdue-trial", types.SubscriptionTrial, now.Add(-24*time.Hour))
	s.addCompany("current", types.SubscriptionActive, now.Add(time.Hour))
	s.addCompany("already", types.SubscriptionExpired, now.Add(-48*time.Hour))
	s.companies["already"].Status = types.CompanyInactive
	svcs, _, bc := newTestServices(s)
	admin := sessionFor(s.addProfile("admin", types.RoleAdmin, ""))

	n, err := svcs.Company.SweepExpired(ctx, admin, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, id := range []string{"overdue-active", "overdue-trial"} {
		assert.Equal(t, types.CompanyInactive, s.companies[id].Status, id)
		assert.Equal(t, types.SubscriptionExpired, s.companies[id].SubscriptionStatus, id)
	}
	assert.Equal(t, types.SubscriptionActive, s.companies["current"].SubscriptionStatus)
	assert.Len(t, bc.events, 2)

	cached, ok := admin.Companies.Get("overdue-trial")
	require.True(t, ok)
	assert.Equal(t, types.SubscriptionExpired, cached.SubscriptionStatus)

	n, err = svcs.Company.SweepExpired(ctx, admin, now)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSweepExpiredNeedsAdmin(t *testing.T) {
	s := newStore()
	svcs, _, _ := newTestServices(s)
	owner := sessionFor(s.addProfile("owner", types.RoleCompany, "acme"))

	_, err := svcs.Company.SweepExpired(context.Background(), owner, time.Now())
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Zero(t, s.calls["company.expire"])
}

func TestUpdateSubscriptionTransitions(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.addCompany("acme", types.SubscriptionTrial, time.Now().Add(time.Hour))
	svcs, _, _ := newTestServices(s)
	admin := sessionFor(s.addProfile("admin", types.RoleAdmin, ""))

	expired, err := svcs.Company.UpdateSubscription(ctx, admin, "acme", "", types.SubscriptionExpired)
	require.NoError(t, err)
	assert.Equal(t, types.CompanyInactive, expired.Status)

	_, err = svcs.Company.UpdateSubscription(ctx, admin, "acme", "", types.SubscriptionTrial)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	renewed, err := svcs.Company.Renew(ctx, admin, "acme", types.PlanPremium)
	require.NoError(t, err)
	assert.Equal(t, types.CompanyActive, renewed.Status)
	assert.Equal(t, types.SubscriptionActive, renewed.SubscriptionStatus)
	assert.Equal(t, types.PlanPremium, renewed.SubscriptionPlan)
	require.NotNil(t, renewed.SubscriptionEndDate)
	assert.WithinDuration(t, time.Now().Add(365*24*time.Hour), *renewed.SubscriptionEndDate, time.Minute)
	assert.Equal(t, types.SubscriptionActive, s.companies["acme"].SubscriptionStatus)
}

func TestCompanyCreateEndDates(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	svcs, _, _ := newTestServices(s)
	admin := sessionFor(s.addProfile("admin", types.RoleAdmin, ""))

	trial, err := svcs.Company.Create(ctx, admin, CompanyInput{Name: "Trial Co", Email: "t@co.io"})
	require.NoError(t, err)
	assert.Equal(t, types.SubscriptionTrial, trial.SubscriptionStatus)
	require.NotNil(t, trial.SubscriptionEndDate)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), *trial.SubscriptionEndDate, time.Minute)

	paid, err := svcs.Company.Create(ctx, admin, CompanyInput{Name: "Paid Co", Email: "p@co.io", Plan: types.PlanBasic})
	require.NoError(t, err)
	assert.Equal(t, types.SubscriptionActive, paid.SubscriptionStatus)
	assert.WithinDuration(t, time.Now().Add(365*24*time.Hour), *paid.SubscriptionEndDate, time.Minute)

	lapsed, err := svcs.Company.Create(ctx, admin, CompanyInput{Name: "Old Co", Email: "o@co.io", Plan: types.PlanBasic, SubscriptionStatus: types.SubscriptionExpired})
	require.NoError(t, err)
	assert.Nil(t, lapsed.SubscriptionEndDate)
	assert.Equal(t, types.CompanyInactive, lapsed.Status)

	_, err = svcs.Company.Create(ctx, admin, CompanyInput{Name: "Bad", Email: "b@co.io", Plan: "gold"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCompanyFetchAndActiveList(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.addCompany("acme", types.SubscriptionActive, time.Now().Add(time.Hour))
	s.addCompany("trialco", types.SubscriptionTrial, time.Now().Add(time.Hour))
	svcs, _, _ := newTestServices(s)

	owner := sessionFor(s.addProfile("owner", types.RoleCompany, "trialco"))
	companies, err := svcs.Company.Fetch(ctx, owner)
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "trialco", companies[0].ID)

	client := sessionFor(s.addProfile("c1", types.RoleClient, "acme"))
	companies, err = svcs.Company.Fetch(ctx, client)
	require.NoError(t, err)
	assert.Empty(t, companies)

	active, err := svcs.Company.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "acme", active[0].ID)
}

func TestCompanyUpdateOwnOnly(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.addCompany("acme", types.SubscriptionActive, time.Now().Add(time.Hour))
	s.addCompany("globex", types.SubscriptionActive, time.Now().Add(time.Hour))
	svcs, _, _ := newTestServices(s)
	owner := sessionFor(s.addProfile("owner", types.RoleCompany, "acme"))

	name := "Acme Corp"
	updated, err := svcs.Company.Update(ctx, owner, "acme", CompanyPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)

	_, err = svcs.Company.Update(ctx, owner, "globex", CompanyPatch{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svcs.Company.SetStatus(ctx, owner, "acme", types.CompanyInactive), ErrForbidden)
}

func TestTrialDaysLeft(t *testing.T) {
	s := newStore()
	repos := s.repos()
	repos.RPC.(*rpcRepo).trialDays = 12
	svcs := NewServices(&ServiceDeps{Config: testConfig(), Repos: repos})
	sess := sessionFor(s.addProfile("owner", types.RoleCompany, "acme"))

	days, err := svcs.Company.TrialDaysLeft(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, 12, days)
}
