package service

import (
	"context"
	"testing"

	"github.com/Marga-Ghale/projecthub-backend/internal/repository"
	"github.com/Marga-Ghale/projecthub-backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memberIDsOf(members []*repository.TeamMember) []string {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestTeamMemberFetchScopes(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.addMember("m1", "acme", nil)
	s.addMember("m2", "acme", nil)
	s.addMember("m3", "globex", nil)
	s.addProject("p1", "acme", "c1", "m2")
	svcs, _, _ := newTestServices(s)

	admin := sessionFor(s.addProfile("admin", types.RoleAdmin, ""))
	got, err := svcs.TeamMember.Fetch(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2", "m3"}, memberIDsOf(got))

	company := sessionFor(s.addProfile("owner", types.RoleCompany, "acme"))
	got, err = svcs.TeamMember.Fetch(ctx, company)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, memberIDsOf(got))

	client := sessionFor(s.addProfile("c1", types.RoleClient, "acme"))
	got, err = svcs.TeamMember.Fetch(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, []string{"m2"}, memberIDsOf(got))
}

func TestTeamMemberCreateAndDeactivate(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	svcs, _, _ := newTestServices(s)
	sess := sessionFor(s.addProfile("owner", types.RoleCompany, "acme"))

	_, err := svcs.TeamMember.Create(ctx, sess, TeamMemberInput{Name: "Ann"})
	assert.ErrorIs(t, err, ErrValidation)

	member, err := svcs.TeamMember.Create(ctx, sess, TeamMemberInput{Name: "Ann Lee", Email: "ann@acme.io", Role: "Designer"})
	require.NoError(t, err)
	assert.Equal(t, "acme", member.CompanyID)

	require.NoError(t, svcs.TeamMember.Deactivate(ctx, sess, member.ID))
	assert.Equal(t, types.MemberInactive, s.members[member.ID].Status)
	cached, ok := sess.TeamMembers.Get(member.ID)
	require.True(t, ok)
	assert.Equal(t, types.MemberInactive, cached.Status)

	rival := sessionFor(s.addProfile("rival", types.RoleCompany, "globex"))
	assert.ErrorIs(t, svcs.TeamMember.Delete(ctx, rival, member.ID), ErrNotFound)
}

func TestTeamMemberUpdateKeepsOptimisticStateWhenReconcileFails(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.addMember("m1", "acme", nil)
	svcs, _, _ := newTestServices(s)
	sess := sessionFor(s.addProfile("owner", types.RoleCompany, "acme"))
	_, err := svcs.TeamMember.Fetch(ctx, sess)
	require.NoError(t, err)

	s.failing["member.findAll"] = true
	dept := "Design"
	_, err = svcs.TeamMember.Update(ctx, sess, "m1", repository.TeamMemberPatch{Department: &dept})
	require.NoError(t, err)

	cached, ok := sess.TeamMembers.Get("m1")
	require.True(t, ok)
	assert.Equal(t, "Design", cached.Department)
}
