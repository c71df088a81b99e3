package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

var issueCols = []string{
	"id", "title", "description", "status", "priority", "project_id", "assigned_to",
	"created_by", "labels", "created_at", "updated_at",
}

func strRef(s string) *string { return &s }

// ---------------------------------------------------------------------------
// Issues
// ---------------------------------------------------------------------------

func TestIssueRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewIssueRepository(db)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO issues").
		WithArgs("Login broken", "", "Open", "High", "p1", nil, "u1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("i1", now, now))

	issue := &Issue{Title: "Login broken", Status: "Open", Priority: "High", ProjectID: "p1", CreatedBy: strRef("u1")}
	require.NoError(t, repo.Create(context.Background(), issue))

	assert.Equal(t, "i1", issue.ID)
	assert.Equal(t, pq.StringArray{}, issue.Labels)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueRepository_FindAll_ClientScope(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewIssueRepository(db)
	now := time.Now()

	mock.ExpectQuery(`(?s)SELECT .* FROM issues WHERE TRUE AND \(project_id IN \(SELECT id FROM projects WHERE client_id = \$1\) OR created_by = \$1\)`).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(issueCols).
			AddRow("i1", "A", "", "Open", "Low", "p1", nil, "u9", "{bug,ui}", now, now).
			AddRow("i2", "B", "", "Closed", "High", "p7", "m1", "c1", "{}", now, now))

	issues, err := repo.FindAll(context.Background(), IssueFilter{ClientID: strRef("c1")})
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, pq.StringArray{"bug", "ui"}, issues[0].Labels)
	assert.Nil(t, issues[0].AssignedTo)
	assert.Equal(t, "m1", *issues[1].AssignedTo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueRepository_FindAll_CompanyScope(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewIssueRepository(db)

	mock.ExpectQuery(`(?s)FROM issues WHERE TRUE AND project_id IN \(SELECT id FROM projects WHERE company_id = \$1\)`).
		WithArgs("co1").
		WillReturnRows(sqlmock.NewRows(issueCols))

	issues, err := repo.FindAll(context.Background(), IssueFilter{CompanyID: strRef("co1")})
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueRepository_FindByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewIssueRepository(db)

	mock.ExpectQuery(`(?s)SELECT .* FROM issues WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(issueCols))

	issue, err := repo.FindByID(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, issue)
}

func TestIssueRepository_Update_NoRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewIssueRepository(db)

	mock.ExpectQuery("UPDATE issues SET").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

	err := repo.Update(context.Background(), &Issue{ID: "gone"})
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestIssueRepository_Comments(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewIssueRepository(db)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO issue_comments").
		WithArgs("i1", "u1", "Looking into it").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("cm1", now))
	mock.ExpectQuery(`(?s)FROM issue_comments WHERE issue_id = \$1\s+ORDER BY created_at ASC`).
		WithArgs("i1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "issue_id", "user_id", "content", "created_at"}).
			AddRow("cm1", "i1", "u1", "Looking into it", now))

	c := &IssueComment{IssueID: "i1", UserID: strRef("u1"), Content: "Looking into it"}
	require.NoError(t, repo.AddComment(context.Background(), c))
	assert.Equal(t, "cm1", c.ID)

	comments, err := repo.FindComments(context.Background(), "i1")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Looking into it", comments[0].Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Project history
// ---------------------------------------------------------------------------

func TestHistoryRepository_CreateAndFind(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewHistoryRepository(db)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO project_history").
		WithArgs("p1", "u1", "updated", "status", "Planning", "Testing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("h1", now))
	mock.ExpectQuery(`(?s)FROM project_history WHERE TRUE AND project_id = \$1 AND project_id IN \(SELECT id FROM projects WHERE company_id = \$2\)`).
		WithArgs("p1", "co1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "project_id", "changed_by", "action", "field_changed", "old_value", "new_value", "created_at"}).
			AddRow("h1", "p1", "u1", "updated", "status", "Planning", "Testing", now))

	entry := &ProjectHistory{
		ProjectID:    "p1",
		ChangedBy:    strRef("u1"),
		Action:       "updated",
		FieldChanged: strRef("status"),
		OldValue:     strRef("Planning"),
		NewValue:     strRef("Testing"),
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.Equal(t, "h1", entry.ID)

	entries, err := repo.FindAll(context.Background(), HistoryFilter{ProjectID: strRef("p1"), CompanyID: strRef("co1")})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Testing", *entries[0].NewValue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Pricing requests
// ---------------------------------------------------------------------------

func TestPricingRepository_Decide(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPricingRepository(db)
	now := time.Now()

	req := &PricingRequest{ID: "r1", Status: "approved", Notes: strRef("ok"), ApprovedAt: &now, ApprovedBy: strRef("admin")}

	mock.ExpectExec("UPDATE pricing_requests").
		WithArgs("r1", "approved", "ok", now, "admin").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Decide(context.Background(), req))

	mock.ExpectExec("UPDATE pricing_requests").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Decide(context.Background(), req), ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPricingRepository_FindAll_ByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPricingRepository(db)
	now := time.Now()

	mock.ExpectQuery(`(?s)FROM pricing_requests WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "plan_name", "plan_price", "company_name", "email", "phone",
			"status", "notes", "requested_at", "approved_at", "approved_by",
		}).AddRow("r1", "u1", "Premium", "$49/mo", nil, "a@b.co", nil, "pending", nil, now, nil, nil))

	reqs, err := repo.FindAll(context.Background(), strRef("u1"))
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "Premium", reqs[0].PlanName)
	assert.Nil(t, reqs[0].ApprovedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Patches
// ---------------------------------------------------------------------------

func TestIssuePatch_ApplyLeavesOriginalUntouched(t *testing.T) {
	orig := &Issue{ID: "i1", Title: "Old", Labels: pq.StringArray{"a"}}
	status := "Resolved"
	assignee := ""

	out := IssuePatch{Status: &status, AssignedTo: &assignee, Labels: []string{"b"}}.Apply(orig)

	assert.Equal(t, "Resolved", out.Status)
	assert.Nil(t, out.AssignedTo)
	assert.Equal(t, pq.StringArray{"b"}, out.Labels)
	assert.Equal(t, "", orig.Status)
	assert.Equal(t, pq.StringArray{"a"}, orig.Labels)
}
