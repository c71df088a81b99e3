package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Marga-Ghale/projecthub-backend/internal/email"
	"github.com/Marga-Ghale/projecthub-backend/internal/repository"
	"github.com/Marga-Ghale/projecthub-backend/internal/session"
	"github.com/Marga-Ghale/projecthub-backend/internal/socket"
	"github.com/Marga-Ghale/projecthub-backend/internal/types"
)

var errStore = errors.New("store unavailable")

type idSeq struct{ n int }

func (s *idSeq) next(prefix string) string {
	s.n++
	return fmt.Sprintf("%s-%d", prefix, s.n)
}

// store is an in-memory stand-in for the database behind every repository.
type store struct {
	ids idSeq

	profiles      map[string]*repository.Profile
	accounts      map[string]*repository.Account
	refreshTokens map[string]*repository.RefreshToken
	companies     map[string]*repository.Company
	projects      map[string]*repository.Project
	members       map[string]*repository.TeamMember
	clients       map[string]*repository.Client
	notifications map[string]*repository.Notification
	issues        map[string]*repository.Issue
	comments      []*repository.IssueComment
	history       []*repository.ProjectHistory
	pricing       map[string]*repository.PricingRequest

	// failing makes the named operation return errStore.
	failing map[string]bool
	calls   map[string]int
}

func newStore() *store {
	return &store{
		profiles:      map[string]*repository.Profile{},
		accounts:      map[string]*repository.Account{},
		refreshTokens: map[string]*repository.RefreshToken{},
		companies:     map[string]*repository.Company{},
		projects:      map[string]*repository.Project{},
		members:       map[string]*repository.TeamMember{},
		clients:       map[string]*repository.Client{},
		notifications: map[string]*repository.Notification{},
		issues:        map[string]*repository.Issue{},
		pricing:       map[string]*repository.PricingRequest{},
		failing:       map[string]bool{},
		calls:         map[string]int{},
	}
}

func (s *store) op(name string) error {
	s.calls[name]++
	if s.failing[name] {
		return errStore
	}
	return nil
}

func (s *store) repos() *repository.Repositories {
	return &repository.Repositories{
		ProfileRepo:      profileRepo{s},
		AccountRepo:      accountRepo{s},
		CompanyRepo:      companyRepo{s},
		ProjectRepo:      projectRepo{s},
		TeamMemberRepo:   memberRepo{s},
		ClientRepo:       clientRepo{s},
		NotificationRepo: notificationRepo{s},
		RPC:              &rpcRepo{store: s},
		IssueRepo:        issueRepo{s},
		HistoryRepo:      historyRepo{s},
		PricingRepo:      pricingRepo{s},
	}
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ---- profiles & accounts ----

type profileRepo struct{ s *store }

func (r profileRepo) Create(_ context.Context, p *repository.Profile) error {
	if err := r.s.op("profile.create"); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = r.s.ids.next("user")
	}
	cp := *p
	r.s.profiles[p.ID] = &cp
	return nil
}

func (r profileRepo) FindByID(_ context.Context, id string) (*repository.Profile, error) {
	if err := r.s.op("profile.find"); err != nil {
		return nil, err
	}
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r profileRepo) FindByEmail(_ context.Context, email string) (*repository.Profile, error) {
	for _, id := range sortedKeys(r.s.profiles) {
		if p := r.s.profiles[id]; p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r profileRepo) FindAll(_ context.Context) ([]*repository.Profile, error) {
	if err := r.s.op("profile.findAll"); err != nil {
		return nil, err
	}
	var out []*repository.Profile
	for _, id := range sortedKeys(r.s.profiles) {
		cp := *r.s.profiles[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r profileRepo) UpdateStatus(_ context.Context, id, status string) error {
	p, ok := r.s.profiles[id]
	if !ok {
		return repository.ErrNoRows
	}
	p.Status = status
	return nil
}

func (r profileRepo) UpdateCompany(_ context.Context, id, companyID, companyName string) error {
	if err := r.s.op("profile.updateCompany"); err != nil {
		return err
	}
	p, ok := r.s.profiles[id]
	if !ok {
		return repository.ErrNoRows
	}
	p.CompanyID = &companyID
	p.CompanyName = &companyName
	return nil
}

type accountRepo struct{ s *store }

func (r accountRepo) CreateWithProfile(ctx context.Context, p *repository.Profile, a *repository.Account) error {
	if err := (profileRepo{r.s}).Create(ctx, p); err != nil {
		return err
	}
	a.ID = p.ID
	cp := *a
	r.s.accounts[a.ID] = &cp
	return nil
}

func (r accountRepo) FindByEmail(_ context.Context, email string) (*repository.Account, error) {
	for _, a := range r.s.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

func (r accountRepo) FindBySubject(_ context.Context, provider, subject string) (*repository.Account, error) {
	for _, a := range r.s.accounts {
		if a.Provider == provider && a.Subject != nil && *a.Subject == subject {
			return a, nil
		}
	}
	return nil, nil
}

func (r accountRepo) SaveRefreshToken(_ context.Context, t *repository.RefreshToken) error {
	r.s.refreshTokens[t.Token] = t
	return nil
}

func (r accountRepo) FindRefreshToken(_ context.Context, token string) (*repository.RefreshToken, error) {
	return r.s.refreshTokens[token], nil
}

func (r accountRepo) DeleteRefreshToken(_ context.Context, token string) error {
	delete(r.s.refreshTokens, token)
	return nil
}

func (r accountRepo) DeleteUserRefreshTokens(_ context.Context, userID string) error {
	for k, t := range r.s.refreshTokens {
		if t.UserID == userID {
			delete(r.s.refreshTokens, k)
		}
	}
	return nil
}

// ---- companies ----

type companyRepo struct{ s *store }

func (r companyRepo) Create(_ context.Context, c *repository.Company) error {
	if err := r.s.op("company.create"); err != nil {
		return err
	}
	c.ID = r.s.ids.next("company")
	cp := *c
	r.s.companies[c.ID] = &cp
	return nil
}

func (r companyRepo) FindByID(_ context.Context, id string) (*repository.Company, error) {
	c, ok := r.s.companies[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r companyRepo) FindAll(_ context.Context, filter repository.CompanyFilter) ([]*repository.Company, error) {
	if err := r.s.op("company.findAll"); err != nil {
		return nil, err
	}
	var out []*repository.Company
	for _, id := range sortedKeys(r.s.companies) {
		if filter.ID != nil && *filter.ID != id {
			continue
		}
		cp := *r.s.companies[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r companyRepo) Update(_ context.Context, c *repository.Company) error {
	if err := r.s.op("company.update"); err != nil {
		return err
	}
	if _, ok := r.s.companies[c.ID]; !ok {
		return repository.ErrNoRows
	}
	cp := *c
	r.s.companies[c.ID] = &cp
	return nil
}

func (r companyRepo) ExpireOverdue(_ context.Context, now time.Time) ([]string, error) {
	if err := r.s.op("company.expire"); err != nil {
		return nil, err
	}
	var ids []string
	for _, id := range sortedKeys(r.s.companies) {
		c := r.s.companies[id]
		if c.SubscriptionEndDate == nil || !c.SubscriptionEndDate.Before(now) {
			continue
		}
		if c.SubscriptionStatus != types.SubscriptionActive && c.SubscriptionStatus != types.SubscriptionTrial {
			continue
		}
		c.Status = types.CompanyInactive
		c.SubscriptionStatus = types.SubscriptionExpired
		ids = append(ids, id)
	}
	return ids, nil
}

// ---- projects ----

type projectRepo struct{ s *store }

func (r projectRepo) Create(_ context.Context, p *repository.Project) error {
	if err := r.s.op("project.create"); err != nil {
		return err
	}
	for _, id := range p.AssignedTo {
		if _, ok := r.s.members[id]; !ok {
			return repository.ErrNoRows
		}
	}
	p.ID = r.s.ids.next("project")
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.s.projects[p.ID] = p.Clone()
	for _, id := range p.AssignedTo {
		m := r.s.members[id]
		m.Projects = appendMissing(m.Projects, p.ID)
	}
	return nil
}

func (r projectRepo) FindByID(_ context.Context, id string) (*repository.Project, error) {
	p, ok := r.s.projects[id]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

func (r projectRepo) FindAll(_ context.Context, filter repository.ProjectFilter) ([]*repository.Project, error) {
	if err := r.s.op("project.findAll"); err != nil {
		return nil, err
	}
	var out []*repository.Project
	for _, id := range sortedKeys(r.s.projects) {
		p := r.s.projects[id]
		if filter.CompanyID != nil && p.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.ClientID != nil && (p.ClientID == nil || *p.ClientID != *filter.ClientID) {
			continue
		}
		out = append(out, p.Clone())
	}
	return out, nil
}

func (r projectRepo) Update(_ context.Context, p *repository.Project) error {
	if err := r.s.op("project.update"); err != nil {
		return err
	}
	if _, ok := r.s.projects[p.ID]; !ok {
		return repository.ErrNoRows
	}
	r.s.projects[p.ID] = p.Clone()
	return nil
}

func (r projectRepo) Delete(_ context.Context, id string) error {
	delete(r.s.projects, id)
	return nil
}

func (r projectRepo) AssignToTeam(_ context.Context, projectID string, memberIDs []string) error {
	if err := r.s.op("project.assign"); err != nil {
		return err
	}
	p, ok := r.s.projects[projectID]
	if !ok {
		return repository.ErrNoRows
	}
	for _, id := range removedFrom(p.AssignedTo, memberIDs) {
		if m, ok := r.s.members[id]; ok {
			m.Projects = removedFrom(m.Projects, []string{projectID})
		}
	}
	p.AssignedTo = append([]string(nil), memberIDs...)
	for _, id := range memberIDs {
		m := r.s.members[id]
		m.Projects = appendMissing(m.Projects, projectID)
	}
	return nil
}

// ---- team members ----

type memberRepo struct{ s *store }

func (r memberRepo) Create(_ context.Context, m *repository.TeamMember) error {
	if err := r.s.op("member.create"); err != nil {
		return err
	}
	m.ID = r.s.ids.next("member")
	if m.Projects == nil {
		m.Projects = []string{}
	}
	r.s.members[m.ID] = m.Clone()
	return nil
}

func (r memberRepo) FindByID(_ context.Context, id string) (*repository.TeamMember, error) {
	m, ok := r.s.members[id]
	if !ok {
		return nil, nil
	}
	return m.Clone(), nil
}

func (r memberRepo) FindByIDs(_ context.Context, ids []string) ([]*repository.TeamMember, error) {
	var out []*repository.TeamMember
	for _, id := range ids {
		if m, ok := r.s.members[id]; ok {
			out = append(out, m.Clone())
		}
	}
	return out, nil
}

func (r memberRepo) FindAll(_ context.Context, filter repository.TeamMemberFilter) ([]*repository.TeamMember, error) {
	if err := r.s.op("member.findAll"); err != nil {
		return nil, err
	}
	assigned := map[string]bool{}
	if filter.ClientID != nil {
		for _, p := range r.s.projects {
			if p.ClientID != nil && *p.ClientID == *filter.ClientID {
				for _, id := range p.AssignedTo {
					assigned[id] = true
				}
			}
		}
	}
	var out []*repository.TeamMember
	for _, id := range sortedKeys(r.s.members) {
		m := r.s.members[id]
		if filter.CompanyID != nil && m.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.ClientID != nil && !assigned[id] {
			continue
		}
		out = append(out, m.Clone())
	}
	return out, nil
}

func (r memberRepo) Update(_ context.Context, m *repository.TeamMember) error {
	if err := r.s.op("member.update"); err != nil {
		return err
	}
	r.s.members[m.ID] = m.Clone()
	return nil
}

func (r memberRepo) UpdateStatus(_ context.Context, id, status string) error {
	m, ok := r.s.members[id]
	if !ok {
		return repository.ErrNoRows
	}
	m.Status = status
	return nil
}

func (r memberRepo) Delete(_ context.Context, id string) error {
	delete(r.s.members, id)
	return nil
}

// ---- clients ----

type clientRepo struct{ s *store }

func (r clientRepo) Create(_ context.Context, c *repository.Client) error {
	if err := r.s.op("client.create"); err != nil {
		return err
	}
	c.ID = r.s.ids.next("client")
	if c.Status == "" {
		c.Status = types.ClientActive
	}
	cp := *c
	r.s.clients[c.ID] = &cp
	return nil
}

func (r clientRepo) FindByID(_ context.Context, id string) (*repository.Client, error) {
	c, ok := r.s.clients[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r clientRepo) FindAll(_ context.Context, filter repository.ClientFilter) ([]*repository.Client, error) {
	if err := r.s.op("client.findAll"); err != nil {
		return nil, err
	}
	var out []*repository.Client
	for _, id := range sortedKeys(r.s.clients) {
		c := r.s.clients[id]
		if filter.CompanyID != nil && deref(c.CompanyID) != *filter.CompanyID {
			continue
		}
		if filter.UserID != nil && deref(c.UserID) != *filter.UserID {
			continue
		}
		if filter.LinkedOnly && c.UserID == nil {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r clientRepo) UpdateStatus(_ context.Context, id, status string) error {
	if err := r.s.op("client.updateStatus"); err != nil {
		return err
	}
	c, ok := r.s.clients[id]
	if !ok {
		return repository.ErrNoRows
	}
	c.Status = status
	return nil
}

func (r clientRepo) Delete(_ context.Context, id string) error {
	delete(r.s.clients, id)
	return nil
}

// ---- notifications & rpc ----

type notificationRepo struct{ s *store }

func (r notificationRepo) FindByID(_ context.Context, id string) (*repository.Notification, error) {
	return r.s.notifications[id], nil
}

func (r notificationRepo) FindByUserID(_ context.Context, userID string, unreadOnly bool) ([]*repository.Notification, error) {
	if err := r.s.op("notification.find"); err != nil {
		return nil, err
	}
	var out []*repository.Notification
	for _, id := range sortedKeys(r.s.notifications) {
		n := r.s.notifications[id]
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (r notificationRepo) CountByUserID(_ context.Context, userID string) (int, int, error) {
	total, unread := 0, 0
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			total++
			if !n.Read {
				unread++
			}
		}
	}
	return total, unread, nil
}

func (r notificationRepo) MarkAsRead(_ context.Context, id, userID string) error {
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNoRows
	}
	n.Read = true
	return nil
}

func (r notificationRepo) MarkAllAsRead(_ context.Context, userID string) error {
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (r notificationRepo) Delete(_ context.Context, id, userID string) error {
	if n, ok := r.s.notifications[id]; ok && n.UserID == userID {
		delete(r.s.notifications, id)
	}
	return nil
}

func (r notificationRepo) DeleteOlderThan(_ context.Context, t time.Time, readOnly bool) (int, error) {
	n := 0
	for id, row := range r.s.notifications {
		if row.CreatedAt.Before(t) && (!readOnly || row.Read) {
			delete(r.s.notifications, id)
			n++
		}
	}
	return n, nil
}

type rpcRepo struct {
	store     *store
	trialDays int
}

func (r *rpcRepo) SendNotification(_ context.Context, userID, title, message, notifType string, actionURL *string) (string, error) {
	if err := r.store.op("rpc.send"); err != nil {
		return "", err
	}
	id := r.store.ids.next("notification")
	r.store.notifications[id] = &repository.Notification{
		ID: id, UserID: userID, Title: title, Message: message, Type: notifType, ActionURL: actionURL, CreatedAt: time.Now(),
	}
	return id, nil
}

func (r *rpcRepo) TrialDaysLeft(_ context.Context, _ string) (int, error) {
	return r.trialDays, nil
}

func (r *rpcRepo) IsAdmin(_ context.Context, userID string) (bool, error) {
	p, ok := r.store.profiles[userID]
	return ok && p.IsAdmin(), nil
}

// ---- issues, history, pricing ----

type issueRepo struct{ s *store }

func (r issueRepo) Create(_ context.Context, i *repository.Issue) error {
	if err := r.s.op("issue.create"); err != nil {
		return err
	}
	i.ID = r.s.ids.next("issue")
	r.s.issues[i.ID] = i.Clone()
	return nil
}

func (r issueRepo) FindByID(_ context.Context, id string) (*repository.Issue, error) {
	i, ok := r.s.issues[id]
	if !ok {
		return nil, nil
	}
	return i.Clone(), nil
}

func (r issueRepo) FindAll(_ context.Context, filter repository.IssueFilter) ([]*repository.Issue, error) {
	if err := r.s.op("issue.findAll"); err != nil {
		return nil, err
	}
	var out []*repository.Issue
	for _, id := range sortedKeys(r.s.issues) {
		i := r.s.issues[id]
		p := r.s.projects[i.ProjectID]
		if filter.CompanyID != nil && (p == nil || p.CompanyID != *filter.CompanyID) {
			continue
		}
		if filter.ClientID != nil {
			ownProject := p != nil && deref(p.ClientID) == *filter.ClientID
			if !ownProject && deref(i.CreatedBy) != *filter.ClientID {
				continue
			}
		}
		out = append(out, i.Clone())
	}
	return out, nil
}

func (r issueRepo) Update(_ context.Context, i *repository.Issue) error {
	if err := r.s.op("issue.update"); err != nil {
		return err
	}
	r.s.issues[i.ID] = i.Clone()
	return nil
}

func (r issueRepo) Delete(_ context.Context, id string) error {
	delete(r.s.issues, id)
	return nil
}

func (r issueRepo) AddComment(_ context.Context, c *repository.IssueComment) error {
	c.ID = r.s.ids.next("comment")
	c.CreatedAt = time.Now()
	r.s.comments = append(r.s.comments, c)
	return nil
}

func (r issueRepo) FindComments(_ context.Context, issueID string) ([]*repository.IssueComment, error) {
	var out []*repository.IssueComment
	for _, c := range r.s.comments {
		if c.IssueID == issueID {
			out = append(out, c)
		}
	}
	return out, nil
}

type historyRepo struct{ s *store }

func (r historyRepo) Create(_ context.Context, e *repository.ProjectHistory) error {
	if err := r.s.op("history.create"); err != nil {
		return err
	}
	e.ID = r.s.ids.next("history")
	r.s.history = append(r.s.history, e)
	return nil
}

func (r historyRepo) FindAll(_ context.Context, filter repository.HistoryFilter) ([]*repository.ProjectHistory, error) {
	var out []*repository.ProjectHistory
	for _, e := range r.s.history {
		p := r.s.projects[e.ProjectID]
		if filter.ProjectID != nil && e.ProjectID != *filter.ProjectID {
			continue
		}
		if filter.CompanyID != nil && (p == nil || p.CompanyID != *filter.CompanyID) {
			continue
		}
		if filter.ClientID != nil && (p == nil || deref(p.ClientID) != *filter.ClientID) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type pricingRepo struct{ s *store }

func (r pricingRepo) Create(_ context.Context, req *repository.PricingRequest) error {
	req.ID = r.s.ids.next("pricing")
	req.RequestedAt = time.Now()
	cp := *req
	r.s.pricing[req.ID] = &cp
	return nil
}

func (r pricingRepo) FindByID(_ context.Context, id string) (*repository.PricingRequest, error) {
	req, ok := r.s.pricing[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (r pricingRepo) FindAll(_ context.Context, userID *string) ([]*repository.PricingRequest, error) {
	var out []*repository.PricingRequest
	for _, id := range sortedKeys(r.s.pricing) {
		req := r.s.pricing[id]
		if userID != nil && req.UserID != *userID {
			continue
		}
		cp := *req
		out = append(out, &cp)
	}
	return out, nil
}

func (r pricingRepo) Decide(_ context.Context, req *repository.PricingRequest) error {
	cur, ok := r.s.pricing[req.ID]
	if !ok || cur.Status != types.PricingPending {
		return repository.ErrNoRows
	}
	cp := *req
	r.s.pricing[req.ID] = &cp
	return nil
}

// ---- collaborators ----

type sentNotification struct {
	kind   string
	target string
	title  string
}

type recordingNotifier struct {
	sent []sentNotification
}

func (n *recordingNotifier) NotifyProjectAssignment(_ context.Context, members []*repository.TeamMember, projectName string) int {
	for _, m := range members {
		n.sent = append(n.sent, sentNotification{"project", m.NotifyTarget(), projectName})
	}
	return 0
}

func (n *recordingNotifier) NotifyIssueAssignment(_ context.Context, assigneeID, issueTitle string) int {
	n.sent = append(n.sent, sentNotification{"issue", assigneeID, issueTitle})
	return 0
}

func (n *recordingNotifier) NotifyPricingRequest(_ context.Context, requesterID, planName string) int {
	n.sent = append(n.sent, sentNotification{"pricing", requesterID, planName})
	return 0
}

func (n *recordingNotifier) NotifyPricingDecision(_ context.Context, requesterID, planName string, approved bool) int {
	n.sent = append(n.sent, sentNotification{fmt.Sprintf("decision:%t", approved), requesterID, planName})
	return 0
}

type changeEvent struct {
	companyID string
	msgType   socket.MessageType
	action    string
	entityID  string
}

type recordingBroadcaster struct {
	events []changeEvent
}

func (b *recordingBroadcaster) EntityChanged(companyID string, msgType socket.MessageType, action, entityID, _ string) {
	b.events = append(b.events, changeEvent{companyID, msgType, action, entityID})
}

type recordingMailer struct {
	to   []string
	data []email.PricingDecisionData
}

func (m *recordingMailer) SendPricingDecision(to string, data email.PricingDecisionData) error {
	m.to = append(m.to, to)
	m.data = append(m.data, data)
	return nil
}

// ---- fixtures ----

func (s *store) addProfile(id, role, companyID string) *repository.Profile {
	p := &repository.Profile{ID: id, Email: id + "@example.com", FullName: id, Role: role, Status: types.ProfileActive}
	if companyID != "" {
		p.CompanyID = &companyID
	}
	s.profiles[id] = p
	cp := *p
	return &cp
}

func (s *store) addCompany(id, subStatus string, end time.Time) {
	s.companies[id] = &repository.Company{
		ID: id, Name: id, Email: id + "@example.com", Status: types.CompanyActive,
		SubscriptionPlan: types.PlanBasic, SubscriptionStatus: subStatus, SubscriptionEndDate: &end,
	}
}

func (s *store) addProject(id, companyID, clientID string, assigned ...string) {
	p := &repository.Project{ID: id, Name: "Project " + id, CompanyID: companyID, Status: types.ProjectPlanning, AssignedTo: assigned}
	if clientID != "" {
		p.ClientID = &clientID
	}
	if p.AssignedTo == nil {
		p.AssignedTo = []string{}
	}
	s.projects[id] = p
}

func (s *store) addMember(id, companyID string, userID *string) {
	s.members[id] = &repository.TeamMember{
		ID: id, Name: "Member " + id, Email: id + "@example.com", Role: "Developer",
		Status: types.MemberActive, CompanyID: companyID, UserID: userID, Projects: []string{},
	}
}

func sessionFor(p *repository.Profile) *session.Session {
	sess := session.New(p.ID)
	sess.SetViewer(p)
	return sess
}

func newTestServices(s *store) (*Services, *recordingNotifier, *recordingBroadcaster) {
	notifier := &recordingNotifier{}
	bc := &recordingBroadcaster{}
	svcs := NewServices(&ServiceDeps{
		Config:      testConfig(),
		Repos:       s.repos(),
		Sessions:    session.NewRegistry(),
		Notifier:    notifier,
		Broadcaster: bc,
	})
	return svcs, notifier, bc
}
