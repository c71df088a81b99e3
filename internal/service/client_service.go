package service

import (
	"context"
	"strings"

	"github.com/Marga-Ghale/projecthub-backend/internal/repository"
	"github.com/Marga-Ghale/projecthub-backend/internal/session"
	"github.com/Marga-Ghale/projecthub-backend/internal/socket"
	"github.com/Marga-Ghale/projecthub-backend/internal/types"
)

// ============================================
// Client Service
// ============================================

type ClientInput struct {
	FullName  string
	Email     string
	Phone     *string
	CompanyID string
	UserID    *string
}

type ClientService interface {
	// Fetch lists clients backed by a login: every one for admins, the
	// company's own for company users, the viewer's row for clients.
	Fetch(ctx context.Context, sess *session.Session) ([]*repository.Client, error)
	Create(ctx context.Context, sess *session.Session, in ClientInput) (*repository.Client, error)
	UpdateStatus(ctx context.Context, sess *session.Session, id, status string) error
	Delete(ctx context.Context, sess *session.Session, id string) error
}

type clientService struct {
	clientRepo repository.ClientRepository
	bc         broadcast
}

func NewClientService(clientRepo repository.ClientRepository, bc broadcast) ClientService {
	return &clientService{clientRepo: clientRepo, bc: bc}
}

func (s *clientService) Fetch(ctx context.Context, sess *session.Session) ([]*repository.Client, error) {
	viewer := viewerOf(sess)
	if viewer == nil {
		return []*repository.Client{}, nil
	}

	filter := repository.ClientFilter{LinkedOnly: true}
	switch viewer.Role {
	case types.RoleAdmin:
	case types.RoleCompany:
		if viewer.Company() == "" {
			return []*repository.Client{}, nil
		}
		filter.CompanyID = strPtr(viewer.Company())
	case types.RoleClient:
		filter.UserID = strPtr(viewer.ID)
	default:
		return []*repository.Client{}, nil
	}

	clients, err := s.clientRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fail("fetch", "clients", err)
	}
	if clients == nil {
		clients = []*repository.Client{}
	}
	sess.Clients.Replace(clients)
	return clients, nil
}

func (s *clientService) manageable(ctx context.Context, viewer *repository.Profile, id string) (*repository.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fail("fetch", "client", err)
	}
	if client == nil || (!viewer.IsAdmin() && deref(client.CompanyID) != viewer.Company()) {
		return nil, ErrNotFound
	}
	return client, nil
}

func (s *clientService) Create(ctx context.Context, sess *session.Session, in ClientInput) (*repository.Client, error) {
	viewer, err := requireManager(sess)
	if err != nil {
		return nil, err
	}
	if viewer.IsCompany() {
		in.CompanyID = viewer.Company()
	}

	var errs ValidationErrors
	if strings.TrimSpace(in.Email) == "" {
		errs = append(errs, MsgRequiredFields)
	} else if validate.Var(strings.TrimSpace(in.Email), "email") != nil {
		errs = append(errs, MsgInvalidEmail)
	}
	if in.CompanyID == "" {
		errs = append(errs, "Company is required")
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}

	client := &repository.Client{
		FullName:  strings.TrimSpace(in.FullName),
		Email:     strings.TrimSpace(in.Email),
		Phone:     in.Phone,
		CompanyID: strPtr(in.CompanyID),
		UserID:    in.UserID,
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fail("create", "client", err)
	}
	sess.Clients.Add(client)

	s.reconcile(ctx, sess)
	s.bc.changed(in.CompanyID, socket.MessageClientChanged, "created", client.ID, viewer.ID)
	return client, nil
}

func (s *clientService) UpdateStatus(ctx context.Context, sess *session.Session, id, status string) error {
	viewer, err := requireManager(sess)
	if err != nil {
		return err
	}
	if status != types.ClientActive && status != types.ClientInactive {
		return invalid("Invalid client status")
	}
	client, err := s.manageable(ctx, viewer, id)
	if err != nil {
		return err
	}
	if err := s.clientRepo.UpdateStatus(ctx, id, status); err != nil {
		return fail("update", "client status", err)
	}
	sess.Clients.Patch(id, func(c *repository.Client) *repository.Client {
		cp := *c
		cp.Status = status
		return &cp
	})

	s.reconcile(ctx, sess)
	s.bc.changed(deref(client.CompanyID), socket.MessageClientChanged, "updated", id, viewer.ID)
	return nil
}

func (s *clientService) Delete(ctx context.Context, sess *session.Session, id string) error {
	viewer, err := requireManager(sess)
	if err != nil {
		return err
	}
	client, err := s.manageable(ctx, viewer, id)
	if err != nil {
		return err
	}
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return fail("delete", "client", err)
	}
	sess.Clients.Remove(id)

	s.reconcile(ctx, sess)
	s.bc.changed(deref(client.CompanyID), socket.MessageClientChanged, "deleted", id, viewer.ID)
	return nil
}

func (s *clientService) reconcile(ctx context.Context, sess *session.Session) {
	if _, err := s.Fetch(ctx, sess); err != nil {
		reconcileFailed("clients", err)
	}
}
