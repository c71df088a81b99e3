package service

import (
	"context"

	"github.com/Marga-Ghale/projecthub-backend/internal/logger"
	"github.com/Marga-Ghale/projecthub-backend/internal/repository"
	"github.com/Marga-Ghale/projecthub-backend/internal/session"
)

// ============================================
// Notification Service (for handlers)
// ============================================

// NotificationService works on the viewer's own notifications only.
type NotificationService interface {
	Fetch(ctx context.Context, sess *session.Session, unreadOnly bool) ([]*repository.Notification, error)
	Count(ctx context.Context, sess *session.Session) (total int, unread int, err error)
	MarkAsRead(ctx context.Context, sess *session.Session, id string) error
	MarkAllAsRead(ctx context.Context, sess *session.Session) error
	Delete(ctx context.Context, sess *session.Session, id string) error
}

// CountPusher sends a user's notification counters to their live connections.
type CountPusher interface {
	SendNotificationCount(userID string, total, unread int)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	counts           CountPusher
}

// NewNotificationService builds the service. counts may be nil.
func NewNotificationService(notificationRepo repository.NotificationRepository, counts CountPusher) NotificationService {
	return &notificationService{notificationRepo: notificationRepo, counts: counts}
}

func (s *notificationService) Fetch(ctx context.Context, sess *session.Session, unreadOnly bool) ([]*repository.Notification, error) {
	viewer := viewerOf(sess)
	if viewer == nil {
		return []*repository.Notification{}, nil
	}
	notifications, err := s.notificationRepo.FindByUserID(ctx, viewer.ID, unreadOnly)
	if err != nil {
		return nil, fail("fetch", "notifications", err)
	}
	if notifications == nil {
		notifications = []*repository.Notification{}
	}
	if !unreadOnly {
		sess.Notifications.Replace(notifications)
	}
	return notifications, nil
}

func (s *notificationService) Count(ctx context.Context, sess *session.Session) (int, int, error) {
	viewer, err := requireViewer(sess)
	if err != nil {
		return 0, 0, err
	}
	total, unread, err := s.notificationRepo.CountByUserID(ctx, viewer.ID)
	if err != nil {
		return 0, 0, fail("count", "notifications", err)
	}
	return total, unread, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, sess *session.Session, id string) error {
	viewer, err := requireViewer(sess)
	if err != nil {
		return err
	}
	if err := s.notificationRepo.MarkAsRead(ctx, id, viewer.ID); err != nil {
		return fail("update", "notification", err)
	}
	sess.Notifications.Patch(id, markRead)
	s.reconcile(ctx, sess)
	s.pushCount(ctx, viewer.ID)
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, sess *session.Session) error {
	viewer, err := requireViewer(sess)
	if err != nil {
		return err
	}
	if err := s.notificationRepo.MarkAllAsRead(ctx, viewer.ID); err != nil {
		return fail("update", "notifications", err)
	}
	for _, n := range sess.Notifications.Items() {
		sess.Notifications.Patch(n.ID, markRead)
	}
	s.reconcile(ctx, sess)
	s.pushCount(ctx, viewer.ID)
	return nil
}

func (s *notificationService) Delete(ctx context.Context, sess *session.Session, id string) error {
	viewer, err := requireViewer(sess)
	if err != nil {
		return err
	}
	if err := s.notificationRepo.Delete(ctx, id, viewer.ID); err != nil {
		return fail("delete", "notification", err)
	}
	sess.Notifications.Remove(id)
	s.reconcile(ctx, sess)
	s.pushCount(ctx, viewer.ID)
	return nil
}

func (s *notificationService) reconcile(ctx context.Context, sess *session.Session) {
	if _, err := s.Fetch(ctx, sess, false); err != nil {
		reconcileFailed("notifications", err)
	}
}

// pushCount refreshes the badge on the user's other open tabs.
func (s *notificationService) pushCount(ctx context.Context, userID string) {
	if s.counts == nil {
		return
	}
	total, unread, err := s.notificationRepo.CountByUserID(ctx, userID)
	if err != nil {
		logger.L().Warnw("[Notification] count for push failed", "user", userID, "error", err)
		return
	}
	s.counts.SendNotificationCount(userID, total, unread)
}

func markRead(n *repository.Notification) *repository.Notification {
	cp := *n
	cp.Read = true
	return &cp
}
