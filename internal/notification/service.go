package notification

import (
	"context"
	"fmt"

	"github.com/Marga-Ghale/projecthub-backend/internal/logger"
	"github.com/Marga-Ghale/projecthub-backend/internal/repository"
	"github.com/Marga-Ghale/projecthub-backend/internal/telemetry"
	"github.com/Marga-Ghale/projecthub-backend/internal/types"
)

// Titles used by the fan-out helpers.
const (
	TitleProjectAssignment = "New Project Assignment"
	TitleIssueAssignment   = "New Issue Assignment"
	TitlePricingSubmitted  = "Pricing Request Submitted"
	TitlePricingApproved   = "Pricing Request Approved"
	TitlePricingRejected   = "Pricing Request Rejected"
)

// Pusher delivers a stored notification over the realtime channel.
type Pusher interface {
	SendNotification(userID string, notification map[string]interface{})
}

// Service stores notifications through the send_notification procedure and
// pushes them to connected clients. Every helper is best-effort: failures are
// logged and counted, never returned to the mutation that triggered them.
type Service struct {
	rpc         repository.RPCRepository
	broadcaster Pusher
}

func NewService(rpc repository.RPCRepository) *Service {
	return &Service{rpc: rpc}
}

func (s *Service) SetBroadcaster(b Pusher) {
	s.broadcaster = b
}

// Send stores one notification and pushes it to the recipient.
func (s *Service) Send(ctx context.Context, userID, title, message, notifType string, actionURL *string) error {
	if userID == "" {
		return nil
	}

	id, err := s.rpc.SendNotification(ctx, userID, title, message, notifType, actionURL)
	if err != nil {
		telemetry.NotificationsFailedTotal.WithLabelValues(notifType).Inc()
		return fmt.Errorf("send notification to %s: %w", userID, err)
	}
	telemetry.NotificationsSentTotal.WithLabelValues(notifType).Inc()

	if s.broadcaster != nil {
		payload := map[string]interface{}{
			"id":      id,
			"userId":  userID,
			"type":    notifType,
			"title":   title,
			"message": message,
			"read":    false,
		}
		if actionURL != nil {
			payload["actionUrl"] = *actionURL
		}
		s.broadcaster.SendNotification(userID, payload)
	}
	return nil
}

// NotifyProjectAssignment sends one notification per assigned member, in
// order. It returns how many sends failed.
func (s *Service) NotifyProjectAssignment(ctx context.Context, members []*repository.TeamMember, projectName string) int {
	failed := 0
	for _, m := range members {
		if m == nil {
			continue
		}
		err := s.Send(ctx, m.NotifyTarget(), TitleProjectAssignment,
			fmt.Sprintf("You have been assigned to project: %s", projectName),
			types.NotificationInfo, nil)
		if err != nil {
			failed++
			logger.L().Warnw("[Notification] project assignment not delivered", "member", m.ID, "error", err)
		}
	}
	return failed
}

// NotifyIssueAssignment returns 1 when the send failed, 0 otherwise.
func (s *Service) NotifyIssueAssignment(ctx context.Context, assigneeID, issueTitle string) int {
	err := s.Send(ctx, assigneeID, TitleIssueAssignment,
		fmt.Sprintf("You have been assigned issue: %s", issueTitle),
		types.NotificationWarning, nil)
	if err != nil {
		logger.L().Warnw("[Notification] issue assignment not delivered", "assignee", assigneeID, "error", err)
		return 1
	}
	return 0
}

func (s *Service) NotifyPricingRequest(ctx context.Context, requesterID, planName string) int {
	err := s.Send(ctx, requesterID, TitlePricingSubmitted,
		fmt.Sprintf("Your request for the %s plan has been submitted and is awaiting review.", planName),
		types.NotificationInfo, nil)
	if err != nil {
		logger.L().Warnw("[Notification] pricing confirmation not delivered", "user", requesterID, "error", err)
		return 1
	}
	return 0
}

func (s *Service) NotifyPricingDecision(ctx context.Context, requesterID, planName string, approved bool) int {
	title, notifType := TitlePricingRejected, types.NotificationError
	verdict := "rejected"
	if approved {
		title, notifType, verdict = TitlePricingApproved, types.NotificationSuccess, "approved"
	}

	err := s.Send(ctx, requesterID, title,
		fmt.Sprintf("Your request for the %s plan has been %s.", planName, verdict),
		notifType, nil)
	if err != nil {
		logger.L().Warnw("[Notification] pricing decision not delivered", "user", requesterID, "error", err)
		return 1
	}
	return 0
}
