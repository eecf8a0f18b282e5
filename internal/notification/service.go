package notification

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/byoma-kusuma/sangha-management-backend/internal/auth"
	"github.com/byoma-kusuma/sangha-management-backend/middleware"
	"github.com/byoma-kusuma/sangha-management-backend/utils"
)

type Service interface {
	ListMyNotifications(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]InAppNotification, int64, error)
	MarkAsRead(ctx context.Context, id, userID uint) error
	MarkAllAsRead(ctx context.Context, userID uint) error

	RegisterDeviceToken(ctx context.Context, userID uint, req *RegisterDeviceTokenRequest) error
	RemoveDeviceToken(ctx context.Context, userID uint, deviceToken string) error

	// HandleEventClosed fans an event-closed message out to staff and
	// admin users as in-app notifications plus a push. Invoked by the
	// kafka consumer.
	HandleEventClosed(ctx context.Context, msg utils.EventClosedMessage) error
}

type service struct {
	repo     Repository
	authRepo *auth.Repository
	fcm      Channel
	email    Channel
}

func NewService(repo Repository, authRepo *auth.Repository, mailer *utils.Mailer) Service {
	return &service{
		repo:     repo,
		authRepo: authRepo,
		fcm:      NewFCMChannel(),
		email:    NewEmailChannel(mailer),
	}
}

func (s *service) ListMyNotifications(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]InAppNotification, int64, error) {
	list, err := s.repo.ListInAppByUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return list, unread, nil
}

func (s *service) MarkAsRead(ctx context.Context, id, userID uint) error {
	return s.repo.MarkAsRead(ctx, id, userID)
}

func (s *service) MarkAllAsRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *service) RegisterDeviceToken(ctx context.Context, userID uint, req *RegisterDeviceTokenRequest) error {
	return s.repo.UpsertDeviceToken(ctx, &FCMDeviceToken{
		UserID:      userID,
		DeviceToken: req.DeviceToken,
		DeviceType:  req.DeviceType,
		DeviceName:  req.DeviceName,
	})
}

func (s *service) RemoveDeviceToken(ctx context.Context, userID uint, deviceToken string) error {
	return s.repo.DeactivateDeviceToken(ctx, userID, deviceToken)
}

func (s *service) HandleEventClosed(ctx context.Context, msg utils.EventClosedMessage) error {
	title := "Event closed: " + msg.EventName
	body := fmt.Sprintf("%s (%s) was closed with %d attendee(s) credited.",
		msg.EventName, strings.ToLower(msg.CategoryCode), len(msg.CreditedIDs))

	users, err := s.authRepo.FindUsersByRoles([]string{middleware.RoleAdmin, middleware.RoleStaff})
	if err != nil {
		return err
	}

	userIDs := make([]uint, 0, len(users))
	emails := make([]string, 0, len(users))
	for _, u := range users {
		userIDs = append(userIDs, u.ID)
		emails = append(emails, u.Email)
		err := s.repo.CreateInApp(ctx, &InAppNotification{
			UserID:   u.ID,
			Title:    title,
			Message:  body,
			Category: CategoryEvent,
			EventID:  &msg.EventID,
		})
		if err != nil {
			return err
		}
	}

	// Mail and push delivery are best-effort; the in-app rows are the record.
	if len(emails) > 0 {
		if err := s.email.Send(emails, title, body); err != nil {
			log.Printf("⚠️  email delivery for event %d failed: %v\n", msg.EventID, err)
		}
	}

	if utils.IsFCMEnabled() {
		tokens, err := s.repo.ActiveTokensForUsers(ctx, userIDs)
		if err != nil {
			return err
		}
		if len(tokens) > 0 {
			if err := s.fcm.Send(tokens, title, body); err != nil {
				log.Printf("⚠️  push delivery for event %d failed: %v\n", msg.EventID, err)
			}
		}
	}

	return nil
}
