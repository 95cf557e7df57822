package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arenahq/competition-api/internal/domain"
)

// NotificationSink receives lifecycle events. Delivery is fire-and-forget:
// implementations must never fail the operation that emitted the event.
type NotificationSink interface {
	Notify(ctx context.Context, notification domain.Notification)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification domain.Notification) (domain.Notification, error)
	FindByRecipient(ctx context.Context, email string) ([]domain.Notification, error)
}

type NotificationService struct {
	repo NotificationRepository
}

func NewNotificationService(repo NotificationRepository) *NotificationService {
	return &NotificationService{
		repo: repo,
	}
}

func (s *NotificationService) Notify(ctx context.Context, notification domain.Notification) {
	notification.EventID = uuid.NewString()

	if _, err := s.repo.Create(ctx, notification); err != nil {
		zap.L().Error("failed to deliver notification",
			zap.String("type", notification.Type),
			zap.String("recipient", notification.RecipientEmail),
			zap.Error(err))
	}
}

func (s *NotificationService) GetForRecipient(ctx context.Context, email string) ([]domain.Notification, error) {
	notifications, err := s.repo.FindByRecipient(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByRecipient -> %w", err)
	}

	return notifications, nil
}
