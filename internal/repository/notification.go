package repository

import (
	"context"
	"fmt"

	"github.com/arenahq/competition-api/internal/domain"
	"github.com/arenahq/competition-api/internal/repository/dao"
)

type NotificationDAO interface {
	Insert(ctx context.Context, notification dao.Notification) (dao.Notification, error)
	FindByRecipient(ctx context.Context, email string) ([]dao.Notification, error)
}

type NotificationRepository struct {
	dao NotificationDAO
}

func NewNotificationRepository(dao NotificationDAO) *NotificationRepository {
	return &NotificationRepository{
		dao: dao,
	}
}

func (r *NotificationRepository) Create(ctx context.Context, notification domain.Notification) (domain.Notification, error) {
	created, err := r.dao.Insert(ctx, dao.Notification{
		EventID:        notification.EventID,
		Type:           notification.Type,
		Title:          notification.Title,
		Message:        notification.Message,
		RecipientEmail: notification.RecipientEmail,
		CompetitionID:  notification.CompetitionID,
		TeamID:         notification.TeamID,
	})
	if err != nil {
		return domain.Notification{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *NotificationRepository) FindByRecipient(ctx context.Context, email string) ([]domain.Notification, error) {
	found, err := r.dao.FindByRecipient(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByRecipient -> %w", err)
	}

	notifications := make([]domain.Notification, 0, len(found))
	for _, n := range found {
		notifications = append(notifications, r.daoToDomain(n))
	}

	return notifications, nil
}

func (r *NotificationRepository) daoToDomain(n dao.Notification) domain.Notification {
	return domain.Notification{
		ID:             n.ID,
		EventID:        n.EventID,
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
		RecipientEmail: n.RecipientEmail,
		CompetitionID:  n.CompetitionID,
		TeamID:         n.TeamID,
		Read:           n.Read,
		CreatedAt:      n.CreatedAt,
	}
}
