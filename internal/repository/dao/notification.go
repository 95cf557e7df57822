package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Notification struct {
	ID uint `gorm:"primaryKey"`

	EventID        string `gorm:"uniqueIndex;not null"`
	Type           string `gorm:"not null"`
	Title          string `gorm:"not null"`
	Message        string `gorm:"not null"`
	RecipientEmail string `gorm:"not null;index"`

	CompetitionID uint
	TeamID        uint

	Read bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null"`
}

type NotificationDAO struct {
	db *gorm.DB
}

func NewNotificationDAO(db *gorm.DB) *NotificationDAO {
	return &NotificationDAO{
		db: db,
	}
}

func (d *NotificationDAO) Insert(ctx context.Context, notification Notification) (Notification, error) {
	result := d.db.WithContext(ctx).Create(&notification)
	if result.Error != nil {
		return Notification{}, result.Error
	}

	return notification, nil
}

func (d *NotificationDAO) FindByRecipient(ctx context.Context, email string) ([]Notification, error) {
	var notifications []Notification

	result := d.db.WithContext(ctx).
		Where("recipient_email = ?", email).
		Order("created_at DESC").
		Find(&notifications)
	if result.Error != nil {
		return nil, result.Error
	}

	return notifications, nil
}
