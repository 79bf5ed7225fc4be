package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/models"
	"pitaka/internal/pagination"
)

// notificationService handles reading and acknowledging notifications.
// Creation happens inside the alert, recurring, and statement services so
// the dedupe logic stays next to the producer.
type notificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new notification service.
func NewNotificationService(db *gorm.DB) NotificationServicer {
	return &notificationService{db: db}
}

// GetUserNotifications returns a page of the user's notifications, newest
// first.
func (s *notificationService) GetUserNotifications(userID string, page pagination.PageRequest, unreadOnly bool) (*pagination.PageResponse[models.Notification], error) {
	base := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		base = base.Where("is_read = ?", false)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var notifications []models.Notification
	err := base.Session(&gorm.Session{}).
		Order("created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&notifications).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(notifications, page.Page, page.PageSize, total)
	return &resp, nil
}

// MarkRead marks one notification as read.
func (s *notificationService) MarkRead(userID, notificationID string) (*models.Notification, error) {
	var notification models.Notification
	err := s.db.Where("id = ? AND user_id = ?", notificationID, userID).First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotificationNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if notification.IsRead {
		return &notification, nil
	}

	now := time.Now()
	err = s.db.Model(&notification).Updates(map[string]interface{}{
		"is_read": true,
		"read_at": now,
	}).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &notification, nil
}

// MarkAllRead marks every unread notification as read and returns the count.
func (s *notificationService) MarkAllRead(userID string) (int64, error) {
	now := time.Now()
	res := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	return res.RowsAffected, nil
}
