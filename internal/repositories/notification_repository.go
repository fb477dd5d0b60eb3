package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"taskflow_backend/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationCriteria narrows a user's notification listing.
type NotificationCriteria struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

type NotificationRepository interface {
	Create(notification *models.Notification) error
	FindByID(id string) (*models.Notification, error)
	FindByUser(userID string, criteria NotificationCriteria) ([]models.Notification, int64, int64, error)
	MarkAsRead(id string, at time.Time) error
	MarkAllAsRead(userID string, at time.Time) (int64, error)
	Delete(id string) error
	UnreadCount(userID string) (int64, error)
	HasDueSoonSince(taskID string, since time.Time) (bool, error)
	CleanOld(olderThan time.Time) (int64, error)

	GetPreferences(userID string) (*models.NotificationPreference, error)
	SavePreferences(prefs *models.NotificationPreference) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

func (r *notificationRepository) FindByID(id string) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.First(&notification, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &notification, nil
}

// FindByUser returns one page of notifications, the total matching count
// and the user's unread count, newest first.
func (r *notificationRepository) FindByUser(userID string, criteria NotificationCriteria) ([]models.Notification, int64, int64, error) {
	var notifications []models.Notification
	var total, unread int64

	query := r.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if criteria.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, 0, err
	}

	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&unread).Error
	if err != nil {
		return nil, 0, 0, err
	}

	err = query.Order("created_at DESC").
		Limit(criteria.Limit).Offset(criteria.Offset).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, 0, err
	}
	return notifications, total, unread, nil
}

func (r *notificationRepository) MarkAsRead(id string, at time.Time) error {
	result := r.db.Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllAsRead(userID string, at time.Time) (int64, error) {
	result := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) Delete(id string) error {
	result := r.db.Delete(&models.Notification{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepository) UnreadCount(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// HasDueSoonSince reports whether a due-soon notification for the task
// was already created after the given time. Used by the scanner to avoid
// re-alerting on every pass.
func (r *notificationRepository) HasDueSoonSince(taskID string, since time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("kind = ? AND created_at >= ?", models.NotificationTaskDueSoon, since).
		Where("metadata ->> 'taskId' = ?", taskID).
		Count(&count).Error
	return count > 0, err
}

func (r *notificationRepository) CleanOld(olderThan time.Time) (int64, error) {
	result := r.db.Where("is_read = ? AND created_at < ?", true, olderThan).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

// GetPreferences returns the user's preference row, creating the
// all-enabled default on first access.
func (r *notificationRepository) GetPreferences(userID string) (*models.NotificationPreference, error) {
	var prefs models.NotificationPreference
	err := r.db.First(&prefs, "user_id = ?", userID).Error
	if err == nil {
		return &prefs, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	prefs = models.NotificationPreference{
		UserID:                      userID,
		EmailEnabled:                true,
		MentionNotifications:        true,
		TaskAssignmentNotifications: true,
		DueDateNotifications:        true,
		ProjectUpdateNotifications:  true,
	}
	if err := r.db.Create(&prefs).Error; err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (r *notificationRepository) SavePreferences(prefs *models.NotificationPreference) error {
	return r.db.Save(prefs).Error
}
