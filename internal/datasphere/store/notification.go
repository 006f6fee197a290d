package store

import (
	"context"

	"github.com/kart-io/datasphere/internal/model"
	"github.com/kart-io/datasphere/pkg/utils/errors"
)

// NotificationStore defines the notification storage interface.
type NotificationStore interface {
	Create(ctx context.Context, notification *model.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*model.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type notifications struct {
	ds *datastore
}

// Create creates a notification.
func (n *notifications) Create(ctx context.Context, notification *model.Notification) error {
	return dbError(n.ds.core(ctx).Create(notification).Error, nil, nil)
}

// ListByUser lists the latest notifications of a user.
func (n *notifications) ListByUser(ctx context.Context, userID string, limit int) ([]*model.Notification, error) {
	var items []*model.Notification
	err := n.ds.core(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return items, nil
}

// MarkAllRead marks every unread notification of a user as read.
func (n *notifications) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	result := n.ds.core(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		UpdateColumn("is_read", true)
	if result.Error != nil {
		return 0, errors.ErrDatabase.WithCause(result.Error)
	}
	return result.RowsAffected, nil
}

// CountUnread counts the unread notifications of a user.
func (n *notifications) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := n.ds.core(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, errors.ErrDatabase.WithCause(err)
	}
	return count, nil
}

// DeleteByUser deletes every notification addressed to userID.
func (n *notifications) DeleteByUser(ctx context.Context, userID string) error {
	return dbError(n.ds.core(ctx).Where("user_id = ?", userID).Delete(&model.Notification{}).Error, nil, nil)
}
