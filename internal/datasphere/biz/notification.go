package biz

import (
	"context"
	"fmt"

	"github.com/kart-io/datasphere/internal/datasphere/store"
	"github.com/kart-io/datasphere/internal/model"
)

// NotificationListSize is how many notifications a listing returns.
const NotificationListSize = 50

// NotificationService handles the notification inbox.
type NotificationService struct {
	store store.Factory
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(s store.Factory) *NotificationService {
	return &NotificationService{store: s}
}

// List returns the latest notifications of uid, newest first.
func (s *NotificationService) List(ctx context.Context, uid string) ([]*model.Notification, error) {
	return s.store.Notifications().ListByUser(ctx, uid, NotificationListSize)
}

// MarkAllRead marks every unread notification of uid as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, uid string) error {
	_, err := s.store.Notifications().MarkAllRead(ctx, uid)
	return err
}

// UnreadCount counts the unread notifications of uid.
func (s *NotificationService) UnreadCount(ctx context.Context, uid string) (int64, error) {
	return s.store.Notifications().CountUnread(ctx, uid)
}

// notifyOwner tells the dataset owner about activity of actor. Activity on
// one's own dataset is not notified.
func notifyOwner(ctx context.Context, s store.Factory, kind string, actor *model.User, dataset *model.Dataset) error {
	if actor.ID == dataset.CreatedBy {
		return nil
	}

	var content string
	switch kind {
	case model.NotificationLike:
		content = fmt.Sprintf(`%s liked your dataset "%s"`, actor.Name, dataset.Title)
	case model.NotificationComment:
		content = fmt.Sprintf(`%s commented on your dataset "%s"`, actor.Name, dataset.Title)
	default:
		return fmt.Errorf("unknown notification type %q", kind)
	}

	return s.Notifications().Create(ctx, &model.Notification{
		UserID:  dataset.CreatedBy,
		Type:    kind,
		Content: content,
		RefID:   dataset.ID,
	})
}
