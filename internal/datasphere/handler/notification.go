package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/datasphere/internal/datasphere/biz"
	"github.com/kart-io/datasphere/internal/model"
	"github.com/kart-io/datasphere/internal/pkg/httputils"
	"github.com/kart-io/datasphere/pkg/utils/response"
)

// NotificationHandler handles the caller's notification inbox.
type NotificationHandler struct {
	svc *biz.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(svc *biz.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// NotificationList is the body of GET /notifications.
type NotificationList struct {
	Notifications []*model.Notification `json:"notifications"`
}

// UnreadCount is the body of GET /notifications/unread-count.
type UnreadCount struct {
	UnreadCount int64 `json:"unreadCount"`
}

// List handles GET /notifications.
func (h *NotificationHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), subject(c))
	if err != nil {
		httputils.WriteError(c, err)
		return
	}
	if items == nil {
		items = []*model.Notification{}
	}
	httputils.WriteResponse(c, nil, &NotificationList{Notifications: items})
}

// MarkAllRead handles POST /notifications/mark-read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.svc.MarkAllRead(c.Request.Context(), subject(c)); err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteResponse(c, nil, response.Message("Notifications marked as read"))
}

// UnreadCount handles GET /notifications/unread-count.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.svc.UnreadCount(c.Request.Context(), subject(c))
	if err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteResponse(c, nil, &UnreadCount{UnreadCount: n})
}
