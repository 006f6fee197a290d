package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/datasphere/internal/datasphere/biz"
	"github.com/kart-io/datasphere/internal/pkg/httputils"
)

// LikeHandler handles dataset likes.
type LikeHandler struct {
	svc *biz.LikeService
}

// NewLikeHandler creates a new LikeHandler.
func NewLikeHandler(svc *biz.LikeService) *LikeHandler {
	return &LikeHandler{svc: svc}
}

// Toggle handles POST /datasets/:id/likes.
func (h *LikeHandler) Toggle(c *gin.Context) {
	state, err := h.svc.Toggle(c.Request.Context(), subject(c), c.Param("id"))
	httputils.WriteResponse(c, err, state)
}

// Status handles GET /datasets/:id/likes.
func (h *LikeHandler) Status(c *gin.Context) {
	state, err := h.svc.Status(c.Request.Context(), subject(c), c.Param("id"))
	httputils.WriteResponse(c, err, state)
}
