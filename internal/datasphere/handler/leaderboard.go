package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/datasphere/internal/datasphere/biz"
	"github.com/kart-io/datasphere/internal/pkg/httputils"
)

// LeaderboardHandler serves the public rankings.
type LeaderboardHandler struct {
	svc *biz.LeaderboardService
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(svc *biz.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{svc: svc}
}

// Get handles GET /leaderboard.
func (h *LeaderboardHandler) Get(c *gin.Context) {
	board, err := h.svc.Get(c.Request.Context(), queryInt(c, "page"), queryInt(c, "limit"))
	httputils.WriteResponse(c, err, board)
}
