package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/datasphere/internal/datasphere/biz"
	"github.com/kart-io/datasphere/internal/model"
	"github.com/kart-io/datasphere/internal/pkg/httputils"
	"github.com/kart-io/datasphere/pkg/utils/response"
)

// CommentHandler handles dataset comments.
type CommentHandler struct {
	svc *biz.CommentService
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(svc *biz.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// AddCommentRequest is the request body for adding a comment.
type AddCommentRequest struct {
	Text string `json:"text"`
}

// CommentPage is one page of comments of a dataset.
type CommentPage struct {
	Comments []*model.Comment `json:"comments"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}

// List handles GET /datasets/:id/comments.
func (h *CommentHandler) List(c *gin.Context) {
	r, err := h.svc.List(c.Request.Context(), c.Param("id"), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteResponse(c, nil, &CommentPage{Comments: r.Items, Total: r.Total, Page: r.Page, Limit: r.Limit})
}

// Add handles POST /datasets/:id/comments.
func (h *CommentHandler) Add(c *gin.Context) {
	var req AddCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.svc.Add(c.Request.Context(), subject(c), c.Param("id"), req.Text)
	if err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteCreated(c, nil, response.Data(comment))
}

// Delete handles DELETE /datasets/:id/comments/:commentId.
func (h *CommentHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), subject(c), c.Param("id"), c.Param("commentId")); err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteResponse(c, nil, response.Message("Comment deleted"))
}
