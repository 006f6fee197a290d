package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/datasphere/internal/datasphere/biz"
	"github.com/kart-io/datasphere/internal/model"
	"github.com/kart-io/datasphere/internal/pkg/httputils"
	"github.com/kart-io/datasphere/pkg/utils/response"
)

// AdminHandler handles account administration.
type AdminHandler struct {
	svc *biz.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc *biz.AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// UpdateRoleRequest is the request body for changing a user's role.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// Pagination describes a page of the admin user list.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"totalPages"`
}

// AdminUserList is the body of GET /admin/users.
type AdminUserList struct {
	Data       []*model.User `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	r, err := h.svc.ListUsers(c.Request.Context(), subject(c), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		httputils.WriteError(c, err)
		return
	}

	httputils.WriteResponse(c, nil, &AdminUserList{
		Data: r.Items,
		Pagination: Pagination{
			Total:      r.Total,
			Page:       r.Page,
			Limit:      r.Limit,
			TotalPages: biz.TotalPages(r.Total, r.Limit),
		},
	})
}

// UpdateRole handles PATCH /admin/users/:id.
func (h *AdminHandler) UpdateRole(c *gin.Context) {
	var req UpdateRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.svc.UpdateRole(c.Request.Context(), subject(c), c.Param("id"), req.Role)
	if err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteResponse(c, nil, response.Data(user))
}
