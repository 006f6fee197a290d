package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/datasphere/internal/datasphere/biz"
	"github.com/kart-io/datasphere/internal/model"
	"github.com/kart-io/datasphere/internal/pkg/httputils"
	"github.com/kart-io/datasphere/pkg/security/auth"
	"github.com/kart-io/datasphere/pkg/utils/errors"
	"github.com/kart-io/datasphere/pkg/utils/response"
)

// UserHandler handles accounts and public profiles.
type UserHandler struct {
	svc *biz.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *biz.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// SignUpRequest is the request body for creating the caller's account.
type SignUpRequest struct {
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
}

// UpdateMeRequest is the request body for updating the caller's profile.
type UpdateMeRequest struct {
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
}

// UserList is the body of GET /users.
type UserList struct {
	Data   []*biz.PublicUser `json:"data"`
	Total  int64             `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// MeResponse is the body of GET /users/me.
type MeResponse struct {
	Data        *model.User   `json:"data"`
	Leaderboard *biz.Standing `json:"leaderboard"`
}

// SignUp handles POST /users.
func (h *UserHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if !bindJSON(c, &req) {
		return
	}

	id := auth.IdentityFromContext(c.Request.Context())
	if id == nil {
		httputils.WriteError(c, errors.ErrUnauthorized)
		return
	}

	user, err := h.svc.SignUp(c.Request.Context(), id, req.Name, req.Avatar)
	if err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteCreated(c, nil, response.Data(user))
}

// List handles GET /users.
func (h *UserHandler) List(c *gin.Context) {
	offset := queryInt(c, "offset")
	r, err := h.svc.List(c.Request.Context(), offset, queryInt(c, "limit"))
	if err != nil {
		httputils.WriteError(c, err)
		return
	}
	if offset < 0 {
		offset = 0
	}
	httputils.WriteResponse(c, nil, &UserList{Data: r.Items, Total: r.Total, Limit: r.Limit, Offset: offset})
}

// Profile handles GET /users/:id.
func (h *UserHandler) Profile(c *gin.Context) {
	user, err := h.svc.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteResponse(c, nil, response.Data(user))
}

// Me handles GET /users/me.
func (h *UserHandler) Me(c *gin.Context) {
	user, standing, err := h.svc.Me(c.Request.Context(), subject(c))
	if err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteResponse(c, nil, &MeResponse{Data: user, Leaderboard: standing})
}

// UpdateMe handles PATCH /users/me.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateMeRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.svc.UpdateMe(c.Request.Context(), subject(c), req.Name, req.Avatar)
	if err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteResponse(c, nil, response.Data(user))
}

// DeleteMe handles DELETE /users/me.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	if err := h.svc.DeleteAccount(c.Request.Context(), subject(c)); err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteResponse(c, nil, response.Message("Account deleted successfully"))
}
