package biz

import (
	"context"

	"github.com/kart-io/logger"
	"github.com/kart-io/datasphere/internal/datasphere/store"
	"github.com/kart-io/datasphere/internal/model"
	"github.com/kart-io/datasphere/pkg/security/authz"
)

// AdminService handles account administration.
type AdminService struct {
	store store.Factory
	authz *authz.Authorizer
}

// NewAdminService creates a new AdminService.
func NewAdminService(s store.Factory, a *authz.Authorizer) *AdminService {
	return &AdminService{store: s, authz: a}
}

// TotalPages returns how many pages of limit rows hold total rows.
func TotalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

// ListUsers returns one page of every account, newest first.
func (s *AdminService) ListUsers(ctx context.Context, uid string, page, limit int) (*PageResult[*model.User], error) {
	if _, err := s.authz.Require(ctx, uid, authz.CapViewAllUsers); err != nil {
		return nil, err
	}

	page, limit = AdminUserPager.Normalize(page, limit)
	total, users, err := s.store.Users().List(ctx, Offset(page, limit), limit)
	if err != nil {
		return nil, err
	}
	return &PageResult[*model.User]{Items: users, Total: total, Page: page, Limit: limit}, nil
}

// UpdateRole sets the role of targetID. The caller must manage users and
// role must be one of USER, MODERATOR or ADMIN.
func (s *AdminService) UpdateRole(ctx context.Context, uid, targetID, role string) (*model.User, error) {
	if _, err := s.authz.Require(ctx, uid, authz.CapManageUsers); err != nil {
		return nil, err
	}

	r, err := authz.ParseRole(role)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Users().Get(ctx, targetID); err != nil {
		return nil, err
	}
	if err := s.store.Users().Update(ctx, targetID, map[string]interface{}{"role": r.String()}); err != nil {
		return nil, err
	}

	logger.Infow("User role updated", "user_id", targetID, "role", r.String(), "admin_id", uid)
	return s.store.Users().Get(ctx, targetID)
}
