package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/datasphere/internal/model"
	"github.com/kart-io/datasphere/pkg/utils/errors"
)

// TestAdminService_UpdateRole 测试角色修改
func TestAdminService_UpdateRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "root", model.RoleAdmin)
	env.user(t, "mod", model.RoleModerator)
	env.user(t, "alice", model.RoleUser)

	tests := []struct {
		name   string
		caller string
		target string
		role   string
		want   *errors.Errno
	}{
		{"unknown role", "root", "alice", "SUPERUSER", errors.ErrInvalidRole},
		{"lower case role", "root", "alice", "admin", errors.ErrInvalidRole},
		{"moderator cannot", "mod", "alice", model.RoleAdmin, errors.ErrForbidden},
		{"no account", "ghost", "alice", model.RoleAdmin, errors.ErrAccountNotFound},
		{"unknown target", "root", "ghost", model.RoleUser, errors.ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Admin.UpdateRole(ctx, tt.caller, tt.target, tt.role)
			assert.True(t, errors.IsCode(err, tt.want.Code), "got %v", err)

			u, err := env.store.Users().Get(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, model.RoleUser, u.Role, "role unchanged")
		})
	}

	u, err := env.svc.Admin.UpdateRole(ctx, "root", "alice", model.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, model.RoleModerator, u.Role)

	// The promotion takes effect on the next check.
	d := env.dataset(t, "mod", "weather")
	_, err = env.svc.Datasets.ToggleVerify(ctx, "alice", d.ID)
	assert.NoError(t, err)
}

func TestAdminService_ListUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "root", model.RoleAdmin)
	env.user(t, "mod", model.RoleModerator)
	env.user(t, "alice", model.RoleUser)

	_, err := env.svc.Admin.ListUsers(ctx, "mod", 1, 10)
	assert.True(t, errors.IsCode(err, errors.ErrForbidden.Code))

	_, err = env.svc.Admin.ListUsers(ctx, "ghost", 1, 10)
	assert.True(t, errors.IsCode(err, errors.ErrAccountNotFound.Code))

	r, err := env.svc.Admin.ListUsers(ctx, "root", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), r.Total)
	assert.Equal(t, 1, r.Page)
	assert.Len(t, r.Items, 2)
	assert.Equal(t, int64(2), TotalPages(r.Total, r.Limit))
}
