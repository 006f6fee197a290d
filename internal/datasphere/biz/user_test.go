package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/datasphere/internal/model"
	"github.com/kart-io/datasphere/pkg/security/auth/identity"
	"github.com/kart-io/datasphere/pkg/utils/errors"
)

func TestUserService_SignUp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := &identity.Identity{UID: "alice", Email: "alice@example.com"}

	tests := []struct {
		name   string
		id     *identity.Identity
		uname  string
		avatar *string
		want   *errors.Errno
	}{
		{"short name", alice, " a ", nil, errors.ErrInvalidName},
		{"no email", &identity.Identity{UID: "x"}, "Xavier", nil, errors.ErrEmailRequired},
		{"bad avatar", alice, "Alice", strPtr("not a url"), errors.ErrInvalidAvatar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Users.SignUp(ctx, tt.id, tt.uname, tt.avatar)
			assert.True(t, errors.IsCode(err, tt.want.Code), "got %v", err)
		})
	}

	u, err := env.svc.Users.SignUp(ctx, alice, "  Alice  ", strPtr(""))
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, model.RoleUser, u.Role)
	assert.Nil(t, u.Avatar)

	_, err = env.svc.Users.SignUp(ctx, alice, "Alice", nil)
	assert.True(t, errors.IsCode(err, errors.ErrUserAlreadyExists.Code))

	_, err = env.svc.Users.SignUp(ctx, &identity.Identity{UID: "other", Email: "alice@example.com"}, "Other", nil)
	assert.True(t, errors.IsCode(err, errors.ErrUserAlreadyExists.Code), "email is unique too")
}

// TestUserService_Me 测试排名与等级计算
func TestUserService_Me(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "alice", model.RoleUser)
	env.user(t, "bob", model.RoleUser)
	env.user(t, "carol", model.RoleUser)

	env.dataset(t, "alice", "a1")
	env.dataset(t, "alice", "a2")
	env.dataset(t, "bob", "b1")

	u, standing, err := env.svc.Users.Me(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", u.ID)
	assert.Len(t, u.Datasets, 1)
	assert.Equal(t, &Standing{Rank: 2, Tier: "Top 3 Contributor"}, standing)

	_, standing, err = env.svc.Users.Me(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, int64(3), standing.Rank)

	_, _, err = env.svc.Users.Me(ctx, "ghost")
	assert.True(t, errors.IsCode(err, errors.ErrUserNotFound.Code))
}

func TestTier(t *testing.T) {
	tests := []struct {
		rank int64
		want string
	}{
		{1, "Top 3 Contributor"},
		{3, "Top 3 Contributor"},
		{4, "Top 10 Contributor"},
		{10, "Top 10 Contributor"},
		{11, "Top 50 Contributor"},
		{50, "Top 50 Contributor"},
		{100, "Top 100 Contributor"},
		{101, "Top 100+ Contributor"},
		{500, "Top 100+ Contributor"},
		{501, "Top 500+ Contributor"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Tier(tt.rank), "rank %d", tt.rank)
	}
}

func TestUserService_UpdateMe(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "alice", model.RoleUser)

	tests := []struct {
		name   string
		uname  *string
		avatar *string
		want   *errors.Errno
	}{
		{"nothing", nil, nil, errors.ErrNothingToUpdate},
		{"empty values", strPtr(""), strPtr(""), errors.ErrNothingToUpdate},
		{"short name", strPtr("x"), nil, errors.ErrInvalidName},
		{"bad avatar", nil, strPtr("ftp://host/a.png"), errors.ErrInvalidAvatar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Users.UpdateMe(ctx, "alice", tt.uname, tt.avatar)
			assert.True(t, errors.IsCode(err, tt.want.Code), "got %v", err)
		})
	}

	u, err := env.svc.Users.UpdateMe(ctx, "alice", strPtr(" Alicia "), strPtr("https://cdn.example.com/a.png"))
	require.NoError(t, err)
	assert.Equal(t, "Alicia", u.Name)
	require.NotNil(t, u.Avatar)
	assert.Equal(t, "https://cdn.example.com/a.png", *u.Avatar)
	assert.Equal(t, model.RoleUser, u.Role)

	_, err = env.svc.Users.UpdateMe(ctx, "ghost", strPtr("Ghost"), nil)
	assert.True(t, errors.IsCode(err, errors.ErrUserNotFound.Code))
}

// TestUserService_DeleteAccount 测试账号删除级联
func TestUserService_DeleteAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "alice", model.RoleUser)
	env.user(t, "bob", model.RoleUser)

	mine := env.dataset(t, "alice", "mine")
	theirs := env.dataset(t, "bob", "theirs")

	_, err := env.svc.Comments.Add(ctx, "bob", mine.ID, "on alice's data")
	require.NoError(t, err)
	_, err = env.svc.Comments.Add(ctx, "alice", theirs.ID, "on bob's data")
	require.NoError(t, err)
	_, err = env.svc.Likes.Toggle(ctx, "alice", theirs.ID)
	require.NoError(t, err)
	_, err = env.svc.Likes.Toggle(ctx, "bob", mine.ID)
	require.NoError(t, err)

	require.NoError(t, env.svc.Users.DeleteAccount(ctx, "alice"))

	_, err = env.store.Users().Get(ctx, "alice")
	assert.True(t, errors.IsCode(err, errors.ErrUserNotFound.Code))
	_, err = env.svc.Datasets.Get(ctx, mine.ID)
	assert.True(t, errors.IsCode(err, errors.ErrDatasetNotFound.Code))

	d, err := env.svc.Datasets.Get(ctx, theirs.ID)
	require.NoError(t, err)
	assert.Zero(t, d.LikeCount)
	assert.Zero(t, d.CommentCount)

	var count int64
	require.NoError(t, env.store.DB().Model(&model.Notification{}).Where("user_id = ?", "alice").Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, env.store.DB().Model(&model.Comment{}).Where("dataset_id = ?", mine.ID).Count(&count).Error)
	assert.Zero(t, count)

	assert.Equal(t, 1, env.contributions(t, "bob"))

	err = env.svc.Users.DeleteAccount(ctx, "alice")
	assert.True(t, errors.IsCode(err, errors.ErrUserNotFound.Code))
}

func TestUserService_ListAndProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "alice", model.RoleUser)
	env.user(t, "bob", model.RoleUser)
	env.dataset(t, "bob", "b1")

	r, err := env.svc.Users.List(ctx, -5, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(2), r.Total)
	assert.Equal(t, 100, r.Limit)
	require.Len(t, r.Items, 2)
	assert.Equal(t, "bob", r.Items[0].ID, "most contributions first")

	r, err = env.svc.Users.List(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, r.Limit)
	require.Len(t, r.Items, 1)
	assert.Equal(t, "alice", r.Items[0].ID)

	p, err := env.svc.Users.Profile(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Contributions)
	require.Len(t, p.Datasets, 1)
	assert.Equal(t, "b1", p.Datasets[0].Title)

	_, err = env.svc.Users.Profile(ctx, "ghost")
	assert.True(t, errors.IsCode(err, errors.ErrUserNotFound.Code))
}
