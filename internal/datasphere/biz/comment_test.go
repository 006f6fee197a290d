package biz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/datasphere/internal/model"
	"github.com/kart-io/datasphere/pkg/utils/errors"
)

func TestCommentService_Add(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "alice", model.RoleUser)
	env.user(t, "bob", model.RoleUser)
	d := env.dataset(t, "alice", "weather")

	t.Run("blank text", func(t *testing.T) {
		_, err := env.svc.Comments.Add(ctx, "bob", d.ID, "   ")
		assert.True(t, errors.IsCode(err, errors.ErrInvalidCommentText.Code))
	})

	t.Run("unknown dataset", func(t *testing.T) {
		_, err := env.svc.Comments.Add(ctx, "bob", "missing", "hi")
		assert.True(t, errors.IsCode(err, errors.ErrDatasetNotFound.Code))
	})

	t.Run("notifies owner", func(t *testing.T) {
		c, err := env.svc.Comments.Add(ctx, "bob", d.ID, " useful ")
		require.NoError(t, err)
		assert.Equal(t, "useful", c.Text)
		require.NotNil(t, c.User)
		assert.Equal(t, "bob", c.User.ID)

		items, err := env.svc.Notifications.List(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, model.NotificationComment, items[0].Type)
		assert.Equal(t, `user bob commented on your dataset "weather"`, items[0].Content)
	})

	t.Run("own dataset is silent", func(t *testing.T) {
		_, err := env.svc.Comments.Add(ctx, "alice", d.ID, "thanks")
		require.NoError(t, err)
		unread, err := env.svc.Notifications.UnreadCount(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(1), unread)
	})
}

func TestCommentService_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "alice", model.RoleUser)
	d := env.dataset(t, "alice", "weather")

	var last *model.Comment
	for _, text := range []string{"one", "two", "three"} {
		c, err := env.svc.Comments.Add(ctx, "alice", d.ID, text)
		require.NoError(t, err)
		last = c
		time.Sleep(5 * time.Millisecond)
	}

	r, err := env.svc.Comments.List(ctx, d.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), r.Total)
	assert.Equal(t, 1, r.Page)
	assert.Equal(t, 10, r.Limit)
	require.Len(t, r.Items, 3)
	assert.Equal(t, last.ID, r.Items[0].ID, "newest first")
	require.NotNil(t, r.Items[0].User)

	r, err = env.svc.Comments.List(ctx, d.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, r.Items, 1)
	assert.Equal(t, "one", r.Items[0].Text)
}

// TestCommentService_Delete 测试评论删除权限
func TestCommentService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "alice", model.RoleUser)
	env.user(t, "bob", model.RoleUser)
	env.user(t, "mod", model.RoleModerator)
	d := env.dataset(t, "alice", "weather")
	other := env.dataset(t, "alice", "traffic")

	c, err := env.svc.Comments.Add(ctx, "bob", d.ID, "first")
	require.NoError(t, err)

	err = env.svc.Comments.Delete(ctx, "alice", d.ID, c.ID)
	assert.True(t, errors.IsCode(err, errors.ErrForbidden.Code), "the dataset owner is not the author")
	_, err = env.store.Comments().Get(ctx, c.ID)
	assert.NoError(t, err, "comment kept")

	err = env.svc.Comments.Delete(ctx, "bob", other.ID, c.ID)
	assert.True(t, errors.IsCode(err, errors.ErrCommentNotFound.Code), "comment must belong to the dataset")

	err = env.svc.Comments.Delete(ctx, "bob", d.ID, "missing")
	assert.True(t, errors.IsCode(err, errors.ErrCommentNotFound.Code))

	require.NoError(t, env.svc.Comments.Delete(ctx, "mod", d.ID, c.ID))

	c, err = env.svc.Comments.Add(ctx, "bob", d.ID, "second")
	require.NoError(t, err)
	require.NoError(t, env.svc.Comments.Delete(ctx, "bob", d.ID, c.ID))
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "alice", model.RoleUser)
	env.user(t, "bob", model.RoleUser)
	d := env.dataset(t, "alice", "weather")

	_, err := env.svc.Likes.Toggle(ctx, "bob", d.ID)
	require.NoError(t, err)
	_, err = env.svc.Comments.Add(ctx, "bob", d.ID, "hi")
	require.NoError(t, err)

	unread, err := env.svc.Notifications.UnreadCount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	require.NoError(t, env.svc.Notifications.MarkAllRead(ctx, "alice"))

	unread, err = env.svc.Notifications.UnreadCount(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, unread)

	items, err := env.svc.Notifications.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, n := range items {
		assert.True(t, n.IsRead)
	}
}
