package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kart-io/datasphere/internal/model"
	"github.com/kart-io/datasphere/pkg/utils/errors"
)

func newTestStore(t *testing.T) Factory {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	s := NewStore(db)
	require.NoError(t, s.AutoMigrate())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, s Factory, id string) *model.User {
	t.Helper()
	u := &model.User{ID: id, Name: "user-" + id, Email: id + "@example.com"}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func seedDataset(t *testing.T, s Factory, owner, title string, tags ...string) *model.Dataset {
	t.Helper()
	ctx := context.Background()
	d := &model.Dataset{Title: title, URL: "https://drive.google.com/file/d/" + title, CreatedBy: owner}
	require.NoError(t, s.Datasets().Create(ctx, d))
	if len(tags) > 0 {
		ts, err := s.Tags().Upsert(ctx, tags)
		require.NoError(t, err)
		require.NoError(t, s.Tags().Replace(ctx, d.ID, ts))
	}
	return d
}

func TestUserStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "u1")

	t.Run("duplicate email conflicts", func(t *testing.T) {
		err := s.Users().Create(ctx, &model.User{ID: "u2", Name: "x", Email: "u1@example.com"})
		assert.True(t, errors.IsCode(err, errors.ErrUserAlreadyExists.Code))
	})

	t.Run("get missing user", func(t *testing.T) {
		_, err := s.Users().Get(ctx, "missing")
		assert.True(t, errors.IsCode(err, errors.ErrUserNotFound.Code))
	})

	t.Run("defaults", func(t *testing.T) {
		u, err := s.Users().Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, model.RoleUser, u.Role)
		assert.Equal(t, 0, u.Contributions)
	})

	t.Run("exists by id or email", func(t *testing.T) {
		ok, err := s.Users().ExistsByIDOrEmail(ctx, "other", "u1@example.com")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.Users().ExistsByIDOrEmail(ctx, "other", "other@example.com")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("contributions and rank", func(t *testing.T) {
		seedUser(t, s, "u3")
		require.NoError(t, s.Users().AddContributions(ctx, "u3", 2))
		require.NoError(t, s.Users().AddContributions(ctx, "u1", 1))

		above, err := s.Users().CountAbove(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), above)

		total, list, err := s.Users().ListByContributions(ctx, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, list, 2)
		assert.Equal(t, "u3", list[0].ID)
	})

	t.Run("delete missing user", func(t *testing.T) {
		err := s.Users().Delete(ctx, "missing")
		assert.True(t, errors.IsCode(err, errors.ErrUserNotFound.Code))
	})
}

func TestDatasetStore_List(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "owner")
	seedUser(t, s, "fan")

	older := seedDataset(t, s, "owner", "Weather Archive", "climate", "csv")
	time.Sleep(2 * time.Millisecond)
	newer := seedDataset(t, s, "owner", "Traffic Counts", "city")

	require.NoError(t, s.Likes().Create(ctx, &model.Like{UserID: "fan", DatasetID: older.ID}))
	require.NoError(t, s.Comments().Create(ctx, &model.Comment{Text: "nice", UserID: "fan", DatasetID: newer.ID}))
	require.NoError(t, s.Comments().Create(ctx, &model.Comment{Text: "again", UserID: "fan", DatasetID: newer.ID}))

	require.NoError(t, s.Datasets().Update(ctx, older.ID, map[string]interface{}{"category": "climate", "size": 10.0}))
	require.NoError(t, s.Datasets().Update(ctx, newer.ID, map[string]interface{}{"category": "urban", "size": 50.0}))
	require.NoError(t, s.Datasets().SetVerified(ctx, newer.ID, true))

	size := func(v float64) *float64 { return &v }

	tests := []struct {
		name    string
		filter  DatasetFilter
		wantIDs []string
	}{
		{"newest first", DatasetFilter{Limit: 10}, []string{newer.ID, older.ID}},
		{"oldest first", DatasetFilter{Order: OrderByDateAsc, Limit: 10}, []string{older.ID, newer.ID}},
		{"most liked", DatasetFilter{Order: OrderByLikes, Limit: 10}, []string{older.ID, newer.ID}},
		{"most commented", DatasetFilter{Order: OrderByComments, Limit: 10}, []string{newer.ID, older.ID}},
		{"search is case insensitive", DatasetFilter{Search: "WEATHER", Limit: 10}, []string{older.ID}},
		{"tag filter", DatasetFilter{Tag: "city", Limit: 10}, []string{newer.ID}},
		{"category", DatasetFilter{Category: "climate", Limit: 10}, []string{older.ID}},
		{"unknown category", DatasetFilter{Category: "Climate", Limit: 10}, []string{}},
		{"max size", DatasetFilter{MaxSize: size(20), Limit: 10}, []string{older.ID}},
		{"min size", DatasetFilter{MinSize: size(20), Limit: 10}, []string{newer.ID}},
		{"size range", DatasetFilter{MinSize: size(10), MaxSize: size(50), Limit: 10}, []string{newer.ID, older.ID}},
		{"empty size range", DatasetFilter{MinSize: size(11), MaxSize: size(49), Limit: 10}, []string{}},
		{"verified only", DatasetFilter{VerifiedOnly: true, Limit: 10}, []string{newer.ID}},
		{"verified in category", DatasetFilter{VerifiedOnly: true, Category: "climate", Limit: 10}, []string{}},
		{"pagination", DatasetFilter{Offset: 1, Limit: 1}, []string{older.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, items, err := s.Datasets().List(ctx, tt.filter)
			require.NoError(t, err)

			ids := make([]string, 0, len(items))
			for _, item := range items {
				ids = append(ids, item.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	t.Run("counts and associations", func(t *testing.T) {
		total, items, err := s.Datasets().List(ctx, DatasetFilter{Order: OrderByLikes, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Equal(t, int64(1), items[0].LikeCount)
		assert.Equal(t, int64(2), items[1].CommentCount)
		require.NotNil(t, items[0].Contributor)
		assert.Equal(t, "owner", items[0].Contributor.ID)
		assert.Len(t, items[0].Tags, 2)
	})
}

func TestDatasetStore_ListSearchIsLiteral(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "owner")
	plain := seedDataset(t, s, "owner", "alpha")
	underscored := seedDataset(t, s, "owner", "rain_fall")
	percent := seedDataset(t, s, "owner", "100% coverage")
	bang := seedDataset(t, s, "owner", "wow!")

	tests := []struct {
		search  string
		wantIDs []string
	}{
		{"_", []string{underscored.ID}},
		{"%", []string{percent.ID}},
		{"!", []string{bang.ID}},
		{"n_f", []string{underscored.ID}},
		{"ALPHA", []string{plain.ID}},
		{"a_p", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			total, items, err := s.Datasets().List(ctx, DatasetFilter{Search: tt.search, Limit: 10})
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.wantIDs)), total)

			ids := make([]string, 0, len(items))
			for _, item := range items {
				ids = append(ids, item.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestDatasetStore_ListTieBreak(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "owner")
	first := seedDataset(t, s, "owner", "first")
	time.Sleep(2 * time.Millisecond)
	second := seedDataset(t, s, "owner", "second")
	time.Sleep(2 * time.Millisecond)
	third := seedDataset(t, s, "owner", "third")

	for _, order := range []DatasetOrder{OrderByLikes, OrderByComments} {
		_, items, err := s.Datasets().List(ctx, DatasetFilter{Order: order, Limit: 10})
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, []string{third.ID, second.ID, first.ID},
			[]string{items[0].ID, items[1].ID, items[2].ID})

		_, page, err := s.Datasets().List(ctx, DatasetFilter{Order: order, Offset: 1, Limit: 1})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, second.ID, page[0].ID)
	}
}

func TestDatasetStore_DeleteCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "owner")
	seedUser(t, s, "fan")
	d := seedDataset(t, s, "owner", "Cascade", "x")

	require.NoError(t, s.Likes().Create(ctx, &model.Like{UserID: "fan", DatasetID: d.ID}))
	require.NoError(t, s.Comments().Create(ctx, &model.Comment{Text: "hi", UserID: "fan", DatasetID: d.ID}))

	require.NoError(t, s.TX(ctx, func(ctx context.Context) error {
		return s.Datasets().Delete(ctx, d.ID)
	}))

	_, err := s.Datasets().Get(ctx, d.ID)
	assert.True(t, errors.IsCode(err, errors.ErrDatasetNotFound.Code))

	likes, err := s.Likes().CountByDataset(ctx, d.ID)
	require.NoError(t, err)
	assert.Zero(t, likes)

	total, _, err := s.Comments().ListByDataset(ctx, d.ID, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)

	err = s.Datasets().Delete(ctx, d.ID)
	assert.True(t, errors.IsCode(err, errors.ErrDatasetNotFound.Code))
}

func TestLikeStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "owner")
	d := seedDataset(t, s, "owner", "Liked")

	require.NoError(t, s.Likes().Create(ctx, &model.Like{UserID: "owner", DatasetID: d.ID}))

	err := s.Likes().Create(ctx, &model.Like{UserID: "owner", DatasetID: d.ID})
	assert.True(t, errors.IsCode(err, errors.ErrLikeConflict.Code))

	ok, err := s.Likes().Exists(ctx, "owner", d.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	removed, err := s.Likes().Delete(ctx, "owner", d.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Likes().Delete(ctx, "owner", d.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestNotificationStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Notifications().Create(ctx, &model.Notification{
			UserID:  "owner",
			Type:    model.NotificationLike,
			Content: fmt.Sprintf("n%d", i),
		}))
	}

	unread, err := s.Notifications().CountUnread(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	items, err := s.Notifications().ListByUser(ctx, "owner", 2)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	marked, err := s.Notifications().MarkAllRead(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, int64(3), marked)

	unread, err = s.Notifications().CountUnread(ctx, "owner")
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestTagStore_UpsertReusesTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Tags().Upsert(ctx, []string{"a", "b"})
	require.NoError(t, err)
	second, err := s.Tags().Upsert(ctx, []string{"b", "c"})
	require.NoError(t, err)

	assert.Equal(t, first[1].ID, second[0].ID)
	assert.NotEqual(t, first[0].ID, second[1].ID)
}

func TestStatsStore_PerMonth(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "owner")
	jan := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)
	for _, at := range []time.Time{jan, jan.Add(time.Hour), feb} {
		d := &model.Dataset{Title: "t", URL: "https://drive.google.com/x", CreatedBy: "owner", CreatedAt: at}
		require.NoError(t, s.Datasets().Create(ctx, d))
	}

	buckets, err := s.Stats().DatasetsPerMonth(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"2024-01": 2, "2024-02": 1}, buckets)

	likes, err := s.Stats().LikesPerMonth(ctx)
	require.NoError(t, err)
	assert.Empty(t, likes)
}

func TestTX_RollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.TX(ctx, func(ctx context.Context) error {
		if err := s.Users().Create(ctx, &model.User{ID: "tmp", Name: "tmp", Email: "tmp@example.com"}); err != nil {
			return err
		}
		return errors.ErrInternal
	})
	require.Error(t, err)

	_, err = s.Users().Get(ctx, "tmp")
	assert.True(t, errors.IsCode(err, errors.ErrUserNotFound.Code))
}
