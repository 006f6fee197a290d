package biz

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kart-io/datasphere/internal/datasphere/cache"
	"github.com/kart-io/datasphere/internal/datasphere/store"
	"github.com/kart-io/datasphere/internal/model"
	"github.com/kart-io/datasphere/pkg/infra/pool"
	"github.com/kart-io/datasphere/pkg/security/authz"
)

type testEnv struct {
	store store.Factory
	svc   *Services
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithCache(t, cache.NewNoop())
}

func newTestEnvWithCache(t *testing.T, c cache.Cache) *testEnv {
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

	s := store.NewStore(db)
	require.NoError(t, s.AutoMigrate())

	policy, err := authz.NewPolicy(authz.DefaultGrants)
	require.NoError(t, err)

	p, err := pool.NewPool("stats", pool.DefaultPoolConfig())
	require.NoError(t, err)

	t.Cleanup(func() {
		p.Release()
		_ = s.Close()
	})

	return &testEnv{
		store: s,
		svc:   New(s, authz.New(s.Users(), policy), c, p, 0),
	}
}

func (e *testEnv) user(t *testing.T, id, role string) *model.User {
	t.Helper()
	u := &model.User{ID: id, Name: "user " + id, Email: id + "@example.com", Role: role}
	require.NoError(t, e.store.Users().Create(context.Background(), u))
	return u
}

func (e *testEnv) dataset(t *testing.T, owner, title string, tags ...string) *model.Dataset {
	t.Helper()
	d, err := e.svc.Datasets.Create(context.Background(), owner, &DatasetInput{
		Title: title,
		URL:   "https://drive.google.com/file/d/" + title,
		Tags:  tags,
	})
	require.NoError(t, err)
	return d
}

func (e *testEnv) contributions(t *testing.T, id string) int {
	t.Helper()
	u, err := e.store.Users().Get(context.Background(), id)
	require.NoError(t, err)
	return u.Contributions
}

func strPtr(s string) *string { return &s }
