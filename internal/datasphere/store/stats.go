package store

import (
	"context"
	"time"

	"github.com/kart-io/datasphere/internal/model"
	"github.com/kart-io/datasphere/pkg/utils/errors"
)

// MonthLayout is the bucket key format of monthly statistics.
const MonthLayout = "2006-01"

// StatsStore aggregates activity per calendar month (UTC).
type StatsStore interface {
	DatasetsPerMonth(ctx context.Context) (map[string]int64, error)
	LikesPerMonth(ctx context.Context) (map[string]int64, error)
	CommentsPerMonth(ctx context.Context) (map[string]int64, error)
}

type stats struct {
	ds *datastore
}

func (s *stats) DatasetsPerMonth(ctx context.Context) (map[string]int64, error) {
	return s.perMonth(ctx, &model.Dataset{})
}

func (s *stats) LikesPerMonth(ctx context.Context) (map[string]int64, error) {
	return s.perMonth(ctx, &model.Like{})
}

func (s *stats) CommentsPerMonth(ctx context.Context) (map[string]int64, error) {
	return s.perMonth(ctx, &model.Comment{})
}

// perMonth buckets created_at in Go so the query stays portable across
// MySQL, PostgreSQL and SQLite date functions.
func (s *stats) perMonth(ctx context.Context, table interface{}) (map[string]int64, error) {
	var times []time.Time
	if err := s.ds.core(ctx).Model(table).Pluck("created_at", &times).Error; err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}

	buckets := make(map[string]int64)
	for _, t := range times {
		buckets[t.UTC().Format(MonthLayout)]++
	}
	return buckets, nil
}
