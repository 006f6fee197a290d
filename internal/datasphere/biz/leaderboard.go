package biz

import (
	"context"
	"time"

	"github.com/kart-io/datasphere/internal/datasphere/cache"
	"github.com/kart-io/datasphere/internal/datasphere/store"
	"github.com/kart-io/datasphere/internal/model"
)

// LeaderboardService ranks contributors and datasets.
type LeaderboardService struct {
	store store.Factory
	cache cache.Cache
	ttl   time.Duration
}

// NewLeaderboardService creates a new LeaderboardService. A nil cache disables caching.
func NewLeaderboardService(s store.Factory, c cache.Cache, ttl time.Duration) *LeaderboardService {
	if c == nil {
		c = cache.NewNoop()
	}
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &LeaderboardService{store: s, cache: c, ttl: ttl}
}

// RankedDataset is a leaderboard dataset row.
type RankedDataset struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description *string            `json:"description"`
	Category    *string            `json:"category"`
	Size        *float64           `json:"size"`
	IsVerified  bool               `json:"isVerified"`
	CreatedAt   time.Time          `json:"createdAt"`
	LikeCount   int64              `json:"likeCount"`
	Contributor *model.UserSummary `json:"contributor"`
}

// LeaderboardMeta describes a leaderboard page.
type LeaderboardMeta struct {
	Page          int   `json:"page"`
	Limit         int   `json:"limit"`
	TotalUsers    int64 `json:"totalUsers"`
	TotalDatasets int64 `json:"totalDatasets"`
}

// Leaderboard is one page of both rankings.
type Leaderboard struct {
	TopUsers    []*store.UserRank `json:"topUsers"`
	TopDatasets []*RankedDataset  `json:"topDatasets"`
	Meta        LeaderboardMeta   `json:"meta"`
}

// Get returns a leaderboard page. Users are ranked by their live dataset
// count, datasets by like count. Pages are cached for the service TTL.
func (s *LeaderboardService) Get(ctx context.Context, page, limit int) (*Leaderboard, error) {
	page, limit = LeaderboardPager.Normalize(page, limit)

	board := &Leaderboard{}
	err := cache.Fetch(ctx, s.cache, cache.LeaderboardKey(page, limit), s.ttl, board, func(ctx context.Context) error {
		return s.load(ctx, board, page, limit)
	})
	if err != nil {
		return nil, err
	}
	return board, nil
}

func (s *LeaderboardService) load(ctx context.Context, board *Leaderboard, page, limit int) error {
	offset := Offset(page, limit)

	users, err := s.store.Users().TopByDatasetCount(ctx, offset, limit)
	if err != nil {
		return err
	}
	datasets, err := s.store.Datasets().TopByLikes(ctx, offset, limit)
	if err != nil {
		return err
	}
	totalUsers, err := s.store.Users().Count(ctx)
	if err != nil {
		return err
	}
	totalDatasets, err := s.store.Datasets().Count(ctx)
	if err != nil {
		return err
	}

	board.TopUsers = users
	if board.TopUsers == nil {
		board.TopUsers = []*store.UserRank{}
	}
	board.TopDatasets = make([]*RankedDataset, 0, len(datasets))
	for _, d := range datasets {
		board.TopDatasets = append(board.TopDatasets, &RankedDataset{
			ID:          d.ID,
			Title:       d.Title,
			Description: d.Description,
			Category:    d.Category,
			Size:        d.Size,
			IsVerified:  d.IsVerified,
			CreatedAt:   d.CreatedAt,
			LikeCount:   d.LikeCount,
			Contributor: d.Contributor.Summary(),
		})
	}
	board.Meta = LeaderboardMeta{Page: page, Limit: limit, TotalUsers: totalUsers, TotalDatasets: totalDatasets}
	return nil
}
