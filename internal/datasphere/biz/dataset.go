package biz

import (
	"context"
	"sort"
	"strings"

	"github.com/kart-io/logger"
	"github.com/kart-io/datasphere/internal/datasphere/store"
	"github.com/kart-io/datasphere/internal/model"
	"github.com/kart-io/datasphere/pkg/infra/pool"
	"github.com/kart-io/datasphere/pkg/security/authz"
	"github.com/kart-io/datasphere/pkg/utils/errors"
	"github.com/kart-io/datasphere/pkg/utils/validator"
)

// DatasetService handles dataset business logic.
type DatasetService struct {
	store store.Factory
	authz *authz.Authorizer
	pool  *pool.Pool
}

// NewDatasetService creates a new DatasetService. p runs the stats queries.
func NewDatasetService(s store.Factory, a *authz.Authorizer, p *pool.Pool) *DatasetService {
	return &DatasetService{store: s, authz: a, pool: p}
}

// DatasetInput is the payload of a dataset creation.
type DatasetInput struct {
	Title       string
	URL         string
	Description *string
	Category    *string
	Size        *float64
	Tags        []string
}

// DatasetPatch is a partial update. Nil fields are left unchanged.
// A non-nil Tags, even empty, replaces the tag set.
type DatasetPatch struct {
	Title       *string
	URL         *string
	Description *string
	Category    *string
	Size        *float64
	Tags        []string
}

// DatasetQuery filters and orders a dataset listing.
type DatasetQuery struct {
	Search          string
	Category        string
	Tag             string
	MinSize         *float64
	MaxSize         *float64
	VerifiedOnly    bool
	OrderByLikes    bool
	OrderByComments bool
	// Ascending flips the date order. It has no effect on the count orders.
	Ascending bool
	Page      int
	Limit     int
}

// order picks the single sort tier: likes, then comments, then date.
func (q DatasetQuery) order() store.DatasetOrder {
	switch {
	case q.OrderByLikes:
		return store.OrderByLikes
	case q.OrderByComments:
		return store.OrderByComments
	case q.Ascending:
		return store.OrderByDateAsc
	default:
		return store.OrderByDateDesc
	}
}

// checkDatasetURL applies the format and then the host allow-list rule.
func checkDatasetURL(raw string) error {
	if err := validator.Var(raw, validator.TagHTTPURL); err != nil {
		return errors.ErrInvalidURL
	}
	if err := validator.Var(raw, validator.TagDriveURL); err != nil {
		return errors.ErrHostNotAllowed
	}
	return nil
}

// normalizeTags trims names and drops blanks and duplicates, keeping order.
func normalizeTags(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	return result
}

// Create publishes a dataset owned by uid and bumps the owner's contributions
// in the same transaction.
func (s *DatasetService) Create(ctx context.Context, uid string, in *DatasetInput) (*model.Dataset, error) {
	title := strings.TrimSpace(in.Title)
	url := strings.TrimSpace(in.URL)
	if title == "" || url == "" {
		return nil, errors.ErrMissingTitleOrURL
	}
	if err := checkDatasetURL(url); err != nil {
		return nil, err
	}

	if _, err := s.store.Users().Get(ctx, uid); err != nil {
		return nil, err
	}

	dataset := &model.Dataset{
		Title:       title,
		URL:         url,
		Description: in.Description,
		Category:    in.Category,
		Size:        in.Size,
		CreatedBy:   uid,
	}

	err := s.store.TX(ctx, func(ctx context.Context) error {
		if err := s.store.Datasets().Create(ctx, dataset); err != nil {
			return err
		}
		if err := s.attachTags(ctx, dataset.ID, in.Tags); err != nil {
			return err
		}
		return s.store.Users().AddContributions(ctx, uid, 1)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("Dataset created", "dataset_id", dataset.ID, "user_id", uid)
	return s.store.Datasets().GetDetail(ctx, dataset.ID)
}

func (s *DatasetService) attachTags(ctx context.Context, datasetID string, names []string) error {
	tags, err := s.store.Tags().Upsert(ctx, normalizeTags(names))
	if err != nil {
		return err
	}
	return s.store.Tags().Replace(ctx, datasetID, tags)
}

// List returns one page of datasets matching q.
func (s *DatasetService) List(ctx context.Context, q DatasetQuery) (*PageResult[*model.Dataset], error) {
	page, limit := DatasetPager.Normalize(q.Page, q.Limit)
	total, items, err := s.store.Datasets().List(ctx, store.DatasetFilter{
		Search:       q.Search,
		Category:     q.Category,
		Tag:          q.Tag,
		MinSize:      q.MinSize,
		MaxSize:      q.MaxSize,
		VerifiedOnly: q.VerifiedOnly,
		Order:        q.order(),
		Offset:       Offset(page, limit),
		Limit:        limit,
	})
	if err != nil {
		return nil, err
	}
	return &PageResult[*model.Dataset]{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// Get returns a dataset with its contributor, tags, comments and counts.
func (s *DatasetService) Get(ctx context.Context, id string) (*model.Dataset, error) {
	return s.store.Datasets().GetDetail(ctx, id)
}

// Update applies patch for the owner or a moderator. The owner never changes.
func (s *DatasetService) Update(ctx context.Context, uid, id string, patch *DatasetPatch) (*model.Dataset, error) {
	dataset, err := s.store.Datasets().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanAct(ctx, uid, dataset.CreatedBy, authz.CapModerateContent) {
		return nil, errors.ErrForbidden
	}

	fields := make(map[string]interface{})
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, errors.ErrMissingTitleOrURL
		}
		fields["title"] = title
	}
	if patch.URL != nil {
		url := strings.TrimSpace(*patch.URL)
		if url == "" {
			return nil, errors.ErrMissingTitleOrURL
		}
		if err := checkDatasetURL(url); err != nil {
			return nil, err
		}
		fields["url"] = url
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Category != nil {
		fields["category"] = *patch.Category
	}
	if patch.Size != nil {
		fields["size"] = *patch.Size
	}

	err = s.store.TX(ctx, func(ctx context.Context) error {
		if err := s.store.Datasets().Update(ctx, id, fields); err != nil {
			return err
		}
		if patch.Tags != nil {
			return s.attachTags(ctx, id, patch.Tags)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.store.Datasets().GetDetail(ctx, id)
}

// Delete removes a dataset with its comments, likes and tag joins, and
// decrements the owner's contributions, all in one transaction.
func (s *DatasetService) Delete(ctx context.Context, uid, id string) error {
	dataset, err := s.store.Datasets().Get(ctx, id)
	if err != nil {
		return err
	}
	if !s.authz.CanAct(ctx, uid, dataset.CreatedBy, authz.CapModerateContent) {
		return errors.ErrForbidden
	}

	err = s.store.TX(ctx, func(ctx context.Context) error {
		if err := s.store.Datasets().Delete(ctx, id); err != nil {
			return err
		}
		return s.store.Users().AddContributions(ctx, dataset.CreatedBy, -1)
	})
	if err != nil {
		return err
	}

	logger.Infow("Dataset deleted", "dataset_id", id, "user_id", uid, "owner_id", dataset.CreatedBy)
	return nil
}

// ToggleVerify flips the verification flag. Only moderators may call it.
func (s *DatasetService) ToggleVerify(ctx context.Context, uid, id string) (*model.Dataset, error) {
	if _, err := s.authz.Require(ctx, uid, authz.CapModerateContent); err != nil {
		return nil, err
	}

	dataset, err := s.store.Datasets().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	dataset.IsVerified = !dataset.IsVerified
	if err := s.store.Datasets().SetVerified(ctx, id, dataset.IsVerified); err != nil {
		return nil, err
	}

	logger.Infow("Dataset verification changed", "dataset_id", id, "verified", dataset.IsVerified, "moderator_id", uid)
	return dataset, nil
}

// MonthlyCount is the number of rows created in one month.
type MonthlyCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// DatasetStats is the monthly activity of the whole site.
type DatasetStats struct {
	DatasetsPerMonth []MonthlyCount `json:"datasetsPerMonth"`
	LikesPerMonth    []MonthlyCount `json:"likesPerMonth"`
	CommentsPerMonth []MonthlyCount `json:"commentsPerMonth"`
}

// Stats runs the three monthly aggregates concurrently on the worker pool.
func (s *DatasetService) Stats(ctx context.Context) (*DatasetStats, error) {
	stats := s.store.Stats()
	result := &DatasetStats{}

	queries := []struct {
		run func(context.Context) (map[string]int64, error)
		dst *[]MonthlyCount
	}{
		{stats.DatasetsPerMonth, &result.DatasetsPerMonth},
		{stats.LikesPerMonth, &result.LikesPerMonth},
		{stats.CommentsPerMonth, &result.CommentsPerMonth},
	}

	g := s.pool.NewGroup(ctx)
	for _, q := range queries {
		q := q
		g.Go(func(ctx context.Context) error {
			buckets, err := q.run(ctx)
			if err != nil {
				return err
			}
			*q.dst = sortedMonths(buckets)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.FromError(err)
	}
	return result, nil
}

func sortedMonths(buckets map[string]int64) []MonthlyCount {
	result := make([]MonthlyCount, 0, len(buckets))
	for month, count := range buckets {
		result = append(result, MonthlyCount{Month: month, Count: count})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Month < result[j].Month })
	return result
}
