package biz

import (
	"context"

	"github.com/kart-io/datasphere/internal/datasphere/store"
	"github.com/kart-io/datasphere/internal/model"
	"github.com/kart-io/datasphere/pkg/utils/errors"
)

// LikeService handles likes.
type LikeService struct {
	store store.Factory
}

// NewLikeService creates a new LikeService.
func NewLikeService(s store.Factory) *LikeService {
	return &LikeService{store: s}
}

// LikeState is the like status of a dataset for one user.
type LikeState struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}

// actor loads the caller's account. A caller without one cannot interact.
func actor(ctx context.Context, s store.Factory, uid string) (*model.User, error) {
	user, err := s.Users().Get(ctx, uid)
	if errors.IsCode(err, errors.ErrUserNotFound.Code) {
		return nil, errors.ErrAccountNotFound
	}
	return user, err
}

// Toggle likes the dataset when uid has not liked it yet and unlikes it
// otherwise. Only a new like notifies the owner. The count is read after
// the write.
func (s *LikeService) Toggle(ctx context.Context, uid, datasetID string) (*LikeState, error) {
	dataset, err := s.store.Datasets().Get(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	user, err := actor(ctx, s.store, uid)
	if err != nil {
		return nil, err
	}

	var liked bool
	err = s.store.TX(ctx, func(ctx context.Context) error {
		removed, err := s.store.Likes().Delete(ctx, uid, datasetID)
		if err != nil {
			return err
		}
		if removed {
			return nil
		}

		// 唯一索引冲突说明并发请求已经点过赞
		if err := s.store.Likes().Create(ctx, &model.Like{UserID: uid, DatasetID: datasetID}); err != nil {
			return err
		}
		liked = true
		return notifyOwner(ctx, s.store, model.NotificationLike, user, dataset)
	})
	if err != nil {
		return nil, err
	}

	count, err := s.store.Likes().CountByDataset(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	return &LikeState{Liked: liked, LikeCount: count}, nil
}

// Status reports whether uid likes the dataset and its like count.
func (s *LikeService) Status(ctx context.Context, uid, datasetID string) (*LikeState, error) {
	if _, err := s.store.Datasets().Get(ctx, datasetID); err != nil {
		return nil, err
	}
	liked, err := s.store.Likes().Exists(ctx, uid, datasetID)
	if err != nil {
		return nil, err
	}
	count, err := s.store.Likes().CountByDataset(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	return &LikeState{Liked: liked, LikeCount: count}, nil
}
