package store

import (
	"context"

	"github.com/kart-io/datasphere/internal/model"
	"github.com/kart-io/datasphere/pkg/utils/errors"
)

// LikeStore defines the like storage interface.
type LikeStore interface {
	Exists(ctx context.Context, userID, datasetID string) (bool, error)
	Create(ctx context.Context, like *model.Like) error
	// Delete removes the like of userID on datasetID and reports whether one existed.
	Delete(ctx context.Context, userID, datasetID string) (bool, error)
	DeleteByUser(ctx context.Context, userID string) error
	CountByDataset(ctx context.Context, datasetID string) (int64, error)
}

type likes struct {
	ds *datastore
}

// Exists reports whether userID likes datasetID.
func (l *likes) Exists(ctx context.Context, userID, datasetID string) (bool, error) {
	var count int64
	err := l.ds.core(ctx).Model(&model.Like{}).
		Where("user_id = ? AND dataset_id = ?", userID, datasetID).
		Count(&count).Error
	if err != nil {
		return false, errors.ErrDatabase.WithCause(err)
	}
	return count > 0, nil
}

// Create creates a like. A second like for the same pair fails with ErrLikeConflict.
func (l *likes) Create(ctx context.Context, like *model.Like) error {
	return dbError(l.ds.core(ctx).Create(like).Error, nil, errors.ErrLikeConflict)
}

// Delete removes a like.
func (l *likes) Delete(ctx context.Context, userID, datasetID string) (bool, error) {
	result := l.ds.core(ctx).
		Where("user_id = ? AND dataset_id = ?", userID, datasetID).
		Delete(&model.Like{})
	if result.Error != nil {
		return false, errors.ErrDatabase.WithCause(result.Error)
	}
	return result.RowsAffected > 0, nil
}

// DeleteByUser deletes every like given by userID.
func (l *likes) DeleteByUser(ctx context.Context, userID string) error {
	return dbError(l.ds.core(ctx).Where("user_id = ?", userID).Delete(&model.Like{}).Error, nil, nil)
}

// CountByDataset counts the likes of a dataset.
func (l *likes) CountByDataset(ctx context.Context, datasetID string) (int64, error) {
	var count int64
	if err := l.ds.core(ctx).Model(&model.Like{}).Where("dataset_id = ?", datasetID).Count(&count).Error; err != nil {
		return 0, errors.ErrDatabase.WithCause(err)
	}
	return count, nil
}
