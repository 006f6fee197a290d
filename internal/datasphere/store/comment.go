package store

import (
	"context"

	"github.com/kart-io/datasphere/internal/model"
	"github.com/kart-io/datasphere/pkg/utils/errors"
)

// CommentStore defines the comment storage interface.
type CommentStore interface {
	Create(ctx context.Context, comment *model.Comment) error
	Get(ctx context.Context, id string) (*model.Comment, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
	ListByDataset(ctx context.Context, datasetID string, offset, limit int) (int64, []*model.Comment, error)
}

type comments struct {
	ds *datastore
}

// Create creates a comment.
func (c *comments) Create(ctx context.Context, comment *model.Comment) error {
	return dbError(c.ds.core(ctx).Create(comment).Error, nil, nil)
}

// Get retrieves a comment by id.
func (c *comments) Get(ctx context.Context, id string) (*model.Comment, error) {
	var comment model.Comment
	if err := c.ds.core(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, dbError(err, errors.ErrCommentNotFound, nil)
	}
	return &comment, nil
}

// Delete deletes a comment by id.
func (c *comments) Delete(ctx context.Context, id string) error {
	result := c.ds.core(ctx).Where("id = ?", id).Delete(&model.Comment{})
	if result.Error != nil {
		return errors.ErrDatabase.WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrCommentNotFound
	}
	return nil
}

// DeleteByUser deletes every comment written by userID.
func (c *comments) DeleteByUser(ctx context.Context, userID string) error {
	return dbError(c.ds.core(ctx).Where("user_id = ?", userID).Delete(&model.Comment{}).Error, nil, nil)
}

// ListByDataset lists the comments of a dataset, newest first, with authors.
func (c *comments) ListByDataset(ctx context.Context, datasetID string, offset, limit int) (int64, []*model.Comment, error) {
	var (
		count int64
		items []*model.Comment
	)

	db := c.ds.core(ctx)
	if err := db.Model(&model.Comment{}).Where("dataset_id = ?", datasetID).Count(&count).Error; err != nil {
		return 0, nil, errors.ErrDatabase.WithCause(err)
	}

	err := db.Preload("User").
		Where("dataset_id = ?", datasetID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return 0, nil, errors.ErrDatabase.WithCause(err)
	}
	return count, items, nil
}
