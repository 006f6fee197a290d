package store

import (
	"context"

	"github.com/kart-io/datasphere/internal/model"
	"github.com/kart-io/datasphere/pkg/utils/errors"
)

// TagStore defines the tag storage interface.
type TagStore interface {
	// Upsert returns the tags with the given names, creating missing ones.
	Upsert(ctx context.Context, names []string) ([]model.Tag, error)
	// Replace sets the tags of a dataset to exactly tags.
	Replace(ctx context.Context, datasetID string, tags []model.Tag) error
}

type tags struct {
	ds *datastore
}

// Upsert looks up or creates each tag by name. names must be normalized.
func (t *tags) Upsert(ctx context.Context, names []string) ([]model.Tag, error) {
	result := make([]model.Tag, 0, len(names))
	db := t.ds.core(ctx)
	for _, name := range names {
		var tag model.Tag
		if err := db.Where(model.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
			return nil, errors.ErrDatabase.WithCause(err)
		}
		result = append(result, tag)
	}
	return result, nil
}

// Replace drops the existing tag joins of the dataset and inserts new ones.
func (t *tags) Replace(ctx context.Context, datasetID string, tags []model.Tag) error {
	db := t.ds.core(ctx)
	if err := db.Where("dataset_id = ?", datasetID).Delete(&model.DatasetTag{}).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	if len(tags) == 0 {
		return nil
	}

	joins := make([]model.DatasetTag, 0, len(tags))
	for _, tag := range tags {
		joins = append(joins, model.DatasetTag{DatasetID: datasetID, TagID: tag.ID})
	}
	if err := db.Create(&joins).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}
