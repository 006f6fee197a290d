package store

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kart-io/datasphere/internal/model"
	"github.com/kart-io/datasphere/pkg/utils/errors"
)

// DatasetOrder selects the single sort tier applied to a dataset listing.
type DatasetOrder int

const (
	// OrderByDateDesc sorts newest first.
	OrderByDateDesc DatasetOrder = iota
	// OrderByDateAsc sorts oldest first.
	OrderByDateAsc
	// OrderByLikes sorts by like count, most liked first.
	OrderByLikes
	// OrderByComments sorts by comment count, most commented first.
	OrderByComments
)

// DatasetFilter narrows a dataset listing.
type DatasetFilter struct {
	Search       string
	Category     string
	Tag          string
	MinSize      *float64
	MaxSize      *float64
	VerifiedOnly bool
	Order        DatasetOrder
	Offset       int
	Limit        int
}

// DatasetStore defines the dataset storage interface.
type DatasetStore interface {
	Create(ctx context.Context, dataset *model.Dataset) error
	Get(ctx context.Context, id string) (*model.Dataset, error)
	GetDetail(ctx context.Context, id string) (*model.Dataset, error)
	List(ctx context.Context, filter DatasetFilter) (int64, []*model.Dataset, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	SetVerified(ctx context.Context, id string, verified bool) error
	Delete(ctx context.Context, id string) error
	DeleteByOwner(ctx context.Context, userID string) (int64, error)
	Count(ctx context.Context) (int64, error)
	TopByLikes(ctx context.Context, offset, limit int) ([]*model.Dataset, error)
}

type datasets struct {
	ds *datastore
}

// Create creates a dataset row. Tags are attached separately through TagStore.
func (d *datasets) Create(ctx context.Context, dataset *model.Dataset) error {
	return dbError(d.ds.core(ctx).Omit(clause.Associations).Create(dataset).Error, nil, nil)
}

// Get retrieves a dataset by id without associations.
func (d *datasets) Get(ctx context.Context, id string) (*model.Dataset, error) {
	var dataset model.Dataset
	if err := d.ds.core(ctx).Where("id = ?", id).First(&dataset).Error; err != nil {
		return nil, dbError(err, errors.ErrDatasetNotFound, nil)
	}
	return &dataset, nil
}

// GetDetail retrieves a dataset with contributor, tags, comments and counts.
func (d *datasets) GetDetail(ctx context.Context, id string) (*model.Dataset, error) {
	var dataset model.Dataset
	err := d.ds.core(ctx).
		Preload("Contributor").
		Preload("Tags").
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Comments.User").
		Where("id = ?", id).
		First(&dataset).Error
	if err != nil {
		return nil, dbError(err, errors.ErrDatasetNotFound, nil)
	}

	items := []*model.Dataset{&dataset}
	if err := d.fillCounts(ctx, items); err != nil {
		return nil, err
	}
	return &dataset, nil
}

// List lists datasets matching filter, with contributor, tags and counts.
func (d *datasets) List(ctx context.Context, filter DatasetFilter) (int64, []*model.Dataset, error) {
	var (
		count int64
		items []*model.Dataset
	)

	db := d.applyFilter(d.ds.core(ctx).Model(&model.Dataset{}), filter)
	if err := db.Count(&count).Error; err != nil {
		return 0, nil, errors.ErrDatabase.WithCause(err)
	}

	db = d.applyFilter(d.ds.core(ctx), filter)
	switch filter.Order {
	case OrderByLikes:
		db = db.Order("(SELECT COUNT(*) FROM likes WHERE likes.dataset_id = datasets.id) DESC").
			Order("datasets.created_at DESC")
	case OrderByComments:
		db = db.Order("(SELECT COUNT(*) FROM comments WHERE comments.dataset_id = datasets.id) DESC").
			Order("datasets.created_at DESC")
	case OrderByDateAsc:
		db = db.Order("datasets.created_at ASC")
	default:
		db = db.Order("datasets.created_at DESC")
	}

	err := db.Preload("Contributor").
		Preload("Tags").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&items).Error
	if err != nil {
		return 0, nil, errors.ErrDatabase.WithCause(err)
	}

	if err := d.fillCounts(ctx, items); err != nil {
		return 0, nil, err
	}
	return count, items, nil
}

// likeEscaper escapes LIKE wildcards with '!' so search matches literally.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func (d *datasets) applyFilter(db *gorm.DB, filter DatasetFilter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		db = db.Where("(LOWER(datasets.title) LIKE ? ESCAPE '!' OR LOWER(COALESCE(datasets.description, '')) LIKE ? ESCAPE '!')", pattern, pattern)
	}
	if filter.Category != "" {
		db = db.Where("datasets.category = ?", filter.Category)
	}
	if filter.Tag != "" {
		db = db.Where("datasets.id IN (?)", d.ds.db.Session(&gorm.Session{NewDB: true}).
			Table("dataset_tags").
			Select("dataset_tags.dataset_id").
			Joins("JOIN tags ON tags.id = dataset_tags.tag_id").
			Where("tags.name = ?", filter.Tag))
	}
	if filter.MinSize != nil {
		db = db.Where("datasets.size >= ?", *filter.MinSize)
	}
	if filter.MaxSize != nil {
		db = db.Where("datasets.size <= ?", *filter.MaxSize)
	}
	if filter.VerifiedOnly {
		db = db.Where("datasets.is_verified = ?", true)
	}
	return db
}

type countRow struct {
	DatasetID string
	Total     int64
}

// fillCounts loads like and comment counts for items in two grouped queries.
func (d *datasets) fillCounts(ctx context.Context, items []*model.Dataset) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	likeCounts, err := d.groupCount(ctx, &model.Like{}, ids)
	if err != nil {
		return err
	}
	commentCounts, err := d.groupCount(ctx, &model.Comment{}, ids)
	if err != nil {
		return err
	}

	for _, item := range items {
		item.LikeCount = likeCounts[item.ID]
		item.CommentCount = commentCounts[item.ID]
	}
	return nil
}

func (d *datasets) groupCount(ctx context.Context, table interface{}, ids []string) (map[string]int64, error) {
	var rows []countRow
	err := d.ds.core(ctx).Model(table).
		Select("dataset_id, COUNT(*) AS total").
		Where("dataset_id IN ?", ids).
		Group("dataset_id").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.DatasetID] = row.Total
	}
	return counts, nil
}

// Update applies fields to the dataset. The owner column is never written.
func (d *datasets) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	delete(fields, "created_by")
	if len(fields) == 0 {
		return nil
	}
	return dbError(d.ds.core(ctx).Model(&model.Dataset{}).Where("id = ?", id).Updates(fields).Error, nil, nil)
}

// SetVerified sets the verification flag.
func (d *datasets) SetVerified(ctx context.Context, id string, verified bool) error {
	result := d.ds.core(ctx).Model(&model.Dataset{}).Where("id = ?", id).UpdateColumn("is_verified", verified)
	if result.Error != nil {
		return errors.ErrDatabase.WithCause(result.Error)
	}
	return nil
}

// Delete removes the dataset together with its comments, likes and tag joins.
// Call it inside TX to make the cascade atomic.
func (d *datasets) Delete(ctx context.Context, id string) error {
	db := d.ds.core(ctx)
	for _, dependant := range []interface{}{&model.Comment{}, &model.Like{}, &model.DatasetTag{}} {
		if err := db.Where("dataset_id = ?", id).Delete(dependant).Error; err != nil {
			return errors.ErrDatabase.WithCause(err)
		}
	}

	result := db.Where("id = ?", id).Delete(&model.Dataset{})
	if result.Error != nil {
		return errors.ErrDatabase.WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrDatasetNotFound
	}
	return nil
}

// DeleteByOwner removes every dataset owned by userID and their dependants.
func (d *datasets) DeleteByOwner(ctx context.Context, userID string) (int64, error) {
	db := d.ds.core(ctx)
	owned := d.ds.db.Session(&gorm.Session{NewDB: true}).
		Model(&model.Dataset{}).
		Select("id").
		Where("created_by = ?", userID)

	for _, dependant := range []interface{}{&model.Comment{}, &model.Like{}, &model.DatasetTag{}} {
		if err := db.Where("dataset_id IN (?)", owned).Delete(dependant).Error; err != nil {
			return 0, errors.ErrDatabase.WithCause(err)
		}
	}

	result := db.Where("created_by = ?", userID).Delete(&model.Dataset{})
	if result.Error != nil {
		return 0, errors.ErrDatabase.WithCause(result.Error)
	}
	return result.RowsAffected, nil
}

// Count counts all datasets.
func (d *datasets) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := d.ds.core(ctx).Model(&model.Dataset{}).Count(&count).Error; err != nil {
		return 0, errors.ErrDatabase.WithCause(err)
	}
	return count, nil
}

// TopByLikes ranks datasets by like count.
func (d *datasets) TopByLikes(ctx context.Context, offset, limit int) ([]*model.Dataset, error) {
	_, items, err := d.List(ctx, DatasetFilter{Order: OrderByLikes, Offset: offset, Limit: limit})
	return items, err
}
