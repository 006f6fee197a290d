package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/datasphere/internal/model"
	"github.com/kart-io/datasphere/pkg/utils/errors"
)

// UserStore defines the user storage interface.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id string) (*model.User, error)
	GetWithDatasets(ctx context.Context, id string) (*model.User, error)
	ExistsByIDOrEmail(ctx context.Context, id, email string) (bool, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	AddContributions(ctx context.Context, id string, delta int) error
	List(ctx context.Context, offset, limit int) (int64, []*model.User, error)
	ListByContributions(ctx context.Context, offset, limit int) (int64, []*model.User, error)
	CountAbove(ctx context.Context, contributions int) (int64, error)
	Count(ctx context.Context) (int64, error)
	TopByDatasetCount(ctx context.Context, offset, limit int) ([]*UserRank, error)
}

// UserRank is a leaderboard row. Contributions is the live dataset count.
type UserRank struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Avatar        *string `json:"avatar"`
	Contributions int64   `json:"contributions"`
}

type users struct {
	ds *datastore
}

// Create creates a new user.
func (u *users) Create(ctx context.Context, user *model.User) error {
	return dbError(u.ds.core(ctx).Create(user).Error, nil, errors.ErrUserAlreadyExists)
}

// Get retrieves a user by id.
func (u *users) Get(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := u.ds.core(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, dbError(err, errors.ErrUserNotFound, nil)
	}
	return &user, nil
}

// GetWithDatasets retrieves a user with their datasets, newest first.
func (u *users) GetWithDatasets(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := u.ds.core(ctx).
		Preload("Datasets", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Datasets.Tags").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, dbError(err, errors.ErrUserNotFound, nil)
	}
	return &user, nil
}

// ExistsByIDOrEmail reports whether an account already uses id or email.
func (u *users) ExistsByIDOrEmail(ctx context.Context, id, email string) (bool, error) {
	var count int64
	err := u.ds.core(ctx).Model(&model.User{}).Where("id = ? OR email = ?", id, email).Count(&count).Error
	if err != nil {
		return false, errors.ErrDatabase.WithCause(err)
	}
	return count > 0, nil
}

// Update applies fields to the user with the given id.
func (u *users) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return dbError(u.ds.core(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields).Error, nil, nil)
}

// Delete deletes a user row. Dependent rows must be removed first.
func (u *users) Delete(ctx context.Context, id string) error {
	result := u.ds.core(ctx).Where("id = ?", id).Delete(&model.User{})
	if result.Error != nil {
		return errors.ErrDatabase.WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

// AddContributions adjusts the denormalized contribution counter by delta.
func (u *users) AddContributions(ctx context.Context, id string, delta int) error {
	result := u.ds.core(ctx).Model(&model.User{}).
		Where("id = ?", id).
		UpdateColumn("contributions", gorm.Expr("contributions + ?", delta))
	if result.Error != nil {
		return errors.ErrDatabase.WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

// List lists users, newest first.
func (u *users) List(ctx context.Context, offset, limit int) (int64, []*model.User, error) {
	return u.list(ctx, "created_at DESC", offset, limit)
}

// ListByContributions lists users with the most contributions first.
func (u *users) ListByContributions(ctx context.Context, offset, limit int) (int64, []*model.User, error) {
	return u.list(ctx, "contributions DESC, created_at ASC", offset, limit)
}

func (u *users) list(ctx context.Context, order string, offset, limit int) (int64, []*model.User, error) {
	var (
		count int64
		items []*model.User
	)

	db := u.ds.core(ctx)
	if err := db.Model(&model.User{}).Count(&count).Error; err != nil {
		return 0, nil, errors.ErrDatabase.WithCause(err)
	}
	if err := db.Order(order).Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, errors.ErrDatabase.WithCause(err)
	}
	return count, items, nil
}

// CountAbove counts users with strictly more contributions.
func (u *users) CountAbove(ctx context.Context, contributions int) (int64, error) {
	var count int64
	err := u.ds.core(ctx).Model(&model.User{}).Where("contributions > ?", contributions).Count(&count).Error
	if err != nil {
		return 0, errors.ErrDatabase.WithCause(err)
	}
	return count, nil
}

// Count counts all users.
func (u *users) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := u.ds.core(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return 0, errors.ErrDatabase.WithCause(err)
	}
	return count, nil
}

// TopByDatasetCount ranks users by the number of datasets they own.
func (u *users) TopByDatasetCount(ctx context.Context, offset, limit int) ([]*UserRank, error) {
	var rows []*UserRank
	err := u.ds.core(ctx).
		Model(&model.User{}).
		Select("users.id, users.name, users.avatar, " +
			"(SELECT COUNT(*) FROM datasets WHERE datasets.created_by = users.id) AS contributions").
		Order("contributions DESC").
		Order("users.created_at ASC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return rows, nil
}
