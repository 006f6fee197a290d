// Package store implements the relational persistence of DataSphere on gorm.
package store

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/kart-io/logger"
	"github.com/kart-io/datasphere/internal/model"
	"github.com/kart-io/datasphere/pkg/utils/errors"
)

// Factory defines the factory interface for creating stores.
type Factory interface {
	// TX runs fn inside a single database transaction. Stores obtained from
	// the factory and called with the ctx passed to fn take part in it.
	TX(ctx context.Context, fn func(ctx context.Context) error) error

	Users() UserStore
	Datasets() DatasetStore
	Tags() TagStore
	Comments() CommentStore
	Likes() LikeStore
	Notifications() NotificationStore
	Stats() StatsStore

	DB() *gorm.DB
	AutoMigrate() error
	Close() error
}

type transactionKey struct{}

// datastore implements the Factory interface.
type datastore struct {
	db *gorm.DB
}

var _ Factory = (*datastore)(nil)

// NewStore creates a Factory backed by db.
func NewStore(db *gorm.DB) Factory {
	return &datastore{db: db}
}

// core returns the transaction carried by ctx, or the root handle.
func (ds *datastore) core(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(transactionKey{}).(*gorm.DB); ok {
		return tx
	}
	return ds.db.WithContext(ctx)
}

// TX runs fn in a transaction. Nested calls reuse the outer transaction.
func (ds *datastore) TX(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(transactionKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, transactionKey{}, tx))
	})
}

func (ds *datastore) Users() UserStore                 { return &users{ds} }
func (ds *datastore) Datasets() DatasetStore           { return &datasets{ds} }
func (ds *datastore) Tags() TagStore                   { return &tags{ds} }
func (ds *datastore) Comments() CommentStore           { return &comments{ds} }
func (ds *datastore) Likes() LikeStore                 { return &likes{ds} }
func (ds *datastore) Notifications() NotificationStore { return &notifications{ds} }
func (ds *datastore) Stats() StatsStore                { return &stats{ds} }

// DB returns the root gorm handle.
func (ds *datastore) DB() *gorm.DB {
	return ds.db
}

// AutoMigrate migrates the database schema.
func (ds *datastore) AutoMigrate() error {
	if err := ds.db.SetupJoinTable(&model.Dataset{}, "Tags", &model.DatasetTag{}); err != nil {
		return err
	}
	if err := ds.db.AutoMigrate(model.All()...); err != nil {
		return err
	}
	logger.Info("Database migration completed")
	return nil
}

// Close closes the underlying connections.
func (ds *datastore) Close() error {
	sqlDB, err := ds.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// dbError maps a gorm error to an Errno. notFound is returned for
// gorm.ErrRecordNotFound and conflict for duplicate keys.
func dbError(err error, notFound, conflict *errors.Errno) error {
	switch {
	case err == nil:
		return nil
	case notFound != nil && stderrors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case conflict != nil && stderrors.Is(err, gorm.ErrDuplicatedKey):
		return conflict
	default:
		return errors.ErrDatabase.WithCause(err)
	}
}
