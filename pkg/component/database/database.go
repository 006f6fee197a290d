// Package database opens the gorm connection for the configured driver.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kart-io/logger"
	"github.com/kart-io/datasphere/pkg/component/mysql"
	"github.com/kart-io/datasphere/pkg/component/postgres"
	"github.com/kart-io/datasphere/pkg/component/storage"
	options "github.com/kart-io/datasphere/pkg/options/database"
	sqliteopts "github.com/kart-io/datasphere/pkg/options/sqlite"
)

// Client wraps gorm.DB and implements storage.Client.
type Client struct {
	db     *gorm.DB
	driver string
}

var _ storage.Client = (*Client)(nil)

// New opens a connection for the driver selected in opts and verifies it.
func New(ctx context.Context, opts *options.Options) (*Client, error) {
	if opts == nil {
		return nil, fmt.Errorf("database options cannot be nil")
	}

	dialector, pool, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(logLevel(opts.LogLevel), opts.SlowThreshold, true),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", opts.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	pool.apply(sqlDB)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", opts.Driver, err)
	}

	logger.Infow("Database connected", "driver", opts.Driver)
	return &Client{db: db, driver: opts.Driver}, nil
}

type poolSettings struct {
	maxIdle     int
	maxOpen     int
	maxLifetime time.Duration
}

func (p poolSettings) apply(sqlDB *sql.DB) {
	if p.maxIdle > 0 {
		sqlDB.SetMaxIdleConns(p.maxIdle)
	}
	if p.maxOpen > 0 {
		sqlDB.SetMaxOpenConns(p.maxOpen)
	}
	if p.maxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(p.maxLifetime)
	}
}

func dialectorFor(opts *options.Options) (gorm.Dialector, poolSettings, error) {
	switch opts.Driver {
	case options.DriverMySQL:
		o := opts.MySQL
		return mysql.Dialector(o), poolSettings{o.MaxIdleConnections, o.MaxOpenConnections, o.MaxConnectionLifeTime}, nil
	case options.DriverPostgres:
		o := opts.Postgres
		return postgres.Dialector(o), poolSettings{o.MaxIdleConnections, o.MaxOpenConnections, o.MaxConnectionLifeTime}, nil
	case options.DriverSQLite:
		// SQLite allows a single writer.
		return sqlite.Open(SQLiteDSN(opts.SQLite)), poolSettings{maxOpen: 1}, nil
	default:
		return nil, poolSettings{}, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

// SQLiteDSN builds the glebarez/sqlite DSN with foreign keys on.
func SQLiteDSN(opts *sqliteopts.Options) string {
	sep := "?"
	if strings.Contains(opts.Path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)", opts.Path, sep, opts.BusyTimeoutMS)
}

func logLevel(level int) gormlogger.LogLevel {
	switch level {
	case 2:
		return gormlogger.Error
	case 3:
		return gormlogger.Warn
	case 4:
		return gormlogger.Info
	default:
		return gormlogger.Silent
	}
}

// Name returns the driver name.
func (c *Client) Name() string {
	return c.driver
}

// Ping checks if the connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the connection pool.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// DB returns the underlying gorm.DB instance.
func (c *Client) DB() *gorm.DB {
	return c.db
}
