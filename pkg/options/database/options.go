// Package database selects and configures the relational store driver.
package database

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/datasphere/pkg/options"
	"github.com/kart-io/datasphere/pkg/options/mysql"
	"github.com/kart-io/datasphere/pkg/options/postgres"
	"github.com/kart-io/datasphere/pkg/options/sqlite"
)

// Supported drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var _ options.IOptions = (*Options)(nil)

// Options selects a driver and carries the settings of each.
type Options struct {
	Driver string `json:"driver" mapstructure:"driver"`
	// LogLevel maps to gorm log levels: 1 silent, 2 error, 3 warn, 4 info.
	LogLevel      int           `json:"log-level" mapstructure:"log-level"`
	SlowThreshold time.Duration `json:"slow-threshold" mapstructure:"slow-threshold"`
	AutoMigrate   bool          `json:"auto-migrate" mapstructure:"auto-migrate"`

	MySQL    *mysql.Options    `json:"mysql" mapstructure:"mysql"`
	Postgres *postgres.Options `json:"postgres" mapstructure:"postgres"`
	SQLite   *sqlite.Options   `json:"sqlite" mapstructure:"sqlite"`
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		Driver:        DriverSQLite,
		LogLevel:      3,
		SlowThreshold: 200 * time.Millisecond,
		AutoMigrate:   true,
		MySQL:         mysql.NewOptions(),
		Postgres:      postgres.NewOptions(),
		SQLite:        sqlite.NewOptions(),
	}
}

// Complete completes the options of the selected driver.
func (o *Options) Complete() error {
	switch o.Driver {
	case DriverMySQL:
		return o.MySQL.Complete()
	case DriverPostgres:
		return o.Postgres.Complete()
	}
	return nil
}

// Validate validates the driver choice and only the selected driver's options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.LogLevel < 1 || o.LogLevel > 4 {
		errs = append(errs, fmt.Errorf("database.log-level must be between 1 and 4"))
	}

	switch o.Driver {
	case DriverMySQL:
		errs = append(errs, o.MySQL.Validate()...)
	case DriverPostgres:
		errs = append(errs, o.Postgres.Validate()...)
	case DriverSQLite:
		errs = append(errs, o.SQLite.Validate()...)
	default:
		errs = append(errs, fmt.Errorf("database.driver must be one of mysql, postgres, sqlite; got %q", o.Driver))
	}
	return errs
}

// AddFlags adds flags for database options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "database"
	fs.StringVar(&o.Driver, p+".driver", o.Driver, "Database driver (mysql|postgres|sqlite)")
	fs.IntVar(&o.LogLevel, p+".log-level", o.LogLevel, "SQL log level (1 silent, 2 error, 3 warn, 4 info)")
	fs.DurationVar(&o.SlowThreshold, p+".slow-threshold", o.SlowThreshold, "Queries slower than this are logged as warnings")
	fs.BoolVar(&o.AutoMigrate, p+".auto-migrate", o.AutoMigrate, "Migrate the schema at start-up")

	o.MySQL.AddFlags(fs, p)
	o.Postgres.AddFlags(fs, p)
	o.SQLite.AddFlags(fs, p)
}
