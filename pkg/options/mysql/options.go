// Package mysql defines the MySQL connection options.
package mysql

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/datasphere/pkg/options"
)

// Options defines configuration options for MySQL.
type Options struct {
	Host                  string        `json:"host" mapstructure:"host"`
	Port                  int           `json:"port" mapstructure:"port"`
	Username              string        `json:"username" mapstructure:"username"`
	Password              string        `json:"-" mapstructure:"password"`
	Database              string        `json:"database" mapstructure:"database"`
	MaxIdleConnections    int           `json:"max-idle-connections" mapstructure:"max-idle-connections"`
	MaxOpenConnections    int           `json:"max-open-connections" mapstructure:"max-open-connections"`
	MaxConnectionLifeTime time.Duration `json:"max-connection-life-time" mapstructure:"max-connection-life-time"`
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		Host:                  "127.0.0.1",
		Port:                  3306,
		Username:              "root",
		Database:              "datasphere",
		MaxIdleConnections:    10,
		MaxOpenConnections:    100,
		MaxConnectionLifeTime: 10 * time.Minute,
	}
}

// Complete fills the password from MYSQL_PASSWORD when no flag set it.
func (o *Options) Complete() error {
	if o.Password == "" {
		o.Password = os.Getenv("MYSQL_PASSWORD")
	}
	return nil
}

// Validate checks if the options are valid.
func (o *Options) Validate() []error {
	var errs []error
	if o.Host == "" {
		errs = append(errs, fmt.Errorf("mysql.host is required"))
	}
	if o.Port <= 0 || o.Port > 65535 {
		errs = append(errs, fmt.Errorf("mysql.port must be between 1 and 65535"))
	}
	if o.Username == "" {
		errs = append(errs, fmt.Errorf("mysql.username is required"))
	}
	if o.Database == "" {
		errs = append(errs, fmt.Errorf("mysql.database is required"))
	}
	return errs
}

// AddFlags adds flags for MySQL options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "mysql."
	fs.StringVar(&o.Host, p+"host", o.Host, "MySQL host")
	fs.IntVar(&o.Port, p+"port", o.Port, "MySQL port")
	fs.StringVar(&o.Username, p+"username", o.Username, "MySQL username")
	fs.StringVar(&o.Password, p+"password", o.Password, "MySQL password (prefer the MYSQL_PASSWORD env var)")
	fs.StringVar(&o.Database, p+"database", o.Database, "MySQL database")
	fs.IntVar(&o.MaxIdleConnections, p+"max-idle-connections", o.MaxIdleConnections, "MySQL max idle connections")
	fs.IntVar(&o.MaxOpenConnections, p+"max-open-connections", o.MaxOpenConnections, "MySQL max open connections")
	fs.DurationVar(&o.MaxConnectionLifeTime, p+"max-connection-life-time", o.MaxConnectionLifeTime, "MySQL max connection life time")
}
