// Package mysql builds the gorm dialector for MySQL.
package mysql

import (
	"fmt"
	"time"

	driver "github.com/go-sql-driver/mysql"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"

	options "github.com/kart-io/datasphere/pkg/options/mysql"
)

// BuildDSN creates a MySQL Data Source Name from the provided options.
// The driver's own formatter escapes the credentials.
func BuildDSN(opts *options.Options) string {
	cfg := driver.NewConfig()
	cfg.User = opts.Username
	cfg.Passwd = opts.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", opts.Host, opts.Port)
	cfg.DBName = opts.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// Dialector returns the gorm dialector for opts.
func Dialector(opts *options.Options) gorm.Dialector {
	return mysqldriver.Open(BuildDSN(opts))
}
