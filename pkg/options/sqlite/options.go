// Package sqlite defines the embedded SQLite options.
package sqlite

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/kart-io/datasphere/pkg/options"
)

// Options defines configuration options for SQLite.
type Options struct {
	// Path is the database file. ":memory:" keeps everything in process.
	Path string `json:"path" mapstructure:"path"`
	// BusyTimeoutMS is how long a writer waits for a lock.
	BusyTimeoutMS int `json:"busy-timeout-ms" mapstructure:"busy-timeout-ms"`
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		Path:          "datasphere.db",
		BusyTimeoutMS: 5000,
	}
}

// Validate checks if the options are valid.
func (o *Options) Validate() []error {
	if o.Path == "" {
		return []error{fmt.Errorf("sqlite.path is required")}
	}
	return nil
}

// AddFlags adds flags for SQLite options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "sqlite."
	fs.StringVar(&o.Path, p+"path", o.Path, "SQLite database file")
	fs.IntVar(&o.BusyTimeoutMS, p+"busy-timeout-ms", o.BusyTimeoutMS, "SQLite busy timeout in milliseconds")
}
