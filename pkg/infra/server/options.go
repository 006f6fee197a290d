package server

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/datasphere/pkg/options"
	httpopts "github.com/kart-io/datasphere/pkg/options/server/http"
)

// DefaultShutdownTimeout bounds graceful shutdown.
const DefaultShutdownTimeout = 30 * time.Second

// Options configures the Manager.
type Options struct {
	// HTTP configures the HTTP server. Nil disables it.
	HTTP *httpopts.Options `json:"http" mapstructure:"http"`
	// ShutdownTimeout is how long in-flight requests may drain.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// Option is a function that configures Options.
type Option func(*Options)

// NewOptions creates Options with an HTTP server and the default timeout.
func NewOptions() *Options {
	return &Options{
		HTTP:            httpopts.NewOptions(),
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// AddFlags adds the shutdown flag. HTTP flags are registered by the HTTP options.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.DurationVar(&o.ShutdownTimeout, options.Join(prefixes...)+"shutdown-timeout", o.ShutdownTimeout,
		"Time allowed for in-flight requests to finish on shutdown.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	var errs []error
	if o.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown-timeout must be positive"))
	}
	return append(errs, o.HTTP.Validate()...)
}

// WithHTTPOptions sets the HTTP server options.
func WithHTTPOptions(opts *httpopts.Options) Option {
	return func(o *Options) {
		o.HTTP = opts
	}
}

// WithShutdownTimeout sets the graceful shutdown timeout.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ShutdownTimeout = d
	}
}
