// Package options contains flags and options for initializing the datasphere server.
package options

import (
	"time"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	cliflag "k8s.io/component-base/cli/flag"

	"github.com/kart-io/datasphere/internal/datasphere"
	"github.com/kart-io/datasphere/pkg/infra/pool"
	"github.com/kart-io/datasphere/pkg/infra/server"
	dbopts "github.com/kart-io/datasphere/pkg/options/database"
	logopts "github.com/kart-io/datasphere/pkg/options/logger"
	redisopts "github.com/kart-io/datasphere/pkg/options/redis"
	httpopts "github.com/kart-io/datasphere/pkg/options/server/http"
	"github.com/kart-io/datasphere/pkg/security/auth/identity"
	"github.com/kart-io/datasphere/pkg/security/authz"
)

// ServerOptions contains the configuration options for the server.
type ServerOptions struct {
	// HTTPOptions contains HTTP server configuration.
	HTTPOptions *httpopts.Options `json:"http" mapstructure:"http"`

	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// IdentityOptions configures verification of identity provider tokens.
	IdentityOptions *identity.Options `json:"identity" mapstructure:"identity"`

	// AuthzOptions configures the capability policy.
	AuthzOptions *authz.Options `json:"authz" mapstructure:"authz"`

	// DatabaseOptions selects and configures the relational store.
	DatabaseOptions *dbopts.Options `json:"database" mapstructure:"database"`

	// RedisOptions contains Redis configuration. Redis is optional.
	RedisOptions *redisopts.Options `json:"redis" mapstructure:"redis"`

	// PoolOptions sizes the worker pool used for fan-out queries.
	PoolOptions *pool.Config `json:"pool" mapstructure:"pool"`

	// ShutdownTimeout is the timeout for graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewServerOptions creates a ServerOptions instance with default values.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		HTTPOptions:     httpopts.NewOptions(),
		LogOptions:      logopts.NewOptions(),
		IdentityOptions: identity.NewOptions(),
		AuthzOptions:    authz.NewOptions(),
		DatabaseOptions: dbopts.NewOptions(),
		RedisOptions:    redisopts.NewOptions(),
		PoolOptions:     pool.DefaultPoolConfig(),
		ShutdownTimeout: server.DefaultShutdownTimeout,
	}
}

// Flags returns flags for a specific server by section name.
func (o *ServerOptions) Flags() (fss cliflag.NamedFlagSets) {
	o.HTTPOptions.AddFlags(fss.FlagSet("http"))
	o.LogOptions.AddFlags(fss.FlagSet("log"))
	o.IdentityOptions.AddFlags(fss.FlagSet("identity"))
	o.AuthzOptions.AddFlags(fss.FlagSet("authz"))
	o.DatabaseOptions.AddFlags(fss.FlagSet("database"))
	o.RedisOptions.AddFlags(fss.FlagSet("redis"))
	o.PoolOptions.AddFlags(fss.FlagSet("pool"))

	// misc flags
	fs := fss.FlagSet("misc")
	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout")

	return fss
}

// Complete completes all the required options.
func (o *ServerOptions) Complete() error {
	if err := o.HTTPOptions.Complete(); err != nil {
		return err
	}
	if err := o.LogOptions.Complete(); err != nil {
		return err
	}
	if err := o.IdentityOptions.Complete(); err != nil {
		return err
	}
	if err := o.DatabaseOptions.Complete(); err != nil {
		return err
	}
	return o.RedisOptions.Complete()
}

// Validate checks whether the options in ServerOptions are valid.
func (o *ServerOptions) Validate() error {
	errs := []error{}

	errs = append(errs, o.HTTPOptions.Validate()...)
	errs = append(errs, o.LogOptions.Validate()...)
	if err := o.IdentityOptions.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := o.AuthzOptions.Validate(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, o.DatabaseOptions.Validate()...)
	errs = append(errs, o.RedisOptions.Validate()...)
	if err := o.PoolOptions.Validate(); err != nil {
		errs = append(errs, err)
	}

	return utilerrors.NewAggregate(errs)
}

// Config builds a datasphere.Config based on ServerOptions.
func (o *ServerOptions) Config() *datasphere.Config {
	return &datasphere.Config{
		HTTPOptions:     o.HTTPOptions,
		LogOptions:      o.LogOptions,
		IdentityOptions: o.IdentityOptions,
		AuthzOptions:    o.AuthzOptions,
		DatabaseOptions: o.DatabaseOptions,
		RedisOptions:    o.RedisOptions,
		PoolOptions:     o.PoolOptions,
		ShutdownTimeout: o.ShutdownTimeout,
	}
}
