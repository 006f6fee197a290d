// Package app provides the DataSphere API server application.
package app

import (
	"context"

	"github.com/kart-io/datasphere/cmd/datasphere/app/options"
	"github.com/kart-io/datasphere/internal/datasphere"
	"github.com/kart-io/datasphere/pkg/infra/app"
)

const appDescription = `DataSphere API Server

The REST API behind DataSphere, a community catalogue of shared datasets.

This server provides:
  - Dataset publishing with tags, likes and comments
  - Contributor leaderboard and profiles
  - Notifications for activity on your datasets
  - Moderation and role administration

Examples:
  # Start with the local SQLite database
  datasphere --identity.signing-method=HS256 --identity.key=$IDENTITY_KEY

  # Use MySQL and cache the leaderboard in Redis
  datasphere --database.driver=mysql --database.mysql.host=db --redis.enabled

  # Use config file
  datasphere -c /etc/datasphere/datasphere.yaml

Configuration:
  Configuration can be provided via:
  - Command-line flags (highest priority)
  - Environment variables (prefix: DATASPHERE_)
  - Configuration file (YAML)
  - Default values (lowest priority)`

// NewApp creates a new application instance.
func NewApp() *app.App {
	opts := options.NewServerOptions()

	return app.NewApp(
		app.WithName(datasphere.Name),
		app.WithShortDescription("DataSphere dataset sharing API"),
		app.WithDescription(appDescription),
		app.WithOptions(opts),
		app.WithRunFunc(func(ctx context.Context) error {
			return run(ctx, opts)
		}),
	)
}

func run(ctx context.Context, opts *options.ServerOptions) error {
	srv, err := opts.Config().NewServer(ctx)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
