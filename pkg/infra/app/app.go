// Package app builds the service command line: cobra for the command, pflag
// for flags and viper for layering a YAML config file and DATASPHERE_*
// environment variables under them.
//
// Precedence, highest first: changed flags, environment, config file, flag
// defaults.
package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kart-io/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	options "github.com/kart-io/datasphere/pkg/app"
)

// configFlag names the flag that points at a config file.
const configFlag = "config"

// RunFunc runs the service once the options are loaded and validated.
type RunFunc func(ctx context.Context) error

// App is a single-command service binary.
type App struct {
	name      string
	shortDesc string
	longDesc  string
	options   options.CliOptions
	run       RunFunc

	cmd *cobra.Command
	v   *viper.Viper
}

// Option configures an App.
type Option func(*App)

// WithName sets the command name. It also names the config file and the
// environment prefix.
func WithName(name string) Option {
	return func(a *App) {
		a.name = name
	}
}

// WithShortDescription sets the one-line help text.
func WithShortDescription(desc string) Option {
	return func(a *App) {
		a.shortDesc = desc
	}
}

// WithDescription sets the long help text.
func WithDescription(desc string) Option {
	return func(a *App) {
		a.longDesc = desc
	}
}

// WithOptions sets the options filled from flags, env and config.
func WithOptions(opts options.CliOptions) Option {
	return func(a *App) {
		a.options = opts
	}
}

// WithRunFunc sets the function run after the options are ready.
func WithRunFunc(run RunFunc) Option {
	return func(a *App) {
		a.run = run
	}
}

// NewApp creates the command. The name defaults to the binary name.
func NewApp(opts ...Option) *App {
	a := &App{
		name: filepath.Base(os.Args[0]),
		v:    viper.New(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.cmd = &cobra.Command{
		Use:           a.name,
		Short:         a.shortDesc,
		Long:          a.longDesc,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.execute(cmd)
		},
	}

	fs := a.cmd.Flags()
	fs.SortFlags = true
	a.cmd.PersistentFlags().StringP(configFlag, "c", "", "Path to a YAML config file")
	version.AddFlags(a.cmd.PersistentFlags())

	if a.options != nil {
		named := a.options.Flags()
		for _, section := range named.Order {
			fs.AddFlagSet(named.FlagSets[section])
		}
	}
	return a
}

// Run executes the command with the process arguments and exits on error.
func (a *App) Run() {
	if err := a.Execute(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Execute runs the command with args.
func (a *App) Execute(ctx context.Context, args []string) error {
	a.cmd.SetArgs(args)
	return a.cmd.ExecuteContext(ctx)
}

func (a *App) execute(cmd *cobra.Command) error {
	version.PrintAndExitIfRequested()

	if err := a.load(cmd); err != nil {
		return err
	}

	if a.options != nil {
		if err := a.options.Complete(); err != nil {
			return err
		}
		if err := a.options.Validate(); err != nil {
			return err
		}
	}

	if a.run == nil {
		return nil
	}
	return a.run(cmd.Context())
}

// load merges the config file, the environment and the flags into the options.
func (a *App) load(cmd *cobra.Command) error {
	if path, _ := cmd.Flags().GetString(configFlag); path != "" {
		a.v.SetConfigFile(path)
	} else {
		a.v.SetConfigName(a.name)
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
		a.v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(filepath.Join(home, "."+a.name))
		}
		a.v.AddConfigPath(filepath.Join("/etc", a.name))
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	if err := a.expandConfigEnv(); err != nil {
		return fmt.Errorf("failed to expand config: %w", err)
	}

	a.v.SetEnvPrefix(a.EnvPrefix())
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	if a.options == nil {
		return nil
	}
	if err := a.v.Unmarshal(a.options); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}
	return nil
}

// EnvPrefix is the environment variable prefix, e.g. DATASPHERE for
// DATASPHERE_HTTP_ADDR.
func (a *App) EnvPrefix() string {
	return strings.ToUpper(strings.ReplaceAll(a.name, "-", "_"))
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandConfigEnv replaces ${VAR} in config file strings. Unset variables
// are left as written. Expanded values stay in the config layer so flags
// and environment still win over them.
func (a *App) expandConfigEnv() error {
	expanded := map[string]interface{}{}
	for _, key := range a.v.AllKeys() {
		raw, ok := a.v.Get(key).(string)
		if !ok || !strings.Contains(raw, "${") {
			continue
		}
		out := envRef.ReplaceAllStringFunc(raw, func(ref string) string {
			if val, ok := os.LookupEnv(ref[2 : len(ref)-1]); ok {
				return val
			}
			return ref
		})
		if out == raw {
			continue
		}

		node := expanded
		path := strings.Split(key, ".")
		for _, part := range path[:len(path)-1] {
			next, ok := node[part].(map[string]interface{})
			if !ok {
				next = map[string]interface{}{}
				node[part] = next
			}
			node = next
		}
		node[path[len(path)-1]] = out
	}

	if len(expanded) == 0 {
		return nil
	}
	return a.v.MergeConfigMap(expanded)
}
