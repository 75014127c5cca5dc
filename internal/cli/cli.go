package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tav/pkg/buildinfo"
	"github.com/matzehuels/tav/pkg/cache"
	"github.com/matzehuels/tav/pkg/errors"
	"github.com/matzehuels/tav/pkg/integrations"
	"github.com/matzehuels/tav/pkg/integrations/registries"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "tav"

	// configFile is the optional config file read from the working directory.
	configFile = "tav.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level the CLI also
// installs observability hooks that log registry traffic and suite stages.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		installDebugHooks(c.Logger)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "tav runs test suites against every version of their dependencies",
		Long: `tav (test all versions) reads .tav.yml declarations from test folders, resolves
the declared version ranges against a package registry and runs each test once
per version combination, installing dependencies as it goes.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.runCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Registry & Cache Factory
// =============================================================================

// cacheFlags are shared by every command that talks to a registry.
type cacheFlags struct {
	noCache  bool
	refresh  bool
	cacheURL string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the registry response cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached registry responses")
	cmd.Flags().StringVar(&f.cacheURL, "cache-url", "", "cache backend URL (redis://...); default is the local cache directory")
}

// newRegistry creates the named registry client backed by the configured cache.
// The returned cleanup closes the cache.
func (c *CLI) newRegistry(ctx context.Context, name, baseURL string, f cacheFlags) (integrations.Registry, func(), error) {
	backend, err := newCache(ctx, f.noCache, f.cacheURL)
	if err != nil {
		return nil, nil, err
	}
	reg, err := registries.New(name, integrations.Config{
		Cache:   backend,
		Keyer:   registryKeyer(),
		Refresh: f.refresh,
		BaseURL: baseURL,
	})
	if err != nil {
		backend.Close()
		return nil, nil, err
	}
	c.Logger.Debug("registry", "name", reg.Name(), "cache", cacheKind(backend))
	return reg, func() { backend.Close() }, nil
}

// registryKeyer prefixes every cache key with "tav:" so a shared Redis
// holds tav entries apart from other tools.
func registryKeyer() cache.Keyer {
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), appName+":")
}

func newCache(ctx context.Context, noCache bool, url string) (cache.Cache, error) {
	switch {
	case noCache:
		return cache.NewNullCache(), nil
	case strings.HasPrefix(url, "redis://"), strings.HasPrefix(url, "rediss://"):
		return cache.NewRedisCache(ctx, url)
	case url != "":
		return nil, errors.New(errors.ErrCodeInvalidOptions, "unsupported cache URL %q (want redis:// or rediss://)", url)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

func cacheKind(c cache.Cache) string {
	switch c.(type) {
	case *cache.RedisCache:
		return "redis"
	case *cache.FileCache:
		return "file"
	default:
		return "none"
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/tav/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
