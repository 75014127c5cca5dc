package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tav/pkg/integrations/registries"
	"github.com/matzehuels/tav/pkg/matrix"
	"github.com/matzehuels/tav/pkg/resolve"
	"github.com/matzehuels/tav/pkg/schedule"
	"github.com/matzehuels/tav/pkg/suite"
)

// installDefaults are the install command and pin format used per registry
// when neither flags nor tav.toml set them.
var installDefaults = map[string]struct {
	install   string
	pinFormat string
}{
	"npm":     {"npm install --no-save", "{name}@{version}"},
	"pypi":    {"pip install --quiet", "{name}=={version}"},
	"crates":  {"cargo add", "{name}@={version}"},
	"goproxy": {"go get", "{name}@{version}"},
}

// runOpts holds the flags of the run and resolve commands.
type runOpts struct {
	cacheFlags

	config       string
	registry     string
	registryURL  string
	versions     string
	limit        int
	installLimit int
	resolveLimit int
	samples      int
	seed         uint64
	install      string
	pinFormat    string
	tests        []string
	env          []string

	tui    bool
	json   bool
	stream bool
}

func (o *runOpts) registerCommon(cmd *cobra.Command) {
	o.cacheFlags.register(cmd)
	cmd.Flags().StringVar(&o.config, "config", "", "config file (default: ./"+configFile+" if present)")
	cmd.Flags().StringVar(&o.registry, "registry", registries.Default, "package registry: "+strings.Join(registries.Names(), ", "))
	cmd.Flags().StringVar(&o.registryURL, "registry-url", "", "registry endpoint override")
	cmd.Flags().StringVar(&o.versions, "versions", string(suite.DefaultVersions), "versions to test per range: all, patch, minor, major")
	cmd.Flags().IntVar(&o.resolveLimit, "resolve-limit", suite.DefaultResolveLimit, "concurrent registry lookups")
	registerCompletions(cmd)
}

func (o *runOpts) registerRun(cmd *cobra.Command) {
	cmd.Flags().IntVar(&o.limit, "limit", suite.DefaultLimit, "tests run concurrently")
	cmd.Flags().IntVar(&o.installLimit, "install-limit", suite.DefaultInstallLimit, "installs run concurrently")
	cmd.Flags().IntVar(&o.samples, "samples", 0, "random combinations to run per folder (0 = all)")
	cmd.Flags().Uint64Var(&o.seed, "seed", suite.DefaultSeed, "seed for --samples")
	cmd.Flags().StringVar(&o.install, "install", "", "install command; pins are appended (default depends on --registry)")
	cmd.Flags().StringVar(&o.pinFormat, "pin-format", "", "install argument per pin, with {name} and {version}")
	cmd.Flags().StringArrayVarP(&o.tests, "test", "t", nil, "only run tests matching this glob (repeatable)")
	cmd.Flags().StringArrayVarP(&o.env, "env", "e", nil, "extra environment KEY=VALUE (repeatable)")
	cmd.Flags().BoolVar(&o.tui, "tui", false, "show a live status view")
	cmd.Flags().BoolVar(&o.json, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&o.stream, "stream", false, "stream command output")
}

// applyConfig fills every flag the user did not set from tav.toml.
func (o *runOpts) applyConfig(cmd *cobra.Command) (fileConfig, error) {
	path, required := o.config, true
	if path == "" {
		path, required = configFile, false
	}
	cfg, err := loadConfig(path, required)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if f := flags.Lookup(name); f != nil && !f.Changed {
			apply()
		}
	}
	set("registry", func() { o.registry = or(cfg.Registry, o.registry) })
	set("registry-url", func() { o.registryURL = or(cfg.RegistryURL, o.registryURL) })
	set("versions", func() { o.versions = or(cfg.Versions, o.versions) })
	set("cache-url", func() { o.cacheURL = or(cfg.CacheURL, o.cacheURL) })
	set("resolve-limit", func() { o.resolveLimit = orInt(cfg.ResolveLimit, o.resolveLimit) })
	set("limit", func() { o.limit = orInt(cfg.Limit, o.limit) })
	set("install-limit", func() { o.installLimit = orInt(cfg.InstallLimit, o.installLimit) })
	set("samples", func() { o.samples = orInt(cfg.Samples, o.samples) })
	set("seed", func() {
		if cfg.Seed != 0 {
			o.seed = cfg.Seed
		}
	})
	set("install", func() {
		if len(cfg.Install) > 0 {
			o.install = strings.Join(cfg.Install, " ")
		}
	})
	set("pin-format", func() { o.pinFormat = or(cfg.PinFormat, o.pinFormat) })
	set("test", func() {
		if len(cfg.Test) > 0 {
			o.tests = cfg.Test
		}
	})
	return cfg, nil
}

func or(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func orInt(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}

// folders returns the command-line folders, the configured ones, or ".".
func folders(args []string, cfg fileConfig) []string {
	switch {
	case len(args) > 0:
		return args
	case len(cfg.Folders) > 0:
		return cfg.Folders
	default:
		return []string{"."}
	}
}

// environ merges tav.toml env with --env KEY=VALUE flags.
func (o *runOpts) environ(cfg fileConfig) (map[string]string, error) {
	env := make(map[string]string, len(cfg.Env)+len(o.env))
	for k, v := range cfg.Env {
		env[k] = v
	}
	for _, kv := range o.env {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --env %q: want KEY=VALUE", kv)
		}
		env[k] = v
	}
	return env, nil
}

// suiteOptions builds suite options; the registry is filled in by the caller.
func (o *runOpts) suiteOptions(cfg fileConfig) (suite.Options, error) {
	env, err := o.environ(cfg)
	if err != nil {
		return suite.Options{}, err
	}
	install, pinFormat := o.install, o.pinFormat
	if d, ok := installDefaults[o.registry]; ok {
		install, pinFormat = or(install, d.install), or(pinFormat, d.pinFormat)
	}
	return suite.Options{
		Limit:         o.limit,
		InstallLimit:  o.installLimit,
		ResolveLimit:  o.resolveLimit,
		Versions:      resolve.Mode(o.versions),
		TestPatterns:  o.tests,
		GlobalSamples: o.samples,
		Seed:          o.seed,
		Install:       strings.Fields(install),
		PinFormat:     pinFormat,
		Env:           env,
	}, nil
}

// runCommand creates the run command.
func (c *CLI) runCommand() *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "run [folders...]",
		Short: "Run every test folder against its version matrix",
		Long: `Run reads .tav.yml from each folder (default: the current directory),
resolves the declared versions and runs each test once per combination.

Example .tav.yml:

  - name: express
    packages:
      express: ^4.0.0
      body-parser: { versions: latest }
    commands:
      - node test/express.js`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.applyConfig(cmd)
			if err != nil {
				return err
			}
			return c.runSuite(cmd.Context(), folders(args, cfg), opts, cfg)
		},
	}

	opts.registerCommon(cmd)
	opts.registerRun(cmd)

	return cmd
}

func (c *CLI) runSuite(ctx context.Context, dirs []string, opts runOpts, cfg fileConfig) error {
	sopts, err := opts.suiteOptions(cfg)
	if err != nil {
		return err
	}
	reg, closeCache, err := c.newRegistry(ctx, opts.registry, opts.registryURL, opts.cacheFlags)
	if err != nil {
		return err
	}
	defer closeCache()

	sopts.Registry = reg
	sopts.Logger = c.Logger
	if opts.stream && !opts.tui {
		sopts.Output = os.Stderr
	}
	s := suite.New(dirs, sopts)

	var res *suite.Result
	if opts.tui {
		res, err = runTUI(ctx, s)
	} else {
		if !opts.json {
			s.On(printEvent)
		}
		res, err = s.Run(ctx)
	}
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if opts.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		fmt.Println()
		printSummary(res)
	}

	if !res.OK() {
		return fmt.Errorf("%d of %d folders failed", len(res.Failures), len(dirs))
	}
	return nil
}

// printEvent renders suite events as status lines.
func printEvent(e suite.Event) {
	switch e := e.(type) {
	case suite.PackageResolved:
		printInfo("%s %s", StyleValue.Render(e.Package), StyleDim.Render(strings.Join(e.Versions, ", ")))
	case suite.Update:
		name := e.Test.Name()
		var current string
		if f, ok := e.Test.(*matrix.Folder); ok {
			current = f.Current()
		}
		switch e.Status {
		case schedule.StatusRunning:
			printInfo("%s %s", name, StyleDim.Render(current))
		case schedule.StatusInstalling:
			printDetail("installing %s", current)
		case schedule.StatusSuccess:
			printSuccess("%s %s", name, StyleDim.Render(current))
		case schedule.StatusFailure:
			printError("%s %s", name, StyleError.Render("failed: "+current))
		case schedule.StatusError:
			printError("%s %s", name, StyleError.Render("errored: "+current))
		case schedule.StatusDone:
			printDetail("%s done", name)
		}
	}
}
