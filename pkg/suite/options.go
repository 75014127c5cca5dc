package suite

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tav/pkg/errors"
	"github.com/matzehuels/tav/pkg/matrix"
	"github.com/matzehuels/tav/pkg/resolve"
)

// Default option values.
const (
	DefaultLimit        = 1
	DefaultInstallLimit = 1
	DefaultResolveLimit = 4
	DefaultVersions     = resolve.ModeMinor
	DefaultSeed         = 42
)

// Options configures a [Suite].
type Options struct {
	// Limit is the number of tests run concurrently (default 1).
	Limit int
	// InstallLimit is the number of installs run concurrently (default 1).
	InstallLimit int
	// ResolveLimit is the number of concurrent registry lookups (default 4).
	ResolveLimit int

	// Versions selects how range matches are reduced (default "minor").
	Versions resolve.Mode

	// TestPatterns restricts which tests run (glob syntax, default all).
	TestPatterns []string

	// GlobalSamples caps each folder's matrix at a random sample of this
	// many combinations; 0 runs every combination.
	GlobalSamples int
	// Seed seeds the sampler; 0 selects DefaultSeed.
	Seed uint64

	// Registry lists package versions. Required.
	Registry resolve.Registry

	// Install is the install command prefix (default "npm install --no-save").
	Install []string
	// PinFormat renders one install argument (default "{name}@{version}").
	PinFormat string
	// Env is added to every command's environment.
	Env map[string]string

	// Output receives live command output when set.
	Output io.Writer
	Logger *log.Logger
}

// ValidateAndSetDefaults validates options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Registry == nil {
		return errors.New(errors.ErrCodeInvalidOptions, "registry is required")
	}
	if o.Limit < 0 || o.InstallLimit < 0 || o.ResolveLimit < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "limits must be positive")
	}
	if o.GlobalSamples < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "samples must not be negative")
	}
	if o.Limit == 0 {
		o.Limit = DefaultLimit
	}
	if o.InstallLimit == 0 {
		o.InstallLimit = DefaultInstallLimit
	}
	if o.ResolveLimit == 0 {
		o.ResolveLimit = DefaultResolveLimit
	}
	if o.Versions == "" {
		o.Versions = DefaultVersions
	}
	if _, err := resolve.ParseMode(string(o.Versions)); err != nil {
		return err
	}
	if _, err := matrix.CompilePatterns(o.TestPatterns); err != nil {
		return err
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if len(o.Install) == 0 {
		o.Install = matrix.DefaultInstall
	}
	if o.PinFormat == "" {
		o.PinFormat = matrix.DefaultPinFormat
	}
	return nil
}

func (o Options) matrixOptions(logger *log.Logger) matrix.Options {
	return matrix.Options{
		TestPatterns:  o.TestPatterns,
		GlobalSamples: o.GlobalSamples,
		Seed:          o.Seed,
		Install:       o.Install,
		PinFormat:     o.PinFormat,
		Env:           o.Env,
		Output:        o.Output,
		Logger:        logger,
	}
}
