// Package resolve turns aggregated package requirements into concrete
// version lists by querying a package registry.
//
// [Resolve] loads every package with bounded concurrency and stops
// dispatching on the first failure. [Select] is the pure reducer applied to
// each registry response.
package resolve

import (
	"context"
	stderrors "errors"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/tav/pkg/errors"
	"github.com/matzehuels/tav/pkg/integrations"
	"github.com/matzehuels/tav/pkg/meta"
	"github.com/matzehuels/tav/pkg/observability"
)

// Registry lists the published versions of a package. Deprecation steers
// the choice of latest; publish times are reported for the latest version.
type Registry interface {
	Load(ctx context.Context, name string) (map[string]integrations.Release, error)
}

// RegistryFunc adapts a function to [Registry].
type RegistryFunc func(ctx context.Context, name string) (map[string]integrations.Release, error)

// Load calls f.
func (f RegistryFunc) Load(ctx context.Context, name string) (map[string]integrations.Release, error) {
	return f(ctx, name)
}

// Versions is the resolved version list of one package.
type Versions struct {
	Versions []string `json:"versions"` // ascending, never empty
	Latest   string   `json:"latest"`   // Versions[len(Versions)-1]

	// Published is when Latest was released, zero if the registry does not
	// report it or Latest is a pin it does not list.
	Published time.Time `json:"published,omitzero"`
}

// Resolved maps package names to their versions in the order of the input
// Specs.
type Resolved struct {
	order  []string
	byName map[string]Versions
}

// NewResolved returns an empty Resolved.
func NewResolved() *Resolved {
	return &Resolved{byName: make(map[string]Versions)}
}

// Set stores v for name, appending name to the order on first use.
func (r *Resolved) Set(name string, v Versions) {
	if _, ok := r.byName[name]; !ok {
		r.order = append(r.order, name)
	}
	r.byName[name] = v
}

// Get returns the versions of name.
func (r *Resolved) Get(name string) (Versions, bool) {
	v, ok := r.byName[name]
	return v, ok
}

// Names returns package names in resolution order.
func (r *Resolved) Names() []string { return slices.Clone(r.order) }

// Len returns the number of resolved packages.
func (r *Resolved) Len() int { return len(r.order) }

// Options configures [Resolve].
type Options struct {
	// Concurrency is the maximum number of in-flight registry loads.
	// Values below 1 are treated as 1.
	Concurrency int

	// Mode reduces range matches. Default: ModeMinor.
	Mode Mode

	// OnResolved is called once per package after its versions are
	// selected. Calls may come from multiple goroutines.
	OnResolved func(name string, versions []string)

	// Logger receives debug output. Default: discard.
	Logger *log.Logger
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.Concurrency < 1 {
		o.Concurrency = 1
	}
	if o.Mode == "" {
		o.Mode = ModeMinor
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o
}

// Resolve loads and selects versions for every package in specs.
//
// At most opts.Concurrency loads run at once. The first failure cancels the
// shared context: no further loads are started, loads already in flight run
// to completion, and the failure is returned wrapped as RESOLUTION_FAILED.
// On success the result lists packages in specs.Names() order.
func Resolve(ctx context.Context, specs *meta.Specs, reg Registry, opts Options) (*Resolved, error) {
	opts = opts.WithDefaults()
	names := specs.Names()
	results := make([]Versions, len(names))
	hooks := observability.Suite()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, name := range names {
		if gctx.Err() != nil {
			break
		}
		spec, _ := specs.Get(name)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			hooks.OnResolveStart(gctx, name)
			v, err := resolveOne(gctx, reg, spec, opts.Mode)
			vs := v.Versions
			hooks.OnResolveComplete(gctx, name, len(vs), time.Since(start), err)
			if err != nil {
				return errors.Wrap(errors.ErrCodeResolution, err, "resolve %s", name)
			}
			opts.Logger.Debug("resolved", "package", name, "versions", len(vs))
			results[i] = v
			if opts.OnResolved != nil {
				opts.OnResolved(name, vs)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := NewResolved()
	for i, name := range names {
		out.Set(name, results[i])
	}
	return out, nil
}

func resolveOne(ctx context.Context, reg Registry, spec *meta.PackageSpec, mode Mode) (Versions, error) {
	releases, err := reg.Load(ctx, spec.Name)
	if err != nil {
		return Versions{}, classify(spec.Name, err)
	}
	vs, err := SelectReleases(releases, mode, spec)
	if err != nil {
		return Versions{}, err
	}
	latest := vs[len(vs)-1]
	return Versions{Versions: vs, Latest: latest, Published: releases[latest].Published}, nil
}

func classify(name string, err error) error {
	switch {
	case stderrors.Is(err, integrations.ErrNotFound):
		return errors.Wrap(errors.ErrCodePackageNotFound, err, "package %s not found", name)
	case stderrors.Is(err, integrations.ErrNetwork):
		return errors.Wrap(errors.ErrCodeNetwork, err, "load %s", name)
	default:
		return err
	}
}
