// Package matrix expands a folder's declared tests into version
// combinations and runs them.
//
// A [Folder] implements schedule.Test: its matrix is every test's cartesian
// product of package versions, optionally sampled. Each call to Next yields
// a [Run] that installs the combination (when it differs from what the
// folder has installed) and then executes the test's commands.
package matrix

import (
	"io"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gobwas/glob"

	"github.com/matzehuels/tav/pkg/errors"
	"github.com/matzehuels/tav/pkg/meta"
	"github.com/matzehuels/tav/pkg/resolve"
	"github.com/matzehuels/tav/pkg/schedule"
)

// DefaultInstall is the install command prefix; pins are appended.
var DefaultInstall = []string{"npm", "install", "--no-save"}

// DefaultPinFormat renders a pin as an install argument.
const DefaultPinFormat = "{name}@{version}"

// Options configures how folders are expanded and run.
type Options struct {
	// TestPatterns selects tests by name (glob syntax). Empty selects all.
	TestPatterns []string

	// GlobalSamples caps each folder's matrix at a seeded random sample of
	// this many combinations. 0 keeps every combination.
	GlobalSamples int
	Seed          uint64

	// Install is the install command; one argument per pin is appended.
	Install []string
	// PinFormat renders a pin; {name} and {version} are substituted.
	PinFormat string

	// Env is added to every install and test command.
	Env map[string]string

	// Output, when set, receives the live output of every command.
	Output io.Writer

	Logger *log.Logger
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	if len(o.Install) == 0 {
		o.Install = DefaultInstall
	}
	if o.PinFormat == "" {
		o.PinFormat = DefaultPinFormat
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o
}

// Matcher selects tests by name.
type Matcher struct {
	globs []glob.Glob
}

// CompilePatterns compiles glob patterns into a Matcher. No patterns match
// everything.
func CompilePatterns(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidOptions, err, "invalid test pattern %q", p)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Match reports whether name matches any pattern.
func (m *Matcher) Match(name string) bool {
	if len(m.globs) == 0 {
		return true
	}
	for _, g := range m.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Record is the result of one finished iteration.
type Record struct {
	Folder   string           `json:"folder"`
	Test     string           `json:"test"`
	Packages Combo            `json:"packages"`
	Outcome  schedule.Outcome `json:"outcome"`
	Duration time.Duration    `json:"duration"`
	Output   string           `json:"output,omitempty"` // tail of command output on failure
	Err      string           `json:"error,omitempty"`
}

type iteration struct {
	test  *meta.Test
	combo Combo
}

// Folder is one test folder's matrix. It implements schedule.Test.
type Folder struct {
	dir  string
	opts Options

	mu         sync.Mutex
	iterations []iteration
	next       int
	installed  string
	current    string
	records    []Record
}

var _ schedule.Test = (*Folder)(nil)

// NewFolder expands decl into its version matrix using the resolved
// versions.
//
// For every test selected by opts.TestPatterns, each package's versions are
// narrowed by that test's own specifier and combined in declaration order.
func NewFolder(decl meta.Declaration, resolved *resolve.Resolved, opts Options) (*Folder, error) {
	opts = opts.WithDefaults()
	matcher, err := CompilePatterns(opts.TestPatterns)
	if err != nil {
		return nil, err
	}

	f := &Folder{dir: decl.Folder, opts: opts}
	for i := range decl.Tests {
		t := &decl.Tests[i]
		if !matcher.Match(t.Name) {
			opts.Logger.Debug("skipping test", "folder", decl.Folder, "test", t.Name)
			continue
		}
		names := make([]string, len(t.Packages))
		versions := make([][]string, len(t.Packages))
		for j, p := range t.Packages {
			vs, err := narrow(p.Name, p.Specifier.Versions, resolved)
			if err != nil {
				return nil, errors.Wrap(errors.GetCode(err), err, "%s: test %q", decl.Folder, t.Name)
			}
			names[j], versions[j] = p.Name, vs
		}
		for _, c := range product(names, versions) {
			f.iterations = append(f.iterations, iteration{test: t, combo: c})
		}
	}

	if n := opts.GlobalSamples; n > 0 && len(f.iterations) > n {
		f.iterations = sample(f.iterations, n, opts.Seed)
	}
	return f, nil
}

// sample keeps n elements chosen with a seeded PRNG, in their original order.
func sample(its []iteration, n int, seed uint64) []iteration {
	rng := rand.New(rand.NewPCG(seed, seed))
	picked := rng.Perm(len(its))[:n]
	slices.Sort(picked)
	out := make([]iteration, n)
	for i, idx := range picked {
		out[i] = its[idx]
	}
	return out
}

// Name returns the folder path.
func (f *Folder) Name() string { return f.dir }

// MatrixSize returns the number of iterations.
func (f *Folder) MatrixSize() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.iterations)
}

// Next returns the next iteration, or nil when the matrix is exhausted.
func (f *Folder) Next() schedule.Run {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.next >= len(f.iterations) {
		f.current = ""
		return nil
	}
	it := f.iterations[f.next]
	f.next++
	f.current = it.test.Name + " " + it.combo.String()
	return &Run{
		folder:       f,
		it:           it,
		needsInstall: it.combo.String() != f.installed,
	}
}

// Current describes the iteration most recently returned by Next.
func (f *Folder) Current() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Progress returns the number of iterations started and the total.
func (f *Folder) Progress() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.next, len(f.iterations)
}

// Records returns the finished iterations in completion order.
func (f *Folder) Records() []Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.records)
}

func (f *Folder) record(r Record) {
	f.mu.Lock()
	f.records = append(f.records, r)
	f.mu.Unlock()
}

func (f *Folder) setInstalled(key string) {
	f.mu.Lock()
	f.installed = key
	f.mu.Unlock()
}
