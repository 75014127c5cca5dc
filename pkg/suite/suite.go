// Package suite composes declaration loading, version resolution and test
// scheduling into one run.
//
// A run is a waterfall of three stages:
//
//  1. prepare: load every folder's .tav.yml and aggregate package specs
//  2. resolve: fetch and select versions from the registry
//  3. schedule: expand each folder's matrix and drain it
//
// Any stage error stops the run. Test failures are not stage errors; they
// are collected in [Result.Failures].
package suite

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/tav/pkg/errors"
	"github.com/matzehuels/tav/pkg/matrix"
	"github.com/matzehuels/tav/pkg/meta"
	"github.com/matzehuels/tav/pkg/resolve"
	"github.com/matzehuels/tav/pkg/schedule"
)

// ErrAlreadyStarted is returned when Run or Start is called a second time.
var ErrAlreadyStarted = errors.New(errors.ErrCodeAlreadyStarted, "suite already started")

// Result summarizes a finished run.
type Result struct {
	RunID    string            `json:"run_id"`
	Packages *resolve.Resolved `json:"-"`
	Failures []schedule.Test   `json:"-"`
	Records  []matrix.Record   `json:"records"`
	Duration time.Duration     `json:"duration"`
}

// OK reports whether every test passed.
func (r *Result) OK() bool { return len(r.Failures) == 0 }

// Counts tallies records by outcome.
func (r *Result) Counts() (passed, failed, errored int) {
	for _, rec := range r.Records {
		switch rec.Outcome {
		case schedule.Passed:
			passed++
		case schedule.Failed:
			failed++
		default:
			errored++
		}
	}
	return passed, failed, errored
}

// Suite runs the tests declared in a set of folders. A Suite runs once.
type Suite struct {
	folders []string
	opts    Options

	started atomic.Bool

	emitMu   sync.Mutex
	handlers []Handler

	pkgsMu sync.RWMutex
	pkgs   *meta.Specs
}

// New creates a Suite over folders. Options are validated when the suite
// runs.
func New(folders []string, opts Options) *Suite {
	return &Suite{folders: folders, opts: opts}
}

// On registers h for all subsequent events.
func (s *Suite) On(h Handler) {
	s.emitMu.Lock()
	s.handlers = append(s.handlers, h)
	s.emitMu.Unlock()
}

// Packages returns the aggregated package specs, or nil until the suite
// has loaded its folders. It is safe to call while the suite runs.
func (s *Suite) Packages() *meta.Specs {
	s.pkgsMu.RLock()
	defer s.pkgsMu.RUnlock()
	return s.pkgs
}

// Run executes the suite and blocks until it ends. On a stage error the
// partial result is returned with the error; an Error event is emitted only
// if a handler is registered.
func (s *Suite) Run(ctx context.Context) (*Result, error) {
	if !s.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyStarted
	}
	return s.run(ctx, true)
}

// Start executes the suite in the background and calls done, if non-nil,
// with the outcome. Without done, stage errors are always emitted as Error
// events (and logged when nobody listens).
func (s *Suite) Start(ctx context.Context, done func(*Result, error)) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	go func() {
		res, err := s.run(ctx, done != nil)
		if done != nil {
			done(res, err)
		}
	}()
	return nil
}

func (s *Suite) run(ctx context.Context, callback bool) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.NewString()}

	err := s.waterfall(ctx, res)
	res.Duration = time.Since(start)
	if err != nil {
		s.fail(err, callback)
	}
	s.emit(End{})
	return res, err
}

func (s *Suite) waterfall(ctx context.Context, res *Result) error {
	if err := s.opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	logger := s.opts.Logger.WithPrefix(res.RunID[:8])

	decls, pkgs, err := s.prepare()
	if err != nil {
		return err
	}
	logger.Debug("prepared", "folders", len(decls), "packages", pkgs.Len())

	resolved, err := resolve.Resolve(ctx, pkgs, s.opts.Registry, resolve.Options{
		Concurrency: s.opts.ResolveLimit,
		Mode:        s.opts.Versions,
		Logger:      logger,
		OnResolved: func(name string, versions []string) {
			s.emit(PackageResolved{Package: name, Versions: versions})
		},
	})
	if err != nil {
		return err
	}
	res.Packages = resolved
	logger.Info("resolved versions", "packages", resolved.Len())

	return s.schedule(ctx, decls, resolved, res, logger)
}

func (s *Suite) prepare() ([]meta.Declaration, *meta.Specs, error) {
	if len(s.folders) == 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "no test folders given")
	}
	decls, err := matrix.LoadDeclarations(s.folders)
	if err != nil {
		return nil, nil, err
	}
	pkgs := meta.Build(decls)
	s.pkgsMu.Lock()
	s.pkgs = pkgs
	s.pkgsMu.Unlock()
	return decls, pkgs, nil
}

func (s *Suite) schedule(ctx context.Context, decls []meta.Declaration, resolved *resolve.Resolved, res *Result, logger *log.Logger) error {
	mopts := s.opts.matrixOptions(logger)
	folders := make([]*matrix.Folder, 0, len(decls))
	tests := make([]schedule.Test, 0, len(decls))
	for _, d := range decls {
		f, err := matrix.NewFolder(d, resolved, mopts)
		if err != nil {
			return err
		}
		folders = append(folders, f)
		tests = append(tests, f)
	}

	report := schedule.New(schedule.Options{
		Limit:        s.opts.Limit,
		InstallLimit: s.opts.InstallLimit,
		Logger:       logger,
		OnUpdate: func(t schedule.Test, st schedule.Status) {
			s.emit(Update{Test: t, Status: st})
		},
	}).Drain(ctx, tests)

	res.Failures = report.Failures
	for _, f := range folders {
		res.Records = append(res.Records, f.Records()...)
	}
	logger.Debug("drained", "iterations", len(res.Records), "failures", len(res.Failures))
	return nil
}

func (s *Suite) fail(err error, callback bool) {
	s.emitMu.Lock()
	listeners := len(s.handlers)
	s.emitMu.Unlock()

	if listeners > 0 || !callback {
		s.emit(Error{Err: err})
	}
	if listeners == 0 && !callback {
		s.opts.Logger.Error("suite failed", "err", errors.UserMessage(err))
	}
}

func (s *Suite) emit(e Event) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	for _, h := range s.handlers {
		h(e)
	}
}
