// Package schedule drains test matrices through two bounded pools: run
// workers that iterate tests and install workers that prepare each
// iteration's dependencies.
//
// Tests are ordered largest matrix first. A run worker pops a test, takes
// its next iteration, hands the install step to the install pool when
// needed and then runs it. A passing test goes back to the front of the
// queue so its matrix keeps its worker; a failing or erroring test is
// terminal and reported in [Report.Failures].
package schedule

import (
	"cmp"
	"context"
	"errors"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tav/pkg/observability"
)

var errInstall = errors.New("install failed")

// Options configures a [Scheduler].
type Options struct {
	Limit        int // concurrent run workers (default 1)
	InstallLimit int // concurrent install workers (default 1)

	// OnUpdate receives every status change. It is called from worker
	// goroutines and must be safe for concurrent use.
	OnUpdate func(Test, Status)

	Logger *log.Logger
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.Limit < 1 {
		o.Limit = 1
	}
	if o.InstallLimit < 1 {
		o.InstallLimit = 1
	}
	if o.OnUpdate == nil {
		o.OnUpdate = func(Test, Status) {}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o
}

// Report is the outcome of [Scheduler.Drain].
type Report struct {
	// Failures lists tests that ended in failure or error, in completion order.
	Failures []Test
}

// Scheduler runs tests with bounded concurrency. It holds no state between
// Drain calls.
type Scheduler struct {
	opts Options
}

// New creates a Scheduler.
func New(opts Options) *Scheduler {
	return &Scheduler{opts: opts.WithDefaults()}
}

type installJob struct {
	test   Test
	run    Run
	result chan<- Outcome
}

type drain struct {
	opts  Options
	hooks observability.SuiteHooks

	mu       sync.Mutex
	cond     *sync.Cond
	queue    Deque[Test]
	inFlight int
	failures []Test

	installs chan installJob
}

// Drain runs every test until its matrix is exhausted or it fails, and
// returns once the queue is empty and no test is in flight.
//
// Cancelling ctx does not abort Drain directly: it is handed to each run,
// whose processes are killed, and remaining tests end with StatusError.
func (s *Scheduler) Drain(ctx context.Context, tests []Test) Report {
	d := &drain{
		opts:     s.opts,
		hooks:    observability.Suite(),
		installs: make(chan installJob),
	}
	d.cond = sync.NewCond(&d.mu)

	ordered := slices.Clone(tests)
	slices.SortStableFunc(ordered, func(a, b Test) int {
		return cmp.Compare(b.MatrixSize(), a.MatrixSize())
	})
	for _, t := range ordered {
		d.queue.PushBack(t)
		d.opts.OnUpdate(t, StatusQueued)
	}
	d.opts.Logger.Debug("scheduling", "tests", len(ordered), "limit", d.opts.Limit, "install_limit", d.opts.InstallLimit)

	var installers sync.WaitGroup
	for range d.opts.InstallLimit {
		installers.Add(1)
		go func() {
			defer installers.Done()
			d.installWorker(ctx)
		}()
	}

	var runners sync.WaitGroup
	for range d.opts.Limit {
		runners.Add(1)
		go func() {
			defer runners.Done()
			d.runWorker(ctx)
		}()
	}
	runners.Wait()

	close(d.installs)
	installers.Wait()

	return Report{Failures: d.failures}
}

// pop blocks while the queue is empty and other tests are in flight, since
// a passing test may be pushed back. It reports false once both are empty.
func (d *drain) pop() (Test, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.queue.Len() == 0 && d.inFlight > 0 {
		d.cond.Wait()
	}
	t, ok := d.queue.PopFront()
	if ok {
		d.inFlight++
	}
	return t, ok
}

// complete releases an in-flight test. A requeued test is pushed to the
// front before the in-flight count drops so no worker can observe an empty
// scheduler in between.
func (d *drain) complete(t Test, requeue, failed bool) {
	d.mu.Lock()
	if requeue {
		d.queue.PushFront(t)
	}
	if failed {
		d.failures = append(d.failures, t)
	}
	d.inFlight--
	d.cond.Broadcast()
	d.mu.Unlock()
}

func (d *drain) runWorker(ctx context.Context) {
	for {
		t, ok := d.pop()
		if !ok {
			return
		}
		d.iterate(ctx, t)
	}
}

func (d *drain) iterate(ctx context.Context, t Test) {
	run := t.Next()
	if run == nil {
		d.opts.OnUpdate(t, StatusDone)
		d.complete(t, false, false)
		return
	}

	var installed Outcome
	if run.NeedsInstall() {
		d.opts.OnUpdate(t, StatusWaiting)
		installed = d.install(ctx, t, run)
	} else {
		installed = await(ctx, run.Continue(ctx))
	}
	if installed != Installed {
		d.opts.Logger.Debug("install failed", "test", t.Name())
		d.finish(t, StatusError)
		return
	}

	d.opts.OnUpdate(t, StatusRunning)
	d.hooks.OnRunStart(ctx, t.Name())
	start := time.Now()
	outcome := await(ctx, run.Continue(ctx))
	d.hooks.OnRunComplete(ctx, t.Name(), outcome.String(), time.Since(start))

	switch outcome {
	case Passed:
		d.opts.OnUpdate(t, StatusSuccess)
		d.complete(t, true, false)
	case Failed:
		d.finish(t, StatusFailure)
	default:
		d.finish(t, StatusError)
	}
}

func (d *drain) finish(t Test, status Status) {
	d.opts.OnUpdate(t, status)
	d.complete(t, false, true)
}

// install hands the run to the install pool and waits for its outcome.
func (d *drain) install(ctx context.Context, t Test, run Run) Outcome {
	result := make(chan Outcome, 1)
	select {
	case d.installs <- installJob{test: t, run: run, result: result}:
	case <-ctx.Done():
		return Errored
	}
	return <-result
}

func (d *drain) installWorker(ctx context.Context) {
	for job := range d.installs {
		d.opts.OnUpdate(job.test, StatusInstalling)
		d.hooks.OnInstallStart(ctx, job.test.Name())
		start := time.Now()
		outcome := await(ctx, job.run.Continue(ctx))

		var err error
		if outcome != Installed {
			err = errInstall
		}
		d.hooks.OnInstallComplete(ctx, job.test.Name(), time.Since(start), err)
		job.result <- outcome
	}
}

// await reads the single outcome of a Continue call. A closed channel or a
// cancelled context count as Errored.
func await(ctx context.Context, ch <-chan Outcome) Outcome {
	select {
	case o, ok := <-ch:
		if !ok {
			return Errored
		}
		return o
	case <-ctx.Done():
		return Errored
	}
}
