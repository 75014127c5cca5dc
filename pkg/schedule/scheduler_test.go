package schedule

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeRun struct {
	needsInstall bool
	install      Outcome
	result       Outcome
	delay        time.Duration
	counters     *counters

	calls atomic.Int32
}

type counters struct {
	installs, runs       atomic.Int32
	maxInstalls, maxRuns atomic.Int32
}

func bump(cur, peak *atomic.Int32) func() {
	n := cur.Add(1)
	for {
		m := peak.Load()
		if n <= m || peak.CompareAndSwap(m, n) {
			break
		}
	}
	return func() { cur.Add(-1) }
}

func (r *fakeRun) NeedsInstall() bool { return r.needsInstall }

func (r *fakeRun) Continue(ctx context.Context) <-chan Outcome {
	ch := make(chan Outcome, 1)
	call := r.calls.Add(1)
	go func() {
		switch call {
		case 1:
			if r.counters != nil && r.needsInstall {
				defer bump(&r.counters.installs, &r.counters.maxInstalls)()
			}
			time.Sleep(r.delay)
			ch <- r.install
		case 2:
			if r.counters != nil {
				defer bump(&r.counters.runs, &r.counters.maxRuns)()
			}
			time.Sleep(r.delay)
			ch <- r.result
		default:
			ch <- Errored
		}
	}()
	return ch
}

type fakeTest struct {
	name string
	size int
	runs []*fakeRun

	mu   sync.Mutex
	next int
}

func (t *fakeTest) Name() string    { return t.name }
func (t *fakeTest) MatrixSize() int { return t.size }

func (t *fakeTest) Next() Run {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.next >= len(t.runs) {
		return nil
	}
	r := t.runs[t.next]
	t.next++
	return r
}

func newTest(name string, runs ...*fakeRun) *fakeTest {
	return &fakeTest{name: name, size: len(runs), runs: runs}
}

func passing(needsInstall bool) *fakeRun {
	return &fakeRun{needsInstall: needsInstall, install: Installed, result: Passed}
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) update(t Test, s Status) {
	r.mu.Lock()
	r.events = append(r.events, t.Name()+":"+string(s))
	r.mu.Unlock()
}

func (r *recorder) forTest(name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if len(e) > len(name) && e[:len(name)+1] == name+":" {
			out = append(out, e[len(name)+1:])
		}
	}
	return out
}

func TestDrainEmptyMatrix(t *testing.T) {
	rec := &recorder{}
	report := New(Options{OnUpdate: rec.update}).Drain(context.Background(), []Test{newTest("a")})

	if len(report.Failures) != 0 {
		t.Errorf("Failures = %v", report.Failures)
	}
	if got := rec.forTest("a"); !slices.Equal(got, []string{"queued", "done"}) {
		t.Errorf("statuses = %v", got)
	}
}

func TestDrainWithInstall(t *testing.T) {
	rec := &recorder{}
	run := passing(true)
	New(Options{OnUpdate: rec.update}).Drain(context.Background(), []Test{newTest("a", run)})

	want := []string{"queued", "waiting", "installing", "running", "success", "done"}
	if got := rec.forTest("a"); !slices.Equal(got, want) {
		t.Errorf("statuses = %v, want %v", got, want)
	}
	if c := run.calls.Load(); c != 2 {
		t.Errorf("Continue called %d times, want 2", c)
	}
}

func TestDrainWithoutInstall(t *testing.T) {
	rec := &recorder{}
	run := passing(false)
	New(Options{OnUpdate: rec.update}).Drain(context.Background(), []Test{newTest("a", run)})

	want := []string{"queued", "running", "success", "done"}
	if got := rec.forTest("a"); !slices.Equal(got, want) {
		t.Errorf("statuses = %v, want %v", got, want)
	}
	if c := run.calls.Load(); c != 2 {
		t.Errorf("Continue called %d times, want 2 (install handshake + run)", c)
	}
}

func TestDrainSuccessKeepsWorker(t *testing.T) {
	rec := &recorder{}
	a := newTest("a", passing(false), passing(true))
	b := newTest("b", passing(false))
	New(Options{Limit: 1, OnUpdate: rec.update}).Drain(context.Background(), []Test{b, a})

	want := []string{
		"a:queued", "b:queued",
		"a:running", "a:success",
		"a:waiting", "a:installing", "a:running", "a:success",
		"a:done",
		"b:running", "b:success", "b:done",
	}
	if !slices.Equal(rec.events, want) {
		t.Errorf("events =\n%v\nwant\n%v", rec.events, want)
	}
}

func TestDrainLargestFirst(t *testing.T) {
	rec := &recorder{}
	tests := []Test{
		&fakeTest{name: "small", size: 1},
		&fakeTest{name: "large", size: 3},
		&fakeTest{name: "medium", size: 2},
		&fakeTest{name: "medium2", size: 2},
	}
	New(Options{Limit: 1, OnUpdate: rec.update}).Drain(context.Background(), tests)

	var order []string
	for _, e := range rec.events {
		if name, ok := cutSuffix(e, ":done"); ok {
			order = append(order, name)
		}
	}
	want := []string{"large", "medium", "medium2", "small"}
	if !slices.Equal(order, want) {
		t.Errorf("completion order = %v, want %v", order, want)
	}
}

func cutSuffix(s, suffix string) (string, bool) {
	if len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix {
		return s[:len(s)-len(suffix)], true
	}
	return s, false
}

func TestDrainFailures(t *testing.T) {
	rec := &recorder{}
	failing := newTest("failing",
		&fakeRun{install: Installed, result: Failed},
		passing(false),
	)
	broken := newTest("broken", &fakeRun{needsInstall: true, install: Errored}, passing(false))
	erroring := newTest("erroring", &fakeRun{install: Installed, result: Errored}, passing(false))
	ok := newTest("ok", passing(false), passing(false))

	report := New(Options{Limit: 1, OnUpdate: rec.update}).Drain(
		context.Background(), []Test{failing, broken, erroring, ok})

	var names []string
	for _, f := range report.Failures {
		names = append(names, f.Name())
	}
	if want := []string{"failing", "broken", "erroring"}; !slices.Equal(names, want) {
		t.Errorf("Failures = %v, want %v", names, want)
	}

	for _, tt := range []struct {
		test *fakeTest
		want []string
	}{
		{failing, []string{"queued", "running", "failure"}},
		{broken, []string{"queued", "waiting", "installing", "error"}},
		{erroring, []string{"queued", "running", "error"}},
	} {
		if got := rec.forTest(tt.test.name); !slices.Equal(got, tt.want) {
			t.Errorf("%s statuses = %v, want %v", tt.test.name, got, tt.want)
		}
		if tt.test.next != 1 {
			t.Errorf("%s: Next called %d times, want 1 (terminal after failure)", tt.test.name, tt.test.next)
		}
	}
	if ok.next != 2 {
		t.Errorf("ok: ran %d iterations, want 2", ok.next)
	}
}

func TestDrainConcurrencyLimits(t *testing.T) {
	c := &counters{}
	var tests []Test
	for i := range 6 {
		var runs []*fakeRun
		for range 3 {
			runs = append(runs, &fakeRun{
				needsInstall: true, install: Installed, result: Passed,
				delay: 2 * time.Millisecond, counters: c,
			})
		}
		tests = append(tests, newTest(fmt.Sprintf("t%d", i), runs...))
	}

	report := New(Options{Limit: 3, InstallLimit: 1}).Drain(context.Background(), tests)
	if len(report.Failures) != 0 {
		t.Errorf("Failures = %d", len(report.Failures))
	}
	if m := c.maxInstalls.Load(); m > 1 {
		t.Errorf("max concurrent installs = %d, want <= 1", m)
	}
	if m := c.maxRuns.Load(); m > 3 {
		t.Errorf("max concurrent runs = %d, want <= 3", m)
	}
	for _, tt := range tests {
		if n := tt.(*fakeTest).next; n != 3 {
			t.Errorf("%s ran %d iterations, want 3", tt.Name(), n)
		}
	}
}

func TestDrainCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	block := &fakeRun{needsInstall: true, install: Installed, result: Passed, delay: 50 * time.Millisecond}
	report := New(Options{}).Drain(ctx, []Test{newTest("a", block)})
	if len(report.Failures) != 1 {
		t.Errorf("Failures = %d, want 1", len(report.Failures))
	}
}

func TestOutcomeString(t *testing.T) {
	for o, want := range map[Outcome]string{
		Installed: "installed", Passed: "passed", Failed: "failed", Errored: "errored",
	} {
		if got := o.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", o, got, want)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, s := range []Status{StatusFailure, StatusError, StatusDone} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []Status{StatusQueued, StatusWaiting, StatusInstalling, StatusRunning, StatusSuccess} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
