package schedule

import "context"

// Outcome is the value a [Run] yields each time it is continued.
type Outcome int

const (
	// Installed: dependencies are in place; the run may be continued.
	Installed Outcome = iota
	// Passed: the test commands succeeded.
	Passed
	// Failed: a test command exited non-zero.
	Failed
	// Errored: the install failed or a command could not be started.
	Errored
)

// String returns the lowercase outcome name.
func (o Outcome) String() string {
	switch o {
	case Installed:
		return "installed"
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	default:
		return "errored"
	}
}

// MarshalText encodes the outcome as its name.
func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Run is one iteration of a test's matrix.
//
// Continue advances the run past its next suspension point and yields
// exactly one [Outcome] on the returned channel. The first call installs
// (or confirms nothing needs installing) and yields Installed or Errored;
// the second runs the commands and yields Passed, Failed or Errored.
type Run interface {
	NeedsInstall() bool
	Continue(ctx context.Context) <-chan Outcome
}

// Test is a schedulable unit of work: a named matrix of runs.
type Test interface {
	Name() string
	// MatrixSize is the total number of runs, used for ordering.
	MatrixSize() int
	// Next returns the next run, or nil once the matrix is exhausted.
	Next() Run
}

// Status is a progress state reported through Options.OnUpdate.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusWaiting    Status = "waiting"
	StatusInstalling Status = "installing"
	StatusRunning    Status = "running"
	StatusSuccess    Status = "success"
	StatusFailure    Status = "failure"
	StatusError      Status = "error"
	StatusDone       Status = "done"
)

// Terminal reports whether no further updates follow s for the test.
func (s Status) Terminal() bool {
	switch s {
	case StatusFailure, StatusError, StatusDone:
		return true
	}
	return false
}
