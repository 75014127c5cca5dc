package suite

import "github.com/matzehuels/tav/pkg/schedule"

// Event is emitted to handlers registered with [Suite.On]. It is one of
// [PackageResolved], [Update], [Error] or [End].
type Event interface {
	event()
}

// Handler receives suite events. Calls are serialized.
type Handler func(Event)

// PackageResolved reports the versions selected for one package.
type PackageResolved struct {
	Package  string
	Versions []string
}

// Update reports a test status change.
type Update struct {
	Test   schedule.Test
	Status schedule.Status
}

// Error reports a fatal stage error.
type Error struct {
	Err error
}

// End is the last event of every run.
type End struct{}

func (PackageResolved) event() {}
func (Update) event()          {}
func (Error) event()           {}
func (End) event()             {}
