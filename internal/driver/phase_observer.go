package driver

import "time"

// Stage is the step a unit is in.
type Stage uint8

const (
	StageLoad Stage = iota
	StageLower
	StageLint
)

func (s Stage) String() string {
	switch s {
	case StageLoad:
		return "loading"
	case StageLower:
		return "lowering"
	case StageLint:
		return "linting"
	}
	return ""
}

// Status reports where a unit is within a stage.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

// Event describes a progress step of one unit. Unit is empty for
// run-wide events.
type Event struct {
	Unit    string
	Stage   Stage
	Status  Status
	Elapsed time.Duration
	Err     error
}

// ProgressSink receives events from concurrent workers; implementations
// must be safe for concurrent use.
type ProgressSink interface {
	OnEvent(Event)
}

// ProgressFunc adapts a function to ProgressSink.
type ProgressFunc func(Event)

func (f ProgressFunc) OnEvent(ev Event) { f(ev) }

func emit(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}
