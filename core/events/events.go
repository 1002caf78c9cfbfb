package events

import (
	"time"

	"github.com/emberops/wildfire/core/model"
)

// AssignmentEvent is published when a resource unit is committed to an
// incident.
type AssignmentEvent struct {
	IncidentID string
	Severity   model.Severity
	Kind       string
	Unit       int
	At         time.Time
	Until      time.Time
	Cost       float64
}

// MissedFireEvent is published when an incident cannot be served. It replaces
// the unstructured console output the allocation scripts used to emit and
// carries no control-flow meaning.
type MissedFireEvent struct {
	IncidentID string
	Severity   model.Severity
	Day        time.Time
	DamageCost float64
}

// DaySolvedEvent is published after a strategy finishes one day's batch.
type DaySolvedEvent struct {
	Day       time.Time
	Strategy  string
	Incidents int
	Duration  time.Duration
	Err       error
}

// RunCompletedEvent is published once per run with the final report.
type RunCompletedEvent struct {
	RunID    string
	Strategy string
	Report   model.Report
}
