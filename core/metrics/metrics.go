package metrics

import (
	"time"

	"github.com/emberops/wildfire/core/model"
)

// AllocationRecord represents one per-incident allocation outcome to be
// recorded. Addressed incidents carry the assigned kind and cost; missed
// incidents carry the accrued damage cost instead.
type AllocationRecord struct {
	RunID      string
	Strategy   string
	IncidentID string
	Severity   model.Severity
	Kind       string
	Unit       int
	Addressed  bool
	Cost       float64
	DamageCost float64
	Day        time.Time
	At         time.Time
}

// MetricsSink records allocation outcomes for observability purposes.
type MetricsSink interface {
	RecordAllocations(records []AllocationRecord) error
}

// SolveStat captures one per-day strategy invocation.
type SolveStat struct {
	Day       time.Time
	Strategy  string
	Incidents int
	Duration  time.Duration
	TimedOut  bool
}

// SolveRecorder optionally records per-day solve statistics.
type SolveRecorder interface {
	RecordSolve(stat SolveStat) error
}

// ReportRecorder optionally records the final run report.
type ReportRecorder interface {
	RecordReport(runID string, report model.Report) error
}

// NopSink ignores all records.
type NopSink struct{}

func (NopSink) RecordAllocations([]AllocationRecord) error { return nil }
