package model

import (
	"fmt"
	"time"
)

// ValidationError reports a malformed input record. The whole batch is
// rejected on the first malformed record.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// ConfigError reports a reference to a resource kind or severity missing from
// the static catalog, or an otherwise unusable configuration. Fatal for the run.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "config: " + e.Reason }

// SolveError reports that the optimal dispatcher failed to solve one day's
// batch, either by exceeding the solve deadline or by returning an unexpected
// solver status. It must never be conflated with "all incidents missed".
type SolveError struct {
	Day     time.Time
	Timeout bool
	Err     error
}

func (e *SolveError) Error() string {
	day := e.Day.Format("2006-01-02")
	if e.Timeout {
		return fmt.Sprintf("solve timed out for %s", day)
	}
	return fmt.Sprintf("solve failed for %s: %v", day, e.Err)
}

func (e *SolveError) Unwrap() error { return e.Err }

// NotFoundError reports a missing input source.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string { return "not found: " + e.Path }
