package metrics

import "github.com/emberops/wildfire/core/model"

// MultiSink fans out records to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAllocations forwards the records to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordAllocations(records []AllocationRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordAllocations(records); err != nil {
			return err
		}
	}
	return nil
}

// RecordSolve forwards solve statistics to sinks that record them.
func (m *MultiSink) RecordSolve(stat SolveStat) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SolveRecorder); ok {
			if err := rec.RecordSolve(stat); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close releases sinks holding external resources, such as client
// connections.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}

// RecordReport forwards the final report to sinks that record it.
func (m *MultiSink) RecordReport(runID string, report model.Report) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ReportRecorder); ok {
			if err := rec.RecordReport(runID, report); err != nil {
				return err
			}
		}
	}
	return nil
}
