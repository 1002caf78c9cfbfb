package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emberops/wildfire/core/availability"
	"github.com/emberops/wildfire/core/catalog"
	"github.com/emberops/wildfire/core/dispatch/logging"
	"github.com/emberops/wildfire/core/events"
	"github.com/emberops/wildfire/core/logger"
	"github.com/emberops/wildfire/core/metrics"
	"github.com/emberops/wildfire/core/model"
	"github.com/emberops/wildfire/core/normalize"
	"github.com/emberops/wildfire/internal/eventbus"
)

// Manager orchestrates a full allocation run: normalization, per-day strategy
// execution against a shared availability tracker, event publication, metrics
// recording and report aggregation.
type Manager struct {
	strategy Strategy
	catalog  *catalog.Catalog
	logger   logger.Logger
	metrics  metrics.MetricsSink
	bus      eventbus.EventBus
	store    logging.RunStore
	mu       sync.Mutex
}

// NewManager assembles a manager around the given strategy. Logger and metrics
// default to no-ops when nil; bus and store remain optional.
func NewManager(strategy Strategy, cat *catalog.Catalog, log logger.Logger, sink metrics.MetricsSink, bus eventbus.EventBus) *Manager {
	if log == nil {
		log = logger.NopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Manager{
		strategy: strategy,
		catalog:  cat,
		logger:   log,
		metrics:  sink,
		bus:      bus,
	}
}

// SetRunStore configures the store used to persist completed runs.
func (m *Manager) SetRunStore(store logging.RunStore) {
	m.mu.Lock()
	m.store = store
	m.mu.Unlock()
}

// Close releases resources held by the manager.
func (m *Manager) Close() error {
	if m.bus != nil {
		m.bus.Close()
	}
	m.mu.Lock()
	store := m.store
	m.mu.Unlock()
	if store != nil {
		_ = store.Close()
	}
	return nil
}

// Run normalizes the raw records and allocates every day batch in
// chronological order. A strategy or validation failure aborts the run; no
// partial report is produced.
func (m *Manager) Run(ctx context.Context, records []model.RawRecord) (model.Report, error) {
	runID := uuid.NewString()
	days, err := normalize.Normalize(records)
	if err != nil {
		return model.Report{}, err
	}

	tracker := availability.NewTracker(m.catalog)
	incidents := 0
	results := make([]DayResult, 0, len(days))
	for _, day := range days {
		tracker.ExpireBefore(day.Day)
		start := time.Now()
		res, err := m.strategy.AllocateDay(ctx, day, tracker)
		elapsed := time.Since(start)
		m.publish(events.DaySolvedEvent{
			Day:       day.Day,
			Strategy:  m.strategy.Name(),
			Incidents: len(day.Incidents),
			Duration:  elapsed,
			Err:       err,
		})
		if err != nil {
			m.logger.Errorf("day %s failed after %s: %v", day.Day.Format(dayKeyLayout), elapsed, err)
			m.recordSolve(day, elapsed, err)
			return model.Report{}, err
		}
		incidents += len(day.Incidents)
		m.recordDay(runID, day, res, elapsed)
		results = append(results, res)
	}

	report := Aggregate(results, m.strategy.Name() == "optimal")
	m.publish(events.RunCompletedEvent{RunID: runID, Strategy: m.strategy.Name(), Report: report})
	if rr, ok := m.metrics.(metrics.ReportRecorder); ok {
		if err := rr.RecordReport(runID, report); err != nil {
			m.logger.Warnf("record report: %v", err)
		}
	}
	m.persist(ctx, runID, incidents, report)
	m.logger.Infof("run %s: %d addressed, %d delayed over %d days", runID, report.FiresAddressed, report.FiresDelayed, len(days))
	return report, nil
}

// recordDay publishes per-incident events and forwards allocation outcomes to
// the metrics sink.
func (m *Manager) recordDay(runID string, day model.DayBatch, res DayResult, elapsed time.Duration) {
	recs := make([]metrics.AllocationRecord, 0, len(res.Assignments)+len(res.Missed))
	for _, a := range res.Assignments {
		m.publish(events.AssignmentEvent{
			IncidentID: a.IncidentID,
			Severity:   a.Severity,
			Kind:       a.Kind,
			Unit:       a.Unit,
			At:         a.At,
			Until:      a.Until,
			Cost:       a.Cost,
		})
		recs = append(recs, metrics.AllocationRecord{
			RunID:      runID,
			Strategy:   m.strategy.Name(),
			IncidentID: a.IncidentID,
			Severity:   a.Severity,
			Kind:       a.Kind,
			Unit:       a.Unit,
			Addressed:  true,
			Cost:       a.Cost,
			Day:        day.Day,
			At:         a.At,
		})
	}
	for _, inc := range res.Missed {
		damage := m.catalog.DamageCost(inc.Severity)
		m.publish(events.MissedFireEvent{
			IncidentID: inc.ID,
			Severity:   inc.Severity,
			Day:        day.Day,
			DamageCost: damage,
		})
		recs = append(recs, metrics.AllocationRecord{
			RunID:      runID,
			Strategy:   m.strategy.Name(),
			IncidentID: inc.ID,
			Severity:   inc.Severity,
			DamageCost: damage,
			Day:        day.Day,
		})
	}
	if err := m.metrics.RecordAllocations(recs); err != nil {
		m.logger.Warnf("record allocations: %v", err)
	}
	m.recordSolve(day, elapsed, nil)
}

// recordSolve forwards the day's solve statistics to sinks that record them.
// A timed-out strategy error marks the stat accordingly.
func (m *Manager) recordSolve(day model.DayBatch, elapsed time.Duration, runErr error) {
	sr, ok := m.metrics.(metrics.SolveRecorder)
	if !ok {
		return
	}
	var solveErr *model.SolveError
	stat := metrics.SolveStat{
		Day:       day.Day,
		Strategy:  m.strategy.Name(),
		Incidents: len(day.Incidents),
		Duration:  elapsed,
		TimedOut:  errors.As(runErr, &solveErr) && solveErr.Timeout,
	}
	if err := sr.RecordSolve(stat); err != nil {
		m.logger.Warnf("record solve: %v", err)
	}
}

// persist appends the run record to the configured store, best effort.
func (m *Manager) persist(ctx context.Context, runID string, incidents int, report model.Report) {
	m.mu.Lock()
	store := m.store
	m.mu.Unlock()
	if store == nil {
		return
	}
	rec := logging.RunRecord{
		RunID:     runID,
		Timestamp: time.Now(),
		Strategy:  m.strategy.Name(),
		Incidents: incidents,
		Report:    report,
	}
	if err := store.Append(ctx, rec); err != nil {
		m.logger.Warnf("persist run %s: %v", runID, err)
	}
}

func (m *Manager) publish(e eventbus.Event) {
	if m.bus != nil {
		m.bus.Publish(e)
	}
}
