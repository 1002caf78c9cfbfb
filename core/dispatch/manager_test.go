package dispatch

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/emberops/wildfire/core/availability"
	"github.com/emberops/wildfire/core/catalog"
	"github.com/emberops/wildfire/core/dispatch/logging"
	"github.com/emberops/wildfire/core/events"
	"github.com/emberops/wildfire/core/metrics"
	"github.com/emberops/wildfire/core/model"
	"github.com/emberops/wildfire/internal/eventbus"
)

type captureSink struct {
	records []metrics.AllocationRecord
}

func (s *captureSink) RecordAllocations(recs []metrics.AllocationRecord) error {
	s.records = append(s.records, recs...)
	return nil
}

func testRecords() []model.RawRecord {
	return []model.RawRecord{
		{ID: "f1", Timestamp: "2025-06-01 10:30:00", FireStartTime: "2025-06-01 10:00:00", Severity: "high"},
		{ID: "f2", Timestamp: "2025-06-01 14:00:00", FireStartTime: "2025-06-01 13:30:00", Severity: "low"},
		{ID: "f3", Timestamp: "2025-06-02 09:15:00", FireStartTime: "2025-06-02 09:00:00", Severity: "medium"},
	}
}

func newTestManager(t *testing.T, strategyName string, sink metrics.MetricsSink, bus eventbus.EventBus) *Manager {
	t.Helper()
	cat := catalog.Default()
	cfg := Config{Strategy: strategyName}
	cfg.SetDefaults()
	strat, err := NewStrategy(cat, cfg)
	if err != nil {
		t.Fatalf("new strategy: %v", err)
	}
	return NewManager(strat, cat, nil, sink, bus)
}

func TestManagerRunConservesIncidents(t *testing.T) {
	m := newTestManager(t, "greedy", nil, nil)
	report, err := m.Run(context.Background(), testRecords())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Total() != 3 {
		t.Fatalf("expected 3 incidents in report, got %d", report.Total())
	}
	counted := 0
	for _, sc := range report.FireSeverityReport {
		counted += sc.Addressed + sc.Missed
	}
	if counted != 3 {
		t.Fatalf("severity breakdown counts %d incidents, expected 3", counted)
	}
	if report.FiresDelayed != 0 {
		t.Fatalf("expected ample capacity to address everything, got %d delayed", report.FiresDelayed)
	}
	if report.ResourceAllocation != nil {
		t.Fatalf("greedy report must not carry allocation detail")
	}
}

func TestManagerRejectsUnknownSeverityWithoutPartialReport(t *testing.T) {
	m := newTestManager(t, "greedy", nil, nil)
	records := []model.RawRecord{
		{ID: "f1", Timestamp: "2025-06-01 10:30:00", FireStartTime: "2025-06-01 10:00:00", Severity: "critical"},
	}
	report, err := m.Run(context.Background(), records)
	var vErr *model.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if report.Total() != 0 || report.FireSeverityReport != nil {
		t.Fatalf("expected zero report on failure, got %+v", report)
	}
}

func TestManagerPublishesRunEvents(t *testing.T) {
	bus := eventbus.New()
	sub := bus.Subscribe()
	m := newTestManager(t, "greedy", nil, bus)
	if _, err := m.Run(context.Background(), testRecords()); err != nil {
		t.Fatalf("run: %v", err)
	}

	var assignments, days, completed int
	for {
		select {
		case e := <-sub:
			switch e.(type) {
			case events.AssignmentEvent:
				assignments++
			case events.DaySolvedEvent:
				days++
			case events.RunCompletedEvent:
				completed++
			}
			continue
		default:
		}
		break
	}
	if assignments != 3 {
		t.Fatalf("expected 3 assignment events, got %d", assignments)
	}
	if days != 2 {
		t.Fatalf("expected 2 day events, got %d", days)
	}
	if completed != 1 {
		t.Fatalf("expected 1 completion event, got %d", completed)
	}
}

func TestManagerRecordsMetricsAndPersistsRun(t *testing.T) {
	sink := &captureSink{}
	m := newTestManager(t, "greedy", sink, nil)
	store, err := logging.NewJSONLStore(filepath.Join(t.TempDir(), "runs.jsonl"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	m.SetRunStore(store)

	report, err := m.Run(context.Background(), testRecords())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sink.records) != 3 {
		t.Fatalf("expected 3 allocation records, got %d", len(sink.records))
	}
	for _, rec := range sink.records {
		if !rec.Addressed {
			t.Fatalf("expected addressed record, got %+v", rec)
		}
		if rec.Strategy != "greedy" {
			t.Fatalf("unexpected strategy %q", rec.Strategy)
		}
	}

	runs, err := store.Query(context.Background(), logging.RunQuery{Strategy: "greedy"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 persisted run, got %d", len(runs))
	}
	if runs[0].Incidents != 3 || runs[0].Report.Total() != report.Total() {
		t.Fatalf("persisted run mismatch: %+v", runs[0])
	}
}

func TestManagerOptimalReportCarriesAllocationDetail(t *testing.T) {
	m := newTestManager(t, "optimal", nil, nil)
	report, err := m.Run(context.Background(), testRecords())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.ResourceAllocation == nil {
		t.Fatalf("expected allocation detail in optimal report")
	}
	day, ok := report.ResourceAllocation["2025-06-01"]
	if !ok {
		t.Fatalf("expected allocation for 2025-06-01, got %v", report.ResourceAllocation)
	}
	if len(day["f1"]) == 0 {
		t.Fatalf("expected kinds assigned to f1, got %v", day)
	}
}

func TestManagerOptimalCarriesReservationsAcrossMidnight(t *testing.T) {
	cat := longDeployCatalog(t)
	cfg := Config{Strategy: "optimal"}
	cfg.SetDefaults()
	strat, err := NewStrategy(cat, cfg)
	if err != nil {
		t.Fatalf("new strategy: %v", err)
	}
	m := NewManager(strat, cat, nil, nil, nil)

	// The engine deployed late on day one stays busy until 01:00, so the
	// second fire must come back as a delayed miss rather than an error.
	records := []model.RawRecord{
		{ID: "f1", Timestamp: "2025-06-01 23:10:00", FireStartTime: "2025-06-01 23:00:00", Severity: "low"},
		{ID: "f2", Timestamp: "2025-06-02 00:40:00", FireStartTime: "2025-06-02 00:30:00", Severity: "low"},
	}
	report, err := m.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.FiresAddressed != 1 || report.FiresDelayed != 1 {
		t.Fatalf("expected 1 addressed and 1 delayed, got %+v", report)
	}
	if report.EstimatedDamageCosts != 50000 {
		t.Fatalf("damage costs = %v, want 50000", report.EstimatedDamageCosts)
	}
}

type solveCaptureSink struct {
	captureSink
	solves []metrics.SolveStat
}

func (s *solveCaptureSink) RecordSolve(stat metrics.SolveStat) error {
	s.solves = append(s.solves, stat)
	return nil
}

type timeoutStrategy struct{}

func (timeoutStrategy) Name() string { return "optimal" }

func (timeoutStrategy) AllocateDay(_ context.Context, day model.DayBatch, _ *availability.Tracker) (DayResult, error) {
	return DayResult{}, &model.SolveError{Day: day.Day, Timeout: true, Err: context.DeadlineExceeded}
}

func TestManagerRecordsTimedOutSolve(t *testing.T) {
	sink := &solveCaptureSink{}
	m := NewManager(timeoutStrategy{}, catalog.Default(), nil, sink, nil)

	_, err := m.Run(context.Background(), testRecords())
	var solveErr *model.SolveError
	if !errors.As(err, &solveErr) || !solveErr.Timeout {
		t.Fatalf("expected timeout SolveError, got %v", err)
	}
	if len(sink.solves) != 1 {
		t.Fatalf("expected 1 solve stat, got %d", len(sink.solves))
	}
	stat := sink.solves[0]
	if !stat.TimedOut {
		t.Fatalf("expected solve stat marked timed out: %+v", stat)
	}
	if stat.Strategy != "optimal" || stat.Incidents != 2 {
		t.Fatalf("unexpected solve stat %+v", stat)
	}
}

func TestManagerRecordsSolveStatsPerDay(t *testing.T) {
	sink := &solveCaptureSink{}
	m := newTestManager(t, "greedy", sink, nil)
	if _, err := m.Run(context.Background(), testRecords()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sink.solves) != 2 {
		t.Fatalf("expected 2 solve stats, got %d", len(sink.solves))
	}
	for _, stat := range sink.solves {
		if stat.TimedOut {
			t.Fatalf("unexpected timed-out stat %+v", stat)
		}
	}
}
