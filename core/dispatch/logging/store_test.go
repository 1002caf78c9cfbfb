package logging

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/emberops/wildfire/core/model"
)

func sampleRecord(runID, strategy string, ts time.Time) RunRecord {
	return RunRecord{
		RunID:     runID,
		Timestamp: ts,
		Strategy:  strategy,
		Incidents: 3,
		Report: model.Report{
			FiresAddressed:        2,
			FiresDelayed:          1,
			TotalOperationalCosts: 7000,
			EstimatedDamageCosts:  50000,
			FireSeverityReport: map[string]model.SeverityCount{
				"high": {Addressed: 1},
				"low":  {Addressed: 1, Missed: 1},
			},
		},
	}
}

func TestSQLiteStore_PersistQuery(t *testing.T) {
	store, err := NewSQLiteStore("file:runs.db?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	now := time.Now()
	if err := store.Append(context.Background(), sampleRecord("r1", "greedy", now)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(context.Background(), sampleRecord("r2", "optimal", now.Add(time.Hour))); err != nil {
		t.Fatalf("append: %v", err)
	}
	out, err := store.Query(context.Background(), RunQuery{Strategy: "optimal"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 record, got %d", len(out))
	}
	if out[0].RunID != "r2" {
		t.Fatalf("expected r2, got %s", out[0].RunID)
	}
	if out[0].Report.FiresAddressed != 2 {
		t.Fatalf("report not preserved: %+v", out[0].Report)
	}
}

func TestJSONLStore_PersistQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	store, err := NewJSONLStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, strat := range []string{"greedy", "greedy", "optimal"} {
		rec := sampleRecord("r", strat, base.Add(time.Duration(i)*time.Hour))
		if err := store.Append(context.Background(), rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	out, err := store.Query(context.Background(), RunQuery{
		Start:    base.Add(30 * time.Minute),
		Strategy: "greedy",
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 record, got %d", len(out))
	}
	if !out[0].Timestamp.Equal(base.Add(time.Hour)) {
		t.Fatalf("unexpected record: %+v", out[0])
	}
}
