package logging

import (
	"context"
	"time"

	"github.com/emberops/wildfire/core/model"
)

// RunRecord captures one completed allocation run and its report.
type RunRecord struct {
	RunID     string       `json:"run_id"`
	Timestamp time.Time    `json:"timestamp"`
	Strategy  string       `json:"strategy"`
	Incidents int          `json:"incidents"`
	Report    model.Report `json:"report"`
}

// RunQuery defines filters for retrieving run records.
type RunQuery struct {
	Start    time.Time
	End      time.Time
	Strategy string
}

// RunStore persists RunRecords and supports querying.
type RunStore interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q RunQuery) ([]RunRecord, error)
	Close() error
}
