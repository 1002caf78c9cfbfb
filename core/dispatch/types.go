package dispatch

import (
	"context"
	"time"

	"github.com/emberops/wildfire/core/availability"
	"github.com/emberops/wildfire/core/model"
)

// Assignment records one committed resource deployment.
type Assignment struct {
	IncidentID string
	Severity   model.Severity
	Kind       string
	Unit       int
	At         time.Time // anchor of the busy window
	Until      time.Time // At + deployment duration
	Cost       float64
}

// DayResult contains the allocation outcome for one calendar day.
type DayResult struct {
	Day             time.Time
	Assignments     []Assignment
	Missed          []model.Incident
	OperationalCost float64
	DamageCost      float64
	// Allocation maps incident ID to the assigned resource kinds,
	// including incidents that received none.
	Allocation map[string][]string
}

// Strategy decides how one day's incidents are matched against available
// resources. Implementations mutate the tracker only through successful
// reservations.
type Strategy interface {
	Name() string
	AllocateDay(ctx context.Context, day model.DayBatch, tracker *availability.Tracker) (DayResult, error)
}
