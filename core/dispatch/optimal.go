package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/emberops/wildfire/core/availability"
	"github.com/emberops/wildfire/core/catalog"
	"github.com/emberops/wildfire/core/model"
)

// maxHighSeverityAssignments caps the simultaneous kind-assignments a
// high-severity incident may hold. All other severities hold at most one.
const maxHighSeverityAssignments = 3

// OptimalDispatcher formulates each day as a binary program minimizing
// deployment cost plus the damage penalty of unserved incidents, subject to
// daily capacity, per-incident concurrency caps, per-kind non-overlap of
// response windows and units still busy from earlier days.
type OptimalDispatcher struct {
	catalog *catalog.Catalog
	timeout time.Duration
}

// NewOptimal builds the exact dispatcher with the configured per-day solve
// bound.
func NewOptimal(cat *catalog.Catalog, cfg Config) (*OptimalDispatcher, error) {
	timeout := time.Duration(cfg.SolveTimeoutSeconds) * time.Second
	if timeout <= 0 {
		return nil, &model.ConfigError{Reason: "solve timeout must be positive"}
	}
	return &OptimalDispatcher{catalog: cat, timeout: timeout}, nil
}

// Name implements Strategy.
func (o *OptimalDispatcher) Name() string { return "optimal" }

// AllocateDay solves the day's binary program and commits the chosen
// assignments into the tracker, anchored at each fire's start time.
func (o *OptimalDispatcher) AllocateDay(ctx context.Context, day model.DayBatch, tracker *availability.Tracker) (DayResult, error) {
	kinds := o.catalog.Resources()
	incidents := day.Incidents
	n := len(incidents)
	k := len(kinds)

	// Variable x[kind r, incident f] lives at index r*n + f.
	idx := func(r, f int) int { return r*n + f }

	// Objective: sum cost*x + sum damage*(1 - sum_r x). The constant damage
	// term drops out of the minimization; only the linear part is solved.
	c := make([]float64, k*n)
	for f, inc := range incidents {
		damage := o.catalog.DamageCost(inc.Severity)
		for r, res := range kinds {
			c[idx(r, f)] = res.Cost - damage
		}
	}

	var rows [][]float64
	var rhs []float64
	addRow := func(vars []int, bound float64) {
		row := make([]float64, k*n)
		for _, v := range vars {
			row[v] = 1
		}
		rows = append(rows, row)
		rhs = append(rhs, bound)
	}

	// Daily capacity per resource kind.
	for r, res := range kinds {
		vars := make([]int, n)
		for f := range incidents {
			vars[f] = idx(r, f)
		}
		addRow(vars, float64(res.Units))
	}
	// Concurrency cap per incident. This cap is what keeps the unserved
	// damage term from rewarding unbounded over-assignment.
	for f, inc := range incidents {
		vars := make([]int, k)
		for r := range kinds {
			vars[r] = idx(r, f)
		}
		limit := 1
		if inc.Severity == model.SeverityHigh {
			limit = maxHighSeverityAssignments
		}
		addRow(vars, float64(limit))
	}
	// Kinds slower than an incident's required response cannot serve it.
	for f, inc := range incidents {
		for r, res := range kinds {
			if inc.ResponseTime > res.DeployTime {
				addRow([]int{idx(r, f)}, 0)
			}
		}
	}
	// Units still busy from earlier days shrink the day's capacity. A kind
	// with no free unit at the incident's fire start cannot serve it, so the
	// incident is priced as a miss instead of failing at commitment.
	for r, res := range kinds {
		busy := tracker.BusyUntil(res.Name)
		for f, inc := range incidents {
			carried := 0
			for _, until := range busy {
				if until.After(inc.Started) {
					carried++
				}
			}
			if carried >= len(busy) {
				addRow([]int{idx(r, f)}, 0)
			}
		}
	}
	// Pairwise non-overlap per kind for response windows anchored at the
	// fire start time.
	for r, res := range kinds {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if windowsOverlap(incidents[i].Started, incidents[j].Started, res.DeployTime) {
					addRow([]int{idx(r, i), idx(r, j)}, 1)
				}
			}
		}
	}

	solveCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	chosen, _, err := solveBinaryProgram(solveCtx, c, rows, rhs)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return DayResult{}, &model.SolveError{Day: day.Day, Timeout: true, Err: err}
		}
		return DayResult{}, &model.SolveError{Day: day.Day, Err: err}
	}

	type pick struct{ f, r int }
	var picks []pick
	for f := range incidents {
		for r := range kinds {
			if chosen[idx(r, f)] {
				picks = append(picks, pick{f, r})
			}
		}
	}
	// Commit in fire-start order: the tracker has no notion of a future
	// booking, so a unit reserved for a later window would shadow an earlier
	// non-overlapping one.
	sort.SliceStable(picks, func(i, j int) bool {
		return incidents[picks[i].f].Started.Before(incidents[picks[j].f].Started)
	})

	byIncident := make([][]Assignment, n)
	for _, p := range picks {
		inc, res := incidents[p.f], kinds[p.r]
		unit, ok := tracker.Reserve(res.Name, inc.Started, res.DeployTime)
		if !ok {
			// The non-overlap and carried-capacity constraints guarantee
			// commitment; a failed reserve means the formulation and
			// tracker disagree.
			return DayResult{}, &model.SolveError{
				Day: day.Day,
				Err: fmt.Errorf("no free %s unit for incident %s despite solver assignment", res.Name, inc.ID),
			}
		}
		byIncident[p.f] = append(byIncident[p.f], Assignment{
			IncidentID: inc.ID,
			Severity:   inc.Severity,
			Kind:       res.Name,
			Unit:       unit,
			At:         inc.Started,
			Until:      inc.Started.Add(res.DeployTime),
			Cost:       res.Cost,
		})
	}

	result := DayResult{Day: day.Day, Allocation: make(map[string][]string, n)}
	for f, inc := range incidents {
		var assigned []string
		for _, a := range byIncident[f] {
			result.Assignments = append(result.Assignments, a)
			result.OperationalCost += a.Cost
			assigned = append(assigned, a.Kind)
		}
		result.Allocation[inc.ID] = assigned
		if len(assigned) == 0 {
			result.Missed = append(result.Missed, inc)
			result.DamageCost += o.catalog.DamageCost(inc.Severity)
		}
	}
	return result, nil
}

// windowsOverlap reports whether two deployment windows of the given duration
// starting at s1 and s2 intersect.
func windowsOverlap(s1, s2 time.Time, d time.Duration) bool {
	return s1.Before(s2.Add(d)) && s2.Before(s1.Add(d))
}
