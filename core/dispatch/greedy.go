package dispatch

import (
	"context"
	"time"

	"github.com/emberops/wildfire/core/availability"
	"github.com/emberops/wildfire/core/catalog"
	"github.com/emberops/wildfire/core/model"
)

// GreedyDispatcher allocates resources with a single ordered pass per
// incident, preferring assignments that do not delay the next incident in
// line. The lookahead only inspects the immediately following incident, a
// local compromise that trades optimality for speed.
type GreedyDispatcher struct {
	catalog   *catalog.Catalog
	ordered   []catalog.Resource
	lookahead Lookahead
}

// NewGreedy builds a greedy dispatcher with the configured scan order and
// lookahead policy.
func NewGreedy(cat *catalog.Catalog, cfg Config) (*GreedyDispatcher, error) {
	ordered, err := cat.Ordered(catalog.Ordering(cfg.Ordering))
	if err != nil {
		return nil, err
	}
	la := Lookahead(cfg.Lookahead)
	if la == "" {
		la = LookaheadNext
	}
	return &GreedyDispatcher{catalog: cat, ordered: ordered, lookahead: la}, nil
}

// Name implements Strategy.
func (g *GreedyDispatcher) Name() string { return "greedy" }

// AllocateDay processes the day's incidents in their sorted order. Each
// incident gets a primary pass honoring the non-blocking lookahead and a
// fallback pass that accepts any feasible kind with free capacity.
func (g *GreedyDispatcher) AllocateDay(ctx context.Context, day model.DayBatch, tracker *availability.Tracker) (DayResult, error) {
	result := DayResult{Day: day.Day, Allocation: make(map[string][]string, len(day.Incidents))}
	for i, inc := range day.Incidents {
		if err := ctx.Err(); err != nil {
			return DayResult{}, err
		}
		var next time.Time
		if g.lookahead == LookaheadNext && i+1 < len(day.Incidents) {
			next = day.Incidents[i+1].Reported
		}

		asn, ok := g.assign(tracker, inc, next)
		if !ok {
			// Fallback: accept an assignment even if it blocks the next
			// incident.
			asn, ok = g.assign(tracker, inc, time.Time{})
		}
		if ok {
			result.Assignments = append(result.Assignments, asn)
			result.OperationalCost += asn.Cost
			result.Allocation[inc.ID] = []string{asn.Kind}
			continue
		}
		result.Missed = append(result.Missed, inc)
		result.DamageCost += g.catalog.DamageCost(inc.Severity)
		result.Allocation[inc.ID] = nil
	}
	return result, nil
}

// assign scans the ordered kinds and commits the first feasible reservation.
// A non-zero next timestamp enables the non-blocking test.
func (g *GreedyDispatcher) assign(tracker *availability.Tracker, inc model.Incident, next time.Time) (Assignment, bool) {
	for _, res := range g.ordered {
		if inc.ResponseTime > res.DeployTime {
			continue
		}
		until := inc.Reported.Add(res.DeployTime)
		if !next.IsZero() && until.After(next) {
			continue
		}
		unit, ok := tracker.Reserve(res.Name, inc.Reported, res.DeployTime)
		if !ok {
			continue
		}
		return Assignment{
			IncidentID: inc.ID,
			Severity:   inc.Severity,
			Kind:       res.Name,
			Unit:       unit,
			At:         inc.Reported,
			Until:      until,
			Cost:       res.Cost,
		}, true
	}
	return Assignment{}, false
}
