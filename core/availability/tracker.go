// Package availability tracks per-unit busy windows for every resource kind
// during one allocation run. A tracker is owned by a single run and must not
// be shared across concurrent runs.
package availability

import (
	"time"

	"github.com/emberops/wildfire/core/catalog"
)

// Tracker records the busy-until timestamp of every resource unit. A zero
// timestamp means the unit has been free since the epoch.
type Tracker struct {
	units map[string][]time.Time
}

// NewTracker creates a tracker with all units free, sized from the catalog.
func NewTracker(cat *catalog.Catalog) *Tracker {
	units := make(map[string][]time.Time)
	for _, r := range cat.Resources() {
		units[r.Name] = make([]time.Time, r.Units)
	}
	return &Tracker{units: units}
}

// ExpireBefore frees every unit whose busy-until timestamp is at or before
// dayStart. Called once per day before processing that day's incidents.
func (t *Tracker) ExpireBefore(dayStart time.Time) {
	for _, slots := range t.units {
		for i, until := range slots {
			if !until.IsZero() && !until.After(dayStart) {
				slots[i] = time.Time{}
			}
		}
	}
}

// Reserve marks the earliest-available free unit of the kind busy until
// at+duration. Ties between equally available units break on the lowest unit
// index. Returns the unit index and whether a unit was reserved.
func (t *Tracker) Reserve(kind string, at time.Time, duration time.Duration) (int, bool) {
	slots, ok := t.units[kind]
	if !ok {
		return 0, false
	}
	best := -1
	for i, until := range slots {
		if until.After(at) {
			continue
		}
		if best == -1 || until.Before(slots[best]) {
			best = i
		}
	}
	if best == -1 {
		return 0, false
	}
	slots[best] = at.Add(duration)
	return best, true
}

// CanReserve reports whether a free unit of the kind exists at the given time.
func (t *Tracker) CanReserve(kind string, at time.Time) bool {
	slots, ok := t.units[kind]
	if !ok {
		return false
	}
	for _, until := range slots {
		if !until.After(at) {
			return true
		}
	}
	return false
}

// InUse returns the number of units of the kind busy at the given instant.
func (t *Tracker) InUse(kind string, at time.Time) int {
	n := 0
	for _, until := range t.units[kind] {
		if until.After(at) {
			n++
		}
	}
	return n
}

// BusyUntil returns a copy of the per-unit busy-until timestamps for the kind.
func (t *Tracker) BusyUntil(kind string) []time.Time {
	slots := t.units[kind]
	out := make([]time.Time, len(slots))
	copy(out, slots)
	return out
}
