// Package catalog holds the static table of firefighting resource kinds and
// the severity-indexed damage cost table. A catalog is immutable after load;
// dispatchers receive it at construction time instead of reading global state.
package catalog

import (
	"fmt"
	"sort"
	"time"

	"github.com/emberops/wildfire/core/model"
)

// Resource describes one resource kind.
type Resource struct {
	Name       string
	DeployTime time.Duration // fixed time-to-service once dispatched
	Cost       float64       // currency per deployment
	Units      int           // daily unit capacity
	Priority   int           // tie-break rank, lower = preferred
}

// CostTimeEfficiency returns cost weighted by deployment hours, the alternate
// ordering key used by the heuristic dispatcher.
func (r Resource) CostTimeEfficiency() float64 {
	return r.Cost * r.DeployTime.Hours()
}

// Ordering selects how the greedy dispatcher scans resource kinds.
type Ordering string

const (
	// OrderCostPriority scans by (cost, priority, name) ascending.
	OrderCostPriority Ordering = "cost_priority"
	// OrderCostTime scans by cost x deployment hours ascending.
	OrderCostTime Ordering = "cost_time"
	// OrderPriority scans by priority rank alone.
	OrderPriority Ordering = "priority"
)

// Catalog is the immutable resource configuration for a run.
type Catalog struct {
	resources []Resource
	byName    map[string]Resource
	damage    map[model.Severity]float64
}

// New builds a validated catalog from the given resources and damage table.
func New(resources []Resource, damage map[model.Severity]float64) (*Catalog, error) {
	if len(resources) == 0 {
		return nil, &model.ConfigError{Reason: "no resource kinds defined"}
	}
	byName := make(map[string]Resource, len(resources))
	for _, r := range resources {
		if r.Name == "" {
			return nil, &model.ConfigError{Reason: "resource kind without a name"}
		}
		if _, dup := byName[r.Name]; dup {
			return nil, &model.ConfigError{Reason: fmt.Sprintf("duplicate resource kind %q", r.Name)}
		}
		if r.Units <= 0 {
			return nil, &model.ConfigError{Reason: fmt.Sprintf("resource %q: units must be positive", r.Name)}
		}
		if r.DeployTime <= 0 {
			return nil, &model.ConfigError{Reason: fmt.Sprintf("resource %q: deployment time must be positive", r.Name)}
		}
		if r.Cost < 0 {
			return nil, &model.ConfigError{Reason: fmt.Sprintf("resource %q: cost must not be negative", r.Name)}
		}
		byName[r.Name] = r
	}
	for _, sev := range model.Severities() {
		if _, ok := damage[sev]; !ok {
			return nil, &model.ConfigError{Reason: fmt.Sprintf("no damage cost for severity %q", sev)}
		}
	}
	dmg := make(map[model.Severity]float64, len(damage))
	for sev, c := range damage {
		dmg[sev] = c
	}
	res := make([]Resource, len(resources))
	copy(res, resources)
	return &Catalog{resources: res, byName: byName, damage: dmg}, nil
}

// Default returns the standard emergency-response catalog.
func Default() *Catalog {
	cat, err := New([]Resource{
		{Name: "Smoke Jumpers", DeployTime: 30 * time.Minute, Cost: 5000, Units: 5, Priority: 1},
		{Name: "Fire Engines", DeployTime: time.Hour, Cost: 2000, Units: 10, Priority: 2},
		{Name: "Helicopters", DeployTime: 45 * time.Minute, Cost: 8000, Units: 3, Priority: 3},
		{Name: "Tanker Planes", DeployTime: 2 * time.Hour, Cost: 15000, Units: 2, Priority: 4},
		{Name: "Ground Crews", DeployTime: 90 * time.Minute, Cost: 3000, Units: 8, Priority: 5},
	}, map[model.Severity]float64{
		model.SeverityLow:    50000,
		model.SeverityMedium: 100000,
		model.SeverityHigh:   200000,
	})
	if err != nil {
		panic(err)
	}
	return cat
}

// Resources returns the resource kinds in catalog order.
func (c *Catalog) Resources() []Resource {
	out := make([]Resource, len(c.resources))
	copy(out, c.resources)
	return out
}

// Lookup returns the resource kind with the given name.
func (c *Catalog) Lookup(name string) (Resource, bool) {
	r, ok := c.byName[name]
	return r, ok
}

// DamageCost returns the fixed damage penalty for a missed incident.
func (c *Catalog) DamageCost(sev model.Severity) float64 {
	return c.damage[sev]
}

// Ordered returns the resource kinds sorted by the given ordering policy.
// All orderings are deterministic: ties fall back to the kind name.
func (c *Catalog) Ordered(policy Ordering) ([]Resource, error) {
	out := c.Resources()
	switch policy {
	case OrderCostPriority:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Cost != out[j].Cost {
				return out[i].Cost < out[j].Cost
			}
			if out[i].Priority != out[j].Priority {
				return out[i].Priority < out[j].Priority
			}
			return out[i].Name < out[j].Name
		})
	case OrderCostTime:
		sort.SliceStable(out, func(i, j int) bool {
			ei, ej := out[i].CostTimeEfficiency(), out[j].CostTimeEfficiency()
			if ei != ej {
				return ei < ej
			}
			return out[i].Name < out[j].Name
		})
	case OrderPriority:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Priority != out[j].Priority {
				return out[i].Priority < out[j].Priority
			}
			return out[i].Name < out[j].Name
		})
	default:
		return nil, &model.ConfigError{Reason: fmt.Sprintf("unknown ordering %q", policy)}
	}
	return out, nil
}
