package model

// SeverityCount holds per-severity outcome counts.
type SeverityCount struct {
	Addressed int `json:"addressed"`
	Missed    int `json:"missed"`
}

// Report is the aggregate produced by one allocation run.
type Report struct {
	FiresAddressed        int                      `json:"fires_addressed"`
	FiresDelayed          int                      `json:"fires_delayed"`
	TotalOperationalCosts float64                  `json:"total_operational_costs"`
	EstimatedDamageCosts  float64                  `json:"estimated_damage_costs"`
	FireSeverityReport    map[string]SeverityCount `json:"fire_severity_report"`
	// ResourceAllocation maps day -> incident ID -> assigned resource kinds.
	// Only populated by the optimal strategy.
	ResourceAllocation map[string]map[string][]string `json:"resource_allocation,omitempty"`
}

// Total returns the number of incidents covered by the report.
func (r Report) Total() int { return r.FiresAddressed + r.FiresDelayed }
