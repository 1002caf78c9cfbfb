package dispatch

import (
	"github.com/emberops/wildfire/core/model"
)

const dayKeyLayout = "2006-01-02"

// Aggregate folds per-day results into a single run report. When
// includeAllocation is set the per-day incident-to-kind assignment map is
// carried into the report.
func Aggregate(results []DayResult, includeAllocation bool) model.Report {
	report := model.Report{
		FireSeverityReport: make(map[string]model.SeverityCount),
	}
	if includeAllocation {
		report.ResourceAllocation = make(map[string]map[string][]string, len(results))
	}
	for _, res := range results {
		seen := make(map[string]model.Severity, len(res.Assignments))
		for _, a := range res.Assignments {
			seen[a.IncidentID] = a.Severity
			report.TotalOperationalCosts += a.Cost
		}
		report.FiresAddressed += len(seen)
		for _, sev := range seen {
			sc := report.FireSeverityReport[sev.String()]
			sc.Addressed++
			report.FireSeverityReport[sev.String()] = sc
		}
		report.FiresDelayed += len(res.Missed)
		report.EstimatedDamageCosts += res.DamageCost
		for _, inc := range res.Missed {
			sc := report.FireSeverityReport[inc.Severity.String()]
			sc.Missed++
			report.FireSeverityReport[inc.Severity.String()] = sc
		}
		if includeAllocation && res.Allocation != nil {
			report.ResourceAllocation[res.Day.Format(dayKeyLayout)] = res.Allocation
		}
	}
	return report
}
