// Package normalize turns raw incident records into per-day batches ready for
// dispatch. Parsing is strict: the first malformed record rejects the whole
// batch.
package normalize

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/emberops/wildfire/core/model"
)

// timeLayouts lists the accepted timestamp formats, most common first.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Normalize validates and parses raw records, groups them by the calendar
// date of the report timestamp and orders each day by severity rank (high
// first) then report time. Days are returned in chronological order.
func Normalize(records []model.RawRecord) ([]model.DayBatch, error) {
	if len(records) == 0 {
		return nil, &model.ValidationError{Field: "records", Reason: "empty incident batch"}
	}

	incidents := make([]model.Incident, 0, len(records))
	for _, rec := range records {
		inc, err := parseRecord(rec)
		if err != nil {
			return nil, err
		}
		incidents = append(incidents, inc)
	}

	byDay := make(map[time.Time][]model.Incident)
	for _, inc := range incidents {
		day := inc.Day()
		byDay[day] = append(byDay[day], inc)
	}

	days := make([]model.DayBatch, 0, len(byDay))
	for day, batch := range byDay {
		sort.SliceStable(batch, func(i, j int) bool {
			ri, rj := batch[i].Severity.Rank(), batch[j].Severity.Rank()
			if ri != rj {
				return ri < rj
			}
			return batch[i].Reported.Before(batch[j].Reported)
		})
		days = append(days, model.DayBatch{Day: day, Incidents: batch})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day.Before(days[j].Day) })
	return days, nil
}

func parseRecord(rec model.RawRecord) (model.Incident, error) {
	reported, err := parseTime("timestamp", rec.Timestamp)
	if err != nil {
		return model.Incident{}, err
	}
	started, err := parseTime("fire_start_time", rec.FireStartTime)
	if err != nil {
		return model.Incident{}, err
	}
	sev, err := model.ParseSeverity(rec.Severity)
	if err != nil {
		return model.Incident{}, err
	}
	response := reported.Sub(started)
	if response < 0 {
		return model.Incident{}, &model.ValidationError{
			Field:  "fire_start_time",
			Value:  rec.FireStartTime,
			Reason: "fire start is after the report timestamp",
		}
	}
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	return model.Incident{
		ID:           id,
		Reported:     reported,
		Started:      started,
		Severity:     sev,
		ResponseTime: response,
	}, nil
}

func parseTime(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, &model.ValidationError{Field: field, Reason: "missing required field"}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &model.ValidationError{Field: field, Value: value, Reason: "unparseable timestamp"}
}
