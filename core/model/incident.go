package model

import (
	"fmt"
	"strings"
	"time"
)

// Severity classifies a reported fire.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
)

// ParseSeverity maps a case-insensitive severity string to its enum value.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	default:
		return 0, &ValidationError{Field: "severity", Value: s, Reason: "unknown severity"}
	}
}

// String returns the lower-case name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Rank returns the processing order key. High severity sorts first.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	default:
		return 2
	}
}

// Severities lists all known severities in rank order.
func Severities() []Severity {
	return []Severity{SeverityHigh, SeverityMedium, SeverityLow}
}

// RawRecord is one unparsed incident row as delivered by the ingestion layer.
type RawRecord struct {
	ID            string `json:"fire_id"`
	Timestamp     string `json:"timestamp"`
	FireStartTime string `json:"fire_start_time"`
	Severity      string `json:"severity"`
}

// Incident is a normalized fire report.
type Incident struct {
	ID           string
	Reported     time.Time // time the fire was reported
	Started      time.Time // time the fire actually started
	Severity     Severity
	ResponseTime time.Duration // Reported - Started, always >= 0
}

// Day returns the calendar date of the report timestamp.
func (i Incident) Day() time.Time {
	y, m, d := i.Reported.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, i.Reported.Location())
}

// DayBatch groups the incidents reported on one calendar day.
type DayBatch struct {
	Day       time.Time
	Incidents []Incident
}
