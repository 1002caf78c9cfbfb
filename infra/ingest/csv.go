// Package ingest reads raw incident batches from CSV files.
package ingest

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/emberops/wildfire/core/model"
)

var requiredColumns = []string{"timestamp", "fire_start_time", "severity"}

// ReadFile opens and parses the CSV batch at path.
func ReadFile(path string) ([]model.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &model.NotFoundError{Path: path}
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

// Read parses a CSV incident batch. The header must carry the timestamp,
// fire_start_time and severity columns; fire_id is optional and generated
// downstream when absent. Field values pass through unparsed, normalization
// owns their validation.
func Read(r io.Reader) ([]model.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &model.ValidationError{Field: "batch", Reason: "empty incident batch"}
	}
	if err != nil {
		return nil, &model.ValidationError{Field: "header", Reason: err.Error()}
	}
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, &model.ValidationError{Field: col, Reason: "missing column"}
		}
	}

	var records []model.RawRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &model.ValidationError{Field: "row", Reason: err.Error()}
		}
		rec := model.RawRecord{
			Timestamp:     row[idx["timestamp"]],
			FireStartTime: row[idx["fire_start_time"]],
			Severity:      row[idx["severity"]],
		}
		if i, ok := idx["fire_id"]; ok {
			rec.ID = row[i]
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, &model.ValidationError{Field: "batch", Reason: "empty incident batch"}
	}
	return records, nil
}
