// Package jsonfile reads and writes the year-keyed rainfall JSON format:
//
//	{"2024": [{"date": "2024-01-01", "rainfall_mm": 5.0}], "2023": []}
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/rainfall-dry-periods/internal/domain"
)

var (
	// ErrMissingField reports a record without "date" or "rainfall_mm".
	ErrMissingField = errors.New("missing field")
	// ErrInvalidDate reports a "date" that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")
)

// Record is one undecoded entry. Pointers tell absent fields apart from zero
// values.
type Record struct {
	Date       *string  `json:"date"`
	RainfallMM *float64 `json:"rainfall_mm"`
}

type outRecord struct {
	Date       string  `json:"date"`
	RainfallMM float64 `json:"rainfall_mm"`
}

// DecodeRecords parses a year-keyed document without checking the records.
func DecodeRecords(r io.Reader) (map[string][]Record, error) {
	var doc map[string][]Record
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse rainfall json: %w", err)
	}
	return doc, nil
}

// Decode parses a year-keyed document. It fails on the first malformed record.
func Decode(r io.Reader) (domain.RecordSet, error) {
	doc, err := DecodeRecords(r)
	if err != nil {
		return nil, err
	}

	records := make(domain.RecordSet, len(doc))
	for key, raws := range doc {
		ms := make([]domain.Measurement, 0, len(raws))
		for i, raw := range raws {
			m, err := ParseRecord(raw)
			if err != nil {
				return nil, fmt.Errorf("group %q record %d: %w", key, i, err)
			}
			ms = append(ms, m)
		}
		records[key] = ms
	}
	return records, nil
}

// ParseRecord checks one entry, returning ErrMissingField or ErrInvalidDate.
func ParseRecord(raw Record) (domain.Measurement, error) {
	if raw.Date == nil {
		return domain.Measurement{}, fmt.Errorf("%w: date", ErrMissingField)
	}
	if raw.RainfallMM == nil {
		return domain.Measurement{}, fmt.Errorf("%w: rainfall_mm", ErrMissingField)
	}
	d, err := domain.ParseDate(*raw.Date)
	if err != nil {
		return domain.Measurement{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, *raw.Date, err)
	}
	return domain.Measurement{Date: d, RainfallMM: *raw.RainfallMM}, nil
}

// Encode writes records in the year-keyed format, each group in date order.
func Encode(w io.Writer, records domain.RecordSet) error {
	doc := make(map[string][]outRecord, len(records))
	for _, key := range records.Keys() {
		group := domain.RecordSet{key: records[key]}.Flatten()
		out := make([]outRecord, 0, len(group))
		for _, m := range group {
			out = append(out, outRecord{Date: domain.FormatDate(m.Date), RainfallMM: m.RainfallMM})
		}
		doc[key] = out
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode rainfall json: %w", err)
	}
	return nil
}

// ReadFile loads a year-keyed document from path.
func ReadFile(path string) (domain.RecordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rainfall data: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Source serves a JSON file as an analysis data source. The file is re-read on
// every Load so edits are picked up between requests.
type Source struct {
	path string
}

// NewSource creates a Source for the file at path.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Name identifies the source in logs and metrics.
func (s *Source) Name() string { return "json" }

// Load reads and parses the file.
func (s *Source) Load(ctx context.Context) (domain.RecordSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadFile(s.path)
}
