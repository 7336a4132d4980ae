package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TextColumn is the single column used when a resource cannot be parsed
// as a table and its text is returned as one row.
const TextColumn = "text"

// Dataset is a normalized table: an ordered list of column names and a
// sequence of records keyed by those names.
//
// Every record carries exactly the keys in Columns. A missing cell is an
// explicit nil, never an absent key.
type Dataset struct {
	Columns []string         `json:"columns"`
	Data    []map[string]any `json:"data"`
}

// NewTextDataset returns a single-row dataset holding text under the
// "text" column.
func NewTextDataset(text string) *Dataset {
	return &Dataset{
		Columns: []string{TextColumn},
		Data:    []map[string]any{{TextColumn: text}},
	}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Data)
}

// Fill pads every record with nil for missing columns and drops keys that
// are not listed in Columns. A null record becomes an all-nil row.
func (d *Dataset) Fill() {
	known := make(map[string]struct{}, len(d.Columns))
	for _, c := range d.Columns {
		known[c] = struct{}{}
	}
	for i, rec := range d.Data {
		if rec == nil {
			rec = make(map[string]any, len(d.Columns))
			d.Data[i] = rec
		}
		for k := range rec {
			if _, ok := known[k]; !ok {
				delete(rec, k)
			}
		}
		for _, c := range d.Columns {
			if _, ok := rec[c]; !ok {
				rec[c] = nil
			}
		}
	}
}

// Validate checks the column invariant: unique column names and records
// whose key set equals the column set.
func (d *Dataset) Validate() error {
	if d == nil {
		return fmt.Errorf("dataset is nil")
	}
	seen := make(map[string]struct{}, len(d.Columns))
	for _, c := range d.Columns {
		if _, dup := seen[c]; dup {
			return fmt.Errorf("duplicate column %q", c)
		}
		seen[c] = struct{}{}
	}
	for i, rec := range d.Data {
		if len(rec) != len(d.Columns) {
			return fmt.Errorf("record %d has %d keys, want %d", i, len(rec), len(d.Columns))
		}
		for _, c := range d.Columns {
			if _, ok := rec[c]; !ok {
				return fmt.Errorf("record %d is missing column %q", i, c)
			}
		}
	}
	return nil
}

// DecodeDataset decodes a JSON dataset, keeping integral numbers as int64,
// and fills ragged records.
func DecodeDataset(data []byte) (*Dataset, error) {
	var ds Dataset
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&ds); err != nil {
		return nil, err
	}
	ds.RestoreNumbers()
	ds.Fill()
	return &ds, nil
}

// RestoreNumbers converts json.Number cells, as produced by a decoder with
// UseNumber, to int64 when integral and float64 otherwise.
func (d *Dataset) RestoreNumbers() {
	for _, rec := range d.Data {
		for k, v := range rec {
			rec[k] = RestoreNumber(v)
		}
	}
}

// RestoreNumber converts a json.Number, or any found inside a decoded
// slice or object, to int64 when integral and float64 otherwise.
func RestoreNumber(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []any:
		for i := range x {
			x[i] = RestoreNumber(x[i])
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = RestoreNumber(x[k])
		}
		return x
	default:
		return v
	}
}
