// Package source reads the flat CSV export into ordered string-keyed records.
// The header row defines the keys; every data row becomes one Record in file
// order. Row indexes reported elsewhere in the pipeline are 1-based positions
// in this order.
package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Record is one raw row keyed by header column name. Values are untyped; all
// coercion happens downstream.
type Record map[string]string

// Read parses CSV from r. The first row is the header; duplicate header names
// are rejected because a record cannot hold both values.
func Read(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	// Exports from spreadsheet tools are frequently ragged; short rows are
	// padded with absent keys rather than rejected.
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("source is empty: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	seen := make(map[string]struct{}, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		header[i] = name
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate header column %q", name)
		}
		seen[name] = struct{}{}
	}

	var records []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(records)+1, err)
		}
		rec := make(Record, len(header))
		for i, name := range header {
			if i < len(row) {
				rec[name] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadFile opens path and parses it with Read.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()

	records, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}
