// Package report exports the validation discrepancy list as a tabular sheet
// for manual review.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/stonebridge-data/propetl/internal/validate"
)

// Header is the column layout of the exported report.
var Header = []string{"row_index", "field_name", "discrepancy_kind", "raw_value", "rule_violated"}

// Write renders the discrepancies as CSV in their given order, header first.
func Write(w io.Writer, discrepancies []validate.Discrepancy) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	for _, d := range discrepancies {
		row := []string{
			strconv.Itoa(d.RowIndex),
			d.Field,
			string(d.Kind),
			d.RawValue,
			d.Rule,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write report row %d: %w", d.RowIndex, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}
	return nil
}

// WriteFile writes the report to path, truncating any previous report.
func WriteFile(path string, discrepancies []validate.Discrepancy) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := Write(f, discrepancies); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
