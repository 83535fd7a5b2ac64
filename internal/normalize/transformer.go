package normalize

import (
	"github.com/rs/zerolog"

	"github.com/stonebridge-data/propetl/internal/models"
	"github.com/stonebridge-data/propetl/internal/source"
)

// RowError records one source row that could not be decomposed. RowIndex is
// the 1-based position of the row in the source file.
type RowError struct {
	RowIndex int
	Err      error
}

// Result holds the six parallel output collections of one batch run. Every
// successfully normalized source row contributes exactly one element to each
// slice, so index i across all six slices describes the same property.
// Dependents with no data are rows of nils, never absent rows.
type Result struct {
	Properties []models.Property
	Leads      []models.Lead
	Valuations []models.Valuation
	Rehabs     []models.Rehab
	HOAs       []models.HOA
	Taxes      []models.Tax
	Errors     []RowError
}

// Transformer runs NormalizeRow over an ordered batch of raw records,
// assigning surrogate keys and collecting per-row failures.
type Transformer struct {
	log zerolog.Logger
}

// NewTransformer creates a Transformer logging through the given logger.
func NewTransformer(log zerolog.Logger) *Transformer {
	return &Transformer{log: log}
}

// Run normalizes the batch in source order. Surrogate keys are assigned
// sequentially from 1 over the rows that normalize successfully; failed rows
// are excluded from all six collections, recorded in Errors, and do not
// consume a key. The transform is deterministic: identical input yields
// identical output.
func (t *Transformer) Run(records []source.Record) *Result {
	res := &Result{
		Properties: make([]models.Property, 0, len(records)),
		Leads:      make([]models.Lead, 0, len(records)),
		Valuations: make([]models.Valuation, 0, len(records)),
		Rehabs:     make([]models.Rehab, 0, len(records)),
		HOAs:       make([]models.HOA, 0, len(records)),
		Taxes:      make([]models.Tax, 0, len(records)),
	}

	nextID := int64(1)
	for i, rec := range records {
		rowIndex := i + 1
		rs, err := NormalizeRow(rec, nextID)
		if err != nil {
			res.Errors = append(res.Errors, RowError{RowIndex: rowIndex, Err: err})
			t.log.Warn().
				Int("row", rowIndex).
				Err(err).
				Msg("row excluded from batch")
			continue
		}
		nextID++

		res.Properties = append(res.Properties, rs.Property)
		res.Leads = append(res.Leads, rs.Lead)
		res.Valuations = append(res.Valuations, rs.Valuation)
		res.Rehabs = append(res.Rehabs, rs.Rehab)
		res.HOAs = append(res.HOAs, rs.HOA)
		res.Taxes = append(res.Taxes, rs.Tax)
	}

	t.log.Info().
		Int("rows", len(records)).
		Int("normalized", len(res.Properties)).
		Int("failed", len(res.Errors)).
		Msg("batch transform complete")

	return res
}
