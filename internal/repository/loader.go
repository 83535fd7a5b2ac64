package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stonebridge-data/propetl/internal/database"
	"github.com/stonebridge-data/propetl/internal/models"
	"github.com/stonebridge-data/propetl/internal/normalize"
)

// Policy controls how the loader reacts to a failed row insert.
type Policy int

const (
	// BestEffort keeps loading the remaining rows after a failure, matching
	// the transformer's load-what-is-valid semantics.
	BestEffort Policy = iota
	// FailFast stops at the first failed insert.
	FailFast
)

// WriteFailure records one row that could not be written, with enough
// context to retry or inspect it manually.
type WriteFailure struct {
	Table      string
	PropertyID int64
	Err        error
}

// LoadReport summarizes one load run: rows inserted per table and every
// per-row failure.
type LoadReport struct {
	Inserted map[string]int
	Failures []WriteFailure
}

// BatchLoader writes one transformed batch into the six normalized tables.
type BatchLoader interface {
	// LoadBatch inserts property rows first, then the five dependent tables.
	// Dependents of a property whose insert failed are skipped so the
	// foreign key is never dangling. The returned report is non-nil even on
	// error; the error is non-nil only under FailFast or when the sink
	// becomes unusable.
	LoadBatch(ctx context.Context, batch *normalize.Result) (*LoadReport, error)
}

// batchLoader is the pgx-backed implementation of BatchLoader.
type batchLoader struct {
	db     *database.Database
	policy Policy
	log    zerolog.Logger
}

// NewBatchLoader creates a BatchLoader with the given failure policy.
func NewBatchLoader(db *database.Database, policy Policy, log zerolog.Logger) BatchLoader {
	return &batchLoader{db: db, policy: policy, log: log}
}

const propertyInsert = `
	INSERT INTO property (
		property_id, property_title, address, market, flood, street_address,
		city, state, zip, property_type, highway, train, tax_rate,
		sqft_basement, htw, pool, commercial, water, sewage, year_built,
		sqft_mu, sqft_total, parking, bed, bath, basement, layout,
		rent_restricted, neighborhood_rating, latitude, longitude,
		subdivision, school_average
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28,
		$29, $30, $31, $32, $33
	)`

const leadsInsert = `
	INSERT INTO leads (
		property_id, reviewed_status, most_recent_status, source, occupancy,
		net_yield, irr, selling_reason, seller_retained_broker, final_reviewer
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

const valuationInsert = `
	INSERT INTO valuation (
		property_id, previous_rent, list_price, zestimate, arv, expected_rent,
		rent_zestimate, low_fmr, high_fmr, redfin_value
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

const rehabInsert = `
	INSERT INTO rehab (
		property_id, underwriting_rehab, rehab_calculation, paint, flooring,
		foundation, roof, hvac, kitchen, bathroom, appliances, windows,
		landscaping, trashout
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

const hoaInsert = `
	INSERT INTO hoa (property_id, hoa, hoa_flag) VALUES ($1, $2, $3)`

const taxesInsert = `
	INSERT INTO taxes (property_id, taxes) VALUES ($1, $2)`

// LoadBatch writes the batch parent-first. Insertion order across the five
// dependent tables is arbitrary; there are no FKs between them.
func (l *batchLoader) LoadBatch(ctx context.Context, batch *normalize.Result) (*LoadReport, error) {
	report := &LoadReport{Inserted: make(map[string]int)}

	// Property ids whose parent insert failed; their dependents are skipped.
	failed := make(map[int64]struct{})

	for _, p := range batch.Properties {
		_, err := l.db.Pool.Exec(ctx, propertyInsert, propertyArgs(p)...)
		if err != nil {
			failed[p.PropertyID] = struct{}{}
			if stop := l.recordFailure(report, "property", p.PropertyID, err); stop {
				return report, fmt.Errorf("property insert failed for id %d: %w", p.PropertyID, err)
			}
			continue
		}
		report.Inserted["property"]++
	}

	dependents := []struct {
		table string
		sql   string
		rows  []depRow
	}{
		{"leads", leadsInsert, leadRows(batch.Leads)},
		{"valuation", valuationInsert, valuationRows(batch.Valuations)},
		{"rehab", rehabInsert, rehabRows(batch.Rehabs)},
		{"hoa", hoaInsert, hoaRows(batch.HOAs)},
		{"taxes", taxesInsert, taxRows(batch.Taxes)},
	}

	for _, dep := range dependents {
		for _, row := range dep.rows {
			if _, skip := failed[row.propertyID]; skip {
				continue
			}
			_, err := l.db.Pool.Exec(ctx, dep.sql, row.args...)
			if err != nil {
				if stop := l.recordFailure(report, dep.table, row.propertyID, err); stop {
					return report, fmt.Errorf("%s insert failed for property %d: %w", dep.table, row.propertyID, err)
				}
				continue
			}
			report.Inserted[dep.table]++
		}
	}

	l.log.Info().
		Interface("inserted", report.Inserted).
		Int("failures", len(report.Failures)).
		Msg("batch load complete")

	return report, nil
}

// recordFailure logs and records one failed insert and reports whether the
// policy requires stopping.
func (l *batchLoader) recordFailure(report *LoadReport, table string, id int64, err error) bool {
	report.Failures = append(report.Failures, WriteFailure{Table: table, PropertyID: id, Err: err})
	l.log.Error().
		Str("table", table).
		Int64("property_id", id).
		Err(err).
		Msg("row insert failed")
	return l.policy == FailFast
}

// depRow is one dependent-table row: its FK plus positional insert args.
type depRow struct {
	propertyID int64
	args       []any
}

func propertyArgs(p models.Property) []any {
	return []any{
		p.PropertyID, p.PropertyTitle, p.Address, p.Market, p.Flood,
		p.StreetAddress, p.City, p.State, p.Zip, p.PropertyType, p.Highway,
		p.Train, p.TaxRate, p.SQFTBasement, p.HTW, p.Pool, p.Commercial,
		p.Water, p.Sewage, p.YearBuilt, p.SQFTMU, p.SQFTTotal, p.Parking,
		p.Bed, p.Bath, p.Basement, p.Layout, p.RentRestricted,
		p.NeighborhoodRating, p.Latitude, p.Longitude, p.Subdivision,
		p.SchoolAverage,
	}
}

func leadRows(leads []models.Lead) []depRow {
	rows := make([]depRow, 0, len(leads))
	for _, v := range leads {
		rows = append(rows, depRow{v.PropertyID, []any{
			v.PropertyID, v.ReviewedStatus, v.MostRecentStatus, v.Source,
			v.Occupancy, v.NetYield, v.IRR, v.SellingReason,
			v.SellerRetainedBroker, v.FinalReviewer,
		}})
	}
	return rows
}

func valuationRows(vals []models.Valuation) []depRow {
	rows := make([]depRow, 0, len(vals))
	for _, v := range vals {
		rows = append(rows, depRow{v.PropertyID, []any{
			v.PropertyID, v.PreviousRent, v.ListPrice, v.Zestimate, v.ARV,
			v.ExpectedRent, v.RentZestimate, v.LowFMR, v.HighFMR,
			v.RedfinValue,
		}})
	}
	return rows
}

func rehabRows(rehabs []models.Rehab) []depRow {
	rows := make([]depRow, 0, len(rehabs))
	for _, v := range rehabs {
		rows = append(rows, depRow{v.PropertyID, []any{
			v.PropertyID, v.UnderwritingRehab, v.RehabCalculation, v.Paint,
			v.Flooring, v.Foundation, v.Roof, v.HVAC, v.Kitchen, v.Bathroom,
			v.Appliances, v.Windows, v.Landscaping, v.Trashout,
		}})
	}
	return rows
}

func hoaRows(hoas []models.HOA) []depRow {
	rows := make([]depRow, 0, len(hoas))
	for _, v := range hoas {
		rows = append(rows, depRow{v.PropertyID, []any{
			v.PropertyID, v.HOA, v.HOAFlag,
		}})
	}
	return rows
}

func taxRows(taxes []models.Tax) []depRow {
	rows := make([]depRow, 0, len(taxes))
	for _, v := range taxes {
		rows = append(rows, depRow{v.PropertyID, []any{
			v.PropertyID, v.Amount,
		}})
	}
	return rows
}
