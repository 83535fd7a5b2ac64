package normalize

import (
	"fmt"
	"reflect"

	"github.com/stonebridge-data/propetl/internal/coerce"
	"github.com/stonebridge-data/propetl/internal/models"
	"github.com/stonebridge-data/propetl/internal/source"
)

// RowSet is the six typed sub-records produced from one raw record, bound by
// a shared surrogate key.
type RowSet struct {
	Property  models.Property
	Lead      models.Lead
	Valuation models.Valuation
	Rehab     models.Rehab
	HOA       models.HOA
	Tax       models.Tax
}

// NormalizeRow decomposes one raw record into a RowSet using the Columns
// mapping table, coercing each mapped cell to its target type. Unmapped
// source columns are ignored. The only failure mode is a record missing a
// column the table marks Required; coercion failures resolve to nil fields.
func NormalizeRow(rec source.Record, propertyID int64) (*RowSet, error) {
	rs := &RowSet{
		Property:  models.Property{PropertyID: propertyID},
		Lead:      models.Lead{PropertyID: propertyID},
		Valuation: models.Valuation{PropertyID: propertyID},
		Rehab:     models.Rehab{PropertyID: propertyID},
		HOA:       models.HOA{PropertyID: propertyID},
		Tax:       models.Tax{PropertyID: propertyID},
	}

	targets := map[Entity]reflect.Value{
		EntityProperty:  reflect.ValueOf(&rs.Property).Elem(),
		EntityLeads:     reflect.ValueOf(&rs.Lead).Elem(),
		EntityValuation: reflect.ValueOf(&rs.Valuation).Elem(),
		EntityRehab:     reflect.ValueOf(&rs.Rehab).Elem(),
		EntityHOA:       reflect.ValueOf(&rs.HOA).Elem(),
		EntityTaxes:     reflect.ValueOf(&rs.Tax).Elem(),
	}

	for _, m := range Columns {
		raw, present := rec[m.Source]
		if !present && m.Required {
			return nil, fmt.Errorf("record missing required column %q", m.Source)
		}

		var v any
		switch m.Kind {
		case coerce.KindBool:
			truthy, falsy := m.Truthy, m.Falsy
			if truthy == nil {
				truthy = coerce.DefaultTruthy
			}
			if falsy == nil {
				falsy = coerce.DefaultFalsy
			}
			if p := coerce.Bool(raw, truthy, falsy); p != nil {
				v = p
			}
		case coerce.KindInt:
			if p := coerce.Int(raw); p != nil {
				v = p
			}
		case coerce.KindFloat:
			if p := coerce.Float(raw); p != nil {
				v = p
			}
		default:
			if p := coerce.String(raw); p != nil {
				v = p
			}
		}
		if v == nil {
			continue // field stays nil, rendered as NULL at load time
		}
		targets[m.Entity].FieldByName(m.Field).Set(reflect.ValueOf(v))
	}

	return rs, nil
}
