package validate

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonebridge-data/propetl/internal/coerce"
	"github.com/stonebridge-data/propetl/internal/normalize"
	"github.com/stonebridge-data/propetl/internal/rules"
	"github.com/stonebridge-data/propetl/internal/source"
)

func loadRules(t *testing.T, records []source.Record) *rules.Set {
	t.Helper()
	return rules.Load(records, zerolog.Nop())
}

func ruleRecord(field, typ, required, allowed, min, max string) source.Record {
	return source.Record{
		"field_name":     field,
		"expected_type":  typ,
		"required":       required,
		"allowed_values": allowed,
		"min":            min,
		"max":            max,
	}
}

func newEngine(t *testing.T, ruleRecords []source.Record) *Engine {
	t.Helper()
	return NewEngine(loadRules(t, ruleRecords), Options{}, zerolog.Nop())
}

func TestRun_ConformantRowProducesNothing(t *testing.T) {
	engine := newEngine(t, []source.Record{
		ruleRecord("Bath", "integer", "yes", "", "1", "8"),
		ruleRecord("List_Price", "float", "", "", "0", ""),
		ruleRecord("Pool", "boolean", "", "", "", ""),
	})

	out := engine.Run([]source.Record{
		{"Bath": "3", "List_Price": "$199,000.00", "Pool": "yes"},
	})

	assert.Empty(t, out)
}

func TestRun_MissingRequiredField(t *testing.T) {
	engine := newEngine(t, []source.Record{
		ruleRecord("Bath", "integer", "yes", "", "", ""),
	})

	out := engine.Run([]source.Record{
		{"Bath": ""},
		{"Bath": "   "},
		{}, // key absent entirely
	})

	require.Len(t, out, 3)
	for i, d := range out {
		assert.Equal(t, i+1, d.RowIndex)
		assert.Equal(t, "Bath", d.Field)
		assert.Equal(t, KindMissingRequired, d.Kind)
		assert.Equal(t, "required", d.Rule)
	}
}

func TestRun_EmptyOptionalFieldIsFine(t *testing.T) {
	engine := newEngine(t, []source.Record{
		ruleRecord("Pool", "boolean", "no", "", "", ""),
	})

	out := engine.Run([]source.Record{{"Pool": ""}})
	assert.Empty(t, out)
}

func TestRun_TypeMismatch(t *testing.T) {
	engine := newEngine(t, []source.Record{
		ruleRecord("Bath", "integer", "yes", "", "", ""),
		ruleRecord("Taxes", "float", "", "", "", ""),
		ruleRecord("Pool", "boolean", "", "", "", ""),
	})

	out := engine.Run([]source.Record{
		{"Bath": "two", "Taxes": "N/A", "Pool": "maybe"},
	})

	require.Len(t, out, 3)
	assert.Equal(t, KindTypeMismatch, out[0].Kind)
	assert.Equal(t, "Bath", out[0].Field)
	assert.Equal(t, "expected integer", out[0].Rule)
	assert.Equal(t, "two", out[0].RawValue)
	assert.Equal(t, "expected float", out[1].Rule)
	assert.Equal(t, "expected boolean", out[2].Rule)
}

func TestRun_NumericRange(t *testing.T) {
	engine := newEngine(t, []source.Record{
		ruleRecord("Bath", "integer", "", "", "1", "8"),
	})

	out := engine.Run([]source.Record{
		{"Bath": "0"},
		{"Bath": "9"},
		{"Bath": "8"},
		{"Bath": "1"},
	})

	require.Len(t, out, 2)
	assert.Equal(t, 1, out[0].RowIndex)
	assert.Equal(t, KindOutOfRange, out[0].Kind)
	assert.Equal(t, "min 1", out[0].Rule)
	assert.Equal(t, 2, out[1].RowIndex)
	assert.Equal(t, "max 8", out[1].Rule)
}

func TestRun_RangeAppliesToCoercedValue(t *testing.T) {
	// "$1,500" is 1500 after coercion; the range check must see the number,
	// not the raw text.
	engine := newEngine(t, []source.Record{
		ruleRecord("List_Price", "float", "", "", "1000", "2000"),
	})

	out := engine.Run([]source.Record{{"List_Price": "$1,500.00"}})
	assert.Empty(t, out)
}

func TestRun_AllowedSet(t *testing.T) {
	engine := newEngine(t, []source.Record{
		ruleRecord("Property_Type", "string", "", "single family|condo", "", ""),
	})

	out := engine.Run([]source.Record{
		{"Property_Type": "Condo"}, // case-insensitive
		{"Property_Type": "duplex"},
	})

	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].RowIndex)
	assert.Equal(t, KindOutOfRange, out[0].Kind)
	assert.Equal(t, "duplex", out[0].RawValue)
	assert.Equal(t, "allowed values: condo|single family", out[0].Rule)
}

func TestRun_OneDiscrepancyPerFieldPerRow(t *testing.T) {
	// A value that is both the wrong type and outside the range reports the
	// type mismatch only.
	engine := newEngine(t, []source.Record{
		ruleRecord("Bath", "integer", "yes", "", "1", "8"),
	})

	out := engine.Run([]source.Record{{"Bath": "lots"}})

	require.Len(t, out, 1)
	assert.Equal(t, KindTypeMismatch, out[0].Kind)
}

func TestRun_MultipleFieldsPerRow(t *testing.T) {
	engine := newEngine(t, []source.Record{
		ruleRecord("Bath", "integer", "yes", "", "", ""),
		ruleRecord("Bed", "integer", "yes", "", "", ""),
	})

	out := engine.Run([]source.Record{{"Bath": "", "Bed": "oops"}})

	require.Len(t, out, 2)
	assert.Equal(t, "Bath", out[0].Field)
	assert.Equal(t, KindMissingRequired, out[0].Kind)
	assert.Equal(t, "Bed", out[1].Field)
	assert.Equal(t, KindTypeMismatch, out[1].Kind)
}

func TestRun_OrderIsRowThenRule(t *testing.T) {
	engine := newEngine(t, []source.Record{
		ruleRecord("B", "integer", "yes", "", "", ""),
		ruleRecord("A", "integer", "yes", "", "", ""),
	})

	out := engine.Run([]source.Record{{}, {}})

	require.Len(t, out, 4)
	assert.Equal(t, []int{1, 1, 2, 2}, []int{out[0].RowIndex, out[1].RowIndex, out[2].RowIndex, out[3].RowIndex})
	assert.Equal(t, []string{"B", "A", "B", "A"}, []string{out[0].Field, out[1].Field, out[2].Field, out[3].Field})
}

func TestRun_FieldsWithoutRulesIgnored(t *testing.T) {
	engine := newEngine(t, []source.Record{
		ruleRecord("Bath", "integer", "", "", "", ""),
	})

	out := engine.Run([]source.Record{
		{"Bath": "2", "Unruled": "garbage everywhere"},
	})

	assert.Empty(t, out)
}

// mappingFieldTokens builds the per-field vocabularies exactly as cmd/etl
// wires them, from the normalizer's column mapping table.
func mappingFieldTokens() map[string]FieldTokens {
	fields := make(map[string]FieldTokens)
	for col, vocab := range normalize.BoolVocabularies() {
		fields[col] = FieldTokens{Truthy: vocab.Truthy, Falsy: vocab.Falsy}
	}
	return fields
}

func TestRun_FieldVocabulariesMatchNormalizer(t *testing.T) {
	// Values the transform half of the run stores as booleans must not come
	// back as type mismatches from the validation half.
	set := loadRules(t, []source.Record{
		ruleRecord("Flood", "boolean", "", "", "", ""),
		ruleRecord("Highway", "boolean", "", "", "", ""),
		ruleRecord("Water", "boolean", "", "", "", ""),
		ruleRecord("Pool", "boolean", "", "", "", ""),
	})
	engine := NewEngine(set, Options{Fields: mappingFieldTokens()}, zerolog.Nop())

	rec := source.Record{
		"Property_Title": "Cozy Bungalow",
		"Address":        "12 Oak Ln, Springfield",
		"Flood":          "Minimal Flood",
		"Highway":        "Near",
		"Water":          "well",
		"Pool":           "yes",
	}

	rs, err := normalize.NormalizeRow(rec, 1)
	require.NoError(t, err)
	require.NotNil(t, rs.Property.Flood)
	assert.True(t, *rs.Property.Flood)
	require.NotNil(t, rs.Property.Highway)
	assert.True(t, *rs.Property.Highway)

	out := engine.Run([]source.Record{rec})
	assert.Empty(t, out)
}

func TestRun_FieldVocabularyStillFlagsGarbage(t *testing.T) {
	set := loadRules(t, []source.Record{
		ruleRecord("Flood", "boolean", "", "", "", ""),
	})
	engine := NewEngine(set, Options{Fields: mappingFieldTokens()}, zerolog.Nop())

	out := engine.Run([]source.Record{
		{"Flood": "coastal"},
		{"Flood": "Flood Zone"},
	})

	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].RowIndex)
	assert.Equal(t, KindTypeMismatch, out[0].Kind)
	assert.Equal(t, "coastal", out[0].RawValue)
}

func TestRun_FieldsWithoutVocabularyUseDefaults(t *testing.T) {
	set := loadRules(t, []source.Record{
		ruleRecord("Unmapped_Flag", "boolean", "", "", "", ""),
	})
	engine := NewEngine(set, Options{Fields: mappingFieldTokens()}, zerolog.Nop())

	out := engine.Run([]source.Record{{"Unmapped_Flag": "true"}})
	assert.Empty(t, out)
}

func TestRun_AllowedSetMatchesCanonicalForms(t *testing.T) {
	// Allowed tokens are canonicalized through the rule's coercion, so a
	// boolean rule may list the raw vocabulary and a float rule formatted
	// numbers.
	engine := newEngine(t, []source.Record{
		ruleRecord("Pool", "boolean", "", "yes|no", "", ""),
		ruleRecord("Rate", "float", "", "1.50|2", "", ""),
	})

	out := engine.Run([]source.Record{
		{"Pool": "true", "Rate": "1.5"},
		{"Pool": "NO", "Rate": "$2.00"},
		{"Pool": "yes", "Rate": "3"},
	})

	require.Len(t, out, 1)
	assert.Equal(t, 3, out[0].RowIndex)
	assert.Equal(t, "Rate", out[0].Field)
	assert.Equal(t, KindOutOfRange, out[0].Kind)
}

func TestRun_CustomBooleanTokens(t *testing.T) {
	set := loadRules(t, []source.Record{
		ruleRecord("Flood", "boolean", "", "", "", ""),
	})
	engine := NewEngine(set, Options{
		Truthy: coerce.NewTokenSet("minimal flood"),
		Falsy:  coerce.NewTokenSet("flood zone"),
	}, zerolog.Nop())

	out := engine.Run([]source.Record{
		{"Flood": "Minimal Flood"},
		{"Flood": "yes"}, // not in the custom vocabulary
	})

	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].RowIndex)
	assert.Equal(t, KindTypeMismatch, out[0].Kind)
}
