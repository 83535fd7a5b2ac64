// Package rules loads the declarative field-validation rule table. Each rule
// row names a source column and the expectation for it: a type, whether the
// field is required, and an optional allowed set or numeric range. A
// malformed rule row is skipped with a warning so one bad line never disables
// validation of everything else.
package rules

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stonebridge-data/propetl/internal/coerce"
	"github.com/stonebridge-data/propetl/internal/source"
)

// Rule is the parsed expectation for one field.
type Rule struct {
	Field    string
	Type     coerce.Kind
	Required bool
	Allowed  coerce.TokenSet // nil when the rule has no allowed set
	Min      *float64
	Max      *float64
}

// Set is an ordered rule collection. Order follows the rule file so
// discrepancy output is reproducible.
type Set struct {
	rules []Rule
	index map[string]int
}

// Rules returns the rules in load order.
func (s *Set) Rules() []Rule {
	return s.rules
}

// Lookup returns the rule for field, if one was loaded.
func (s *Set) Lookup(field string) (Rule, bool) {
	i, ok := s.index[field]
	if !ok {
		return Rule{}, false
	}
	return s.rules[i], true
}

// Len returns the number of loaded rules.
func (s *Set) Len() int {
	return len(s.rules)
}

// AllowedSeparator splits multi-valued allowed_values cells. Pipe rather than
// comma, so the cell survives CSV round-trips unquoted.
const AllowedSeparator = "|"

// Load parses rule records into a Set. Expected record keys: field_name,
// expected_type, required, allowed_values, min, max. Rows with a blank field
// name, an unknown type, unparseable bounds, or min > max are skipped with a
// warning. A duplicate field name replaces the earlier rule, keeping the
// earlier position.
func Load(records []source.Record, log zerolog.Logger) *Set {
	s := &Set{index: make(map[string]int, len(records))}

	for i, rec := range records {
		rowIndex := i + 1

		field := strings.TrimSpace(rec["field_name"])
		if field == "" {
			log.Warn().Int("row", rowIndex).Msg("rule skipped: blank field_name")
			continue
		}

		kind, ok := parseType(rec["expected_type"])
		if !ok {
			log.Warn().
				Int("row", rowIndex).
				Str("field", field).
				Str("expected_type", rec["expected_type"]).
				Msg("rule skipped: unknown expected_type")
			continue
		}

		r := Rule{Field: field, Type: kind}
		if b := coerce.Bool(rec["required"], coerce.DefaultTruthy, coerce.DefaultFalsy); b != nil {
			r.Required = *b
		}

		if allowed := strings.TrimSpace(rec["allowed_values"]); allowed != "" {
			r.Allowed = coerce.NewTokenSet(strings.Split(allowed, AllowedSeparator)...)
		}

		var bad bool
		r.Min, bad = parseBound(rec["min"])
		if bad {
			log.Warn().Int("row", rowIndex).Str("field", field).Str("min", rec["min"]).
				Msg("rule skipped: unparseable min")
			continue
		}
		r.Max, bad = parseBound(rec["max"])
		if bad {
			log.Warn().Int("row", rowIndex).Str("field", field).Str("max", rec["max"]).
				Msg("rule skipped: unparseable max")
			continue
		}
		if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
			log.Warn().Int("row", rowIndex).Str("field", field).
				Float64("min", *r.Min).Float64("max", *r.Max).
				Msg("rule skipped: min greater than max")
			continue
		}

		if prev, dup := s.index[field]; dup {
			s.rules[prev] = r
			continue
		}
		s.index[field] = len(s.rules)
		s.rules = append(s.rules, r)
	}

	log.Info().Int("rules", len(s.rules)).Msg("field rules loaded")
	return s
}

func parseType(raw string) (coerce.Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "boolean", "bool":
		return coerce.KindBool, true
	case "integer", "int":
		return coerce.KindInt, true
	case "float", "number", "numeric":
		return coerce.KindFloat, true
	case "string", "text":
		return coerce.KindString, true
	default:
		return coerce.KindString, false
	}
}

// parseBound returns (nil, false) for an empty cell, the parsed bound for a
// numeric one, and (nil, true) for garbage.
func parseBound(raw string) (*float64, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, true
	}
	return &f, false
}
