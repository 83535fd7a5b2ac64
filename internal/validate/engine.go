// Package validate checks the raw, pre-coercion dataset against the loaded
// field rules and reports every violation as a flat, ordered discrepancy
// list. The engine never aborts on bad data and does no aggregation; summary
// reporting belongs downstream.
package validate

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stonebridge-data/propetl/internal/coerce"
	"github.com/stonebridge-data/propetl/internal/rules"
	"github.com/stonebridge-data/propetl/internal/source"
)

// Kind classifies a discrepancy.
type Kind string

const (
	KindMissingRequired Kind = "missing_required"
	KindTypeMismatch    Kind = "type_mismatch"
	KindOutOfRange      Kind = "out_of_range"
)

// Discrepancy is one recorded rule violation for one row and field. RowIndex
// is the 1-based position of the row in the source file.
type Discrepancy struct {
	RowIndex int
	Field    string
	Kind     Kind
	RawValue string
	Rule     string
}

// FieldTokens is the boolean vocabulary for one field. Nil members fall back
// to the engine-wide sets.
type FieldTokens struct {
	Truthy coerce.TokenSet
	Falsy  coerce.TokenSet
}

// Options configures the engine. The token sets drive boolean type checks;
// zero values fall back to the coercion defaults. Fields carries per-field
// vocabularies for columns whose booleans use domain phrases rather than the
// generic yes/no tokens, so validation sees the same vocabulary the
// normalizer coerces with.
type Options struct {
	Truthy coerce.TokenSet
	Falsy  coerce.TokenSet
	Fields map[string]FieldTokens
}

// Engine evaluates every loaded rule against every row.
type Engine struct {
	rules  *rules.Set
	truthy coerce.TokenSet
	falsy  coerce.TokenSet
	fields map[string]FieldTokens
	log    zerolog.Logger
}

// NewEngine creates an Engine over the given rule set.
func NewEngine(set *rules.Set, opts Options, log zerolog.Logger) *Engine {
	truthy, falsy := opts.Truthy, opts.Falsy
	if truthy == nil {
		truthy = coerce.DefaultTruthy
	}
	if falsy == nil {
		falsy = coerce.DefaultFalsy
	}
	return &Engine{rules: set, truthy: truthy, falsy: falsy, fields: opts.Fields, log: log}
}

// boolTokens resolves the truthy/falsy sets for one field: its own
// vocabulary when one was configured, the engine-wide sets otherwise.
func (e *Engine) boolTokens(field string) (coerce.TokenSet, coerce.TokenSet) {
	truthy, falsy := e.truthy, e.falsy
	if ft, ok := e.fields[field]; ok {
		if ft.Truthy != nil {
			truthy = ft.Truthy
		}
		if ft.Falsy != nil {
			falsy = ft.Falsy
		}
	}
	return truthy, falsy
}

// Run evaluates the batch in source order, rules in load order within each
// row. For each row and field the checks run in order (presence, then type
// conformance, then domain) and stop at the first violation, so one
// field contributes at most one discrepancy per row. A fully conformant row
// contributes none.
func (e *Engine) Run(records []source.Record) []Discrepancy {
	var out []Discrepancy

	for i, rec := range records {
		rowIndex := i + 1
		for _, r := range e.rules.Rules() {
			if d := e.check(rowIndex, rec, r); d != nil {
				out = append(out, *d)
			}
		}
	}

	e.log.Info().
		Int("rows", len(records)).
		Int("rules", e.rules.Len()).
		Msg("validation complete")

	return out
}

func (e *Engine) check(rowIndex int, rec source.Record, r rules.Rule) *Discrepancy {
	raw := rec[r.Field]
	trimmed := strings.TrimSpace(raw)

	if trimmed == "" {
		if r.Required {
			return &Discrepancy{
				RowIndex: rowIndex,
				Field:    r.Field,
				Kind:     KindMissingRequired,
				RawValue: raw,
				Rule:     "required",
			}
		}
		return nil
	}

	truthy, falsy := e.boolTokens(r.Field)

	canonical, numeric, ok := coerceAs(trimmed, r.Type, truthy, falsy)
	if !ok {
		return &Discrepancy{
			RowIndex: rowIndex,
			Field:    r.Field,
			Kind:     KindTypeMismatch,
			RawValue: raw,
			Rule:     "expected " + r.Type.String(),
		}
	}

	if r.Allowed != nil && !allowedHas(r.Allowed, canonical, r.Type, truthy, falsy) {
		return &Discrepancy{
			RowIndex: rowIndex,
			Field:    r.Field,
			Kind:     KindOutOfRange,
			RawValue: raw,
			Rule:     "allowed values: " + strings.Join(allowedList(r.Allowed), rules.AllowedSeparator),
		}
	}

	if numeric != nil {
		if r.Min != nil && *numeric < *r.Min {
			return &Discrepancy{
				RowIndex: rowIndex,
				Field:    r.Field,
				Kind:     KindOutOfRange,
				RawValue: raw,
				Rule:     fmt.Sprintf("min %g", *r.Min),
			}
		}
		if r.Max != nil && *numeric > *r.Max {
			return &Discrepancy{
				RowIndex: rowIndex,
				Field:    r.Field,
				Kind:     KindOutOfRange,
				RawValue: raw,
				Rule:     fmt.Sprintf("max %g", *r.Max),
			}
		}
	}

	return nil
}

// allowedHas reports whether the canonical value matches the allowed set.
// Each allowed token is canonicalized through the same coercion as the value,
// so a boolean rule may list "yes|no" and a float rule "1.50" and still match
// data whose canonical forms are "true"/"false" and "1.5". Tokens that do not
// coerce are compared as written.
func allowedHas(allowed coerce.TokenSet, canonical string, kind coerce.Kind, truthy, falsy coerce.TokenSet) bool {
	if allowed.Has(canonical) {
		return true
	}
	for tok := range allowed {
		c, _, ok := coerceAs(tok, kind, truthy, falsy)
		if ok && strings.EqualFold(c, canonical) {
			return true
		}
	}
	return false
}

// coerceAs applies the coercion for the rule's expected type. It returns the
// canonical string form used for allowed-set checks, the numeric value when
// the type has one, and whether coercion succeeded.
func coerceAs(trimmed string, kind coerce.Kind, truthy, falsy coerce.TokenSet) (string, *float64, bool) {
	switch kind {
	case coerce.KindBool:
		b := coerce.Bool(trimmed, truthy, falsy)
		if b == nil {
			return "", nil, false
		}
		return strconv.FormatBool(*b), nil, true
	case coerce.KindInt:
		n := coerce.Int(trimmed)
		if n == nil {
			return "", nil, false
		}
		f := float64(*n)
		return strconv.FormatInt(*n, 10), &f, true
	case coerce.KindFloat:
		f := coerce.Float(trimmed)
		if f == nil {
			return "", nil, false
		}
		return strconv.FormatFloat(*f, 'g', -1, 64), f, true
	default:
		return trimmed, nil, true
	}
}

// allowedList renders a TokenSet deterministically for rule descriptions.
func allowedList(set coerce.TokenSet) []string {
	out := make([]string, 0, len(set))
	for tok := range set {
		out = append(out, tok)
	}
	slices.Sort(out)
	return out
}
