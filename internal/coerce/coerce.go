// Package coerce converts raw CSV cell text into canonical typed values.
//
// Every function follows the same contract: malformed or empty input maps to
// nil, never to a zero value. The distinction matters downstream: a boolean
// cell reading "maybe" must not be loaded as false, and "N/A" in a price
// column must not become 0. Range and domain checks are deliberately not done
// here; that is the validation engine's job.
package coerce

import (
	"strconv"
	"strings"
)

// Kind tags the target type a raw value should be coerced into.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindFloat
)

// String returns the lowercase name used in rule files and log output.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	default:
		return "string"
	}
}

// TokenSet is a case-insensitive set of raw tokens. Keys must be stored
// lowercase; Has folds its argument before lookup.
type TokenSet map[string]struct{}

// NewTokenSet builds a TokenSet from the given tokens, lowercasing each.
func NewTokenSet(tokens ...string) TokenSet {
	s := make(TokenSet, len(tokens))
	for _, t := range tokens {
		s[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return s
}

// Has reports whether the set contains the token, case-insensitively.
func (s TokenSet) Has(token string) bool {
	_, ok := s[strings.ToLower(token)]
	return ok
}

// Generic truthy/falsy tokens. Domain-specific columns (flood descriptors,
// near/far, city/well) carry their own sets in the column mapping.
var (
	DefaultTruthy = NewTokenSet("yes", "true", "y", "1")
	DefaultFalsy  = NewTokenSet("no", "false", "n", "0")
)

// Bool matches the raw value against the truthy and falsy sets. Empty input
// and tokens in neither set resolve to nil: ambiguous data is never reported
// as a definite negative.
func Bool(raw string, truthy, falsy TokenSet) *bool {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	if truthy.Has(v) {
		return ptr(true)
	}
	if falsy.Has(v) {
		return ptr(false)
	}
	return nil
}

// Int parses the raw value as an integer after stripping currency formatting.
// Integral float text such as "1998.0" is accepted; fractional values and
// non-numeric text resolve to nil.
func Int(raw string) *int64 {
	v := stripNumeric(raw)
	if v == "" {
		return nil
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return ptr(n)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != float64(int64(f)) {
		return nil
	}
	return ptr(int64(f))
}

// Float parses the raw value as a float after stripping currency formatting.
// Non-numeric text resolves to nil.
func Float(raw string) *float64 {
	v := stripNumeric(raw)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return ptr(f)
}

// String trims surrounding whitespace. Empty input resolves to nil; "absent"
// and "empty string" deliberately collapse to the same value.
func String(raw string) *string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	return ptr(v)
}

// stripNumeric removes the formatting seen in the export's money columns
// ("$2,500.00") so strconv can parse the remainder: one leading currency
// symbol and well-formed thousands grouping. Anything looser ("$$5",
// "1,2,3") is not a formatted number and returns empty so the caller
// resolves it to nil rather than a corrupted value.
func stripNumeric(raw string) string {
	v := strings.TrimSpace(raw)
	v = strings.TrimSpace(strings.TrimPrefix(v, "$"))
	if strings.Contains(v, ",") {
		if !groupedThousands(v) {
			return ""
		}
		v = strings.ReplaceAll(v, ",", "")
	}
	return v
}

// groupedThousands reports whether the integer part of v uses standard
// 3-digit comma grouping, e.g. "1,234,567.89" or "-12,000".
func groupedThousands(v string) bool {
	v = strings.TrimPrefix(v, "-")
	intPart, _, _ := strings.Cut(v, ".")
	groups := strings.Split(intPart, ",")
	if len(groups[0]) == 0 || len(groups[0]) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

func ptr[T any](v T) *T {
	return &v
}
