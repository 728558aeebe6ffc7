// Package filter defines field filters applied conjunctively during search.
package filter

import (
	"fmt"
	"strings"
	"time"
)

// MaxFilters is the maximum number of filters per query.
const MaxFilters = 32

// Operator names a comparison applied between a field value and the filter value.
type Operator string

// Supported operators.
const (
	Equals      Operator = "equals"
	Contains    Operator = "contains"
	StartsWith  Operator = "starts_with"
	EndsWith    Operator = "ends_with"
	GreaterThan Operator = "greater_than"
	LessThan    Operator = "less_than"
	Between     Operator = "between"
	In          Operator = "in"
)

// ParseOperator validates an operator name. Unknown operators are rejected
// rather than silently passing the filter.
func ParseOperator(s string) (Operator, error) {
	switch op := Operator(s); op {
	case Equals, Contains, StartsWith, EndsWith, GreaterThan, LessThan, Between, In:
		return op, nil
	default:
		return "", fmt.Errorf("unknown filter operator %q", s)
	}
}

// Filter is a single field condition (immutable value object).
type Filter struct {
	field string
	op    Operator
	value any
}

// New validates and creates a Filter. The field is a one-level dotted path.
func New(field string, op Operator, value any) (Filter, error) {
	if field == "" {
		return Filter{}, fmt.Errorf("filter field is required")
	}
	if _, err := ParseOperator(string(op)); err != nil {
		return Filter{}, err
	}
	switch op {
	case Between:
		vals := toSlice(value)
		if len(vals) != 2 {
			return Filter{}, fmt.Errorf("between filter on %q requires exactly two values", field)
		}
	case In:
		if toSlice(value) == nil {
			return Filter{}, fmt.Errorf("in filter on %q requires a list of values", field)
		}
	}
	return Filter{field: field, op: op, value: value}, nil
}

// Field returns the dotted field path.
func (f Filter) Field() string { return f.field }

// Op returns the operator.
func (f Filter) Op() Operator { return f.op }

// Value returns the comparison value.
func (f Filter) Value() any { return f.value }

// Matches reports whether a resolved field value satisfies the filter.
// present is false when the field path did not resolve on the entity;
// absent fields never match.
func (f Filter) Matches(fieldValue any, present bool) bool {
	if !present {
		return false
	}

	switch f.op {
	case Equals:
		return equal(fieldValue, f.value)
	case Contains:
		return strings.Contains(stringify(fieldValue), stringify(f.value))
	case StartsWith:
		return strings.HasPrefix(stringify(fieldValue), stringify(f.value))
	case EndsWith:
		return strings.HasSuffix(stringify(fieldValue), stringify(f.value))
	case GreaterThan:
		cmp, ok := compare(fieldValue, f.value)
		return ok && cmp > 0
	case LessThan:
		cmp, ok := compare(fieldValue, f.value)
		return ok && cmp < 0
	case Between:
		vals := toSlice(f.value)
		lo, okLo := compare(fieldValue, vals[0])
		hi, okHi := compare(fieldValue, vals[1])
		return okLo && okHi && lo >= 0 && hi <= 0
	case In:
		for _, candidate := range toSlice(f.value) {
			if equal(fieldValue, candidate) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// equal compares two values, numerically when both coerce to numbers and
// case-insensitively for strings.
func equal(a, b any) bool {
	if fa, okA := toFloat(a); okA {
		if fb, okB := toFloat(b); okB {
			return fa == fb
		}
	}
	if ta, okA := toTime(a); okA {
		if tb, okB := toTime(b); okB {
			return ta.Equal(tb)
		}
	}
	return strings.EqualFold(stringify(a), stringify(b))
}

// compare orders two values: numbers numerically, times chronologically,
// everything else lexicographically. ok is false for incomparable pairs.
func compare(a, b any) (int, bool) {
	if fa, okA := toFloat(a); okA {
		if fb, okB := toFloat(b); okB {
			switch {
			case fa < fb:
				return -1, true
			case fa > fb:
				return 1, true
			default:
				return 0, true
			}
		}
	}
	if ta, okA := toTime(a); okA {
		if tb, okB := toTime(b); okB {
			return ta.Compare(tb), true
		}
	}
	sa, sb := stringify(a), stringify(b)
	return strings.Compare(sa, sb), true
}

// stringify renders a value for substring operators. String slices join on
// a space so tag lists behave like text.
func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return strings.ToLower(s)
	case []string:
		return strings.ToLower(strings.Join(s, " "))
	case time.Time:
		return s.UTC().Format(time.RFC3339)
	case nil:
		return ""
	default:
		if vals := toSlice(v); vals != nil {
			parts := make([]string, len(vals))
			for i, item := range vals {
				parts[i] = stringify(item)
			}
			return strings.Join(parts, " ")
		}
		return strings.ToLower(fmt.Sprintf("%v", v))
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

func toSlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []string:
		out := make([]any, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out
	case []float64:
		out := make([]any, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out
	case []int:
		out := make([]any, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out
	default:
		return nil
	}
}

// Compare is the ordering primitive shared with multi-key sorting.
// Missing values (ok=false on either side) are handled by the caller.
func Compare(a, b any) (int, bool) { return compare(a, b) }
