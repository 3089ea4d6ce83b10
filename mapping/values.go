package mapping

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/c360studio/catalogrdf/vocabulary/dcat"
)

// effectiveValue applies the drop rule for extras. Strings are trimmed;
// null, empty and placeholder values ("unknown", "not specified") report
// ok == false.
func effectiveValue(v any) (value any, ok bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case string:
		val = strings.TrimSpace(val)
		lower := strings.ToLower(val)
		if val == "" || strings.Contains(lower, "unknown") || strings.Contains(lower, "not specified") {
			return nil, false
		}
		return val, true
	default:
		return v, true
	}
}

// valueText renders a decoded JSON value as text.
func valueText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1e15 {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'g', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, valueText(item))
		}
		return strings.Join(parts, ", ")
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// literalOf builds a literal whose datatype follows the decoded JSON type.
func literalOf(v any) quad.Value {
	switch val := v.(type) {
	case string:
		return dcat.Literal(val)
	case bool:
		return dcat.Typed(strconv.FormatBool(val), dcat.XSDBoolean)
	case int, int64:
		return dcat.Typed(valueText(val), dcat.XSDInteger)
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1e15 {
			return dcat.Typed(valueText(val), dcat.XSDInteger)
		}
		return dcat.Typed(valueText(val), dcat.XSDDouble)
	default:
		return dcat.Literal(valueText(val))
	}
}

// intOf converts a count-like value. Fractional numbers truncate; text
// must be an integer.
func intOf(v any) (int64, bool) {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, false
		}
		return int64(val), true
	case int:
		return int64(val), true
	case int64:
		return val, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func integerLiteral(n int64) quad.TypedString {
	return dcat.Typed(strconv.FormatInt(n, 10), dcat.XSDInteger)
}

// listOf normalises a categories value: lists are used as is, strings are
// split on commas, any other scalar becomes a one element list.
func listOf(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, valueText(item))
		}
		return out
	case []string:
		return val
	case string:
		return strings.Split(val, ",")
	default:
		return []string{valueText(val)}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
