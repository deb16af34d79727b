package assistant

import (
	"fmt"
	"strconv"
	"strings"
)

// Stateless validation and coercion helpers shared by tool implementations.
// Model-produced arguments arrive untyped; numbers in particular may show up
// as float64, int or string depending on the provider's JSON decoding.

// ValidText reports whether v is a non-empty string after trimming.
func ValidText(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) != ""
}

// ValidNumber reports whether v can be interpreted as a number.
func ValidNumber(v any) bool {
	_, ok := toFloat(v)
	return ok
}

// ValidOperation reports whether op is one of the allowed operations.
func ValidOperation(op string, allowed []string) bool {
	for _, candidate := range allowed {
		if op == candidate {
			return true
		}
	}
	return false
}

// TextArg extracts a trimmed string argument.
func TextArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// NumberArg extracts a numeric argument, coercing the usual JSON decodings.
func NumberArg(args map[string]any, key string) (float64, bool) {
	v, ok := args[key]
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// BoolArg extracts a boolean argument, falling back to def when absent or of
// the wrong type.
func BoolArg(args map[string]any, key string, def bool) bool {
	v, ok := args[key]
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return def
		}
		return parsed
	default:
		return def
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
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	case fmt.Stringer:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n.String()), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
