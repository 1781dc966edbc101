package binding

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Truthy reports whether a stored entity value checks a checkbox. Empty
// strings, zero, NaN, false and nil are falsy. Everything else is truthy,
// including the string "false" and empty collections.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	case float32:
		return t != 0 && !math.IsNaN(float64(t))
	case int:
		return t != 0
	case int64:
		return t != 0
	case int32:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}

// SubmittedTruthy reports whether a submitted or typed checkbox value means
// checked. It is lenient: "false", "0", "off", "no" and blank text in any
// case are unchecked.
func SubmittedTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "false", "0", "off", "no":
		return false
	}
	return true
}

// Stringify renders a scalar as display text. Whole floats drop their
// fraction so 12.0 renders as "12" and 0 renders as "0". Collections render
// as compact JSON.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case json.Number:
		return t.String()
	default:
		data, err := marshal(v, false)
		if err != nil {
			return ""
		}
		return data
	}
}

// FormatValue renders a value for a textarea. Sequences put one element per
// line, with object elements written as indented JSON blocks; objects are
// written as indented JSON; scalars are stringified.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []any:
		lines := make([]string, 0, len(t))
		for _, item := range t {
			switch item.(type) {
			case map[string]any, []any:
				data, err := marshal(item, true)
				if err != nil {
					continue
				}
				lines = append(lines, data)
			default:
				lines = append(lines, Stringify(item))
			}
		}
		return strings.Join(lines, "\n")
	case map[string]any:
		data, err := marshal(t, true)
		if err != nil {
			return ""
		}
		return data
	default:
		return Stringify(v)
	}
}

// ParseInt reads the leading integer of s, ignoring leading whitespace and
// trailing garbage. Empty or unparsable input yields 0; digits beyond the int
// range clamp to math.MaxInt or math.MinInt.
func ParseInt(s string) int {
	s = strings.TrimLeft(s, " \t\r\n")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			if s[0] == '-' {
				return math.MinInt
			}
			return math.MaxInt
		}
		return 0
	}
	return n
}

// ParseStructured decodes s as JSON when possible and returns s unchanged
// otherwise.
func ParseStructured(s string) any {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	var out any
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return s
	}
	return out
}

func marshal(v any, indent bool) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
