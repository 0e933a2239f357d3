package payload

import (
	"strings"
	"time"
)

// Payload is one JSON-decoded entity as received from the data.gouv.fr API.
// No schema is enforced upstream: any key may be missing or null at any
// nesting level, so every accessor here is total.
type Payload = map[string]any

// Separator delimits nested keys in a resolution path.
const Separator = "__"

// Resolve walks the payload along path, one key per Separator-delimited
// segment. The second return value is false as soon as a segment is missing,
// an intermediate value is not an object, or an intermediate value is
// explicitly null.
func Resolve(p Payload, path string) (any, bool) {
	var current any = p
	for _, part := range strings.Split(path, Separator) {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[part]
		if !ok || v == nil {
			return nil, false
		}
		current = v
	}
	return current, true
}

// GetString resolves path to a string, or "" when absent or not a string.
func GetString(p Payload, path string) string {
	if v, ok := Resolve(p, path); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetStringPtr is GetString with absence kept as nil.
func GetStringPtr(p Payload, path string) *string {
	if v, ok := Resolve(p, path); ok {
		if s, ok := v.(string); ok {
			return &s
		}
	}
	return nil
}

// GetBool resolves path to a bool, defaulting to false.
func GetBool(p Payload, path string) bool {
	if v, ok := Resolve(p, path); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// GetFloat resolves path to a number. JSON numbers decode as float64; integer
// source values are accepted for robustness against pre-decoded payloads.
func GetFloat(p Payload, path string) (float64, bool) {
	v, ok := Resolve(p, path)
	if !ok {
		return 0, false
	}
	return asFloat(v)
}

// GetInt resolves path to a number truncated to int.
func GetInt(p Payload, path string) (int, bool) {
	f, ok := GetFloat(p, path)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// GetIntPtr is GetInt with absence kept as nil.
func GetIntPtr(p Payload, path string) *int {
	if n, ok := GetInt(p, path); ok {
		return &n
	}
	return nil
}

// GetList resolves path to a JSON array, nil when absent or not an array.
func GetList(p Payload, path string) []any {
	if v, ok := Resolve(p, path); ok {
		if l, ok := v.([]any); ok {
			return l
		}
	}
	return nil
}

// GetMap resolves path to a JSON object, nil when absent or not an object.
func GetMap(p Payload, path string) map[string]any {
	if v, ok := Resolve(p, path); ok {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return nil
}

// GetTime resolves path to a timestamp. The API emits ISO-8601 with or
// without offset, sometimes with a trailing Z and sometimes date-only.
func GetTime(p Payload, path string) *time.Time {
	s := GetString(p, path)
	return ParseTime(s)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime parses the timestamp shapes seen in catalog payloads, nil when
// the value is empty or matches none of them.
func ParseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	trimmed := strings.TrimSuffix(s, "Z")
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
		if t, err := time.Parse(layout, trimmed); err == nil {
			return &t
		}
	}
	return nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
