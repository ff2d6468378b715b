package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is one flat entity instance as exchanged with the IMS API.
type Record map[string]any

// String renders the value stored under key as text. Missing and null
// values render as "".
func (r Record) String(key string) string {
	if r == nil {
		return ""
	}
	return stringify(r[key])
}

// Strings returns the value under key as a list of strings. A scalar value
// becomes a single-element list.
func (r Record) Strings(key string) []string {
	if r == nil {
		return nil
	}
	switch value := r[key].(type) {
	case nil:
		return nil
	case []string:
		return append([]string(nil), value...)
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			if s := stringify(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		s := strings.TrimSpace(stringify(value))
		if s == "" {
			return nil
		}
		return []string{s}
	}
}

// ID returns the identity stored under key.
func (r Record) ID(key string) (string, bool) {
	id := strings.TrimSpace(r.String(key))
	return id, id != ""
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(v, ", ")
	default:
		return fmt.Sprint(v)
	}
}
