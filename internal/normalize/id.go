package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
)

var idKeys = []string{"id", "Id", "ID", "_id", "value", "Value"}

// ExtractID pulls a plain string identifier out of v. Strings and numbers
// are returned as-is; objects are searched for an id key, descending into
// data/Data wrappers.
func ExtractID(v any) (string, bool) {
	return extractID(v, 0)
}

func extractID(v any, depth int) (string, bool) {
	switch id := v.(type) {
	case nil:
		return "", false
	case string:
		return id, id != ""
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case int:
		return strconv.Itoa(id), true
	case int64:
		return strconv.FormatInt(id, 10), true
	case json.Number:
		return id.String(), true
	case json.RawMessage:
		var decoded any
		if err := json.Unmarshal(id, &decoded); err != nil {
			return "", false
		}
		return extractID(decoded, depth)
	case map[string]any:
		if depth > maxWrapDepth {
			return "", false
		}
		for _, key := range idKeys {
			if inner, ok := id[key]; ok {
				if s, ok := extractID(inner, depth+1); ok {
					return s, true
				}
			}
		}
		for _, key := range []string{"data", "Data"} {
			if inner, ok := id[key]; ok {
				if s, ok := extractID(inner, depth+1); ok {
					return s, true
				}
			}
		}
	}
	return "", false
}

// CoerceID returns the extracted identifier, or the value's string form
// when no identifier can be found. Nil coerces to "".
func CoerceID(v any) string {
	if s, ok := ExtractID(v); ok {
		return s
	}
	if v == nil {
		return ""
	}
	if raw, ok := v.(json.RawMessage); ok {
		return string(raw)
	}
	return fmt.Sprint(v)
}
