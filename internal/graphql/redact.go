package graphql

import (
	"encoding/json"
	"strings"
)

var sensitiveKeys = []string{"value", "password", "secret", "token", "apikey", "api_key", "credential"}

// Redact returns a copy of variables, as generic JSON, with the values of
// sensitive keys masked. It is meant for logging only.
func Redact(variables any) any {
	if variables == nil {
		return nil
	}
	raw, err := json.Marshal(variables)
	if err != nil {
		return "(unloggable)"
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "(unloggable)"
	}
	return redactValue(generic)
}

func redactValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if isSensitive(k) {
				if _, nested := val.(map[string]any); !nested {
					out[k] = "***"
					continue
				}
			}
			out[k] = redactValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = redactValue(val)
		}
		return out
	default:
		return v
	}
}

func isSensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if lower == s || strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// operationName returns a short label for a query: its first line, trimmed.
func operationName(query string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(query), "\n")
	line = strings.TrimSuffix(strings.TrimSpace(line), "{")
	return strings.TrimSpace(line)
}
