package secrets

import (
	"encoding/json"
	"strings"
)

const redactedValue = "<redacted>"

// minSecretLen keeps Scrub from shredding text on trivially short values.
const minSecretLen = 4

// Scrub replaces every occurrence of the given secrets in text.
func Scrub(text string, secrets ...string) string {
	for _, s := range secrets {
		s = strings.TrimSpace(s)
		if len(s) < minSecretLen {
			continue
		}
		text = strings.ReplaceAll(text, s, redactedValue)
	}
	return text
}

// RedactFields returns a copy of value with every map entry whose key matches
// one of keys (case-insensitive) replaced by "<redacted>".
func RedactFields(value any, keys ...string) (any, bool) {
	if len(keys) == 0 {
		return value, false
	}
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[strings.ToLower(k)] = struct{}{}
	}
	return redact(value, set)
}

// RedactJSON redacts the named fields inside a JSON payload.
func RedactJSON(data []byte, keys ...string) ([]byte, bool, error) {
	if len(data) == 0 {
		return data, false, nil
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return data, false, err
	}
	redacted, changed := RedactFields(payload, keys...)
	if !changed {
		return data, false, nil
	}
	out, err := json.Marshal(redacted)
	return out, true, err
}

func redact(value any, keys map[string]struct{}) (any, bool) {
	switch v := value.(type) {
	case map[string]any:
		changed := false
		out := make(map[string]any, len(v))
		for k, child := range v {
			if _, ok := keys[strings.ToLower(k)]; ok {
				out[k] = redactedValue
				changed = true
				continue
			}
			red, childChanged := redact(child, keys)
			if childChanged {
				changed = true
			}
			out[k] = red
		}
		return out, changed
	case map[string]string:
		changed := false
		out := make(map[string]any, len(v))
		for k, child := range v {
			if _, ok := keys[strings.ToLower(k)]; ok {
				out[k] = redactedValue
				changed = true
				continue
			}
			out[k] = child
		}
		return out, changed
	case []any:
		changed := false
		out := make([]any, len(v))
		for i, child := range v {
			red, childChanged := redact(child, keys)
			if childChanged {
				changed = true
			}
			out[i] = red
		}
		return out, changed
	default:
		return v, false
	}
}
