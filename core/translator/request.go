package translator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// DecodeRequest parses a translate body. Failures come back as a
// KindRequest *Error.
func DecodeRequest(data []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, RequestError(err)
	}
	return req, nil
}

// UnmarshalJSON accepts loosely typed bodies. Scalars are read as text and
// falsy scalars (null, false, 0) count as absent. A body that is valid JSON
// but not an object carries no fields.
func (r *Request) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		*r = Request{}
		return nil
	}
	var raw struct {
		Rules  json.RawMessage `json:"rules"`
		APIKey json.RawMessage `json:"apiKey"`
		Model  json.RawMessage `json:"model"`
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	var out Request
	var err error
	if out.Rules, err = scalarText("rules", raw.Rules); err != nil {
		return err
	}
	if out.APIKey, err = scalarText("apiKey", raw.APIKey); err != nil {
		return err
	}
	if out.Model, err = scalarText("model", raw.Model); err != nil {
		return err
	}
	*r = out
	return nil
}

func scalarText(field string, raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", nil
	}
	switch raw[0] {
	case 'n', 'f':
		return "", nil
	case 't':
		return "true", nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("%s: %w", field, err)
		}
		return s, nil
	case '{', '[':
		return "", fmt.Errorf("%s must be text, got %s", field, jsonKind(raw[0]))
	default:
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return "", fmt.Errorf("%s: %w", field, err)
		}
		if f == 0 {
			return "", nil
		}
		return numberText(f), nil
	}
}

func numberText(f float64) string {
	if math.Abs(f) >= 1e21 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func jsonKind(c byte) string {
	if c == '{' {
		return "object"
	}
	return "array"
}
