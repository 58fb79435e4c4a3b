package schema

import (
	"encoding/json"
	"testing"
)

func TestValidateSchema(t *testing.T) {
	schema := []byte(`{"type":"object","properties":{"name":{"type":"string"}},"required":["name"]}`)
	if err := ValidateSchema("test", schema, map[string]any{"name": "ok"}); err != nil {
		t.Fatalf("expected valid schema: %v", err)
	}
	if err := ValidateSchema("test", schema, map[string]any{"nope": "bad"}); err == nil {
		t.Fatalf("expected schema validation error")
	}
}

func TestValidateSchemaAcceptsGoIntegers(t *testing.T) {
	schema := []byte(`{"type":"object","properties":{"n":{"type":"integer","minimum":1}}}`)
	if err := ValidateSchema("ints", schema, map[string]any{"n": 8192}); err != nil {
		t.Fatalf("expected int accepted: %v", err)
	}
	if err := ValidateSchema("ints", schema, map[string]any{"n": 0}); err == nil {
		t.Fatalf("expected minimum violation")
	}
}

func TestNormalizeValue(t *testing.T) {
	data := json.RawMessage(`{"k":"v"}`)
	val, err := normalizeValue(data)
	if err != nil {
		t.Fatalf("normalize raw: %v", err)
	}
	m, ok := val.(map[string]any)
	if !ok || m["k"] != "v" {
		t.Fatalf("unexpected normalized value")
	}
	val, err = normalizeValue([]byte(`{"k":"v"}`))
	if err != nil {
		t.Fatalf("normalize bytes: %v", err)
	}
	if _, ok := val.(map[string]any); !ok {
		t.Fatalf("expected map from bytes")
	}
	val, err = normalizeValue(map[string]any{"n": 3})
	if err != nil {
		t.Fatalf("normalize map: %v", err)
	}
	if val.(map[string]any)["n"] != float64(3) {
		t.Fatalf("expected json number, got %#v", val)
	}
	if _, err := normalizeValue([]byte("{bad")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestValidateSchemaEmpty(t *testing.T) {
	if err := ValidateSchema("test", nil, nil); err == nil {
		t.Fatalf("expected error for empty schema")
	}
	if err := ValidateSchema("test", []byte{}, nil); err == nil {
		t.Fatalf("expected error for empty schema")
	}
}

func TestValidateSchemaBadSchema(t *testing.T) {
	if err := ValidateSchema("bad", []byte(`{"type":`), map[string]any{}); err == nil {
		t.Fatalf("expected compile error")
	}
}
