package llm

import (
	"encoding/json"
	"testing"
)

func testSchema() *Schema {
	return &Schema{
		Name:        "test-drill",
		Description: "A test drill",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"drill":   map[string]any{"type": "string"},
				"reps":    map[string]any{"type": "integer", "minimum": 1},
				"surface": map[string]any{"type": "string", "enum": []any{"grass", "turf", "court"}},
			},
			"required":             []any{"drill", "reps", "surface"},
			"additionalProperties": false,
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"drill":"rondo","reps":4,"surface":"grass"}`, false},
		{"missing required", `{"drill":"rondo","reps":4}`, true},
		{"wrong type", `{"drill":"rondo","reps":"four","surface":"grass"}`, true},
		{"below minimum", `{"drill":"rondo","reps":0,"surface":"grass"}`, true},
		{"bad enum", `{"drill":"rondo","reps":4,"surface":"sand"}`, true},
		{"extra property", `{"drill":"rondo","reps":4,"surface":"turf","coach":"x"}`, true},
		{"not json", `here is your drill`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(testSchema(), json.RawMessage(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if err.Kind != ErrInvalidResponse {
					t.Fatalf("expected invalid response, got %v", err.Kind)
				}
				if string(err.Content) != tt.raw {
					t.Fatalf("expected offending content to be kept, got %s", err.Content)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`not json`)); err != nil {
		t.Fatalf("nil schema should accept anything, got: %v", err)
	}
}

func TestCompileSchema_Cached(t *testing.T) {
	s := testSchema()
	s.Name = "test-cached"
	a, err := compileSchema(s)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	b, err := compileSchema(s)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if a != b {
		t.Fatal("expected the compiled schema to be reused")
	}
}
