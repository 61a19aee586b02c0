package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestGeminiProvider(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewGeminiProvider(context.Background(), GeminiConfig{
		APIKey:  "test-key",
		Model:   "gemini-flash",
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p
}

func geminiReply(text, finish string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": text}},
				},
				"finishReason": finish,
			},
		},
		"usageMetadata": map[string]any{
			"promptTokenCount":     12,
			"candidatesTokenCount": 8,
			"totalTokenCount":      20,
		},
	}
}

func TestGeminiProvider_Structured(t *testing.T) {
	var path string
	p := newTestGeminiProvider(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(geminiReply(`{"drill":"box jumps","reps":3,"surface":"court"}`, "STOP"))
	})

	resp, err := p.Generate(context.Background(), Request{Messages: UserMessage("x"), Schema: testSchema()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(path, "gemini-2.0-flash:generateContent") {
		t.Fatalf("unexpected path %q", path)
	}
	if resp.Usage.InputTokens != 12 || resp.Usage.OutputTokens != 8 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}
	if string(resp.Content) != `{"drill":"box jumps","reps":3,"surface":"court"}` {
		t.Fatalf("unexpected content %s", resp.Content)
	}
}

func TestGeminiProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
		want   ErrorKind
	}{
		{"rate limit", http.StatusTooManyRequests, map[string]any{"error": map[string]any{"code": 429, "message": "quota"}}, ErrRateLimited},
		{"unavailable", http.StatusServiceUnavailable, map[string]any{"error": map[string]any{"code": 503, "message": "overloaded"}}, ErrUnavailable},
		{"forbidden", http.StatusForbidden, map[string]any{"error": map[string]any{"code": 403, "message": "bad key"}}, ErrRejected},
		{"max tokens", http.StatusOK, geminiReply(`{"drill":`, "MAX_TOKENS"), ErrTruncated},
		{"invalid", http.StatusOK, geminiReply(`{"drill":"sprints"}`, "STOP"), ErrInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestGeminiProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(tt.body)
			})
			_, err := p.Generate(context.Background(), Request{Messages: UserMessage("x"), Schema: testSchema()})
			if kind, ok := KindOf(err); !ok || kind != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"}, // pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"scenario": map[string]any{"type": "string"},
			"minute":   map[string]any{"type": "integer"},
			"correct":  map[string]any{"type": "string", "enum": []string{"A", "B", "C", "D"}},
			"tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []string{"scenario", "correct"},
		"additionalProperties": false,
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(schema.Properties))
	}
	if schema.Properties["minute"].Type != "INTEGER" {
		t.Fatalf("expected INTEGER for minute, got %s", schema.Properties["minute"].Type)
	}
	if len(schema.Properties["correct"].Enum) != 4 {
		t.Fatalf("expected 4 enum values, got %d", len(schema.Properties["correct"].Enum))
	}
	if schema.Properties["tags"].Items.Type != "STRING" {
		t.Fatalf("expected STRING items, got %s", schema.Properties["tags"].Items.Type)
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(schema.Required))
	}
}
