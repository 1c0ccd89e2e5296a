package image

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bookforge-api/internal/config"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/generations" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["prompt"] != "a quiet mountain town" {
			t.Errorf("prompt = %v", req["prompt"])
		}
		if req["n"] != float64(1) {
			t.Errorf("n = %v", req["n"])
		}

		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"b64_json": "aGVsbG8="}},
		})
	}))
	defer srv.Close()

	client := NewClient(config.ImageConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "gpt-image-1",
		Size:    "1024x1024",
	})

	b64, err := client.Generate(context.Background(), "a quiet mountain town")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if b64 != "aGVsbG8=" {
		t.Fatalf("b64 = %q", b64)
	}
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "prompt rejected", "type": "invalid_request_error"},
		})
	}))
	defer srv.Close()

	client := NewClient(config.ImageConfig{BaseURL: srv.URL, Model: "gpt-image-1"})

	_, err := client.Generate(context.Background(), "bad prompt")
	if err == nil {
		t.Fatal("expected error for http 400")
	}
	if !strings.Contains(err.Error(), "400") {
		t.Fatalf("error should carry status: %v", err)
	}
}

func TestGenerateEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer srv.Close()

	client := NewClient(config.ImageConfig{BaseURL: srv.URL, Model: "gpt-image-1"})

	if _, err := client.Generate(context.Background(), "anything"); err == nil {
		t.Fatal("expected error for empty data")
	}
}
