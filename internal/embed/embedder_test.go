package embed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func embeddingServer(t *testing.T, fn http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(fn)
	t.Cleanup(srv.Close)
	return srv
}

func TestRestEmbedderEmbedBatch(t *testing.T) {
	srv := embeddingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q", req.Model)
		}

		// Answer out of order to exercise index-based reassembly.
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"data":[
			{"index":1,"embedding":[0.3,0.4]},
			{"index":0,"embedding":[0.1,0.2]}
		]}`)
	})

	embedder := NewRestEmbedder(&RestEmbedderConfig{BaseURL: srv.URL, APIKey: "k", Model: "test-model"})
	vectors, err := embedder.EmbedBatch(context.Background(), []string{"one", "two"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if vectors[0][0] != 0.1 || vectors[1][0] != 0.3 {
		t.Errorf("vectors not reordered by index: %v", vectors)
	}
}

func TestRestEmbedderEmptyInput(t *testing.T) {
	embedder := NewRestEmbedder(&RestEmbedderConfig{BaseURL: "http://unused"})
	vectors, err := embedder.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vectors) != 0 {
		t.Errorf("expected no vectors, got %d", len(vectors))
	}
}

func TestRestEmbedderErrorStatus(t *testing.T) {
	srv := embeddingServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	})

	embedder := NewRestEmbedder(&RestEmbedderConfig{BaseURL: srv.URL})
	if _, err := embedder.EmbedBatch(context.Background(), []string{"one"}); err == nil {
		t.Fatal("expected an error for a non-2xx response")
	}
}

func TestRestEmbedderCountMismatch(t *testing.T) {
	srv := embeddingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":[{"index":0,"embedding":[0.1]}]}`)
	})

	embedder := NewRestEmbedder(&RestEmbedderConfig{BaseURL: srv.URL})
	if _, err := embedder.EmbedBatch(context.Background(), []string{"one", "two"}); err == nil {
		t.Fatal("expected an error when the response is missing embeddings")
	}
}
