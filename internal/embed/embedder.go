// Package embed turns documents into vectors and persists them to the
// configured vector store, keyed by a document-set identifier.
package embed

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// Embedder generates embeddings for batches of texts.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// RestEmbedder calls an OpenAI-compatible embeddings endpoint.
type RestEmbedder struct {
	client     *resty.Client
	model      string
	dimensions int
}

// RestEmbedderConfig holds configuration for RestEmbedder.
type RestEmbedderConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int
}

// NewRestEmbedder creates a RestEmbedder.
func NewRestEmbedder(cfg *RestEmbedderConfig) *RestEmbedder {
	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")

	return &RestEmbedder{
		client:     client,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// EmbedBatch generates embeddings for multiple texts.
func (e *RestEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	req := embeddingRequest{
		Model:      e.model,
		Input:      texts,
		Dimensions: e.dimensions,
	}

	var result embeddingResponse
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post("/embeddings")
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("embedding request failed: status %s", resp.Status())
	}
	if result.Error != nil {
		return nil, fmt.Errorf("embedding request failed: %s", result.Error.Message)
	}
	if len(result.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(result.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range result.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding index %d out of range", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}
