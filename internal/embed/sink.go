package embed

import (
	"context"
	"fmt"

	"github.com/timmy/docmill/internal/domain"
	"github.com/timmy/docmill/internal/logger"
)

// Record is one embedded document's payload.
type Record struct {
	IndexID string `json:"index_id"`
	Title   string `json:"title"`
	Text    string `json:"text"`
	User    string `json:"user"`
}

// VectorStore persists embedded records. Replace semantics: storing under an
// existing document-set identifier supersedes the previous set.
type VectorStore interface {
	Replace(ctx context.Context, workDir, indexID string, vectors [][]float32, records []Record) error
}

// Sink embeds documents and persists them through a VectorStore, reporting
// incremental progress through the supplied callback.
type Sink struct {
	embedder  Embedder
	store     VectorStore
	batchSize int
	log       *logger.Logger
}

// NewSink creates a Sink.
func NewSink(embedder Embedder, store VectorStore, batchSize int, log *logger.Logger) *Sink {
	if batchSize <= 0 {
		batchSize = 32
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &Sink{embedder: embedder, store: store, batchSize: batchSize, log: log}
}

// Store embeds docs and persists the resulting vectors under indexID.
// Progress is reported per batch between 2 and 99 percent; the job itself
// owns the 1 and 100 percent checkpoints.
func (s *Sink) Store(ctx context.Context, docs []domain.Document, workDir, indexID, user string, report func(percent int)) error {
	if len(docs) == 0 {
		return fmt.Errorf("no documents to embed")
	}

	vectors := make([][]float32, 0, len(docs))
	records := make([]Record, 0, len(docs))

	for start := 0; start < len(docs); start += s.batchSize {
		end := start + s.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		texts := make([]string, len(batch))
		for i, doc := range batch {
			texts[i] = doc.Text
		}

		batchVectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed batch at %d: %w", start, err)
		}

		vectors = append(vectors, batchVectors...)
		for _, doc := range batch {
			records = append(records, Record{
				IndexID: indexID,
				Title:   doc.Metadata.Title(),
				Text:    doc.Text,
				User:    user,
			})
		}

		if report != nil {
			percent := 2 + 97*end/len(docs)
			if percent > 99 {
				percent = 99
			}
			report(percent)
		}
	}

	if err := s.store.Replace(ctx, workDir, indexID, vectors, records); err != nil {
		return fmt.Errorf("failed to persist vectors for index %s: %w", indexID, err)
	}

	s.log.WithFields(logger.Fields{
		"index_id": indexID,
		"docs":     len(docs),
	}).Info("Embedded and stored document set")

	return nil
}
