package embed

import (
	"context"
	"fmt"

	"github.com/timmy/docmill/internal/repository"
)

// QdrantStore persists embedded records to a Qdrant collection. Replace
// deletes the previous point set for the identifier before inserting, which
// gives a re-sync update-in-place semantics.
type QdrantStore struct {
	repo *repository.QdrantRepository
}

// NewQdrantStore creates a QdrantStore.
func NewQdrantStore(repo *repository.QdrantRepository) *QdrantStore {
	return &QdrantStore{repo: repo}
}

func (s *QdrantStore) Replace(ctx context.Context, workDir, indexID string, vectors [][]float32, records []Record) error {
	if err := s.repo.DeleteByIndexID(ctx, indexID); err != nil {
		return err
	}

	payloads := make([]*repository.ChunkPayload, len(records))
	for i, rec := range records {
		payloads[i] = &repository.ChunkPayload{
			IndexID: rec.IndexID,
			Title:   rec.Title,
			Text:    rec.Text,
			User:    rec.User,
		}
	}

	if err := s.repo.UpsertChunks(ctx, vectors, payloads); err != nil {
		return fmt.Errorf("qdrant store failed: %w", err)
	}
	return nil
}
