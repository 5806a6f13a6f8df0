package repository

import (
	"context"

	"github.com/timmy/docmill/internal/domain"
	"gorm.io/gorm"
)

// SourceRepository handles registered source records.
type SourceRepository struct {
	db *gorm.DB
}

// NewSourceRepository creates a new SourceRepository.
func NewSourceRepository(db *gorm.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

// List returns all registered sources. The sync scheduler scans the full set
// and selects matches by frequency itself.
func (r *SourceRepository) List(ctx context.Context) ([]domain.Source, error) {
	var sources []domain.Source
	if err := r.db.WithContext(ctx).Find(&sources).Error; err != nil {
		return nil, err
	}
	return sources, nil
}
