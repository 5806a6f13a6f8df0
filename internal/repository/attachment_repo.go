package repository

import (
	"context"

	"github.com/timmy/docmill/internal/domain"
	"gorm.io/gorm"
)

// AttachmentRepository handles stored attachment records.
type AttachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository creates a new AttachmentRepository.
func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Create inserts a new attachment record.
func (r *AttachmentRepository) Create(ctx context.Context, att *domain.Attachment) error {
	return r.db.WithContext(ctx).Create(att).Error
}
