package domain

import "time"

// Attachment represents a single processed attachment file. Attachments are
// best-effort auxiliary context: they are stored as extracted text with a
// token count and are never chunked or embedded. Records are insert-once and
// immutable thereafter.
type Attachment struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	User       string    `gorm:"type:text;not null;index" json:"user"`
	Path       string    `gorm:"type:text;not null" json:"path"`
	Content    string    `gorm:"type:text" json:"content"`
	TokenCount int       `gorm:"default:0" json:"token_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the database table name for Attachment.
func (Attachment) TableName() string {
	return "attachments"
}
