package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/docmill/internal/domain"
	"github.com/timmy/docmill/internal/logger"
	"github.com/timmy/docmill/internal/parser"
)

// AttachmentParams describes one attachment job.
type AttachmentParams struct {
	Directory string // base directory holding the uploaded file
	Folder    string
	Filename  string
	User      string
}

// Attachment processes a single file without chunking or embedding: load it,
// count tokens, and persist an attachment record. Attachments are best-effort
// auxiliary context, so this job never returns an error: failures come back
// as a structured result with the Error field set.
func (w *Worker) Attachment(ctx context.Context, p AttachmentParams, progress Progress) domain.AttachmentResult {
	log := w.log.WithFields(logger.Fields{
		logger.FieldUser: p.User,
		logger.FieldJob:  p.Folder,
	})
	log.WithField("file", p.Filename).Info("Processing attachment")

	progress.report(10)

	filePath := filepath.Join(p.Directory, p.Filename)
	if _, err := os.Stat(filePath); err != nil {
		log.WithField("file", filePath).Warn("File not found")
		return domain.AttachmentResult{Error: "File not found"}
	}

	reader := parser.NewDirectoryReader(parser.ReaderConfig{
		InputFiles: []string{filePath},
	}, w.log)
	docs, err := reader.LoadData(ctx)
	if err != nil {
		log.WithError(err).Error("Error processing attachment file")
		return domain.AttachmentResult{Error: fmt.Sprintf("Error processing file: %v", err)}
	}

	progress.report(50)

	if len(docs) == 0 {
		log.Warn("No content was extracted from the file")
		return domain.AttachmentResult{Error: "No content was extracted from the file"}
	}

	content := docs[0].Text
	tokenCount := w.counter(content)
	relativePath := fmt.Sprintf("%s/attachments/%s/%s", p.User, p.Folder, p.Filename)

	att := &domain.Attachment{
		ID:         uuid.New().String(),
		User:       p.User,
		Path:       relativePath,
		Content:    content,
		TokenCount: tokenCount,
		CreatedAt:  time.Now(),
	}
	if err := w.attachments.Create(ctx, att); err != nil {
		log.WithError(err).Error("Failed to store attachment")
		return domain.AttachmentResult{Error: fmt.Sprintf("Error processing file: %v", err)}
	}

	log.WithField("attachment_id", att.ID).Info("Stored attachment")
	progress.report(100)

	return domain.AttachmentResult{
		AttachmentID: att.ID,
		Filename:     p.Filename,
		Folder:       p.Folder,
		Path:         relativePath,
		TokenCount:   tokenCount,
	}
}
