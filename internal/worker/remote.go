package worker

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/timmy/docmill/internal/domain"
	"github.com/timmy/docmill/internal/logger"
	"github.com/timmy/docmill/internal/parser"
)

// RemoteParams describes one remote ingestion job.
type RemoteParams struct {
	Config        domain.RemoteConfig
	JobName       string
	User          string
	Loader        string // loader-type tag resolved through the registry
	Directory     string // working-directory root; defaults to "temp"
	Retriever     string
	SyncFrequency string
	Mode          string // ModeUpload or ModeSync
	DocID         string // required document-set id when Mode is ModeSync
}

// RemoteIngest runs the remote flow: resolve the loader by tag, fetch, chunk,
// embed and persist, then submit the completion payload carrying the remote
// configuration and sync frequency. Upload mode mints a new identifier; sync
// mode validates the supplied one before any embedding work. Errors are
// logged with full context and returned; isolation from sibling jobs belongs
// to the sync scheduler, not to this job. The working directory is removed
// regardless of outcome.
func (w *Worker) RemoteIngest(ctx context.Context, p RemoteParams, progress Progress) (result domain.RemoteResult, err error) {
	if p.Directory == "" {
		p.Directory = "temp"
	}
	if p.Retriever == "" {
		p.Retriever = DefaultRetriever
	}
	if p.SyncFrequency == "" {
		p.SyncFrequency = domain.SyncNever
	}
	if p.Mode == "" {
		p.Mode = ModeUpload
	}

	dir := workDir(p.Directory, p.User, p.JobName)
	log := w.log.WithFields(logger.Fields{
		logger.FieldUser:   p.User,
		logger.FieldJob:    p.JobName,
		logger.FieldLoader: p.Loader,
	})

	if err = os.MkdirAll(dir, 0755); err != nil {
		return result, fmt.Errorf("failed to create working directory: %w", err)
	}
	defer func() {
		if err != nil {
			log.WithError(err).Error("Error in remote ingestion")
		}
		w.removeWorkDir(dir)
	}()

	progress.report(1)

	log.Info("Initializing remote loader")
	loader, err := w.registry.Create(p.Loader)
	if err != nil {
		return result, err
	}

	rawDocs, err := loader.Load(ctx, p.Config)
	if err != nil {
		return result, fmt.Errorf("remote loader failed: %w", err)
	}

	// The chunk pass applies the fixed token policy; the embedded set is
	// derived from the original unchunked documents, matching the upstream
	// pipeline's document conversion.
	chunker := parser.NewChunker(w.chunkConfig())
	chunks := chunker.Chunk(rawDocs)
	docs := rawDocs

	tokens := parser.CountTokensDocs(docs, w.counter)
	log.WithFields(logger.Fields{
		logger.FieldDocs:   len(docs),
		"chunks":           len(chunks),
		logger.FieldTokens: tokens,
	}).Info("Remote documents loaded")

	var indexID string
	switch p.Mode {
	case ModeSync:
		parsed, parseErr := uuid.Parse(p.DocID)
		if p.DocID == "" || parseErr != nil {
			err = fmt.Errorf("%w: %q", ErrInvalidSyncID, p.DocID)
			return result, err
		}
		indexID = parsed.String()
	default:
		indexID = uuid.New().String()
	}

	if err = w.sink.Store(ctx, docs, dir, indexID, p.User, progress); err != nil {
		return result, err
	}

	progress.report(100)

	payload := domain.IndexPayload{
		Name:          p.JobName,
		User:          p.User,
		Tokens:        tokens,
		Retriever:     p.Retriever,
		ID:            indexID,
		Kind:          p.Loader,
		RemoteConfig:  p.Config,
		SyncFrequency: p.SyncFrequency,
	}
	if err = w.upstream.UploadIndex(ctx, dir, payload); err != nil {
		return result, err
	}

	log.WithField("index_id", indexID).Info("Remote ingestion completed")

	return domain.RemoteResult{
		Config:  p.Config,
		JobName: p.JobName,
		User:    p.User,
		Limited: false,
	}, nil
}
