package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/timmy/docmill/internal/archive"
	"github.com/timmy/docmill/internal/domain"
	"github.com/timmy/docmill/internal/logger"
	"github.com/timmy/docmill/internal/parser"
)

// IngestParams describes one local upload ingestion job.
type IngestParams struct {
	Directory string   // working-directory root, e.g. "inputs" or "temp"
	Formats   []string // accepted file extensions, e.g. [".rst", ".md"]
	JobName   string
	Filename  string // stored filename to fetch from the upstream API
	User      string
	Retriever string
}

// Ingest runs the local upload flow: fetch the stored file, unpack archives,
// load and chunk documents, embed and persist them under a freshly minted
// document-set identifier, submit the completion payload, and remove the
// working directory on every exit path.
func (w *Worker) Ingest(ctx context.Context, p IngestParams, progress Progress) (result domain.IngestResult, err error) {
	if p.Retriever == "" {
		p.Retriever = DefaultRetriever
	}

	dir := workDir(p.Directory, p.User, p.JobName)
	log := w.log.WithFields(logger.Fields{
		logger.FieldUser: p.User,
		logger.FieldJob:  p.JobName,
	})
	log.WithField("dir", dir).Info("Ingesting file")

	if err = os.MkdirAll(dir, 0755); err != nil {
		return result, fmt.Errorf("failed to create working directory: %w", err)
	}
	defer func() {
		if err != nil {
			log.WithError(err).Error("Ingestion failed")
		}
		w.removeWorkDir(dir)
	}()

	dest := filepath.Join(dir, p.Filename)
	if err = w.upstream.DownloadFile(ctx, p.JobName, p.Filename, p.User, dest); err != nil {
		return result, err
	}

	if strings.HasSuffix(strings.ToLower(p.Filename), ".zip") {
		w.extractor.Extract(ctx, dest, dir, archive.DefaultDepth)
	}

	progress.report(1)

	reader := parser.NewDirectoryReader(parser.ReaderConfig{
		InputDir:      dir,
		RequiredExts:  p.Formats,
		ExcludeHidden: true,
	}, w.log)
	rawDocs, err := reader.LoadData(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to load documents: %w", err)
	}

	chunker := parser.NewChunker(w.chunkConfig())
	chunks := chunker.Chunk(rawDocs)
	docs := domain.ChunksToDocuments(chunks)

	indexID := uuid.New().String()

	if err = w.sink.Store(ctx, docs, dir, indexID, p.User, progress); err != nil {
		return result, err
	}

	tokens := parser.CountTokensDocs(docs, w.counter)
	progress.report(100)

	payload := domain.IndexPayload{
		Name:      p.JobName,
		File:      p.Filename,
		User:      p.User,
		Tokens:    tokens,
		Retriever: p.Retriever,
		ID:        indexID,
		Kind:      domain.SourceKindLocal,
	}
	if err = w.upstream.UploadIndex(ctx, dir, payload); err != nil {
		return result, err
	}

	log.WithFields(logger.Fields{
		"index_id":         indexID,
		logger.FieldTokens: tokens,
		logger.FieldDocs:   len(docs),
	}).Info("Ingestion completed")

	return domain.IngestResult{
		Directory: p.Directory,
		Formats:   p.Formats,
		JobName:   p.JobName,
		Filename:  p.Filename,
		User:      p.User,
		Limited:   false,
	}, nil
}

// chunkConfig returns the fixed token policy shared by both ingestion flows.
func (w *Worker) chunkConfig() parser.ChunkConfig {
	cfg := parser.DefaultChunkConfig()
	cfg.Counter = w.counter
	return cfg
}
