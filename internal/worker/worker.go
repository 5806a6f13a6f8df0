// Package worker orchestrates the ingestion and synchronization jobs: local
// upload ingestion, remote ingestion, scheduled re-sync, and attachment
// processing. Jobs run synchronously within their caller, report progress
// through a fire-and-forget callback, and always remove their working
// directory on the way out.
package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/timmy/docmill/internal/archive"
	"github.com/timmy/docmill/internal/domain"
	"github.com/timmy/docmill/internal/logger"
	"github.com/timmy/docmill/internal/parser"
	"github.com/timmy/docmill/internal/remote"
)

// Operation modes for remote ingestion.
const (
	ModeUpload = "upload"
	ModeSync   = "sync"
)

// DefaultRetriever is applied when a job does not name a retriever strategy.
const DefaultRetriever = "classic"

// ErrInvalidSyncID is returned when a sync-mode job is missing a parseable
// document-set identifier. Raised before any embedding work begins.
var ErrInvalidSyncID = errors.New("doc id must be a valid identifier for sync operation")

// Progress reports a job's completion percentage. It is a one-way best-effort
// side channel: implementations must not block, and a nil Progress is valid.
type Progress func(percent int)

func (p Progress) report(percent int) {
	if p != nil {
		p(percent)
	}
}

// Upstream is the contract with the API that owns file custody and source
// lifecycle.
type Upstream interface {
	DownloadFile(ctx context.Context, jobName, filename, user, destPath string) error
	UploadIndex(ctx context.Context, workDir string, payload domain.IndexPayload) error
}

// EmbeddingSink embeds documents and persists them under a document-set
// identifier. It may report incremental progress through report.
type EmbeddingSink interface {
	Store(ctx context.Context, docs []domain.Document, workDir, indexID, user string, report func(percent int)) error
}

// LoaderRegistry resolves remote loaders by loader-type tag.
type LoaderRegistry interface {
	Create(tag string) (remote.Loader, error)
}

// SourceStore reads registered source records for the sync scheduler.
type SourceStore interface {
	List(ctx context.Context) ([]domain.Source, error)
}

// AttachmentStore persists processed attachment records.
type AttachmentStore interface {
	Create(ctx context.Context, att *domain.Attachment) error
}

// Worker holds the collaborators shared by every job. Repositories and
// clients are injected once per process; jobs themselves are stateless.
type Worker struct {
	upstream    Upstream
	registry    LoaderRegistry
	sink        EmbeddingSink
	extractor   *archive.Extractor
	sources     SourceStore
	attachments AttachmentStore
	counter     parser.TokenCounter
	log         *logger.Logger
}

// Deps bundles the collaborators for New.
type Deps struct {
	Upstream     Upstream
	Registry     LoaderRegistry
	Sink         EmbeddingSink
	Extractor    *archive.Extractor
	Sources      SourceStore
	Attachments  AttachmentStore
	TokenCounter parser.TokenCounter
	Logger       *logger.Logger
}

// New creates a Worker.
func New(deps Deps) *Worker {
	if deps.Logger == nil {
		deps.Logger = logger.GetDefault()
	}
	if deps.Extractor == nil {
		deps.Extractor = archive.NewExtractor(deps.Logger)
	}
	if deps.TokenCounter == nil {
		deps.TokenCounter = parser.CountTokens
	}
	return &Worker{
		upstream:    deps.Upstream,
		registry:    deps.Registry,
		sink:        deps.Sink,
		extractor:   deps.Extractor,
		sources:     deps.Sources,
		attachments: deps.Attachments,
		counter:     deps.TokenCounter,
		log:         deps.Logger,
	}
}

// workDir derives the job's exclusive scratch directory. Paths are unique per
// (base, user, job name); the caller guarantees no two concurrently live jobs
// share a triple.
func workDir(base, user, jobName string) string {
	return filepath.Join(base, user, jobName)
}

// removeWorkDir deletes the scratch directory, logging rather than failing:
// cleanup runs on error paths where a second error would mask the first.
func (w *Worker) removeWorkDir(path string) {
	if err := os.RemoveAll(path); err != nil {
		w.log.WithField("dir", path).WithError(err).Warn("Failed to remove working directory")
	}
}
