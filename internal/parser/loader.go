// Package parser turns files on disk into documents and documents into
// token-bounded chunks ready for embedding.
package parser

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/timmy/docmill/internal/domain"
	"github.com/timmy/docmill/internal/logger"
)

// MetadataFromFilename derives per-document metadata from the originating
// filename. The default implementation records the filename as title.
func MetadataFromFilename(filename string) domain.Metadata {
	return domain.Metadata{"title": filename}
}

// ReaderConfig configures a DirectoryReader.
type ReaderConfig struct {
	// InputDir is walked recursively when InputFiles is empty.
	InputDir string

	// InputFiles restricts loading to an explicit file list.
	InputFiles []string

	// RequiredExts filters by file extension (e.g. ".md"); empty accepts all.
	RequiredExts []string

	// ExcludeHidden skips dot-files and dot-directories.
	ExcludeHidden bool

	// FileMetadata derives metadata from a filename; nil uses
	// MetadataFromFilename.
	FileMetadata func(filename string) domain.Metadata
}

// DirectoryReader walks a directory or file list and yields raw documents
// with metadata.
type DirectoryReader struct {
	cfg ReaderConfig
	log *logger.Logger
}

// NewDirectoryReader creates a DirectoryReader.
func NewDirectoryReader(cfg ReaderConfig, log *logger.Logger) *DirectoryReader {
	if cfg.FileMetadata == nil {
		cfg.FileMetadata = MetadataFromFilename
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &DirectoryReader{cfg: cfg, log: log}
}

// LoadData loads all accepted files as documents. Unreadable files are logged
// and skipped; only a failed directory walk is an error.
func (r *DirectoryReader) LoadData(ctx context.Context) ([]domain.Document, error) {
	paths, err := r.collect()
	if err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(paths))
	for _, path := range paths {
		if ctx.Err() != nil {
			return docs, ctx.Err()
		}
		data, err := os.ReadFile(path)
		if err != nil {
			r.log.WithField("file", path).WithError(err).Warn("Skipping unreadable file")
			continue
		}
		docs = append(docs, domain.Document{
			Text:     string(data),
			Metadata: r.cfg.FileMetadata(filepath.Base(path)),
		})
	}

	return docs, nil
}

func (r *DirectoryReader) collect() ([]string, error) {
	if len(r.cfg.InputFiles) > 0 {
		var paths []string
		for _, path := range r.cfg.InputFiles {
			if r.accepted(filepath.Base(path)) {
				paths = append(paths, path)
			}
		}
		return paths, nil
	}

	var paths []string
	err := filepath.Walk(r.cfg.InputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		name := info.Name()
		if r.cfg.ExcludeHidden && strings.HasPrefix(name, ".") && path != r.cfg.InputDir {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if r.accepted(name) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func (r *DirectoryReader) accepted(name string) bool {
	if len(r.cfg.RequiredExts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, required := range r.cfg.RequiredExts {
		if ext == strings.ToLower(required) {
			return true
		}
	}
	return false
}
