// Package archive implements recursive zip extraction with a bounded depth.
// Nested archives are common in bulk uploads; an unbounded recursive unpack is
// a zip-bomb risk, so the recursion ceiling is mandatory.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/timmy/docmill/internal/logger"
)

const (
	// DefaultDepth is the recursion ceiling applied by the ingestion flows.
	DefaultDepth = 2

	// hardMaxDepth is an internal safety stop regardless of the
	// caller-supplied ceiling.
	hardMaxDepth = 5
)

// Extractor recursively unpacks nested archives into a working directory.
type Extractor struct {
	log *logger.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(log *logger.Logger) *Extractor {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Extractor{log: log}
}

// Extract unpacks the archive at zipPath into destDir, then recursively
// detects and unpacks any archives revealed inside destDir up to maxDepth
// levels of nesting. Each successfully unpacked archive file is deleted after
// extraction. Extraction failures are logged and that branch is abandoned;
// they never abort extraction of sibling content. Exceeding the depth ceiling
// stops recursing with a warning but does not unwind already-extracted files.
func (e *Extractor) Extract(ctx context.Context, zipPath, destDir string, maxDepth int) {
	if maxDepth > hardMaxDepth {
		maxDepth = hardMaxDepth
	}
	e.extract(ctx, zipPath, destDir, 0, maxDepth)
}

func (e *Extractor) extract(ctx context.Context, zipPath, destDir string, depth, maxDepth int) {
	if depth > maxDepth {
		e.log.WithFields(logger.Fields{
			"archive": zipPath,
			"depth":   depth,
		}).Warnf("Reached maximum recursion depth of %d", maxDepth)
		return
	}

	if err := unpack(zipPath, destDir); err != nil {
		e.log.WithField("archive", zipPath).WithError(err).Error("Error extracting zip file")
		return
	}
	// Remove the archive after extracting to avoid double-processing
	if err := os.Remove(zipPath); err != nil {
		e.log.WithField("archive", zipPath).WithError(err).Warn("Failed to remove extracted archive")
	}

	// Check for nested archives revealed by this extraction
	var nested []string
	filepath.Walk(destDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() && strings.HasSuffix(strings.ToLower(info.Name()), ".zip") {
			nested = append(nested, path)
		}
		return nil
	})

	for _, path := range nested {
		if ctx.Err() != nil {
			return
		}
		e.extract(ctx, path, filepath.Dir(path), depth+1, maxDepth)
	}
}

// unpack extracts a single zip archive into destDir, refusing entries that
// would escape the destination.
func unpack(zipPath, destDir string) error {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	for _, file := range reader.File {
		target, err := safeJoin(destDir, file.Name)
		if err != nil {
			return err
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		if err := writeEntry(file, target); err != nil {
			return err
		}
	}

	return nil
}

func writeEntry(file *zip.File, target string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.Mode())
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

// safeJoin joins an entry name to the destination, rejecting path traversal.
func safeJoin(destDir, name string) (string, error) {
	target := filepath.Join(destDir, name)
	cleanDest := filepath.Clean(destDir) + string(os.PathSeparator)
	if !strings.HasPrefix(target, cleanDest) && target != filepath.Clean(destDir) {
		return "", fmt.Errorf("illegal entry path %q", name)
	}
	return target, nil
}
