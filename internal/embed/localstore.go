package embed

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/timmy/docmill/internal/domain"
)

// localIndexMagic identifies the vector artifact format.
var localIndexMagic = [4]byte{'D', 'M', 'V', '1'}

// LocalStore is the file-backed vector store. It writes two artifacts into
// the job working directory: a packed float32 vector file and a JSON metadata
// file. Both are streamed to the upstream upload-index endpoint afterwards.
type LocalStore struct{}

// NewLocalStore creates a LocalStore.
func NewLocalStore() *LocalStore {
	return &LocalStore{}
}

type localMeta struct {
	IndexID   string   `json:"index_id"`
	Dimension int      `json:"dimension"`
	Count     int      `json:"count"`
	Records   []Record `json:"records"`
}

// Replace writes the index artifacts, overwriting any previous pair in the
// working directory.
func (s *LocalStore) Replace(ctx context.Context, workDir, indexID string, vectors [][]float32, records []Record) error {
	if len(vectors) != len(records) {
		return fmt.Errorf("vector/record count mismatch: %d != %d", len(vectors), len(records))
	}

	dimension := 0
	if len(vectors) > 0 {
		dimension = len(vectors[0])
	}

	if err := writeVectors(filepath.Join(workDir, domain.IndexVectorsFile), vectors, dimension); err != nil {
		return err
	}

	meta := localMeta{
		IndexID:   indexID,
		Dimension: dimension,
		Count:     len(records),
		Records:   records,
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode index metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(workDir, domain.IndexMetaFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write index metadata: %w", err)
	}

	return nil
}

// writeVectors packs vectors as little-endian float32 rows behind a small
// header (magic, dimension, count).
func writeVectors(path string, vectors [][]float32, dimension int) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create vector file: %w", err)
	}
	defer f.Close()

	header := make([]byte, 12)
	copy(header[:4], localIndexMagic[:])
	binary.LittleEndian.PutUint32(header[4:8], uint32(dimension))
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(vectors)))
	if _, err := f.Write(header); err != nil {
		return fmt.Errorf("failed to write vector header: %w", err)
	}

	row := make([]byte, 4*dimension)
	for i, vec := range vectors {
		if len(vec) != dimension {
			return fmt.Errorf("vector %d has dimension %d, expected %d", i, len(vec), dimension)
		}
		for j, v := range vec {
			binary.LittleEndian.PutUint32(row[4*j:], math.Float32bits(v))
		}
		if _, err := f.Write(row); err != nil {
			return fmt.Errorf("failed to write vector row: %w", err)
		}
	}

	return nil
}
