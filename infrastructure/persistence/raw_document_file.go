package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"solar-pipeline/domain/model"
	"solar-pipeline/domain/repository"
	"solar-pipeline/infrastructure/logger"

	"github.com/spf13/afero"
)

// RawDocumentFileStore writes each document as indented JSON to <dir>/<name>.
type RawDocumentFileStore struct {
	fs  afero.Fs
	dir string
}

func NewRawDocumentFileStore(fs afero.Fs, dir string) repository.IRawDocumentStore {
	return &RawDocumentFileStore{fs: fs, dir: dir}
}

// Save replaces the file atomically: the document goes to a temp file in
// the same directory first and is then renamed over the target.
func (s *RawDocumentFileStore) Save(ctx context.Context, name string, doc *model.RawDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir %s: %w", s.dir, err)
	}

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode raw document: %w", err)
	}

	target := filepath.Join(s.dir, name)
	tmp, err := afero.TempFile(s.fs, s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", target, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := s.fs.Rename(tmpName, target); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to move %s into place: %w", target, err)
	}

	logger.GetLogger().WithField("path", target).WithField("videos", doc.Len()).Info("JSON saved")
	return nil
}
