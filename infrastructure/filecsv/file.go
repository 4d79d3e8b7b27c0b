package filecsv

import (
	"encoding/csv"
	"fmt"
	"path/filepath"

	"solar-pipeline/infrastructure/logger"

	"github.com/spf13/afero"
)

// Writer writes CSV files through an afero filesystem.
type Writer struct {
	fs afero.Fs
}

func NewWriter(fs afero.Fs) *Writer {
	return &Writer{fs: fs}
}

// Write creates or truncates path and writes header followed by rows.
func (w *Writer) Write(path string, header []string, rows [][]string) error {
	if err := w.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create dir for %s: %w", path, err)
	}
	file, err := w.fs.Create(path)
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("path", path).Error("Error while open file")
		return err
	}

	cw := csv.NewWriter(file)
	if err := cw.Write(header); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write header of %s: %w", path, err)
	}
	if err := cw.WriteAll(rows); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write rows of %s: %w", path, err)
	}
	return file.Close()
}
