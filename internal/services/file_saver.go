package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Belphemur/CaptionExport/internal/apperrors"
	"github.com/Belphemur/CaptionExport/internal/config"
)

// FileSaver hands a rendered file to its destination and returns where it went.
type FileSaver interface {
	SaveRenderedFile(ctx context.Context, content, fileName, mimeType string) (string, error)
}

// DiskSaver writes rendered files into a directory.
type DiskSaver struct {
	dir string
}

// NewDiskSaver creates a saver writing into dir ("" means the working directory).
func NewDiskSaver(dir string) *DiskSaver {
	if dir == "" {
		dir = "."
	}
	return &DiskSaver{dir: dir}
}

// Dir returns the output directory.
func (s *DiskSaver) Dir() string {
	return s.dir
}

// SaveRenderedFile writes content to a temporary file next to its destination and
// renames it into place, so a reader never sees a partial file. The temporary
// file is closed, and removed unless renamed, on every return path.
func (s *DiskSaver) SaveRenderedFile(ctx context.Context, content, fileName, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := filepath.Base(fileName)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "", apperrors.NewValidationError("file name", fmt.Sprintf("%q is not a file name", fileName))
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	renamed := false
	defer func() {
		_ = tmp.Close()
		if !renamed {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.WriteString(content); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("failed to set permissions on %s: %w", name, err)
	}

	dest := filepath.Join(s.dir, name)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("failed to move %s into place: %w", name, err)
	}
	renamed = true

	logger := config.GetLogger()
	logger.Info().
		Str("path", dest).
		Str("mimeType", mimeType).
		Int("size", len(content)).
		Msg("Saved caption file")

	return dest, nil
}
