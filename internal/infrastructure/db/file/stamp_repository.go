// Package file persists the stamp board as a single JSON file: an array of
// stamp objects, rewritten in full on every mutation.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/danapixels/stampboard/internal/core/domain"
)

// StampRepository implements ports.StampRepository on a flat JSON file.
//
// Reads fail open: a missing, unreadable, or corrupt file yields an empty
// board rather than an error, so the site keeps working at the cost of
// silently dropping visible history. The failure is logged.
type StampRepository struct {
	path   string
	logger zerolog.Logger
}

func NewStampRepository(path string, logger zerolog.Logger) *StampRepository {
	return &StampRepository{path: path, logger: logger}
}

// ReadAll returns every persisted stamp in placement order.
func (r *StampRepository) ReadAll(_ context.Context) ([]domain.Stamp, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.logger.Error().Err(err).Str("path", r.path).Msg("failed to read stamp file")
		}
		return []domain.Stamp{}, nil
	}

	var stamps []domain.Stamp
	if err := json.Unmarshal(data, &stamps); err != nil {
		r.logger.Error().Err(err).Str("path", r.path).Msg("stamp file is corrupt, treating board as empty")
		return []domain.Stamp{}, nil
	}
	return stamps, nil
}

// WriteAll replaces the persisted collection. The file is written to a
// temporary sibling and renamed into place so readers never observe a
// partially written board.
func (r *StampRepository) WriteAll(_ context.Context, stamps []domain.Stamp) error {
	if stamps == nil {
		stamps = []domain.Stamp{}
	}

	data, err := json.MarshalIndent(stamps, "", "  ")
	if err != nil {
		return fmt.Errorf("file store: marshal: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("file store: create temp: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("file store: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("file store: close temp: %w", err)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("file store: rename: %w", err)
	}
	return nil
}
