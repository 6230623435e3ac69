package ports

import (
	"context"

	"github.com/danapixels/stampboard/internal/core/domain"
)

// StampRepository persists the board as one ordered collection.
//
// The storage model is deliberately whole-collection read-modify-write: the
// board is small (bounded by the global ceiling) and every mutation rewrites
// it in full. Implementations must preserve insertion order across a
// ReadAll/WriteAll round trip.
type StampRepository interface {
	// ReadAll returns every persisted stamp in placement order.
	ReadAll(ctx context.Context) ([]domain.Stamp, error)
	// WriteAll replaces the persisted collection with stamps.
	WriteAll(ctx context.Context, stamps []domain.Stamp) error
}
