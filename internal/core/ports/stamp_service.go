package ports

import (
	"context"

	"github.com/danapixels/stampboard/internal/core/domain"
)

// FullBoardPolicy decides what happens when a placement arrives while the
// board already holds the global ceiling of stamps.
type FullBoardPolicy string

const (
	// PolicyWipe clears the whole board and accepts nothing; the caller is
	// told the wipe happened. This matches the original deployment.
	PolicyWipe FullBoardPolicy = "wipe"
	// PolicyReject refuses the placement and preserves the board.
	PolicyReject FullBoardPolicy = "reject"
)

// CreateStampResult reports the outcome of a placement beyond plain success.
type CreateStampResult struct {
	// Wiped is true when the placement hit the global ceiling and the board
	// was cleared instead of appended to.
	Wiped bool
	// Duplicate is true when the stamp ID was already seen and the placement
	// was acknowledged without persisting anything.
	Duplicate bool
}

// StampService mediates access to the board: quota enforcement, the
// full-board policy, and bulk removal.
type StampService interface {
	// List returns the full board in placement order.
	List(ctx context.Context) ([]domain.Stamp, error)
	// Create appends a stamp, enforcing the per-user and global ceilings.
	// Returns domain.ErrStampQuotaExceeded when the user is at their ceiling,
	// domain.ErrBoardFull when the board is full and the policy is reject.
	Create(ctx context.Context, stamp domain.Stamp) (*CreateStampResult, error)
	// ClearUser removes every stamp owned by userID and returns how many were
	// removed. Idempotent.
	ClearUser(ctx context.Context, userID string) (int, error)
	// WipeBoard removes every stamp. Caller is responsible for authorization.
	WipeBoard(ctx context.Context) error
}
