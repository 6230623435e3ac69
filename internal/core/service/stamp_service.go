package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/danapixels/stampboard/internal/core/domain"
	"github.com/danapixels/stampboard/internal/core/ports"
)

// DedupChecker abstracts the duplicate-suppression store (Redis). A replayed
// stamp ID — typically a client retrying after a network failure — is
// acknowledged without being appended a second time.
type DedupChecker interface {
	IsDuplicate(ctx context.Context, stampID string) (bool, error)
	Mark(ctx context.Context, stampID string) error
}

// BoardQuotas holds the two ceilings and the full-board policy.
type BoardQuotas struct {
	// GlobalCeiling is the maximum number of stamps on the whole board.
	GlobalCeiling int
	// PerUserCeiling is the maximum number of stamps a single user may hold.
	PerUserCeiling int
	// FullBoardPolicy decides between wiping and rejecting at the global ceiling.
	FullBoardPolicy ports.FullBoardPolicy
}

// StampService implements ports.StampService on top of a StampRepository.
//
// Every mutation is a read-modify-write of the whole collection, serialized
// through a single mutex so concurrent placements cannot lose writes. The
// repository itself carries no concurrency control.
type StampService struct {
	repo   ports.StampRepository
	dedup  DedupChecker // nil disables duplicate suppression
	quotas BoardQuotas
	logger zerolog.Logger

	mu sync.Mutex
}

func NewStampService(repo ports.StampRepository, dedup DedupChecker, quotas BoardQuotas, logger zerolog.Logger) *StampService {
	if quotas.GlobalCeiling <= 0 {
		quotas.GlobalCeiling = 300
	}
	if quotas.PerUserCeiling <= 0 {
		quotas.PerUserCeiling = 10
	}
	if quotas.FullBoardPolicy == "" {
		quotas.FullBoardPolicy = ports.PolicyWipe
	}
	return &StampService{repo: repo, dedup: dedup, quotas: quotas, logger: logger}
}

// List returns the full board.
func (s *StampService) List(ctx context.Context) ([]domain.Stamp, error) {
	stamps, err := s.repo.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stamps: %w", err)
	}
	if stamps == nil {
		stamps = []domain.Stamp{}
	}
	return stamps, nil
}

// Create appends a stamp after enforcing both ceilings.
func (s *StampService) Create(ctx context.Context, stamp domain.Stamp) (*ports.CreateStampResult, error) {
	if stamp.User == "" {
		return nil, domain.ErrUserRequired
	}

	// Replayed ID — acknowledge without touching the board.
	if s.dedup != nil && stamp.ID != "" {
		isDup, err := s.dedup.IsDuplicate(ctx, stamp.ID)
		if err != nil {
			s.logger.Warn().Err(err).Str("stamp_id", stamp.ID).Msg("dedup check failed, processing anyway")
		} else if isDup {
			s.logger.Debug().Str("stamp_id", stamp.ID).Str("user", stamp.User).Msg("duplicate placement skipped")
			return &ports.CreateStampResult{Duplicate: true}, nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stamps, err := s.repo.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("create stamp: %w", err)
	}

	if len(stamps) >= s.quotas.GlobalCeiling {
		if s.quotas.FullBoardPolicy == ports.PolicyReject {
			return nil, domain.ErrBoardFull
		}
		if err := s.repo.WriteAll(ctx, []domain.Stamp{}); err != nil {
			return nil, fmt.Errorf("create stamp: wipe full board: %w", err)
		}
		s.logger.Warn().Int("stamps", len(stamps)).Msg("global ceiling reached, board wiped")
		return &ports.CreateStampResult{Wiped: true}, nil
	}

	if domain.CountForUser(stamps, stamp.User) >= s.quotas.PerUserCeiling {
		return nil, domain.ErrStampQuotaExceeded
	}

	stamps = append(stamps, stamp)
	if err := s.repo.WriteAll(ctx, stamps); err != nil {
		return nil, fmt.Errorf("create stamp: %w", err)
	}

	if s.dedup != nil && stamp.ID != "" {
		if err := s.dedup.Mark(ctx, stamp.ID); err != nil {
			s.logger.Warn().Err(err).Str("stamp_id", stamp.ID).Msg("failed to set dedup key")
		}
	}

	s.logger.Info().
		Str("stamp_id", stamp.ID).
		Str("type", string(stamp.Type)).
		Str("user", stamp.User).
		Msg("stamp placed")

	return &ports.CreateStampResult{}, nil
}

// ClearUser removes every stamp owned by userID.
func (s *StampService) ClearUser(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, domain.ErrUserRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stamps, err := s.repo.ReadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear stamps: %w", err)
	}

	remaining := make([]domain.Stamp, 0, len(stamps))
	for _, st := range stamps {
		if st.User != userID {
			remaining = append(remaining, st)
		}
	}

	removed := len(stamps) - len(remaining)
	if removed == 0 {
		return 0, nil
	}

	if err := s.repo.WriteAll(ctx, remaining); err != nil {
		return 0, fmt.Errorf("clear stamps: %w", err)
	}

	s.logger.Info().Str("user", userID).Int("removed", removed).Msg("user stamps cleared")
	return removed, nil
}

// WipeBoard removes every stamp. Authorization happens at the API layer.
func (s *StampService) WipeBoard(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.WriteAll(ctx, []domain.Stamp{}); err != nil {
		return fmt.Errorf("wipe board: %w", err)
	}
	s.logger.Info().Msg("board wiped")
	return nil
}
