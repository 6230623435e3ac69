package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/danapixels/stampboard/internal/core/domain"
)

func newTestRepo(t *testing.T) *StampRepository {
	t.Helper()
	repo, err := NewStampRepository(filepath.Join(t.TempDir(), "stamps.db"))
	if err != nil {
		t.Fatalf("NewStampRepository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestStampRepository_EmptyBoard(t *testing.T) {
	repo := newTestRepo(t)

	stamps, err := repo.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if len(stamps) != 0 {
		t.Fatalf("expected empty board, got %d stamps", len(stamps))
	}
}

func TestStampRepository_RoundTripPreservesOrder(t *testing.T) {
	repo := newTestRepo(t)

	want := []domain.Stamp{
		{ID: "s1", Type: domain.StampGold, X: "50%", Y: "50%", Rotation: 3.5, User: "userA", UserIdentity: domain.IdentityPM, Timestamp: "Aug 28, 2026"},
		{ID: "s2", Type: domain.StampBronze, X: "12%", Y: "88%", Rotation: -9, User: "userB"},
		{ID: "s3", Type: domain.StampSilver, X: "95%", Y: "3%", Rotation: 0, User: "userA"},
	}
	if err := repo.WriteAll(context.Background(), want); err != nil {
		t.Fatalf("WriteAll returned error: %v", err)
	}

	got, err := repo.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d stamps, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stamp %d mismatch: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestStampRepository_WriteAll_Replaces(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := []domain.Stamp{
		{ID: "s1", Type: domain.StampGold, X: "10%", Y: "10%", User: "userA"},
		{ID: "s2", Type: domain.StampGold, X: "20%", Y: "20%", User: "userB"},
	}
	if err := repo.WriteAll(ctx, first); err != nil {
		t.Fatalf("first WriteAll: %v", err)
	}

	// Simulate a user-scoped clear: rewrite with one stamp filtered out.
	if err := repo.WriteAll(ctx, first[1:]); err != nil {
		t.Fatalf("second WriteAll: %v", err)
	}

	got, err := repo.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "s2" {
		t.Fatalf("unexpected board after replace: %+v", got)
	}
}
