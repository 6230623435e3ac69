package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/danapixels/stampboard/internal/core/domain"
)

func newTestRepo(t *testing.T) *StampRepository {
	t.Helper()
	return NewStampRepository(filepath.Join(t.TempDir(), "stamps.json"), zerolog.Nop())
}

func TestStampRepository_ReadAll_MissingFile(t *testing.T) {
	repo := newTestRepo(t)

	stamps, err := repo.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if len(stamps) != 0 {
		t.Fatalf("expected empty board, got %d stamps", len(stamps))
	}
}

func TestStampRepository_ReadAll_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stamps.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	repo := NewStampRepository(path, zerolog.Nop())

	stamps, err := repo.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if len(stamps) != 0 {
		t.Fatalf("corrupt file should fail open to empty, got %d stamps", len(stamps))
	}
}

func TestStampRepository_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)

	want := []domain.Stamp{
		{ID: "s1", Type: domain.StampGold, X: "50%", Y: "50%", Rotation: 12.25, User: "userA", UserIdentity: domain.IdentityCat, Timestamp: "Aug 28, 2026"},
		{ID: "s2", Type: domain.StampDiamond, X: "3%", Y: "95%", Rotation: -15, User: "userB"},
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

func TestStampRepository_WriteAll_Overwrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.WriteAll(ctx, []domain.Stamp{{ID: "s1", Type: domain.StampGold, X: "10%", Y: "10%", User: "userA"}}); err != nil {
		t.Fatalf("first WriteAll: %v", err)
	}
	if err := repo.WriteAll(ctx, nil); err != nil {
		t.Fatalf("second WriteAll: %v", err)
	}

	stamps, err := repo.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if len(stamps) != 0 {
		t.Fatalf("expected wiped board, got %d stamps", len(stamps))
	}
}

func TestStampRepository_WriteAll_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	repo := NewStampRepository(filepath.Join(dir, "stamps.json"), zerolog.Nop())

	if err := repo.WriteAll(context.Background(), []domain.Stamp{{ID: "s1", Type: domain.StampSilver, X: "40%", Y: "60%", User: "userA"}}); err != nil {
		t.Fatalf("WriteAll returned error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "stamps.json" {
		t.Fatalf("unexpected directory contents: %v", entries)
	}
}
