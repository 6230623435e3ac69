// Package sqlite persists the stamp board in an embedded SQLite database.
// The write model mirrors the flat-file store: every mutation replaces the
// whole board inside one transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/danapixels/stampboard/internal/core/domain"
	_ "modernc.org/sqlite" // CGO-free SQLite
)

type StampRepository struct {
	db *sql.DB
}

func NewStampRepository(databasePath string) (*StampRepository, error) {
	// WAL + busy timeout to avoid "database is locked"
	db, err := sql.Open("sqlite", databasePath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open: %w", err)
	}

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &StampRepository{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS stamps(
	  ord           INTEGER PRIMARY KEY,
	  id            TEXT    NOT NULL,
	  type          TEXT    NOT NULL,
	  x             TEXT    NOT NULL,
	  y             TEXT    NOT NULL,
	  rotation      REAL    NOT NULL,
	  user          TEXT    NOT NULL,
	  user_identity TEXT,
	  placed_at     TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_stamps_user ON stamps(user);
	`)
	if err != nil {
		return fmt.Errorf("sqlite store: create tables: %w", err)
	}
	return nil
}

func (r *StampRepository) Close() error {
	return r.db.Close()
}

// ReadAll returns every persisted stamp in placement order.
func (r *StampRepository) ReadAll(ctx context.Context) ([]domain.Stamp, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, type, x, y, rotation, user, COALESCE(user_identity,''), COALESCE(placed_at,'') FROM stamps ORDER BY ord`)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: query: %w", err)
	}
	defer rows.Close()

	stamps := []domain.Stamp{}
	for rows.Next() {
		var s domain.Stamp
		var typ, identity string
		if err := rows.Scan(&s.ID, &typ, &s.X, &s.Y, &s.Rotation, &s.User, &identity, &s.Timestamp); err != nil {
			return nil, fmt.Errorf("sqlite store: scan: %w", err)
		}
		s.Type = domain.StampType(typ)
		s.UserIdentity = domain.Identity(identity)
		stamps = append(stamps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite store: rows: %w", err)
	}
	return stamps, nil
}

// WriteAll replaces the whole board in one transaction.
func (r *StampRepository) WriteAll(ctx context.Context, stamps []domain.Stamp) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite store: begin: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM stamps`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite store: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO stamps(ord, id, type, x, y, rotation, user, user_identity, placed_at) VALUES(?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite store: prepare: %w", err)
	}
	defer stmt.Close()

	for i, s := range stamps {
		if _, err := stmt.ExecContext(ctx, i, s.ID, string(s.Type), s.X, s.Y, s.Rotation, s.User, string(s.UserIdentity), s.Timestamp); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite store: insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite store: commit: %w", err)
	}
	return nil
}
