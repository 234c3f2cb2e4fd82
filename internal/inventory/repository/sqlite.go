package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/shariqkhan335/RFI-PROJ/internal/inventory"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	seq    INTEGER PRIMARY KEY AUTOINCREMENT,
	entity TEXT NOT NULL,
	id     TEXT NOT NULL,
	body   TEXT NOT NULL,
	UNIQUE (entity, id)
);
CREATE INDEX IF NOT EXISTS idx_records_entity ON records(entity, seq);
`

// SQLiteRepo stores records as JSON bodies in a single embedded database table.
type SQLiteRepo struct {
	db *sql.DB
}

// OpenSQLite opens (and creates) the database at path.
func OpenSQLite(path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLiteRepo{db: db}, nil
}

func (s *SQLiteRepo) List(ctx context.Context, entity string) ([]inventory.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM records WHERE entity = ? ORDER BY seq`, entity)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", entity, err)
	}
	defer rows.Close()
	out := []inventory.Record{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		r, err := inventory.ParseRecord([]byte(body))
		if err != nil {
			return nil, fmt.Errorf("decode %s row: %w", entity, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteRepo) Get(ctx context.Context, entity, id string) (inventory.Record, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM records WHERE entity = ? AND id = ?`, entity, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return inventory.ParseRecord([]byte(body))
}

func (s *SQLiteRepo) Insert(ctx context.Context, entity string, rec inventory.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM records WHERE entity = ? AND id = ?`, entity, rec.ID()).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrDuplicateID
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO records (entity, id, body) VALUES (?, ?, ?)`, entity, rec.ID(), string(body)); err != nil {
		return fmt.Errorf("insert %s: %w", entity, err)
	}
	return tx.Commit()
}

func (s *SQLiteRepo) Replace(ctx context.Context, entity, id string, rec inventory.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE records SET body = ? WHERE entity = ? AND id = ?`, string(body), entity, id)
	if err != nil {
		return fmt.Errorf("update %s: %w", entity, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteRepo) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLiteRepo) Close() error { return s.db.Close() }
