// Package sqlite stores rainfall measurements in a SQLite database and serves
// them back as an analysis data source.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"

	"github.com/couchcryptid/rainfall-dry-periods/internal/domain"
)

// ErrInvalidRow reports a stored measurement whose date cannot be parsed.
var ErrInvalidRow = errors.New("invalid measurement row")

// Store wraps the SQL connection with measurement queries.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to the database at path, creating the file and schema if needed.
// Use ":memory:" for a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// Each connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.configure(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.createSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return s, nil
}

func (s *Store) configure(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS record_groups (
		group_key TEXT PRIMARY KEY
	);
	CREATE TABLE IF NOT EXISTS measurements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		group_key TEXT NOT NULL REFERENCES record_groups(group_key),
		date TEXT NOT NULL,
		rainfall_mm REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_measurements_date ON measurements(date);
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// Path returns the database path.
func (s *Store) Path() string { return s.path }

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// Name identifies the source in logs and metrics.
func (s *Store) Name() string { return "sqlite" }

// Import appends every group and measurement in one transaction. Groups with
// no measurements are recorded so they survive a round trip.
func (s *Store) Import(ctx context.Context, records domain.RecordSet) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	groupStmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO record_groups (group_key) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("prepare group insert: %w", err)
	}
	defer groupStmt.Close()

	rowStmt, err := tx.PrepareContext(ctx, `INSERT INTO measurements (group_key, date, rainfall_mm) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare measurement insert: %w", err)
	}
	defer rowStmt.Close()

	for _, key := range records.Keys() {
		if _, err = groupStmt.ExecContext(ctx, key); err != nil {
			return fmt.Errorf("insert group %q: %w", key, err)
		}
		for _, m := range records[key] {
			if _, err = rowStmt.ExecContext(ctx, key, domain.FormatDate(m.Date), m.RainfallMM); err != nil {
				return fmt.Errorf("insert measurement %s: %w", domain.FormatDate(m.Date), err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// Load reads every group and measurement into a RecordSet.
func (s *Store) Load(ctx context.Context) (domain.RecordSet, error) {
	records := make(domain.RecordSet)

	groups, err := s.db.QueryContext(ctx, `SELECT group_key FROM record_groups`)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer groups.Close()
	for groups.Next() {
		var key string
		if err := groups.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		records[key] = []domain.Measurement{}
	}
	if err := groups.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT group_key, date, rainfall_mm FROM measurements ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("query measurements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key, dateStr string
			mm           float64
		)
		if err := rows.Scan(&key, &dateStr, &mm); err != nil {
			return nil, fmt.Errorf("scan measurement: %w", err)
		}
		d, err := domain.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("%w: date %q in group %q", ErrInvalidRow, dateStr, key)
		}
		records[key] = append(records[key], domain.Measurement{Date: d, RainfallMM: mm})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate measurements: %w", err)
	}
	return records, nil
}

// Count returns the number of stored measurements.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM measurements`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count measurements: %w", err)
	}
	return n, nil
}
