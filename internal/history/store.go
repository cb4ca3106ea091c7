// Package history persists finished conversions to SQLite so the CLI
// can show recent activity and per-format usage statistics.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one finished (or failed, or cancelled) conversion.
type Record struct {
	ID           int64
	BatchID      string
	InputPath    string
	SourceFormat string
	TargetFormat string
	TargetPath   string
	Category     string
	Success      bool
	Cancelled    bool
	ErrorMessage string
	Duration     time.Duration
	CreatedAt    time.Time
}

// FormatUsage aggregates how often a source→target pair was converted.
type FormatUsage struct {
	SourceFormat string
	TargetFormat string
	Count        int64
	LastUsed     time.Time
}

// Store manages history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path and
// applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Add inserts a record. The CreatedAt field is stamped here.
func (s *Store) Add(ctx context.Context, rec Record) (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions (
            batch_id, input_path, source_format, target_format, target_path,
            category, success, cancelled, error_message, duration_ms, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableString(rec.BatchID),
		rec.InputPath,
		rec.SourceFormat,
		rec.TargetFormat,
		nullableString(rec.TargetPath),
		nullableString(rec.Category),
		boolToInt(rec.Success),
		boolToInt(rec.Cancelled),
		nullableString(rec.ErrorMessage),
		rec.Duration.Milliseconds(),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert conversion: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, batch_id, input_path, source_format, target_format, target_path,
                category, success, cancelled, error_message, duration_ms, created_at
         FROM conversions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent conversions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Usage aggregates conversion counts per source→target pair, most
// used first.
func (s *Store) Usage(ctx context.Context) ([]FormatUsage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_format, target_format, COUNT(1), MAX(created_at)
         FROM conversions WHERE success = 1
         GROUP BY source_format, target_format
         ORDER BY COUNT(1) DESC, source_format`)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	defer rows.Close()

	var out []FormatUsage
	for rows.Next() {
		var u FormatUsage
		var last string
		if err := rows.Scan(&u.SourceFormat, &u.TargetFormat, &u.Count, &last); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		u.LastUsed, _ = time.Parse(time.RFC3339Nano, last)
		out = append(out, u)
	}
	return out, rows.Err()
}

// MostUsedTarget returns the target format most often successfully
// converted to from source, preferring the more recent pair on ties,
// or "" when nothing was recorded.
func (s *Store) MostUsedTarget(ctx context.Context, source string) (string, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT target_format FROM conversions
         WHERE success = 1 AND source_format = ?
         GROUP BY target_format
         ORDER BY COUNT(1) DESC, MAX(created_at) DESC
         LIMIT 1`, source)
	var target string
	if err := row.Scan(&target); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("query most used target: %w", err)
	}
	return target, nil
}

// Prune removes records older than the cutoff and returns the number
// deleted.
func (s *Store) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM conversions WHERE created_at < ?",
		olderThan.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("prune conversions: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec        Record
		batchID    sql.NullString
		targetPath sql.NullString
		category   sql.NullString
		errMsg     sql.NullString
		success    int
		cancelled  int
		durationMS int64
		createdAt  string
	)
	err := row.Scan(&rec.ID, &batchID, &rec.InputPath, &rec.SourceFormat,
		&rec.TargetFormat, &targetPath, &category, &success, &cancelled,
		&errMsg, &durationMS, &createdAt)
	if err != nil {
		return Record{}, fmt.Errorf("scan conversion: %w", err)
	}
	rec.BatchID = batchID.String
	rec.TargetPath = targetPath.String
	rec.Category = category.String
	rec.ErrorMessage = errMsg.String
	rec.Success = success == 1
	rec.Cancelled = cancelled == 1
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return rec, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
