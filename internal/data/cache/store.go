// Package cache persists parsed source files in SQLite so unchanged files
// are not parsed again on the next index build.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"propinfo/internal/core/errors"
	"propinfo/internal/engine/source"
	"propinfo/internal/shared/util"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Store implements source.SnapshotStore.
type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

var (
	_ source.SnapshotStore  = (*Store)(nil)
	_ source.SnapshotPruner = (*Store)(nil)
)

// Scan summarises one index build.
type Scan struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Files      int
	Classes    int
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, errors.New(errors.CodeValidationError, "cache path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, errors.AddContext(errors.New(errors.CodeValidationError, "cache path is a directory, expected file"), errors.CtxPath, cleanPath)
	}

	if err := util.EnsureParentDir(cleanPath); err != nil {
		return nil, fmt.Errorf("create cache directory for %q: %w", cleanPath, err)
	}

	// busy_timeout + WAL reduce lock conflicts when the watcher reloads.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite cache %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}
	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginScan records the start of an index build and returns its id.
func (s *Store) BeginScan(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	err := s.withRetry("begin scan", func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO scans (scan_id, started_at_utc) VALUES (?, ?)`,
			id, time.Now().UTC().Format(time.RFC3339Nano),
		)
		return err
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Lookup returns the payload stored for path when its content hash still
// matches.
func (s *Store) Lookup(ctx context.Context, path, hash string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload []byte
	err := s.withRetry("lookup snapshot", func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT payload FROM snapshots WHERE path = ? AND content_hash = ?`,
			path, hash,
		).Scan(&payload)
	})
	if err != nil {
		if isNoRows(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

func (s *Store) Save(ctx context.Context, scanID, path, hash, language string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
INSERT INTO snapshots (path, content_hash, language, payload, scan_id, updated_at_utc)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
  content_hash=excluded.content_hash,
  language=excluded.language,
  payload=excluded.payload,
  scan_id=excluded.scan_id,
  updated_at_utc=excluded.updated_at_utc
`
	return s.withRetry("save snapshot", func() error {
		_, err := s.db.ExecContext(ctx, query,
			path, hash, language, payload, scanID,
			time.Now().UTC().Format(time.RFC3339Nano),
		)
		return err
	})
}

// FinishScan records the totals of a completed build.
func (s *Store) FinishScan(ctx context.Context, scanID string, files, classes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res sql.Result
	err := s.withRetry("finish scan", func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx,
			`UPDATE scans SET finished_at_utc = ?, file_count = ?, class_count = ? WHERE scan_id = ?`,
			time.Now().UTC().Format(time.RFC3339Nano), files, classes, scanID,
		)
		return execErr
	})
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.AddContext(errors.New(errors.CodeNotFound, "unknown scan"), errors.CtxOperation, scanID)
	}
	return nil
}

// Scans lists recorded builds, newest first. limit <= 0 returns all of them.
func (s *Store) Scans(ctx context.Context, limit int) ([]Scan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT scan_id, started_at_utc, finished_at_utc, file_count, class_count FROM scans ORDER BY started_at_utc DESC, scan_id ASC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows *sql.Rows
	err := s.withRetry("load scans", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scans := make([]Scan, 0)
	for rows.Next() {
		var (
			scan                 Scan
			startedRaw, finished string
		)
		if err := rows.Scan(&scan.ID, &startedRaw, &finished, &scan.Files, &scan.Classes); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if scan.StartedAt, err = time.Parse(time.RFC3339Nano, startedRaw); err != nil {
			return nil, fmt.Errorf("parse scan start %q: %w", startedRaw, err)
		}
		if finished != "" {
			if scan.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
				return nil, fmt.Errorf("parse scan finish %q: %w", finished, err)
			}
		}
		scans = append(scans, scan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan rows: %w", err)
	}
	return scans, nil
}

// Prune drops the snapshots of every path not listed in keep.
func (s *Store) Prune(ctx context.Context, keep []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin prune: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `CREATE TEMP TABLE IF NOT EXISTS keep_paths (path TEXT PRIMARY KEY)`); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("create keep table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM keep_paths`); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("reset keep table: %w", err)
	}
	for _, path := range keep {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO keep_paths(path) VALUES (?)`, path); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("record kept path: %w", err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE path NOT IN (SELECT path FROM keep_paths)`)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	if isNoRows(lastErr) {
		return lastErr
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isNoRows(err error) bool {
	return err == sql.ErrNoRows
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
