// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tempotype/internal/logger"
	"github.com/verte-zerg/tempotype/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Timestamps are stored in UTC with a fixed-width fraction so they sort
// lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const insertCompletedTextSQL = `INSERT INTO completed_texts (user_id, text_id, completed_at) VALUES (?, ?, ?)`

// Store wraps SQLite access for typing results.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY,
			user_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			error_count INTEGER NOT NULL,
			duration_seconds INTEGER NOT NULL DEFAULT 0,
			texts_completed INTEGER NOT NULL DEFAULT 0,
			score INTEGER NOT NULL DEFAULT 0,
			difficulty TEXT NOT NULL DEFAULT '',
			language TEXT NOT NULL DEFAULT '',
			mode TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS completed_texts (
			id INTEGER PRIMARY KEY,
			user_id TEXT NOT NULL,
			text_id TEXT NOT NULL,
			completed_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_user_created ON results(user_id, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_completed_texts_user ON completed_texts(user_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// InsertResult stores a finalized session and the texts completed during it.
func (s *Store) InsertResult(ctx context.Context, userID string, result model.SessionResult) (int64, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, fmt.Errorf("user id is required")
	}
	createdAt := result.Timestamp
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		// No-op after a successful commit.
		if rerr := tx.Rollback(); rerr != nil {
			_ = rerr
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO results (user_id, created_at, wpm, accuracy, error_count, duration_seconds, texts_completed, score, difficulty, language, mode)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID,
		formatTime(createdAt),
		result.WordsPerMinute,
		result.AccuracyPercent,
		result.ErrorCount,
		result.DurationSeconds,
		result.TextsCompleted,
		result.Score,
		string(result.Settings.Difficulty),
		string(result.Settings.Language),
		string(result.Settings.Mode),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(result.CompletedTexts) > 0 {
		stmt, err := tx.PrepareContext(ctx, insertCompletedTextSQL)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, textID := range result.CompletedTexts {
			if _, err := stmt.ExecContext(ctx, userID, textID, formatTime(createdAt)); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// InsertCompletedText records one reference text finished outside a timed
// session.
func (s *Store) InsertCompletedText(ctx context.Context, userID, textID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id is required")
	}
	_, err := s.db.ExecContext(ctx, insertCompletedTextSQL, userID, textID, formatTime(time.Now()))
	return err
}

// CountCompletedTexts returns how many texts the user has finished.
func (s *Store) CountCompletedTexts(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM completed_texts WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// ListRecords returns the user's results in chronological order. Rows with
// an unreadable timestamp are skipped.
func (s *Store) ListRecords(ctx context.Context, userID string, since *time.Time) ([]model.AnalyticsRecord, error) {
	clauses := []string{"user_id = ?"}
	args := []any{userID}
	if since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, formatTime(*since))
	}
	query := fmt.Sprintf(`SELECT id, created_at, wpm, accuracy
		FROM results
		WHERE %s
		ORDER BY created_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.AnalyticsRecord
	for rows.Next() {
		var (
			id        int64
			createdAt string
			rec       model.AnalyticsRecord
		)
		if err := rows.Scan(&id, &createdAt, &rec.WPM, &rec.Accuracy); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			logger.Warn("skipping result with bad timestamp", "id", id, "created_at", createdAt, "error", err)
			continue
		}
		rec.Timestamp = parsed
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// ListResults returns the most recent results, newest first. A non-positive
// limit returns everything.
func (s *Store) ListResults(ctx context.Context, userID string, limit int) ([]model.StoredResult, error) {
	query := `SELECT id, user_id, created_at, wpm, accuracy, error_count, duration_seconds, texts_completed, score, difficulty, language, mode
		FROM results
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var results []model.StoredResult
	for rows.Next() {
		var (
			r                          model.StoredResult
			createdAt                  string
			difficulty, language, mode string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &createdAt, &r.WordsPerMinute, &r.AccuracyPercent, &r.ErrorCount,
			&r.DurationSeconds, &r.TextsCompleted, &r.Score, &difficulty, &language, &mode); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			logger.Warn("skipping result with bad timestamp", "id", r.ID, "created_at", createdAt, "error", err)
			continue
		}
		r.CreatedAt = parsed
		r.Difficulty = model.Difficulty(difficulty)
		r.Language = model.Language(language)
		r.Mode = model.Mode(mode)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
