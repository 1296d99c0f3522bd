// Package sqlite provides SQLite-backed persistence for the arcade service.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/storage"
	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/storage/sqlite/migrations"
	"github.com/0xDEADCADE/PokemonArcade/internal/platform/storage/sqlitemigrate"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed screenshot cache and telemetry persistence.
type Store struct {
	sqlDB *sql.DB
}

// Open opens an arcade SQLite store and applies migrations. The store must
// tolerate a missing file on first run; SQLite creates it.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// GetScreenshotRef returns the published URL for a content hash.
func (s *Store) GetScreenshotRef(ctx context.Context, hash string) (string, error) {
	if s == nil || s.sqlDB == nil {
		return "", fmt.Errorf("storage is not configured")
	}
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return "", fmt.Errorf("screenshot hash is required")
	}

	var url string
	row := s.sqlDB.QueryRowContext(ctx, `SELECT url FROM screenshot_cache WHERE hash = ?`, hash)
	if err := row.Scan(&url); err != nil {
		if err == sql.ErrNoRows {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("get screenshot ref: %w", err)
	}
	return url, nil
}

// PutScreenshotRef records a published frame. Existing hashes keep their
// first reference so the cache stays append-only.
func (s *Store) PutScreenshotRef(ctx context.Context, ref storage.ScreenshotRef) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	ref.Hash = strings.TrimSpace(ref.Hash)
	if ref.Hash == "" {
		return fmt.Errorf("screenshot hash is required")
	}
	ref.URL = strings.TrimSpace(ref.URL)
	if ref.URL == "" {
		return fmt.Errorf("screenshot url is required")
	}
	if ref.CreatedAt.IsZero() {
		ref.CreatedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT OR IGNORE INTO screenshot_cache (hash, url, created_at)
VALUES (?, ?, ?)`,
		ref.Hash,
		ref.URL,
		ref.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put screenshot ref: %w", err)
	}
	return nil
}

// AppendTelemetryEvent persists one operational telemetry event.
func (s *Store) AppendTelemetryEvent(ctx context.Context, event storage.TelemetryEvent) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	event.EventName = strings.TrimSpace(event.EventName)
	if event.EventName == "" {
		return fmt.Errorf("event name is required")
	}
	if event.Severity == "" {
		event.Severity = "INFO"
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	attributes := event.Attributes
	if attributes == nil {
		attributes = map[string]string{}
	}
	attributesJSON, err := json.Marshal(attributes)
	if err != nil {
		return fmt.Errorf("marshal telemetry attributes: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO telemetry_events (event_id, timestamp, event_name, severity, channel_id, session_id, trace_id, span_id, attributes_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.EventID,
		event.Timestamp.UnixMilli(),
		event.EventName,
		event.Severity,
		event.ChannelID,
		event.SessionID,
		event.TraceID,
		event.SpanID,
		string(attributesJSON),
	)
	if err != nil {
		return fmt.Errorf("append telemetry event: %w", err)
	}
	return nil
}
