package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/narravox/tts-studio/internal/observability"
)

// VoiceRecord is one cloned voice owned by a user
type VoiceRecord struct {
	UserID    string
	VoiceID   string
	VoiceName string
	CreatedAt time.Time
}

// GenerationRecord is one successfully synthesized segment, used for quota accounting
type GenerationRecord struct {
	UserID     string
	Text       string
	VoiceID    string
	VoiceLabel string
	CreatedAt  time.Time
}

// Store wraps the SQLite-backed usage database
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
	clock  func() time.Time
}

// Open initializes the usage store at the given path, creating the schema if needed
func Open(ctx context.Context, path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{
		db:     db,
		logger: observability.ComponentLogger("store"),
		clock:  time.Now,
	}

	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS user_voices (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    voice_id TEXT NOT NULL,
    voice_name TEXT,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_user_voices_user ON user_voices(user_id);
CREATE TABLE IF NOT EXISTS tts_generations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    text TEXT NOT NULL,
    voice_id TEXT NOT NULL,
    voice_name TEXT,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tts_generations_user ON tts_generations(user_id, created_at);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Close releases underlying resources
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is usable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CountVoices returns the number of cloned voices recorded for a user
func (s *Store) CountVoices(ctx context.Context, userID string) (int, error) {
	return s.countRows(ctx, `SELECT COUNT(*) FROM user_voices WHERE user_id = ?`, userID)
}

// CountGenerations returns the number of generation records for a user
func (s *Store) CountGenerations(ctx context.Context, userID string) (int, error) {
	return s.countRows(ctx, `SELECT COUNT(*) FROM tts_generations WHERE user_id = ?`, userID)
}

func (s *Store) countRows(ctx context.Context, query, userID string) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return count, nil
}

// InsertVoice records a newly cloned voice for a user
func (s *Store) InsertVoice(ctx context.Context, rec VoiceRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.clock().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_voices(user_id, voice_id, voice_name, created_at) VALUES(?, ?, ?, ?)`,
		rec.UserID, rec.VoiceID, rec.VoiceName, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert voice record: %w", err)
	}
	return nil
}

// InsertGeneration records one successfully synthesized segment
func (s *Store) InsertGeneration(ctx context.Context, rec GenerationRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.clock().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tts_generations(user_id, text, voice_id, voice_name, created_at) VALUES(?, ?, ?, ?, ?)`,
		rec.UserID, rec.Text, rec.VoiceID, rec.VoiceLabel, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert generation record: %w", err)
	}
	return nil
}

// ListVoices returns a user's cloned voices, newest first
func (s *Store) ListVoices(ctx context.Context, userID string) ([]VoiceRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, voice_id, voice_name, created_at
		 FROM user_voices WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}
	defer rows.Close()

	var records []VoiceRecord
	for rows.Next() {
		var rec VoiceRecord
		var created string
		if err := rows.Scan(&rec.UserID, &rec.VoiceID, &rec.VoiceName, &created); err != nil {
			return nil, fmt.Errorf("scan voice record: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			rec.CreatedAt = ts
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListGenerations returns a user's generation records, newest first
func (s *Store) ListGenerations(ctx context.Context, userID string) ([]GenerationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, text, voice_id, voice_name, created_at
		 FROM tts_generations WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()

	var records []GenerationRecord
	for rows.Next() {
		var rec GenerationRecord
		var created string
		if err := rows.Scan(&rec.UserID, &rec.Text, &rec.VoiceID, &rec.VoiceLabel, &created); err != nil {
			return nil, fmt.Errorf("scan generation record: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			rec.CreatedAt = ts
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteVoice removes a user's voice record
func (s *Store) DeleteVoice(ctx context.Context, userID, voiceID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM user_voices WHERE user_id = ? AND voice_id = ?`, userID, voiceID)
	if err != nil {
		return fmt.Errorf("delete voice record: %w", err)
	}
	return nil
}
