package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"llmsettings/internal/common/fsutil"
	"llmsettings/internal/merge"
	"llmsettings/pkg/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS provider_settings (
	provider   TEXT PRIMARY KEY,
	config     TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLite persists one JSON-encoded ProviderConfig row per provider. A patch
// touching several providers commits in one transaction.
type SQLite struct {
	db  *sql.DB
	log zerolog.Logger
	now func() time.Time
}

// OpenSQLite opens (and creates when needed) the database at path. Use
// ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string, logger *zerolog.Logger) (*SQLite, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	if p != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection keeps ":memory:" databases alive and writes ordered
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	s := &SQLite{db: db, log: zerolog.Nop(), now: time.Now}
	if logger != nil {
		s.log = logger.With().Str("component", "persist.sqlite").Logger()
	}
	return s, nil
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

// Load returns the stored rows laid over the defaults.
func (s *SQLite) Load(ctx context.Context) (types.Settings, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT provider, config FROM provider_settings")
	if err != nil {
		return types.Settings{}, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()
	stored := make(types.GlobalLLMConfig)
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return types.Settings{}, fmt.Errorf("scan settings: %w", err)
		}
		var cfg types.ProviderConfig
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			return types.Settings{}, fmt.Errorf("decode %s settings: %w", key, err)
		}
		stored[types.ProviderKey(key)] = cfg
	}
	if err := rows.Err(); err != nil {
		return types.Settings{}, err
	}
	return overlay(stored, s.log), nil
}

// ApplySettings merges each provider fragment into its row.
func (s *SQLite) ApplySettings(ctx context.Context, patch types.SettingsPatch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := s.now().Unix()
	for key, p := range patch.LanguageModel {
		cur, err := s.readTx(ctx, tx, key)
		if err != nil {
			return err
		}
		next := merge.Provider(cur, p)
		raw, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode %s settings: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO provider_settings (provider, config, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(provider) DO UPDATE SET config = excluded.config, updated_at = excluded.updated_at`,
			string(key), string(raw), now); err != nil {
			return fmt.Errorf("write %s settings: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.log.Debug().Int("providers", len(patch.LanguageModel)).Msg("settings written")
	return nil
}

// readTx returns the stored config for key, or the default entry when no row
// exists yet.
func (s *SQLite) readTx(ctx context.Context, tx *sql.Tx, key types.ProviderKey) (types.ProviderConfig, error) {
	var raw string
	err := tx.QueryRowContext(ctx, "SELECT config FROM provider_settings WHERE provider = ?", string(key)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return types.DefaultSettings().LanguageModel[key], nil
	}
	if err != nil {
		return types.ProviderConfig{}, fmt.Errorf("read %s settings: %w", key, err)
	}
	var cfg types.ProviderConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return types.ProviderConfig{}, fmt.Errorf("decode %s settings: %w", key, err)
	}
	return cfg, nil
}
