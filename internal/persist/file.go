package persist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"llmsettings/internal/common/fsutil"
	"llmsettings/internal/merge"
	"llmsettings/pkg/types"
)

// File persists the settings tree to a single document. Every ApplySettings
// rewrites the file atomically.
type File struct {
	path   string
	format Format
	log    zerolog.Logger

	mu     sync.Mutex
	loaded bool
	cur    types.Settings
}

// NewFile returns a persister for path. The format follows the extension.
func NewFile(path string, logger *zerolog.Logger) (*File, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	format, err := FormatFor(p)
	if err != nil {
		return nil, err
	}
	f := &File{path: p, format: format, log: zerolog.Nop()}
	if logger != nil {
		f.log = logger.With().Str("component", "persist.file").Str("path", p).Logger()
	}
	return f, nil
}

// Path returns the resolved file path.
func (f *File) Path() string { return f.path }

// Load reads the stored tree laid over the defaults. A missing file yields
// the defaults.
func (f *File) Load(ctx context.Context) (types.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loadLocked(ctx); err != nil {
		return types.Settings{}, err
	}
	return f.cur.Clone(), nil
}

func (f *File) loadLocked(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		f.cur = types.DefaultSettings()
		f.loaded = true
		f.log.Debug().Msg("settings file missing, using defaults")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	var stored types.Settings
	if len(b) > 0 {
		if err := f.format.unmarshal(b, &stored); err != nil {
			return fmt.Errorf("decode settings %s: %w", f.path, err)
		}
	}
	f.cur = overlay(stored.LanguageModel, f.log)
	f.loaded = true
	return nil
}

// ApplySettings merges patch into the stored tree and rewrites the file. On
// error the previous file content is left in place.
func (f *File) ApplySettings(ctx context.Context, patch types.SettingsPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.loaded {
		if err := f.loadLocked(ctx); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	next := merge.Settings(f.cur, patch)
	b, err := f.format.marshal(next)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := fsutil.WriteFileAtomic(f.path, b, 0o600); err != nil {
		return err
	}
	f.cur = next
	f.log.Debug().Int("providers", len(patch.LanguageModel)).Msg("settings written")
	return nil
}
