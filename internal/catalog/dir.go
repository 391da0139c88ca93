package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"llmsettings/internal/common/fsutil"
	"llmsettings/pkg/types"
)

// DirClient lists model files found in a local directory. It serves local
// runtimes (e.g. llama.cpp servers) that load whatever sits on disk.
type DirClient struct {
	dir  string
	exts []string
}

// NewDirClient scans dir for files with one of exts (case-insensitive).
// Empty exts means ".gguf".
func NewDirClient(dir string, exts ...string) *DirClient {
	if len(exts) == 0 {
		exts = []string{".gguf"}
	}
	norm := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		norm = append(norm, e)
	}
	return &DirClient{dir: dir, exts: norm}
}

// ListModels returns one card per matching file, sorted by file name. The id
// is the full file name; the display name drops the extension.
func (c *DirClient) ListModels(ctx context.Context) ([]types.ModelCard, error) {
	base, err := fsutil.ExpandHome(c.dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	if !fsutil.PathExists(abs) {
		return nil, fmt.Errorf("model dir %s does not exist", abs)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var cards []types.ModelCard
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !c.matches(ext) {
			continue
		}
		cards = append(cards, types.ModelCard{ID: name, DisplayName: strings.TrimSuffix(name, filepath.Ext(name))})
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	if cards == nil {
		cards = []types.ModelCard{}
	}
	return cards, nil
}

func (c *DirClient) matches(ext string) bool {
	for _, e := range c.exts {
		if e == ext {
			return true
		}
	}
	return false
}
