package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// metadataFile is the per-template descriptor a template directory carries.
const metadataFile = "template.json"

// DirCatalog reads template metadata from a directory tree where each
// subdirectory holds one template and its template.json descriptor.
type DirCatalog struct {
	fs     afero.Fs
	root   string
	logger *slog.Logger
}

// NewDirCatalog creates a catalog over the given filesystem root.
func NewDirCatalog(fs afero.Fs, root string, logger *slog.Logger) *DirCatalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirCatalog{
		fs:     fs,
		root:   root,
		logger: logger.With("component", "template_catalog"),
	}
}

// Metadata lists the catalog, ordered by slug for a stable prompt rendering.
// Directories without a readable descriptor are skipped.
func (c *DirCatalog) Metadata(_ context.Context) ([]TemplateMeta, error) {
	entries, err := afero.ReadDir(c.fs, c.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read template directory: %w", err)
	}

	var out []TemplateMeta
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		path := filepath.Join(c.root, entry.Name(), metadataFile)
		data, err := afero.ReadFile(c.fs, path)
		if err != nil {
			c.logger.Warn("template directory without descriptor", "dir", entry.Name())
			continue
		}

		var meta TemplateMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			c.logger.Warn("skipping template with malformed descriptor", "dir", entry.Name(), "error", err)
			continue
		}
		if meta.Slug == "" {
			meta.Slug = entry.Name()
		}
		out = append(out, meta)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}
