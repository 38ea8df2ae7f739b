package ogcache

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"namearchive/internal/logging"
	"namearchive/internal/namestore"
)

// Version namespaces the cache directory. Bump it whenever the rendered
// layout changes so stale files are never served.
const Version = "v3"

// Cache lazily renders preview images into a disk cache rooted at a
// configured directory.
type Cache struct {
	root   string
	store  *namestore.Store
	logger *slog.Logger
}

// New creates a preview cache over the given root directory and store.
func New(root string, store *namestore.Store, logger *slog.Logger) *Cache {
	return &Cache{
		root:   root,
		store:  store,
		logger: logging.NewComponentLogger(logger, "ogcache"),
	}
}

// EnsureImage returns the path of the cached preview for a name, rendering it
// first when absent. It returns "" without error when the name is unknown.
// Concurrent renders of the same missing name may race; writes are whole-file
// replacements so the last writer wins.
func (c *Cache) EnsureImage(ctx context.Context, raw string) (string, error) {
	canonical, err := c.store.CanonicalName(ctx, strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	if canonical == "" {
		return "", nil
	}

	path := c.imagePath(canonical)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	series, err := c.store.TrendFor(ctx, canonical)
	if err != nil {
		return "", err
	}

	canvas, err := renderPreview(canonical, series)
	if err != nil {
		return "", fmt.Errorf("render preview for %q: %w", canonical, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create preview directory: %w", err)
	}

	var encoded bytes.Buffer
	if err := canvas.EncodePNG(&encoded); err != nil {
		return "", fmt.Errorf("encode preview for %q: %w", canonical, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, encoded.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("rename temp file: %w", err)
	}

	c.logger.Debug("rendered preview image",
		logging.String("name", canonical),
		logging.Int("bytes", encoded.Len()),
		logging.String("path", path))

	return path, nil
}

func (c *Cache) imagePath(name string) string {
	return filepath.Join(c.root, Version, url.PathEscape(name)+".png")
}
