// Package cache keeps local copies of scanned objects on a billy filesystem.
//
// An object is stored at <bucket>/<key> with ':' replaced by '_', next to a
// ".meta" file recording the listing metadata it was fetched for. A copy is
// served again while that metadata still matches the file reference. New
// copies are written under a temporary name and renamed into place, so a
// reader never sees a partially written file.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/uuid"

	"github.com/input-output-hk/catalyst-forge-libs/linescan/scantypes"
)

const metaSuffix = ".meta"

// entry is the metadata stored alongside a cached object.
type entry struct {
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	ETag         string    `json:"etag,omitempty"`
}

func entryFor(ref scantypes.FileRef) entry {
	return entry{Size: ref.Size, LastModified: ref.LastModified.UTC(), ETag: ref.ETag}
}

// matches reports whether a cached copy described by e is current for ref.
// ETags are compared when both sides have one; otherwise size and mtime must agree.
func (e entry) matches(ref scantypes.FileRef) bool {
	if e.ETag != "" && ref.ETag != "" {
		return e.ETag == ref.ETag
	}
	return e.Size == ref.Size && e.LastModified.Equal(ref.LastModified)
}

// Cache serves objects from a local filesystem, fetching them on a miss.
type Cache struct {
	fs        billy.Filesystem
	skipStale bool
	logger    *slog.Logger

	mu    sync.Mutex
	hits  int64
	fills int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithSkipStaleCheck serves any existing copy without comparing metadata.
func WithSkipStaleCheck(skip bool) Option {
	return func(c *Cache) {
		c.skipStale = skip
	}
}

// WithLogger sets the logger for cache hits and fills.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// New creates a cache stored in fsys.
func New(fsys billy.Filesystem, opts ...Option) *Cache {
	c := &Cache{fs: fsys}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Location returns the path of ref's cached copy.
func Location(ref scantypes.FileRef) string {
	clean := func(s string) string {
		return strings.TrimPrefix(strings.ReplaceAll(s, ":", "_"), "/")
	}
	return path.Join(clean(ref.Bucket), clean(ref.Key))
}

// Wrap returns an opener that reads through the cache and falls back to next.
func (c *Cache) Wrap(next scantypes.Opener) scantypes.Opener {
	return scantypes.OpenerFunc(func(ctx context.Context, ref scantypes.FileRef) (io.ReadCloser, error) {
		return c.Open(ctx, next, ref)
	})
}

// Open returns the cached copy of ref, fetching it through next if missing or stale.
func (c *Cache) Open(ctx context.Context, next scantypes.Opener, ref scantypes.FileRef) (io.ReadCloser, error) {
	loc := Location(ref)

	if c.fresh(loc, ref) {
		f, err := c.fs.Open(loc)
		if err == nil {
			c.count(&c.hits)
			if c.logger != nil {
				c.logger.DebugContext(ctx, "cache hit", "key", ref.Key, "path", loc)
			}
			return f, nil
		}
	}

	if err := c.fill(ctx, next, ref, loc); err != nil {
		return nil, err
	}
	c.count(&c.fills)
	if c.logger != nil {
		c.logger.DebugContext(ctx, "cache filled", "key", ref.Key, "path", loc, "size", ref.Size)
	}
	return c.fs.Open(loc)
}

// Stats returns the number of hits and fills so far.
func (c *Cache) Stats() (hits, fills int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.fills
}

func (c *Cache) count(n *int64) {
	c.mu.Lock()
	*n++
	c.mu.Unlock()
}

func (c *Cache) fresh(loc string, ref scantypes.FileRef) bool {
	if _, err := c.fs.Stat(loc); err != nil {
		return false
	}
	if c.skipStale {
		return true
	}
	data, err := util.ReadFile(c.fs, loc+metaSuffix)
	if err != nil {
		return false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return false
	}
	return e.matches(ref)
}

func (c *Cache) fill(ctx context.Context, next scantypes.Opener, ref scantypes.FileRef, loc string) error {
	rc, err := next.Open(ctx, ref)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	if err := c.fs.MkdirAll(path.Dir(loc), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmp := loc + ".tmp-" + uuid.NewString()
	if err := c.copyTo(tmp, rc); err != nil {
		_ = c.fs.Remove(tmp)
		return err
	}

	meta, err := json.Marshal(entryFor(ref))
	if err != nil {
		_ = c.fs.Remove(tmp)
		return fmt.Errorf("encode cache metadata: %w", err)
	}
	metaTmp := loc + metaSuffix + ".tmp-" + uuid.NewString()
	if err := util.WriteFile(c.fs, metaTmp, meta, 0o644); err != nil {
		_ = c.fs.Remove(tmp)
		_ = c.fs.Remove(metaTmp)
		return fmt.Errorf("write cache metadata: %w", err)
	}

	// The old metadata goes before the new data, so that no reader matches
	// the new bytes against the old listing. Without metadata a copy is stale.
	if err := c.fs.Remove(loc + metaSuffix); err != nil && !errors.Is(err, os.ErrNotExist) {
		_ = c.fs.Remove(tmp)
		_ = c.fs.Remove(metaTmp)
		return fmt.Errorf("retire cache metadata: %w", err)
	}
	if err := c.fs.Rename(tmp, loc); err != nil {
		_ = c.fs.Remove(tmp)
		_ = c.fs.Remove(metaTmp)
		return fmt.Errorf("publish cached object: %w", err)
	}
	if err := c.fs.Rename(metaTmp, loc+metaSuffix); err != nil {
		_ = c.fs.Remove(metaTmp)
		return fmt.Errorf("publish cache metadata: %w", err)
	}
	return nil
}

func (c *Cache) copyTo(name string, r io.Reader) error {
	f, err := c.fs.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("copy object to cache: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close cache file: %w", err)
	}
	return nil
}
