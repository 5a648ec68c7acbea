// Package cache stores compiled artifacts keyed by a content hash of the
// submission, so identical source is never compiled twice.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"judgecore/internal/judge/language"
	appErr "judgecore/pkg/errors"
	"judgecore/pkg/utils/logger"
)

// ArtifactCache maps content hashes to per-key directories of compiled
// artifact files under a stable cache root, distinct from any workspace.
// One compile can produce several files that must travel together, so the
// unit of caching is the whole file set. Entries are only invalidated
// lazily, when the backing directory turns out to be gone.
type ArtifactCache struct {
	dir     string
	mu      sync.Mutex
	entries map[string]string
}

// NewArtifactCache creates the cache directory on demand.
func NewArtifactCache(dir string) (*ArtifactCache, error) {
	if dir == "" {
		return nil, appErr.ValidationError("cache_dir", "required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, appErr.Wrapf(err, appErr.CacheError, "create cache dir failed")
	}
	return &ArtifactCache{
		dir:     dir,
		entries: make(map[string]string),
	}, nil
}

// Key hashes language and source together. Collisions are acceptable risk
// here, not a security boundary.
func Key(id language.ID, code string) string {
	h := sha256.New()
	h.Write([]byte(id))
	h.Write([]byte{0})
	h.Write([]byte(code))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached artifact directory if it still exists. A stale
// entry is evicted and reported as a miss, so the caller falls through to a
// fresh compile.
func (c *ArtifactCache) Get(key string) (string, bool) {
	c.mu.Lock()
	path, ok := c.entries[key]
	c.mu.Unlock()

	if !ok {
		// The map is process-local; accept artifacts left by a previous run.
		path = filepath.Join(c.dir, key)
	}
	if dirExists(path) {
		c.mu.Lock()
		c.entries[key] = path
		c.mu.Unlock()
		return path, true
	}
	if ok {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
	}
	return "", false
}

// Put copies every artifact file matching glob out of the workspace into
// the cache, staging under a temp directory and renaming so concurrent
// readers never observe a half-written entry. Same-key races are
// last-writer-wins; the content is deterministic for a given key.
//
// A copy failure only costs a recompile on the next identical submission,
// so it is logged and swallowed by the caller.
func (c *ArtifactCache) Put(ctx context.Context, key, srcDir, glob string) error {
	matches, err := filepath.Glob(filepath.Join(srcDir, glob))
	if err != nil {
		return appErr.Wrapf(err, appErr.CacheSetFailed, "bad artifact pattern")
	}
	if len(matches) == 0 {
		return appErr.New(appErr.CacheSetFailed).WithMessage("no artifact files to cache")
	}

	tmp := filepath.Join(c.dir, key+".tmp-"+uuid.NewString())
	if err := os.MkdirAll(tmp, 0755); err != nil {
		return appErr.Wrapf(err, appErr.CacheSetFailed, "stage cache entry failed")
	}
	for _, match := range matches {
		if err := copyFile(match, filepath.Join(tmp, filepath.Base(match))); err != nil {
			_ = os.RemoveAll(tmp)
			return appErr.Wrapf(err, appErr.CacheSetFailed, "copy artifact into cache failed")
		}
	}

	dst := filepath.Join(c.dir, key)
	_ = os.RemoveAll(dst)
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.RemoveAll(tmp)
		return appErr.Wrapf(err, appErr.CacheSetFailed, "publish cached artifact failed")
	}

	c.mu.Lock()
	c.entries[key] = dst
	c.mu.Unlock()
	logger.Debug(ctx, "artifact cached", zap.String("key", key), zap.Int("files", len(matches)))
	return nil
}

// Fetch copies every cached artifact file into the current workspace.
// Artifacts are never executed in place from the cache directory.
func (c *ArtifactCache) Fetch(cachedDir, dstDir string) error {
	entries, err := os.ReadDir(cachedDir)
	if err != nil {
		return appErr.Wrapf(err, appErr.CacheError, "read cache entry failed")
	}
	if len(entries) == 0 {
		return appErr.New(appErr.CacheError).WithMessage("cache entry is empty")
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		src := filepath.Join(cachedDir, entry.Name())
		if err := copyFile(src, filepath.Join(dstDir, entry.Name())); err != nil {
			return appErr.Wrapf(err, appErr.CacheError, "copy cached artifact failed")
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
