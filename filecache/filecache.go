// Package filecache keeps JSON blobs on disk, scoped to the active session.
//
// Each session token maps to its own subdirectory named by the token's
// SHA-256, so switching users never serves another user's data. Without a
// scope every operation is a no-op.
package filecache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	ErrInvalidName  = errors.New("invalid cache entry name")
	ErrLinkedBlob   = errors.New("cache blob is a link")
	ErrScopeChanged = errors.New("cache scope changed")
)

// Cache is a session-scoped blob store
type Cache struct {
	dir    string
	logger zerolog.Logger

	mu    sync.RWMutex
	scope string
}

// New creates the cache root if needed
func New(dir string, logger zerolog.Logger) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("cache directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	return &Cache{
		dir:    dir,
		logger: logger.With().Str("component", "filecache").Logger(),
	}, nil
}

// Dir returns the cache root
func (c *Cache) Dir() string {
	return c.dir
}

// Scope selects the subdirectory for a session token. An empty token clears
// the scope.
func (c *Cache) Scope(sessionToken string) {
	scope := ""
	if sessionToken != "" {
		sum := sha256.Sum256([]byte(sessionToken))
		scope = hex.EncodeToString(sum[:])
	}

	c.mu.Lock()
	c.scope = scope
	c.mu.Unlock()
}

// ScopeID returns the active scope directory name, empty when unscoped
func (c *Cache) ScopeID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scope
}

func (c *Cache) scopeDir() string {
	scope := c.ScopeID()
	if scope == "" {
		return ""
	}
	return filepath.Join(c.dir, scope)
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Put stores v as JSON under name. The file is written to a temporary name
// and renamed into place.
func (c *Cache) Put(name string, v any) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.put(c.scope, name, v)
}

// PutScoped stores v only while scope is still the active scope. Loads that
// started before a session switch use it so their result cannot land in the
// next session's directory.
func (c *Cache) PutScoped(scope, name string, v any) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.scope != scope {
		return fmt.Errorf("%w: entry %s dropped", ErrScopeChanged, name)
	}
	return c.put(scope, name, v)
}

// put writes into scope. Callers hold c.mu so Scope waits for the rename.
func (c *Cache) put(scope, name string, v any) error {
	if err := validName(name); err != nil {
		return err
	}
	if scope == "" {
		return nil
	}
	dir := filepath.Join(c.dir, scope)

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", name, err)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create cache scope: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache entry %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync cache entry %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close cache entry %s: %w", name, err)
	}

	if err := os.Rename(tmpName, filepath.Join(dir, name+".json")); err != nil {
		return fmt.Errorf("failed to store cache entry %s: %w", name, err)
	}

	c.logger.Trace().Str("entry", name).Int("bytes", len(data)).Msg("Stored cache entry")
	return nil
}

// Get decodes the entry stored under name into v. It reports false when the
// entry does not exist or no scope is active. Unreadable entries are removed.
func (c *Cache) Get(name string, v any) (bool, error) {
	if err := validName(name); err != nil {
		return false, err
	}
	dir := c.scopeDir()
	if dir == "" {
		return false, nil
	}
	path := filepath.Join(dir, name+".json")

	fi, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat cache entry %s: %w", name, err)
	}
	if err := checkRegular(path, fi); err != nil {
		c.discard(path, err)
		return false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read cache entry %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		err = fmt.Errorf("failed to decode cache entry %s: %w", name, err)
		c.discard(path, err)
		return false, err
	}

	return true, nil
}

// Delete removes a single entry from the active scope
func (c *Cache) Delete(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	dir := c.scopeDir()
	if dir == "" {
		return nil
	}
	err := os.Remove(filepath.Join(dir, name+".json"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete cache entry %s: %w", name, err)
	}
	return nil
}

// Invalidate removes every entry of the active scope
func (c *Cache) Invalidate() error {
	dir := c.scopeDir()
	if dir == "" {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to invalidate cache scope: %w", err)
	}
	c.logger.Debug().Msg("Invalidated session cache")
	return nil
}

// Purge removes every scope directory. Anything else under the cache root
// is left alone.
func (c *Cache) Purge() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("failed to list cache directory: %w", err)
	}

	var errs []error
	purged := 0
	for _, e := range entries {
		if !e.IsDir() || !isScopeName(e.Name()) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(c.dir, e.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		purged++
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to purge cache: %w", errors.Join(errs...))
	}

	c.logger.Debug().Int("scopes", purged).Msg("Purged cache")
	return nil
}

// isScopeName matches the lowercase hex SHA-256 names Scope produces
func isScopeName(name string) bool {
	if len(name) != hex.EncodedLen(sha256.Size) {
		return false
	}
	for _, r := range name {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

func (c *Cache) discard(path string, reason error) {
	c.logger.Warn().Err(reason).Str("path", path).Msg("Discarding cache entry")
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		c.logger.Error().Err(err).Str("path", path).Msg("Failed to remove cache entry")
	}
}

// checkRegular refuses symlinks and files with more than one hard link, so a
// blob cannot be swapped for a link to some other file
func checkRegular(path string, fi fs.FileInfo) error {
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrLinkedBlob, path)
	}
	count, err := linkCount(path, fi)
	if err != nil {
		return err
	}
	if count > 1 {
		return fmt.Errorf("%w: %s has %d hard links", ErrLinkedBlob, path, count)
	}
	return nil
}
