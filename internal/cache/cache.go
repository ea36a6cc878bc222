package cache

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
	"time"
)

const suffix = ".json"

// record is the on-disk form of one remembered message.
type record struct {
	Message  string    `json:"message"`
	StoredAt time.Time `json:"storedAt"`
}

// Cache remembers agent replies on disk, one file per key. A Cache built
// with enabled false misses every lookup and stores nothing.
type Cache struct {
	root string
	ttl  time.Duration
	on   bool
}

// New opens the cache rooted at dir, creating it if needed. An empty dir
// selects the per-user cache directory. ttlSeconds <= 0 keeps messages
// until cleared.
func New(enabled bool, dir string, ttlSeconds int) (*Cache, error) {
	if !enabled {
		return &Cache{}, nil
	}
	if dir == "" {
		var err error
		if dir, err = defaultDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{
		root: dir,
		ttl:  time.Duration(ttlSeconds) * time.Second,
		on:   true,
	}, nil
}

// Get returns the message stored under key. A stale message is deleted and
// reported as a miss.
func (c *Cache) Get(key string) (string, bool) {
	if !c.on {
		return "", false
	}
	path := c.pathFor(key)
	rec, ok := readRecord(path)
	if !ok {
		return "", false
	}
	if c.stale(rec) {
		_ = os.Remove(path)
		return "", false
	}
	return rec.Message, true
}

// Put stores message under key, replacing any earlier message. The file is
// renamed into place so a concurrent Get never reads a partial record.
func (c *Cache) Put(key, message string) error {
	if !c.on {
		return nil
	}
	data, err := json.Marshal(record{Message: message, StoredAt: time.Now()})
	if err != nil {
		return fmt.Errorf("encoding cached message: %w", err)
	}
	tmp, err := os.CreateTemp(c.root, ".put-*")
	if err != nil {
		return fmt.Errorf("storing cached message: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("storing cached message: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("storing cached message: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.pathFor(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("storing cached message: %w", err)
	}
	return nil
}

// Clear deletes every stored message and reports how many were deleted.
func (c *Cache) Clear() (int, error) {
	if !c.on {
		return 0, nil
	}
	removed := 0
	err := c.each(func(path string, _ fs.FileInfo) {
		if os.Remove(path) == nil {
			removed++
		}
	})
	return removed, err
}

// Usage summarizes what the cache directory holds.
type Usage struct {
	Dir      string `json:"dir"`
	Messages int    `json:"messages"`
	Bytes    int64  `json:"bytes"`
	Stale    int    `json:"stale"`
}

// Usage walks the cache directory. Stale messages are counted, not removed.
func (c *Cache) Usage() (Usage, error) {
	u := Usage{Dir: c.root}
	if !c.on {
		return u, nil
	}
	err := c.each(func(path string, info fs.FileInfo) {
		u.Messages++
		u.Bytes += info.Size()
		if rec, ok := readRecord(path); ok && c.stale(rec) {
			u.Stale++
		}
	})
	return u, err
}

// Dir is the cache directory, empty when disabled.
func (c *Cache) Dir() string { return c.root }

// Enabled reports whether lookups can hit.
func (c *Cache) Enabled() bool { return c.on }

// MessageKey derives the key for a request from the agent identity and the
// ordered, redacted chunks sent to it. Chunk boundaries are part of the key.
func MessageKey(identity string, chunks []string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%d", identity, len(chunks))
	for _, c := range chunks {
		fmt.Fprintf(h, "\x00%d:%s", len(c), c)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) pathFor(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.root, hex.EncodeToString(sum[:])+suffix)
}

func (c *Cache) stale(rec record) bool {
	return c.ttl > 0 && time.Since(rec.StoredAt) > c.ttl
}

// each calls fn for every message file in the cache directory. A missing
// directory holds nothing.
func (c *Cache) each(fn func(path string, info fs.FileInfo)) error {
	dirents, err := os.ReadDir(c.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, d := range dirents {
		if d.IsDir() || !strings.HasSuffix(d.Name(), suffix) {
			continue
		}
		info, err := d.Info()
		if err != nil {
			continue
		}
		fn(filepath.Join(c.root, d.Name()), info)
	}
	return nil
}

func readRecord(path string) (record, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return record{}, false
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return record{}, false
	}
	return rec, true
}

// defaultDir honors XDG_CACHE_HOME on every platform, then falls back to
// the OS per-user cache directory.
func defaultDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "scribe"), nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locating cache directory: %w", err)
	}
	return filepath.Join(base, "scribe"), nil
}
