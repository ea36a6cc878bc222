package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDir(t *testing.T, ttlSeconds int) (*Cache, string) {
	t.Helper()
	dir := t.TempDir()
	c, err := New(true, dir, ttlSeconds)
	require.NoError(t, err)
	return c, dir
}

func messageFiles(t *testing.T, dir string) []string {
	t.Helper()
	dirents, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, d := range dirents {
		if strings.HasSuffix(d.Name(), ".json") {
			names = append(names, d.Name())
		}
	}
	return names
}

// backdate rewrites the record stored under key as if it were stored age ago.
func backdate(t *testing.T, c *Cache, key string, age time.Duration) {
	t.Helper()
	path := c.pathFor(key)
	rec, ok := readRecord(path)
	require.True(t, ok)
	rec.StoredAt = time.Now().Add(-age)
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestCache_PutThenGet(t *testing.T) {
	c, dir := openDir(t, 86400)
	msg := "Add retry to agent client\n\nRetries 429 responses with back-off."

	_, ok := c.Get("k")
	assert.False(t, ok, "miss before put")

	require.NoError(t, c.Put("k", msg))
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, msg, got)
	assert.Len(t, messageFiles(t, dir), 1)
}

func TestCache_PutReplaces(t *testing.T) {
	c, dir := openDir(t, 0)
	require.NoError(t, c.Put("k", "first"))
	require.NoError(t, c.Put("k", "second"))

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "second", got)
	assert.Len(t, messageFiles(t, dir), 1)
}

func TestCache_PutLeavesNoTempFiles(t *testing.T) {
	c, dir := openDir(t, 0)
	require.NoError(t, c.Put("k", "msg"))

	dirents, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, dirents, 1)
	assert.True(t, strings.HasSuffix(dirents[0].Name(), ".json"))
}

func TestCache_StaleMessageIsDeleted(t *testing.T) {
	c, dir := openDir(t, 60)
	require.NoError(t, c.Put("k", "msg"))
	backdate(t, c, "k", 2*time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Empty(t, messageFiles(t, dir))
}

func TestCache_NoTTLNeverStale(t *testing.T) {
	c, _ := openDir(t, 0)
	require.NoError(t, c.Put("k", "msg"))
	backdate(t, c, "k", 365*24*time.Hour)

	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "msg", got)
}

func TestCache_CorruptFileMisses(t *testing.T) {
	c, _ := openDir(t, 0)
	require.NoError(t, os.WriteFile(c.pathFor("k"), []byte("{not json"), 0o644))

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_Disabled(t *testing.T) {
	c, err := New(false, "", 0)
	require.NoError(t, err)

	assert.False(t, c.Enabled())
	assert.Empty(t, c.Dir())
	assert.NoError(t, c.Put("k", "v"))
	_, ok := c.Get("k")
	assert.False(t, ok)

	n, err := c.Clear()
	assert.NoError(t, err)
	assert.Zero(t, n)

	u, err := c.Usage()
	assert.NoError(t, err)
	assert.Equal(t, Usage{}, u)
}

func TestCache_Clear(t *testing.T) {
	c, dir := openDir(t, 86400)
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, c.Put(k, "data"))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0o644))
	require.Len(t, messageFiles(t, dir), 5)

	removed, err := c.Clear()
	require.NoError(t, err)
	assert.Equal(t, 5, removed)
	assert.Empty(t, messageFiles(t, dir))
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))
}

func TestCache_ClearMissingDir(t *testing.T) {
	c, dir := openDir(t, 0)
	require.NoError(t, os.RemoveAll(dir))

	n, err := c.Clear()
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestCache_Usage(t *testing.T) {
	c, dir := openDir(t, 60)

	u, err := c.Usage()
	require.NoError(t, err)
	assert.Equal(t, Usage{Dir: dir}, u)

	require.NoError(t, c.Put("fresh", "value1"))
	require.NoError(t, c.Put("old", "value2"))
	backdate(t, c, "old", time.Hour)

	u, err = c.Usage()
	require.NoError(t, err)
	assert.Equal(t, dir, u.Dir)
	assert.Equal(t, 2, u.Messages)
	assert.Equal(t, 1, u.Stale)
	assert.Positive(t, u.Bytes)
	assert.Len(t, messageFiles(t, dir), 2, "usage must not delete stale messages")
}

func TestDefaultDir_HonorsXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/xdg/cache")
	dir, err := defaultDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg/cache", "scribe"), dir)
}

func TestMessageKey(t *testing.T) {
	base := MessageKey("http:https://agent.example", []string{"a", "b"})
	assert.Equal(t, base, MessageKey("http:https://agent.example", []string{"a", "b"}))
	assert.Len(t, base, 64)

	tests := []struct {
		name     string
		identity string
		chunks   []string
	}{
		{"different identity", "direct:anthropic:claude", []string{"a", "b"}},
		{"different order", "http:https://agent.example", []string{"b", "a"}},
		{"different boundaries", "http:https://agent.example", []string{"ab"}},
		{"extra chunk", "http:https://agent.example", []string{"a", "b", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, MessageKey(tt.identity, tt.chunks))
		})
	}
}
