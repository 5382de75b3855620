package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/planets/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKernelKey(t *testing.T) {
	a := KernelKey("https://example.test/pck.tpc", "")
	b := KernelKey("https://example.test/pck.tpc", "abc")
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, KernelKey("https://example.test/pck.tpc", ""))
	assert.Contains(t, a, "planets:v1:")
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(0, time.Minute)

	data := []byte("BODY399_RADII = ( 1 2 3 )")
	require.NoError(t, c.Set("k", data, 0))
	data[0] = 'X'

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, byte('B'), got[0], "stored value is a copy")
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Delete("k"))
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestDiskCache_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, 0)

	require.NoError(t, c.Set("planets:v1:abc", []byte("kernel"), 0))

	got, ok := c.Get("planets:v1:abc")
	require.True(t, ok)
	assert.Equal(t, "kernel", string(got))

	// a fresh instance over the same directory sees the entry
	got, ok = NewDiskCache(dir, 0).Get("planets:v1:abc")
	require.True(t, ok)
	assert.Equal(t, "kernel", string(got))
}

func TestDiskCache_Expired(t *testing.T) {
	c := NewDiskCache(t.TempDir(), 0)
	require.NoError(t, c.Set("k", []byte("v"), time.Nanosecond))
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
	_, err := os.Stat(c.path("k"))
	assert.True(t, os.IsNotExist(err), "expired entry removed")
}

func TestDiskCache_Corrupt(t *testing.T) {
	c := NewDiskCache(t.TempDir(), 0)
	require.NoError(t, c.Set("k", []byte("v"), 0))
	require.NoError(t, os.WriteFile(c.path("k"), []byte("{not json"), 0o644))

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestDiskCache_ClearKeepsOtherFiles(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, 0)
	require.NoError(t, c.Set("a", []byte("1"), 0))
	require.NoError(t, c.Set("b", []byte("2"), 0))
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("keep"), 0o644))

	require.NoError(t, c.Clear())

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, err := os.Stat(other)
	assert.NoError(t, err)

	assert.NoError(t, c.Delete("missing"))
	assert.NoError(t, NewDiskCache(filepath.Join(dir, "nope"), 0).Clear())
}

func TestLayeredCache_Promotes(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, 0)
	require.NoError(t, c.Set("k", []byte("v"), 0))

	// new process: empty memory, warm disk
	fresh := NewLayeredCache(time.Minute, dir, 0)
	got, ok := fresh.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", string(got))

	mem := fresh.memory.(*MemoryCache)
	assert.Equal(t, 1, mem.Len())

	require.NoError(t, fresh.Delete("k"))
	_, ok = fresh.Get("k")
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	_, ok := New(model.CacheConfig{Enabled: false, Dir: t.TempDir()}).(Nop)
	assert.True(t, ok)

	c := New(model.CacheConfig{Enabled: true, Dir: t.TempDir(), MemoryTTL: time.Minute})
	require.NoError(t, c.Set("k", []byte("v"), 0))
	_, hit := c.Get("k")
	assert.True(t, hit)
}
