package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutThenGet(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "cache"))

	require.NoError(t, s.Put("abc1234", "summary text"))
	got, ok := s.Get("abc1234")
	require.True(t, ok)
	assert.Equal(t, "summary text", got)
}

func TestStore_GetMissingIsAMiss(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "cache"))

	_, ok := s.Get("nope")
	assert.False(t, ok)
}

func TestStore_PutLeavesNoTempFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	s := NewStore(dir)
	require.NoError(t, s.Put("abc1234", "one"))
	require.NoError(t, s.Put("abc1234", "two"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "stray temp file: %s", e.Name())
	}

	got, ok := s.Get("abc1234")
	require.True(t, ok)
	assert.Equal(t, "two", got, "later Put wins")
}

func TestStore_Clear(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, s.Put("a", "1"))
	require.NoError(t, s.Put("b", "2"))

	require.NoError(t, s.Clear())

	_, ok := s.Get("a")
	assert.False(t, ok)
	_, ok = s.Get("b")
	assert.False(t, ok)
}

func TestStore_ClearMissingDirIsNoop(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "never-created"))
	assert.NoError(t, s.Clear())
}
