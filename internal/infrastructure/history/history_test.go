package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	store := NewStore(10)

	_, err := store.Expand("!!")
	assert.True(t, errors.Is(err, ErrNoHistory))
	_, err = store.Expand("!1")
	assert.True(t, errors.Is(err, ErrNoHistory))

	require.NoError(t, store.Add("ls -la"))
	require.NoError(t, store.Add("  "))
	require.NoError(t, store.Add("pwd"))

	got, err := store.Expand("!!")
	require.NoError(t, err)
	assert.Equal(t, "pwd", got)

	got, err = store.Expand(" !1 ")
	require.NoError(t, err)
	assert.Equal(t, "ls -la", got)

	_, err = store.Expand("!3")
	assert.EqualError(t, err, "Invalid history number")
	_, err = store.Expand("!0")
	assert.True(t, errors.Is(err, ErrHistoryIndex))
	_, err = store.Expand("!ls")
	assert.EqualError(t, err, "Unknown history syntax")
	_, err = store.Expand("!")
	assert.True(t, errors.Is(err, ErrHistorySyntax))
}

func TestStoreDropsOldest(t *testing.T) {
	store := NewStore(2)
	for _, line := range []string{"a", "b", "c"} {
		require.NoError(t, store.Add(line))
	}
	assert.Equal(t, []string{"b", "c"}, store.Entries())
	assert.Equal(t, 2, store.Len())
}

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")

	store, err := OpenFileStore(path, 100)
	require.NoError(t, err)
	require.NoError(t, store.Add("echo one"))
	require.NoError(t, store.Add("echo two"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "echo one\necho two\n", string(raw))

	reopened, err := OpenFileStore(path, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo two"}, reopened.Entries())
}

func TestIsReplay(t *testing.T) {
	assert.True(t, IsReplay("!!"))
	assert.True(t, IsReplay(" !4"))
	assert.False(t, IsReplay("echo !"))
}
