// internal/storage/media_test.go
package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) (*LocalMediaStore, string) {
	t.Helper()
	base := t.TempDir()
	return NewLocalMediaStore(base, zap.NewNop()), base
}

func TestSavePhoto(t *testing.T) {
	store, base := newTestStore(t)

	path, err := store.SavePhoto("628512340001@c.us", []byte("jpeg-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, base))
	assert.Equal(t, ".jpg", filepath.Ext(path))
	assert.Contains(t, path, "628512340001@c.us")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), content)
}

func TestSavePhoto_DistinctNamesPerCall(t *testing.T) {
	store, _ := newTestStore(t)

	first, err := store.SavePhoto("628512340001@c.us", []byte("a"))
	require.NoError(t, err)
	second, err := store.SavePhoto("628512340001@c.us", []byte("b"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, filepath.Dir(first), filepath.Dir(second))
}

func TestSavePhoto_EmptyPayload(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.SavePhoto("628512340001@c.us", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty media payload")
}

func TestSavePhoto_SanitizesParticipant(t *testing.T) {
	store, base := newTestStore(t)

	path, err := store.SavePhoto("../../etc", []byte("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, base), "traversal characters must be neutralized")

	path, err = store.SavePhoto("", []byte("x"))
	require.NoError(t, err)
	assert.Contains(t, path, "unknown")
}

func TestValidatePath(t *testing.T) {
	store, base := newTestStore(t)

	assert.NoError(t, store.ValidatePath(filepath.Join(base, "a", "b.jpg")))

	err := store.ValidatePath(filepath.Join(base, "..", "outside.jpg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes base directory")
}
