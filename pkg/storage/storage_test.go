package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDisk_RoundTrip(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	d := NewLocal(root, "http://cdn.test/storage/")

	require.NoError(t, d.Put(ctx, "products/images/a.png", []byte("png"), "image/png"))
	assert.True(t, d.Exists(ctx, "products/images/a.png"))

	got, err := d.Get(ctx, "products/images/a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), got)

	_, err = os.Stat(filepath.Join(root, "products", "images", "a.png.part"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "temp file must not linger")

	assert.Equal(t, "http://cdn.test/storage/products/images/a.png", d.URL("products/images/a.png"))

	require.NoError(t, d.Delete(ctx, "products/images/a.png"))
	assert.False(t, d.Exists(ctx, "products/images/a.png"))
	require.NoError(t, d.Delete(ctx, "products/images/a.png"), "deleting twice is fine")
}

func TestLocalDisk_GetMissing(t *testing.T) {
	d := NewLocal(t.TempDir(), "http://x")
	_, err := d.Get(context.Background(), "nope.glb")
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestLocalDisk_PathStaysInsideRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	d := NewLocal(filepath.Join(root, "disk"), "http://x")

	require.NoError(t, d.Put(ctx, "../../escape.txt", []byte("x"), ""))
	_, err := os.Stat(filepath.Join(root, "escape.txt"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.True(t, d.Exists(ctx, "escape.txt"))
}

func TestManager_RegisterAndDefault(t *testing.T) {
	ctx := context.Background()
	RegisterDisk("memtest", NewLocal(t.TempDir(), "http://m"))
	SetDefault("memtest")
	t.Cleanup(func() { SetDefault("local") })

	require.NoError(t, Put(ctx, "k.txt", []byte("v"), "text/plain"))
	got, err := Get(ctx, "k.txt")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
	assert.Equal(t, "http://m/k.txt", URL("k.txt"))

	root, ok := LocalRoot()
	assert.True(t, ok)
	assert.NotEmpty(t, root)

	_, err = Use("missing-disk")
	assert.Error(t, err)
}
