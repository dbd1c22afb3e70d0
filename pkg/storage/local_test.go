package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDiskLifecycle(t *testing.T) {
	ctx := context.Background()
	d, err := NewLocal(t.TempDir(), "http://localhost:8080/uploads/")
	require.NoError(t, err)

	require.NoError(t, d.Put(ctx, "uploads/a.png", []byte("png")))
	assert.True(t, d.Exists(ctx, "uploads/a.png"))

	data, err := d.Get(ctx, "uploads/a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)
	assert.Equal(t, "http://localhost:8080/uploads/uploads/a.png", d.URL("uploads/a.png"))

	require.NoError(t, d.Delete(ctx, "uploads/a.png"))
	assert.False(t, d.Exists(ctx, "uploads/a.png"))
	require.NoError(t, d.Delete(ctx, "uploads/a.png"), "deleting a missing file is not an error")

	_, err = d.Get(ctx, "uploads/a.png")
	assert.ErrorIs(t, err, ErrNotExist)

	entries, err := os.ReadDir(filepath.Join(d.Root(), "uploads"))
	require.NoError(t, err)
	assert.Empty(t, entries, "no temp files left behind")
}

func TestLocalDiskRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	d, err := NewLocal(t.TempDir(), "")
	require.NoError(t, err)

	assert.Error(t, d.Put(ctx, "../escape.txt", []byte("x")))
	assert.Error(t, d.Delete(ctx, "../../etc/passwd"))
	assert.False(t, d.Exists(ctx, "../"))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "ftp"})
	assert.Error(t, err)
}
