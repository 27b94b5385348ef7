package fs

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

func TestFSBackend_BasicOps(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: tmp})
	require.NoError(t, err)

	ctx := context.Background()
	key := "nested/dir/avatar.png"
	data := []byte("hello fs")

	require.NoError(t, backend.Upload(ctx, key, bytes.NewReader(data), "image/png"))

	meta, err := backend.Stat(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), meta.Size)
	assert.Equal(t, "image/png", meta.ContentType)
	assert.Len(t, meta.ETag, 32)

	rc, err := backend.Download(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data, got)

	require.NoError(t, backend.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(tmp, key))
	assert.True(t, os.IsNotExist(err))

	// Empty parent directories are removed with the last file.
	_, err = os.Stat(filepath.Join(tmp, "nested"))
	assert.True(t, os.IsNotExist(err))
}

func TestFSBackend_NotFound(t *testing.T) {
	backend, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = backend.Stat(ctx, "missing.txt")
	assert.ErrorIs(t, err, portfolio.ErrNotFound)

	_, err = backend.Download(ctx, "missing.txt")
	assert.ErrorIs(t, err, portfolio.ErrNotFound)

	assert.ErrorIs(t, backend.Delete(ctx, "missing.txt"), portfolio.ErrNotFound)
}

func TestFSBackend_RejectsEscapingKeys(t *testing.T) {
	backend, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	err = backend.Upload(context.Background(), "../outside.txt", bytes.NewReader([]byte("x")), "")
	assert.Error(t, err)
}

func TestFSBackend_DownloadURL(t *testing.T) {
	ctx := context.Background()

	backend, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	u, err := backend.GetDownloadURL(ctx, "a.png")
	require.NoError(t, err)
	assert.Empty(t, u)

	backend, err = New(Config{BaseDir: t.TempDir(), URLPrefix: "https://static.example.com/"})
	require.NoError(t, err)
	u, err = backend.GetDownloadURL(ctx, "a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://static.example.com/a.png", u)
}

func TestNew_RequiresBaseDir(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
