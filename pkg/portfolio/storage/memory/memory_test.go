package memory_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
	"github.com/tendant/simple-portfolio/pkg/portfolio/storage/memory"
)

func TestMemoryBackend(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()

	t.Run("upload and download", func(t *testing.T) {
		require.NoError(t, backend.Upload(ctx, "a.png", strings.NewReader("png-bytes"), "image/png"))

		rc, err := backend.Download(ctx, "a.png")
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(data))

		meta, err := backend.Stat(ctx, "a.png")
		require.NoError(t, err)
		assert.Equal(t, int64(9), meta.Size)
		assert.Equal(t, "image/png", meta.ContentType)
		assert.NotEmpty(t, meta.ETag)
	})

	t.Run("default content type", func(t *testing.T) {
		require.NoError(t, backend.Upload(ctx, "blob", strings.NewReader("x"), ""))
		meta, err := backend.Stat(ctx, "blob")
		require.NoError(t, err)
		assert.Equal(t, "application/octet-stream", meta.ContentType)
	})

	t.Run("missing keys", func(t *testing.T) {
		_, err := backend.Download(ctx, "missing")
		assert.ErrorIs(t, err, portfolio.ErrNotFound)
		_, err = backend.Stat(ctx, "missing")
		assert.ErrorIs(t, err, portfolio.ErrNotFound)
		assert.ErrorIs(t, backend.Delete(ctx, "missing"), portfolio.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, backend.Upload(ctx, "gone", strings.NewReader("x"), "text/plain"))
		require.NoError(t, backend.Delete(ctx, "gone"))
		_, err := backend.Stat(ctx, "gone")
		assert.ErrorIs(t, err, portfolio.ErrNotFound)
	})

	t.Run("no direct url", func(t *testing.T) {
		url, err := backend.GetDownloadURL(ctx, "a.png")
		require.NoError(t, err)
		assert.Empty(t, url)
	})
}
