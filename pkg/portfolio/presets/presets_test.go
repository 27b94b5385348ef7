package presets

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

func TestNewDevelopment(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "dev-data")

	svc, cleanup, err := NewDevelopment(WithDevDataDir(dataDir))
	require.NoError(t, err)
	require.NotNil(t, cleanup)

	ctx := context.Background()
	project, err := svc.CreateProject(ctx, portfolio.CreateProjectRequest{
		Title:       "Dev project",
		Description: "Stored in SQLite",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, project.DisplayOrder)

	asset, err := svc.UploadAsset(ctx, portfolio.UploadAssetRequest{
		FileName: "hello.txt",
		Reader:   strings.NewReader("Hello Development!"),
	})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/assets/"+asset.Key, asset.URL)

	_, err = os.Stat(filepath.Join(dataDir, "portfolio.db"))
	require.NoError(t, err)

	cleanup()

	_, err = os.Stat(dataDir)
	assert.True(t, os.IsNotExist(err), "data directory should be removed after cleanup")
}

func TestNewTesting(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		svc := NewTesting(t)
		ctx := context.Background()

		profile, err := svc.GetProfile(ctx)
		require.NoError(t, err)
		assert.Nil(t, profile)

		projects, err := svc.ListProjects(ctx)
		require.NoError(t, err)
		assert.Empty(t, projects)
	})

	t.Run("isolated", func(t *testing.T) {
		a := NewTesting(t)
		b := NewTesting(t)
		ctx := context.Background()

		_, err := a.CreateProject(ctx, portfolio.CreateProjectRequest{Title: "only in a", Description: "x"})
		require.NoError(t, err)

		projects, err := b.ListProjects(ctx)
		require.NoError(t, err)
		assert.Empty(t, projects)
	})

	t.Run("assets", func(t *testing.T) {
		svc := NewTesting(t)
		ctx := context.Background()

		asset, err := svc.UploadAsset(ctx, portfolio.UploadAssetRequest{
			FileName: "note.txt",
			Reader:   strings.NewReader("memory"),
		})
		require.NoError(t, err)

		rc, _, err := svc.DownloadAsset(ctx, asset.Key)
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "memory", string(data))
	})
}

func TestWithTestFixtures(t *testing.T) {
	svc := NewTesting(t, WithTestFixtures())
	ctx := context.Background()

	profile, err := svc.GetProfile(ctx)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Ada Lovelace", profile.Name)

	featured, err := svc.ListFeaturedProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, featured, 2)

	posts, err := svc.ListPublishedPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	draft, err := svc.GetPublishedPostBySlug(ctx, "unfinished-thoughts")
	require.NoError(t, err)
	assert.Nil(t, draft)
}
