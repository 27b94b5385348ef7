package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
	"github.com/tendant/simple-portfolio/pkg/portfolio/repo/repotest"
	"github.com/tendant/simple-portfolio/pkg/portfolio/repo/sqlite"
)

func newTestRepository(t *testing.T) portfolio.Repository {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlite.Migrate(ctx, db))
	return sqlite.New(db)
}

func TestSQLiteRepository_Contract(t *testing.T) {
	repotest.Run(t, newTestRepository)
}

func TestSQLiteRepository_SlugConflictCarriesValue(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.CreatePost(ctx, &portfolio.Post{Title: "Dup", Slug: "dup", Content: "c", CreatedAt: now, UpdatedAt: now}))

	err := repo.CreatePost(ctx, &portfolio.Post{Title: "Dup!", Slug: "dup", Content: "c", CreatedAt: now, UpdatedAt: now})
	var conflict *portfolio.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "slug", conflict.Field)
	assert.Equal(t, "dup", conflict.Value)
}

func TestSQLiteRepository_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "portfolio.db")

	db, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, sqlite.Migrate(ctx, db))

	now := time.Date(2024, 5, 1, 8, 30, 0, 123456789, time.UTC)
	project := &portfolio.Project{Title: "Durable", Description: "d", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, sqlite.New(db).CreateProject(ctx, project, true))
	require.NoError(t, db.Close())

	db, err = sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()
	// Migrating an up-to-date database is a no-op.
	require.NoError(t, sqlite.Migrate(ctx, db))

	got, err := sqlite.New(db).GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Durable", got.Title)
	assert.Equal(t, 1, got.DisplayOrder)
	assert.True(t, now.Equal(got.CreatedAt), "nanosecond timestamps round-trip")
}
