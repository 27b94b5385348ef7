// Package repotest holds the behavioral checks every portfolio.Repository
// implementation must pass. Backend test files call Run with a factory that
// returns an empty repository.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

// Factory returns an empty repository for one subtest.
type Factory func(t *testing.T) portfolio.Repository

// Run executes the full repository contract against newRepo.
func Run(t *testing.T, newRepo Factory) {
	t.Run("Profile", func(t *testing.T) { testProfile(t, newRepo(t)) })
	t.Run("ProjectOrdering", func(t *testing.T) { testProjectOrdering(t, newRepo(t)) })
	t.Run("ProjectCRUD", func(t *testing.T) { testProjectCRUD(t, newRepo(t)) })
	t.Run("ProjectAutoOrderConcurrent", func(t *testing.T) { testProjectAutoOrderConcurrent(t, newRepo(t)) })
	t.Run("PostCRUD", func(t *testing.T) { testPostCRUD(t, newRepo(t)) })
	t.Run("PostSlugConflict", func(t *testing.T) { testPostSlugConflict(t, newRepo(t)) })
	t.Run("PublishedOrdering", func(t *testing.T) { testPublishedOrdering(t, newRepo(t)) })
	t.Run("Search", func(t *testing.T) { testSearch(t, newRepo(t)) })
}

// base is a fixed instant with microsecond precision so every backend
// round-trips it exactly.
var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return base.Add(time.Duration(minutes) * time.Minute)
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func newProject(title string, created time.Time) *portfolio.Project {
	return &portfolio.Project{
		Title:       title,
		Description: title + " description",
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func newPost(title, slug string, published *time.Time, created time.Time) *portfolio.Post {
	return &portfolio.Post{
		Title:       title,
		Slug:        slug,
		Content:     title + " content",
		IsPublished: published != nil,
		PublishedAt: published,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func titles(projects []*portfolio.Project) []string {
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.Title)
	}
	return out
}

func postTitles(posts []*portfolio.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Title)
	}
	return out
}

func testProfile(t *testing.T, repo portfolio.Repository) {
	ctx := context.Background()

	_, err := repo.GetProfile(ctx)
	assert.ErrorIs(t, err, portfolio.ErrNotFound)

	err = repo.UpdateProfile(ctx, &portfolio.Profile{Name: "x", Title: "y", Bio: "z", UpdatedAt: at(0)})
	assert.ErrorIs(t, err, portfolio.ErrNotFound)

	profile := &portfolio.Profile{
		Name:      "Ada",
		Title:     "Engineer",
		Bio:       "Writes programs",
		Email:     strPtr("ada@example.com"),
		UpdatedAt: at(0),
	}
	require.NoError(t, repo.CreateProfile(ctx, profile))
	assert.Equal(t, portfolio.ProfileID, profile.ID)

	got, err := repo.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	require.NotNil(t, got.Email)
	assert.Equal(t, "ada@example.com", *got.Email)
	assert.Nil(t, got.GithubURL)
	assert.True(t, at(0).Equal(got.UpdatedAt))

	err = repo.CreateProfile(ctx, &portfolio.Profile{Name: "B", Title: "B", Bio: "B", UpdatedAt: at(1)})
	assert.ErrorIs(t, err, portfolio.ErrConflict)

	got.Email = nil
	got.GithubURL = strPtr("https://github.com/ada")
	got.UpdatedAt = at(5)
	require.NoError(t, repo.UpdateProfile(ctx, got))

	again, err := repo.GetProfile(ctx)
	require.NoError(t, err)
	assert.Nil(t, again.Email)
	require.NotNil(t, again.GithubURL)
	assert.Equal(t, "https://github.com/ada", *again.GithubURL)
	assert.True(t, at(5).Equal(again.UpdatedAt))
}

func testProjectOrdering(t *testing.T, repo portfolio.Repository) {
	ctx := context.Background()

	first := newProject("first", at(0))
	require.NoError(t, repo.CreateProject(ctx, first, true))
	assert.Equal(t, 1, first.DisplayOrder)
	assert.NotZero(t, first.ID)

	second := newProject("second", at(1))
	require.NoError(t, repo.CreateProject(ctx, second, true))
	assert.Equal(t, 2, second.DisplayOrder)

	pinned := newProject("pinned", at(2))
	pinned.DisplayOrder = 10
	require.NoError(t, repo.CreateProject(ctx, pinned, false))
	assert.Equal(t, 10, pinned.DisplayOrder)

	after := newProject("after", at(3))
	require.NoError(t, repo.CreateProject(ctx, after, true))
	assert.Equal(t, 11, after.DisplayOrder)

	// Ties on display order fall back to creation time.
	tieLate := newProject("tie-late", at(20))
	tieLate.DisplayOrder = 2
	tieLate.IsFeatured = true
	require.NoError(t, repo.CreateProject(ctx, tieLate, false))

	tieEarly := newProject("tie-early", at(-20))
	tieEarly.DisplayOrder = 2
	tieEarly.IsFeatured = true
	require.NoError(t, repo.CreateProject(ctx, tieEarly, false))

	all, err := repo.ListProjects(ctx, portfolio.ProjectFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "tie-early", "second", "tie-late", "pinned", "after"}, titles(all))

	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		require.LessOrEqual(t, prev.DisplayOrder, cur.DisplayOrder)
		if prev.DisplayOrder == cur.DisplayOrder {
			assert.False(t, cur.CreatedAt.Before(prev.CreatedAt))
		}
	}

	featured, err := repo.ListProjects(ctx, portfolio.ProjectFilter{FeaturedOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"tie-early", "tie-late"}, titles(featured))
}

func testProjectCRUD(t *testing.T, repo portfolio.Repository) {
	ctx := context.Background()

	empty, err := repo.ListProjects(ctx, portfolio.ProjectFilter{})
	require.NoError(t, err)
	assert.Empty(t, empty)

	p := newProject("crud", at(0))
	p.TechStack = strPtr("Go, Postgres")
	p.ProjectURL = strPtr("https://example.com")
	require.NoError(t, repo.CreateProject(ctx, p, true))

	got, err := repo.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "crud", got.Title)
	require.NotNil(t, got.TechStack)
	assert.Equal(t, "Go, Postgres", *got.TechStack)
	assert.Nil(t, got.GithubURL)
	assert.False(t, got.IsFeatured)
	assert.True(t, at(0).Equal(got.CreatedAt))

	got.TechStack = nil
	got.IsFeatured = true
	got.DisplayOrder = 7
	got.UpdatedAt = at(9)
	require.NoError(t, repo.UpdateProject(ctx, got))

	updated, err := repo.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.TechStack)
	assert.True(t, updated.IsFeatured)
	assert.Equal(t, 7, updated.DisplayOrder)
	assert.True(t, at(9).Equal(updated.UpdatedAt))
	assert.True(t, at(0).Equal(updated.CreatedAt))

	missing := newProject("missing", at(0))
	missing.ID = 999999
	assert.ErrorIs(t, repo.UpdateProject(ctx, missing), portfolio.ErrNotFound)
	_, err = repo.GetProject(ctx, 999999)
	assert.ErrorIs(t, err, portfolio.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteProject(ctx, 999999), portfolio.ErrNotFound)

	require.NoError(t, repo.DeleteProject(ctx, p.ID))
	_, err = repo.GetProject(ctx, p.ID)
	assert.ErrorIs(t, err, portfolio.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteProject(ctx, p.ID), portfolio.ErrNotFound)
}

func testProjectAutoOrderConcurrent(t *testing.T, repo portfolio.Repository) {
	ctx := context.Background()
	const n = 16

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- repo.CreateProject(ctx, newProject(fmt.Sprintf("p%d", i), at(i)), true)
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	all, err := repo.ListProjects(ctx, portfolio.ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, all, n)

	seen := make(map[int]bool, n)
	for _, p := range all {
		assert.False(t, seen[p.DisplayOrder], "display order %d assigned twice", p.DisplayOrder)
		seen[p.DisplayOrder] = true
	}
	for i := 1; i <= n; i++ {
		assert.True(t, seen[i], "display order %d missing", i)
	}
}

func testPostCRUD(t *testing.T, repo portfolio.Repository) {
	ctx := context.Background()

	published := at(0)
	post := newPost("Hello", "hello", &published, at(0))
	post.Tags = strPtr("go,testing")
	post.ReadingTimeMinutes = intPtr(4)
	require.NoError(t, repo.CreatePost(ctx, post))
	assert.NotZero(t, post.ID)

	got, err := repo.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Slug)
	require.NotNil(t, got.PublishedAt)
	assert.True(t, published.Equal(*got.PublishedAt))
	require.NotNil(t, got.ReadingTimeMinutes)
	assert.Equal(t, 4, *got.ReadingTimeMinutes)
	assert.Nil(t, got.Excerpt)

	bySlug, err := repo.GetPostBySlug(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, post.ID, bySlug.ID)

	_, err = repo.GetPostBySlug(ctx, "nope")
	assert.ErrorIs(t, err, portfolio.ErrNotFound)

	got.Title = "Hello Again"
	got.Slug = "hello-again"
	got.IsPublished = false
	got.PublishedAt = nil
	got.ReadingTimeMinutes = nil
	got.UpdatedAt = at(3)
	require.NoError(t, repo.UpdatePost(ctx, got))

	_, err = repo.GetPostBySlug(ctx, "hello")
	assert.ErrorIs(t, err, portfolio.ErrNotFound)

	renamed, err := repo.GetPostBySlug(ctx, "hello-again")
	require.NoError(t, err)
	assert.False(t, renamed.IsPublished)
	assert.Nil(t, renamed.PublishedAt)
	assert.Nil(t, renamed.ReadingTimeMinutes)

	missing := newPost("x", "x", nil, at(0))
	missing.ID = 999999
	assert.ErrorIs(t, repo.UpdatePost(ctx, missing), portfolio.ErrNotFound)
	assert.ErrorIs(t, repo.DeletePost(ctx, 999999), portfolio.ErrNotFound)

	require.NoError(t, repo.DeletePost(ctx, post.ID))
	_, err = repo.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, portfolio.ErrNotFound)

	// The slug is free again after delete.
	require.NoError(t, repo.CreatePost(ctx, newPost("Hello Again", "hello-again", nil, at(5))))
}

func testPostSlugConflict(t *testing.T, repo portfolio.Repository) {
	ctx := context.Background()

	require.NoError(t, repo.CreatePost(ctx, newPost("One", "same", nil, at(0))))
	err := repo.CreatePost(ctx, newPost("One!", "same", nil, at(1)))
	assert.ErrorIs(t, err, portfolio.ErrConflict)

	other := newPost("Two", "two", nil, at(2))
	require.NoError(t, repo.CreatePost(ctx, other))
	other.Slug = "same"
	assert.ErrorIs(t, repo.UpdatePost(ctx, other), portfolio.ErrConflict)

	// Rewriting a post with its own slug is not a conflict.
	other.Slug = "two"
	other.Content = "changed"
	assert.NoError(t, repo.UpdatePost(ctx, other))
}

func testPublishedOrdering(t *testing.T, repo portfolio.Repository) {
	ctx := context.Background()

	oldest, middle, newest := at(0), at(10), at(20)
	require.NoError(t, repo.CreatePost(ctx, newPost("middle", "middle", &middle, at(0))))
	require.NoError(t, repo.CreatePost(ctx, newPost("draft", "draft", nil, at(1))))
	require.NoError(t, repo.CreatePost(ctx, newPost("oldest", "oldest", &oldest, at(2))))
	require.NoError(t, repo.CreatePost(ctx, newPost("newest", "newest", &newest, at(3))))

	// Published without a timestamp sorts after every dated post.
	undated := newPost("undated", "undated", nil, at(4))
	undated.IsPublished = true
	require.NoError(t, repo.CreatePost(ctx, undated))

	posts, err := repo.ListPublishedPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"newest", "middle", "oldest", "undated"}, postTitles(posts))
}

func testSearch(t *testing.T, repo portfolio.Repository) {
	ctx := context.Background()

	goAPI := newProject("Go API", at(0))
	goAPI.Description = "A REST service"
	goAPI.TechStack = strPtr("Go, PostgreSQL, Docker")
	require.NoError(t, repo.CreateProject(ctx, goAPI, true))

	site := newProject("Portfolio Site", at(1))
	site.Description = "Static site with 100% lighthouse score"
	require.NoError(t, repo.CreateProject(ctx, site, true))

	published := at(5)
	live := newPost("Learning Rust", "learning-rust", &published, at(0))
	live.Excerpt = strPtr("Ownership explained")
	live.Tags = strPtr("rust,systems")
	require.NoError(t, repo.CreatePost(ctx, live))

	draft := newPost("Secret Rust Draft", "secret-rust-draft", nil, at(1))
	draft.Tags = strPtr("rust")
	require.NoError(t, repo.CreatePost(ctx, draft))

	tests := []struct {
		query    string
		projects []string
		posts    []string
	}{
		{"go api", []string{"Go API"}, nil},
		{"POSTGRES", []string{"Go API"}, nil},
		{"rest SERVICE", []string{"Go API"}, nil},
		{"rust", nil, []string{"Learning Rust"}},
		{"ownership", nil, []string{"Learning Rust"}},
		{"systems", nil, []string{"Learning Rust"}},
		{"secret", nil, nil},
		{"100%", []string{"Portfolio Site"}, nil},
		{"%", []string{"Portfolio Site"}, nil},
		{"_", nil, nil},
		{"nothing matches this", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			projects, err := repo.SearchProjects(ctx, tt.query)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.projects, titles(projects))

			posts, err := repo.SearchPublishedPosts(ctx, tt.query)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.posts, postTitles(posts))
		})
	}
}
