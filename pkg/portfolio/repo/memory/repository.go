package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

// Repository implements portfolio.Repository using in-memory storage
type Repository struct {
	mu            sync.RWMutex
	profile       *portfolio.Profile
	projects      map[int64]*portfolio.Project
	posts         map[int64]*portfolio.Post
	postsBySlug   map[string]int64
	nextProjectID int64
	nextPostID    int64
}

// New creates a new in-memory repository
func New() portfolio.Repository {
	return &Repository{
		projects:      make(map[int64]*portfolio.Project),
		posts:         make(map[int64]*portfolio.Post),
		postsBySlug:   make(map[string]int64),
		nextProjectID: 1,
		nextPostID:    1,
	}
}

func copyProject(p *portfolio.Project) *portfolio.Project {
	c := *p
	c.TechStack = clonePtr(p.TechStack)
	c.ProjectURL = clonePtr(p.ProjectURL)
	c.GithubURL = clonePtr(p.GithubURL)
	c.ImageURL = clonePtr(p.ImageURL)
	return &c
}

func copyPost(p *portfolio.Post) *portfolio.Post {
	c := *p
	c.Excerpt = clonePtr(p.Excerpt)
	c.Tags = clonePtr(p.Tags)
	c.ReadingTimeMinutes = clonePtr(p.ReadingTimeMinutes)
	c.PublishedAt = clonePtr(p.PublishedAt)
	return &c
}

func copyProfile(p *portfolio.Profile) *portfolio.Profile {
	c := *p
	c.Email = clonePtr(p.Email)
	c.GithubURL = clonePtr(p.GithubURL)
	c.LinkedinURL = clonePtr(p.LinkedinURL)
	c.WebsiteURL = clonePtr(p.WebsiteURL)
	c.ProfileImageURL = clonePtr(p.ProfileImageURL)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Profile operations

func (r *Repository) GetProfile(ctx context.Context) (*portfolio.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.profile == nil {
		return nil, portfolio.ErrNotFound
	}
	return copyProfile(r.profile), nil
}

func (r *Repository) CreateProfile(ctx context.Context, profile *portfolio.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.profile != nil {
		return &portfolio.ConflictError{Entity: "profile", Field: "id", Value: "singleton"}
	}
	profile.ID = portfolio.ProfileID
	r.profile = copyProfile(profile)
	return nil
}

func (r *Repository) UpdateProfile(ctx context.Context, profile *portfolio.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.profile == nil {
		return portfolio.ErrNotFound
	}
	profile.ID = portfolio.ProfileID
	r.profile = copyProfile(profile)
	return nil
}

// Project operations

func sortProjects(projects []*portfolio.Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		a, b := projects[i], projects[j]
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder < b.DisplayOrder
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func (r *Repository) ListProjects(ctx context.Context, filter portfolio.ProjectFilter) ([]*portfolio.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*portfolio.Project, 0, len(r.projects))
	for _, p := range r.projects {
		if filter.FeaturedOnly && !p.IsFeatured {
			continue
		}
		result = append(result, copyProject(p))
	}
	sortProjects(result)
	return result, nil
}

func (r *Repository) GetProject(ctx context.Context, id int64) (*portfolio.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[id]
	if !ok {
		return nil, portfolio.ErrNotFound
	}
	return copyProject(p), nil
}

func (r *Repository) CreateProject(ctx context.Context, project *portfolio.Project, autoOrder bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if autoOrder {
		project.DisplayOrder = 1
		if len(r.projects) > 0 {
			project.DisplayOrder = r.maxOrderLocked() + 1
		}
	}

	project.ID = r.nextProjectID
	r.nextProjectID++
	r.projects[project.ID] = copyProject(project)
	return nil
}

// maxOrderLocked requires r.mu held and at least one project.
func (r *Repository) maxOrderLocked() int {
	first := true
	highest := 0
	for _, p := range r.projects {
		if first || p.DisplayOrder > highest {
			highest = p.DisplayOrder
			first = false
		}
	}
	return highest
}

func (r *Repository) UpdateProject(ctx context.Context, project *portfolio.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[project.ID]; !ok {
		return portfolio.ErrNotFound
	}
	r.projects[project.ID] = copyProject(project)
	return nil
}

func (r *Repository) DeleteProject(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[id]; !ok {
		return portfolio.ErrNotFound
	}
	delete(r.projects, id)
	return nil
}

func (r *Repository) SearchProjects(ctx context.Context, query string) ([]*portfolio.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m := newMatcher(query)
	result := make([]*portfolio.Project, 0)
	for _, p := range r.projects {
		if m.any(p.Title, p.Description, deref(p.TechStack)) {
			result = append(result, copyProject(p))
		}
	}
	sortProjects(result)
	return result, nil
}

// Post operations

func sortPublished(posts []*portfolio.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i].PublishedAt, posts[j].PublishedAt
		switch {
		case a == nil && b == nil:
			return posts[i].ID < posts[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.After(*b)
		default:
			return posts[i].ID > posts[j].ID
		}
	})
}

func (r *Repository) ListPublishedPosts(ctx context.Context) ([]*portfolio.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*portfolio.Post, 0, len(r.posts))
	for _, p := range r.posts {
		if p.IsPublished {
			result = append(result, copyPost(p))
		}
	}
	sortPublished(result)
	return result, nil
}

func (r *Repository) GetPost(ctx context.Context, id int64) (*portfolio.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, portfolio.ErrNotFound
	}
	return copyPost(p), nil
}

func (r *Repository) GetPostBySlug(ctx context.Context, slug string) (*portfolio.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.postsBySlug[slug]
	if !ok {
		return nil, portfolio.ErrNotFound
	}
	return copyPost(r.posts[id]), nil
}

func slugConflict(slug string) error {
	return &portfolio.ConflictError{Entity: "Blog post", Field: "slug", Value: slug}
}

func (r *Repository) CreatePost(ctx context.Context, post *portfolio.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.postsBySlug[post.Slug]; taken {
		return slugConflict(post.Slug)
	}

	post.ID = r.nextPostID
	r.nextPostID++
	r.posts[post.ID] = copyPost(post)
	r.postsBySlug[post.Slug] = post.ID
	return nil
}

func (r *Repository) UpdatePost(ctx context.Context, post *portfolio.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.posts[post.ID]
	if !ok {
		return portfolio.ErrNotFound
	}
	if owner, taken := r.postsBySlug[post.Slug]; taken && owner != post.ID {
		return slugConflict(post.Slug)
	}

	delete(r.postsBySlug, existing.Slug)
	r.posts[post.ID] = copyPost(post)
	r.postsBySlug[post.Slug] = post.ID
	return nil
}

func (r *Repository) DeletePost(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok {
		return portfolio.ErrNotFound
	}
	delete(r.postsBySlug, p.Slug)
	delete(r.posts, id)
	return nil
}

func (r *Repository) SearchPublishedPosts(ctx context.Context, query string) ([]*portfolio.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m := newMatcher(query)
	result := make([]*portfolio.Post, 0)
	for _, p := range r.posts {
		if !p.IsPublished {
			continue
		}
		if m.any(p.Title, p.Content, deref(p.Excerpt), deref(p.Tags)) {
			result = append(result, copyPost(p))
		}
	}
	sortPublished(result)
	return result, nil
}

// matcher does case-insensitive substring containment using Unicode case folding.
type matcher struct {
	fold   cases.Caser
	needle string
}

func newMatcher(query string) *matcher {
	fold := cases.Fold()
	return &matcher{fold: fold, needle: fold.String(query)}
}

func (m *matcher) any(fields ...string) bool {
	for _, f := range fields {
		if f != "" && strings.Contains(m.fold.String(f), m.needle) {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
