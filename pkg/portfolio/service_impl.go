package portfolio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tendant/simple-portfolio/pkg/portfolio/slug"
)

// Fallback values used when the profile is created implicitly.
const (
	DefaultProfileName  = "John Doe"
	DefaultProfileTitle = "Software Developer"
	DefaultProfileBio   = "Passionate developer building amazing things."
)

// profileDefaults fills required profile fields absent or empty on creation.
var profileDefaults = map[string]string{
	"name":  DefaultProfileName,
	"title": DefaultProfileTitle,
	"bio":   DefaultProfileBio,
}

// Entity names used in NotFound messages.
const (
	entityProject = "Project"
	entityPost    = "Blog post"
	entityAsset   = "Asset"
)

// service implements the Service interface
type service struct {
	repository Repository
	assets     AssetStore
	urls       URLStrategy
	eventSink  EventSink
	logger     *slog.Logger
	now        func() time.Time
	newKey     func(fileName string) string
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithAssetStore enables asset upload and download
func WithAssetStore(store AssetStore) Option {
	return func(s *service) {
		s.assets = store
	}
}

// WithURLStrategy sets how asset URLs are built. Without one the asset
// store's own download URL is used.
func WithURLStrategy(strategy URLStrategy) Option {
	return func(s *service) {
		s.urls = strategy
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithLogger sets the logger used for non-fatal failures
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithClock overrides the time source. Timestamps are always stored in UTC.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// WithAssetKeyFunc overrides asset key generation
func WithAssetKeyFunc(fn func(fileName string) string) Option {
	return func(s *service) {
		s.newKey = fn
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		eventSink: NewNoopEventSink(),
		logger:    slog.Default(),
		now:       time.Now,
		newKey:    NewAssetKey,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}

	return s, nil
}

func (s *service) timestamp() time.Time {
	return s.now().UTC()
}

func (s *service) notify(ctx context.Context, event string, fn func() error) {
	if err := fn(); err != nil {
		s.logger.WarnContext(ctx, "event sink failed", "event", event, "err", err)
	}
}

func checkID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	return nil
}

func notFound(entity string, id any, err error) error {
	if errors.Is(err, ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return err
}

// nullIfEmpty treats empty optional text as absent.
func nullIfEmpty(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	v := *p
	return &v
}

// Profile operations

func (s *service) GetProfile(ctx context.Context) (*Profile, error) {
	profile, err := s.repository.GetProfile(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStore("get profile", err)
	}
	return profile, nil
}

func (s *service) UpsertProfile(ctx context.Context, req UpsertProfileRequest) (*Profile, error) {
	existing, err := s.repository.GetProfile(ctx)
	if errors.Is(err, ErrNotFound) {
		created, createErr := s.createProfile(ctx, req)
		if !errors.Is(createErr, ErrConflict) {
			return created, createErr
		}
		// Another request created the profile first; merge into it instead.
		existing, err = s.repository.GetProfile(ctx)
	}
	if err != nil {
		return nil, wrapStore("get profile", err)
	}
	return s.mergeProfile(ctx, existing, req)
}

func profileText(field string, v Optional[string]) string {
	if s, ok := v.Get(); ok && s != "" {
		return s
	}
	return profileDefaults[field]
}

func (s *service) createProfile(ctx context.Context, req UpsertProfileRequest) (*Profile, error) {
	profile := &Profile{
		ID:              ProfileID,
		Name:            profileText("name", req.Name),
		Title:           profileText("title", req.Title),
		Bio:             profileText("bio", req.Bio),
		Email:           req.Email.Ptr(),
		GithubURL:       req.GithubURL.Ptr(),
		LinkedinURL:     req.LinkedinURL.Ptr(),
		WebsiteURL:      req.WebsiteURL.Ptr(),
		ProfileImageURL: req.ProfileImageURL.Ptr(),
		UpdatedAt:       s.timestamp(),
	}

	if err := s.repository.CreateProfile(ctx, profile); err != nil {
		return nil, wrapStore("create profile", err)
	}

	s.notify(ctx, "profile.updated", func() error { return s.eventSink.ProfileUpdated(ctx, profile) })
	return profile, nil
}

// mergeProfile applies the fields present in req. Nothing is written and
// the timestamp is kept when no stored value would change.
func (s *service) mergeProfile(ctx context.Context, existing *Profile, req UpsertProfileRequest) (*Profile, error) {
	if req.empty() {
		return existing, nil
	}

	merged := *existing
	profile := &merged
	if v, ok := req.Name.Get(); ok {
		profile.Name = v
	}
	if v, ok := req.Title.Get(); ok {
		profile.Title = v
	}
	if v, ok := req.Bio.Get(); ok {
		profile.Bio = v
	}
	req.Email.apply(&profile.Email)
	req.GithubURL.apply(&profile.GithubURL)
	req.LinkedinURL.apply(&profile.LinkedinURL)
	req.WebsiteURL.apply(&profile.WebsiteURL)
	req.ProfileImageURL.apply(&profile.ProfileImageURL)

	if sameProfile(existing, profile) {
		return existing, nil
	}
	profile.UpdatedAt = s.timestamp()

	if err := s.repository.UpdateProfile(ctx, profile); err != nil {
		return nil, wrapStore("update profile", err)
	}

	s.notify(ctx, "profile.updated", func() error { return s.eventSink.ProfileUpdated(ctx, profile) })
	return profile, nil
}

// Project operations

func (s *service) ListProjects(ctx context.Context) ([]*Project, error) {
	projects, err := s.repository.ListProjects(ctx, ProjectFilter{})
	if err != nil {
		return nil, wrapStore("list projects", err)
	}
	return nonNil(projects), nil
}

func (s *service) ListFeaturedProjects(ctx context.Context) ([]*Project, error) {
	projects, err := s.repository.ListProjects(ctx, ProjectFilter{FeaturedOnly: true})
	if err != nil {
		return nil, wrapStore("list featured projects", err)
	}
	return nonNil(projects), nil
}

func (s *service) GetProject(ctx context.Context, id int64) (*Project, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	project, err := s.repository.GetProject(ctx, id)
	if err != nil {
		return nil, wrapStore("get project", notFound(entityProject, id, err))
	}
	return project, nil
}

func (s *service) CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	now := s.timestamp()
	project := &Project{
		Title:       req.Title,
		Description: req.Description,
		TechStack:   nullIfEmpty(req.TechStack),
		ProjectURL:  nullIfEmpty(req.ProjectURL),
		GithubURL:   nullIfEmpty(req.GithubURL),
		ImageURL:    nullIfEmpty(req.ImageURL),
		IsFeatured:  req.IsFeatured,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	autoOrder := req.DisplayOrder == nil
	if !autoOrder {
		project.DisplayOrder = *req.DisplayOrder
	}

	if err := s.repository.CreateProject(ctx, project, autoOrder); err != nil {
		return nil, wrapStore("create project", err)
	}

	s.notify(ctx, "project.created", func() error { return s.eventSink.ProjectCreated(ctx, project) })
	return project, nil
}

func (s *service) UpdateProject(ctx context.Context, req UpdateProjectRequest) (*Project, error) {
	if err := checkID(req.ID); err != nil {
		return nil, err
	}

	project, err := s.repository.GetProject(ctx, req.ID)
	if err != nil {
		return nil, wrapStore("get project", notFound(entityProject, req.ID, err))
	}

	if v, ok := req.Title.Get(); ok {
		project.Title = v
	}
	if v, ok := req.Description.Get(); ok {
		project.Description = v
	}
	req.TechStack.apply(&project.TechStack)
	req.ProjectURL.apply(&project.ProjectURL)
	req.GithubURL.apply(&project.GithubURL)
	req.ImageURL.apply(&project.ImageURL)
	if v, ok := req.IsFeatured.Get(); ok {
		project.IsFeatured = v
	}
	if v, ok := req.DisplayOrder.Get(); ok {
		project.DisplayOrder = v
	}
	project.UpdatedAt = s.timestamp()

	if err := s.repository.UpdateProject(ctx, project); err != nil {
		return nil, wrapStore("update project", notFound(entityProject, req.ID, err))
	}

	s.notify(ctx, "project.updated", func() error { return s.eventSink.ProjectUpdated(ctx, project) })
	return project, nil
}

func (s *service) DeleteProject(ctx context.Context, id int64) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.repository.DeleteProject(ctx, id); err != nil {
		return wrapStore("delete project", notFound(entityProject, id, err))
	}

	s.notify(ctx, "project.deleted", func() error { return s.eventSink.ProjectDeleted(ctx, id) })
	return nil
}

// Post operations

func (s *service) ListPublishedPosts(ctx context.Context) ([]*Post, error) {
	posts, err := s.repository.ListPublishedPosts(ctx)
	if err != nil {
		return nil, wrapStore("list published posts", err)
	}
	return nonNil(posts), nil
}

func (s *service) GetPublishedPostBySlug(ctx context.Context, slug string) (*Post, error) {
	post, err := s.repository.GetPostBySlug(ctx, slug)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStore("get post by slug", err)
	}
	if !post.IsPublished {
		return nil, nil
	}
	return post, nil
}

func (s *service) GetPost(ctx context.Context, id int64) (*Post, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	post, err := s.repository.GetPost(ctx, id)
	if err != nil {
		return nil, wrapStore("get post", notFound(entityPost, id, err))
	}
	return post, nil
}

func (s *service) CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error) {
	now := s.timestamp()
	post := &Post{
		Title:       req.Title,
		Slug:        slug.Derive(req.Title),
		Content:     req.Content,
		Excerpt:     nullIfEmpty(req.Excerpt),
		IsPublished: req.IsPublished,
		Tags:        nullIfEmpty(req.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.ReadingTimeMinutes != nil && *req.ReadingTimeMinutes != 0 {
		minutes := *req.ReadingTimeMinutes
		post.ReadingTimeMinutes = &minutes
	}
	if post.IsPublished {
		post.PublishedAt = &now
	}

	if err := s.repository.CreatePost(ctx, post); err != nil {
		return nil, wrapStore("create post", err)
	}

	s.notify(ctx, "post.created", func() error { return s.eventSink.PostCreated(ctx, post) })
	return post, nil
}

func (s *service) UpdatePost(ctx context.Context, req UpdatePostRequest) (*Post, error) {
	if err := checkID(req.ID); err != nil {
		return nil, err
	}

	post, err := s.repository.GetPost(ctx, req.ID)
	if err != nil {
		return nil, wrapStore("get post", notFound(entityPost, req.ID, err))
	}

	now := s.timestamp()
	if v, ok := req.Title.Get(); ok {
		post.Title = v
		post.Slug = slug.Derive(v)
	}
	if v, ok := req.Content.Get(); ok {
		post.Content = v
	}
	req.Excerpt.apply(&post.Excerpt)
	if v, ok := req.IsPublished.Get(); ok {
		post.IsPublished = v
		post.PublishedAt = nil
		if v {
			post.PublishedAt = &now
		}
	}
	req.Tags.apply(&post.Tags)
	req.ReadingTimeMinutes.apply(&post.ReadingTimeMinutes)
	post.UpdatedAt = now

	if err := s.repository.UpdatePost(ctx, post); err != nil {
		return nil, wrapStore("update post", notFound(entityPost, req.ID, err))
	}

	s.notify(ctx, "post.updated", func() error { return s.eventSink.PostUpdated(ctx, post) })
	return post, nil
}

func (s *service) DeletePost(ctx context.Context, id int64) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.repository.DeletePost(ctx, id); err != nil {
		return wrapStore("delete post", notFound(entityPost, id, err))
	}

	s.notify(ctx, "post.deleted", func() error { return s.eventSink.PostDeleted(ctx, id) })
	return nil
}

func sameProfile(a, b *Profile) bool {
	return a.Name == b.Name && a.Title == b.Title && a.Bio == b.Bio &&
		equalPtr(a.Email, b.Email) && equalPtr(a.GithubURL, b.GithubURL) &&
		equalPtr(a.LinkedinURL, b.LinkedinURL) && equalPtr(a.WebsiteURL, b.WebsiteURL) &&
		equalPtr(a.ProfileImageURL, b.ProfileImageURL)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func nonNil[T any](items []*T) []*T {
	if items == nil {
		return []*T{}
	}
	return items
}
