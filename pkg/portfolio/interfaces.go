package portfolio

import (
	"context"
	"io"
)

// Repository is the persistent store contract. Implementations return
// ErrNotFound for missing rows and a *ConflictError (or ErrConflict) when a
// unique constraint is violated. Records passed in and returned are copies.
type Repository interface {
	// Profile operations. GetProfile returns ErrNotFound while no profile exists.
	GetProfile(ctx context.Context) (*Profile, error)
	CreateProfile(ctx context.Context, profile *Profile) error
	UpdateProfile(ctx context.Context, profile *Profile) error

	// Project operations. ListProjects orders by display order, then creation
	// time. CreateProject assigns the ID; with autoOrder it also assigns
	// DisplayOrder as max+1 (or 1) atomically with the insert.
	ListProjects(ctx context.Context, filter ProjectFilter) ([]*Project, error)
	GetProject(ctx context.Context, id int64) (*Project, error)
	CreateProject(ctx context.Context, project *Project, autoOrder bool) error
	UpdateProject(ctx context.Context, project *Project) error
	DeleteProject(ctx context.Context, id int64) error
	SearchProjects(ctx context.Context, query string) ([]*Project, error)

	// Post operations. ListPublishedPosts orders by published_at descending
	// with nulls last. GetPostBySlug ignores publication state.
	ListPublishedPosts(ctx context.Context) ([]*Post, error)
	GetPost(ctx context.Context, id int64) (*Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*Post, error)
	CreatePost(ctx context.Context, post *Post) error
	UpdatePost(ctx context.Context, post *Post) error
	DeletePost(ctx context.Context, id int64) error
	SearchPublishedPosts(ctx context.Context, query string) ([]*Post, error)
}

// AssetStore defines the interface for binary asset backends
type AssetStore interface {
	// Upload stores the reader's content under key
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Download opens the content stored under key
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Stat returns metadata for key, ErrNotFound when absent
	Stat(ctx context.Context, key string) (*AssetMeta, error)

	// Delete removes key, ErrNotFound when absent
	Delete(ctx context.Context, key string) error

	// GetDownloadURL returns a direct URL for key when the backend has one
	GetDownloadURL(ctx context.Context, key string) (string, error)
}

// URLStrategy turns an asset key into the URL stored on content records.
type URLStrategy interface {
	AssetURL(ctx context.Context, key string) (string, error)
}

// EventSink receives content lifecycle notifications
type EventSink interface {
	ProfileUpdated(ctx context.Context, profile *Profile) error
	ProjectCreated(ctx context.Context, project *Project) error
	ProjectUpdated(ctx context.Context, project *Project) error
	ProjectDeleted(ctx context.Context, id int64) error
	PostCreated(ctx context.Context, post *Post) error
	PostUpdated(ctx context.Context, post *Post) error
	PostDeleted(ctx context.Context, id int64) error
	AssetUploaded(ctx context.Context, asset *Asset) error
	AssetDeleted(ctx context.Context, key string) error
}
