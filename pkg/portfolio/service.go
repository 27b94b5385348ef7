package portfolio

import (
	"context"
	"io"
)

// Service defines the content operations of the portfolio
type Service interface {
	// Profile operations. GetProfile returns (nil, nil) when no profile exists.
	GetProfile(ctx context.Context) (*Profile, error)
	UpsertProfile(ctx context.Context, req UpsertProfileRequest) (*Profile, error)

	// Project operations
	ListProjects(ctx context.Context) ([]*Project, error)
	ListFeaturedProjects(ctx context.Context) ([]*Project, error)
	GetProject(ctx context.Context, id int64) (*Project, error)
	CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error)
	UpdateProject(ctx context.Context, req UpdateProjectRequest) (*Project, error)
	DeleteProject(ctx context.Context, id int64) error

	// Post operations. GetPublishedPostBySlug returns (nil, nil) for unknown
	// and unpublished slugs alike.
	ListPublishedPosts(ctx context.Context) ([]*Post, error)
	GetPublishedPostBySlug(ctx context.Context, slug string) (*Post, error)
	GetPost(ctx context.Context, id int64) (*Post, error)
	CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error)
	UpdatePost(ctx context.Context, req UpdatePostRequest) (*Post, error)
	DeletePost(ctx context.Context, id int64) error

	// Search
	Search(ctx context.Context, req SearchRequest) (*SearchResult, error)

	// Asset operations
	UploadAsset(ctx context.Context, req UploadAssetRequest) (*Asset, error)
	GetAsset(ctx context.Context, key string) (*Asset, error)
	DownloadAsset(ctx context.Context, key string) (io.ReadCloser, *Asset, error)
	DeleteAsset(ctx context.Context, key string) error
}
