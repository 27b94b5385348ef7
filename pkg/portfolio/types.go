package portfolio

import (
	"fmt"
	"time"
)

// SearchType scopes a search to one or both content collections.
type SearchType string

// Search type constants (typed).
const (
	SearchAll      SearchType = "all"
	SearchProjects SearchType = "projects"
	SearchPosts    SearchType = "posts"
)

// ParseSearchType maps an input string to a SearchType. Empty means all.
func ParseSearchType(s string) (SearchType, error) {
	switch SearchType(s) {
	case "", SearchAll:
		return SearchAll, nil
	case SearchProjects, SearchPosts:
		return SearchType(s), nil
	default:
		return "", &ValidationError{Field: "type", Message: fmt.Sprintf("must be one of all, projects, posts (got %q)", s)}
	}
}

func (t SearchType) includesProjects() bool { return t == SearchAll || t == SearchProjects }
func (t SearchType) includesPosts() bool    { return t == SearchAll || t == SearchPosts }

// ProfileID is the identity of the singleton profile row.
const ProfileID int64 = 1

// Profile is the singleton "about me" record.
type Profile struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Title           string    `json:"title"`
	Bio             string    `json:"bio"`
	Email           *string   `json:"email"`
	GithubURL       *string   `json:"github_url"`
	LinkedinURL     *string   `json:"linkedin_url"`
	WebsiteURL      *string   `json:"website_url"`
	ProfileImageURL *string   `json:"profile_image_url"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Project is a portfolio entry. DisplayOrder defines presentation sequence
// and is not unique.
type Project struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	TechStack    *string   `json:"tech_stack"`
	ProjectURL   *string   `json:"project_url"`
	GithubURL    *string   `json:"github_url"`
	ImageURL     *string   `json:"image_url"`
	IsFeatured   bool      `json:"is_featured"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Post is a blog post. IsPublished is true exactly when PublishedAt is set.
type Post struct {
	ID                 int64      `json:"id"`
	Title              string     `json:"title"`
	Slug               string     `json:"slug"`
	Content            string     `json:"content"`
	Excerpt            *string    `json:"excerpt"`
	IsPublished        bool       `json:"is_published"`
	Tags               *string    `json:"tags"`
	ReadingTimeMinutes *int       `json:"reading_time_minutes"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	PublishedAt        *time.Time `json:"published_at"`
}

// SearchResult always carries both collections, empty when nothing matched
// or when the search type excluded them.
type SearchResult struct {
	Projects []*Project `json:"projects"`
	Posts    []*Post    `json:"posts"`
}

// Asset describes an uploaded image or other binary referenced by content.
type Asset struct {
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	ETag        string    `json:"etag,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AssetMeta is what an AssetStore knows about a stored object.
type AssetMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
}

// ProjectFilter narrows ListProjects.
type ProjectFilter struct {
	FeaturedOnly bool
}
