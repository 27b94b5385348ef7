package portfolio

import "io"

// Request DTOs

// UpsertProfileRequest holds the profile fields to write. Unset fields keep
// their stored value; Null clears an optional field.
type UpsertProfileRequest struct {
	Name            Optional[string] `json:"name"`
	Title           Optional[string] `json:"title"`
	Bio             Optional[string] `json:"bio"`
	Email           Optional[string] `json:"email"`
	GithubURL       Optional[string] `json:"github_url"`
	LinkedinURL     Optional[string] `json:"linkedin_url"`
	WebsiteURL      Optional[string] `json:"website_url"`
	ProfileImageURL Optional[string] `json:"profile_image_url"`
}

func (r UpsertProfileRequest) empty() bool {
	return !r.Name.IsSet() && !r.Title.IsSet() && !r.Bio.IsSet() &&
		!r.Email.IsSet() && !r.GithubURL.IsSet() && !r.LinkedinURL.IsSet() &&
		!r.WebsiteURL.IsSet() && !r.ProfileImageURL.IsSet()
}

// CreateProjectRequest contains parameters for creating a project.
// A nil DisplayOrder asks the repository to append the project after the
// current maximum order.
type CreateProjectRequest struct {
	Title        string
	Description  string
	TechStack    *string
	ProjectURL   *string
	GithubURL    *string
	ImageURL     *string
	IsFeatured   bool
	DisplayOrder *int
}

// UpdateProjectRequest contains the fields of a partial project update.
type UpdateProjectRequest struct {
	ID           int64            `json:"-"`
	Title        Optional[string] `json:"title"`
	Description  Optional[string] `json:"description"`
	TechStack    Optional[string] `json:"tech_stack"`
	ProjectURL   Optional[string] `json:"project_url"`
	GithubURL    Optional[string] `json:"github_url"`
	ImageURL     Optional[string] `json:"image_url"`
	IsFeatured   Optional[bool]   `json:"is_featured"`
	DisplayOrder Optional[int]    `json:"display_order"`
}

// CreatePostRequest contains parameters for creating a blog post.
type CreatePostRequest struct {
	Title              string
	Content            string
	Excerpt            *string
	IsPublished        bool
	Tags               *string
	ReadingTimeMinutes *int
}

// UpdatePostRequest contains the fields of a partial post update.
type UpdatePostRequest struct {
	ID                 int64            `json:"-"`
	Title              Optional[string] `json:"title"`
	Content            Optional[string] `json:"content"`
	Excerpt            Optional[string] `json:"excerpt"`
	IsPublished        Optional[bool]   `json:"is_published"`
	Tags               Optional[string] `json:"tags"`
	ReadingTimeMinutes Optional[int]    `json:"reading_time_minutes"`
}

// SearchRequest contains parameters for a content search.
type SearchRequest struct {
	Query string
	Type  SearchType
}

// UploadAssetRequest contains parameters for storing an asset.
type UploadAssetRequest struct {
	FileName    string
	ContentType string
	Reader      io.Reader
}
