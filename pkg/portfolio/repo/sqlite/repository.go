package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
	"github.com/tendant/simple-portfolio/pkg/portfolio/repo/internal/sqlq"
)

// timeLayout is fixed width so text order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Repository implements portfolio.Repository on SQLite
type Repository struct {
	db *sql.DB
}

// New creates a repository on an open, migrated database
func New(db *sql.DB) portfolio.Repository {
	return &Repository{db: db}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func (r *Repository) handleSQLiteError(operation, conflictSlug string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return portfolio.ErrNotFound
	}

	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		msg := se.Error()
		switch {
		case strings.Contains(msg, "blog_posts.slug"):
			return &portfolio.ConflictError{Entity: "Blog post", Field: "slug", Value: conflictSlug}
		case strings.Contains(msg, "profile.id"):
			return &portfolio.ConflictError{Entity: "profile", Field: "id", Value: "singleton"}
		case strings.Contains(msg, "CHECK"):
			return fmt.Errorf("%w: %s", portfolio.ErrValidation, msg)
		default:
			return fmt.Errorf("%w: %s", portfolio.ErrConflict, msg)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Profile operations

const profileColumns = `id, name, title, bio, email, github_url, linkedin_url, website_url, profile_image_url, updated_at`

func (r *Repository) GetProfile(ctx context.Context) (*portfolio.Profile, error) {
	var (
		p                                         portfolio.Profile
		email, github, linkedin, website, picture sql.NullString
		updated                                   string
	)
	err := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profile WHERE id = ?`, portfolio.ProfileID).Scan(
		&p.ID, &p.Name, &p.Title, &p.Bio, &email, &github, &linkedin, &website, &picture, &updated)
	if err != nil {
		return nil, r.handleSQLiteError("get profile", "", err)
	}

	p.Email = nullString(email)
	p.GithubURL = nullString(github)
	p.LinkedinURL = nullString(linkedin)
	p.WebsiteURL = nullString(website)
	p.ProfileImageURL = nullString(picture)
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("parsing profile updated_at: %w", err)
	}
	return &p, nil
}

func (r *Repository) CreateProfile(ctx context.Context, profile *portfolio.Profile) error {
	profile.ID = portfolio.ProfileID
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profile (`+profileColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		profile.ID, profile.Name, profile.Title, profile.Bio, profile.Email, profile.GithubURL,
		profile.LinkedinURL, profile.WebsiteURL, profile.ProfileImageURL, formatTime(profile.UpdatedAt))
	if err != nil {
		return r.handleSQLiteError("create profile", "", err)
	}
	return nil
}

func (r *Repository) UpdateProfile(ctx context.Context, profile *portfolio.Profile) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE profile SET
			name = ?, title = ?, bio = ?, email = ?, github_url = ?,
			linkedin_url = ?, website_url = ?, profile_image_url = ?, updated_at = ?
		WHERE id = ?`,
		profile.Name, profile.Title, profile.Bio, profile.Email, profile.GithubURL,
		profile.LinkedinURL, profile.WebsiteURL, profile.ProfileImageURL, formatTime(profile.UpdatedAt),
		portfolio.ProfileID)
	if err != nil {
		return r.handleSQLiteError("update profile", "", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}
	profile.ID = portfolio.ProfileID
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return portfolio.ErrNotFound
	}
	return nil
}

// Project operations

const projectColumns = `id, title, description, tech_stack, project_url, github_url, image_url,
	is_featured, display_order, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*portfolio.Project, error) {
	var (
		p                            portfolio.Project
		stack, projectURL, gh, image sql.NullString
		created, updated             string
	)
	err := row.Scan(&p.ID, &p.Title, &p.Description, &stack, &projectURL, &gh, &image,
		&p.IsFeatured, &p.DisplayOrder, &created, &updated)
	if err != nil {
		return nil, err
	}

	p.TechStack = nullString(stack)
	p.ProjectURL = nullString(projectURL)
	p.GithubURL = nullString(gh)
	p.ImageURL = nullString(image)
	if p.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) queryProjects(ctx context.Context, op, query string, args ...any) ([]*portfolio.Project, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.handleSQLiteError(op, "", err)
	}
	defer rows.Close()

	projects := make([]*portfolio.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, r.handleSQLiteError(op, "", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handleSQLiteError(op, "", err)
	}
	return projects, nil
}

func (r *Repository) ListProjects(ctx context.Context, filter portfolio.ProjectFilter) ([]*portfolio.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	if filter.FeaturedOnly {
		query += ` WHERE is_featured = 1`
	}
	query += ` ORDER BY display_order ASC, created_at ASC, id ASC`
	return r.queryProjects(ctx, "list projects", query)
}

func (r *Repository) GetProject(ctx context.Context, id int64) (*portfolio.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if err != nil {
		return nil, r.handleSQLiteError("get project", "", err)
	}
	return p, nil
}

func (r *Repository) CreateProject(ctx context.Context, project *portfolio.Project, autoOrder bool) error {
	// With autoOrder the max read happens inside the INSERT, one atomic statement.
	order := "?"
	args := []any{
		project.Title, project.Description, project.TechStack, project.ProjectURL,
		project.GithubURL, project.ImageURL, project.IsFeatured,
	}
	if autoOrder {
		order = "(SELECT COALESCE(MAX(display_order), 0) + 1 FROM projects)"
	} else {
		args = append(args, project.DisplayOrder)
	}
	args = append(args, formatTime(project.CreatedAt), formatTime(project.UpdatedAt))

	query := `
		INSERT INTO projects (
			title, description, tech_stack, project_url, github_url, image_url,
			is_featured, display_order, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ` + order + `, ?, ?)
		RETURNING id, display_order`

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&project.ID, &project.DisplayOrder); err != nil {
		return r.handleSQLiteError("create project", "", err)
	}
	return nil
}

func (r *Repository) UpdateProject(ctx context.Context, project *portfolio.Project) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects SET
			title = ?, description = ?, tech_stack = ?, project_url = ?, github_url = ?,
			image_url = ?, is_featured = ?, display_order = ?, updated_at = ?
		WHERE id = ?`,
		project.Title, project.Description, project.TechStack, project.ProjectURL, project.GithubURL,
		project.ImageURL, project.IsFeatured, project.DisplayOrder, formatTime(project.UpdatedAt), project.ID)
	if err != nil {
		return r.handleSQLiteError("update project", "", err)
	}
	return requireRow(res)
}

func (r *Repository) DeleteProject(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return r.handleSQLiteError("delete project", "", err)
	}
	return requireRow(res)
}

func (r *Repository) SearchProjects(ctx context.Context, query string) ([]*portfolio.Project, error) {
	q := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE title LIKE ?1 ESCAPE '\'
		   OR description LIKE ?1 ESCAPE '\'
		   OR tech_stack LIKE ?1 ESCAPE '\'
		ORDER BY display_order ASC, created_at ASC, id ASC`
	return r.queryProjects(ctx, "search projects", q, sqlq.ContainsPattern(query))
}

// Post operations

const postColumns = `id, title, slug, content, excerpt, is_published, tags, reading_time_minutes,
	created_at, updated_at, published_at`

func scanPost(row scanner) (*portfolio.Post, error) {
	var (
		p                portfolio.Post
		excerpt, tags    sql.NullString
		readingTime      sql.NullInt64
		created, updated string
		published        sql.NullString
	)
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &excerpt, &p.IsPublished, &tags,
		&readingTime, &created, &updated, &published)
	if err != nil {
		return nil, err
	}

	p.Excerpt = nullString(excerpt)
	p.Tags = nullString(tags)
	p.ReadingTimeMinutes = nullInt(readingTime)
	if p.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	if published.Valid {
		t, err := parseTime(published.String)
		if err != nil {
			return nil, err
		}
		p.PublishedAt = &t
	}
	return &p, nil
}

func (r *Repository) queryPosts(ctx context.Context, op, query string, args ...any) ([]*portfolio.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.handleSQLiteError(op, "", err)
	}
	defer rows.Close()

	posts := make([]*portfolio.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, r.handleSQLiteError(op, "", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handleSQLiteError(op, "", err)
	}
	return posts, nil
}

func (r *Repository) ListPublishedPosts(ctx context.Context) ([]*portfolio.Post, error) {
	return r.queryPosts(ctx, "list published posts", `
		SELECT `+postColumns+`
		FROM blog_posts
		WHERE is_published = 1
		ORDER BY published_at DESC NULLS LAST, id DESC`)
}

func (r *Repository) GetPost(ctx context.Context, id int64) (*portfolio.Post, error) {
	p, err := scanPost(r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM blog_posts WHERE id = ?`, id))
	if err != nil {
		return nil, r.handleSQLiteError("get post", "", err)
	}
	return p, nil
}

func (r *Repository) GetPostBySlug(ctx context.Context, slug string) (*portfolio.Post, error) {
	p, err := scanPost(r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM blog_posts WHERE slug = ?`, slug))
	if err != nil {
		return nil, r.handleSQLiteError("get post by slug", "", err)
	}
	return p, nil
}

func (r *Repository) CreatePost(ctx context.Context, post *portfolio.Post) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO blog_posts (
			title, slug, content, excerpt, is_published, tags, reading_time_minutes,
			created_at, updated_at, published_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		post.Title, post.Slug, post.Content, post.Excerpt, post.IsPublished, post.Tags,
		post.ReadingTimeMinutes, formatTime(post.CreatedAt), formatTime(post.UpdatedAt),
		formatNullTime(post.PublishedAt),
	).Scan(&post.ID)
	if err != nil {
		return r.handleSQLiteError("create post", post.Slug, err)
	}
	return nil
}

func (r *Repository) UpdatePost(ctx context.Context, post *portfolio.Post) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE blog_posts SET
			title = ?, slug = ?, content = ?, excerpt = ?, is_published = ?, tags = ?,
			reading_time_minutes = ?, updated_at = ?, published_at = ?
		WHERE id = ?`,
		post.Title, post.Slug, post.Content, post.Excerpt, post.IsPublished, post.Tags,
		post.ReadingTimeMinutes, formatTime(post.UpdatedAt), formatNullTime(post.PublishedAt), post.ID)
	if err != nil {
		return r.handleSQLiteError("update post", post.Slug, err)
	}
	return requireRow(res)
}

func (r *Repository) DeletePost(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = ?`, id)
	if err != nil {
		return r.handleSQLiteError("delete post", "", err)
	}
	return requireRow(res)
}

func (r *Repository) SearchPublishedPosts(ctx context.Context, query string) ([]*portfolio.Post, error) {
	return r.queryPosts(ctx, "search posts", `
		SELECT `+postColumns+`
		FROM blog_posts
		WHERE is_published = 1
		  AND (title LIKE ?1 ESCAPE '\'
		       OR content LIKE ?1 ESCAPE '\'
		       OR excerpt LIKE ?1 ESCAPE '\'
		       OR tags LIKE ?1 ESCAPE '\')
		ORDER BY published_at DESC NULLS LAST, id DESC`, sqlq.ContainsPattern(query))
}
