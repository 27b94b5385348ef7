package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
	"github.com/tendant/simple-portfolio/pkg/portfolio/repo/internal/sqlq"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	Begin(context.Context) (pgx.Tx, error)
}

// projectOrderLock keys the advisory lock that serializes display order assignment.
const projectOrderLock int64 = 0x706f7274666f6c69

// Repository implements portfolio.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) portfolio.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) portfolio.Repository {
	return &Repository{db: pool}
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return portfolio.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if pgErr.ConstraintName == "blog_posts_slug_key" {
				return &portfolio.ConflictError{Entity: "Blog post", Field: "slug", Value: slugFromDetail(pgErr.Detail)}
			}
			if pgErr.TableName == "profile" {
				return &portfolio.ConflictError{Entity: "profile", Field: "id", Value: "singleton"}
			}
			return fmt.Errorf("%w: %s", portfolio.ErrConflict, pgErr.Message)
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "23514": // check_violation
			return fmt.Errorf("%w: constraint %s violated", portfolio.ErrValidation, pgErr.ConstraintName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// slugFromDetail extracts the value from `Key (slug)=(value) already exists.`
func slugFromDetail(detail string) string {
	_, rest, ok := strings.Cut(detail, "=(")
	if !ok {
		return ""
	}
	value, _, _ := strings.Cut(rest, ")")
	return value
}

// Profile operations

const profileColumns = `id, name, title, bio, email, github_url, linkedin_url, website_url, profile_image_url, updated_at`

func (r *Repository) GetProfile(ctx context.Context) (*portfolio.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profile WHERE id = $1`

	var p portfolio.Profile
	err := r.db.QueryRow(ctx, query, portfolio.ProfileID).Scan(
		&p.ID, &p.Name, &p.Title, &p.Bio, &p.Email, &p.GithubURL,
		&p.LinkedinURL, &p.WebsiteURL, &p.ProfileImageURL, &p.UpdatedAt)
	if err != nil {
		return nil, r.handlePostgresError("get profile", err)
	}
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func (r *Repository) CreateProfile(ctx context.Context, profile *portfolio.Profile) error {
	query := `
		INSERT INTO profile (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	profile.ID = portfolio.ProfileID
	_, err := r.db.Exec(ctx, query,
		profile.ID, profile.Name, profile.Title, profile.Bio, profile.Email, profile.GithubURL,
		profile.LinkedinURL, profile.WebsiteURL, profile.ProfileImageURL, profile.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create profile", err)
	}
	return nil
}

func (r *Repository) UpdateProfile(ctx context.Context, profile *portfolio.Profile) error {
	query := `
		UPDATE profile SET
			name = $2, title = $3, bio = $4, email = $5, github_url = $6,
			linkedin_url = $7, website_url = $8, profile_image_url = $9, updated_at = $10
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		portfolio.ProfileID, profile.Name, profile.Title, profile.Bio, profile.Email, profile.GithubURL,
		profile.LinkedinURL, profile.WebsiteURL, profile.ProfileImageURL, profile.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update profile", err)
	}
	if tag.RowsAffected() == 0 {
		return portfolio.ErrNotFound
	}
	profile.ID = portfolio.ProfileID
	return nil
}

// Project operations

const projectColumns = `id, title, description, tech_stack, project_url, github_url, image_url,
	is_featured, display_order, created_at, updated_at`

func scanProject(row pgx.Row) (*portfolio.Project, error) {
	var p portfolio.Project
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.TechStack, &p.ProjectURL, &p.GithubURL,
		&p.ImageURL, &p.IsFeatured, &p.DisplayOrder, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func (r *Repository) queryProjects(ctx context.Context, op, query string, args ...interface{}) ([]*portfolio.Project, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError(op, err)
	}
	defer rows.Close()

	projects := make([]*portfolio.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, r.handlePostgresError(op, err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError(op, err)
	}
	return projects, nil
}

func (r *Repository) ListProjects(ctx context.Context, filter portfolio.ProjectFilter) ([]*portfolio.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	if filter.FeaturedOnly {
		query += ` WHERE is_featured`
	}
	query += ` ORDER BY display_order ASC, created_at ASC, id ASC`
	return r.queryProjects(ctx, "list projects", query)
}

func (r *Repository) GetProject(ctx context.Context, id int64) (*portfolio.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	p, err := scanProject(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, r.handlePostgresError("get project", err)
	}
	return p, nil
}

func (r *Repository) CreateProject(ctx context.Context, project *portfolio.Project, autoOrder bool) error {
	if !autoOrder {
		query := `
			INSERT INTO projects (
				title, description, tech_stack, project_url, github_url, image_url,
				is_featured, display_order, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id`

		err := r.db.QueryRow(ctx, query,
			project.Title, project.Description, project.TechStack, project.ProjectURL, project.GithubURL,
			project.ImageURL, project.IsFeatured, project.DisplayOrder, project.CreatedAt, project.UpdatedAt,
		).Scan(&project.ID)
		if err != nil {
			return r.handlePostgresError("create project", err)
		}
		return nil
	}

	// The max read and the insert share one transaction, serialized by an
	// advisory lock released at commit.
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return r.handlePostgresError("create project", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, projectOrderLock); err != nil {
		return r.handlePostgresError("create project", err)
	}

	query := `
		INSERT INTO projects (
			title, description, tech_stack, project_url, github_url, image_url,
			is_featured, display_order, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			(SELECT COALESCE(MAX(display_order), 0) + 1 FROM projects),
			$8, $9
		)
		RETURNING id, display_order`

	err = tx.QueryRow(ctx, query,
		project.Title, project.Description, project.TechStack, project.ProjectURL, project.GithubURL,
		project.ImageURL, project.IsFeatured, project.CreatedAt, project.UpdatedAt,
	).Scan(&project.ID, &project.DisplayOrder)
	if err != nil {
		return r.handlePostgresError("create project", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return r.handlePostgresError("create project", err)
	}
	return nil
}

func (r *Repository) UpdateProject(ctx context.Context, project *portfolio.Project) error {
	query := `
		UPDATE projects SET
			title = $2, description = $3, tech_stack = $4, project_url = $5, github_url = $6,
			image_url = $7, is_featured = $8, display_order = $9, updated_at = $10
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		project.ID, project.Title, project.Description, project.TechStack, project.ProjectURL,
		project.GithubURL, project.ImageURL, project.IsFeatured, project.DisplayOrder, project.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update project", err)
	}
	if tag.RowsAffected() == 0 {
		return portfolio.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteProject(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete project", err)
	}
	if tag.RowsAffected() == 0 {
		return portfolio.ErrNotFound
	}
	return nil
}

func (r *Repository) SearchProjects(ctx context.Context, query string) ([]*portfolio.Project, error) {
	sql := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE title ILIKE $1 ESCAPE '\'
		   OR description ILIKE $1 ESCAPE '\'
		   OR tech_stack ILIKE $1 ESCAPE '\'
		ORDER BY display_order ASC, created_at ASC, id ASC`
	return r.queryProjects(ctx, "search projects", sql, sqlq.ContainsPattern(query))
}

// Post operations

const postColumns = `id, title, slug, content, excerpt, is_published, tags, reading_time_minutes,
	created_at, updated_at, published_at`

func scanPost(row pgx.Row) (*portfolio.Post, error) {
	var p portfolio.Post
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.IsPublished, &p.Tags,
		&p.ReadingTimeMinutes, &p.CreatedAt, &p.UpdatedAt, &p.PublishedAt)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	if p.PublishedAt != nil {
		t := p.PublishedAt.UTC()
		p.PublishedAt = &t
	}
	return &p, nil
}

func (r *Repository) queryPosts(ctx context.Context, op, query string, args ...interface{}) ([]*portfolio.Post, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError(op, err)
	}
	defer rows.Close()

	posts := make([]*portfolio.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, r.handlePostgresError(op, err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError(op, err)
	}
	return posts, nil
}

func (r *Repository) ListPublishedPosts(ctx context.Context) ([]*portfolio.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM blog_posts
		WHERE is_published
		ORDER BY published_at DESC NULLS LAST, id DESC`
	return r.queryPosts(ctx, "list published posts", query)
}

func (r *Repository) GetPost(ctx context.Context, id int64) (*portfolio.Post, error) {
	query := `SELECT ` + postColumns + ` FROM blog_posts WHERE id = $1`
	p, err := scanPost(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, r.handlePostgresError("get post", err)
	}
	return p, nil
}

func (r *Repository) GetPostBySlug(ctx context.Context, slug string) (*portfolio.Post, error) {
	query := `SELECT ` + postColumns + ` FROM blog_posts WHERE slug = $1`
	p, err := scanPost(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		return nil, r.handlePostgresError("get post by slug", err)
	}
	return p, nil
}

func (r *Repository) CreatePost(ctx context.Context, post *portfolio.Post) error {
	query := `
		INSERT INTO blog_posts (
			title, slug, content, excerpt, is_published, tags, reading_time_minutes,
			created_at, updated_at, published_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		post.Title, post.Slug, post.Content, post.Excerpt, post.IsPublished, post.Tags,
		post.ReadingTimeMinutes, post.CreatedAt, post.UpdatedAt, post.PublishedAt,
	).Scan(&post.ID)
	if err != nil {
		return r.handlePostgresError("create post", err)
	}
	return nil
}

func (r *Repository) UpdatePost(ctx context.Context, post *portfolio.Post) error {
	query := `
		UPDATE blog_posts SET
			title = $2, slug = $3, content = $4, excerpt = $5, is_published = $6, tags = $7,
			reading_time_minutes = $8, updated_at = $9, published_at = $10
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		post.ID, post.Title, post.Slug, post.Content, post.Excerpt, post.IsPublished, post.Tags,
		post.ReadingTimeMinutes, post.UpdatedAt, post.PublishedAt)
	if err != nil {
		return r.handlePostgresError("update post", err)
	}
	if tag.RowsAffected() == 0 {
		return portfolio.ErrNotFound
	}
	return nil
}

func (r *Repository) DeletePost(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete post", err)
	}
	if tag.RowsAffected() == 0 {
		return portfolio.ErrNotFound
	}
	return nil
}

func (r *Repository) SearchPublishedPosts(ctx context.Context, query string) ([]*portfolio.Post, error) {
	sql := `
		SELECT ` + postColumns + `
		FROM blog_posts
		WHERE is_published
		  AND (title ILIKE $1 ESCAPE '\'
		       OR content ILIKE $1 ESCAPE '\'
		       OR excerpt ILIKE $1 ESCAPE '\'
		       OR tags ILIKE $1 ESCAPE '\')
		ORDER BY published_at DESC NULLS LAST, id DESC`
	return r.queryPosts(ctx, "search posts", sql, sqlq.ContainsPattern(query))
}
