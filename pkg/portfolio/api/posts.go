package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

// createPostPayload is the request body for creating a blog post
type createPostPayload struct {
	Title              string  `json:"title" validate:"required"`
	Content            string  `json:"content" validate:"required"`
	Excerpt            *string `json:"excerpt"`
	IsPublished        bool    `json:"is_published"`
	Tags               *string `json:"tags"`
	ReadingTimeMinutes *int    `json:"reading_time_minutes" validate:"omitempty,gt=0"`
}

func (p createPostPayload) request() portfolio.CreatePostRequest {
	return portfolio.CreatePostRequest{
		Title:              p.Title,
		Content:            p.Content,
		Excerpt:            p.Excerpt,
		IsPublished:        p.IsPublished,
		Tags:               p.Tags,
		ReadingTimeMinutes: p.ReadingTimeMinutes,
	}
}

// ListPublishedPosts lists published posts, newest first
func (h *Handler) ListPublishedPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListPublishedPosts(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, posts)
}

// GetPublishedPostBySlug returns a published post, or null
func (h *Handler) GetPublishedPostBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPublishedPostBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, post)
}

// GetPost returns one post by id regardless of publication state
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeInvalidID(w, r)
		return
	}
	post, err := h.service.GetPost(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, post)
}

// CreatePost creates a blog post
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var payload createPostPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		h.writeDecodeError(w, r, err)
		return
	}
	if err := h.validator.createPost(payload); err != nil {
		h.writeError(w, r, err)
		return
	}

	post, err := h.service.CreatePost(r.Context(), payload.request())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Post created", "post_id", post.ID, "slug", post.Slug, "published", post.IsPublished)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, post)
}

// UpdatePost applies a partial update to a blog post
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeInvalidID(w, r)
		return
	}

	var req portfolio.UpdatePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeDecodeError(w, r, err)
		return
	}
	if err := h.validator.updatePost(req); err != nil {
		h.writeError(w, r, err)
		return
	}
	req.ID = id

	post, err := h.service.UpdatePost(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Post updated", "post_id", post.ID, "slug", post.Slug, "published", post.IsPublished)
	render.JSON(w, r, post)
}

// DeletePost deletes a blog post
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeInvalidID(w, r)
		return
	}
	if err := h.service.DeletePost(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Post deleted", "post_id", id)
	w.WriteHeader(http.StatusNoContent)
}
