// Package api exposes the portfolio service over HTTP using chi.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

// DefaultMaxUploadBytes bounds asset uploads when no limit is configured.
const DefaultMaxUploadBytes int64 = 10 << 20

// maxJSONBytes bounds JSON request bodies.
const maxJSONBytes int64 = 1 << 20

// Handler handles HTTP requests for portfolio content
type Handler struct {
	service        portfolio.Service
	logger         *slog.Logger
	validator      *requestValidator
	maxUploadBytes int64
	now            func() time.Time
}

// HandlerOption configures a Handler
type HandlerOption func(*Handler)

// WithLogger sets the logger used for failed requests
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithMaxUploadBytes limits the size of uploaded assets
func WithMaxUploadBytes(n int64) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.maxUploadBytes = n
		}
	}
}

// NewHandler creates a new portfolio handler
func NewHandler(service portfolio.Service, opts ...HandlerOption) *Handler {
	h := &Handler{
		service:        service,
		logger:         slog.Default(),
		validator:      newRequestValidator(),
		maxUploadBytes: DefaultMaxUploadBytes,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the content routes, meant to be mounted under /api/v1
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/profile", h.GetProfile)
	r.Put("/profile", h.UpsertProfile)

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", h.ListProjects)
		r.Post("/", h.CreateProject)
		r.Get("/featured", h.ListFeaturedProjects)
		r.Get("/{id}", h.GetProject)
		r.Patch("/{id}", h.UpdateProject)
		r.Delete("/{id}", h.DeleteProject)
	})

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", h.ListPublishedPosts)
		r.Post("/", h.CreatePost)
		r.Get("/slug/{slug}", h.GetPublishedPostBySlug)
		r.Get("/{id}", h.GetPost)
		r.Patch("/{id}", h.UpdatePost)
		r.Delete("/{id}", h.DeletePost)
	})

	r.Get("/search", h.Search)

	r.Route("/assets", func(r chi.Router) {
		r.Post("/", h.UploadAsset)
		r.Get("/{key}", h.DownloadAsset)
		r.Head("/{key}", h.DownloadAsset)
		r.Delete("/{key}", h.DeleteAsset)
	})

	return r
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":    "ok",
		"timestamp": h.now().UTC(),
	})
}

// decodeJSON reads a bounded JSON body into dst. Unknown fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// pathID parses the {id} URL parameter. Non-numeric ids are reported as
// invalid; non-positive ones are rejected by the service.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func writeInvalidID(w http.ResponseWriter, r *http.Request) {
	WriteAPIError(w, http.StatusBadRequest, CodeInvalidID, "Invalid ID: "+chi.URLParam(r, "id"), nil)
}
