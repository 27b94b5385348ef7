package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

// createProjectPayload is the request body for creating a project
type createProjectPayload struct {
	Title        string  `json:"title" validate:"required"`
	Description  string  `json:"description" validate:"required"`
	TechStack    *string `json:"tech_stack"`
	ProjectURL   *string `json:"project_url" validate:"omitempty,http_url"`
	GithubURL    *string `json:"github_url" validate:"omitempty,http_url"`
	ImageURL     *string `json:"image_url" validate:"omitempty,http_url"`
	IsFeatured   bool    `json:"is_featured"`
	DisplayOrder *int    `json:"display_order"`
}

func (p createProjectPayload) request() portfolio.CreateProjectRequest {
	return portfolio.CreateProjectRequest{
		Title:        p.Title,
		Description:  p.Description,
		TechStack:    p.TechStack,
		ProjectURL:   p.ProjectURL,
		GithubURL:    p.GithubURL,
		ImageURL:     p.ImageURL,
		IsFeatured:   p.IsFeatured,
		DisplayOrder: p.DisplayOrder,
	}
}

// ListProjects lists all projects in display order
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.ListProjects(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, projects)
}

// ListFeaturedProjects lists featured projects in display order
func (h *Handler) ListFeaturedProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.ListFeaturedProjects(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, projects)
}

// GetProject returns one project by id
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeInvalidID(w, r)
		return
	}
	project, err := h.service.GetProject(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, project)
}

// CreateProject creates a project
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var payload createProjectPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		h.writeDecodeError(w, r, err)
		return
	}
	if err := h.validator.createProject(payload); err != nil {
		h.writeError(w, r, err)
		return
	}

	project, err := h.service.CreateProject(r.Context(), payload.request())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Project created", "project_id", project.ID, "display_order", project.DisplayOrder)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, project)
}

// UpdateProject applies a partial update to a project
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeInvalidID(w, r)
		return
	}

	var req portfolio.UpdateProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeDecodeError(w, r, err)
		return
	}
	if err := h.validator.updateProject(req); err != nil {
		h.writeError(w, r, err)
		return
	}
	req.ID = id

	project, err := h.service.UpdateProject(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Project updated", "project_id", project.ID)
	render.JSON(w, r, project)
}

// DeleteProject deletes a project
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeInvalidID(w, r)
		return
	}
	if err := h.service.DeleteProject(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Project deleted", "project_id", id)
	w.WriteHeader(http.StatusNoContent)
}
