package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

// GetProfile returns the profile, or null when none has been saved yet
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.GetProfile(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, profile)
}

// UpsertProfile creates or partially updates the profile
func (h *Handler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	var req portfolio.UpsertProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeDecodeError(w, r, err)
		return
	}
	if err := h.validator.profile(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	profile, err := h.service.UpsertProfile(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Profile saved", "updated_at", profile.UpdatedAt)
	render.JSON(w, r, profile)
}
