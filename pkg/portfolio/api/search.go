package api

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

// Search matches projects and published posts by substring
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	searchType := r.URL.Query().Get("type")
	if err := h.validator.search(query, searchType); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.service.Search(r.Context(), portfolio.SearchRequest{
		Query: query,
		Type:  portfolio.SearchType(searchType),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}
