package api

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

// UploadAsset stores an uploaded file. It accepts multipart/form-data with
// a "file" part, or a raw body named by the ?filename= query parameter.
func (h *Handler) UploadAsset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	req := portfolio.UploadAssetRequest{
		FileName:    r.URL.Query().Get("filename"),
		ContentType: r.Header.Get("Content-Type"),
		Reader:      r.Body,
	}

	mr, err := r.MultipartReader()
	switch {
	case err == nil:
		part, err := nextFilePart(mr)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		defer part.Close()
		req.FileName = part.FileName()
		req.ContentType = part.Header.Get("Content-Type")
		req.Reader = part
	case !errors.Is(err, http.ErrNotMultipart):
		WriteAPIError(w, http.StatusBadRequest, CodeValidation, "Malformed multipart body", nil)
		return
	}

	asset, err := h.service.UploadAsset(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Asset uploaded", "key", asset.Key, "size", asset.Size, "content_type", asset.ContentType)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, asset)
}

// nextFilePart skips form fields until the "file" part.
func nextFilePart(mr *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, &portfolio.ValidationError{Field: "file", Message: "is required"}
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() == "file" {
			return part, nil
		}
		part.Close()
	}
}

// DownloadAsset streams a stored asset
func (h *Handler) DownloadAsset(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	reader, asset, err := h.service.DownloadAsset(r.Context(), key)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", asset.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(asset.Size, 10))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if asset.ETag != "" {
		etag := `"` + asset.ETag + `"`
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, reader); err != nil {
		slog.WarnContext(r.Context(), "asset stream interrupted", "key", key, "err", err)
	}
}

// DeleteAsset removes a stored asset
func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := h.service.DeleteAsset(r.Context(), key); err != nil {
		h.writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Asset deleted", "key", key)
	w.WriteHeader(http.StatusNoContent)
}
