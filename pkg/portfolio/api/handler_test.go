package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
	"github.com/tendant/simple-portfolio/pkg/portfolio/presets"
)

func setupTest(t *testing.T, opts ...HandlerOption) http.Handler {
	t.Helper()
	svc := presets.NewTesting(t)
	return NewRouter(NewHandler(svc, opts...), RouterConfig{})
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	router := setupTest(t)
	w := doJSON(t, router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode[map[string]any](t, w)
	assert.Equal(t, "ok", resp["status"])
	assert.NotEmpty(t, resp["timestamp"])
}

func TestProfileRoutes(t *testing.T) {
	router := setupTest(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/profile", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", strings.TrimSpace(w.Body.String()))

	w = doJSON(t, router, http.MethodPut, "/api/v1/profile", `{"name":"Jane","email":"jane@example.com"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	profile := decode[portfolio.Profile](t, w)
	assert.Equal(t, "Jane", profile.Name)
	assert.Equal(t, portfolio.DefaultProfileTitle, profile.Title)

	w = doJSON(t, router, http.MethodPut, "/api/v1/profile", `{"email":null,"website_url":"https://jane.dev"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	profile = decode[portfolio.Profile](t, w)
	assert.Nil(t, profile.Email)
	require.NotNil(t, profile.WebsiteURL)
	assert.Equal(t, "https://jane.dev", *profile.WebsiteURL)
	assert.Equal(t, "Jane", profile.Name)

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name  string
			body  string
			field string
		}{
			{"bad email", `{"email":"not-an-email"}`, "email"},
			{"relative url", `{"github_url":"/jane"}`, "github_url"},
			{"null name", `{"name":null}`, "name"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := doJSON(t, router, http.MethodPut, "/api/v1/profile", tt.body)
				assert.Equal(t, http.StatusBadRequest, w.Code)
				resp := decode[APIError](t, w)
				assert.Equal(t, CodeValidation, resp.Error.Code)
				assert.Contains(t, resp.Error.Details, tt.field)
			})
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, "/api/v1/profile", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, CodeInvalidJSON, decode[APIError](t, w).Error.Code)
	})
}

func TestProjectRoutes(t *testing.T) {
	router := setupTest(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/projects", map[string]any{
		"title":       "Test Project",
		"description": "First",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[portfolio.Project](t, w)
	assert.Equal(t, 1, first.DisplayOrder)
	assert.False(t, first.IsFeatured)

	w = doJSON(t, router, http.MethodPost, "/api/v1/projects", map[string]any{
		"title":       "Second",
		"description": "Featured one",
		"is_featured": true,
		"image_url":   "https://img.example.com/2.png",
		"unknown":     "ignored",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	second := decode[portfolio.Project](t, w)
	assert.Equal(t, 2, second.DisplayOrder)

	w = doJSON(t, router, http.MethodGet, "/api/v1/projects", nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]portfolio.Project](t, w)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)

	w = doJSON(t, router, http.MethodGet, "/api/v1/projects/featured", nil)
	featured := decode[[]portfolio.Project](t, w)
	require.Len(t, featured, 1)
	assert.Equal(t, second.ID, featured[0].ID)

	w = doJSON(t, router, http.MethodPatch, "/api/v1/projects/"+itoa(second.ID), `{"image_url":null,"display_order":0}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[portfolio.Project](t, w)
	assert.Nil(t, updated.ImageURL)
	assert.Equal(t, 0, updated.DisplayOrder)
	assert.Equal(t, "Second", updated.Title)

	w = doJSON(t, router, http.MethodGet, "/api/v1/projects/"+itoa(second.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Second", decode[portfolio.Project](t, w).Title)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/projects/"+itoa(first.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	t.Run("not found", func(t *testing.T) {
		w := doJSON(t, router, http.MethodDelete, "/api/v1/projects/999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decode[APIError](t, w)
		assert.Equal(t, CodeNotFound, resp.Error.Code)
		assert.Equal(t, "Project with ID 999 not found", resp.Error.Message)

		w = doJSON(t, router, http.MethodPatch, "/api/v1/projects/999", `{"title":"x"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid ids", func(t *testing.T) {
		for _, id := range []string{"abc", "0", "-4"} {
			w := doJSON(t, router, http.MethodGet, "/api/v1/projects/"+id, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, id)
			assert.Equal(t, CodeInvalidID, decode[APIError](t, w).Error.Code)
		}
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name   string
			method string
			path   string
			body   string
			field  string
		}{
			{"missing title", http.MethodPost, "/api/v1/projects", `{"description":"x"}`, "title"},
			{"missing description", http.MethodPost, "/api/v1/projects", `{"title":"x"}`, "description"},
			{"bad url", http.MethodPost, "/api/v1/projects", `{"title":"x","description":"y","project_url":"ftp://x"}`, "project_url"},
			{"null title", http.MethodPatch, "/api/v1/projects/" + itoa(second.ID), `{"title":null}`, "title"},
			{"null featured", http.MethodPatch, "/api/v1/projects/" + itoa(second.ID), `{"is_featured":null}`, "is_featured"},
			{"bad github url", http.MethodPatch, "/api/v1/projects/" + itoa(second.ID), `{"github_url":"github.com/x"}`, "github_url"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := doJSON(t, router, tt.method, tt.path, tt.body)
				assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
				assert.Contains(t, decode[APIError](t, w).Error.Details, tt.field)
			})
		}
	})

	t.Run("fractional display order", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/projects", `{"title":"x","description":"y","display_order":1.5}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPostRoutes(t *testing.T) {
	router := setupTest(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/posts", map[string]any{
		"title":   "How to Build APIs with Node.js & TypeScript!",
		"content": "body",
		"tags":    "node,typescript",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	post := decode[portfolio.Post](t, w)
	assert.Equal(t, "how-to-build-apis-with-node-js-typescript", post.Slug)
	assert.Nil(t, post.PublishedAt)

	slugPath := "/api/v1/posts/slug/" + post.Slug

	w = doJSON(t, router, http.MethodGet, slugPath, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", strings.TrimSpace(w.Body.String()))

	w = doJSON(t, router, http.MethodGet, "/api/v1/posts/"+itoa(post.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, post.Slug, decode[portfolio.Post](t, w).Slug)

	w = doJSON(t, router, http.MethodPatch, "/api/v1/posts/"+itoa(post.ID), `{"is_published":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	published := decode[portfolio.Post](t, w)
	assert.True(t, published.IsPublished)
	assert.NotNil(t, published.PublishedAt)

	w = doJSON(t, router, http.MethodGet, slugPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, post.ID, decode[portfolio.Post](t, w).ID)

	w = doJSON(t, router, http.MethodGet, "/api/v1/posts", nil)
	require.Len(t, decode[[]portfolio.Post](t, w), 1)

	w = doJSON(t, router, http.MethodPatch, "/api/v1/posts/"+itoa(post.ID), `{"is_published":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[portfolio.Post](t, w).PublishedAt)

	w = doJSON(t, router, http.MethodGet, "/api/v1/posts", nil)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))

	t.Run("slug conflict", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/posts", map[string]any{
			"title":   "How to build APIs with Node.js and... no, TypeScript",
			"content": "other",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(t, router, http.MethodPost, "/api/v1/posts", map[string]any{
			"title":   "how to build APIs with node.js & typescript",
			"content": "duplicate",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, CodeConflict, decode[APIError](t, w).Error.Code)
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name   string
			method string
			path   string
			body   string
			field  string
		}{
			{"missing content", http.MethodPost, "/api/v1/posts", `{"title":"x"}`, "content"},
			{"zero reading time", http.MethodPost, "/api/v1/posts", `{"title":"x","content":"y","reading_time_minutes":0}`, "reading_time_minutes"},
			{"title without slug", http.MethodPost, "/api/v1/posts", `{"title":"!!!","content":"y"}`, "title"},
			{"negative reading time", http.MethodPatch, "/api/v1/posts/" + itoa(post.ID), `{"reading_time_minutes":-3}`, "reading_time_minutes"},
			{"null publish flag", http.MethodPatch, "/api/v1/posts/" + itoa(post.ID), `{"is_published":null}`, "is_published"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := doJSON(t, router, tt.method, tt.path, tt.body)
				assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
				assert.Contains(t, decode[APIError](t, w).Error.Details, tt.field)
			})
		}
	})

	t.Run("delete", func(t *testing.T) {
		w := doJSON(t, router, http.MethodDelete, "/api/v1/posts/"+itoa(post.ID), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = doJSON(t, router, http.MethodDelete, "/api/v1/posts/"+itoa(post.ID), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSearchRoute(t *testing.T) {
	router := setupTest(t)

	doJSON(t, router, http.MethodPost, "/api/v1/projects", `{"title":"Go Service","description":"gRPC","tech_stack":"Go, Postgres"}`)
	doJSON(t, router, http.MethodPost, "/api/v1/posts", `{"title":"Secret draft","content":"postgres tuning"}`)
	doJSON(t, router, http.MethodPost, "/api/v1/posts", `{"title":"Public notes","content":"Postgres indexes","is_published":true}`)

	w := doJSON(t, router, http.MethodGet, "/api/v1/search?q=postgres", nil)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[portfolio.SearchResult](t, w)
	assert.Len(t, res.Projects, 1)
	assert.Len(t, res.Posts, 1)

	w = doJSON(t, router, http.MethodGet, "/api/v1/search?q=secret&type=posts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"projects":[],"posts":[]}`, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/v1/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[APIError](t, w).Error.Details, "q")

	w = doJSON(t, router, http.MethodGet, "/api/v1/search?q=go&type=users", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[APIError](t, w).Error.Details, "type")
}

func TestAssetRoutes(t *testing.T) {
	router := setupTest(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("note", "ignored"))
	fw, err := mw.CreateFormFile("file", "avatar.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\x89PNG fake image"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assets", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	asset := decode[portfolio.Asset](t, w)
	assert.True(t, strings.HasSuffix(asset.Key, ".png"))
	assert.Equal(t, "/api/v1/assets/"+asset.Key, asset.URL)
	assert.Equal(t, int64(len("\x89PNG fake image")), asset.Size)

	w = doJSON(t, router, http.MethodGet, asset.URL, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "\x89PNG fake image", w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req = httptest.NewRequest(http.MethodGet, asset.URL, nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotModified, w.Code)

	w = doJSON(t, router, http.MethodDelete, asset.URL, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, asset.URL, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	t.Run("raw body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/assets?filename=notes.txt", strings.NewReader("plain"))
		req.Header.Set("Content-Type", "text/plain")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		asset := decode[portfolio.Asset](t, w)
		assert.True(t, strings.HasSuffix(asset.Key, ".txt"))
		assert.Equal(t, "text/plain", asset.ContentType)
	})

	t.Run("missing file part", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("note", "no file"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/assets", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("too large", func(t *testing.T) {
		router := setupTest(t, WithMaxUploadBytes(8))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/assets?filename=big.bin", strings.NewReader(strings.Repeat("x", 64)))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
