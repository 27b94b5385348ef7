package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func TestRequestValidator_CreateProject(t *testing.T) {
	v := newRequestValidator()

	tests := []struct {
		name    string
		payload createProjectPayload
		fields  []string
	}{
		{"valid", createProjectPayload{Title: "t", Description: "d", ProjectURL: strPtr("https://x.dev")}, nil},
		{"missing both", createProjectPayload{}, []string{"title", "description"}},
		{"bad image url", createProjectPayload{Title: "t", Description: "d", ImageURL: strPtr("not a url")}, []string{"image_url"}},
		{"nil urls pass", createProjectPayload{Title: "t", Description: "d", DisplayOrder: intPtr(-1)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.createProject(tt.payload)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			var verrs portfolio.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			for _, f := range tt.fields {
				assert.Contains(t, verrs.Fields(), f)
			}
			assert.Len(t, verrs, len(tt.fields))
		})
	}
}

func TestRequestValidator_CreatePost(t *testing.T) {
	v := newRequestValidator()

	assert.NoError(t, v.createPost(createPostPayload{Title: "Hi", Content: "c", ReadingTimeMinutes: intPtr(3)}))

	err := v.createPost(createPostPayload{Title: "???", Content: "c", ReadingTimeMinutes: intPtr(0)})
	var verrs portfolio.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.Fields()
	assert.Equal(t, msgSlugRequired, fields["title"])
	assert.Equal(t, "must be a positive integer", fields["reading_time_minutes"])
}

func TestRequestValidator_Partial(t *testing.T) {
	v := newRequestValidator()

	assert.NoError(t, v.updateProject(portfolio.UpdateProjectRequest{}))
	assert.NoError(t, v.updateProject(portfolio.UpdateProjectRequest{TechStack: portfolio.Null[string]()}))
	assert.Error(t, v.updateProject(portfolio.UpdateProjectRequest{Description: portfolio.Some("")}))

	assert.NoError(t, v.updatePost(portfolio.UpdatePostRequest{ReadingTimeMinutes: portfolio.Null[int]()}))
	assert.Error(t, v.updatePost(portfolio.UpdatePostRequest{Title: portfolio.Some("--")}))

	assert.NoError(t, v.profile(portfolio.UpsertProfileRequest{Email: portfolio.Null[string]()}))
	assert.Error(t, v.profile(portfolio.UpsertProfileRequest{Bio: portfolio.Null[string]()}))
}

func TestRequestValidator_Search(t *testing.T) {
	v := newRequestValidator()

	assert.NoError(t, v.search("go", ""))
	assert.NoError(t, v.search("go", "projects"))

	var verrs portfolio.ValidationErrors
	require.ErrorAs(t, v.search("", "everything"), &verrs)
	assert.Equal(t, "is required", verrs.Fields()["q"])
	assert.Equal(t, "must be one of all, projects, posts", verrs.Fields()["type"])
}
