package slug_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tendant/simple-portfolio/pkg/portfolio/slug"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"mixed punctuation", "How to Build APIs with Node.js & TypeScript!", "how-to-build-apis-with-node-js-typescript"},
		{"simple", "Hello World", "hello-world"},
		{"leading and trailing junk", "  --Hello--  ", "hello"},
		{"digits kept", "Top 10 Go Tips", "top-10-go-tips"},
		{"existing hyphens collapse", "a - b -- c", "a-b-c"},
		{"underscores separate", "snake_case_title", "snake-case-title"},
		{"accents are separators", "Café résumé", "caf-r-sum"},
		{"only punctuation", "!!!", ""},
		{"empty", "", ""},
		{"already a slug", "already-a-slug", "already-a-slug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.Derive(tt.input))
		})
	}
}

func TestDeriveShape(t *testing.T) {
	inputs := []string{
		"How to Build APIs with Node.js & TypeScript!",
		"---",
		"ÜBER cool 🚀 launch!!",
		"Tab\tand\nnewline",
		"C++ / C# / F#",
		strings.Repeat("x y ", 50),
	}
	for _, in := range inputs {
		got := slug.Derive(in)
		if got == "" {
			continue
		}
		assert.True(t, slug.Valid(got), "Derive(%q) = %q is not a valid slug", in, got)
	}
}

func TestDeriveDeterministic(t *testing.T) {
	title := "Same Title, Same Slug"
	assert.Equal(t, slug.Derive(title), slug.Derive(title))
}

func TestValid(t *testing.T) {
	assert.True(t, slug.Valid("hello-world"))
	assert.True(t, slug.Valid("a1"))
	assert.False(t, slug.Valid(""))
	assert.False(t, slug.Valid("-hello"))
	assert.False(t, slug.Valid("hello-"))
	assert.False(t, slug.Valid("hello--world"))
	assert.False(t, slug.Valid("Hello"))
	assert.False(t, slug.Valid("hello world"))
}
