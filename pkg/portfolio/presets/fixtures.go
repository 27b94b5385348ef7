package presets

import (
	"context"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

func ptr[T any](v T) *T { return &v }

// LoadFixtures seeds svc with a profile, three projects (two featured) and
// three posts, one of them a draft.
func LoadFixtures(ctx context.Context, svc portfolio.Service) error {
	_, err := svc.UpsertProfile(ctx, portfolio.UpsertProfileRequest{
		Name:      portfolio.Some("Ada Lovelace"),
		Title:     portfolio.Some("Backend Engineer"),
		Bio:       portfolio.Some("Writes Go services and the occasional compiler."),
		Email:     portfolio.Some("ada@example.com"),
		GithubURL: portfolio.Some("https://github.com/ada"),
	})
	if err != nil {
		return err
	}

	projects := []portfolio.CreateProjectRequest{
		{
			Title:       "Analytical Engine",
			Description: "A general purpose mechanical computer.",
			TechStack:   ptr("Go, PostgreSQL"),
			GithubURL:   ptr("https://github.com/ada/engine"),
			IsFeatured:  true,
		},
		{
			Title:       "Note G",
			Description: "Bernoulli numbers, step by step.",
			TechStack:   ptr("Go"),
			IsFeatured:  true,
		},
		{
			Title:       "Punch Cards",
			Description: "Card reader service with a REST API.",
			TechStack:   ptr("Go, SQLite"),
		},
	}
	for _, p := range projects {
		if _, err := svc.CreateProject(ctx, p); err != nil {
			return err
		}
	}

	posts := []portfolio.CreatePostRequest{
		{
			Title:              "Getting Started with Go",
			Content:            "Go is a small language with a big standard library.",
			Excerpt:            ptr("A gentle introduction."),
			IsPublished:        true,
			Tags:               ptr("go,beginners"),
			ReadingTimeMinutes: ptr(5),
		},
		{
			Title:       "Structured Logging with slog",
			Content:     "Key-value pairs beat format strings.",
			IsPublished: true,
			Tags:        ptr("go,logging"),
		},
		{
			Title:   "Unfinished Thoughts",
			Content: "Draft content about generics.",
			Tags:    ptr("go,generics"),
		},
	}
	for _, p := range posts {
		if _, err := svc.CreatePost(ctx, p); err != nil {
			return err
		}
	}

	return nil
}
