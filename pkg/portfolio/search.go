package portfolio

import "context"

// Search matches query case-insensitively as a substring. Projects match on
// title, description or tech stack; posts match on title, content, excerpt
// or tags and only when published. A collection excluded by the search type
// is returned empty without touching the store.
func (s *service) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if req.Query == "" {
		return nil, &ValidationError{Field: "query", Message: "must not be empty"}
	}
	searchType, err := ParseSearchType(string(req.Type))
	if err != nil {
		return nil, err
	}

	result := &SearchResult{
		Projects: []*Project{},
		Posts:    []*Post{},
	}

	if searchType.includesProjects() {
		projects, err := s.repository.SearchProjects(ctx, req.Query)
		if err != nil {
			return nil, wrapStore("search projects", err)
		}
		result.Projects = nonNil(projects)
	}

	if searchType.includesPosts() {
		posts, err := s.repository.SearchPublishedPosts(ctx, req.Query)
		if err != nil {
			return nil, wrapStore("search posts", err)
		}
		result.Posts = nonNil(posts)
	}

	return result, nil
}
