package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/campus-cloud/coursedex/internal/domain/entity"
)

const defaultSuggestionLimit = 10

// minTokenLen drops noise words like "a" and "to" from suggestions.
const minTokenLen = 3

// Suggestions returns up to limit distinct lowercased tokens from the
// collection's text fields that contain the query as a substring, in
// first-seen order. Tokens are not frequency-ranked.
func (s *Service) Suggestions(ctx context.Context, t entity.Type, q string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}
	needle := strings.ToLower(strings.TrimSpace(q))
	if needle == "" {
		return []string{}, nil
	}

	entities, err := s.repo.List(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("list %s collection: %w", t, err)
	}

	seen := make(map[string]struct{})
	suggestions := make([]string, 0, limit)
	for _, e := range entities {
		for _, token := range strings.Fields(e.SearchText()) {
			if len(token) < minTokenLen || !strings.Contains(token, needle) {
				continue
			}
			if _, dup := seen[token]; dup {
				continue
			}
			seen[token] = struct{}{}
			suggestions = append(suggestions, token)
			if len(suggestions) == limit {
				return suggestions, nil
			}
		}
	}
	return suggestions, nil
}
