package news

import (
	"strings"

	"NewsImpact/internal/domain"
)

// Search returns up to limit articles whose title or description contains
// query, case-insensitively. A non-positive limit means no limit.
func Search(articles []domain.Article, query string, limit int) []domain.Article {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	hits := make([]domain.Article, 0)
	for _, article := range articles {
		if limit > 0 && len(hits) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(article.Text()), query) {
			hits = append(hits, article)
		}
	}
	return hits
}
