package news

import (
	"regexp"
	"sort"
	"strings"

	"NewsImpact/internal/domain"
)

var (
	nonWordExpr    = regexp.MustCompile(`[^\w\s]`)
	whitespaceExpr = regexp.MustCompile(`\s+`)
)

// NormalizeTitle case-folds a title, strips punctuation and collapses whitespace.
func NormalizeTitle(title string) string {
	normalized := strings.ToLower(title)
	normalized = nonWordExpr.ReplaceAllString(normalized, "")
	normalized = whitespaceExpr.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(normalized)
}

// dedupeKey falls back to the folded raw title when normalization leaves
// nothing (titles written entirely in non-Latin scripts).
func dedupeKey(title string) string {
	if key := NormalizeTitle(title); key != "" {
		return key
	}
	return strings.ToLower(strings.TrimSpace(title))
}

// Finalize drops duplicate titles, keeping the strictly higher quality
// version (first seen on ties), and orders the result by quality then
// recency. The input slice is left untouched.
func Finalize(articles []domain.Article) []domain.Article {
	kept := make([]domain.Article, 0, len(articles))
	index := make(map[string]int, len(articles))

	for _, article := range articles {
		key := dedupeKey(article.Title)
		if pos, ok := index[key]; ok {
			if article.QualityScore > kept[pos].QualityScore {
				kept[pos] = article
			}
			continue
		}
		index[key] = len(kept)
		kept = append(kept, article)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].QualityScore != kept[j].QualityScore {
			return kept[i].QualityScore > kept[j].QualityScore
		}
		return kept[i].PublishedAt.After(kept[j].PublishedAt)
	})

	return kept
}
