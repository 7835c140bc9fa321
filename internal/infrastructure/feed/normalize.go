package feed

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"NewsImpact/internal/domain"
)

// Normalize maps parsed feed items to articles labelled with source.
// Items without a title are dropped.
func Normalize(parsed *gofeed.Feed, source string, now time.Time) []domain.Article {
	if parsed == nil {
		return nil
	}

	articles := make([]domain.Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		title := collapseSpaces(item.Title)
		if title == "" {
			continue
		}

		description := plainText(item.Description)
		if description == "" {
			description = plainText(item.Content)
		}

		publishedAt := now
		switch {
		case item.PublishedParsed != nil:
			publishedAt = *item.PublishedParsed
		case item.UpdatedParsed != nil:
			publishedAt = *item.UpdatedParsed
		}

		link := strings.TrimSpace(item.Link)
		guid := strings.TrimSpace(item.GUID)
		if guid == "" {
			guid = link
		}

		articles = append(articles, domain.Article{
			Title:          title,
			Description:    description,
			Link:           link,
			PublishedAt:    publishedAt,
			Source:         source,
			GUID:           guid,
			RelevantStocks: []string{},
		})
	}
	return articles
}

// plainText strips markup from feed HTML fragments.
func plainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapseSpaces(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapseSpaces(fragment)
	}
	return collapseSpaces(doc.Text())
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
