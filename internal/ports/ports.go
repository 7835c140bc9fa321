package ports

import (
	"context"
	"time"

	"NewsImpact/internal/domain"
)

// FeedFetcher retrieves and normalizes the articles of a single source.
type FeedFetcher interface {
	Fetch(ctx context.Context, source domain.SourceConfig) ([]domain.Article, error)
}

// ArticleSource pulls articles from every configured source.
// Failing sources are reported, never returned as an error.
type ArticleSource interface {
	FetchAll(ctx context.Context) (map[string][]domain.Article, []domain.SourceFailure)
	Sources() []domain.SourceConfig
}

// Completer is an opaque text-completion service (Gemini, Claude, GPT, etc.).
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ImpactAnalyzer classifies a headline's impact. It never fails.
type ImpactAnalyzer interface {
	Analyze(ctx context.Context, headline, description string, symbols []string) domain.AnalysisResult
}

// BatchAnalyzer runs impact analysis over many articles with bounded concurrency.
type BatchAnalyzer interface {
	AnalyzeBatch(ctx context.Context, articles []domain.Article, concurrency int) []domain.AnalyzedArticle
}

// Scheduler runs a job periodically until stopped or ctx ends.
type Scheduler interface {
	Start(ctx context.Context, job func(context.Context, time.Time)) error
	Stop(ctx context.Context) error
}
