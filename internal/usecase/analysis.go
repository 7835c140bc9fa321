package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"NewsImpact/internal/domain"
	"NewsImpact/internal/impact"
	"NewsImpact/internal/news"
	"NewsImpact/internal/ports"
)

const (
	defaultPortfolioItems = 10
	maxPortfolioItems     = 15
	maxQuickHeadlines     = 5
	maxStockItems         = 10
	stockConcurrency      = 2
)

// AnalysisDeps wires the analyzers into AnalysisService.
type AnalysisDeps struct {
	Analyzer    ports.ImpactAnalyzer
	Batcher     ports.BatchAnalyzer
	Concurrency int
	Logger      *slog.Logger
}

// AnalysisService exposes single, batch and per-stock impact analysis.
type AnalysisService struct {
	analyzer    ports.ImpactAnalyzer
	batcher     ports.BatchAnalyzer
	concurrency int
	logger      *slog.Logger
}

// NewAnalysisService constructs the analysis use cases.
func NewAnalysisService(deps AnalysisDeps) *AnalysisService {
	if deps.Concurrency <= 0 {
		deps.Concurrency = impact.DefaultConcurrency
	}
	return &AnalysisService{
		analyzer:    deps.Analyzer,
		batcher:     deps.Batcher,
		concurrency: deps.Concurrency,
		logger:      deps.Logger,
	}
}

// SingleReport is the analysis of one ad-hoc headline.
type SingleReport struct {
	Headline    string                `json:"headline"`
	Description string                `json:"description,omitempty"`
	Symbols     []string              `json:"stockSymbols"`
	Analysis    domain.AnalysisResult `json:"analysis"`
}

// BatchSummary condenses a batch sentiment.
type BatchSummary struct {
	TotalAnalyzed     int           `json:"totalAnalyzed"`
	AverageConfidence float64       `json:"averageConfidence"`
	OverallImpact     domain.Impact `json:"overallImpact"`
}

// PortfolioReport is the batch analysis of portfolio news.
type PortfolioReport struct {
	Articles  []domain.AnalyzedArticle  `json:"analyzedNews"`
	Sentiment domain.PortfolioSentiment `json:"portfolioSentiment"`
	Summary   BatchSummary              `json:"summary"`
}

// QuickAnalysis is the verdict on one headline.
type QuickAnalysis struct {
	Headline   string        `json:"headline"`
	Impact     domain.Impact `json:"impact"`
	Confidence float64       `json:"confidence"`
	Failed     bool          `json:"failed,omitempty"`
}

// QuickSummary counts verdicts; the majority wins, ties are Neutral.
type QuickSummary struct {
	Total            int           `json:"total"`
	Positive         int           `json:"positive"`
	Negative         int           `json:"negative"`
	Neutral          int           `json:"neutral"`
	OverallSentiment domain.Impact `json:"overallSentiment"`
}

// QuickReport is the result of QuickSentiment.
type QuickReport struct {
	Analyses []QuickAnalysis `json:"analyses"`
	Summary  QuickSummary    `json:"summary"`
}

// StockSummary condenses per-stock sentiment.
type StockSummary struct {
	NewsCount         int     `json:"newsCount"`
	AverageConfidence float64 `json:"averageConfidence"`
	Recommendation    string  `json:"recommendation"`
}

// StockReport is the analysis of news relevant to one symbol.
type StockReport struct {
	Symbol    string                    `json:"stockSymbol"`
	Articles  []domain.AnalyzedArticle  `json:"relevantNews"`
	Sentiment domain.PortfolioSentiment `json:"stockSentiment"`
	Summary   *StockSummary             `json:"summary,omitempty"`
}

// Single analyses one headline. Symbols default to those found in the text.
func (s *AnalysisService) Single(ctx context.Context, headline, description string, symbols []string) (SingleReport, error) {
	headline = strings.TrimSpace(headline)
	if headline == "" {
		return SingleReport{}, fmt.Errorf("headline is required: %w", domain.ErrInvalidInput)
	}
	if s.analyzer == nil {
		return SingleReport{}, fmt.Errorf("impact analyzer is not configured")
	}

	description = strings.TrimSpace(description)
	if len(symbols) == 0 {
		symbols = news.ExtractSymbols(headline + " " + description)
	}

	return SingleReport{
		Headline:    headline,
		Description: description,
		Symbols:     symbols,
		Analysis:    s.analyzer.Analyze(ctx, headline, description, symbols),
	}, nil
}

// Portfolio analyses up to maxItems articles (default 10, at most 15).
func (s *AnalysisService) Portfolio(ctx context.Context, items []domain.Article, maxItems int) (PortfolioReport, error) {
	items = withTitles(items)
	if len(items) == 0 {
		return PortfolioReport{}, fmt.Errorf("news items are required: %w", domain.ErrInvalidInput)
	}
	if s.batcher == nil {
		return PortfolioReport{}, fmt.Errorf("batch analyzer is not configured")
	}
	if maxItems <= 0 {
		maxItems = defaultPortfolioItems
	}
	maxItems = min(maxItems, maxPortfolioItems)

	selected := limit(items, maxItems)
	enriched := make([]domain.Article, len(selected))
	for i, a := range selected {
		if len(a.RelevantStocks) == 0 {
			a.RelevantStocks = news.ExtractSymbols(a.Text())
		}
		enriched[i] = a
	}

	s.debug("portfolio analysis", "items", len(enriched), "concurrency", s.concurrency)
	analyzed := s.batcher.AnalyzeBatch(ctx, enriched, s.concurrency)
	sentiment := impact.AggregateArticles(analyzed)

	return PortfolioReport{
		Articles:  analyzed,
		Sentiment: sentiment,
		Summary: BatchSummary{
			TotalAnalyzed:     len(analyzed),
			AverageConfidence: sentiment.Confidence,
			OverallImpact:     sentiment.Overall,
		},
	}, nil
}

// QuickSentiment analyses the first five headlines concurrently.
func (s *AnalysisService) QuickSentiment(ctx context.Context, headlines []string) (QuickReport, error) {
	cleaned := make([]string, 0, len(headlines))
	for _, h := range headlines {
		if h = strings.TrimSpace(h); h != "" {
			cleaned = append(cleaned, h)
		}
	}
	if len(cleaned) == 0 {
		return QuickReport{}, fmt.Errorf("headlines are required: %w", domain.ErrInvalidInput)
	}
	if s.analyzer == nil {
		return QuickReport{}, fmt.Errorf("impact analyzer is not configured")
	}
	cleaned = limit(cleaned, maxQuickHeadlines)

	analyses := make([]QuickAnalysis, len(cleaned))
	var g errgroup.Group
	for i, headline := range cleaned {
		g.Go(func() error {
			r := s.analyzer.Analyze(ctx, headline, "", nil)
			analyses[i] = QuickAnalysis{Headline: headline, Impact: r.Impact, Confidence: r.Confidence, Failed: r.Failed}
			return nil
		})
	}
	_ = g.Wait()

	summary := QuickSummary{Total: len(analyses), OverallSentiment: domain.ImpactNeutral}
	for _, a := range analyses {
		switch a.Impact {
		case domain.ImpactPositive:
			summary.Positive++
		case domain.ImpactNegative:
			summary.Negative++
		default:
			summary.Neutral++
		}
	}
	switch {
	case summary.Positive > summary.Negative:
		summary.OverallSentiment = domain.ImpactPositive
	case summary.Negative > summary.Positive:
		summary.OverallSentiment = domain.ImpactNegative
	}

	return QuickReport{Analyses: analyses, Summary: summary}, nil
}

// Stock analyses up to ten items whose text contains symbol.
func (s *AnalysisService) Stock(ctx context.Context, symbol string, items []domain.Article) (StockReport, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" || items == nil {
		return StockReport{}, fmt.Errorf("stock symbol and news items are required: %w", domain.ErrInvalidInput)
	}
	if s.batcher == nil {
		return StockReport{}, fmt.Errorf("batch analyzer is not configured")
	}

	needle := strings.ToLower(symbol)
	relevant := make([]domain.Article, 0)
	for _, a := range withTitles(items) {
		if strings.Contains(strings.ToLower(a.Text()), needle) {
			relevant = append(relevant, a)
		}
	}

	if len(relevant) == 0 {
		return StockReport{
			Symbol:    symbol,
			Articles:  []domain.AnalyzedArticle{},
			Sentiment: domain.PortfolioSentiment{Overall: domain.ImpactNeutral},
		}, nil
	}

	analyzed := s.batcher.AnalyzeBatch(ctx, limit(relevant, maxStockItems), stockConcurrency)
	sentiment := impact.AggregateArticles(analyzed)

	return StockReport{
		Symbol:    symbol,
		Articles:  analyzed,
		Sentiment: sentiment,
		Summary: &StockSummary{
			NewsCount:         len(analyzed),
			AverageConfidence: sentiment.Confidence,
			Recommendation:    impact.Recommend(sentiment),
		},
	}, nil
}

// withTitles drops items that have no title to analyse.
func withTitles(items []domain.Article) []domain.Article {
	out := make([]domain.Article, 0, len(items))
	for _, a := range items {
		if strings.TrimSpace(a.Title) != "" {
			out = append(out, a)
		}
	}
	return out
}

func (s *AnalysisService) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
