package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"NewsImpact/internal/domain"
	"NewsImpact/internal/news"
	"NewsImpact/internal/ports"
)

const (
	defaultTargetTotal = 50
	defaultFeedLimit   = 50
	filteredLimit      = 30
	defaultSearchLimit = 20
	latestPerStock     = 5
)

// NewsDeps wires the article source and feed sizing into NewsService.
type NewsDeps struct {
	Source      ports.ArticleSource
	TargetTotal int
	FeedLimit   int
	Clock       func() time.Time
	Logger      *slog.Logger
}

// NewsService runs fetch, balance and finalize for every request.
type NewsService struct {
	source      ports.ArticleSource
	targetTotal int
	feedLimit   int
	clock       func() time.Time
	logger      *slog.Logger
}

// NewNewsService constructs the aggregation use cases.
func NewNewsService(deps NewsDeps) *NewsService {
	if deps.TargetTotal <= 0 {
		deps.TargetTotal = defaultTargetTotal
	}
	if deps.FeedLimit <= 0 {
		deps.FeedLimit = defaultFeedLimit
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &NewsService{
		source:      deps.Source,
		targetTotal: deps.TargetTotal,
		feedLimit:   deps.FeedLimit,
		clock:       deps.Clock,
		logger:      deps.Logger,
	}
}

// FeedReport is the balanced general feed with its observability counters.
type FeedReport struct {
	Articles           []domain.Article       `json:"news"`
	Total              int                    `json:"total"`
	TargetTotal        int                    `json:"targetTotal"`
	SourceStats        []domain.SourceStats   `json:"sourceStats"`
	SourceDistribution map[string]int         `json:"sourceDistribution"`
	Failures           []domain.SourceFailure `json:"failures,omitempty"`
	LastUpdated        time.Time              `json:"lastUpdated"`
}

// FilteredReport is the feed narrowed to a portfolio.
type FilteredReport struct {
	Articles       []domain.Article       `json:"news"`
	Total          int                    `json:"total"`
	TotalAvailable int                    `json:"totalAvailable"`
	Portfolio      []string               `json:"portfolio"`
	Failures       []domain.SourceFailure `json:"failures,omitempty"`
	LastUpdated    time.Time              `json:"lastUpdated"`
}

// Headline is a compact article reference.
type Headline struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"publishedAt"`
	Source      string    `json:"source"`
}

// StockNews summarises coverage of one portfolio symbol.
type StockNews struct {
	Symbol    string     `json:"symbol"`
	NewsCount int        `json:"newsCount"`
	Latest    []Headline `json:"latestNews"`
}

// PortfolioSummary is per-symbol coverage of the current feed.
type PortfolioSummary struct {
	Stocks         []StockNews `json:"stocks"`
	TotalNewsCount int         `json:"totalNewsCount"`
	LastUpdated    time.Time   `json:"lastUpdated"`
}

// SearchReport lists keyword hits.
type SearchReport struct {
	Query       string           `json:"query"`
	Articles    []domain.Article `json:"news"`
	Total       int              `json:"total"`
	LastUpdated time.Time        `json:"lastUpdated"`
}

// Feed returns the balanced, de-duplicated feed with symbols attached.
func (s *NewsService) Feed(ctx context.Context) (FeedReport, error) {
	articles, stats, failures, err := s.collect(ctx)
	if err != nil {
		return FeedReport{}, err
	}

	articles = withSymbols(limit(articles, s.feedLimit), nil)
	distribution := make(map[string]int)
	for _, a := range articles {
		distribution[a.Source]++
	}

	return FeedReport{
		Articles:           articles,
		Total:              len(articles),
		TargetTotal:        s.targetTotal,
		SourceStats:        stats,
		SourceDistribution: distribution,
		Failures:           failures,
		LastUpdated:        s.clock(),
	}, nil
}

// Filtered returns feed articles mentioning any portfolio symbol.
func (s *NewsService) Filtered(ctx context.Context, symbols []string) (FilteredReport, error) {
	portfolio, err := portfolioSymbols(symbols)
	if err != nil {
		return FilteredReport{}, err
	}

	articles, _, failures, err := s.collect(ctx)
	if err != nil {
		return FilteredReport{}, err
	}

	matched := news.FilterByPortfolio(articles, portfolio)
	matched = withSymbols(limit(matched, filteredLimit), portfolio)

	return FilteredReport{
		Articles:       matched,
		Total:          len(matched),
		TotalAvailable: len(articles),
		Portfolio:      portfolio,
		Failures:       failures,
		LastUpdated:    s.clock(),
	}, nil
}

// PortfolioSummary counts coverage per symbol and lists the latest headlines.
func (s *NewsService) PortfolioSummary(ctx context.Context, symbols []string) (PortfolioSummary, error) {
	portfolio, err := portfolioSymbols(symbols)
	if err != nil {
		return PortfolioSummary{}, err
	}

	articles, _, _, err := s.collect(ctx)
	if err != nil {
		return PortfolioSummary{}, err
	}

	stocks := make([]StockNews, 0, len(portfolio))
	for _, symbol := range portfolio {
		matched := news.FilterByPortfolio(articles, []string{symbol})
		latest := make([]Headline, 0, latestPerStock)
		for _, a := range limit(matched, latestPerStock) {
			latest = append(latest, Headline{
				Title:       a.Title,
				Link:        a.Link,
				PublishedAt: a.PublishedAt,
				Source:      a.Source,
			})
		}
		stocks = append(stocks, StockNews{
			Symbol:    symbol,
			NewsCount: len(matched),
			Latest:    latest,
		})
	}

	return PortfolioSummary{
		Stocks:         stocks,
		TotalNewsCount: len(news.FilterByPortfolio(articles, portfolio)),
		LastUpdated:    s.clock(),
	}, nil
}

// Search returns up to limit feed articles containing query (default 20).
func (s *NewsService) Search(ctx context.Context, query string, maxHits int) (SearchReport, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchReport{}, fmt.Errorf("search query is required: %w", domain.ErrInvalidInput)
	}
	if maxHits <= 0 {
		maxHits = defaultSearchLimit
	}

	articles, _, _, err := s.collect(ctx)
	if err != nil {
		return SearchReport{}, err
	}

	hits := withSymbols(news.Search(articles, query, maxHits), nil)
	return SearchReport{
		Query:       query,
		Articles:    hits,
		Total:       len(hits),
		LastUpdated: s.clock(),
	}, nil
}

func (s *NewsService) collect(ctx context.Context) ([]domain.Article, []domain.SourceStats, []domain.SourceFailure, error) {
	if s.source == nil {
		return nil, nil, nil, fmt.Errorf("article source is not configured")
	}

	perSource, failures := s.source.FetchAll(ctx)
	combined, stats := news.Balance(perSource, s.source.Sources(), s.targetTotal)
	final := news.Finalize(combined)

	if s.logger != nil {
		for _, st := range stats {
			s.logger.Info("source balanced",
				"source", st.Source,
				"target", st.Target,
				"available", st.Available,
				"selected", st.Selected)
		}
		s.logger.Info("feed assembled", "combined", len(combined), "final", len(final), "failed_sources", len(failures))
	}

	return final, stats, failures, nil
}

// withSymbols returns copies of articles with RelevantStocks filled in. With a
// portfolio, only portfolio symbols mentioned by the article are kept.
func withSymbols(articles []domain.Article, portfolio []string) []domain.Article {
	out := make([]domain.Article, len(articles))
	for i, a := range articles {
		text := a.Text()
		if len(portfolio) == 0 {
			a.RelevantStocks = news.ExtractSymbols(text)
		} else {
			relevant := make([]string, 0, len(portfolio))
			for _, symbol := range portfolio {
				if news.MentionsSymbol(text, symbol) {
					relevant = append(relevant, symbol)
				}
			}
			a.RelevantStocks = relevant
		}
		out[i] = a
	}
	return out
}

func portfolioSymbols(symbols []string) ([]string, error) {
	portfolio := make([]string, 0, len(symbols))
	seen := make(map[string]struct{}, len(symbols))
	for _, symbol := range symbols {
		symbol = strings.ToLower(strings.TrimSpace(symbol))
		if symbol == "" {
			continue
		}
		if _, ok := seen[symbol]; ok {
			continue
		}
		seen[symbol] = struct{}{}
		portfolio = append(portfolio, symbol)
	}
	if len(portfolio) == 0 {
		return nil, fmt.Errorf("at least one stock symbol is required: %w", domain.ErrInvalidInput)
	}
	return portfolio, nil
}

func limit[T any](items []T, n int) []T {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}

// ProbeReport records source reachability for one probe run.
type ProbeReport struct {
	At        time.Time
	Available map[string]int
	Failures  []domain.SourceFailure
}

// Probe fetches every source once and logs what each one returned. It shares
// nothing with request handling.
func (s *NewsService) Probe(ctx context.Context, at time.Time) ProbeReport {
	report := ProbeReport{At: at, Available: map[string]int{}}
	if s.source == nil {
		return report
	}

	perSource, failures := s.source.FetchAll(ctx)
	for name, articles := range perSource {
		report.Available[name] = len(articles)
	}
	report.Failures = failures

	if s.logger != nil {
		s.logger.Info("feed probe",
			"sources", len(perSource),
			"failed", len(failures),
			"available", report.Available)
	}
	return report
}
