package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsImpact/internal/domain"
	"NewsImpact/internal/impact"
)

var now = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	articles map[string][]domain.Article
	failures []domain.SourceFailure
	configs  []domain.SourceConfig
}

func (f fakeSource) FetchAll(context.Context) (map[string][]domain.Article, []domain.SourceFailure) {
	return f.articles, f.failures
}

func (f fakeSource) Sources() []domain.SourceConfig { return f.configs }

func item(source, title, desc string, age time.Duration) domain.Article {
	return domain.Article{Title: title, Description: desc, Link: "https://x/" + title, Source: source, PublishedAt: now.Add(-age)}
}

func newFeedService() *NewsService {
	src := fakeSource{
		articles: map[string][]domain.Article{
			"et": {
				item("et", "Reliance Industries posts record profit", "RIL beats estimates", time.Hour),
				item("et", "Sensex hits record high", "", 2*time.Hour),
				item("et", "TCS wins major contract", "Tata Consultancy bags deal", 3*time.Hour),
			},
			"mint": {
				item("mint", "Sensex hits record high!", "duplicate from mint", 0),
				item("mint", "Infosys guidance cut", "Infy shares slide", time.Hour),
			},
		},
		failures: []domain.SourceFailure{{Source: "bs", Reason: "timeout"}},
		configs: []domain.SourceConfig{
			{Name: "et", Weight: 0.6, MaxArticles: 30, QualityScore: 9, Priority: domain.PriorityHigh},
			{Name: "mint", Weight: 0.4, MaxArticles: 20, QualityScore: 8, Priority: domain.PriorityMedium},
			{Name: "bs", Weight: 0.2, MaxArticles: 10, QualityScore: 7, Priority: domain.PriorityLow},
		},
	}
	return NewNewsService(NewsDeps{Source: src, TargetTotal: 10, Clock: func() time.Time { return now }})
}

func TestFeedBalancesDedupesAndTags(t *testing.T) {
	t.Parallel()

	report, err := newFeedService().Feed(context.Background())
	require.NoError(t, err)

	require.Equal(t, 4, report.Total)
	assert.Equal(t, "Reliance Industries posts record profit", report.Articles[0].Title)
	assert.Equal(t, []string{"reliance"}, report.Articles[0].RelevantStocks)

	var sensex domain.Article
	for _, a := range report.Articles {
		if a.Title == "Sensex hits record high" || a.Title == "Sensex hits record high!" {
			sensex = a
		}
	}
	assert.Equal(t, 9, sensex.QualityScore, "higher quality duplicate kept")
	assert.Equal(t, "et", sensex.Source)

	assert.Equal(t, map[string]int{"et": 3, "mint": 1}, report.SourceDistribution)
	require.Len(t, report.SourceStats, 3)
	assert.Equal(t, domain.SourceStats{Source: "et", Target: 6, Available: 3, Selected: 3, Weight: 0.6}, report.SourceStats[0])
	assert.Equal(t, []domain.SourceFailure{{Source: "bs", Reason: "timeout"}}, report.Failures)
	assert.Equal(t, now, report.LastUpdated)
}

func TestFilteredUsesAliasesAndPortfolioSymbols(t *testing.T) {
	t.Parallel()

	report, err := newFeedService().Filtered(context.Background(), []string{"RELIANCE", " infosys ", "reliance"})
	require.NoError(t, err)

	assert.Equal(t, []string{"reliance", "infosys"}, report.Portfolio)
	require.Equal(t, 2, report.Total)
	assert.Equal(t, 4, report.TotalAvailable)
	for _, a := range report.Articles {
		assert.Len(t, a.RelevantStocks, 1)
	}
}

func TestFilteredRejectsEmptyPortfolio(t *testing.T) {
	t.Parallel()

	_, err := newFeedService().Filtered(context.Background(), []string{" ", ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = newFeedService().PortfolioSummary(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPortfolioSummary(t *testing.T) {
	t.Parallel()

	summary, err := newFeedService().PortfolioSummary(context.Background(), []string{"tcs", "wipro"})
	require.NoError(t, err)

	require.Len(t, summary.Stocks, 2)
	assert.Equal(t, 1, summary.Stocks[0].NewsCount)
	assert.Equal(t, "TCS wins major contract", summary.Stocks[0].Latest[0].Title)
	assert.Equal(t, 0, summary.Stocks[1].NewsCount)
	assert.Empty(t, summary.Stocks[1].Latest)
	assert.Equal(t, 1, summary.TotalNewsCount)
}

func TestSearch(t *testing.T) {
	t.Parallel()

	report, err := newFeedService().Search(context.Background(), "SENSEX", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Total)

	_, err = newFeedService().Search(context.Background(), "  ", 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

type scriptedAnalyzer struct {
	mu      sync.Mutex
	results map[string]domain.AnalysisResult
	seen    []string
	symbols map[string][]string
}

func (s *scriptedAnalyzer) Analyze(_ context.Context, headline, _ string, symbols []string) domain.AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, headline)
	if s.symbols == nil {
		s.symbols = map[string][]string{}
	}
	s.symbols[headline] = symbols
	if r, ok := s.results[headline]; ok {
		return r
	}
	return domain.AnalysisResult{Impact: domain.ImpactNeutral, Confidence: 0.5, Reasoning: "n/a"}
}

func newAnalysisService(analyzer *scriptedAnalyzer) *AnalysisService {
	batcher := impact.NewBatcher(analyzer, time.Millisecond, nil)
	return NewAnalysisService(AnalysisDeps{Analyzer: analyzer, Batcher: batcher})
}

func TestSingleExtractsSymbols(t *testing.T) {
	t.Parallel()

	analyzer := &scriptedAnalyzer{results: map[string]domain.AnalysisResult{
		"Wipro wins deal": {Impact: domain.ImpactPositive, Confidence: 0.72, Reasoning: "deal"},
	}}
	report, err := newAnalysisService(analyzer).Single(context.Background(), " Wipro wins deal ", "", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"wipro"}, report.Symbols)
	assert.Equal(t, domain.ImpactPositive, report.Analysis.Impact)
	assert.Equal(t, []string{"wipro"}, analyzer.symbols["Wipro wins deal"])

	_, err = newAnalysisService(analyzer).Single(context.Background(), "   ", "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPortfolioCapsItemsAndAggregates(t *testing.T) {
	t.Parallel()

	items := make([]domain.Article, 20)
	results := map[string]domain.AnalysisResult{}
	for i := range items {
		title := string(rune('A'+i)) + " reliance update"
		items[i] = domain.Article{Title: title}
		results[title] = domain.AnalysisResult{Impact: domain.ImpactPositive, Confidence: 0.8}
	}
	analyzer := &scriptedAnalyzer{results: results}
	svc := newAnalysisService(analyzer)

	report, err := svc.Portfolio(context.Background(), items, 0)
	require.NoError(t, err)
	assert.Len(t, report.Articles, 10)
	assert.Equal(t, domain.ImpactPositive, report.Sentiment.Overall)
	assert.Equal(t, 10, report.Summary.TotalAnalyzed)
	assert.Equal(t, []string{"reliance"}, report.Articles[0].RelevantStocks)

	report, err = svc.Portfolio(context.Background(), items, 50)
	require.NoError(t, err)
	assert.Len(t, report.Articles, 15)

	_, err = svc.Portfolio(context.Background(), []domain.Article{{Title: " "}}, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestQuickSentimentMajority(t *testing.T) {
	t.Parallel()

	analyzer := &scriptedAnalyzer{results: map[string]domain.AnalysisResult{
		"up1":   {Impact: domain.ImpactPositive, Confidence: 0.7},
		"up2":   {Impact: domain.ImpactPositive, Confidence: 0.7},
		"down1": {Impact: domain.ImpactNegative, Confidence: 0.7},
	}}
	report, err := newAnalysisService(analyzer).QuickSentiment(context.Background(), []string{"up1", "down1", "up2", "flat", "flat2", "ignored"})
	require.NoError(t, err)

	assert.Len(t, report.Analyses, 5)
	assert.Equal(t, "up1", report.Analyses[0].Headline)
	assert.Equal(t, QuickSummary{Total: 5, Positive: 2, Negative: 1, Neutral: 2, OverallSentiment: domain.ImpactPositive}, report.Summary)
	assert.NotContains(t, analyzer.seen, "ignored")

	_, err = newAnalysisService(analyzer).QuickSentiment(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStockAnalysis(t *testing.T) {
	t.Parallel()

	analyzer := &scriptedAnalyzer{results: map[string]domain.AnalysisResult{
		"ITC hikes prices":  {Impact: domain.ImpactNegative, Confidence: 0.9},
		"ITC demerger news": {Impact: domain.ImpactNegative, Confidence: 0.8},
	}}
	svc := newAnalysisService(analyzer)
	items := []domain.Article{{Title: "ITC hikes prices"}, {Title: "Gold flat"}, {Title: "ITC demerger news"}}

	report, err := svc.Stock(context.Background(), "itc", items)
	require.NoError(t, err)
	assert.Len(t, report.Articles, 2)
	assert.Equal(t, domain.ImpactNegative, report.Sentiment.Overall)
	require.NotNil(t, report.Summary)
	assert.Equal(t, "Strong negative sentiment detected. Exercise caution.", report.Summary.Recommendation)

	report, err = svc.Stock(context.Background(), "wipro", items)
	require.NoError(t, err)
	assert.Empty(t, report.Articles)
	assert.Equal(t, domain.PortfolioSentiment{Overall: domain.ImpactNeutral}, report.Sentiment)
	assert.Nil(t, report.Summary)

	_, err = svc.Stock(context.Background(), "", items)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.Stock(context.Background(), "itc", nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestProbeReportsAvailability(t *testing.T) {
	t.Parallel()

	report := newFeedService().Probe(context.Background(), now)
	assert.Equal(t, now, report.At)
	assert.Equal(t, map[string]int{"et": 3, "mint": 2}, report.Available)
	assert.Len(t, report.Failures, 1)

	empty := NewNewsService(NewsDeps{}).Probe(context.Background(), now)
	assert.Empty(t, empty.Available)
}
