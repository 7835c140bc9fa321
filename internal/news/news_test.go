package news

import (
	"reflect"
	"testing"
	"time"

	"NewsImpact/internal/domain"
)

var baseTime = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func article(title string, quality int, age time.Duration) domain.Article {
	return domain.Article{
		Title:        title,
		Link:         "https://example.com/" + title,
		PublishedAt:  baseTime.Add(-age),
		QualityScore: quality,
	}
}

func titles(articles []domain.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.Title
	}
	return out
}

func TestNormalizeTitle(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Sensex hits record high!":       "sensex hits record high",
		"  Sensex,  hits\trecord HIGH ":  "sensex hits record high",
		"Nifty 50: up 1.2% (intraday)":   "nifty 50 up 12 intraday",
		"under_score stays":              "under_score stays",
		"???":                            "",
	}
	for in, want := range cases {
		if got := NormalizeTitle(in); got != want {
			t.Fatalf("NormalizeTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFinalizeKeepsHigherQuality(t *testing.T) {
	t.Parallel()

	high := article("Sensex hits record high", 9, time.Hour)
	low := article("sensex hits record high!", 8, 0)

	for _, input := range [][]domain.Article{{high, low}, {low, high}} {
		got := Finalize(input)
		if len(got) != 1 {
			t.Fatalf("expected 1 article, got %d", len(got))
		}
		if got[0].QualityScore != 9 {
			t.Fatalf("expected quality 9 article, got %d", got[0].QualityScore)
		}
	}
}

func TestFinalizeTieKeepsFirst(t *testing.T) {
	t.Parallel()

	first := article("Rupee gains", 8, 0)
	first.Source = "first"
	second := article("RUPEE GAINS", 8, 0)
	second.Source = "second"

	got := Finalize([]domain.Article{first, second})
	if len(got) != 1 || got[0].Source != "first" {
		t.Fatalf("expected first article to win tie, got %+v", got)
	}
}

func TestFinalizeOrdersByQualityThenRecency(t *testing.T) {
	t.Parallel()

	input := []domain.Article{
		article("old eight", 8, 3*time.Hour),
		article("new eight", 8, time.Hour),
		article("old nine", 9, 5*time.Hour),
		article("new nine", 9, 0),
	}

	got := titles(Finalize(input))
	want := []string{"new nine", "old nine", "new eight", "old eight"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestFinalizeIdempotent(t *testing.T) {
	t.Parallel()

	input := []domain.Article{
		article("A story", 7, time.Hour),
		article("a story.", 9, 2*time.Hour),
		article("B story", 9, 2*time.Hour),
		article("C story", 9, 2*time.Hour),
		article("D story", 8, 0),
	}

	once := Finalize(input)
	twice := Finalize(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("finalize is not idempotent:\n%v\n%v", titles(once), titles(twice))
	}
	if input[0].Title != "A story" {
		t.Fatalf("input mutated")
	}
}

func TestFinalizeDoesNotMergeNonLatinTitles(t *testing.T) {
	t.Parallel()

	got := Finalize([]domain.Article{
		article("शेयर बाजार में तेजी", 8, 0),
		article("सेंसेक्स गिरा", 8, 0),
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 distinct articles, got %d", len(got))
	}
}

func TestBalanceRespectsCaps(t *testing.T) {
	t.Parallel()

	perSource := map[string][]domain.Article{
		"et":   make([]domain.Article, 0, 40),
		"mint": make([]domain.Article, 0, 5),
	}
	for i := 0; i < 40; i++ {
		perSource["et"] = append(perSource["et"], article("et", 0, time.Duration(i)*time.Minute))
	}
	for i := 0; i < 5; i++ {
		perSource["mint"] = append(perSource["mint"], article("mint", 0, time.Duration(i)*time.Minute))
	}

	configs := []domain.SourceConfig{
		{Name: "et", Weight: 0.6, MaxArticles: 25, QualityScore: 9, Priority: domain.PriorityHigh},
		{Name: "mint", Weight: 0.4, MaxArticles: 20, QualityScore: 8, Priority: domain.PriorityMedium},
	}

	combined, stats := Balance(perSource, configs, 50)
	if len(combined) != 30 {
		t.Fatalf("expected 30 combined articles, got %d", len(combined))
	}

	want := []domain.SourceStats{
		{Source: "et", Target: 30, Available: 40, Selected: 25, Weight: 0.6},
		{Source: "mint", Target: 20, Available: 5, Selected: 5, Weight: 0.4},
	}
	if !reflect.DeepEqual(stats, want) {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	for i, a := range combined[:25] {
		if a.QualityScore != 9 || a.Priority != domain.PriorityHigh || a.SourceWeight != 0.6 {
			t.Fatalf("article %d not stamped with source config: %+v", i, a)
		}
	}
}

func TestBalanceTakesNewestFirst(t *testing.T) {
	t.Parallel()

	perSource := map[string][]domain.Article{
		"et": {
			article("oldest", 0, 3*time.Hour),
			article("newest", 0, 0),
			article("middle", 0, time.Hour),
		},
	}
	configs := []domain.SourceConfig{{Name: "et", Weight: 1, MaxArticles: 2}}

	combined, _ := Balance(perSource, configs, 2)
	got := titles(combined)
	want := []string{"newest", "middle"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected selection: %v", got)
	}
	if perSource["et"][0].Title != "oldest" {
		t.Fatalf("input slice reordered")
	}
}

func TestBalanceMissingSource(t *testing.T) {
	t.Parallel()

	combined, stats := Balance(nil, []domain.SourceConfig{{Name: "gone", Weight: 0.5, MaxArticles: 10}}, 50)
	if len(combined) != 0 {
		t.Fatalf("expected no articles, got %d", len(combined))
	}
	if stats[0].Target != 25 || stats[0].Available != 0 || stats[0].Selected != 0 {
		t.Fatalf("unexpected stats: %+v", stats[0])
	}
}

func TestSourceTargetRoundsHalfUp(t *testing.T) {
	t.Parallel()

	if got := SourceTarget(5, 0.5); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	if got := SourceTarget(50, 0.33); got != 17 {
		t.Fatalf("expected 17, got %d", got)
	}
	if got := SourceTarget(50, -1); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestFilterByPortfolioUsesAliases(t *testing.T) {
	t.Parallel()

	ril := domain.Article{Title: "RIL stock surges on new deal"}
	tcs := domain.Article{Title: "TCS wins major contract"}

	got := FilterByPortfolio([]domain.Article{ril, tcs}, []string{"RELIANCE"})
	if len(got) != 1 || got[0].Title != ril.Title {
		t.Fatalf("unexpected filter result: %v", titles(got))
	}
}

func TestFilterByPortfolioMatchesDescriptionAndUnknownSymbols(t *testing.T) {
	t.Parallel()

	articles := []domain.Article{
		{Title: "Markets close flat", Description: "Wipro shares slipped 2%"},
		{Title: "Rupee steady"},
	}

	got := FilterByPortfolio(articles, []string{" wipro "})
	if len(got) != 1 || got[0].Title != "Markets close flat" {
		t.Fatalf("unexpected filter result: %v", titles(got))
	}
}

func TestFilterByPortfolioEmptyIsIdentity(t *testing.T) {
	t.Parallel()

	articles := []domain.Article{{Title: "a"}, {Title: "b"}}
	if got := FilterByPortfolio(articles, nil); len(got) != 2 {
		t.Fatalf("expected identity, got %d", len(got))
	}
	if got := FilterByPortfolio(articles, []string{"", "  "}); len(got) != 2 {
		t.Fatalf("expected identity for blank symbols, got %d", len(got))
	}
}

func TestExtractSymbols(t *testing.T) {
	t.Parallel()

	got := ExtractSymbols("Reliance Industries posts record profit")
	if !reflect.DeepEqual(got, []string{"reliance"}) {
		t.Fatalf("unexpected symbols: %v", got)
	}

	got = ExtractSymbols("WIPRO and TCS lead IT rally; Reliance flat")
	want := []string{"reliance", "tcs", "wipro"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected vocabulary order %v, got %v", want, got)
	}

	if got := ExtractSymbols("nothing relevant"); len(got) != 0 {
		t.Fatalf("expected no symbols, got %v", got)
	}
}

func TestSearch(t *testing.T) {
	t.Parallel()

	articles := []domain.Article{
		{Title: "Sensex rallies", Description: "banks lead"},
		{Title: "Gold slips", Description: "Sensex unaffected"},
		{Title: "Rupee steady"},
	}

	if got := Search(articles, "SENSEX", 0); len(got) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(got))
	}
	if got := Search(articles, "sensex", 1); len(got) != 1 || got[0].Title != "Sensex rallies" {
		t.Fatalf("unexpected limited hits: %v", titles(got))
	}
	if got := Search(articles, "  ", 10); got != nil {
		t.Fatalf("expected nil for blank query")
	}
}
