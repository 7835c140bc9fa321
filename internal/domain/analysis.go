package domain

import "errors"

// ErrInvalidInput marks caller input that the core refuses to process.
var ErrInvalidInput = errors.New("invalid input")

// Impact is the directional effect of a news item on a stock price.
type Impact string

const (
	ImpactPositive Impact = "Positive"
	ImpactNegative Impact = "Negative"
	ImpactNeutral  Impact = "Neutral"
)

// AnalysisResult is the typed outcome of a single impact analysis.
type AnalysisResult struct {
	Impact     Impact  `json:"impact"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
	Failed     bool    `json:"failed"`
}

// AnalyzedArticle pairs an article with its analysis.
type AnalyzedArticle struct {
	Article
	Analysis AnalysisResult `json:"analysis"`
}

// Breakdown counts analyses per impact.
type Breakdown struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// PortfolioSentiment aggregates a set of analyses.
type PortfolioSentiment struct {
	Overall    Impact    `json:"overall"`
	Score      float64   `json:"score"`
	Breakdown  Breakdown `json:"breakdown"`
	Confidence float64   `json:"confidence"`
}
