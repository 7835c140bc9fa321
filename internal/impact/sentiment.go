package impact

import "NewsImpact/internal/domain"

const sentimentThreshold = 0.2

// Aggregate folds analyses into a portfolio sentiment. Positive results add
// their confidence to the signed score, negative ones subtract it.
func Aggregate(results []domain.AnalysisResult) domain.PortfolioSentiment {
	sentiment := domain.PortfolioSentiment{Overall: domain.ImpactNeutral}
	if len(results) == 0 {
		return sentiment
	}

	var signed, total float64
	for _, r := range results {
		switch r.Impact {
		case domain.ImpactPositive:
			sentiment.Breakdown.Positive++
			signed += r.Confidence
		case domain.ImpactNegative:
			sentiment.Breakdown.Negative++
			signed -= r.Confidence
		default:
			sentiment.Breakdown.Neutral++
		}
		total += r.Confidence
	}

	n := float64(len(results))
	mean := signed / n
	switch {
	case mean > sentimentThreshold:
		sentiment.Overall = domain.ImpactPositive
	case mean < -sentimentThreshold:
		sentiment.Overall = domain.ImpactNegative
	}
	sentiment.Score = round2(mean)
	sentiment.Confidence = round2(total / n)
	return sentiment
}

// AggregateArticles is Aggregate over the analyses of analyzed articles.
func AggregateArticles(analyzed []domain.AnalyzedArticle) domain.PortfolioSentiment {
	results := make([]domain.AnalysisResult, len(analyzed))
	for i, a := range analyzed {
		results[i] = a.Analysis
	}
	return Aggregate(results)
}

// Recommend turns a sentiment into a short advisory line.
func Recommend(s domain.PortfolioSentiment) string {
	switch {
	case s.Confidence < 0.3:
		return "Insufficient data for reliable recommendation. Monitor closely."
	case s.Overall == domain.ImpactPositive && s.Score > 0.6:
		return "Strong positive sentiment detected. Consider potential upside."
	case s.Overall == domain.ImpactPositive:
		return "Moderate positive sentiment. Cautiously optimistic outlook."
	case s.Overall == domain.ImpactNegative && s.Score < -0.6:
		return "Strong negative sentiment detected. Exercise caution."
	case s.Overall == domain.ImpactNegative:
		return "Moderate negative sentiment. Monitor for further developments."
	default:
		return "Neutral sentiment. No clear directional bias detected."
	}
}
