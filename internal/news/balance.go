package news

import (
	"math"
	"sort"

	"NewsImpact/internal/domain"
)

// Balance builds a combined, source-grouped list where each source contributes
// at most min(round(targetTotal*weight), available, maxArticles) of its newest
// articles. Sources are visited in configuration order.
func Balance(perSource map[string][]domain.Article, configs []domain.SourceConfig, targetTotal int) ([]domain.Article, []domain.SourceStats) {
	combined := make([]domain.Article, 0, targetTotal)
	stats := make([]domain.SourceStats, 0, len(configs))

	for _, cfg := range configs {
		available := perSource[cfg.Name]
		sorted := make([]domain.Article, len(available))
		copy(sorted, available)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
		})

		target := SourceTarget(targetTotal, cfg.Weight)
		take := min(target, len(sorted), cfg.MaxArticles)
		if take < 0 {
			take = 0
		}

		for _, article := range sorted[:take] {
			article.QualityScore = cfg.QualityScore
			article.Priority = cfg.Priority
			article.SourceWeight = cfg.Weight
			combined = append(combined, article)
		}

		stats = append(stats, domain.SourceStats{
			Source:    cfg.Name,
			Target:    target,
			Available: len(sorted),
			Selected:  take,
			Weight:    cfg.Weight,
		})
	}

	return combined, stats
}

// SourceTarget is the weighted share of targetTotal, rounded half up.
func SourceTarget(targetTotal int, weight float64) int {
	target := int(math.Floor(float64(targetTotal)*weight + 0.5))
	if target < 0 {
		return 0
	}
	return target
}
