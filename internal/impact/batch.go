package impact

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"NewsImpact/internal/domain"
	"NewsImpact/internal/ports"
)

const (
	DefaultConcurrency = 3
	defaultBatchPause  = time.Second
)

// Batcher runs an ImpactAnalyzer over articles in sequential groups of
// concurrent calls, pausing between groups.
type Batcher struct {
	analyzer ports.ImpactAnalyzer
	pause    time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
	logger   *slog.Logger
}

var _ ports.BatchAnalyzer = (*Batcher)(nil)

// NewBatcher wires the analyzer; a non-positive pause means one second.
func NewBatcher(analyzer ports.ImpactAnalyzer, pause time.Duration, logger *slog.Logger) *Batcher {
	if pause <= 0 {
		pause = defaultBatchPause
	}
	return &Batcher{
		analyzer: analyzer,
		pause:    pause,
		sleep:    sleepContext,
		logger:   logger,
	}
}

// AnalyzeBatch analyses every article and returns results in input order.
// If ctx ends during a pause, the remaining articles get failure results.
func (b *Batcher) AnalyzeBatch(ctx context.Context, articles []domain.Article, concurrency int) []domain.AnalyzedArticle {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]domain.AnalyzedArticle, len(articles))
	for i, article := range articles {
		results[i].Article = article
	}

	for start := 0; start < len(articles); start += concurrency {
		end := min(start+concurrency, len(articles))
		b.debug("analysing group", "from", start, "to", end, "total", len(articles))

		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				a := articles[i]
				results[i].Analysis = b.analyzer.Analyze(ctx, a.Title, a.Description, a.RelevantStocks)
				return nil
			})
		}
		_ = g.Wait()

		if end == len(articles) {
			break
		}
		if err := b.sleep(ctx, b.pause); err != nil {
			if b.logger != nil {
				b.logger.Warn("batch interrupted", "analysed", end, "total", len(articles), "error", err)
			}
			for i := end; i < len(articles); i++ {
				results[i].Analysis = TechnicalFailure()
			}
			break
		}
	}

	return results
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (b *Batcher) debug(msg string, args ...interface{}) {
	if b.logger != nil {
		b.logger.Debug(msg, args...)
	}
}
