package feed

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"NewsImpact/internal/domain"
	"NewsImpact/internal/ports"
)

// MultiSource implements ports.ArticleSource by fetching every configured
// source concurrently. A failing source never affects its siblings.
type MultiSource struct {
	fetcher ports.FeedFetcher
	sources []domain.SourceConfig
	logger  *slog.Logger
}

var _ ports.ArticleSource = (*MultiSource)(nil)

// NewMultiSource wires a fetcher with the configured sources.
func NewMultiSource(fetcher ports.FeedFetcher, sources []domain.SourceConfig, log *slog.Logger) *MultiSource {
	cfgs := make([]domain.SourceConfig, len(sources))
	copy(cfgs, sources)
	return &MultiSource{
		fetcher: fetcher,
		sources: cfgs,
		logger:  log,
	}
}

// Sources returns a copy of the source configuration.
func (s *MultiSource) Sources() []domain.SourceConfig {
	out := make([]domain.SourceConfig, len(s.sources))
	copy(out, s.sources)
	return out
}

// FetchAll returns articles keyed by configured source name plus the list of
// sources that failed, in configuration order.
func (s *MultiSource) FetchAll(ctx context.Context) (map[string][]domain.Article, []domain.SourceFailure) {
	s.debug("fetch all", "sources", len(s.sources))

	var (
		mu       sync.Mutex
		g        errgroup.Group
		articles = make(map[string][]domain.Article, len(s.sources))
		errs     = make([]error, len(s.sources))
	)

	for i, src := range s.sources {
		g.Go(func() error {
			fetched, err := s.fetcher.Fetch(ctx, src)
			if err != nil {
				errs[i] = err
				return nil
			}
			mu.Lock()
			articles[src.Name] = fetched
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	var failures []domain.SourceFailure
	for i, err := range errs {
		if err == nil {
			continue
		}
		name := s.sources[i].Name
		articles[name] = []domain.Article{}
		failures = append(failures, domain.SourceFailure{Source: name, Reason: err.Error()})
		if s.logger != nil {
			s.logger.Warn("source failed", "source", name, "error", err)
		}
	}

	s.debug("fetch all done", "sources", len(s.sources), "failed", len(failures))
	return articles, failures
}

func (s *MultiSource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
