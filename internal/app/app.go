package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"NewsImpact/internal/config"
	"NewsImpact/internal/impact"
	"NewsImpact/internal/infrastructure/feed"
	"NewsImpact/internal/infrastructure/llm"
	"NewsImpact/internal/infrastructure/scheduler"
	"NewsImpact/internal/logging"
	"NewsImpact/internal/ports"
	"NewsImpact/internal/transport/httpapi"
	"NewsImpact/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	server *http.Server
	news   *usecase.NewsService
	probe  ports.Scheduler
	logger *slog.Logger
}

// New builds the application graph. Only an unknown LLM provider is fatal; a
// missing API key leaves analysis running on its failure fallback.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	fetcher := feed.NewFetcher(feed.FetcherConfig{
		DirectTimeout: cfg.Feeds.DirectTimeout,
		ProxyTimeout:  cfg.Feeds.ProxyTimeout,
		MaxRedirects:  cfg.Feeds.MaxRedirects,
		ProxyURL:      cfg.Feeds.ProxyURL,
	}, baseLogger.With("component", "feed.fetcher"))
	source := feed.NewMultiSource(fetcher, cfg.Feeds.DomainSources(), baseLogger.With("component", "feed.source"))

	news := usecase.NewNewsService(usecase.NewsDeps{
		Source:      source,
		TargetTotal: cfg.Feeds.TargetTotal,
		FeedLimit:   cfg.Feeds.FeedLimit,
		Logger:      baseLogger.With("component", "news"),
	})

	completer, err := llm.DefaultRegistry().Build(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("build llm client: %w", err)
	}
	if cfg.LLM.APIKey == "" {
		baseLogger.Warn("llm api key is not set, analysis will return fallback results", "provider", cfg.LLM.Provider)
	}

	analyzer := impact.NewAnalyzer(impact.AnalyzerDeps{
		Completer: completer,
		Jitter:    impact.NewRandomJitter(cfg.Analysis.JitterSeed),
		Timeout:   cfg.Analysis.CallTimeout,
		Logger:    baseLogger.With("component", "impact.analyzer"),
	})
	batcher := impact.NewBatcher(analyzer, cfg.Analysis.BatchPause, baseLogger.With("component", "impact.batcher"))

	analysis := usecase.NewAnalysisService(usecase.AnalysisDeps{
		Analyzer:    analyzer,
		Batcher:     batcher,
		Concurrency: cfg.Analysis.Concurrency,
		Logger:      baseLogger.With("component", "analysis"),
	})

	if !isDebug(baseLogger) {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(httpapi.Deps{
		News:           news,
		Analysis:       analysis,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimit:      cfg.Server.RateLimit,
		RateWindow:     cfg.Server.RateWindow,
		Logger:         baseLogger.With("component", "http"),
	})

	server := &http.Server{
		Addr:         net.JoinHostPort("", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Application{
		cfg:    cfg,
		server: server,
		news:   news,
		probe:  scheduler.NewTickerScheduler(cfg.Feeds.ProbeInterval, cfg.Feeds.ProxyTimeout+cfg.Feeds.DirectTimeout),
		logger: baseLogger,
	}, nil
}

// Handler exposes the HTTP handler for embedding and tests.
func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	if err := a.probe.Start(ctx, func(runCtx context.Context, at time.Time) {
		a.news.Probe(runCtx, at)
	}); err != nil {
		return fmt.Errorf("start feed probe: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.probe.Stop(shutdownCtx); err != nil {
		a.logger.Warn("feed probe stop", "error", err)
	}
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if serveErr != nil {
		return fmt.Errorf("serve http: %w", serveErr)
	}
	a.logger.Info("http server stopped")
	return nil
}

func isDebug(logger *slog.Logger) bool {
	return logger.Enabled(context.Background(), slog.LevelDebug)
}
