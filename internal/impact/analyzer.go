package impact

import (
	"context"
	"log/slog"
	"time"

	"NewsImpact/internal/domain"
	"NewsImpact/internal/ports"
)

const defaultCallTimeout = 20 * time.Second

// AnalyzerDeps wires the completion backend into the analyzer.
type AnalyzerDeps struct {
	Completer ports.Completer
	Jitter    Jitter
	Timeout   time.Duration
	Logger    *slog.Logger
}

// Analyzer implements ports.ImpactAnalyzer on top of a text-completion service.
type Analyzer struct {
	completer ports.Completer
	jitter    Jitter
	timeout   time.Duration
	logger    *slog.Logger
}

var _ ports.ImpactAnalyzer = (*Analyzer)(nil)

// NewAnalyzer builds an analyzer; missing jitter and timeout get defaults.
func NewAnalyzer(deps AnalyzerDeps) *Analyzer {
	if deps.Jitter == nil {
		deps.Jitter = NewRandomJitter(0)
	}
	if deps.Timeout <= 0 {
		deps.Timeout = defaultCallTimeout
	}
	return &Analyzer{
		completer: deps.Completer,
		jitter:    deps.Jitter,
		timeout:   deps.Timeout,
		logger:    deps.Logger,
	}
}

// Analyze classifies a headline. Every failure degrades to a Neutral result
// with Failed set; no error reaches the caller.
func (a *Analyzer) Analyze(ctx context.Context, headline, description string, symbols []string) domain.AnalysisResult {
	if a.completer == nil {
		a.warn("no completion backend configured")
		return TechnicalFailure()
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prompt := BuildPrompt(headline, description, symbols)
	started := time.Now()
	text, err := a.completer.Complete(callCtx, prompt)
	if err != nil {
		a.warn("completion failed", "headline", truncate(headline, 80), "error", err)
		return TechnicalFailure()
	}

	result := ParseResponse(text, a.jitter)
	if result.Failed {
		a.warn("unparseable completion, used keyword fallback", "headline", truncate(headline, 80), "response", truncate(text, 200))
	}
	a.debug("analysis complete",
		"headline", truncate(headline, 80),
		"impact", result.Impact,
		"confidence", result.Confidence,
		"elapsed", time.Since(started))
	return result
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func (a *Analyzer) debug(msg string, args ...interface{}) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}

func (a *Analyzer) warn(msg string, args ...interface{}) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
