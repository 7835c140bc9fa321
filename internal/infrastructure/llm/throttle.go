package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"NewsImpact/internal/ports"
)

// Throttled caps the request rate of a wrapped Completer.
type Throttled struct {
	next    ports.Completer
	limiter *rate.Limiter
}

var _ ports.Completer = (*Throttled)(nil)

// NewThrottled allows requestsPerMinute calls per minute with an equal burst.
// A non-positive rate returns next unchanged.
func NewThrottled(next ports.Completer, requestsPerMinute int) ports.Completer {
	if requestsPerMinute <= 0 {
		return next
	}
	return &Throttled{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60), requestsPerMinute),
	}
}

// Complete waits for a token, honouring ctx, then delegates.
func (t *Throttled) Complete(ctx context.Context, prompt string) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	return t.next.Complete(ctx, prompt)
}
