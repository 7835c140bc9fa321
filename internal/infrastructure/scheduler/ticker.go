package scheduler

import (
	"context"
	"sync"
	"time"

	"NewsImpact/internal/ports"
)

// TickerScheduler runs a job immediately and then every interval.
type TickerScheduler struct {
	interval time.Duration
	timeout  time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

var _ ports.Scheduler = (*TickerScheduler)(nil)

// NewTickerScheduler builds a scheduler. Each run gets its own context bounded
// by timeout (the interval when timeout is not positive).
func NewTickerScheduler(interval, timeout time.Duration) *TickerScheduler {
	if timeout <= 0 {
		timeout = interval
	}
	return &TickerScheduler{interval: interval, timeout: timeout}
}

// Start begins ticking. Calling Start on a running scheduler is a no-op.
func (t *TickerScheduler) Start(ctx context.Context, job func(context.Context, time.Time)) error {
	if job == nil || t.interval <= 0 {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		return nil
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	t.stop, t.done = stop, done

	go func() {
		defer close(done)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		t.run(ctx, job, time.Now())
		for {
			select {
			case now := <-ticker.C:
				t.run(ctx, job, now)
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return nil
}

func (t *TickerScheduler) run(ctx context.Context, job func(context.Context, time.Time), now time.Time) {
	runCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	job(runCtx, now)
}

// Stop halts the ticker goroutine and waits for an in-flight run, or for ctx.
func (t *TickerScheduler) Stop(ctx context.Context) error {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	t.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
