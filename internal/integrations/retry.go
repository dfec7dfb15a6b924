// Package integrations talks to the external search-results and
// generative-text APIs.
package integrations

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"brandwatch/internal/metrics"
)

var (
	// ErrNotConfigured is returned when an integration has no API key.
	ErrNotConfigured = errors.New("api key not configured")

	// ErrRateLimited is returned when the upstream kept answering 429.
	ErrRateLimited = errors.New("rate limited by upstream")

	// ErrUpstream covers transport failures and non-2xx answers.
	ErrUpstream = errors.New("upstream request failed")
)

// Default per-attempt timeouts.
const (
	DefaultTimeout = 30 * time.Second
	VerifyTimeout  = 15 * time.Second
	UsageTimeout   = 10 * time.Second
)

// Retrier sends requests with exponential backoff. The wait before retry n
// (0-based) is BaseDelay * 2^n; nothing waits after the final attempt.
type Retrier struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// Sleep waits between attempts. Tests replace it to record delays.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewRetrier creates a retrier that sleeps on the wall clock.
func NewRetrier(maxAttempts int, baseDelay time.Duration) *Retrier {
	return &Retrier{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		Sleep:       sleepContext,
	}
}

// Send runs send until it yields a 2xx response or attempts run out. Each
// attempt gets its own timeout. HTTP 429, transport errors and other non-2xx
// statuses are retried; cancellation of ctx is not.
func (r *Retrier) Send(ctx context.Context, service string, timeout time.Duration, send func(ctx context.Context) (*resty.Response, error)) (*resty.Response, error) {
	attempts := max(r.MaxAttempts, 1)

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		resp, err := send(attemptCtx)
		cancel()

		outcome := "error"
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %s: %v", ErrUpstream, service, err)
		case resp.StatusCode() == http.StatusTooManyRequests:
			outcome = "rate_limited"
			lastErr = fmt.Errorf("%w: %s", ErrRateLimited, service)
		case !resp.IsSuccess():
			lastErr = fmt.Errorf("%w: %s returned %s", ErrUpstream, service, resp.Status())
		default:
			metrics.RecordExternalCall(service, "success")
			return resp, nil
		}
		metrics.RecordExternalCall(service, outcome)

		if attempt == attempts-1 {
			break
		}
		if err := r.sleep(ctx, r.Backoff(attempt)); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

// Backoff returns the wait before retrying after the given 0-based attempt.
func (r *Retrier) Backoff(attempt int) time.Duration {
	return r.BaseDelay * time.Duration(1<<attempt)
}

func (r *Retrier) sleep(ctx context.Context, d time.Duration) error {
	if r.Sleep == nil {
		return sleepContext(ctx, d)
	}
	return r.Sleep(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
