package llm

import (
	"context"
	"log/slog"
	"time"

	berrors "github.com/balcaohq/balcao/internal/errors"
)

// RetryCall retries an LLM call with exponential backoff (1s, 2s, 4s, ...).
// maxRetries counts retry attempts, not the initial call. Only retryable
// errors (per the taxonomy classification) are retried; the caller decides
// what a final failure means (for the orchestrator: the fallback message).
func RetryCall(ctx context.Context, maxRetries int, logger *slog.Logger, fn func() (*Response, error)) (*Response, error) {
	resp, err := fn()
	if err == nil {
		return resp, nil
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		if !berrors.IsRetryable(err) {
			return nil, err
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		backoff := berrors.CalculateBackoff(time.Second, attempt, 30*time.Second)
		if logger != nil {
			logger.Warn("llm call failed, retrying",
				slog.String("error", err.Error()),
				slog.Duration("backoff", backoff),
				slog.Int("attempt", attempt+1),
				slog.Int("max_retries", maxRetries))
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		resp, err = fn()
		if err == nil {
			return resp, nil
		}
	}

	return nil, err
}
