package retry

import "context"

// Do is a stateless convenience wrapper: it runs fn under the retry policy
// and, unlike Manager.Execute, returns the last error after exhausting
// retries instead of a result object. No state is tracked and no events or
// escalations fire.
func Do(ctx context.Context, fn func(ctx context.Context) error, optFns ...func(cfg *Config)) error {
	cfg := DefaultConfig()
	for _, f := range optFns {
		f(&cfg)
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxRetries+1; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr, cfg) || attempt > cfg.MaxRetries {
			return lastErr
		}
		if err := sleepCtx(ctx, BackoffDelay(attempt, cfg)); err != nil {
			return lastErr
		}
	}
	return lastErr
}
