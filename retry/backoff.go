package retry

import (
	"math"
	"math/rand"
	"time"
)

// BackoffDelay computes the cooperative sleep before the retry following the
// given 1-indexed attempt: min(initial * multiplier^(attempt-1), max), plus
// up to 25% positive jitter when enabled.
func BackoffDelay(attempt int, cfg Config) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt-1))
	if maxDelay := float64(cfg.MaxDelay); base > maxDelay {
		base = maxDelay
	}
	if cfg.Jitter {
		base += rand.Float64() * 0.25 * base
	}
	return time.Duration(base)
}
