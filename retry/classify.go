package retry

import (
	"errors"
	"strings"

	"github.com/hupe1980/agentvault/core"
)

// defaultNonRetryable is the built-in taxonomy of error codes that no amount
// of retrying will fix.
var defaultNonRetryable = []string{
	core.CodeScopeViolation,
	core.CodeAuthenticationFailed,
	core.CodeInvalidInput,
}

// IsRetryable classifies an error: false when its message or code matches
// the non-retryable taxonomy (built-in plus cfg.NonRetryablePatterns),
// true otherwise. Anything unrecognized is retryable by default.
func IsRetryable(err error, cfg Config) bool {
	if err == nil {
		return false
	}

	var coded *core.CodedError
	code := ""
	if errors.As(err, &coded) {
		code = coded.Code
	}
	msg := err.Error()

	patterns := make([]string, 0, len(defaultNonRetryable)+len(cfg.NonRetryablePatterns))
	patterns = append(patterns, defaultNonRetryable...)
	patterns = append(patterns, cfg.NonRetryablePatterns...)

	for _, p := range patterns {
		if p == "" {
			continue
		}
		if code == p || strings.Contains(msg, p) {
			return false
		}
	}
	return true
}
