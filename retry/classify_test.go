package retry

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hupe1980/agentvault/core"
)

func TestIsRetryable(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"plain transient error", errors.New("connection reset by peer"), true},
		{"scope violation code", core.NewCodedError(core.CodeScopeViolation, "path outside scope"), false},
		{"authentication code", core.NewCodedError(core.CodeAuthenticationFailed, "bad credentials"), false},
		{"invalid input code", core.NewCodedError(core.CodeInvalidInput, "empty agent id"), false},
		{"wrapped coded error", fmt.Errorf("send failed: %w", core.NewCodedError(core.CodeScopeViolation, "nope")), false},
		{"message containing code text", errors.New("upstream said AUTHENTICATION_FAILED"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err, cfg); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsRetryable_CustomPatterns(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NonRetryablePatterns = []string{"quota exceeded"}

	if IsRetryable(errors.New("monthly quota exceeded for org"), cfg) {
		t.Error("configured pattern should be non-retryable")
	}
	if !IsRetryable(errors.New("temporary glitch"), cfg) {
		t.Error("unmatched error should stay retryable")
	}
}
