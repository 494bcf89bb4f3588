package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseAgentType(t *testing.T) {
	for _, raw := range []string{"admin", "project", "skill"} {
		got, err := ParseAgentType(raw)
		if err != nil {
			t.Errorf("ParseAgentType(%q): %v", raw, err)
		}
		if got.String() != raw {
			t.Errorf("ParseAgentType(%q) = %q", raw, got)
		}
	}
	if _, err := ParseAgentType("wizard"); err == nil {
		t.Error("unknown type must be rejected")
	}
	if AgentType("").Valid() {
		t.Error("empty type is not valid")
	}
}

func TestSessionStatus_Valid(t *testing.T) {
	for _, s := range []SessionStatus{SessionActive, SessionCompleted, SessionAbandoned} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if SessionStatus("paused").Valid() {
		t.Error("unknown status should be invalid")
	}
}

func TestSession_Clone(t *testing.T) {
	s := NewSession("admin")
	s.Tags = []string{"a"}

	clone := s.Clone()
	if clone == s {
		t.Fatal("Clone should return a different pointer")
	}
	clone.Tags[0] = "mutated"
	if s.Tags[0] != "a" {
		t.Error("Clone must deep-copy tags")
	}
}

func TestCodedError(t *testing.T) {
	base := NewCodedError(CodeInvalidInput, "bad value %d", 7)
	if base.Error() != "INVALID_INPUT: bad value 7" {
		t.Errorf("Error() = %q", base.Error())
	}

	wrapped := fmt.Errorf("outer: %w", base)
	var coded *CodedError
	if !errors.As(wrapped, &coded) {
		t.Fatal("errors.As should find the CodedError")
	}
	if coded.Code != CodeInvalidInput {
		t.Errorf("code = %q", coded.Code)
	}

	withCause := &CodedError{Code: CodeScopeViolation, Message: "denied", Err: errors.New("inner")}
	if withCause.Error() != "SCOPE_VIOLATION: denied: inner" {
		t.Errorf("Error() = %q", withCause.Error())
	}
	if !errors.Is(withCause, withCause.Err) {
		t.Error("Unwrap should expose the cause")
	}
}

func TestNewIDUniqueness(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewID()
		if id == "" || seen[id] {
			t.Fatalf("duplicate or empty id %q", id)
		}
		seen[id] = true
	}
}
