package retry

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/agentvault/core"
	"github.com/hupe1980/agentvault/logging"
)

// Lifecycle event names emitted by a Manager. Listeners registered before an
// emission are always invoked, synchronously and in registration order.
const (
	EventOperationStart     = "operation:start"
	EventAttemptStart       = "attempt:start"
	EventOperationSuccess   = "operation:success"
	EventOperationFailure   = "operation:failure"
	EventOperationEscalated = "operation:escalated"
)

// Event carries the payload delivered to listeners.
type Event struct {
	Name          string
	OperationID   string
	OperationName string
	Attempt       int
	Err           error
}

// Listener receives lifecycle events.
type Listener func(e Event)

// ErrorContext records one failed attempt of an operation.
type ErrorContext struct {
	Message   string         `json:"message"`
	Operation string         `json:"operation"`
	Attempt   int            `json:"attempt"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// OperationState is the last known state of a tracked operation. Attempt is
// 1-indexed and equals the attempt number on which the loop terminated.
type OperationState struct {
	Attempt   int            `json:"attempt"`
	Errors    []ErrorContext `json:"errors"`
	Succeeded bool           `json:"succeeded"`
	Escalated bool           `json:"escalated"`
}

// clone returns a defensive copy for introspection callers.
func (s *OperationState) clone() *OperationState {
	c := *s
	c.Errors = make([]ErrorContext, len(s.Errors))
	copy(c.Errors, s.Errors)
	return &c
}

// Escalation is delivered to the configured handler once retries are
// exhausted.
type Escalation struct {
	OperationID   string
	OperationName string
	Errors        []ErrorContext
	Metadata      map[string]any
}

// EscalationHandler is invoked exactly once per escalated operation.
type EscalationHandler func(e Escalation)

// Config controls the retry policy. It is mutable at runtime via
// Manager.Configure.
type Config struct {
	// MaxRetries bounds retries after the first attempt.
	MaxRetries int
	// InitialDelay seeds the exponential backoff schedule.
	InitialDelay time.Duration
	// MaxDelay caps any single backoff sleep.
	MaxDelay time.Duration
	// Multiplier is the exponential growth factor.
	Multiplier float64
	// Jitter adds up to 25% positive jitter to each delay.
	Jitter bool
	// NonRetryablePatterns extends the built-in non-retryable taxonomy.
	NonRetryablePatterns []string
	// EscalationHandler receives exhausted operations. Nil disables delivery.
	EscalationHandler EscalationHandler
}

// DefaultConfig returns the baseline retry policy.
func DefaultConfig() Config {
	return Config{
		MaxRetries:   3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2,
		Jitter:       true,
	}
}

// Result is the structured outcome of Execute. Failures are reported through
// Success/State; Execute itself never returns an error.
type Result struct {
	Success bool
	Value   any
	State   *OperationState
}

// Operation is the retried unit of work.
type Operation func(ctx context.Context) (any, error)

// Stats aggregates outcomes across all tracked operations.
type Stats struct {
	Completed    int
	Successful   int
	Failed       int
	Escalated    int
	TotalRetries int
}

// Options configures a Manager.
type Options struct {
	// Config seeds the retry policy.
	Config Config
	// Logger receives diagnostic output. Defaults to NoOpLogger.
	Logger logging.Logger
	// Sleep overrides the backoff sleep, primarily for tests. It must honor
	// ctx cancellation.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Manager executes operations under the retry policy, tracking per-operation
// state and emitting lifecycle events. Safe for concurrent use; retries of a
// single operation id are strictly sequential within one Execute call.
type Manager struct {
	mu        sync.Mutex
	cfg       Config
	ops       map[string]*OperationState
	listeners map[string][]Listener
	logger    logging.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewManager creates a retry manager with optional overrides.
func NewManager(optFns ...func(o *Options)) *Manager {
	opts := Options{Config: DefaultConfig(), Logger: logging.NoOpLogger{}, Sleep: sleepCtx}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Manager{
		cfg:       opts.Config,
		ops:       make(map[string]*OperationState),
		listeners: make(map[string][]Listener),
		logger:    opts.Logger,
		sleep:     opts.Sleep,
	}
}

// Configure mutates the retry policy at runtime.
func (m *Manager) Configure(fn func(cfg *Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.cfg)
}

// Config returns a snapshot of the current policy.
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// On registers a listener for the named lifecycle event.
func (m *Manager) On(event string, l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners[event] = append(m.listeners[event], l)
}

func (m *Manager) emit(e Event) {
	m.mu.Lock()
	ls := make([]Listener, len(m.listeners[e.Name]))
	copy(ls, m.listeners[e.Name])
	m.mu.Unlock()
	for _, l := range ls {
		l(e)
	}
}

// Execute runs fn under the retry policy. Attempts are numbered 1 through
// MaxRetries+1. A failed attempt records an ErrorContext and, when the error
// is retryable and attempts remain, waits the computed backoff before the
// next attempt. Non-retryable errors stop immediately. When attempts are
// exhausted without success the operation is marked escalated and the
// escalation handler is invoked exactly once with the accumulated history.
func (m *Manager) Execute(ctx context.Context, operationID, operationName string, fn Operation, metadata map[string]any) Result {
	cfg := m.Config()
	state := &OperationState{Errors: []ErrorContext{}}

	m.mu.Lock()
	m.ops[operationID] = state
	m.mu.Unlock()

	m.emit(Event{Name: EventOperationStart, OperationID: operationID, OperationName: operationName})

	for attempt := 1; attempt <= cfg.MaxRetries+1; attempt++ {
		state.Attempt = attempt
		m.emit(Event{Name: EventAttemptStart, OperationID: operationID, OperationName: operationName, Attempt: attempt})

		value, err := fn(ctx)
		if err == nil {
			state.Succeeded = true
			m.emit(Event{Name: EventOperationSuccess, OperationID: operationID, OperationName: operationName, Attempt: attempt})
			return Result{Success: true, Value: value, State: state}
		}

		if !IsRetryable(err, cfg) {
			state.Errors = append(state.Errors, newErrorContext(err, operationName, attempt, metadata))
			m.logger.Warn("operation failed with non-retryable error", "operation", operationName, "attempt", attempt, "error", err)
			m.emit(Event{Name: EventOperationFailure, OperationID: operationID, OperationName: operationName, Attempt: attempt, Err: err})
			return Result{Success: false, State: state}
		}

		if attempt > cfg.MaxRetries {
			// Retries exhausted. The error history already documents every
			// retried failure; escalate with it.
			break
		}

		state.Errors = append(state.Errors, newErrorContext(err, operationName, attempt, metadata))
		delay := BackoffDelay(attempt, cfg)
		m.logger.Debug("operation attempt failed, backing off", "operation", operationName, "attempt", attempt, "backoff", delay, "error", err)
		if serr := m.sleep(ctx, delay); serr != nil {
			// Caller cancelled while waiting; stop without escalating.
			m.emit(Event{Name: EventOperationFailure, OperationID: operationID, OperationName: operationName, Attempt: attempt, Err: serr})
			return Result{Success: false, State: state}
		}
	}

	state.Escalated = true
	m.emit(Event{Name: EventOperationFailure, OperationID: operationID, OperationName: operationName, Attempt: state.Attempt})
	m.emit(Event{Name: EventOperationEscalated, OperationID: operationID, OperationName: operationName, Attempt: state.Attempt})

	if handler := cfg.EscalationHandler; handler != nil {
		handler(Escalation{
			OperationID:   operationID,
			OperationName: operationName,
			Errors:        append([]ErrorContext(nil), state.Errors...),
			Metadata:      metadata,
		})
	}
	m.logger.Error("operation escalated after exhausting retries", "operation", operationName, "attempts", state.Attempt)
	return Result{Success: false, State: state}
}

// OperationState exposes the last known state of a tracked operation for
// introspection, or nil when the id is unknown.
func (m *Manager) OperationState(operationID string) *OperationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.ops[operationID]
	if !ok {
		return nil
	}
	return state.clone()
}

// Stats aggregates completed/successful/failed/escalated operation counts and
// total retries across all tracked operations.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	var st Stats
	for _, op := range m.ops {
		st.Completed++
		switch {
		case op.Succeeded:
			st.Successful++
		case op.Escalated:
			st.Escalated++
			st.Failed++
		default:
			st.Failed++
		}
		if op.Attempt > 1 {
			st.TotalRetries += op.Attempt - 1
		}
	}
	return st
}

func newErrorContext(err error, operation string, attempt int, metadata map[string]any) ErrorContext {
	return ErrorContext{
		Message:   err.Error(),
		Operation: operation,
		Attempt:   attempt,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}
}

// sleepCtx is the default cooperative sleep: it suspends only the calling
// operation and aborts early on ctx cancellation.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NewOperationID returns a fresh operation identifier.
func NewOperationID() string { return core.NewID() }
