// Package circuitbreaker guards calls to external services. After a run
// of failures the breaker opens and rejects calls outright; once the
// cooldown passes it lets a small number of probe calls through and
// closes again when enough of them succeed.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is the breaker's position in its lifecycle.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var (
	// ErrCircuitOpen rejects a call while the breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrTooManyRequests rejects a call when the half-open probe budget
	// is already in use.
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// Settings tunes one breaker. Zero values fall back to the defaults
// noted per field.
type Settings struct {
	// Name labels the breaker in state-change callbacks.
	Name string

	// FailureThreshold is the run of consecutive failures that opens
	// the breaker. Default 5.
	FailureThreshold int

	// SuccessThreshold is the run of consecutive half-open successes
	// that closes it again. Default 2.
	SuccessThreshold int

	// Cooldown is how long the breaker stays open before probing.
	// Default 30s.
	Cooldown time.Duration

	// MaxProbes caps concurrent calls admitted while half-open.
	// Default 1.
	MaxProbes int

	// OnStateChange, when set, observes every transition.
	OnStateChange func(name string, from, to State)
}

func (s *Settings) applyDefaults() {
	if s.FailureThreshold <= 0 {
		s.FailureThreshold = 5
	}
	if s.SuccessThreshold <= 0 {
		s.SuccessThreshold = 2
	}
	if s.Cooldown <= 0 {
		s.Cooldown = 30 * time.Second
	}
	if s.MaxProbes <= 0 {
		s.MaxProbes = 1
	}
}

// CircuitBreaker tracks failures of one downstream dependency.
type CircuitBreaker struct {
	settings Settings

	mu          sync.Mutex
	state       State
	failures    int
	successes   int
	probes      int
	openedUntil time.Time
}

// New creates a breaker in the closed state.
func New(settings Settings) *CircuitBreaker {
	settings.applyDefaults()
	return &CircuitBreaker{settings: settings, state: StateClosed}
}

// Execute runs fn when the breaker admits the call and records the
// outcome. A rejected call returns ErrCircuitOpen or ErrTooManyRequests
// without invoking fn.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := cb.admit(); err != nil {
		return err
	}
	err := fn(ctx)
	cb.record(err)
	return err
}

// admit decides whether a call may proceed, moving open to half-open
// once the cooldown has elapsed.
func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil
	case StateOpen:
		if time.Now().Before(cb.openedUntil) {
			return ErrCircuitOpen
		}
		cb.transition(StateHalfOpen)
		cb.probes = 1
		return nil
	case StateHalfOpen:
		if cb.probes >= cb.settings.MaxProbes {
			return ErrTooManyRequests
		}
		cb.probes++
		return nil
	default:
		return ErrCircuitOpen
	}
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	// A finished probe frees its slot; MaxProbes caps in-flight calls,
	// not the total while half-open.
	if cb.state == StateHalfOpen && cb.probes > 0 {
		cb.probes--
	}

	if err != nil {
		cb.failures++
		cb.successes = 0
		switch cb.state {
		case StateClosed:
			if cb.failures >= cb.settings.FailureThreshold {
				cb.trip()
			}
		case StateHalfOpen:
			// A failed probe reopens immediately.
			cb.trip()
		}
		return
	}

	cb.successes++
	cb.failures = 0
	if cb.state == StateHalfOpen && cb.successes >= cb.settings.SuccessThreshold {
		cb.transition(StateClosed)
	}
}

func (cb *CircuitBreaker) trip() {
	cb.openedUntil = time.Now().Add(cb.settings.Cooldown)
	cb.transition(StateOpen)
}

// transition changes state and resets the per-state counters.
// Callers hold cb.mu.
func (cb *CircuitBreaker) transition(next State) {
	if cb.state == next {
		return
	}
	prev := cb.state
	cb.state = next
	cb.failures = 0
	cb.successes = 0
	cb.probes = 0
	if cb.settings.OnStateChange != nil {
		cb.settings.OnStateChange(cb.settings.Name, prev, next)
	}
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset closes the breaker and clears all counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failures = 0
	cb.successes = 0
	cb.probes = 0
}

// FileStoreBreaker is tuned for the document storage service. Uploads
// block user requests, so it trips early and probes one call at a time
// after a long cooldown.
func FileStoreBreaker(onStateChange func(name string, from, to State)) *CircuitBreaker {
	return New(Settings{
		Name:             "filestore",
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Cooldown:         60 * time.Second,
		MaxProbes:        1,
		OnStateChange:    onStateChange,
	})
}
