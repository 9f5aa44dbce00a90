package infra

import (
	"errors"
	"sync"
	"time"
)

// Circuit breaker guarding the SMTP send path. A dead or flapping mail host
// must not stall the alert workers on every dequeued job, so after a run of
// failures the breaker fast-fails sends until a probe succeeds.

// CBState is the breaker position.
type CBState int

const (
	CBClosed   CBState = iota // sends flow normally
	CBOpen                    // sends fast-fail
	CBHalfOpen                // probing the host again
)

func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// ErrCircuitOpen is returned by Execute while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreakerConfig struct {
	// FailureThreshold is the run of consecutive failures that opens the
	// breaker.
	FailureThreshold int
	// SuccessThreshold is the run of half-open successes that closes it.
	SuccessThreshold int
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
}

// DefaultCBConfig is tuned for the alert mailer: SMTP hosts tend to fail
// hard rather than intermittently, so trip early and let one good probe
// close the breaker. Two minutes open comfortably outlasts a mail server
// restart.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 1,
		OpenTimeout:      2 * time.Minute,
	}
}

// CircuitBreaker tracks consecutive outcomes and gates calls through Execute.
// Safe for concurrent use by all workers in the pool.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	mu        sync.Mutex
	state     CBState
	streak    int       // consecutive failures (closed) or successes (half-open)
	nextProbe time.Time // earliest moment an open breaker goes half-open
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCBConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	return &CircuitBreaker{cfg: cfg}
}

// State reports the breaker position, moving open → half-open once the
// probe deadline has passed.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.position()
}

// Execute runs fn unless the breaker is open, in which case it returns
// ErrCircuitOpen without calling fn.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	if cb.position() == CBOpen {
		cb.mu.Unlock()
		return ErrCircuitOpen
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.record(err == nil)
	return err
}

// position must be called under mu.
func (cb *CircuitBreaker) position() CBState {
	if cb.state == CBOpen && !time.Now().Before(cb.nextProbe) {
		cb.state = CBHalfOpen
		cb.streak = 0
	}
	return cb.state
}

// record folds one call outcome into the state machine (under mu).
func (cb *CircuitBreaker) record(success bool) {
	switch cb.state {
	case CBClosed:
		if success {
			cb.streak = 0
			return
		}
		cb.streak++
		if cb.streak >= cb.cfg.FailureThreshold {
			cb.trip()
		}
	case CBHalfOpen:
		if !success {
			// failed probe — back to open for another timeout
			cb.trip()
			return
		}
		cb.streak++
		if cb.streak >= cb.cfg.SuccessThreshold {
			cb.state = CBClosed
			cb.streak = 0
		}
	}
}

// trip opens the breaker and schedules the next probe (under mu).
func (cb *CircuitBreaker) trip() {
	cb.state = CBOpen
	cb.streak = 0
	cb.nextProbe = time.Now().Add(cb.cfg.OpenTimeout)
}
