package breaker

import (
	"errors"
	"sync"
	"time"

	"github.com/yungbote/flashdeck-backend/internal/platform/logger"
)

// ErrOpen is returned by Allow while the breaker is rejecting calls.
var ErrOpen = errors.New("circuit breaker open")

type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

type Config struct {
	// FailureThreshold trips the breaker once this many failures land inside
	// the rolling Window.
	FailureThreshold int
	Window           time.Duration
	Cooldown         time.Duration
}

func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		Window:           60 * time.Second,
		Cooldown:         30 * time.Second,
	}
}

// Breaker guards one upstream dependency. It is shared across all requests to
// that upstream; the mutex is held only for state transitions, never across
// the upstream call itself.
type Breaker struct {
	log *logger.Logger
	cfg Config
	now func() time.Time

	mu        sync.Mutex
	state     State
	failures  []time.Time
	openUntil time.Time
	probing   bool
}

func New(log *logger.Logger, name string, cfg Config) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = DefaultConfig().FailureThreshold
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultConfig().Cooldown
	}
	return &Breaker{
		log:   log.With("breaker", name),
		cfg:   cfg,
		now:   time.Now,
		state: Closed,
	}
}

// WithClock overrides the time source; tests only.
func (b *Breaker) WithClock(now func() time.Time) *Breaker {
	b.now = now
	return b
}

// Allow reports whether a call may proceed. In half-open state only a single
// probe is admitted; everyone else keeps getting ErrOpen until the probe
// settles.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return nil
	case Open:
		if b.now().Before(b.openUntil) {
			return ErrOpen
		}
		b.state = HalfOpen
		b.probing = true
		b.log.Info("breaker half-open, admitting probe")
		return nil
	case HalfOpen:
		if b.probing {
			return ErrOpen
		}
		b.probing = true
		return nil
	}
	return nil
}

// RecordSuccess reports a successful call outcome.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == HalfOpen {
		b.state = Closed
		b.probing = false
		b.failures = b.failures[:0]
		b.log.Info("breaker closed after successful probe")
		return
	}
	// Successes in closed state do not clear the window; only time does.
}

// RecordFailure reports a failed call outcome (errors and timeouts alike).
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if b.state == HalfOpen {
		b.state = Open
		b.probing = false
		b.openUntil = now.Add(b.cfg.Cooldown)
		b.log.Warn("breaker probe failed, reopening", "cooldown", b.cfg.Cooldown.String())
		return
	}

	b.failures = append(b.failures, now)
	b.pruneLocked(now)
	if b.state == Closed && len(b.failures) >= b.cfg.FailureThreshold {
		b.state = Open
		b.openUntil = now.Add(b.cfg.Cooldown)
		b.failures = b.failures[:0]
		b.log.Warn("breaker tripped",
			"failure_threshold", b.cfg.FailureThreshold,
			"cooldown", b.cfg.Cooldown.String(),
		)
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Open && !b.now().Before(b.openUntil) {
		return HalfOpen
	}
	return b.state
}

func (b *Breaker) pruneLocked(now time.Time) {
	cutoff := now.Add(-b.cfg.Window)
	kept := b.failures[:0]
	for _, t := range b.failures {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	b.failures = kept
}
