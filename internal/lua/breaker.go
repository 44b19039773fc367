package lua

import (
	"errors"
	"sync"
	"time"
)

// BreakerState is the state of a scene's failure breaker.
type BreakerState int

const (
	// BreakerClosed means frame() is called every tick.
	BreakerClosed BreakerState = iota
	// BreakerOpen means frame() kept failing and is suspended.
	BreakerOpen
	// BreakerHalfOpen means the cooldown elapsed and frame() is on trial.
	BreakerHalfOpen
)

// String returns the string representation of the breaker state.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrSceneSuspended is returned by Scene.Frame while the breaker is open.
var ErrSceneSuspended = errors.New("scene suspended after repeated failures")

// BreakerConfig tunes when a failing scene is suspended.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failed frames that
	// suspends the scene. Default: 5
	FailureThreshold int
	// SuccessThreshold is the number of good frames on trial that resumes
	// it. Default: 2
	SuccessThreshold int
	// Cooldown is how long the scene stays suspended before a trial frame.
	// Default: 2 seconds
	Cooldown time.Duration
	// OnStateChange is called, outside the breaker lock, on every transition.
	OnStateChange func(from, to BreakerState)
}

// DefaultBreakerConfig returns a BreakerConfig with sensible defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Cooldown:         2 * time.Second,
	}
}

// breaker stops calling a scene callback that fails every tick, so a
// broken frame() does not flood the error handler at the logic rate.
type breaker struct {
	config BreakerConfig
	now    func() time.Time

	mu          sync.Mutex
	state       BreakerState
	failures    int
	successes   int
	lastFailure time.Time
	rejections  int64
}

func newBreaker(config BreakerConfig) *breaker {
	def := DefaultBreakerConfig()
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = def.FailureThreshold
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = def.SuccessThreshold
	}
	if config.Cooldown <= 0 {
		config.Cooldown = def.Cooldown
	}
	return &breaker{config: config, now: time.Now}
}

// Execute runs fn unless the breaker is open.
func (b *breaker) Execute(fn func() error) error {
	if !b.allow() {
		return ErrSceneSuspended
	}
	err := fn()
	b.record(err)
	return err
}

// State reports the current state; an open breaker whose cooldown has
// elapsed reports half-open.
func (b *breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerOpen && b.now().Sub(b.lastFailure) >= b.config.Cooldown {
		return BreakerHalfOpen
	}
	return b.state
}

// Rejections returns how many calls were skipped while open.
func (b *breaker) Rejections() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rejections
}

// Reset closes the breaker.
func (b *breaker) Reset() {
	b.mu.Lock()
	from := b.state
	b.state = BreakerClosed
	b.failures = 0
	b.successes = 0
	b.mu.Unlock()

	b.notify(from, BreakerClosed)
}

func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerOpen:
		if b.now().Sub(b.lastFailure) < b.config.Cooldown {
			b.rejections++
			return false
		}
		b.transition(BreakerHalfOpen)
	}
	return true
}

func (b *breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.lastFailure = b.now()
		switch b.state {
		case BreakerClosed:
			b.failures++
			if b.failures >= b.config.FailureThreshold {
				b.transition(BreakerOpen)
			}
		case BreakerHalfOpen:
			b.successes = 0
			b.transition(BreakerOpen)
		}
		return
	}

	switch b.state {
	case BreakerClosed:
		b.failures = 0
	case BreakerHalfOpen:
		b.successes++
		if b.successes >= b.config.SuccessThreshold {
			b.failures = 0
			b.successes = 0
			b.transition(BreakerClosed)
		}
	}
}

// transition must be called with b.mu held.
func (b *breaker) transition(to BreakerState) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	if b.config.OnStateChange != nil {
		go b.config.OnStateChange(from, to)
	}
}

func (b *breaker) notify(from, to BreakerState) {
	if from != to && b.config.OnStateChange != nil {
		b.config.OnStateChange(from, to)
	}
}
