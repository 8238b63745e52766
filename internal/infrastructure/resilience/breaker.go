package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned while the breaker refuses calls
var ErrOpen = errors.New("circuit breaker is open")

// State of a breaker
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures a breaker
type Settings struct {
	// Failures is the number of consecutive failures that opens the breaker
	Failures int
	// Cooldown is how long the breaker stays open before allowing a probe
	Cooldown time.Duration
	// OnStateChange observes every transition
	OnStateChange func(name string, from, to State)
	// Now overrides the clock in tests
	Now func() time.Time
}

// Breaker stops calling an upstream that keeps failing.
// After Failures consecutive errors it opens for Cooldown, then lets a single
// probe through: success closes it, failure opens it again.
type Breaker struct {
	name     string
	settings Settings

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
}

// New creates a closed breaker
func New(name string, settings Settings) *Breaker {
	if settings.Failures <= 0 {
		settings.Failures = 5
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = time.Minute
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}
	return &Breaker{name: name, settings: settings}
}

// Name returns the breaker name
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current()
}

// Do runs fn unless the breaker is open. Context errors do not count as
// upstream failures.
func (b *Breaker) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := b.acquire(); err != nil {
		return err
	}

	err := fn(ctx)
	if err != nil && ctx.Err() != nil {
		b.release()
		return err
	}
	b.record(err == nil)
	return err
}

func (b *Breaker) acquire() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.current() {
	case StateOpen:
		return ErrOpen
	case StateHalfOpen:
		if b.probing {
			return ErrOpen
		}
		b.probing = true
	}
	return nil
}

// release abandons a probe without judging the upstream
func (b *Breaker) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probing = false
}

func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.current()
	b.probing = false

	if success {
		b.failures = 0
		b.set(StateClosed)
		return
	}

	b.failures++
	if state == StateHalfOpen || b.failures >= b.settings.Failures {
		b.openedAt = b.settings.Now()
		b.set(StateOpen)
	}
}

// current moves an expired open breaker to half-open. Must hold mu.
func (b *Breaker) current() State {
	if b.state == StateOpen && b.settings.Now().Sub(b.openedAt) >= b.settings.Cooldown {
		b.set(StateHalfOpen)
	}
	return b.state
}

// set must hold mu
func (b *Breaker) set(to State) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	if to == StateClosed {
		b.failures = 0
	}
	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}
