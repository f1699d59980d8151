// Package circuit guards calls to a remote dependency. After a run of
// consecutive failures the breaker opens and rejects calls until a cooldown
// passes; the next call is a half-open probe whose outcome closes or reopens it.
package circuit

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by Allow while the breaker rejects calls.
var ErrOpen = errors.New("circuit open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

type Breaker struct {
	mu               sync.Mutex
	name             string
	state            State
	failures         int
	openedAt         time.Time
	probing          bool
	failureThreshold int
	cooldown         time.Duration
	now              func() time.Time
	onChange         func(name string, from, to State)
}

type Option func(*Breaker)

// WithFailureThreshold sets how many consecutive failures open the breaker. Default 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithCooldown sets how long the breaker stays open before probing. Default 10s.
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

// WithClock overrides time.Now for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		b.now = now
	}
}

// WithStateChangeHook is called, outside the lock, on every transition.
func WithStateChangeHook(fn func(name string, from, to State)) Option {
	return func(b *Breaker) {
		b.onChange = fn
	}
}

func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		state:            StateClosed,
		failureThreshold: 5,
		cooldown:         10 * time.Second,
		now:              time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *Breaker) Name() string {
	return b.name
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow reports whether a call may proceed. While half-open only one probe
// is in flight at a time.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	var from State
	changed := false
	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			b.mu.Unlock()
			return ErrOpen
		}
		from, changed = b.state, true
		b.state = StateHalfOpen
		b.probing = true
	case StateHalfOpen:
		if b.probing {
			b.mu.Unlock()
			return ErrOpen
		}
		b.probing = true
	}
	b.mu.Unlock()
	if changed {
		b.notify(from, StateHalfOpen)
	}
	return nil
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	from := b.state
	b.state = StateClosed
	b.failures = 0
	b.probing = false
	b.mu.Unlock()
	if from != StateClosed {
		b.notify(from, StateClosed)
	}
}

func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	from := b.state
	b.failures++
	b.probing = false
	if from == StateHalfOpen || (from == StateClosed && b.failures >= b.failureThreshold) {
		b.state = StateOpen
		b.openedAt = b.now()
	}
	to := b.state
	b.mu.Unlock()
	if from != to {
		b.notify(from, to)
	}
}

// Reset closes the breaker and clears counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	b.state = StateClosed
	b.failures = 0
	b.probing = false
	b.mu.Unlock()
}

func (b *Breaker) notify(from, to State) {
	if b.onChange != nil {
		b.onChange(b.name, from, to)
	}
}
