package resilience

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var breakerNopLogger = zerolog.Nop()

// ErrOpenCircuit is returned by Do while the breaker refuses calls.
var ErrOpenCircuit = errors.New("resilience: circuit breaker open")

// State is the breaker state.
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

// Breaker trips after a window of calls fails at or above FailureRatio and refuses calls
// for OpenFor. After the cool-off exactly one probe is let through; its outcome closes or
// re-opens the breaker.
type Breaker struct {
	Target       string
	MinRequests  int
	FailureRatio float64
	OpenFor      time.Duration
	Logger       *zerolog.Logger
	Now          func() time.Time

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	openedAt  time.Time
	probing   bool
}

// NewBreaker returns a closed breaker for target with defaults applied.
func NewBreaker(target string, minRequests int, failureRatio float64, openFor time.Duration) *Breaker {
	b := &Breaker{Target: strings.TrimSpace(target), MinRequests: minRequests, FailureRatio: failureRatio, OpenFor: openFor}
	b.recordState()
	return b
}

// State returns the current state without side effects.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Do runs fn when the breaker allows it and records the outcome. Errors for which
// ignore returns true count as successes, e.g. cache misses.
func (b *Breaker) Do(ctx context.Context, fn func(context.Context) error, ignore ...func(error) bool) error {
	if b == nil {
		return fn(ctx)
	}
	if !b.allow(ctx) {
		return ErrOpenCircuit
	}
	err := fn(ctx)
	ok := err == nil
	for _, ig := range ignore {
		if !ok && ig(err) {
			ok = true
		}
	}
	b.report(ctx, ok)
	return err
}

func (b *Breaker) allow(ctx context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case Open:
		if b.now().Sub(b.openedAt) < b.openFor() {
			return false
		}
		b.transition(ctx, HalfOpen)
		b.probing = true
		return true
	case HalfOpen:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	default:
		return true
	}
}

func (b *Breaker) report(ctx context.Context, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case Open:
		return
	case HalfOpen:
		b.probing = false
		if success {
			b.transition(ctx, Closed)
		} else {
			b.transition(ctx, Open)
		}
		return
	}
	if success {
		b.successes++
	} else {
		b.failures++
	}
	total := b.failures + b.successes
	minRequests := max(b.MinRequests, 1)
	if total < minRequests {
		return
	}
	if float64(b.failures)/float64(total) >= b.failureRatio() {
		b.transition(ctx, Open)
		return
	}
	if total > minRequests*2 {
		// decay so old outcomes stop dominating the ratio
		b.successes = (b.successes + 1) / 2
		b.failures = (b.failures + 1) / 2
	}
}

func (b *Breaker) transition(ctx context.Context, next State) {
	prev := b.state
	if prev == next {
		return
	}
	b.state = next
	b.failures, b.successes = 0, 0
	if next == Open {
		b.openedAt = b.now()
	}
	b.recordState()
	target := b.target()
	if BreakerTransitions != nil {
		BreakerTransitions.WithLabelValues(target, prev.String(), next.String()).Inc()
	}
	evt := b.loggerFor(ctx).Info().Str("target", target).Str("from_state", prev.String()).Str("to_state", next.String())
	if span := trace.SpanContextFromContext(ctx); span.IsValid() {
		evt = evt.Str("trace_id", span.TraceID().String())
	}
	evt.Msg("breaker_transition")
}

func (b *Breaker) recordState() {
	if BreakerState == nil {
		return
	}
	var v float64
	switch b.state {
	case Open:
		v = 1
	case HalfOpen:
		v = 2
	}
	BreakerState.WithLabelValues(b.target()).Set(v)
}

func (b *Breaker) target() string {
	if b.Target == "" {
		return "default"
	}
	return b.Target
}

func (b *Breaker) failureRatio() float64 {
	switch {
	case b.FailureRatio <= 0:
		return 0.5
	case b.FailureRatio > 1:
		return 1
	default:
		return b.FailureRatio
	}
}

func (b *Breaker) openFor() time.Duration {
	if b.OpenFor <= 0 {
		return 30 * time.Second
	}
	return b.OpenFor
}

func (b *Breaker) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b *Breaker) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	if b.Logger == nil {
		return &breakerNopLogger
	}
	return b.Logger
}
