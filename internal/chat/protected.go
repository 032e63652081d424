package chat

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker open")

type breakerState string

const (
	stateClosed   breakerState = "closed"
	stateOpen     breakerState = "open"
	stateHalfOpen breakerState = "half_open"
)

type ProtectedGeneratorConfig struct {
	Timeout          time.Duration // hard timeout per generation
	FailureThreshold int           // consecutive failures to open circuit
	Cooldown         time.Duration // how long to stay open before half-open
	HalfOpenMaxCalls int           // allow N trial calls in half-open
}

// ProtectedGenerator bounds every call to the model with a timeout and stops
// calling it for a while after repeated failures.
type ProtectedGenerator struct {
	inner Generator
	cfg   ProtectedGeneratorConfig
	mu    sync.Mutex
	now   func() time.Time

	state breakerState

	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int
}

func NewProtectedGenerator(inner Generator, cfg ProtectedGeneratorConfig) *ProtectedGenerator {
	//defaults
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}

	return &ProtectedGenerator{
		inner: inner,
		cfg:   cfg,
		now:   time.Now,
		state: stateClosed,
	}
}

func (g *ProtectedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	// fail-fast gate
	if !g.allowRequest() {
		return "", ErrCircuitOpen
	}

	genCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	text, err := g.inner.Generate(genCtx, prompt)

	g.afterRequest(ctx, err)

	return text, err
}

func (g *ProtectedGenerator) State() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return string(g.state)
}

func (g *ProtectedGenerator) allowRequest() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case stateClosed:
		return true
	case stateOpen:
		if g.now().Sub(g.openedAt) >= g.cfg.Cooldown {
			g.state = stateHalfOpen
			g.halfOpenInFlight = 1
			return true
		}
		return false
	case stateHalfOpen:
		if g.halfOpenInFlight >= g.cfg.HalfOpenMaxCalls {
			return false
		}
		g.halfOpenInFlight++
		return true
	default:
		return true
	}
}

func (g *ProtectedGenerator) afterRequest(ctx context.Context, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == stateHalfOpen && g.halfOpenInFlight > 0 {
		g.halfOpenInFlight--
	}

	// the caller went away; says nothing about the model
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return
	}

	if err == nil {
		g.consecutiveFailures = 0
		g.state = stateClosed
		return
	}

	g.consecutiveFailures++

	// a failed trial call reopens immediately
	if g.state == stateHalfOpen {
		g.state = stateOpen
		g.openedAt = g.now()
		return
	}

	if g.consecutiveFailures >= g.cfg.FailureThreshold {
		g.state = stateOpen
		g.openedAt = g.now()
	}
}
