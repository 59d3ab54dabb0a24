// Package ai wires completion backends: provider selection, circuit breaking
// and health reporting.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alchemorsel/menupairing/internal/ports/outbound"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned while the breaker rejects calls
var ErrCircuitOpen = errors.New("completion backend circuit open")

// BreakerConfig configures the circuit breaker
type BreakerConfig struct {
	Name string
	// FailureThreshold is the number of consecutive failures that trips the breaker
	FailureThreshold uint32
	// MaxRequests is the number of trial requests allowed while half-open
	MaxRequests uint32
	// Interval clears the closed-state counts periodically; zero never clears
	Interval time.Duration
	// Timeout is how long the breaker stays open before going half-open
	Timeout time.Duration
}

// DefaultBreakerConfig returns conservative defaults
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "completion-backend",
		FailureThreshold: 5,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
	}
}

// BreakerClient guards a CompletionClient with a circuit breaker. Each
// Complete is still a single attempt; an open breaker fails immediately.
type BreakerClient struct {
	next    outbound.CompletionClient
	breaker *gobreaker.CircuitBreaker[string]
	logger  *zap.Logger
}

var _ outbound.CompletionClient = (*BreakerClient)(nil)

// NewBreakerClient wraps next with a circuit breaker
func NewBreakerClient(next outbound.CompletionClient, cfg BreakerConfig, logger *zap.Logger) *BreakerClient {
	logger = logger.Named("breaker")
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = DefaultBreakerConfig().FailureThreshold
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		// a missing credential or a caller cancelling is not a backend fault
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, outbound.ErrBackendDisabled) ||
				errors.Is(err, context.Canceled)
		},
	}

	return &BreakerClient{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[string](settings),
		logger:  logger,
	}
}

// Complete forwards the request unless the breaker is open
func (b *BreakerClient) Complete(ctx context.Context, req outbound.CompletionRequest) (string, error) {
	content, err := b.breaker.Execute(func() (string, error) {
		return b.next.Complete(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	return content, err
}

// State returns the current breaker state name
func (b *BreakerClient) State() string {
	return b.breaker.State().String()
}
