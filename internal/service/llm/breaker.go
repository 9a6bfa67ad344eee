package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	apperrors "github.com/Tzuyuchae/QuickThoughts/internal/errors"
)

// BreakerConfig holds configuration for the provider circuit breaker.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// BreakerProvider guards another provider with a circuit breaker. Malformed replies
// count as successes: the model answered.
type BreakerProvider struct {
	next Provider
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerProvider wraps next.
func NewBreakerProvider(next Provider, config BreakerConfig, logger *zap.Logger) *BreakerProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || apperrors.IsMalformedResponse(err) || errors.Is(err, context.Canceled)
		},
	})
	return &BreakerProvider{next: next, cb: cb}
}

// IsAvailable reports whether the wrapped provider is configured and the circuit is not open.
func (b *BreakerProvider) IsAvailable() bool {
	return b.next.IsAvailable() && b.cb.State() != gobreaker.StateOpen
}

// State returns the breaker state.
func (b *BreakerProvider) State() gobreaker.State {
	return b.cb.State()
}

// Generate forwards to the wrapped provider unless the circuit is open.
func (b *BreakerProvider) Generate(ctx context.Context, req Request) (string, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return b.next.Generate(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", apperrors.NewRequestFailed("transcription service temporarily unavailable", err)
		}
		return "", err
	}
	return out.(string), nil
}
