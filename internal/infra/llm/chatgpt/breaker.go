package chatgpt

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// Completer is the subset of the client the breaker guards.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error)
}

// BreakerSettings tunes the circuit breaker around the completion backend.
type BreakerSettings struct {
	Name                string
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// BreakerClient short-circuits completion calls while the backend keeps failing.
// Calls are never retried.
type BreakerClient struct {
	next   Completer
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

// NewBreakerClient wraps next with a gobreaker circuit breaker.
func NewBreakerClient(next Completer, settings BreakerSettings, logger *slog.Logger) *BreakerClient {
	if settings.Name == "" {
		settings.Name = "chatgpt"
	}
	if settings.MaxRequests == 0 {
		settings.MaxRequests = 5
	}
	if settings.Interval <= 0 {
		settings.Interval = 60 * time.Second
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 30 * time.Second
	}
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = 5
	}
	log := logger.With("component", "chatgpt.breaker")
	threshold := settings.ConsecutiveFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: isBreakerSuccess,
	})
	return &BreakerClient{next: next, cb: cb, logger: log}
}

// CreateChatCompletion forwards to the wrapped client through the breaker.
func (b *BreakerClient) CreateChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.CreateChatCompletion(ctx, req)
	})
	if err != nil {
		return ChatCompletionResponse{}, err
	}
	return out.(ChatCompletionResponse), nil
}

// State exposes the breaker state for readiness reporting.
func (b *BreakerClient) State() string {
	return b.cb.State().String()
}

// isBreakerSuccess treats caller cancellation and 4xx answers other than 429 as healthy.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status < http.StatusInternalServerError && statusErr.Status != http.StatusTooManyRequests
	}
	return false
}
