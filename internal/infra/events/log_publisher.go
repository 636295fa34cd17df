package events

import (
	"context"
	"log/slog"

	"github.com/yanqian/healthcalc/internal/domain/history"
)

// LogPublisher writes events to the structured log instead of a broker.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher constructs the broker-less publisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With("component", "events.log")}
}

// Publish implements history.Publisher.
func (p *LogPublisher) Publish(ctx context.Context, event history.Event) error {
	p.logger.DebugContext(ctx, "event", "type", event.Type, "id", event.Record.ID, "calculator", event.Record.Calculator, "session", event.Record.SessionID)
	return nil
}

var _ history.Publisher = (*LogPublisher)(nil)
