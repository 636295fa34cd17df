package events

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/healthcalc/internal/domain/history"
)

func TestLogPublisherAcceptsEvents(t *testing.T) {
	p := NewLogPublisher(testLogger())
	err := p.Publish(context.Background(), history.Event{
		Type:       history.EventCalculationRecorded,
		Record:     history.Record{ID: "r1", Calculator: "bmi"},
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)
}

func TestRabbitMQPublisherDisconnected(t *testing.T) {
	p := newDisconnectedPublisher()

	err := p.Publish(context.Background(), history.Event{Type: history.EventCalculationRecorded})
	require.ErrorIs(t, err, errNotConnected)
	require.Len(t, p.reconnectCh, 1)
	require.ErrorIs(t, p.Ping(context.Background()), errNotConnected)
}

func TestRabbitMQPublisherBreakerOpens(t *testing.T) {
	p := newDisconnectedPublisher()
	ev := history.Event{Type: history.EventCalculationRecorded}

	for i := 0; i < 6; i++ {
		require.ErrorIs(t, p.Publish(context.Background(), ev), errNotConnected)
	}
	require.ErrorIs(t, p.Publish(context.Background(), ev), gobreaker.ErrOpenState)
}

func TestRabbitMQPublisherCloseIsIdempotent(t *testing.T) {
	p := newDisconnectedPublisher()
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
}

func newDisconnectedPublisher() *RabbitMQPublisher {
	return &RabbitMQPublisher{
		queueName:   defaultQueue,
		cb:          newPublishBreaker(),
		logger:      testLogger(),
		reconnectCh: make(chan struct{}, 1),
		stop:        make(chan struct{}),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
