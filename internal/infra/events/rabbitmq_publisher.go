package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"

	"github.com/yanqian/healthcalc/internal/domain/history"
)

const defaultQueue = "healthcalc.calculations"

var errNotConnected = errors.New("rabbitmq channel not connected")

// RabbitMQPublisher publishes calculation events to a durable queue.
// A circuit breaker stops publishing attempts while the broker is unreachable
// and a failed publish triggers one background reconnect.
type RabbitMQPublisher struct {
	url       string
	queueName string
	cb        *gobreaker.CircuitBreaker
	logger    *slog.Logger

	mu      sync.RWMutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	reconnectCh chan struct{}
	stop        chan struct{}
	closeOnce   sync.Once
}

// NewRabbitMQPublisher dials the broker and declares the queue.
func NewRabbitMQPublisher(url, queueName string, logger *slog.Logger) (*RabbitMQPublisher, error) {
	if queueName == "" {
		queueName = defaultQueue
	}
	p := &RabbitMQPublisher{
		url:         url,
		queueName:   queueName,
		logger:      logger.With("component", "events.rabbitmq"),
		reconnectCh: make(chan struct{}, 1),
		stop:        make(chan struct{}),
	}
	p.cb = newPublishBreaker()
	if err := p.connect(); err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	go p.handleReconnection()
	return p, nil
}

func newPublishBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "rabbitmq",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})
}

func (p *RabbitMQPublisher) connect() error {
	conn, err := amqp091.Dial(p.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	if _, err := ch.QueueDeclare(
		p.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return err
	}

	p.mu.Lock()
	p.conn = conn
	p.channel = ch
	p.mu.Unlock()
	p.logger.Info("rabbitmq connected", "queue", p.queueName)
	return nil
}

func (p *RabbitMQPublisher) handleReconnection() {
	for {
		select {
		case <-p.reconnectCh:
			p.mu.Lock()
			if p.channel != nil {
				p.channel.Close()
			}
			if p.conn != nil {
				p.conn.Close()
			}
			p.channel, p.conn = nil, nil
			p.mu.Unlock()

			if err := p.connect(); err != nil {
				p.logger.Warn("rabbitmq reconnect failed", "error", err)
			}
		case <-p.stop:
			return
		}
	}
}

// Publish implements history.Publisher.
func (p *RabbitMQPublisher) Publish(ctx context.Context, event history.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.publish(ctx, event.Type, body)
	})
	return err
}

func (p *RabbitMQPublisher) publish(ctx context.Context, eventType string, body []byte) error {
	p.mu.RLock()
	ch, conn := p.channel, p.conn
	p.mu.RUnlock()

	if ch == nil || conn == nil || conn.IsClosed() {
		p.requestReconnect()
		return errNotConnected
	}
	err := ch.PublishWithContext(ctx,
		"",          // exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Type:         eventType,
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.requestReconnect()
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func (p *RabbitMQPublisher) requestReconnect() {
	select {
	case p.reconnectCh <- struct{}{}:
	default:
	}
}

// Ping reports whether the broker connection is open.
func (p *RabbitMQPublisher) Ping(context.Context) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.conn == nil || p.conn.IsClosed() {
		return errNotConnected
	}
	return nil
}

// Close stops reconnection and closes the connection.
func (p *RabbitMQPublisher) Close() error {
	p.closeOnce.Do(func() { close(p.stop) })
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

var _ history.Publisher = (*RabbitMQPublisher)(nil)
