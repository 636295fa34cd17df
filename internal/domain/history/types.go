package history

import (
	"context"
	"encoding/json"
	"time"
)

// EventCalculationRecorded is published after a calculation is stored.
const EventCalculationRecorded = "calculation.recorded"

// Record is one stored calculation.
type Record struct {
	ID             string          `json:"id"`
	SessionID      string          `json:"sessionId,omitempty"`
	Calculator     string          `json:"calculator"`
	CalculatorType string          `json:"calculatorType"`
	Result         string          `json:"result"`
	UserData       string          `json:"userData"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Event is the message emitted for downstream consumers.
type Event struct {
	Type       string    `json:"type"`
	Record     Record    `json:"record"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Repository stores calculation records.
type Repository interface {
	Insert(ctx context.Context, record Record) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]Record, error)
}

// Publisher announces stored records.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Config holds history knobs.
type Config struct {
	ListLimit int
}
