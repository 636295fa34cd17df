package historyrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/healthcalc/internal/domain/history"
)

const schema = `
CREATE TABLE IF NOT EXISTS calculations (
	id              TEXT PRIMARY KEY,
	session_id      TEXT NOT NULL DEFAULT '',
	calculator      TEXT NOT NULL,
	calculator_type TEXT NOT NULL,
	result          TEXT NOT NULL,
	user_data       TEXT NOT NULL,
	payload         JSONB,
	created_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS calculations_session_created_idx ON calculations (session_id, created_at DESC);
`

// PostgresRepository implements history.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the calculations table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure calculations schema: %w", err)
	}
	return nil
}

// Insert stores one calculation row.
func (r *PostgresRepository) Insert(ctx context.Context, record history.Record) error {
	var payload any
	if len(record.Payload) > 0 {
		payload = string(record.Payload)
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO calculations (id, session_id, calculator, calculator_type, result, user_data, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8)
	`, record.ID, record.SessionID, record.Calculator, record.CalculatorType, record.Result, record.UserData, payload, record.CreatedAt)
	return err
}

// ListBySession returns the newest records first.
func (r *PostgresRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]history.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, session_id, calculator, calculator_type, result, user_data, COALESCE(payload::text, ''), created_at
		FROM calculations
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []history.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

// Ping checks connectivity for readiness probes.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanRecord(row pgx.Row) (history.Record, error) {
	var (
		record  history.Record
		payload string
	)
	if err := row.Scan(&record.ID, &record.SessionID, &record.Calculator, &record.CalculatorType, &record.Result, &record.UserData, &payload, &record.CreatedAt); err != nil {
		return history.Record{}, err
	}
	if payload != "" {
		record.Payload = []byte(payload)
	}
	return record, nil
}

var _ history.Repository = (*PostgresRepository)(nil)
