package healthtips

import (
	"context"
	"time"
)

// Store defines the persistence contract for cached tips and trending counters.
type Store interface {
	GetTips(ctx context.Context, key string) (TipRecord, bool, error)
	SaveTips(ctx context.Context, record TipRecord, ttl time.Duration) error
	IncrementCalculator(ctx context.Context, calculator string) error
	TopCalculators(ctx context.Context, limit int) ([]TrendingCalculator, error)
}
