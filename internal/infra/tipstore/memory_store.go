package tipstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yanqian/healthcalc/internal/domain/healthtips"
)

type cachedTips struct {
	payload   healthtips.TipRecord
	expiresAt time.Time
}

// MemoryStore is an in-memory implementation of the tip store for tests/dev.
type MemoryStore struct {
	mu       sync.RWMutex
	tips     map[string]cachedTips
	trending map[string]int64
	now      func() time.Time
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tips:     make(map[string]cachedTips),
		trending: make(map[string]int64),
		now:      time.Now,
	}
}

// GetTips implements healthtips.Store.
func (s *MemoryStore) GetTips(_ context.Context, key string) (healthtips.TipRecord, bool, error) {
	if key == "" {
		return healthtips.TipRecord{}, false, nil
	}
	s.mu.RLock()
	record, ok := s.tips[key]
	s.mu.RUnlock()
	if !ok {
		return healthtips.TipRecord{}, false, nil
	}
	if s.expired(record.expiresAt) {
		s.mu.Lock()
		delete(s.tips, key)
		s.mu.Unlock()
		return healthtips.TipRecord{}, false, nil
	}
	out := record.payload
	out.HealthTips = append([]string(nil), record.payload.HealthTips...)
	return out, true, nil
}

// SaveTips caches the record with optional TTL.
func (s *MemoryStore) SaveTips(_ context.Context, record healthtips.TipRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	record.HealthTips = append([]string(nil), record.HealthTips...)
	s.tips[record.Key] = cachedTips{payload: record, expiresAt: exp}
	return nil
}

// IncrementCalculator bumps the tip counter for a calculator.
func (s *MemoryStore) IncrementCalculator(_ context.Context, calculator string) error {
	if calculator == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trending[calculator]++
	return nil
}

// TopCalculators returns calculators ordered by tip requests.
func (s *MemoryStore) TopCalculators(_ context.Context, limit int) ([]healthtips.TrendingCalculator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = len(s.trending)
	}
	items := make([]healthtips.TrendingCalculator, 0, len(s.trending))
	for name, count := range s.trending {
		items = append(items, healthtips.TrendingCalculator{Calculator: name, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Calculator < items[j].Calculator
		}
		return items[i].Count > items[j].Count
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *MemoryStore) expired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(s.now())
}

var _ healthtips.Store = (*MemoryStore)(nil)
