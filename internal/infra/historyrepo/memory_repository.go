package historyrepo

import (
	"context"
	"sync"

	"github.com/yanqian/healthcalc/internal/domain/history"
)

// MemoryRepository is an in-memory history.Repository used for tests/dev.
type MemoryRepository struct {
	mu        sync.RWMutex
	bySession map[string][]history.Record
	maxPer    int
}

// NewMemoryRepository constructs a repo backed by memory. maxPerSession bounds
// retained records per session; zero keeps everything.
func NewMemoryRepository(maxPerSession int) *MemoryRepository {
	return &MemoryRepository{
		bySession: make(map[string][]history.Record),
		maxPer:    maxPerSession,
	}
}

// Insert implements history.Repository.
func (r *MemoryRepository) Insert(_ context.Context, record history.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.Payload = append([]byte(nil), record.Payload...)
	records := append(r.bySession[record.SessionID], record)
	if r.maxPer > 0 && len(records) > r.maxPer {
		records = records[len(records)-r.maxPer:]
	}
	r.bySession[record.SessionID] = records
	return nil
}

// ListBySession implements history.Repository, newest first.
func (r *MemoryRepository) ListBySession(_ context.Context, sessionID string, limit int) ([]history.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := r.bySession[sessionID]
	out := make([]history.Record, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		out = append(out, records[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

var _ history.Repository = (*MemoryRepository)(nil)
