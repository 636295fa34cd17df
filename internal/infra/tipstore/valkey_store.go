package tipstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/healthcalc/internal/domain/healthtips"
)

// ValkeyStore persists cached tips and trending counters in a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "healthcalc"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) GetTips(ctx context.Context, key string) (healthtips.TipRecord, bool, error) {
	if key == "" {
		return healthtips.TipRecord{}, false, nil
	}
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.tipsKey(key)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return healthtips.TipRecord{}, false, nil
		}
		return healthtips.TipRecord{}, false, err
	}
	var record healthtips.TipRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return healthtips.TipRecord{}, false, err
	}
	return record, true, nil
}

func (s *ValkeyStore) SaveTips(ctx context.Context, record healthtips.TipRecord, ttl time.Duration) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.tipsKey(record.Key)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) IncrementCalculator(ctx context.Context, calculator string) error {
	if calculator == "" {
		return nil
	}
	return s.client.Do(ctx, s.client.B().Zincrby().Key(s.trendingKey()).Increment(1).Member(calculator).Build()).Error()
}

func (s *ValkeyStore) TopCalculators(ctx context.Context, limit int) ([]healthtips.TrendingCalculator, error) {
	if limit <= 0 {
		limit = 10
	}
	resp := s.client.Do(ctx, s.client.B().Zrevrange().Key(s.trendingKey()).Start(0).Stop(int64(limit-1)).Withscores().Build())
	arr, err := resp.ToArray()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]healthtips.TrendingCalculator, 0, len(arr))
	for i := 0; i < len(arr); {
		var (
			member string
			score  float64
		)
		if tuple, tupleErr := arr[i].ToArray(); tupleErr == nil && len(tuple) == 2 {
			// RESP3 returns [member, score] per element
			if member, err = tuple[0].ToString(); err != nil {
				return nil, err
			}
			if score, err = tuple[1].ToFloat64(); err != nil {
				return nil, err
			}
			i++
		} else {
			// RESP2 returns a flat alternating array.
			if i+1 >= len(arr) {
				break
			}
			if member, err = arr[i].ToString(); err != nil {
				return nil, err
			}
			if score, err = arr[i+1].ToFloat64(); err != nil {
				return nil, err
			}
			i += 2
		}
		out = append(out, healthtips.TrendingCalculator{Calculator: member, Count: int64(score)})
	}
	return out, nil
}

// Ping reports whether the backing server answers.
func (s *ValkeyStore) Ping(ctx context.Context) error {
	return s.client.Do(ctx, s.client.B().Ping().Build()).Error()
}

func (s *ValkeyStore) tipsKey(key string) string {
	return fmt.Sprintf("%s:tips:%s", s.prefix, key)
}

func (s *ValkeyStore) trendingKey() string {
	return fmt.Sprintf("%s:trending", s.prefix)
}

var _ healthtips.Store = (*ValkeyStore)(nil)
