package transferlimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tokengate/pkg/domain"
)

// RedisWindowStore shares window counters across engine replicas. Keys
// encode the window start, so rolling is free: a new window is simply a new
// key and the old one expires on its own.
type RedisWindowStore struct {
	client    redis.Cmdable
	keyPrefix string
}

func NewRedisWindowStore(client redis.Cmdable) *RedisWindowStore {
	return &RedisWindowStore{client: client, keyPrefix: "tokengate:tl"}
}

func (s *RedisWindowStore) Sums(ctx context.Context, principal domain.PrincipalID, now time.Time) (Sums, error) {
	pipe := s.client.Pipeline()
	dayGet := pipe.Get(ctx, s.dayKey(principal, now))
	monthGet := pipe.Get(ctx, s.monthKey(principal, now))
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return Sums{}, fmt.Errorf("read window sums: %w", err)
	}
	daily, err := countOrZero(dayGet)
	if err != nil {
		return Sums{}, err
	}
	monthly, err := countOrZero(monthGet)
	if err != nil {
		return Sums{}, err
	}
	return Sums{Daily: daily, Monthly: monthly}, nil
}

func (s *RedisWindowStore) Add(ctx context.Context, principal domain.PrincipalID, amount uint64, now time.Time) error {
	dayKey := s.dayKey(principal, now)
	monthKey := s.monthKey(principal, now)

	pipe := s.client.TxPipeline()
	pipe.IncrBy(ctx, dayKey, int64(amount))
	// Keep the key a little past its window so diagnostics can still read it.
	pipe.Expire(ctx, dayKey, 48*time.Hour)
	pipe.IncrBy(ctx, monthKey, int64(amount))
	pipe.Expire(ctx, monthKey, 40*24*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("advance window sums: %w", err)
	}
	return nil
}

func (s *RedisWindowStore) dayKey(principal domain.PrincipalID, now time.Time) string {
	return fmt.Sprintf("%s:%s:d:%s", s.keyPrefix, principal, dayStart(now).Format("20060102"))
}

func (s *RedisWindowStore) monthKey(principal domain.PrincipalID, now time.Time) string {
	return fmt.Sprintf("%s:%s:m:%s", s.keyPrefix, principal, monthStart(now).Format("200601"))
}

func countOrZero(cmd *redis.StringCmd) (uint64, error) {
	val, err := cmd.Uint64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("parse window sum: %w", err)
	}
	return val, nil
}
