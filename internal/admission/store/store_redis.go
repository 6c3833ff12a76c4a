package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"trustledger/internal/domain"
	"trustledger/internal/storage"
	"trustledger/pkg/chain"
)

const rateLimitKeyPrefix = "trustledger:ratelimit:"

// RedisStore is a Redis-backed rate-limit state store for deployments where
// multiple instances must share admission state. One hash per caller.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Find(ctx context.Context, caller chain.Principal) (domain.RateLimitState, error) {
	fields, err := s.client.HGetAll(ctx, rateLimitKeyPrefix+caller.String()).Result()
	if err != nil {
		return domain.RateLimitState{}, fmt.Errorf("redis hgetall: %w", err)
	}
	if len(fields) == 0 {
		return domain.RateLimitState{}, storage.ErrNotFound
	}
	lastBlock, err := strconv.ParseUint(fields["last_block"], 10, 64)
	if err != nil {
		return domain.RateLimitState{}, fmt.Errorf("parse last_block: %w", err)
	}
	opsInBlock, err := strconv.ParseUint(fields["ops_in_block"], 10, 64)
	if err != nil {
		return domain.RateLimitState{}, fmt.Errorf("parse ops_in_block: %w", err)
	}
	return domain.RateLimitState{Caller: caller, LastBlock: lastBlock, OpsInBlock: opsInBlock}, nil
}

func (s *RedisStore) Save(ctx context.Context, state domain.RateLimitState) error {
	err := s.client.HSet(ctx, rateLimitKeyPrefix+state.Caller.String(),
		"last_block", strconv.FormatUint(state.LastBlock, 10),
		"ops_in_block", strconv.FormatUint(state.OpsInBlock, 10),
	).Err()
	if err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}
