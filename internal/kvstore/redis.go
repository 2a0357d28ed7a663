// internal/kvstore/redis.go
// Redis implementation of Store

package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// incrementWithinLimits runs on the server so the read, the comparison and
// the increment cannot interleave with another client.
//
// KEYS[1] primary counter, KEYS[2] secondary counter
// ARGV[1] primary limit, ARGV[2] secondary limit, ARGV[3] "1" to bump the
// secondary, ARGV[4] ttl in seconds for counters without expiry
var incrementWithinLimits = redis.NewScript(`
local primary = tonumber(redis.call('GET', KEYS[1]) or '0')
local secondary = 0
if KEYS[2] ~= '' then
  secondary = tonumber(redis.call('GET', KEYS[2]) or '0')
end
local primaryLimit = tonumber(ARGV[1])
local secondaryLimit = tonumber(ARGV[2])
local bumpSecondary = ARGV[3] == '1'
local ttl = tonumber(ARGV[4])

if primaryLimit > 0 and primary >= primaryLimit then
  return {1, primary, secondary}
end
if bumpSecondary and secondaryLimit > 0 and secondary >= secondaryLimit then
  return {2, primary, secondary}
end

primary = redis.call('INCR', KEYS[1])
if ttl > 0 and redis.call('TTL', KEYS[1]) < 0 then
  redis.call('EXPIRE', KEYS[1], ttl)
end
if bumpSecondary then
  secondary = redis.call('INCR', KEYS[2])
  if ttl > 0 and redis.call('TTL', KEYS[2]) < 0 then
    redis.call('EXPIRE', KEYS[2], ttl)
  end
end
return {0, primary, secondary}
`)

type redisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps a go-redis client
func NewRedisStore(client redis.UniversalClient) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *redisStore) GetInt(ctx context.Context, key string) (int64, error) {
	value, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return 0, err
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse counter %s: %w", key, err)
	}
	return n, nil
}

func (s *redisStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete %d keys: %w", len(keys), err)
	}
	return nil
}

func (s *redisStore) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, false, fmt.Errorf("ttl %s: %w", key, err)
	}
	// go-redis reports -1 (no expiry) and -2 (missing) as negative durations
	if ttl < 0 {
		return 0, false, nil
	}
	return ttl, true, nil
}

func (s *redisStore) SetAdd(ctx context.Context, key string, ttl time.Duration, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	if err := s.client.SAdd(ctx, key, toInterfaces(members)...).Err(); err != nil {
		return fmt.Errorf("sadd %s: %w", key, err)
	}
	if ttl <= 0 {
		return nil
	}

	_, hasExpiry, err := s.TTL(ctx, key)
	if err != nil {
		return err
	}
	if !hasExpiry {
		if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
			return fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return nil
}

func (s *redisStore) SetAddRefresh(ctx context.Context, key string, ttl time.Duration, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, key, toInterfaces(members)...)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sadd %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) SetMembers(ctx context.Context, key string) ([]string, error) {
	members, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w", key, err)
	}
	return members, nil
}

func (s *redisStore) IncrementWithinLimits(ctx context.Context, pair CounterPair) (CounterResult, error) {
	bump := "0"
	if pair.IncrementSecondary {
		bump = "1"
	}
	ttlSeconds := int64(pair.TTL / time.Second)
	if pair.TTL > 0 && ttlSeconds < 1 {
		ttlSeconds = 1
	}

	raw, err := incrementWithinLimits.Run(ctx, s.client,
		[]string{pair.PrimaryKey, pair.SecondaryKey},
		pair.PrimaryLimit, pair.SecondaryLimit, bump, ttlSeconds,
	).Result()
	if err != nil {
		return CounterResult{}, fmt.Errorf("increment %s: %w", pair.PrimaryKey, err)
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 3 {
		return CounterResult{}, fmt.Errorf("increment %s: unexpected reply %v", pair.PrimaryKey, raw)
	}

	nums := make([]int64, 3)
	for i, v := range values {
		n, ok := v.(int64)
		if !ok {
			return CounterResult{}, fmt.Errorf("increment %s: unexpected reply element %v", pair.PrimaryKey, v)
		}
		nums[i] = n
	}

	return CounterResult{
		Outcome:   CounterOutcome(nums[0]),
		Primary:   nums[1],
		Secondary: nums[2],
	}, nil
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
