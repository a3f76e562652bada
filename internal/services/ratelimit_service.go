package services

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// LastSubmitStore persists the single last-submit timestamp behind the
// gate. Satisfied by *RedisSubmitStore.
type LastSubmitStore interface {
	LastSubmit(ctx context.Context, key string) (time.Time, bool, error)
	SetLastSubmit(ctx context.Context, key string, t time.Time) error
}

// RateLimitDecision tells the caller whether a submit may proceed and,
// if not, how long to wait.
type RateLimitDecision struct {
	Allowed          bool `json:"allowed"`
	RemainingSeconds int  `json:"remainingSeconds"`
}

// SubmitLimiter enforces a fixed minimum interval between submissions.
// Advisory only: any backend failure fails open.
type SubmitLimiter struct {
	store    LastSubmitStore
	interval time.Duration
	now      func() time.Time
}

func NewSubmitLimiter(store LastSubmitStore, interval time.Duration) *SubmitLimiter {
	return &SubmitLimiter{store: store, interval: interval, now: time.Now}
}

// Allow checks the last recorded submit time against the minimum interval.
func (l *SubmitLimiter) Allow(ctx context.Context, key string) RateLimitDecision {
	last, ok, err := l.store.LastSubmit(ctx, key)
	if err != nil {
		slog.Warn("rate limit store unavailable, failing open", "error", err)
		return RateLimitDecision{Allowed: true}
	}
	if !ok {
		return RateLimitDecision{Allowed: true}
	}
	elapsed := l.now().Sub(last)
	if elapsed < l.interval {
		remaining := int(math.Ceil((l.interval - elapsed).Seconds()))
		return RateLimitDecision{Allowed: false, RemainingSeconds: remaining}
	}
	return RateLimitDecision{Allowed: true}
}

// RecordSubmit stamps now as the last submit time. Failures are logged
// and swallowed; losing the stamp only weakens an advisory gate.
func (l *SubmitLimiter) RecordSubmit(ctx context.Context, key string) {
	if err := l.store.SetLastSubmit(ctx, key, l.now()); err != nil {
		slog.Warn("failed to record submit time", "error", err)
	}
}

const submitKeyPrefix = "repairboard:last_submit:"

// RedisSubmitStore keeps last-submit timestamps in Redis as unix millis.
type RedisSubmitStore struct {
	rdb *redis.Client
}

func NewRedisSubmitStore(rdb *redis.Client) *RedisSubmitStore {
	return &RedisSubmitStore{rdb: rdb}
}

func (s *RedisSubmitStore) LastSubmit(ctx context.Context, key string) (time.Time, bool, error) {
	val, err := s.rdb.Get(ctx, submitKeyPrefix+key).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	millis, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// A corrupt stamp is treated as no stamp.
		return time.Time{}, false, nil
	}
	return time.UnixMilli(millis), true, nil
}

func (s *RedisSubmitStore) SetLastSubmit(ctx context.Context, key string, t time.Time) error {
	return s.rdb.Set(ctx, submitKeyPrefix+key, strconv.FormatInt(t.UnixMilli(), 10), 0).Err()
}
