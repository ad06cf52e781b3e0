package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/recipehub/internal/auth"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "recipehub:session:"

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps each session as a JSON value under its own key with the
// session TTL, so expiry and cleanup are Redis' job.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Ping checks redis connectivity; /readyz calls it.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) Save(ctx context.Context, id string, p auth.Principal, ttl time.Duration) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return s.rdb.Set(ctx, keyPrefix+id, b, ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, id string) (auth.Principal, error) {
	b, err := s.rdb.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return auth.Principal{}, auth.ErrSessionNotFound
		}
		return auth.Principal{}, err
	}

	var p auth.Principal
	if err := json.Unmarshal(b, &p); err != nil {
		return auth.Principal{}, fmt.Errorf("unmarshal session: %w", err)
	}

	return p, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) (bool, error) {
	n, err := s.rdb.Del(ctx, keyPrefix+id).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
