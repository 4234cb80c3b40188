package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pitchframe/marketing-agent/internal/flow"
)

const redisKeyPrefix = "marketing-agent:session:"

// Redis is a Redis-backed store with TTL-based expiry. State eviction is a
// transport-layer concern, so the TTL lives here and not in the engine.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// TTL of zero means sessions never expire.
	TTL time.Duration
}

func OpenRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("missing redis addr")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     strings.TrimSpace(cfg.Addr),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{client: client, ttl: cfg.TTL}, nil
}

func (r *Redis) Load(ctx context.Context, sessionID string) (*flow.State, error) {
	if r == nil || r.client == nil {
		return nil, errors.New("store not initialized")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, errors.New("missing session id")
	}

	raw, err := r.client.Get(ctx, redisKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeState(raw)
}

func (r *Redis) Save(ctx context.Context, sessionID string, state *flow.State) error {
	if r == nil || r.client == nil {
		return errors.New("store not initialized")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return errors.New("missing session id")
	}
	raw, err := encodeState(state)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisKeyPrefix+sessionID, raw, r.ttl).Err()
}

func (r *Redis) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
