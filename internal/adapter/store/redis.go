package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chatsearch/config"
	"chatsearch/internal/domain"
)

// RedisSessionStore keeps conversation state in Redis so several engine
// processes can share sessions. Keys expire after the configured TTL.
type RedisSessionStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSessionStore connects to Redis and verifies the connection.
func NewRedisSessionStore(cfg config.RedisConfig) (*RedisSessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return newRedisSessionStore(client, cfg.Prefix, cfg.TTL), nil
}

func newRedisSessionStore(client *redis.Client, prefix string, ttl time.Duration) *RedisSessionStore {
	if prefix == "" {
		prefix = "chatsearch:session:"
	}
	return &RedisSessionStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisSessionStore) Load(ctx context.Context, sessionID string) (domain.ConversationState, error) {
	var state domain.ConversationState
	val, err := s.client.Get(ctx, s.prefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return state, domain.ErrSessionNotFound
	}
	if err != nil {
		return state, fmt.Errorf("redis get: %w", err)
	}
	if err := json.Unmarshal(val, &state); err != nil {
		return state, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return state, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, sessionID string, state domain.ConversationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.prefix+sessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.prefix+sessionID).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}
