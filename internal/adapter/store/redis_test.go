package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatsearch/internal/domain"
)

// Runs only when CHATSEARCH_TEST_REDIS points at a reachable server.
func TestRedisSessionStore(t *testing.T) {
	addr := os.Getenv("CHATSEARCH_TEST_REDIS")
	if addr == "" {
		t.Skip("CHATSEARCH_TEST_REDIS not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })
	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	s := newRedisSessionStore(client, "chatsearch:test:"+uuid.NewString()+":", time.Minute)
	_, err := s.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	require.NoError(t, s.Save(ctx, "s1", domain.ConversationState{LockedItem: "iPhone 15 Pro", Interactions: 1}))
	got, err := s.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "iPhone 15 Pro", got.LockedItem)

	ttl, err := client.TTL(ctx, s.prefix+"s1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, s.Delete(ctx, "s1"))
	_, err = s.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
