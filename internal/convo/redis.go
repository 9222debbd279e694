package convo

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/dennisdiepolder/eduvoice/internal/types"
)

const keyPrefix = "convo:"

// RedisStore keeps contexts in Redis with the retention window as the key
// TTL, so expiry is enforced by the server: Save and Touch reset the TTL and
// an idle context simply disappears. Unlike MemoryStore it cannot tell an
// expired context from one that never existed, so both report ErrNotFound;
// callers start a fresh context either way.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an already-connected client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func contextKey(callID string) string {
	return keyPrefix + callID
}

// Get fetches and decodes the context for the call
func (r *RedisStore) Get(ctx context.Context, callID string) (*types.ConversationContext, error) {
	data, err := r.client.Get(ctx, contextKey(callID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get context %s: %w", callID, err)
	}

	var c types.ConversationContext
	if err := sonic.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode context %s: %w", callID, err)
	}
	return &c, nil
}

// Save serializes the context and resets its TTL to the retention window
func (r *RedisStore) Save(ctx context.Context, c *types.ConversationContext) error {
	data, err := sonic.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode context %s: %w", c.CallID, err)
	}
	if err := r.client.Set(ctx, contextKey(c.CallID), data, types.ContextRetention).Err(); err != nil {
		return fmt.Errorf("save context %s: %w", c.CallID, err)
	}
	return nil
}

// Touch extends the TTL without rewriting the payload
func (r *RedisStore) Touch(ctx context.Context, callID string) error {
	ok, err := r.client.Expire(ctx, contextKey(callID), types.ContextRetention).Result()
	if err != nil {
		return fmt.Errorf("touch context %s: %w", callID, err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Delete removes the context, if present
func (r *RedisStore) Delete(ctx context.Context, callID string) error {
	if err := r.client.Del(ctx, contextKey(callID)).Err(); err != nil {
		return fmt.Errorf("delete context %s: %w", callID, err)
	}
	return nil
}
