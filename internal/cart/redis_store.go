package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisTTL = 30 * 24 * time.Hour

// RedisをバックエンドにするSnapshotStore。
// キーは cart-storage:<session>。SETで全量を置き換える。
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, ttl: defaultRedisTTL}
}

func redisKey(sessionID string) string {
	return "cart-storage:" + sessionID
}

func (r *RedisStore) Save(ctx context.Context, sessionID string, c Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := r.client.Set(ctx, redisKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, sessionID string) (Cart, bool, error) {
	data, err := r.client.Get(ctx, redisKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Cart{}, false, nil
	}
	if err != nil {
		return Cart{}, false, fmt.Errorf("redis get failed: %w", err)
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, false, fmt.Errorf("unmarshal cart: %w", err)
	}
	return c, true, nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, redisKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}
