package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"smartinventory/internal/model"
)

const keyPrefix = "session:"

// RedisStore keeps each session under session:<token> with a TTL matching its expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps a connected client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

type redisSession struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (r *RedisStore) Save(ctx context.Context, s *model.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("save session: already expired")
	}
	payload, err := json.Marshal(redisSession{UserID: s.UserID, ExpiresAt: s.ExpiresAt})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.client.Set(ctx, keyPrefix+s.Token, payload, ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, token string) (*model.Session, error) {
	raw, err := r.client.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var rs redisSession
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &model.Session{Token: token, UserID: rs.UserID, ExpiresAt: rs.ExpiresAt}, nil
}

func (r *RedisStore) Delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, keyPrefix+token).Err()
}
