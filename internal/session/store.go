package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"acadex.dev/acadex/internal/model"
	"github.com/redis/go-redis/v9"
)

// Store holds the authoritative user snapshot the auth gate trusts.
// There is deliberately no primary-store fallback on the read path: a
// miss means the caller must log in again, and every user mutation must
// re-write the snapshot or requests are authorized against stale data.
type Store interface {
	// Lookup returns the snapshot for id, or (nil, nil) on a miss.
	Lookup(ctx context.Context, id string) (*model.User, error)
	Save(ctx context.Context, user *model.User) error
	SaveTTL(ctx context.Context, user *model.User, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Lookup(ctx context.Context, id string) (*model.User, error) {
	raw, err := s.client.Get(ctx, id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *redisStore) Save(ctx context.Context, user *model.User) error {
	return s.SaveTTL(ctx, user, 0)
}

func (s *redisStore) SaveTTL(ctx context.Context, user *model.User, ttl time.Duration) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, user.ID.String(), raw, ttl).Err()
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, id).Err()
}
