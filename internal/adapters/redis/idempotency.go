package redis

import (
	"context"
	"time"
)

const (
	idempPrefix     = "idemp:resp:"
	idempLockPrefix = "idemp:lock:"
)

// Idempotency keeps replayable responses and in-flight markers on top of
// the shared cache.
type Idempotency struct {
	cache *Cache
}

func NewIdempotency(cache *Cache) *Idempotency {
	return &Idempotency{cache: cache}
}

// IdempResponse is a replayable HTTP response.
type IdempResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Get returns nil, nil when nothing was stored under key.
func (i *Idempotency) Get(ctx context.Context, key string) (*IdempResponse, error) {
	var resp IdempResponse
	found, err := i.cache.GetJSON(ctx, idempPrefix+key, &resp)
	if err != nil || !found {
		return nil, err
	}
	return &resp, nil
}

func (i *Idempotency) Set(ctx context.Context, key string, resp IdempResponse, ttl time.Duration) error {
	return i.cache.SetJSON(ctx, idempPrefix+key, resp, ttl)
}

// Lock reports false when another request already holds key.
func (i *Idempotency) Lock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return i.cache.Client().SetNX(ctx, idempLockPrefix+key, 1, ttl).Result()
}

func (i *Idempotency) Unlock(ctx context.Context, key string) error {
	return i.cache.Delete(ctx, idempLockPrefix+key)
}
