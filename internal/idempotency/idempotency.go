// Package idempotency replays responses of retried creation requests.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	redisadapter "github.com/adhilsalahh/package-booking/internal/adapters/redis"
	"github.com/cockroachdb/errors"
)

// ErrInFlight is returned when the same key is still being processed.
var ErrInFlight = errors.New("request with this idempotency key is in progress")

const lockTTL = 30 * time.Second

type Store interface {
	Get(ctx context.Context, key string) (*redisadapter.IdempResponse, error)
	Set(ctx context.Context, key string, resp redisadapter.IdempResponse, ttl time.Duration) error
	Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

type Idempotency struct {
	store Store
	ttl   time.Duration
}

func NewIdempotency(store Store, ttl time.Duration) *Idempotency {
	return &Idempotency{store: store, ttl: ttl}
}

type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Key scopes a client key to the caller and the route, so two users
// reusing the same key never see each other's responses.
func Key(subject, method, path, clientKey string) string {
	sum := sha256.Sum256([]byte(subject + "\x00" + method + "\x00" + path + "\x00" + clientKey))
	return hex.EncodeToString(sum[:])
}

func (i *Idempotency) Get(ctx context.Context, key string) (*Response, error) {
	stored, err := i.store.Get(ctx, key)
	if err != nil || stored == nil {
		return nil, err
	}
	return &Response{Status: stored.Status, ContentType: stored.ContentType, Body: stored.Body}, nil
}

// Begin claims key for the caller. The returned release func must be
// called once the response is known.
func (i *Idempotency) Begin(ctx context.Context, key string) (func(), error) {
	ok, err := i.store.Lock(ctx, key, lockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInFlight
	}
	return func() { _ = i.store.Unlock(context.WithoutCancel(ctx), key) }, nil
}

// Final reports whether a response with status settles the request for
// good. Conflicts, rate limits and server errors may succeed on retry.
func Final(status int) bool {
	switch {
	case status >= 200 && status < 300:
		return true
	case status == http.StatusBadRequest, status == http.StatusForbidden, status == http.StatusNotFound:
		return true
	}
	return false
}

// Set stores a final response for replay. Other responses are dropped so
// the client can retry with the same key.
func (i *Idempotency) Set(ctx context.Context, key string, resp Response) error {
	if !Final(resp.Status) {
		return nil
	}
	return i.store.Set(ctx, key, redisadapter.IdempResponse{
		Status:      resp.Status,
		ContentType: resp.ContentType,
		Body:        resp.Body,
	}, i.ttl)
}
