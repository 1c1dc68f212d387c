package credstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/goliatone/go-errors"
	session "github.com/jobconnect/go-session"
	"github.com/redis/go-redis/v9"
)

// Redis persists the session record in Redis so it survives process
// restarts and can be shared across instances.
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

var _ Store = (*Redis)(nil)

// RedisOption configures the Redis store.
type RedisOption func(*Redis)

// WithKey overrides the storage key.
func WithKey(key string) RedisOption {
	return func(r *Redis) {
		if key != "" {
			r.key = key
		}
	}
}

// WithTTL bounds how long a record survives without a fresh sign-in.
// Zero means no expiry.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		r.ttl = ttl
	}
}

// NewRedis creates a Redis-backed store.
func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	store := &Redis{
		client: client,
		key:    DefaultKey,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store
}

func (r *Redis) Load(ctx context.Context) (*session.SessionObject, error) {
	payload, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryOperation, "loading session record")
	}

	record := &session.SessionObject{}
	if err := json.Unmarshal(payload, record); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "decoding session record")
	}

	if !record.Valid() {
		return nil, ErrNotFound
	}

	return record, nil
}

func (r *Redis) Save(ctx context.Context, sess *session.SessionObject) error {
	if sess == nil || !sess.Valid() {
		return ErrInvalidRecord
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "encoding session record")
	}

	if err := r.client.Set(ctx, r.key, payload, r.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "saving session record")
	}

	return nil
}

func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "clearing session record")
	}
	return nil
}
