package session

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"minisocial/internal/social"
)

const keyPrefix = "session:"

// RedisStore keeps sessions in Redis so that several app processes share them.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to addr, either host:port or a redis:// URL.
// A zero ttl keeps sessions until logout.
func NewRedisStore(addr string, ttl time.Duration) (*RedisStore, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}
	return NewRedisStoreFromClient(redis.NewClient(opts), ttl), nil
}

func NewRedisStoreFromClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Ping checks connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.storeErr("ping", r.client.Ping(ctx).Err())
}

func (r *RedisStore) Create(ctx context.Context, userID int64) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	if err := r.client.Set(ctx, keyPrefix+token, userID, r.ttl).Err(); err != nil {
		return "", r.storeErr("create session", err)
	}
	return token, nil
}

func (r *RedisStore) Lookup(ctx context.Context, token string) (int64, bool, error) {
	val, err := r.client.Get(ctx, keyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, r.storeErr("lookup session", err)
	}
	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, r.storeErr("lookup session", err)
	}
	return userID, true, nil
}

func (r *RedisStore) Delete(ctx context.Context, token string) error {
	return r.storeErr("delete session", r.client.Del(ctx, keyPrefix+token).Err())
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &social.StoreError{Op: op, Err: err}
}
