package lock

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/synchub/synchub/pkg/log"
)

// Redis holds redis client configuration.
type Redis struct {
	Address      string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func NewRedis(cfg Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout * time.Second,
		ReadTimeout:  cfg.ReadTimeout * time.Second,
		WriteTimeout: cfg.WriteTimeout * time.Second,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

// Locker provides advisory locks so two overlapping invocations of the
// same batch pass never process the same rows twice.
type Locker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewLocker(client *redis.Client, prefix string, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Locker{client: client, prefix: prefix, ttl: ttl}
}

// TryAcquire attempts to take the named lock. It returns false when the lock
// is already held by another pass.
func (l *Locker) TryAcquire(ctx context.Context, name string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(name), time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Release frees the named lock.
func (l *Locker) Release(ctx context.Context, name string) {
	if err := l.client.Del(ctx, l.key(name)).Err(); err != nil {
		log.Errorw("failed to release lock", "name", name, "error", err)
	}
}

func (l *Locker) key(name string) string {
	return l.prefix + ":lock:" + name
}
