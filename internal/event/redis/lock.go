package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const createLockKey = "event_lock:create"

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// CreateLock serializes "create the active event" across service instances.
type CreateLock struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewCreateLock(client *redis.Client, ttl time.Duration) *CreateLock {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &CreateLock{Client: client, TTL: ttl}
}

// Acquire tries once; the returned token must be handed back to Release.
func (l *CreateLock) Acquire(ctx context.Context) (string, bool, error) {
	token := uuid.New().String()
	ok, err := l.Client.SetNX(ctx, createLockKey, token, l.TTL).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

// Release deletes the lock only if token still owns it.
func (l *CreateLock) Release(ctx context.Context, token string) error {
	return releaseScript.Run(ctx, l.Client, []string{createLockKey}, token).Err()
}
