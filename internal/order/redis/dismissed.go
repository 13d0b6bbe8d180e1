package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// DismissedStore remembers which orders were cleared from the bar board.
// Dismissal is a view concern; the orders themselves are untouched.
type DismissedStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewDismissedStore(client *redis.Client, ttl time.Duration) *DismissedStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DismissedStore{Client: client, TTL: ttl}
}

func dismissedKey(eventID string) string {
	return "kitchen_dismissed:" + eventID
}

func (s *DismissedStore) Dismiss(ctx context.Context, eventID, orderID string) error {
	key := dismissedKey(eventID)
	pipe := s.Client.TxPipeline()
	pipe.SAdd(ctx, key, orderID)
	pipe.Expire(ctx, key, s.TTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *DismissedStore) Dismissed(ctx context.Context, eventID string) (map[string]struct{}, error) {
	ids, err := s.Client.SMembers(ctx, dismissedKey(eventID)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}
