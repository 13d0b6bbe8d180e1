package order

import (
	"context"
	"sync"
)

// LocalDismissedStore keeps bar board dismissals in memory when Redis is off.
type LocalDismissedStore struct {
	mu  sync.RWMutex
	ids map[string]map[string]struct{}
}

func NewLocalDismissedStore() *LocalDismissedStore {
	return &LocalDismissedStore{ids: make(map[string]map[string]struct{})}
}

func (s *LocalDismissedStore) Dismiss(ctx context.Context, eventID, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ids[eventID] == nil {
		s.ids[eventID] = make(map[string]struct{})
	}
	s.ids[eventID][orderID] = struct{}{}
	return nil
}

func (s *LocalDismissedStore) Dismissed(ctx context.Context, eventID string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]struct{}, len(s.ids[eventID]))
	for id := range s.ids[eventID] {
		out[id] = struct{}{}
	}
	return out, nil
}
