package event

import (
	"context"
	"strconv"
	"sync/atomic"
)

// LocalLock is the single-process stand-in for the Redis create lock.
type LocalLock struct {
	sem  chan struct{}
	seq  atomic.Int64
	held atomic.Value
}

func NewLocalLock() *LocalLock {
	return &LocalLock{sem: make(chan struct{}, 1)}
}

func (l *LocalLock) Acquire(ctx context.Context) (string, bool, error) {
	select {
	case l.sem <- struct{}{}:
		token := strconv.FormatInt(l.seq.Add(1), 10)
		l.held.Store(token)
		return token, true, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	default:
		return "", false, nil
	}
}

func (l *LocalLock) Release(ctx context.Context, token string) error {
	if held, _ := l.held.Load().(string); held != token {
		return nil
	}
	l.held.Store("")
	select {
	case <-l.sem:
	default:
	}
	return nil
}
