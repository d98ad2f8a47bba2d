package ratelimit

import (
	"context"
	"sync"
	"time"
)

// HostLimiter allows at most one in-flight request per host and enforces a
// minimum delay between consecutive requests to the same host. The sweep
// worker pool may run several hosts in parallel, but a single site never
// sees concurrent requests from us.
type HostLimiter struct {
	minDelay time.Duration

	mu    sync.Mutex
	hosts map[string]*hostState
}

type hostState struct {
	slot     chan struct{}
	lastDone time.Time
}

func NewHostLimiter(minDelay time.Duration) *HostLimiter {
	return &HostLimiter{
		minDelay: minDelay,
		hosts:    make(map[string]*hostState),
	}
}

// Acquire blocks until the host's single slot is free and the minimum
// inter-request delay has elapsed, or the context is cancelled.
func (l *HostLimiter) Acquire(ctx context.Context, host string) error {
	state := l.state(host)

	select {
	case state.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	l.mu.Lock()
	wait := l.minDelay - time.Since(state.lastDone)
	l.mu.Unlock()

	if wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			<-state.slot
			return ctx.Err()
		}
	}
	return nil
}

// Release frees the host's slot and records the request completion time.
func (l *HostLimiter) Release(host string) {
	state := l.state(host)

	l.mu.Lock()
	state.lastDone = time.Now()
	l.mu.Unlock()

	select {
	case <-state.slot:
	default:
	}
}

func (l *HostLimiter) state(host string) *hostState {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.hosts[host]
	if !ok {
		state = &hostState{slot: make(chan struct{}, 1)}
		l.hosts[host] = state
	}
	return state
}
