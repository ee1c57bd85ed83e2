package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is a per-process sliding-window log. It backs single-node
// deployments and tests; multi-node deployments use RedisLimiter.
type MemoryLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	windows sync.Map // map[string]*eventLog
	stop    chan struct{}
	once    sync.Once
}

type eventLog struct {
	mu     sync.Mutex
	events []time.Time
}

// NewMemoryLimiter allows limit events per window and prunes idle keys.
// Call Stop() on shutdown.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		stop:   make(chan struct{}),
	}
	go l.cleanup(window)
	return l
}

// Stop terminates the background cleanup goroutine.
func (l *MemoryLimiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

// Check records an event for key if the window has room.
func (l *MemoryLimiter) Check(_ context.Context, key string) (Decision, error) {
	val, _ := l.windows.LoadOrStore(key, &eventLog{})
	log := val.(*eventLog)

	log.mu.Lock()
	defer log.mu.Unlock()

	now := l.now()
	log.prune(now.Add(-l.window))

	if len(log.events) >= l.limit {
		return Decision{
			Allowed:   false,
			Remaining: 0,
			ResetAt:   log.events[0].Add(l.window),
		}, nil
	}

	log.events = append(log.events, now)
	return Decision{
		Allowed:   true,
		Remaining: l.limit - len(log.events),
		ResetAt:   log.events[0].Add(l.window),
	}, nil
}

func (e *eventLog) prune(cutoff time.Time) {
	i := 0
	for i < len(e.events) && !e.events[i].After(cutoff) {
		i++
	}
	e.events = e.events[i:]
}

func (l *MemoryLimiter) cleanup(interval time.Duration) {
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			cutoff := l.now().Add(-l.window)
			l.windows.Range(func(key, value any) bool {
				log := value.(*eventLog)
				log.mu.Lock()
				log.prune(cutoff)
				empty := len(log.events) == 0
				log.mu.Unlock()
				if empty {
					l.windows.Delete(key)
				}
				return true
			})
		}
	}
}
