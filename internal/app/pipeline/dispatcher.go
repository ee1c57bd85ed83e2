package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrDispatcherClosed is returned by Submit after Shutdown started.
	ErrDispatcherClosed = errors.New("dispatcher is shut down")
	// ErrAlreadyQueued is returned by SubmitUnique while a task with the same
	// key is waiting or running.
	ErrAlreadyQueued = errors.New("task already queued")
)

// Dispatcher runs background tasks with bounded concurrency. Tasks are
// detached from the submitting request's cancellation but keep its values.
type Dispatcher struct {
	sem    chan struct{}
	wg     sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	keysMu   sync.Mutex
	inflight map[string]struct{}
	stop   context.CancelFunc
	base   context.Context
	logger *zap.Logger
}

// NewDispatcher creates a dispatcher running at most concurrency tasks at once.
func NewDispatcher(concurrency int, logger *zap.Logger) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	base, stop := context.WithCancel(context.Background())
	return &Dispatcher{
		sem:      make(chan struct{}, concurrency),
		inflight: make(map[string]struct{}),
		base:     base,
		stop:     stop,
		logger:   logger.Named("dispatcher"),
	}
}

// Submit schedules fn. It never blocks on a free worker slot.
func (d *Dispatcher) Submit(ctx context.Context, name string, fn func(ctx context.Context)) error {
	return d.submit(ctx, "", name, fn)
}

// SubmitUnique is Submit with at most one queued or running task per key.
func (d *Dispatcher) SubmitUnique(ctx context.Context, key, name string, fn func(ctx context.Context)) error {
	return d.submit(ctx, key, name, fn)
}

// Queued reports whether a task with key is waiting or running.
func (d *Dispatcher) Queued(key string) bool {
	d.keysMu.Lock()
	defer d.keysMu.Unlock()
	_, ok := d.inflight[key]
	return ok
}

func (d *Dispatcher) submit(ctx context.Context, key, name string, fn func(ctx context.Context)) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	if key != "" {
		d.keysMu.Lock()
		if _, ok := d.inflight[key]; ok {
			d.keysMu.Unlock()
			return ErrAlreadyQueued
		}
		d.inflight[key] = struct{}{}
		d.keysMu.Unlock()
	}

	taskCtx, cancel := mergeCancel(context.WithoutCancel(ctx), d.base)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()
		if key != "" {
			defer func() {
				d.keysMu.Lock()
				delete(d.inflight, key)
				d.keysMu.Unlock()
			}()
		}

		select {
		case d.sem <- struct{}{}:
		case <-taskCtx.Done():
			d.logger.Warn("task dropped before start", zap.String("task", name))
			return
		}
		defer func() { <-d.sem }()

		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("task panicked",
					zap.String("task", name),
					zap.String("panic", fmt.Sprint(r)),
					zap.ByteString("stack", debug.Stack()),
				)
			}
		}()
		fn(taskCtx)
	}()
	return nil
}

// Wait blocks until every submitted task has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Shutdown stops accepting tasks and waits for running ones. When ctx ends
// first, running tasks are cancelled and Shutdown returns ctx.Err().
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.stop()
		return nil
	case <-ctx.Done():
		d.stop()
		<-done
		return ctx.Err()
	}
}

// mergeCancel returns a context carrying parent's values that is cancelled
// when stop is done.
func mergeCancel(parent, stop context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	unregister := context.AfterFunc(stop, cancel)
	return ctx, func() {
		unregister()
		cancel()
	}
}
