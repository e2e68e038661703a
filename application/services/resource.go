package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	pkgerrors "braingraph/pkg/errors"
)

// ResourceState is the lifecycle of one fetched value
type ResourceState string

const (
	StateIdle    ResourceState = "idle"
	StateLoading ResourceState = "loading"
	StateSuccess ResourceState = "success"
	StateError   ResourceState = "error"
)

// Snapshot is a point-in-time view of a Resource
type Snapshot[T any] struct {
	State ResourceState
	Data  T
	Err   error
}

// Resource wraps a loader with an observable state and a retry action.
// Cancellation is not a failure: a cancelled load restores the previous state.
type Resource[T any] struct {
	name   string
	logger *zap.Logger

	mu      sync.Mutex
	state   ResourceState
	data    T
	err     error
	loader  func(ctx context.Context) (T, error)
	version uint64
}

// NewResource creates an idle resource
func NewResource[T any](name string, logger *zap.Logger) *Resource[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resource[T]{name: name, logger: logger, state: StateIdle}
}

// Load runs loader and records its outcome. It never panics outward: a
// panicking loader is reported as an internal error.
func (r *Resource[T]) Load(ctx context.Context, loader func(ctx context.Context) (T, error)) Snapshot[T] {
	r.mu.Lock()
	r.loader = loader
	r.version++
	version := r.version
	prevState, prevErr := r.state, r.err
	r.state = StateLoading
	r.mu.Unlock()

	data, err := r.invoke(ctx, loader)

	r.mu.Lock()
	defer r.mu.Unlock()

	if version != r.version {
		// a newer load owns the state
		return r.snapshotLocked()
	}

	switch {
	case pkgerrors.IsCancelled(err):
		r.state, r.err = prevState, prevErr
	case err != nil:
		r.state, r.err = StateError, err
		r.logger.Warn("resource load failed",
			zap.String("resource", r.name),
			zap.Bool("retryable", pkgerrors.IsRetryable(err)),
			zap.Error(err),
		)
	default:
		r.state, r.data, r.err = StateSuccess, data, nil
	}
	return r.snapshotLocked()
}

// Retry reruns the last loader
func (r *Resource[T]) Retry(ctx context.Context) Snapshot[T] {
	r.mu.Lock()
	loader := r.loader
	r.mu.Unlock()
	if loader == nil {
		return r.Snapshot()
	}
	return r.Load(ctx, loader)
}

// Snapshot returns the current state
func (r *Resource[T]) Snapshot() Snapshot[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Reset returns the resource to idle and forgets its loader
func (r *Resource[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	r.state, r.data, r.err, r.loader = StateIdle, zero, nil, nil
	r.version++
}

func (r *Resource[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{State: r.state, Data: r.data, Err: r.err}
}

func (r *Resource[T]) invoke(ctx context.Context, loader func(ctx context.Context) (T, error)) (data T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("resource loader panicked", zap.String("resource", r.name), zap.Any("panic", rec))
			err = pkgerrors.NewInternalError("loader panicked")
		}
	}()
	return loader(ctx)
}
