package storage

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Observer receives one call per store operation.
type Observer interface {
	ObserveStore(op string, d time.Duration, err error)
}

// Instrumented wraps a Store with logging and an optional Observer.
type Instrumented[T any] struct {
	inner    Store[T]
	logger   *zap.Logger
	observer Observer
	slow     time.Duration
}

func NewInstrumented[T any](inner Store[T], logger *zap.Logger, observer Observer, slow time.Duration) *Instrumented[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Instrumented[T]{
		inner:    inner,
		logger:   logger.Named("storage"),
		observer: observer,
		slow:     slow,
	}
}

func (s *Instrumented[T]) Load(ctx context.Context) ([]T, error) {
	start := time.Now()
	items, err := s.inner.Load(ctx)
	s.record("load", start, len(items), err)
	return items, err
}

func (s *Instrumented[T]) Save(ctx context.Context, items []T) error {
	start := time.Now()
	err := s.inner.Save(ctx, items)
	s.record("save", start, len(items), err)
	return err
}

// Unwrap exposes the decorated store.
func (s *Instrumented[T]) Unwrap() Store[T] { return s.inner }

func (s *Instrumented[T]) record(op string, start time.Time, n int, err error) {
	d := time.Since(start)
	if s.observer != nil {
		s.observer.ObserveStore(op, d, err)
	}
	fields := []zap.Field{
		zap.String("op", op),
		zap.Int("tasks", n),
		zap.Duration("duration", d),
	}
	switch {
	case err != nil:
		s.logger.Error("store operation failed", append(fields, zap.Error(err))...)
	case s.slow > 0 && d > s.slow:
		s.logger.Warn("slow store operation", fields...)
	default:
		s.logger.Debug("store operation", fields...)
	}
}
