package task

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Azam-Khan12/TODO-Task-Manager/internal/clock"
	"github.com/Azam-Khan12/TODO-Task-Manager/internal/model"
	"github.com/Azam-Khan12/TODO-Task-Manager/internal/storage"
)

type simpleAddPayload struct {
	Task *string `json:"task" validate:"required"`
}

type indexPayload struct {
	Index *int `json:"index" validate:"required"`
}

// SimpleService manages positional tasks. Indexes out of range are ignored,
// but the collection is still saved and returned.
type SimpleService struct {
	g      guard
	store  storage.Store[model.SimpleTask]
	clock  clock.Clock
	logger *zap.Logger
}

func NewSimpleService(store storage.Store[model.SimpleTask], clk clock.Clock, opts ...Option) *SimpleService {
	o := buildOptions(opts)
	if clk == nil {
		clk = clock.System{}
	}
	return &SimpleService{
		g:      guard{locker: o.locker},
		store:  store,
		clock:  clk,
		logger: o.logger.Named("tasks"),
	}
}

func (s *SimpleService) List(ctx context.Context) ([]model.SimpleTask, error) {
	return list(ctx, &s.g, s.store)
}

// Add appends text stamped with today's local date.
func (s *SimpleService) Add(ctx context.Context, text string) ([]model.SimpleTask, error) {
	return mutate(ctx, &s.g, s.store, func(_ context.Context, tasks []model.SimpleTask) ([]model.SimpleTask, error) {
		return append(tasks, model.SimpleTask{
			Task: text,
			Date: clock.Date(s.clock, model.DateLayout),
		}), nil
	})
}

func (s *SimpleService) Toggle(ctx context.Context, idx int) ([]model.SimpleTask, error) {
	return mutate(ctx, &s.g, s.store, func(_ context.Context, tasks []model.SimpleTask) ([]model.SimpleTask, error) {
		if !model.InRange(idx, len(tasks)) {
			s.logger.Debug("toggle index out of range", zap.Int("index", idx), zap.Int("tasks", len(tasks)))
			return tasks, nil
		}
		tasks[idx].Completed = !tasks[idx].Completed
		return tasks, nil
	})
}

func (s *SimpleService) Delete(ctx context.Context, idx int) ([]model.SimpleTask, error) {
	return mutate(ctx, &s.g, s.store, func(_ context.Context, tasks []model.SimpleTask) ([]model.SimpleTask, error) {
		if !model.InRange(idx, len(tasks)) {
			s.logger.Debug("delete index out of range", zap.Int("index", idx), zap.Int("tasks", len(tasks)))
			return tasks, nil
		}
		return append(tasks[:idx], tasks[idx+1:]...), nil
	})
}

func (s *SimpleService) Apply(ctx context.Context, req Request) ([]model.SimpleTask, error) {
	switch req.Action {
	case ActionAdd:
		var in simpleAddPayload
		if err := decodePayload(req.Body, &in); err != nil {
			return nil, err
		}
		return s.Add(ctx, *in.Task)

	case ActionComplete, ActionToggle:
		var in indexPayload
		if err := decodePayload(req.Body, &in); err != nil {
			return nil, err
		}
		return s.Toggle(ctx, *in.Index)

	case ActionDelete:
		var in indexPayload
		if err := decodePayload(req.Body, &in); err != nil {
			return nil, err
		}
		return s.Delete(ctx, *in.Index)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
}
