package task

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Azam-Khan12/TODO-Task-Manager/internal/model"
	"github.com/Azam-Khan12/TODO-Task-Manager/internal/storage"
)

// Actions is what the HTTP handler needs from a task service.
type Actions[T any] interface {
	List(ctx context.Context) ([]T, error)
	Apply(ctx context.Context, req Request) ([]T, error)
}

// NewTask carries the fields a client supplies on add.
type NewTask struct {
	Title       *string `json:"title" validate:"required"`
	Category    *string `json:"category" validate:"required"`
	DueDate     *string `json:"due_date" validate:"required"`
	TimeSlot    *string `json:"time_slot" validate:"required"`
	Priority    *string `json:"priority" validate:"required"`
	ReminderSet bool    `json:"reminder_set"`
}

type editPayload struct {
	ID *int `json:"id" validate:"required"`
	model.Patch
}

type idPayload struct {
	ID *int `json:"id" validate:"required"`
}

type reorderPayload struct {
	Tasks *json.RawMessage `json:"tasks" validate:"required"`
}

type mutation[T any] func(ctx context.Context, items []T) ([]T, error)

// guard serializes load-mutate-save cycles. The mutex covers this process;
// the optional Locker extends it to other processes sharing the store.
type guard struct {
	mu     sync.Mutex
	locker storage.Locker
}

func (g *guard) run(ctx context.Context, fn func() error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.locker != nil {
		unlock, err := g.locker.Lock(ctx)
		if err != nil {
			return err
		}
		defer unlock()
	}
	return fn()
}

func mutate[T any](ctx context.Context, g *guard, store storage.Store[T], fn mutation[T]) ([]T, error) {
	var out []T
	err := g.run(ctx, func() error {
		items, err := store.Load(ctx)
		if err != nil {
			return err
		}
		items, err = fn(ctx, items)
		if err != nil {
			return err
		}
		if items == nil {
			items = []T{}
		}
		if err := store.Save(ctx, items); err != nil {
			return err
		}
		out = items
		return nil
	})
	return out, err
}

func list[T any](ctx context.Context, g *guard, store storage.Store[T]) ([]T, error) {
	var out []T
	err := g.run(ctx, func() error {
		items, err := store.Load(ctx)
		out = items
		return err
	})
	return out, err
}

type Option func(*options)

type options struct {
	locker storage.Locker
	logger *zap.Logger
}

// WithLocker adds a cross-process lock around every load-mutate-save.
func WithLocker(l storage.Locker) Option {
	return func(o *options) { o.locker = l }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// Service manages id-addressed tasks.
type Service struct {
	g      guard
	store  storage.Store[model.Task]
	seq    storage.Sequence
	logger *zap.Logger
}

func NewService(store storage.Store[model.Task], seq storage.Sequence, opts ...Option) *Service {
	o := buildOptions(opts)
	if seq == nil {
		seq = storage.NewMemorySequence()
	}
	return &Service{
		g:      guard{locker: o.locker},
		store:  store,
		seq:    seq,
		logger: o.logger.Named("tasks"),
	}
}

func (s *Service) List(ctx context.Context) ([]model.Task, error) {
	return list(ctx, &s.g, s.store)
}

// Add appends a task with a fresh id. Ids never repeat, even after deletes.
func (s *Service) Add(ctx context.Context, in NewTask) ([]model.Task, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return mutate(ctx, &s.g, s.store, func(ctx context.Context, tasks []model.Task) ([]model.Task, error) {
		id, err := s.seq.Next(ctx, model.MaxID(tasks))
		if err != nil {
			return nil, err
		}
		t := model.Task{
			ID:          id,
			Title:       *in.Title,
			Category:    *in.Category,
			DueDate:     *in.DueDate,
			TimeSlot:    *in.TimeSlot,
			Priority:    *in.Priority,
			ReminderSet: in.ReminderSet,
		}
		s.logger.Debug("task added", zap.Int("id", id))
		return append(tasks, t), nil
	})
}

// Edit merges p into the first task with the given id.
func (s *Service) Edit(ctx context.Context, id int, p model.Patch) ([]model.Task, error) {
	return mutate(ctx, &s.g, s.store, func(_ context.Context, tasks []model.Task) ([]model.Task, error) {
		i := model.IndexOf(tasks, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		p.ApplyTo(&tasks[i])
		return tasks, nil
	})
}

// Delete removes tasks with the given id. An unknown id is not an error.
func (s *Service) Delete(ctx context.Context, id int) ([]model.Task, error) {
	return mutate(ctx, &s.g, s.store, func(_ context.Context, tasks []model.Task) ([]model.Task, error) {
		out, n := model.RemoveID(tasks, id)
		if n == 0 {
			s.logger.Debug("delete of unknown task", zap.Int("id", id))
		}
		return out, nil
	})
}

func (s *Service) Toggle(ctx context.Context, id int) ([]model.Task, error) {
	return mutate(ctx, &s.g, s.store, func(_ context.Context, tasks []model.Task) ([]model.Task, error) {
		i := model.IndexOf(tasks, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		tasks[i].Completed = !tasks[i].Completed
		return tasks, nil
	})
}

// Replace swaps the whole collection for tasks, as given.
func (s *Service) Replace(ctx context.Context, tasks []model.Task) ([]model.Task, error) {
	return mutate(ctx, &s.g, s.store, func(_ context.Context, _ []model.Task) ([]model.Task, error) {
		return append([]model.Task{}, tasks...), nil
	})
}

// Reorder moves the listed ids to the front in the listed order.
func (s *Service) Reorder(ctx context.Context, ids []int) ([]model.Task, error) {
	return mutate(ctx, &s.g, s.store, func(_ context.Context, tasks []model.Task) ([]model.Task, error) {
		return model.OrderByIDs(tasks, ids), nil
	})
}

func (s *Service) Apply(ctx context.Context, req Request) ([]model.Task, error) {
	switch req.Action {
	case ActionAdd:
		var in NewTask
		if err := decodePayload(req.Body, &in); err != nil {
			return nil, err
		}
		return s.Add(ctx, in)

	case ActionEdit:
		var in editPayload
		if err := decodePayload(req.Body, &in); err != nil {
			return nil, err
		}
		return s.Edit(ctx, *in.ID, in.Patch)

	case ActionDelete:
		var in idPayload
		if err := decodePayload(req.Body, &in); err != nil {
			return nil, err
		}
		return s.Delete(ctx, *in.ID)

	case ActionToggle, ActionComplete:
		var in idPayload
		if err := decodePayload(req.Body, &in); err != nil {
			return nil, err
		}
		return s.Toggle(ctx, *in.ID)

	case ActionReorder:
		var in reorderPayload
		if err := decodePayload(req.Body, &in); err != nil {
			return nil, err
		}
		return s.reorder(ctx, *in.Tasks)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
}

// reorder accepts either full task objects (replace verbatim) or bare ids
// (what the browser client sends after a drag and drop).
func (s *Service) reorder(ctx context.Context, raw json.RawMessage) ([]model.Task, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("%w: tasks must be an array: %v", ErrBadRequest, err)
	}
	if len(elems) > 0 && isNumber(elems[0]) {
		var ids []int
		if err := json.Unmarshal(raw, &ids); err != nil {
			return nil, fmt.Errorf("%w: tasks: %v", ErrBadRequest, err)
		}
		return s.Reorder(ctx, ids)
	}
	var tasks []model.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, fmt.Errorf("%w: tasks: %v", ErrBadRequest, err)
	}
	return s.Replace(ctx, tasks)
}

func isNumber(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && (b[0] == '-' || (b[0] >= '0' && b[0] <= '9'))
}
