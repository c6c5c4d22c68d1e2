package task

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// ActionObserver is told the outcome of every POST.
type ActionObserver interface {
	ObserveAction(action, outcome string)
}

type Handler[T any] struct {
	svc      Actions[T]
	logger   *zap.Logger
	observer ActionObserver
}

func NewHandler[T any](svc Actions[T], logger *zap.Logger) *Handler[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler[T]{svc: svc, logger: logger.Named("http")}
}

func (h *Handler[T]) SetObserver(o ActionObserver) {
	h.observer = o
}

type listResponse[T any] struct {
	Tasks []T `json:"tasks"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func writeTasks[T any](w http.ResponseWriter, tasks []T) {
	if tasks == nil {
		tasks = []T{}
	}
	writeJSON(w, http.StatusOK, listResponse[T]{Tasks: tasks})
}

// /tasks
func (h *Handler[T]) Tasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		tasks, err := h.svc.List(r.Context())
		if err != nil {
			h.fail(w, r, "", err)
			return
		}
		writeTasks(w, tasks)

	case http.MethodPost:
		req, err := DecodeRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			h.fail(w, r, "", err)
			return
		}
		tasks, err := h.svc.Apply(r.Context(), req)
		if err != nil {
			h.fail(w, r, req.Action, err)
			return
		}
		h.observe(req.Action, "ok")
		writeTasks(w, tasks)

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler[T]) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	code, outcome := classify(err)
	if r.Method == http.MethodPost {
		h.observe(action, outcome)
	}
	if code == http.StatusInternalServerError {
		h.logger.Error("task request failed",
			zap.String("method", r.Method),
			zap.String("action", action),
			zap.Error(err),
		)
		writeErr(w, code, "internal error")
		return
	}
	writeErr(w, code, err.Error())
}

func (h *Handler[T]) observe(action, outcome string) {
	if h.observer == nil {
		return
	}
	h.observer.ObserveAction(ActionLabel(action), outcome)
}

func classify(err error) (int, string) {
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge, "bad_request"
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrUnknownAction):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "error"
	}
}
