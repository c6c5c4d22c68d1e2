package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Azam-Khan12/TODO-Task-Manager/internal/model"
	"github.com/Azam-Khan12/TODO-Task-Manager/internal/storage"
)

type recordedAction struct{ action, outcome string }

type actionRecorder struct{ got []recordedAction }

func (a *actionRecorder) ObserveAction(action, outcome string) {
	a.got = append(a.got, recordedAction{action, outcome})
}

func serve(h http.HandlerFunc, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/tasks", strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decodeTasks[T any](t *testing.T, rr *httptest.ResponseRecorder) []T {
	t.Helper()
	var out struct {
		Tasks []T `json:"tasks"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return out.Tasks
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var out struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return out.Error
}

func TestHandler_GetOnEmptyStore(t *testing.T) {
	h := NewHandler[model.Task](NewService(storage.NewMemoryStore[model.Task](), nil), nil)

	rr := serve(h.Tasks, http.MethodGet, "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"tasks":[]}`, rr.Body.String())
}

func TestHandler_ExtendedFlow(t *testing.T) {
	h := NewHandler[model.Task](NewService(storage.NewMemoryStore[model.Task](), nil), nil)
	add := `{"action":"add","title":"X","category":"Work","due_date":"2024-01-01","time_slot":"09:00","priority":"High"}`

	rr := serve(h.Tasks, http.MethodPost, add)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"tasks":[{"id":1,"title":"X","category":"Work","due_date":"2024-01-01","time_slot":"09:00","completed":false,"priority":"High","reminder_set":false}]}`, rr.Body.String())

	rr = serve(h.Tasks, http.MethodPost, add)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = serve(h.Tasks, http.MethodPost, `{"action":"delete","id":1}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = serve(h.Tasks, http.MethodPost, add)
	require.Equal(t, http.StatusOK, rr.Code)
	tasks := decodeTasks[model.Task](t, rr)
	require.Len(t, tasks, 2)
	assert.Equal(t, 2, tasks[0].ID)
	assert.Equal(t, 3, tasks[1].ID)

	rr = serve(h.Tasks, http.MethodGet, "")
	assert.Equal(t, tasks, decodeTasks[model.Task](t, rr))
}

func TestHandler_SimpleFlow(t *testing.T) {
	h := NewHandler[model.SimpleTask](NewSimpleService(storage.NewMemoryStore[model.SimpleTask](), nil), nil)

	rr := serve(h.Tasks, http.MethodPost, `{"action":"add","task":"Buy milk"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	tasks := decodeTasks[model.SimpleTask](t, rr)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Task)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, tasks[0].Date)

	rr = serve(h.Tasks, http.MethodPost, `{"action":"complete","index":0}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decodeTasks[model.SimpleTask](t, rr)[0].Completed)

	rr = serve(h.Tasks, http.MethodPost, `{"action":"delete","index":0}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"tasks":[]}`, rr.Body.String())
}

func TestHandler_ClientErrors(t *testing.T) {
	store := storage.NewMemoryStore(model.Task{ID: 1})
	rec := &actionRecorder{}
	h := NewHandler[model.Task](NewService(store, nil), nil)
	h.SetObserver(rec)

	cases := []struct {
		name string
		body string
		code int
	}{
		{"empty body", "", http.StatusBadRequest},
		{"not json", "add please", http.StatusBadRequest},
		{"no action", `{"id":1}`, http.StatusBadRequest},
		{"unknown action", `{"action":"archive"}`, http.StatusBadRequest},
		{"add missing fields", `{"action":"add","title":"X"}`, http.StatusBadRequest},
		{"delete without id", `{"action":"delete"}`, http.StatusBadRequest},
		{"edit unknown id", `{"action":"edit","id":99,"title":"Y"}`, http.StatusNotFound},
		{"toggle unknown id", `{"action":"toggle","id":99}`, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := serve(h.Tasks, http.MethodPost, tc.body)
			assert.Equal(t, tc.code, rr.Code, rr.Body.String())
			assert.NotEmpty(t, decodeError(t, rr))
		})
	}

	assert.Zero(t, store.Saves())
	require.Len(t, rec.got, len(cases))
	assert.Equal(t, recordedAction{"none", "bad_request"}, rec.got[0])
	assert.Equal(t, recordedAction{"unknown", "bad_request"}, rec.got[3])
	assert.Equal(t, recordedAction{"edit", "not_found"}, rec.got[6])
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := NewHandler[model.Task](NewService(storage.NewMemoryStore[model.Task](), nil), nil)

	for _, m := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		rr := serve(h.Tasks, m, "")
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code, m)
	}
}

func TestHandler_BodyTooLarge(t *testing.T) {
	h := NewHandler[model.Task](NewService(storage.NewMemoryStore[model.Task](), nil), nil)
	body := `{"action":"add","title":"` + strings.Repeat("x", maxBodyBytes) + `"}`

	rr := serve(h.Tasks, http.MethodPost, body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

type erroringStore struct{ err error }

func (e erroringStore) Load(context.Context) ([]model.Task, error) { return nil, e.err }
func (e erroringStore) Save(context.Context, []model.Task) error { return e.err }

func TestHandler_StorageFailureIsInternalError(t *testing.T) {
	cause := fmt.Errorf("%w: tasks.json: unexpected end of JSON input", storage.ErrMalformed)
	core, logs := observer.New(zap.ErrorLevel)
	h := NewHandler[model.Task](NewService(erroringStore{err: cause}, nil), zap.New(core))

	rr := serve(h.Tasks, http.MethodGet, "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal error", decodeError(t, rr))

	rr = serve(h.Tasks, http.MethodPost, `{"action":"delete","id":1}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	require.Equal(t, 2, logs.Len())
	entry := logs.All()[1]
	assert.Equal(t, "task request failed", entry.Message)
	assert.Equal(t, "delete", entry.ContextMap()["action"])
	assert.True(t, errors.Is(cause, storage.ErrMalformed))
}

func TestHandler_ActionLabelsStayBounded(t *testing.T) {
	rec := &actionRecorder{}
	h := NewHandler[model.Task](NewService(storage.NewMemoryStore[model.Task](), nil), nil)
	h.SetObserver(rec)

	for _, body := range []string{`{"action":"x1"}`, `{"action":"zz-junk"}`, `{"action":"ADD"}`} {
		rr := serve(h.Tasks, http.MethodPost, body)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	}

	for _, got := range rec.got {
		assert.Equal(t, recordedAction{"unknown", "bad_request"}, got)
	}
	assert.Len(t, rec.got, 3)
}

func TestActionLabel(t *testing.T) {
	cases := map[string]string{
		"":         "none",
		"add":      "add",
		"complete": "complete",
		"reorder":  "reorder",
		"Add":      "unknown",
		" add ":    "unknown",
		"archive":  "unknown",
	}
	for in, want := range cases {
		assert.Equal(t, want, ActionLabel(in), "action %q", in)
	}
}
