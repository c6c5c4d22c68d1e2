package serverapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Azam-Khan12/TODO-Task-Manager/internal/clock"
	"github.com/Azam-Khan12/TODO-Task-Manager/internal/config"
	"github.com/Azam-Khan12/TODO-Task-Manager/internal/httpmw"
	"github.com/Azam-Khan12/TODO-Task-Manager/internal/metrics"
	"github.com/Azam-Khan12/TODO-Task-Manager/internal/model"
	"github.com/Azam-Khan12/TODO-Task-Manager/internal/storage"
	"github.com/Azam-Khan12/TODO-Task-Manager/internal/task"
	"github.com/Azam-Khan12/TODO-Task-Manager/internal/ui"
	staticfiles "github.com/Azam-Khan12/TODO-Task-Manager/static"
)

const serviceName = "todo"

type Options struct {
	Config        *config.Config
	StaticDir     string
	UseDiskStatic bool
	Logger        *zap.Logger
	Metrics       *metrics.Collector

	// Stores override the configured storage driver. Only the one matching
	// tasks.schema is used.
	ExtendedStore storage.Store[model.Task]
	SimpleStore   storage.Store[model.SimpleTask]
	Sequence      storage.Sequence
	Clock         clock.Clock
}

// App is the assembled HTTP surface plus whatever storage it opened.
type App struct {
	Handler http.Handler
	closers []io.Closer
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// NewHandler builds the handler for callers that don't own storage lifetimes.
func NewHandler(opts Options) (http.Handler, error) {
	app, err := New(context.Background(), opts)
	if err != nil {
		return nil, err
	}
	return app.Handler, nil
}

func New(ctx context.Context, opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if strings.TrimSpace(opts.StaticDir) == "" {
		opts.StaticDir = "static"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewCollector(serviceName)
	}
	cfg := opts.Config
	app := &App{}

	tasks, ready, err := buildTasks(ctx, opts, app)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(httpmw.WithMetrics(opts.Metrics))
	if len(cfg.Server.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", httpmw.HeaderRequestID},
			ExposedHeaders: []string{httpmw.HeaderRequestID},
			MaxAge:         300,
		}))
	}

	staticHandler := http.FileServer(http.FS(staticfiles.EmbeddedFS()))
	if opts.UseDiskStatic {
		staticHandler = http.FileServer(http.Dir(opts.StaticDir))
	}
	r.Handle("/static/*", http.StripPrefix("/static/", staticHandler))
	r.Get("/sw.js", serveWorker(opts))

	r.Get("/", templ.Handler(ui.HomePage(ui.PageData{
		Title:  cfg.UI.Title,
		Schema: cfg.Tasks.Schema,
	})).ServeHTTP)
	r.HandleFunc("/tasks", tasks)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": serviceName,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := ready(r.Context()); err != nil {
			opts.Logger.Warn("readiness check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "task storage unavailable",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": serviceName,
			"schema":  cfg.Tasks.Schema,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})
	r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())

	// WithRequestID runs first so the access log sees the id.
	app.Handler = httpmw.Chain(
		r,
		httpmw.WithRequestID,
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithRecover(opts.Logger, "/tasks"),
	)
	return app, nil
}

// buildTasks wires the service for the configured schema and returns its
// /tasks handler plus a readiness probe that loads the collection.
func buildTasks(ctx context.Context, opts Options, app *App) (http.HandlerFunc, func(context.Context) error, error) {
	cfg := opts.Config
	var svcOpts []task.Option
	svcOpts = append(svcOpts, task.WithLogger(opts.Logger))
	if cfg.Storage.ProcessLock && cfg.Storage.Driver == config.DriverFile {
		svcOpts = append(svcOpts, task.WithLocker(storage.NewFileLock(cfg.Storage.Path)))
	}

	switch cfg.Tasks.Schema {
	case config.SchemaSimple:
		store := opts.SimpleStore
		if store == nil {
			s, _, err := openStore[model.SimpleTask](ctx, cfg.Storage, app)
			if err != nil {
				return nil, nil, err
			}
			store = s
		}
		store = instrument(store, opts)
		svc := task.NewSimpleService(store, opts.Clock, svcOpts...)
		h := task.NewHandler[model.SimpleTask](svc, opts.Logger)
		h.SetObserver(opts.Metrics)
		return h.Tasks, probe(store), nil

	case config.SchemaExtended:
		store, seq := opts.ExtendedStore, opts.Sequence
		if store == nil {
			s, q, err := openStore[model.Task](ctx, cfg.Storage, app)
			if err != nil {
				return nil, nil, err
			}
			store = s
			if seq == nil {
				seq = q
			}
		}
		store = instrument(store, opts)
		svc := task.NewService(store, seq, svcOpts...)
		h := task.NewHandler[model.Task](svc, opts.Logger)
		h.SetObserver(opts.Metrics)
		return h.Tasks, probe(store), nil

	default:
		return nil, nil, fmt.Errorf("unknown task schema %q", cfg.Tasks.Schema)
	}
}

func openStore[T any](ctx context.Context, sc config.StorageConfig, app *App) (storage.Store[T], storage.Sequence, error) {
	switch sc.Driver {
	case config.DriverFile:
		store := storage.NewFileStore[T](nil, sc.Path, storage.WithAtomicWrites(sc.AtomicWrites))
		return store, storage.NewFileSequence(nil, storage.SequencePath(sc.Path)), nil
	case config.DriverSQLite:
		store, err := storage.OpenSQLite[T](ctx, sc.Path, "tasks")
		if err != nil {
			return nil, nil, err
		}
		app.closers = append(app.closers, store)
		return store, store.Sequence(), nil
	case config.DriverMemory:
		return storage.NewMemoryStore[T](), storage.NewMemorySequence(), nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", sc.Driver)
	}
}

func instrument[T any](store storage.Store[T], opts Options) storage.Store[T] {
	return storage.NewInstrumented(store, opts.Logger, opts.Metrics, opts.Config.Storage.SlowThreshold)
}

func probe[T any](store storage.Store[T]) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := store.Load(ctx)
		return err
	}
}

func serveWorker(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		w.Header().Set("Service-Worker-Allowed", "/")
		if opts.UseDiskStatic {
			http.ServeFile(w, r, opts.StaticDir+"/sw.js")
			return
		}
		b, err := staticfiles.ServiceWorker()
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		_, _ = w.Write(b)
	}
}

func UseDiskStaticByEnv() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("TODO_DEV_STATIC"))) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
