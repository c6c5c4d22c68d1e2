package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, "todo.yml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, "tasks.json", cfg.Storage.Path)
	assert.True(t, cfg.Storage.AtomicWrites)
	assert.Equal(t, SchemaExtended, cfg.Tasks.Schema)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "FuturoTodo", cfg.UI.Title)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileOverridesOnlyWhatItNames(t *testing.T) {
	p := writeFile(t, t.TempDir(), `
server:
  port: 8080
  debug: false
  read_timeout: 3s
storage:
  driver: SQLite
  path: data/todo.db
tasks:
  schema: simple
`)

	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.Server.Debug)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "data/todo.db", cfg.Storage.Path)
	assert.True(t, cfg.Storage.AtomicWrites)
	assert.Equal(t, SchemaSimple, cfg.Tasks.Schema)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestLoad_BadYAML(t *testing.T) {
	p := writeFile(t, t.TempDir(), "server: [\n")

	_, err := Load(p)

	assert.Error(t, err)
}

func TestValidate_RejectsUnknownValues(t *testing.T) {
	cases := map[string]func(*Config){
		"driver": func(c *Config) { c.Storage.Driver = "redis" },
		"schema": func(c *Config) { c.Tasks.Schema = "fancy" },
		"port":   func(c *Config) { c.Server.Port = 70000 },
		"level":  func(c *Config) { c.Log.Level = "loud" },
		"path":   func(c *Config) { c.Storage.Path = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	cfg.Storage.Driver = DriverMemory
	cfg.Storage.Path = ""
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PORT", "7777")
	t.Setenv("TODO_HOST", "127.0.0.1")
	t.Setenv("TODO_DEBUG", "false")
	t.Setenv("TODO_STORAGE_DRIVER", "Memory")
	t.Setenv("TODO_STORAGE_PATH", "/tmp/x.json")
	t.Setenv("TODO_SCHEMA", "SIMPLE")
	t.Setenv("TODO_LOG_LEVEL", "debug")

	cfg := FromEnv()

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.False(t, cfg.Server.Debug)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/x.json", cfg.Storage.Path)
	assert.Equal(t, SchemaSimple, cfg.Tasks.Schema)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestApplyEnv_IgnoresGarbage(t *testing.T) {
	t.Setenv("PORT", "eighty")
	t.Setenv("TODO_DEBUG", "maybe")

	cfg := FromEnv()

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.True(t, cfg.Server.Debug)
}

func TestWatcher_ReloadNotifiesCallbacks(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "log:\n  level: info\n")
	initial, err := Load(p)
	require.NoError(t, err)

	w := NewWatcher(p, initial, nil)
	var mu sync.Mutex
	var levels []string
	w.OnChange(func(c *Config) {
		mu.Lock()
		levels = append(levels, c.Log.Level)
		mu.Unlock()
	})

	writeFile(t, dir, "log:\n  level: debug\n")
	w.Reload()
	assert.Equal(t, "debug", w.Current().Log.Level)

	// invalid edits keep the previous config
	writeFile(t, dir, "log:\n  level: shouty\n")
	w.Reload()
	assert.Equal(t, "debug", w.Current().Log.Level)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"debug"}, levels)
}
