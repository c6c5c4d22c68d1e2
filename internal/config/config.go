package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "todo.yml"

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"

	SchemaExtended = "extended"
	SchemaSimple   = "simple"
)

type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Tasks   TasksConfig   `yaml:"tasks" json:"tasks"`
	Log     LogConfig     `yaml:"log" json:"log"`
	UI      UIConfig      `yaml:"ui" json:"ui"`
}

type ServerConfig struct {
	Host         string        `yaml:"host" json:"host"`
	Port         int           `yaml:"port" json:"port" validate:"min=1,max=65535"`
	Debug        bool          `yaml:"debug" json:"debug"`
	CORSOrigins  []string      `yaml:"cors_origins" json:"cors_origins"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout" validate:"gte=0"`
}

type StorageConfig struct {
	Driver        string        `yaml:"driver" json:"driver" validate:"oneof=file sqlite memory"`
	Path          string        `yaml:"path" json:"path" validate:"required_unless=Driver memory"`
	AtomicWrites  bool          `yaml:"atomic_writes" json:"atomic_writes"`
	ProcessLock   bool          `yaml:"process_lock" json:"process_lock"`
	SlowThreshold time.Duration `yaml:"slow_threshold" json:"slow_threshold" validate:"gte=0"`
}

type TasksConfig struct {
	Schema string `yaml:"schema" json:"schema" validate:"oneof=extended simple"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" json:"format" validate:"omitempty,oneof=json console"`
}

type UIConfig struct {
	Title string `yaml:"title" json:"title"`
}

// Default is the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         5000,
			Debug:        true,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Storage: StorageConfig{
			Driver:        DriverFile,
			Path:          "tasks.json",
			AtomicWrites:  true,
			SlowThreshold: 250 * time.Millisecond,
		},
		Tasks: TasksConfig{Schema: SchemaExtended},
		Log:   LogConfig{Level: "info"},
		UI:    UIConfig{Title: "FuturoTodo"},
	}
}

func (c *Config) ApplyDefaults() {
	d := Default()
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = d.Storage.Driver
	}
	if c.Storage.Path == "" && c.Storage.Driver != DriverMemory {
		c.Storage.Path = d.Storage.Path
	}
	if c.Tasks.Schema == "" {
		c.Tasks.Schema = d.Tasks.Schema
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
		if c.Server.Debug {
			c.Log.Format = "console"
		}
	}
	if c.UI.Title == "" {
		c.UI.Title = d.UI.Title
	}
	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
	c.Tasks.Schema = strings.ToLower(c.Tasks.Schema)
	c.Log.Level = strings.ToLower(c.Log.Level)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	r := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.ApplyDefaults()
			return &r, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	r.ApplyDefaults()
	return &r, nil
}
