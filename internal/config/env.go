package config

import (
	"os"
	"strconv"
	"strings"
)

// ApplyEnv overrides c from environment variables. PORT is honoured
// unprefixed so the service runs unchanged on common PaaS hosts.
func (c *Config) ApplyEnv() {
	if val := getEnvInt("PORT"); val > 0 {
		c.Server.Port = val
	}
	if val := os.Getenv("TODO_HOST"); val != "" {
		c.Server.Host = val
	}
	if val, ok := getEnvBool("TODO_DEBUG"); ok {
		c.Server.Debug = val
	}
	if val := os.Getenv("TODO_STORAGE_DRIVER"); val != "" {
		c.Storage.Driver = strings.ToLower(val)
	}
	if val := os.Getenv("TODO_STORAGE_PATH"); val != "" {
		c.Storage.Path = val
	}
	if val := os.Getenv("TODO_SCHEMA"); val != "" {
		c.Tasks.Schema = strings.ToLower(val)
	}
	if val := os.Getenv("TODO_LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	}
}

// FromEnv is Default with environment overrides applied.
func FromEnv() Config {
	cfg := Default()
	cfg.ApplyEnv()
	cfg.ApplyDefaults()
	return cfg
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}

func getEnvBool(key string) (bool, bool) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return false, false
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, false
	}
	return b, true
}
