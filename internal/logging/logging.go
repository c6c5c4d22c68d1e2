package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

type Options struct {
	Level  string
	Format string
	// Output defaults to stderr.
	Output io.Writer
}

// New builds the process logger. The returned AtomicLevel stays wired to the
// logger, so the level can be changed while the server runs.
func New(opts Options) (*zap.Logger, zap.AtomicLevel, error) {
	level := zap.NewAtomicLevel()
	if err := SetLevel(level, opts.Level); err != nil {
		return nil, level, err
	}

	var enc zapcore.Encoder
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case FormatConsole:
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(cfg)
	case "", FormatJSON:
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	default:
		return nil, level, fmt.Errorf("unknown log format %q", opts.Format)
	}

	var out zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	if opts.Output != nil {
		out = zapcore.AddSync(opts.Output)
	}
	return zap.New(zapcore.NewCore(enc, out, level), zap.AddCaller()), level, nil
}

// SetLevel parses s ("debug", "info", ...) into l. Empty means info.
func SetLevel(l zap.AtomicLevel, s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		s = "info"
	}
	if err := l.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return fmt.Errorf("log level %q: %w", s, err)
	}
	return nil
}
