package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Azam-Khan12/TODO-Task-Manager/internal/config"
	"github.com/Azam-Khan12/TODO-Task-Manager/internal/logging"
	"github.com/Azam-Khan12/TODO-Task-Manager/internal/serverapp"
)

const shutdownGrace = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:           "todo-server",
		Short:         "Serve the task list over HTTP",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, v)
		},
	}
	f := cmd.Flags()
	f.StringP("config", "c", config.DefaultPath, "config file")
	f.IntP("port", "p", 0, "listen port (overrides PORT)")
	f.String("host", "", "listen host")
	f.String("data", "", "backing file or database path")
	f.String("schema", "", "task schema: extended or simple")
	for _, name := range []string{"config", "port", "host", "data", "schema"} {
		_ = v.BindPFlag(name, f.Lookup(name))
	}
	return cmd
}

// loadConfig layers file, environment and flags, in that order.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	// .env is optional
	_ = godotenv.Load()

	path := v.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv()
	if v.IsSet("port") {
		cfg.Server.Port = v.GetInt("port")
	}
	if v.IsSet("host") {
		cfg.Server.Host = v.GetString("host")
	}
	if v.IsSet("data") {
		cfg.Storage.Path = v.GetString("data")
	}
	if v.IsSet("schema") {
		cfg.Tasks.Schema = v.GetString("schema")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, v *viper.Viper) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	logger, level, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	app, err := serverapp.New(ctx, serverapp.Options{
		Config:        cfg,
		StaticDir:     "static",
		UseDiskStatic: serverapp.UseDiskStaticByEnv(),
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("close storage", zap.Error(err))
		}
	}()

	if path := v.GetString("config"); cfg.Server.Debug && fileExists(path) {
		w := config.NewWatcher(path, cfg, logger)
		w.OnChange(func(next *config.Config) {
			if err := logging.SetLevel(level, next.Log.Level); err != nil {
				logger.Warn("ignoring log level", zap.Error(err))
			}
		})
		go func() {
			if err := w.Run(ctx); err != nil {
				logger.Warn("config watcher stopped", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           app.Handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("schema", cfg.Tasks.Schema),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("path", cfg.Storage.Path),
			zap.Bool("debug", cfg.Server.Debug),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
