package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Azam-Khan12/TODO-Task-Manager/internal/config"
	"github.com/Azam-Khan12/TODO-Task-Manager/internal/model"
	"github.com/Azam-Khan12/TODO-Task-Manager/internal/ops"
	"github.com/Azam-Khan12/TODO-Task-Manager/internal/storage"
)

const stampLayout = "20060102T150405Z"

// errViolations makes verify exit non-zero after printing its findings.
var errViolations = errors.New("schema violations found")

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(afero.NewOsFs(), os.Stdout).Execute(); err != nil {
		if !errors.Is(err, errViolations) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(fsys afero.Fs, out io.Writer) *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "todo-ops",
		Short:         "Backup, restore and inspect a task backing file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultPath, "config file")

	// resolve fills the backing file and schema from flags, falling back
	// to the config file and environment. The driver always comes from config.
	resolve := func(data, schema string) (target, error) {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return target{}, err
		}
		cfg.ApplyEnv()
		cfg.ApplyDefaults()
		t := target{path: data, schema: schema, driver: cfg.Storage.Driver}
		if t.path == "" {
			t.path = cfg.Storage.Path
		}
		if t.schema == "" {
			t.schema = cfg.Tasks.Schema
		}
		return t, nil
	}

	root.AddCommand(
		backupCmd(fsys, resolve),
		restoreCmd(fsys),
		drillCmd(fsys, resolve),
		exportCmd(fsys, resolve),
		verifyCmd(fsys, resolve),
	)
	return root
}

// target is where a command finds the collection.
type target struct {
	path   string
	schema string
	driver string
}

// requireFile rejects drivers whose storage is not a plain JSON file.
func (t target) requireFile(command string) error {
	if t.driver != config.DriverFile {
		return fmt.Errorf("%s works on the file driver only, storage.driver is %q", command, t.driver)
	}
	return nil
}

type resolver func(data, schema string) (target, error)

func backupCmd(fsys afero.Fs, resolve resolver) *cobra.Command {
	var data, outPath string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive the backing file and its id sequence",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := resolve(data, "")
			if err != nil {
				return err
			}
			if err := t.requireFile("backup"); err != nil {
				return err
			}
			file := t.path
			if outPath == "" {
				outPath = filepath.Join("backups", "todo-"+time.Now().UTC().Format(stampLayout)+".tar.gz")
			}
			if _, err := ops.Backup(fsys, file, outPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "backing file (default from config)")
	cmd.Flags().StringVar(&outPath, "out", "", "output archive path (.tar.gz)")
	return cmd
}

func restoreCmd(fsys afero.Fs) *cobra.Command {
	var archive, target string
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Unpack an archive into a directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			files, err := ops.Restore(fsys, archive, target)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&archive, "archive", "", "input backup archive (.tar.gz)")
	cmd.Flags().StringVar(&target, "target-dir", "data-restored", "restore target directory")
	_ = cmd.MarkFlagRequired("archive")
	return cmd
}

func drillCmd(fsys afero.Fs, resolve resolver) *cobra.Command {
	var data, workDir string
	cmd := &cobra.Command{
		Use:   "drill",
		Short: "Back up, restore and compare digests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := resolve(data, "")
			if err != nil {
				return err
			}
			if err := t.requireFile("drill"); err != nil {
				return err
			}
			file := t.path
			if err := fsys.MkdirAll(workDir, 0o755); err != nil {
				return err
			}
			res, err := ops.Drill(fsys, file, workDir, time.Now().UTC().Format(stampLayout))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "backup:", res.Archive)
			fmt.Fprintln(w, "restored:", res.RestoredDir)
			fmt.Fprintln(w, "digest:", res.Digest)
			return nil
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "backing file (default from config)")
	cmd.Flags().StringVar(&workDir, "work-dir", os.TempDir(), "temporary workspace for drill artifacts")
	return cmd
}

func exportCmd(fsys afero.Fs, resolve resolver) *cobra.Command {
	var data, schema, format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the collection as json, yaml or toml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := resolve(data, schema)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			w := cmd.OutOrStdout()
			switch t.schema {
			case storage.SchemaSimple:
				return export[model.SimpleTask](ctx, fsys, t, format, w)
			case storage.SchemaExtended:
				return export[model.Task](ctx, fsys, t, format, w)
			default:
				return fmt.Errorf("unknown schema %q", t.schema)
			}
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "backing file (default from config)")
	cmd.Flags().StringVar(&schema, "schema", "", "extended or simple (default from config)")
	cmd.Flags().StringVarP(&format, "format", "f", storage.FormatJSON, "json, yaml or toml")
	return cmd
}

func verifyCmd(fsys afero.Fs, resolve resolver) *cobra.Command {
	var data, schema string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the backing file against its schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := resolve(data, schema)
			if err != nil {
				return err
			}
			if err := t.requireFile("verify"); err != nil {
				return err
			}
			file := t.path
			violations, err := ops.VerifyFile(fsys, file, t.schema)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(violations) == 0 {
				fmt.Fprintln(w, "ok:", file)
				return nil
			}
			for _, v := range violations {
				fmt.Fprintln(w, v.String())
			}
			return errViolations
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "backing file (default from config)")
	cmd.Flags().StringVar(&schema, "schema", "", "extended or simple (default from config)")
	return cmd
}

// export opens the store the configured driver names and writes its collection.
func export[T any](ctx context.Context, fsys afero.Fs, t target, format string, w io.Writer) error {
	var store storage.Store[T]
	switch t.driver {
	case config.DriverFile:
		store = storage.NewFileStore[T](fsys, t.path)
	case config.DriverSQLite:
		db, err := storage.OpenSQLite[T](ctx, t.path, "tasks")
		if err != nil {
			return err
		}
		defer db.Close()
		store = db
	default:
		return fmt.Errorf("export cannot read storage.driver %q", t.driver)
	}
	_, err := ops.Export[T](ctx, store, format, w)
	return err
}
