package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/ojastore/storefront-backend/pkg/config"
	"github.com/ojastore/storefront-backend/pkg/db"
	"github.com/ojastore/storefront-backend/pkg/logger"
	"github.com/ojastore/storefront-backend/pkg/migrate"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

func main() {
	_ = godotenv.Load()

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	logg := logger.New(logger.Options{ServiceName: "migrate"})
	if err := run(context.Background(), opts, logg, os.Stdout); err != nil {
		logg.Error(context.Background(), "migrate failed", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.cmd, "cmd", "up", "migration command: up|down|status|version|create|validate")
	fs.StringVar(&opts.dir, "dir", "", "migrations directory (default: embedded; create writes to "+migrate.DefaultDir+")")
	fs.StringVar(&opts.name, "name", "", "migration name (for create)")
	fs.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func run(ctx context.Context, opts options, logg *logger.Logger, stdout io.Writer) (err error) {
	ctx = logg.WithFields(ctx, map[string]any{"cmd": opts.cmd, "dir": opts.dir})

	// create and validate work on files only.
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return errors.New("missing -name for create")
		}
		dir := opts.dir
		if dir == "" {
			dir = migrate.DefaultDir
		}
		path, err := migrate.CreateSQLMigration(dir, opts.name)
		if err != nil {
			return fmt.Errorf("create migration: %w", err)
		}
		fmt.Fprintln(stdout, "created migration:", path)
		return nil
	case "validate":
		if err := migrate.Validate(source(opts.dir)); err != nil {
			return fmt.Errorf("migration validation: %w", err)
		}
		fmt.Fprintln(stdout, "migration validation passed")
		return nil
	case "up", "down", "status":
	case "version":
		if _, err := strconv.ParseInt(opts.version, 10, 64); err != nil {
			return fmt.Errorf("invalid -version %q (expected YYYYMMDDHHMMSS)", opts.version)
		}
	default:
		return fmt.Errorf("unknown -cmd value: %s", opts.cmd)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return fmt.Errorf("extract sql.DB: %w", err)
	}

	runner, err := migrate.NewRunner(sqlDB, source(opts.dir))
	if err != nil {
		return err
	}

	logg.Info(ctx, "migrate ready")
	if opts.cmd == "version" {
		target, _ := strconv.ParseInt(opts.version, 10, 64)
		return runner.MigrateTo(ctx, target)
	}
	if err := runner.Exec(ctx, opts.cmd); err != nil {
		return err
	}
	if version, err := runner.Version(ctx); err == nil {
		fmt.Fprintln(stdout, "schema version:", version)
	}
	return nil
}

func source(dir string) migrate.Source {
	if dir == "" {
		return migrate.Embedded()
	}
	return migrate.Directory(dir)
}
