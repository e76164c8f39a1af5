// Package migrate applies the storefront schema with goose.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/pressly/goose/v3"
)

// DefaultDir is where new migrations are written by the create command.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// Source tells goose where to read migration files from.
type Source struct {
	FS  fs.FS
	Dir string
}

// Embedded returns the migrations compiled into the binary.
func Embedded() Source {
	return Source{FS: embedded, Dir: "migrations"}
}

// Directory reads migrations from disk.
func Directory(dir string) Source {
	return Source{FS: os.DirFS(dir), Dir: "."}
}

// goose keeps its filesystem and dialect in package state.
var gooseMu sync.Mutex

// Runner executes goose commands against one database.
type Runner struct {
	db  *sql.DB
	src Source
}

func NewRunner(db *sql.DB, src Source) (*Runner, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	if src.FS == nil {
		return nil, errors.New("migration source is required")
	}
	return &Runner{db: db, src: src}, nil
}

func (r *Runner) with(fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(r.src.FS)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return fn()
}

// Exec runs one of up, down or status.
func (r *Runner) Exec(ctx context.Context, command string) error {
	var run func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error
	switch command {
	case "up":
		run = goose.UpContext
	case "down":
		run = goose.DownContext
	case "status":
		return r.with(func() error { return goose.StatusContext(ctx, r.db, r.src.Dir) })
	default:
		return fmt.Errorf("unsupported goose command %q", command)
	}
	return r.with(func() error {
		if err := run(ctx, r.db, r.src.Dir); err != nil {
			return fmt.Errorf("goose %s: %w", command, err)
		}
		return nil
	})
}

// Version reports the highest applied migration.
func (r *Runner) Version(ctx context.Context) (int64, error) {
	var version int64
	err := r.with(func() error {
		v, err := goose.GetDBVersionContext(ctx, r.db)
		version = v
		return err
	})
	return version, err
}

// MigrateTo moves the schema up or down until target is the current version.
func (r *Runner) MigrateTo(ctx context.Context, target int64) error {
	current, err := r.Version(ctx)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	return r.with(func() error {
		switch {
		case current < target:
			if err := goose.UpToContext(ctx, r.db, r.src.Dir, target); err != nil {
				return fmt.Errorf("goose up-to %d: %w", target, err)
			}
		case current > target:
			if err := goose.DownToContext(ctx, r.db, r.src.Dir, target); err != nil {
				return fmt.Errorf("goose down-to %d: %w", target, err)
			}
		}
		return nil
	})
}
