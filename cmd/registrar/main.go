// Command registrar manages the school registrar data: students, instructors,
// their course assignments and versioned departments.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"

	"github.com/and161185/registrar/internal/config"
	"github.com/and161185/registrar/internal/errs"
	"github.com/and161185/registrar/internal/metrics"
	"github.com/and161185/registrar/internal/migrate"
	"github.com/and161185/registrar/internal/repository"
	"github.com/and161185/registrar/internal/repository/postgres"
	"github.com/and161185/registrar/internal/repository/sqlite"
	"github.com/and161185/registrar/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// Exit codes.
const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitConflict = 3
	exitNotFound = 4
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `registrar
Usage:
  registrar [-config file] [-metrics] <cmd> [args]

Commands:
  version
  migrate
  seed                                           (sample data, empty database only)
  students          [-sort name_desc|Date|date_desc] [-search text | -filter text] [-page n]
  stats                                          (students per enrollment date)
  courses
  instructor        -id <id>
  create-instructor -last <name> -first <name> -hired YYYY-MM-DD [-office loc] [-courses 1,2]
  edit-instructor   -id <id> [-last] [-first] [-hired] [-office loc] [-courses 1,2]
  departments
  department        -id <id>
  edit-department   -id <id> -token <hex> [-name] [-budget 100.00] [-start YYYY-MM-DD] [-admin id | -no-admin]
  delete-department -id <id> -token <hex>
`)
}

// app bundles the services a command may use.
type app struct {
	log         *zap.Logger
	instructors service.InstructorService
	departments service.DepartmentService
	students    service.StudentService
	courses     service.CourseService
	stdout      io.Writer
	stderr      io.Writer
}

// run parses global flags, wires storage and services and dispatches one command.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("registrar", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }
	cfgPath := fs.String("config", "", "config file (yaml, json, toml or env)")
	dumpMetrics := fs.Bool("metrics", false, "print collected metrics to stderr on exit")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() < 1 {
		usage(stderr)
		return exitUsage
	}
	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if cmd == "version" {
		fmt.Fprintf(stdout, "registrar %s (%s)\n", version, buildDate)
		return exitOK
	}
	if _, ok := commands[cmd]; !ok && cmd != "migrate" {
		usage(stderr)
		return exitUsage
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	defer func() { _ = log.Sync() }()
	log.Debug("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("backend", cfg.DBBackend),
	)

	reg := prometheus.NewRegistry()
	if *dumpMetrics {
		defer writeMetrics(stderr, reg)
	}

	if cmd == "migrate" {
		cfg.Migrate = true
	}
	repos, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("open storage", zap.Error(err))
		return exitFailure
	}
	defer closeStore()
	if cmd == "migrate" {
		dsn := cfg.DBDSN
		if cfg.DBBackend == migrate.BackendSQLite {
			dsn = sqlite.DSN(cfg.SQLitePath)
		}
		v, err := migrate.Version(ctx, cfg.DBBackend, dsn)
		if err != nil {
			log.Error("read schema version", zap.Error(err))
			return exitFailure
		}
		_ = printJSON(stdout, map[string]int64{"version": v})
		return exitOK
	}

	m := metrics.New(reg)
	a := &app{
		log:         log,
		instructors: service.NewInstructorService(repos.Instructors, repos.Courses, log, m),
		departments: service.NewDepartmentService(repos.Departments, log, m),
		students:    service.NewStudentService(repos.Students, cfg.PageSize, log, m),
		courses:     service.NewCourseService(repos.Courses),
		stdout:      stdout,
		stderr:      stderr,
	}
	return a.report(commands[cmd](ctx, a, rest))
}

// openStore connects the configured backend and applies migrations when enabled.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Set, func(), error) {
	switch cfg.DBBackend {
	case migrate.BackendPostgres:
		db, err := postgres.New(ctx, cfg.DBDSN)
		if err != nil {
			return repository.Set{}, nil, err
		}
		if cfg.Migrate {
			if err := migrate.Up(ctx, log, migrate.BackendPostgres, cfg.DBDSN); err != nil {
				db.Close()
				return repository.Set{}, nil, fmt.Errorf("migrate up: %w", err)
			}
		}
		return db.Repositories(), db.Close, nil
	default:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return repository.Set{}, nil, err
		}
		if cfg.Migrate {
			if err := migrate.Up(ctx, log, migrate.BackendSQLite, sqlite.DSN(cfg.SQLitePath)); err != nil {
				_ = db.Close()
				return repository.Set{}, nil, fmt.Errorf("migrate up: %w", err)
			}
		}
		return db.Repositories(), func() { _ = db.Close() }, nil
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if lvl.Level() == zap.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = lvl
	return zc.Build()
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) {
	mfs, err := g.Gather()
	if err != nil {
		fmt.Fprintln(w, "gather metrics:", err)
		return
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return
		}
	}
}

// report prints err and maps it to an exit code.
func (a *app) report(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *errs.ConflictError
	switch {
	case errors.As(err, &ce):
		if ce.Deleted {
			fmt.Fprintf(a.stderr, "conflict: %s %d was deleted by another user\n", ce.Entity, ce.ID)
		} else {
			fmt.Fprintf(a.stderr, "conflict: %s %d was changed by another user; current token %x\n", ce.Entity, ce.ID, ce.Current)
		}
		return exitConflict
	case errors.Is(err, errs.ErrNotFound):
		fmt.Fprintln(a.stderr, err)
		return exitNotFound
	case errors.Is(err, errs.ErrValidation), errors.Is(err, errUsage):
		fmt.Fprintln(a.stderr, err)
		return exitUsage
	default:
		a.log.Error("command failed", zap.Error(err))
		fmt.Fprintln(a.stderr, err)
		return exitFailure
	}
}
