// Package migrate applies embedded SQL migrations on startup.
package migrate

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/and161185/registrar/migrations"
)

// Supported storage backends.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type target struct {
	driver  string
	dialect string
	dir     string
}

var targets = map[string]target{
	BackendPostgres: {driver: "pgx", dialect: "postgres", dir: "postgres"},
	BackendSQLite:   {driver: "sqlite", dialect: "sqlite3", dir: "sqlite"},
}

// Up runs all pending migrations of backend from the embedded filesystem.
// goose keeps its configuration in package state, so calls must not overlap.
func Up(ctx context.Context, log *zap.Logger, backend, dsn string) error {
	tg, ok := targets[backend]
	if !ok {
		return fmt.Errorf("migrate: unknown backend %q", backend)
	}
	db, err := sql.Open(tg.driver, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if log != nil {
		goose.SetLogger(zap.NewStdLog(log.Named("goose")))
	}
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(tg.dialect); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, tg.dir)
}

// Version reports the schema version currently applied.
func Version(ctx context.Context, backend, dsn string) (int64, error) {
	tg, ok := targets[backend]
	if !ok {
		return 0, fmt.Errorf("migrate: unknown backend %q", backend)
	}
	db, err := sql.Open(tg.driver, dsn)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if err := goose.SetDialect(tg.dialect); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db)
}
