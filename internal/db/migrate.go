package db

import (
	"context"
	"embed"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Execer is satisfied by *pgxpool.Pool and pgxmock pools.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Migrations lists the embedded migration files in apply order.
func Migrations() ([]string, error) {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return nil, oops.Code("MIGRATION_LIST_FAILED").Wrap(err)
	}
	sort.Strings(names)
	return names, nil
}

// Migrate applies every embedded migration in order. Migrations are written
// to be idempotent, so re-running is safe. The callback, if set, is invoked
// after each file.
func Migrate(ctx context.Context, db Execer, applied func(name string)) error {
	names, err := Migrations()
	if err != nil {
		return err
	}
	for _, name := range names {
		b, err := migrationFiles.ReadFile(name)
		if err != nil {
			return oops.Code("MIGRATION_READ_FAILED").With("file", name).Wrap(err)
		}
		if _, err := db.Exec(ctx, string(b)); err != nil {
			return oops.Code("MIGRATION_APPLY_FAILED").With("file", name).Wrap(err)
		}
		if applied != nil {
			applied(name)
		}
	}
	return nil
}
