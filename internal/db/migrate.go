package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*/*.sql
var migrations embed.FS

// MigratePostgres brings the postgres schema up to date through the pool.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	return migrate(ctx, stdlib.OpenDBFromPool(pool), goose.DialectPostgres, "postgres")
}

// MigrateSQLite brings the sqlite schema up to date.
func MigrateSQLite(ctx context.Context, conn *sql.DB) error {
	return migrate(ctx, conn, goose.DialectSQLite3, "sqlite")
}

func migrate(ctx context.Context, conn *sql.DB, dialect goose.Dialect, dir string) error {
	fsys, err := fs.Sub(migrations, "migrations/"+dir)
	if err != nil {
		return fmt.Errorf("migrations dir %s: %w", dir, err)
	}

	provider, err := goose.NewProvider(dialect, conn, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	for _, r := range results {
		slog.Default().InfoContext(ctx, "migration applied", "dialect", string(dialect), "version", r.Source.Version, "duration_ms", r.Duration.Milliseconds())
	}

	return nil
}
