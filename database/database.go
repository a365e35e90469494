package database

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type Database struct {
	Pool *pgxpool.Pool
}

// Open connects a pool and checks it can reach the server.
func Open(ctx context.Context, uri string) (*Database, error) {
	pool, err := pgxpool.New(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return &Database{Pool: pool}, nil
}

func (db *Database) Close() {
	db.Pool.Close()
}

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// RunMigrations applies the embedded migrations. GOOSE_DRIVER defaults to
// pgx and GOOSE_DBSTRING to POSTGRES_URI.
func RunMigrations(ctx context.Context, getenv func(string) string) error {
	driver := getenv("GOOSE_DRIVER")
	if driver == "" {
		driver = "pgx"
	}
	dsn := getenv("GOOSE_DBSTRING")
	if dsn == "" {
		dsn = getenv("POSTGRES_URI")
	}

	db, err := goose.OpenDBWithDriver(driver, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(embeddedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return err
	}

	return nil
}
