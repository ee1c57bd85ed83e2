package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"podbrief/internal/app/repository/migrate"
	"podbrief/internal/app/repository/pg"
	"podbrief/internal/app/repository/sqlite"
	"podbrief/internal/config"
)

// Open connects to the configured database.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	switch cfg.Driver {
	case "postgres":
		return pg.Open(ctx, cfg.DSN, cfg.MaxOpenConns)
	case "sqlite3":
		return sqlite.Open(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// OpenStore connects, applies pending migrations and wraps the connection.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (*Store, func(), error) {
	db, err := Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if _, err := migrate.Up(ctx, db.DB, cfg.Driver); err != nil {
		db.Close()
		return nil, nil, err
	}
	store := NewStore(db)
	return store, func() { store.Close() }, nil
}
