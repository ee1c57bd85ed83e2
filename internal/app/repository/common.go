package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// Store is the SQL persistence layer shared by every component. It works
// against postgres (lib/pq) and sqlite3; statements are written with '?'
// placeholders and rebound for the connection's dialect.
type Store struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
	now     func() time.Time
}

// NewStore wraps an open connection.
func NewStore(db *sqlx.DB) *Store {
	var format sq.PlaceholderFormat = sq.Question
	if db.DriverName() == "postgres" {
		format = sq.Dollar
	}
	return &Store{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(format),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// DB exposes the underlying connection for migrations and health checks.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// DriverName returns the sqlx driver name.
func (s *Store) DriverName() string {
	return s.db.DriverName()
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetClock overrides the time source. Tests use it to age rows.
func (s *Store) SetClock(now func() time.Time) {
	s.now = func() time.Time { return now().UTC() }
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

func (s *Store) rebind(query string) string {
	return s.db.Rebind(query)
}
