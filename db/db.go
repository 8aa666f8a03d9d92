package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	//nolint:revive,nolintlint // Idiomatic way of loading DB libraries.
	// The migrate sqlite driver below registers the same modernc driver, so
	// no other sqlite registrant may be imported alongside it.
	_ "modernc.org/sqlite"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"go.kongo.dev/kongo/db/types"
)

//go:embed migrations
var migrationsFS embed.FS

// DB wraps sql.DB with additional context and migration functionality. Each
// store is guarded by a single coarse lock (see Do), since SQLite allows only
// one writer at a time, and the authorization gate expects store access to be
// a short bounded local call.
type DB struct {
	*sql.DB
	ctx     context.Context
	timeNow func() time.Time
	store   string
	path    string
	mx      sync.Mutex
}

var _ types.Querier = (*DB)(nil)

// Open creates and configures a new SQLite database connection for the named
// store. The store name selects the embedded migrations directory.
func Open(ctx context.Context, store, path string, timeNow func() time.Time) (*DB, error) {
	var d *DB
	if strings.Contains(path, "mode=memory") || strings.Contains(path, ":memory:") {
		defer func() {
			if d != nil {
				// See https://github.com/mattn/go-sqlite3#faq
				d.SetMaxIdleConns(10)
				d.SetConnMaxLifetime(time.Duration(math.Inf(1)))
			}
		}()
	}

	sqliteDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed opening SQLite database: %w", err)
	}

	d = &DB{DB: sqliteDB, ctx: ctx, store: store, path: path, timeNow: timeNow}

	// Enable foreign key enforcement
	_, err = d.Exec(`PRAGMA foreign_keys = ON;`)
	if err != nil {
		return nil, fmt.Errorf("failed enabling foreign key enforcement: %w", err)
	}

	return d, nil
}

// Init applies all pending schema migrations for this store.
func (d *DB) Init() error {
	src, err := iofs.New(migrationsFS, "migrations/"+d.store)
	if err != nil {
		return fmt.Errorf("failed loading %s migrations: %w", d.store, err)
	}

	drv, err := migratesqlite.WithInstance(d.DB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed creating %s migration driver: %w", d.store, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return fmt.Errorf("failed creating %s migrator: %w", d.store, err)
	}

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed migrating %s store: %w", d.store, err)
	}

	return nil
}

// Do runs fn while holding the store lock. The lock is held only for the
// duration of the closure, which is expected to perform a single query or
// write, and is released before any response is produced.
func (d *DB) Do(fn func(ctx context.Context, q types.Querier) error) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	return fn(d.NewContext(), d)
}

// NewContext returns a new child context of the main database context.
func (d *DB) NewContext() context.Context {
	ctx, _ := context.WithCancel(d.ctx) //nolint:govet // The parent context handles cancellation.
	return ctx
}

// Store returns the name of the store this handle belongs to.
func (d *DB) Store() string {
	return d.store
}

// TimeNow returns the current system time.
func (d *DB) TimeNow() time.Time {
	return d.timeNow()
}
