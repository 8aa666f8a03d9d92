package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.kongo.dev/kongo/crypto"
	"go.kongo.dev/kongo/db/types"
)

var timeNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func timeNowFn() time.Time {
	return timeNow
}

func openTestStore(t *testing.T, store string) *DB {
	t.Helper()

	// A unique name per test, to avoid clashing of in-memory SQLite DBs.
	rndName, err := crypto.RandomData(8)
	require.NoError(t, err)

	d, err := Open(context.Background(), store,
		fmt.Sprintf("file:db-%x?mode=memory&cache=shared", rndName), timeNowFn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	return d
}

// The sql driver and the migration driver must share a single sqlite
// registration; opening and migrating a store exercises both in one process.
func TestOpenAndMigrate(t *testing.T) {
	t.Parallel()

	d := openTestStore(t, StoreAccounts)
	require.NoError(t, d.Init())

	// Re-applying migrations on an up-to-date store is a no-op.
	require.NoError(t, d.Init())

	err := d.Do(func(ctx context.Context, q types.Querier) error {
		var count int
		return q.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count)
	})
	require.NoError(t, err)

	assert.Equal(t, StoreAccounts, d.Store())
	assert.Equal(t, timeNow, d.TimeNow())
}

func TestMigrateAllStores(t *testing.T) {
	t.Parallel()

	tables := map[string]string{
		StoreAccounts:   "accounts",
		StoreBlog:       "posts",
		StoreNewsletter: "subscribers",
	}

	for store, table := range tables {
		t.Run(store, func(t *testing.T) {
			t.Parallel()

			d := openTestStore(t, store)
			require.NoError(t, d.Init())

			err := d.Do(func(ctx context.Context, q types.Querier) error {
				var count int
				query := fmt.Sprintf(`SELECT COUNT(*) FROM "%s"`, table)
				return q.QueryRowContext(ctx, query).Scan(&count)
			})
			assert.NoError(t, err)
		})
	}
}
