package queries

import (
	"context"
	"database/sql"
	"errors"

	"go.kongo.dev/kongo/db/types"
)

// GetPassportKey retrieves the passport signing key from the accounts
// database. It returns an error if it is missing or invalid.
func GetPassportKey(ctx context.Context, d types.Querier) (
	key sql.Null[[]byte], err error,
) {
	err = d.QueryRowContext(ctx, `SELECT passport_key FROM _meta`).Scan(&key)
	if err != nil {
		return
	}

	if !key.Valid || len(key.V) == 0 {
		return key, errors.New("passport signing key not found")
	}

	return
}

// SetMeta stores the application version and the passport signing key. It is
// called once, when the accounts database is initialized.
func SetMeta(ctx context.Context, d types.Querier, version string, passportKey []byte) error {
	_, err := d.ExecContext(ctx,
		`INSERT INTO _meta (version, passport_key) VALUES (?, ?)`,
		version, passportKey)
	return err
}

// Version returns the application version the database was initialized with.
// If the returned sql.Null value is invalid, it indicates that the database
// hasn't been initialized.
func Version(ctx context.Context, d types.Querier) (sql.Null[string], error) {
	var version sql.Null[string]
	err := d.QueryRowContext(ctx, `SELECT version FROM _meta`).
		Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return version, err
	}

	return version, nil
}
