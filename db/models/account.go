package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.kongo.dev/kongo/db/types"
)

// Account represents a registered user account. The Admin flag is the role
// information consulted by the authorization gate; the gate only ever reads
// it.
type Account struct {
	ID           uint64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Username     string
	Email        sql.Null[string]
	PasswordHash []byte
	Admin        bool
}

// Save stores the account data in the database.
func (a *Account) Save(ctx context.Context, d types.Querier, update bool) error {
	timeNow := d.TimeNow().UTC()
	if update {
		var filter *types.Filter
		var filterStr string
		switch {
		case a.ID != 0:
			filter = types.NewFilter("id = ?", []any{a.ID})
			filterStr = fmt.Sprintf("ID %d", a.ID)
		case a.Username != "":
			filter = types.NewFilter("username = ?", []any{a.Username})
			filterStr = fmt.Sprintf("username '%s'", a.Username)
		default:
			return errors.New("must provide either an account username or ID to update")
		}

		args := append([]any{timeNow, a.Admin}, filter.Args...)
		updateStmt := fmt.Sprintf(`UPDATE accounts
			SET updated_at = ?, admin = ?
			WHERE %s`, filter.Where)
		res, err := d.ExecContext(ctx, updateStmt, args...)
		if err != nil {
			return err
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed getting affected rows: %w", err)
		}
		if n == 0 {
			return types.NoResultError{ModelName: "account", ID: filterStr}
		}
		a.UpdatedAt = timeNow
	} else {
		insertStmt := `INSERT INTO accounts
		(id, created_at, updated_at, username, email, password_hash, admin)
		VALUES (NULL, ?, ?, ?, ?, ?, ?)`
		res, err := d.ExecContext(ctx, insertStmt,
			timeNow, timeNow, a.Username, a.Email, a.PasswordHash, a.Admin)
		if err != nil {
			return types.Err("account", fmt.Sprintf("username '%s'", a.Username), err)
		}

		var ierr error
		a.ID, ierr = lastInsertID(res)
		if ierr != nil {
			return ierr
		}
		a.CreatedAt = timeNow
		a.UpdatedAt = timeNow
	}

	return nil
}

// Load the account data from the database. Either the account ID or Username
// must be set for the lookup.
func (a *Account) Load(ctx context.Context, d types.Querier) error {
	if a.ID == 0 && a.Username == "" {
		return types.InvalidInputError{Msg: "either account ID or Username must be set"}
	}

	var filter *types.Filter
	var filterStr string
	if a.ID != 0 {
		filter = types.NewFilter("a.id = ?", []any{a.ID})
		filterStr = fmt.Sprintf("ID %d", a.ID)
	} else {
		filter = types.NewFilter("a.username = ?", []any{a.Username})
		filterStr = fmt.Sprintf("username '%s'", a.Username)
	}

	accounts, err := Accounts(ctx, d, filter)
	if err != nil {
		return err
	}

	if len(accounts) == 0 {
		return types.NoResultError{ModelName: "account", ID: filterStr}
	}

	// The unique constraint on both accounts.id and accounts.username should
	// return only a single result.
	if len(accounts) > 1 {
		panic(fmt.Sprintf("accounts query returned more than 1 account: %d", len(accounts)))
	}
	*a = *accounts[0]

	return nil
}

// Delete removes the account data from the database. Either the account ID or
// Username must be set for the lookup. It returns an error if the account
// doesn't exist.
func (a *Account) Delete(ctx context.Context, d types.Querier) error {
	if a.ID == 0 && a.Username == "" {
		return types.InvalidInputError{Msg: "either account ID or Username must be set"}
	}

	var filter *types.Filter
	var filterStr string
	if a.ID != 0 {
		filter = types.NewFilter("id = ?", []any{a.ID})
		filterStr = fmt.Sprintf("ID %d", a.ID)
	} else {
		filter = types.NewFilter("username = ?", []any{a.Username})
		filterStr = fmt.Sprintf("username '%s'", a.Username)
	}

	stmt := fmt.Sprintf(`DELETE FROM accounts WHERE %s`, filter.Where)

	res, err := d.ExecContext(ctx, stmt, filter.Args...)
	if err != nil {
		return types.Err("account", filterStr, err)
	}

	var n int64
	if n, err = res.RowsAffected(); err != nil {
		return fmt.Errorf("failed getting affected rows: %w", err)
	} else if n == 0 {
		return types.NoResultError{ModelName: "account", ID: filterStr}
	}

	return nil
}

// Accounts returns one or more accounts from the database. An optional filter
// can be passed to limit the results.
func Accounts(ctx context.Context, d types.Querier, filter *types.Filter) (accounts []*Account, rerr error) {
	query := `SELECT a.id, a.created_at, a.updated_at, a.username, a.email, a.password_hash, a.admin
		FROM accounts a %s
		ORDER BY a.username ASC`

	where := "1=1"
	args := []any{}
	if filter != nil {
		where = filter.Where
		args = filter.Args
	}

	query = fmt.Sprintf(query, fmt.Sprintf("WHERE %s", where))

	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.LoadError{ModelName: "accounts", Err: err}
	}
	defer func() {
		if err = rows.Close(); err != nil {
			rerr = fmt.Errorf("failed closing accounts rows: %w", err)
		}
	}()

	accounts = make([]*Account, 0)
	for rows.Next() {
		var a Account
		err = rows.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt, &a.Username,
			&a.Email, &a.PasswordHash, &a.Admin)
		if err != nil {
			return nil, types.ScanError{ModelName: "account", Err: err}
		}
		accounts = append(accounts, &a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating over accounts rows: %w", err)
	}

	return accounts, nil
}

// CountAccounts returns the total number of registered accounts.
func CountAccounts(ctx context.Context, d types.Querier) (int, error) {
	return filterCount(ctx, d, "accounts", types.NewFilter("1=1", nil))
}
