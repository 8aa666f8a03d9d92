package cli

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/alecthomas/kong"

	actx "go.kongo.dev/kongo/app/context"
	aerrors "go.kongo.dev/kongo/app/errors"
	"go.kongo.dev/kongo/crypto"
	"go.kongo.dev/kongo/db/models"
	dbtypes "go.kongo.dev/kongo/db/types"
)

// The Account command manages accounts.
type Account struct {
	Add struct {
		Username string `arg:"" help:"The unique name of the account."`
		Email    string `help:"The email address of the account."`
		Password string `required:"" help:"The account password."`
		Admin    bool   `help:"Grant the account administrator privileges."`
	} `kong:"cmd,help='Add a new account.'"`
	Rm struct {
		Username string `arg:"" help:"The unique name of the account."`
	} `kong:"cmd,help='Remove an account.'"`
	Ls      struct{} `kong:"cmd,help='List accounts.'"`
	Promote struct {
		Username string `arg:"" help:"The unique name of the account."`
	} `kong:"cmd,help='Grant an account administrator privileges.'"`
	Demote struct {
		Username string `arg:"" help:"The unique name of the account."`
	} `kong:"cmd,help='Revoke administrator privileges from an account.'"`
}

// Run the account command.
func (c *Account) Run(kctx *kong.Context, appCtx *actx.Context) error {
	switch kctx.Args[1] {
	case "add":
		hash, err := crypto.HashPassword(c.Add.Password)
		if err != nil {
			return aerrors.NewWithCause(
				fmt.Sprintf("failed adding account '%s'", c.Add.Username), err)
		}

		err = appCtx.Stores.Accounts.Do(func(ctx context.Context, q dbtypes.Querier) error {
			account := &models.Account{
				Username:     c.Add.Username,
				PasswordHash: hash,
				Admin:        c.Add.Admin,
			}
			if c.Add.Email != "" {
				account.Email = sql.Null[string]{V: c.Add.Email, Valid: true}
			}

			// The very first account gets administrator privileges, so that
			// the admin endpoints are reachable on a fresh deployment.
			count, err := models.CountAccounts(ctx, q)
			if err != nil {
				return err
			}
			if count == 0 {
				account.Admin = true
			}

			return account.Save(ctx, q, false)
		})
		if err != nil {
			return aerrors.NewWithCause(
				fmt.Sprintf("failed adding account '%s'", c.Add.Username), err)
		}
	case "rm":
		err := appCtx.Stores.Accounts.Do(func(ctx context.Context, q dbtypes.Querier) error {
			account := &models.Account{Username: c.Rm.Username}
			return account.Delete(ctx, q)
		})
		if err != nil {
			return err
		}
	case "ls":
		var accounts []*models.Account
		err := appCtx.Stores.Accounts.Do(func(ctx context.Context, q dbtypes.Querier) error {
			var qerr error
			accounts, qerr = models.Accounts(ctx, q, nil)
			return qerr
		})
		if err != nil {
			return aerrors.NewWithCause("failed listing accounts", err)
		}

		data := make([][]string, len(accounts))
		for i, account := range accounts {
			data[i] = []string{
				account.Username, account.Email.V, strconv.FormatBool(account.Admin),
			}
		}

		if len(data) > 0 {
			header := []string{"Username", "Email", "Admin"}
			if err = renderTable(header, data, appCtx.Stdout); err != nil {
				return aerrors.NewWithCause("failed rendering accounts table", err)
			}
		}
	case "promote", "demote":
		username, admin := c.Promote.Username, true
		if kctx.Args[1] == "demote" {
			username, admin = c.Demote.Username, false
		}
		err := c.setAdmin(appCtx, username, admin)
		if err != nil {
			return aerrors.NewWithCause(
				fmt.Sprintf("failed updating account '%s'", username), err)
		}
	}

	return nil
}

func (c *Account) setAdmin(appCtx *actx.Context, username string, admin bool) error {
	return appCtx.Stores.Accounts.Do(func(ctx context.Context, q dbtypes.Querier) error {
		account := &models.Account{Username: username}
		if err := account.Load(ctx, q); err != nil {
			return err
		}
		account.Admin = admin

		return account.Save(ctx, q, true)
	})
}
