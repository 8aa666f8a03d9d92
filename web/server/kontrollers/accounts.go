package kontrollers

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go.kongo.dev/kongo/crypto"
	"go.kongo.dev/kongo/db"
	"go.kongo.dev/kongo/db/models"
	dbtypes "go.kongo.dev/kongo/db/types"
	"go.kongo.dev/kongo/web/kontrol"
	"go.kongo.dev/kongo/web/server/types"
)

// AccountCreationInput is the JSON body accepted by the account creation
// endpoint.
type AccountCreationInput struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// CreateAccount registers a new account. The very first account ever created
// is flagged as admin, so a fresh deployment can bootstrap itself without
// out-of-band access to the accounts store.
type CreateAccount struct {
	Addr     string
	Accounts *db.DB
}

var _ kontrol.Kontroller = (*CreateAccount)(nil)

// Address returns the request path this kontroller serves.
func (k *CreateAccount) Address() string { return k.Addr }

// Method returns the HTTP method this kontroller serves.
func (k *CreateAccount) Method() string { return http.MethodPost }

// Kontrol handles an account creation request.
func (k *CreateAccount) Kontrol(kg *kontrol.Kong) kontrol.Response {
	var in AccountCreationInput
	if err := decodeJSON(kg.Request, &in); err != nil {
		return types.NewBadRequestError(err.Error())
	}

	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return types.NewBadRequestError("the account username must be set")
	}

	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return types.NewBadRequestError(err.Error())
	}

	acct := &models.Account{
		Username:     in.Username,
		PasswordHash: hash,
	}
	if in.Email != "" {
		acct.Email = sql.Null[string]{V: in.Email, Valid: true}
	}

	err = k.Accounts.Do(func(ctx context.Context, q dbtypes.Querier) error {
		count, cerr := models.CountAccounts(ctx, q)
		if cerr != nil {
			return cerr
		}
		acct.Admin = count == 0

		return acct.Save(ctx, q, false)
	})
	if err != nil {
		var dup *dbtypes.DuplicateError
		if errors.As(err, &dup) {
			return types.NewBadRequestError(dup.Error())
		}

		slog.Error("failed creating account", "username", in.Username, "error", err.Error())
		return types.NewInternalError("internal server error")
	}

	return types.NewJSON(http.StatusCreated, map[string]string{
		"username": acct.Username,
	})
}
