package kontrollers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"go.kongo.dev/kongo/crypto"
	"go.kongo.dev/kongo/db"
	"go.kongo.dev/kongo/db/models"
	dbtypes "go.kongo.dev/kongo/db/types"
	"go.kongo.dev/kongo/web/kontrol"
	"go.kongo.dev/kongo/web/kpassport"
	"go.kongo.dev/kongo/web/server/types"
)

// AccountLoginInput is the JSON body accepted by the login endpoint.
type AccountLoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates an account against the accounts store and, on success,
// issues a passport cookie for subsequent requests.
type Login struct {
	Addr     string
	Accounts *db.DB
	Issuer   *kpassport.Issuer
}

var _ kontrol.Kontroller = (*Login)(nil)

// Address returns the request path this kontroller serves.
func (k *Login) Address() string { return k.Addr }

// Method returns the HTTP method this kontroller serves.
func (k *Login) Method() string { return http.MethodPost }

// Kontrol handles a login request. Both an unknown username and a wrong
// password produce the identical response, so login failures don't reveal
// which accounts exist.
func (k *Login) Kontrol(kg *kontrol.Kong) kontrol.Response {
	var in AccountLoginInput
	if err := decodeJSON(kg.Request, &in); err != nil {
		return types.NewBadRequestError(err.Error())
	}

	acct := &models.Account{Username: in.Username}
	err := k.Accounts.Do(func(ctx context.Context, q dbtypes.Querier) error {
		return acct.Load(ctx, q)
	})
	if err != nil {
		var noRes dbtypes.NoResultError
		if errors.As(err, &noRes) {
			return types.NewBadRequestError("wrong username or password")
		}

		slog.Error("failed loading account", "username", in.Username, "error", err.Error())
		return types.NewInternalError("internal server error")
	}

	if !crypto.CheckPassword(acct.PasswordHash, in.Password) {
		return types.NewBadRequestError("wrong username or password")
	}

	token, err := k.Issuer.Issue(acct.Username)
	if err != nil {
		slog.Error("failed issuing passport", "username", acct.Username, "error", err.Error())
		return types.NewInternalError("internal server error")
	}

	kg.SetCookie(k.Issuer.Cookie(token))

	return types.NewJSON(http.StatusOK, map[string]string{
		"username": acct.Username,
	})
}
