// Package auth implements the authorization gate guarding protected
// kontrollers: resolve the request passport against the accounts store,
// evaluate the account's role, and either serve the resource or reject the
// request.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/zpatrick/rbac"

	"go.kongo.dev/kongo/db"
	"go.kongo.dev/kongo/db/models"
	dbtypes "go.kongo.dev/kongo/db/types"
	"go.kongo.dev/kongo/web/kontrol"
	"go.kongo.dev/kongo/web/kpassport"
	"go.kongo.dev/kongo/web/server/types"
)

// Actions and targets evaluated against account roles.
const (
	ActionAccess = "access"
	TargetAdmin  = "admin"
)

// roleFor maps an account's stored role flag to its set of permissions.
func roleFor(a *models.Account) rbac.Role {
	if a.Admin {
		return rbac.Role{
			RoleID:      "admin",
			Permissions: []rbac.Permission{rbac.NewGlobPermission("*", "*")},
		}
	}

	return rbac.Role{RoleID: "member"}
}

// IsAdmin resolves the passport against the accounts store and reports
// whether the account it identifies holds the admin role. A failed lookup is
// returned as an error, distinct from a negative authorization decision.
func IsAdmin(p *kpassport.Passport, accounts *db.DB) (admin bool, err error) {
	if p == nil {
		return false, errors.New("no passport provided")
	}

	err = accounts.Do(func(ctx context.Context, q dbtypes.Querier) error {
		acct := &models.Account{Username: p.Username}
		if lerr := acct.Load(ctx, q); lerr != nil {
			return lerr
		}

		can, cerr := roleFor(acct).Can(ActionAccess, TargetAdmin)
		if cerr != nil {
			return cerr
		}
		admin = can

		return nil
	})

	return admin, err
}

// Gate evaluates the authorization sequence for a protected resource and
// invokes serve only for a privileged identity. The decision is recomputed
// from current store state on every call; nothing is cached, so a revoked
// privilege takes effect on the very next request.
//
// A request without a passport and a request from a non-admin account
// produce the identical Unauthorized response, so protected routes don't
// reveal anything about account standing.
func Gate(accounts *db.DB, k *kontrol.Kong, serve func() kontrol.Response) kontrol.Response {
	if k.Passport == nil {
		return types.NewUnauthorizedError("unauthorized")
	}

	admin, err := IsAdmin(k.Passport, accounts)
	if err != nil {
		// A failed lookup is a system fault, not a policy decision. This
		// covers a passport naming an account that no longer exists as well.
		slog.Error("failed resolving passport account",
			"username", k.Passport.Username, "error", err.Error())
		return types.NewInternalError("internal server error")
	}

	if !admin {
		return types.NewUnauthorizedError("unauthorized")
	}

	return serve()
}
