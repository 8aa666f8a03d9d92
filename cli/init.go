package cli

import (
	"context"
	"fmt"

	actx "go.kongo.dev/kongo/app/context"
	aerrors "go.kongo.dev/kongo/app/errors"
	"go.kongo.dev/kongo/crypto"
	"go.kongo.dev/kongo/db/queries"
	dbtypes "go.kongo.dev/kongo/db/types"
)

// The Init command creates initial kongo artifacts: the account, blog and
// newsletter databases, and the passport signing key.
type Init struct{}

// Run the init command.
func (c *Init) Run(appCtx *actx.Context) error {
	if err := appCtx.Stores.Init(); err != nil {
		return aerrors.NewWithCause("failed initializing stores", err)
	}

	err := appCtx.Stores.Accounts.Do(func(ctx context.Context, q dbtypes.Querier) error {
		version, err := queries.Version(ctx, q)
		if err != nil {
			return err
		}
		if version.Valid {
			return fmt.Errorf("kongo is already initialized with version %s", version.V)
		}

		key := crypto.NewHMACKey()
		return queries.SetMeta(ctx, q, appCtx.Version, key[:])
	})
	if err != nil {
		return err
	}

	appCtx.Logger.Info("initialized kongo", "dataDir", appCtx.DataDir)

	return nil
}
