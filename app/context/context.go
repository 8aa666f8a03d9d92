package context

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"

	cfg "go.kongo.dev/kongo/app/config"
	"go.kongo.dev/kongo/db"
	"go.kongo.dev/kongo/db/queries"
	dbtypes "go.kongo.dev/kongo/db/types"
	"go.kongo.dev/kongo/web/kpassport"
)

// Context contains common objects used by the application. It is passed around
// the application to avoid direct dependencies on external systems, and make
// testing easier.
type Context struct {
	Ctx     context.Context // global context
	FS      vfs.FileSystem  // filesystem
	Env     Environment     // process environment
	Logger  *slog.Logger    // global logger
	TimeNow func() time.Time
	Config  *cfg.Config
	Stores  *db.Stores // accounts, blog and newsletter databases
	DataDir string

	// Standard streams
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Metadata
	Version string
}

// PassportIssuer loads the passport signing key from the accounts store and
// returns an issuer configured from the application configuration. It fails
// if the accounts store hasn't been initialized.
func (c *Context) PassportIssuer() (*kpassport.Issuer, error) {
	var keyData sql.Null[[]byte]
	err := c.Stores.Accounts.Do(func(ctx context.Context, q dbtypes.Querier) error {
		var qerr error
		keyData, qerr = queries.GetPassportKey(ctx, q)
		return qerr
	})
	if err != nil {
		return nil, err
	}

	key := &[32]byte{}
	copy(key[:], keyData.V)

	expiration := kpassport.DefaultExpiration
	if c.Config != nil && c.Config.Passport.Expiration.Valid {
		expiration = c.Config.Passport.Expiration.V
	}

	return kpassport.NewIssuer(key, expiration, c.TimeNow), nil
}
