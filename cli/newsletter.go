package cli

import (
	"context"

	"github.com/alecthomas/kong"

	actx "go.kongo.dev/kongo/app/context"
	aerrors "go.kongo.dev/kongo/app/errors"
	"go.kongo.dev/kongo/db/models"
	dbtypes "go.kongo.dev/kongo/db/types"
)

// The Newsletter command manages newsletter subscribers.
type Newsletter struct {
	Rm struct {
		Email string `arg:"" help:"The email address of the subscriber."`
	} `kong:"cmd,help='Remove a subscriber.'"`
	Ls struct{} `kong:"cmd,help='List subscribers.'"`
}

// Run the newsletter command.
func (c *Newsletter) Run(kctx *kong.Context, appCtx *actx.Context) error {
	switch kctx.Args[1] {
	case "rm":
		err := appCtx.Stores.Newsletter.Do(func(ctx context.Context, q dbtypes.Querier) error {
			sub := &models.Subscriber{Email: c.Rm.Email}
			return sub.Delete(ctx, q)
		})
		if err != nil {
			return err
		}
	case "ls":
		var subs []*models.Subscriber
		err := appCtx.Stores.Newsletter.Do(func(ctx context.Context, q dbtypes.Querier) error {
			var qerr error
			subs, qerr = models.Subscribers(ctx, q, nil)
			return qerr
		})
		if err != nil {
			return aerrors.NewWithCause("failed listing subscribers", err)
		}

		data := make([][]string, len(subs))
		for i, sub := range subs {
			data[i] = []string{sub.Email, sub.CreatedAt.Format("2006-01-02 15:04")}
		}

		if len(data) > 0 {
			header := []string{"Email", "Subscribed"}
			if err = renderTable(header, data, appCtx.Stdout); err != nil {
				return aerrors.NewWithCause("failed rendering subscribers table", err)
			}
		}
	}

	return nil
}
