package cli

import (
	"context"

	"github.com/alecthomas/kong"

	actx "go.kongo.dev/kongo/app/context"
	aerrors "go.kongo.dev/kongo/app/errors"
	"go.kongo.dev/kongo/db/models"
	dbtypes "go.kongo.dev/kongo/db/types"
)

// The Blog command manages blog posts.
type Blog struct {
	Rm struct {
		ID string `arg:"" help:"The unique ID of the blog post."`
	} `kong:"cmd,help='Remove a blog post.'"`
	Ls struct{} `kong:"cmd,help='List blog posts.'"`
}

// Run the blog command.
func (c *Blog) Run(kctx *kong.Context, appCtx *actx.Context) error {
	switch kctx.Args[1] {
	case "rm":
		err := appCtx.Stores.Blog.Do(func(ctx context.Context, q dbtypes.Querier) error {
			post := &models.BlogPost{ID: c.Rm.ID}
			return post.Delete(ctx, q)
		})
		if err != nil {
			return err
		}
	case "ls":
		var posts []*models.BlogPost
		err := appCtx.Stores.Blog.Do(func(ctx context.Context, q dbtypes.Querier) error {
			var qerr error
			posts, qerr = models.BlogPosts(ctx, q, nil)
			return qerr
		})
		if err != nil {
			return aerrors.NewWithCause("failed listing blog posts", err)
		}

		data := make([][]string, len(posts))
		for i, post := range posts {
			data[i] = []string{
				post.ID, post.Title, post.Author,
				post.CreatedAt.Format("2006-01-02 15:04"),
			}
		}

		if len(data) > 0 {
			header := []string{"ID", "Title", "Author", "Created"}
			if err = renderTable(header, data, appCtx.Stdout); err != nil {
				return aerrors.NewWithCause("failed rendering blog posts table", err)
			}
		}
	}

	return nil
}
