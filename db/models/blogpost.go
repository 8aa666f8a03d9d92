package models

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.kongo.dev/kongo/db/types"
)

// BlogPost represents a published blog post. The Cover path is relative to
// the application data directory.
type BlogPost struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Title     string
	Subtitle  sql.Null[string]
	Author    string
	Cover     sql.Null[string]
	Content   string
}

// Save stores the blog post data in the database. The post ID must be set by
// the caller.
func (p *BlogPost) Save(ctx context.Context, d types.Querier, update bool) error {
	if p.ID == "" {
		return types.InvalidInputError{Msg: "the blog post ID must be set"}
	}

	timeNow := d.TimeNow().UTC()
	if update {
		updateStmt := `UPDATE posts
			SET updated_at = ?, title = ?, subtitle = ?, cover = ?, content = ?
			WHERE id = ?`
		res, err := d.ExecContext(ctx, updateStmt,
			timeNow, p.Title, p.Subtitle, p.Cover, p.Content, p.ID)
		if err != nil {
			return err
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed getting affected rows: %w", err)
		}
		if n == 0 {
			return types.NoResultError{ModelName: "blog post", ID: fmt.Sprintf("ID '%s'", p.ID)}
		}
		p.UpdatedAt = timeNow
	} else {
		insertStmt := `INSERT INTO posts
		(id, created_at, updated_at, title, subtitle, author, cover, content)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := d.ExecContext(ctx, insertStmt,
			p.ID, timeNow, timeNow, p.Title, p.Subtitle, p.Author, p.Cover, p.Content)
		if err != nil {
			return types.Err("blog post", fmt.Sprintf("ID '%s'", p.ID), err)
		}
		p.CreatedAt = timeNow
		p.UpdatedAt = timeNow
	}

	return nil
}

// Load the blog post data from the database. The post ID must be set for the
// lookup.
func (p *BlogPost) Load(ctx context.Context, d types.Querier) error {
	if p.ID == "" {
		return types.InvalidInputError{Msg: "the blog post ID must be set"}
	}

	filterStr := fmt.Sprintf("ID '%s'", p.ID)
	posts, err := BlogPosts(ctx, d, types.NewFilter("p.id = ?", []any{p.ID}))
	if err != nil {
		return err
	}

	if len(posts) == 0 {
		return types.NoResultError{ModelName: "blog post", ID: filterStr}
	}
	*p = *posts[0]

	return nil
}

// Delete removes the blog post data from the database. The post ID must be
// set for the lookup. It returns an error if the post doesn't exist.
func (p *BlogPost) Delete(ctx context.Context, d types.Querier) error {
	if p.ID == "" {
		return types.InvalidInputError{Msg: "the blog post ID must be set"}
	}

	res, err := d.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, p.ID)
	if err != nil {
		return types.Err("blog post", fmt.Sprintf("ID '%s'", p.ID), err)
	}

	var n int64
	if n, err = res.RowsAffected(); err != nil {
		return fmt.Errorf("failed getting affected rows: %w", err)
	} else if n == 0 {
		return types.NoResultError{ModelName: "blog post", ID: fmt.Sprintf("ID '%s'", p.ID)}
	}

	return nil
}

// BlogPosts returns one or more blog posts from the database, newest first.
// An optional filter can be passed to limit the results.
func BlogPosts(ctx context.Context, d types.Querier, filter *types.Filter) (posts []*BlogPost, rerr error) {
	query := `SELECT p.id, p.created_at, p.updated_at, p.title, p.subtitle, p.author, p.cover, p.content
		FROM posts p %s
		ORDER BY p.created_at DESC`

	where := "1=1"
	args := []any{}
	if filter != nil {
		where = filter.Where
		args = filter.Args
	}

	query = fmt.Sprintf(query, fmt.Sprintf("WHERE %s", where))

	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.LoadError{ModelName: "blog posts", Err: err}
	}
	defer func() {
		if err = rows.Close(); err != nil {
			rerr = fmt.Errorf("failed closing blog post rows: %w", err)
		}
	}()

	posts = make([]*BlogPost, 0)
	for rows.Next() {
		var p BlogPost
		err = rows.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.Title,
			&p.Subtitle, &p.Author, &p.Cover, &p.Content)
		if err != nil {
			return nil, types.ScanError{ModelName: "blog post", Err: err}
		}
		posts = append(posts, &p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating over blog post rows: %w", err)
	}

	return posts, nil
}
