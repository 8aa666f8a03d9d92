package models

import (
	"context"
	"fmt"
	"time"

	"go.kongo.dev/kongo/db/types"
)

// Subscriber represents a newsletter subscription.
type Subscriber struct {
	ID        string
	CreatedAt time.Time
	Email     string
}

// Save stores the subscriber data in the database. The subscriber ID must be
// set by the caller.
func (s *Subscriber) Save(ctx context.Context, d types.Querier) error {
	if s.ID == "" || s.Email == "" {
		return types.InvalidInputError{Msg: "both subscriber ID and Email must be set"}
	}

	timeNow := d.TimeNow().UTC()
	insertStmt := `INSERT INTO subscribers
	(id, created_at, email)
	VALUES (?, ?, ?)`
	_, err := d.ExecContext(ctx, insertStmt, s.ID, timeNow, s.Email)
	if err != nil {
		return types.Err("subscriber", fmt.Sprintf("email '%s'", s.Email), err)
	}
	s.CreatedAt = timeNow

	return nil
}

// Delete removes the subscriber data from the database. The subscriber Email
// must be set for the lookup. It returns an error if the subscriber doesn't
// exist.
func (s *Subscriber) Delete(ctx context.Context, d types.Querier) error {
	if s.Email == "" {
		return types.InvalidInputError{Msg: "the subscriber Email must be set"}
	}

	filterStr := fmt.Sprintf("email '%s'", s.Email)
	res, err := d.ExecContext(ctx, `DELETE FROM subscribers WHERE email = ?`, s.Email)
	if err != nil {
		return types.Err("subscriber", filterStr, err)
	}

	var n int64
	if n, err = res.RowsAffected(); err != nil {
		return fmt.Errorf("failed getting affected rows: %w", err)
	} else if n == 0 {
		return types.NoResultError{ModelName: "subscriber", ID: filterStr}
	}

	return nil
}

// Subscribers returns one or more newsletter subscribers from the database.
// An optional filter can be passed to limit the results.
func Subscribers(ctx context.Context, d types.Querier, filter *types.Filter) (subs []*Subscriber, rerr error) {
	query := `SELECT s.id, s.created_at, s.email
		FROM subscribers s %s
		ORDER BY s.created_at ASC`

	where := "1=1"
	args := []any{}
	if filter != nil {
		where = filter.Where
		args = filter.Args
	}

	query = fmt.Sprintf(query, fmt.Sprintf("WHERE %s", where))

	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.LoadError{ModelName: "subscribers", Err: err}
	}
	defer func() {
		if err = rows.Close(); err != nil {
			rerr = fmt.Errorf("failed closing subscriber rows: %w", err)
		}
	}()

	subs = make([]*Subscriber, 0)
	for rows.Next() {
		var s Subscriber
		if err = rows.Scan(&s.ID, &s.CreatedAt, &s.Email); err != nil {
			return nil, types.ScanError{ModelName: "subscriber", Err: err}
		}
		subs = append(subs, &s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating over subscriber rows: %w", err)
	}

	return subs, nil
}
