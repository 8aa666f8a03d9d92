package db

import (
	"context"
	"errors"
	"path/filepath"
	"time"
)

// Store names, used to select migrations and database filenames.
const (
	StoreAccounts   = "accounts"
	StoreBlog       = "blog"
	StoreNewsletter = "newsletter"
)

// Stores holds the handles to the three backing stores. They are constructed
// once at process start and shared by reference with every kontroller that
// needs them.
type Stores struct {
	Accounts   *DB
	Blog       *DB
	Newsletter *DB
}

// OpenStores opens all backing stores under dataDir.
func OpenStores(ctx context.Context, dataDir string, timeNow func() time.Time) (*Stores, error) {
	s := &Stores{}
	for _, st := range []struct {
		name string
		dst  **DB
	}{
		{StoreAccounts, &s.Accounts},
		{StoreBlog, &s.Blog},
		{StoreNewsletter, &s.Newsletter},
	} {
		d, err := Open(ctx, st.name, filepath.Join(dataDir, st.name+".db"), timeNow)
		if err != nil {
			return nil, err
		}
		*st.dst = d
	}

	return s, nil
}

// Init applies pending schema migrations on all stores.
func (s *Stores) Init() error {
	for _, d := range []*DB{s.Accounts, s.Blog, s.Newsletter} {
		if err := d.Init(); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all store connections.
func (s *Stores) Close() error {
	var errs []error
	for _, d := range []*DB{s.Accounts, s.Blog, s.Newsletter} {
		if d != nil {
			errs = append(errs, d.Close())
		}
	}
	return errors.Join(errs...)
}
