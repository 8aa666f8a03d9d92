// Package server implements the kongo web server.
package server

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path"
	"time"

	actx "go.kongo.dev/kongo/app/context"
	"go.kongo.dev/kongo/web/kontrol"
	"go.kongo.dev/kongo/web/server/kontrollers"
	"go.kongo.dev/kongo/web/server/middleware"
)

// Server is a wrapper around http.Server with some custom behavior.
type Server struct {
	*http.Server
	logger *slog.Logger
}

// New returns a new web Server instance that will listen on addr.
func New(appCtx *actx.Context, addr string) (*Server, error) {
	logger := appCtx.Logger.With("component", "web-server")

	handler, err := SetupHandlers(appCtx, logger)
	if err != nil {
		return nil, err
	}

	srv := &Server{
		Server: &http.Server{
			Handler:           handler,
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      time.Minute,
		},
		logger: logger,
	}

	return srv, nil
}

// ListenAndServe starts the HTTP server. It stores the actual listen address,
// which is convenient when the address is dynamically determined by the
// system (e.g. ':0').
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		//nolint:wrapcheck // This is fine.
		return err
	}

	s.Addr = ln.Addr().String()
	s.logger.Info("started listener", "address", s.Addr)

	//nolint:wrapcheck // This is fine.
	return s.Serve(ln)
}

// SetupHandlers configures the server HTTP handlers.
func SetupHandlers(appCtx *actx.Context, logger *slog.Logger) (http.Handler, error) {
	issuer, err := appCtx.PassportIssuer()
	if err != nil {
		return nil, fmt.Errorf("failed creating passport issuer: %w", err)
	}

	router, err := kontrol.NewRouter(logger, issuer.FromRequest,
		&kontrollers.CreateAccount{
			Addr:     "/accounts",
			Accounts: appCtx.Stores.Accounts,
		},
		&kontrollers.Login{
			Addr:     "/login",
			Accounts: appCtx.Stores.Accounts,
			Issuer:   issuer,
		},
		&kontrollers.Private{
			Addr:     "/private",
			Accounts: appCtx.Stores.Accounts,
		},
		&kontrollers.CreateBlogPost{
			Addr:      "/blog",
			Blog:      appCtx.Stores.Blog,
			Accounts:  appCtx.Stores.Accounts,
			FS:        appCtx.FS,
			CoversDir: path.Join(appCtx.DataDir, "covers"),
		},
		&kontrollers.ListBlogPosts{
			Addr: "/blog",
			Blog: appCtx.Stores.Blog,
		},
		&kontrollers.SubscribeNewsletter{
			Addr:       "/newsletter",
			Newsletter: appCtx.Stores.Newsletter,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed setting up router: %w", err)
	}

	return middleware.Chain(router, middleware.Logger(logger)), nil
}
