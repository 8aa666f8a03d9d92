package kontrol

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"go.kongo.dev/kongo/web/server/types"
)

// Router dispatches incoming requests to registered kontrollers. It is built
// once, before serving begins, and holds no mutable state afterwards, so it
// is safe for concurrent use.
type Router struct {
	kontrollers map[route]Kontroller
	decode      PassportDecoder
	logger      *slog.Logger
}

type route struct {
	method  string
	address string
}

var _ http.Handler = (*Router)(nil)

// NewRouter registers the given kontrollers and returns an immutable router.
// Matching is exact on both method and address; no path parameters or
// wildcards. Registering two kontrollers for the same (method, address) pair
// is an error.
func NewRouter(logger *slog.Logger, decode PassportDecoder, kontrollers ...Kontroller) (*Router, error) {
	rt := &Router{
		kontrollers: make(map[route]Kontroller, len(kontrollers)),
		decode:      decode,
		logger:      logger,
	}

	for _, k := range kontrollers {
		rte := route{method: k.Method(), address: k.Address()}
		if _, exists := rt.kontrollers[rte]; exists {
			return nil, fmt.Errorf("duplicate kontroller registration for %s %s",
				rte.method, rte.address)
		}
		rt.kontrollers[rte] = k
	}

	return rt, nil
}

// ServeHTTP matches the request to a kontroller and writes the response it
// produces. On a miss it writes a NotFound response.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	k, ok := rt.kontrollers[route{method: r.Method, address: r.URL.Path}]
	if !ok {
		rt.write(w, types.NewNotFoundError("no such route"))
		return
	}

	kong := &Kong{Request: r}
	if p, err := rt.decode(r); err == nil {
		kong.Passport = p
	} else {
		// A request without a valid passport is simply unauthenticated;
		// whether that matters is the kontroller's decision.
		rt.logger.Debug("no passport attached to request",
			"method", r.Method, "address", r.URL.Path, "error", err.Error())
	}

	resp := rt.kontrol(k, kong)

	for _, c := range kong.cookies {
		http.SetCookie(w, c)
	}
	rt.write(w, resp)
}

// kontrol invokes the kontroller, converting a panic into an internal error
// response so a handler failure can never take down the serving loop.
func (rt *Router) kontrol(k Kontroller, kong *Kong) (resp Response) {
	defer func() {
		if rec := recover(); rec != nil {
			rt.logger.Error("kontroller panicked",
				"method", k.Method(), "address", k.Address(), "panic", rec)
			resp = types.NewInternalError("internal server error")
		}
	}()

	return k.Kontrol(kong)
}

func (rt *Router) write(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.GetStatusCode())

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		rt.logger.Error("failed writing response", "error", err.Error())
	}
}
