// Package kontrol implements the request dispatch core: the Kontroller
// contract, the per-request Kong context, and the Router that binds exact
// (method, address) pairs to kontrollers.
package kontrol

import (
	"net/http"

	"go.kongo.dev/kongo/web/kpassport"
)

// Response is the value a kontroller invocation produces. Every invocation
// yields exactly one Response, which the router serializes as JSON.
type Response interface {
	GetStatusCode() int
}

// Kontroller binds one HTTP method and path to a handling function. Any
// number of concrete variants implement it uniformly; the router never
// branches on concrete type.
type Kontroller interface {
	// Address returns the exact request path this kontroller serves.
	Address() string
	// Method returns the HTTP method this kontroller serves.
	Method() string
	// Kontrol handles a dispatched request.
	Kontrol(k *Kong) Response
}

// Kong is the per-request context passed to a kontroller. It is created
// fresh for every dispatched request, owned exclusively by that invocation,
// and never persisted.
type Kong struct {
	// Request is the raw incoming request.
	Request *http.Request
	// Passport is the verified session identity attached to the request, or
	// nil if the request is unauthenticated.
	Passport *kpassport.Passport

	cookies []*http.Cookie
}

// SetCookie adds a cookie to be sent with the response.
func (k *Kong) SetCookie(c *http.Cookie) {
	k.cookies = append(k.cookies, c)
}

// PassportDecoder extracts a passport from request state. A returned error
// means no passport could be established, which leaves the request
// unauthenticated; it never rejects the request.
type PassportDecoder func(*http.Request) (*kpassport.Passport, error)
