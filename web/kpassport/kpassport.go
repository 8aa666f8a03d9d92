// Package kpassport implements the passport token: an opaque, HMAC-signed
// value that represents an already-authenticated account for the lifetime of
// a single request. The token is issued at login and transported in a cookie;
// a valid token resolves to exactly one account username, and verification
// fails explicitly otherwise.
package kpassport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mr-tron/base58"

	"go.kongo.dev/kongo/crypto"
)

// CookieName is the name of the cookie the passport token travels in.
const CookieName = "kpassport"

// DefaultExpiration is how long issued passports stay valid unless
// configured otherwise.
const DefaultExpiration = 24 * time.Hour

const macSize = 32

// ErrInvalidToken is returned when a provided token is invalid (malformed,
// tampered with, expired, etc.).
var ErrInvalidToken = errors.New("invalid passport token")

// Passport identifies the account a token belongs to. It serves as the
// signed token payload, and a decoded copy is attached to each request the
// token arrives with; that copy is owned by the request and never persisted.
type Passport struct {
	Username  string    `json:"username"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Issuer creates and verifies passport tokens using a shared secret key.
type Issuer struct {
	Key        *[32]byte
	Expiration time.Duration
	TimeNow    func() time.Time
}

// NewIssuer returns an Issuer with the given signing key.
func NewIssuer(key *[32]byte, expiration time.Duration, timeNow func() time.Time) *Issuer {
	if expiration <= 0 {
		expiration = DefaultExpiration
	}
	if timeNow == nil {
		timeNow = time.Now
	}
	return &Issuer{Key: key, Expiration: expiration, TimeNow: timeNow}
}

// Issue creates a signed token for the given account username. The token is
// the base58 encoding of a 32-byte HMAC followed by the JSON payload it
// authenticates.
func (i *Issuer) Issue(username string) (string, error) {
	if username == "" {
		return "", errors.New("the account username must be set")
	}

	now := i.TimeNow().UTC()
	payload, err := json.Marshal(Passport{
		Username:  username,
		IssuedAt:  now,
		ExpiresAt: now.Add(i.Expiration),
	})
	if err != nil {
		return "", fmt.Errorf("failed serializing passport payload: %w", err)
	}

	mac := crypto.GenerateHMAC(payload, i.Key)
	return base58.Encode(append(mac, payload...)), nil
}

// Verify parses and authenticates a token, returning the passport it
// carries. It returns ErrInvalidToken for any malformed, forged or expired
// token.
func (i *Issuer) Verify(token string) (*Passport, error) {
	if len(token) == 0 {
		return nil, ErrInvalidToken
	}

	dec, err := base58.Decode(token)
	if err != nil {
		return nil, fmt.Errorf("failed decoding passport token: %w", err)
	}
	if len(dec) <= macSize {
		return nil, ErrInvalidToken
	}

	mac, payload := dec[:macSize], dec[macSize:]
	if !crypto.CheckHMAC(payload, mac, i.Key) {
		return nil, ErrInvalidToken
	}

	var p Passport
	if err = json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed parsing passport payload: %w", err)
	}

	if p.Username == "" || !i.TimeNow().UTC().Before(p.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	return &p, nil
}

// FromRequest extracts and verifies a passport from the request cookie. Its
// signature matches kontrol.PassportDecoder, so an Issuer can be plugged
// directly into the router.
func (i *Issuer) FromRequest(r *http.Request) (*Passport, error) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil, fmt.Errorf("no passport cookie: %w", err)
	}

	return i.Verify(c.Value)
}

// Cookie wraps an issued token in the cookie that transports it.
func (i *Issuer) Cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(i.Expiration / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
