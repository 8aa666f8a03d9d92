package kpassport

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.kongo.dev/kongo/crypto"
)

var timeNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func timeNowFn() time.Time {
	return timeNow
}

func TestIssueVerifyRoundtrip(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer(crypto.NewHMACKey(), time.Hour, timeNowFn)

	token, err := issuer.Issue("alice")
	require.NoError(t, err)

	p, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, timeNow, p.IssuedAt)
	assert.Equal(t, timeNow.Add(time.Hour), p.ExpiresAt)
}

func TestIssueEmptyUsername(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer(crypto.NewHMACKey(), time.Hour, timeNowFn)
	_, err := issuer.Issue("")
	assert.EqualError(t, err, "the account username must be set")
}

func TestVerifyInvalid(t *testing.T) {
	t.Parallel()

	key := crypto.NewHMACKey()
	issuer := NewIssuer(key, time.Hour, timeNowFn)

	token, err := issuer.Issue("alice")
	require.NoError(t, err)

	forged := func() string {
		payload, merr := json.Marshal(Passport{
			Username:  "mallory",
			IssuedAt:  timeNow,
			ExpiresAt: timeNow.Add(time.Hour),
		})
		require.NoError(t, merr)
		mac := crypto.GenerateHMAC([]byte("something else"), key)
		return base58.Encode(append(mac, payload...))
	}()

	tests := []struct {
		name   string
		issuer *Issuer
		token  string
	}{
		{"empty", issuer, ""},
		{"not_base58", issuer, "0OIl"},
		{"too_short", issuer, base58.Encode([]byte("short"))},
		{"forged_mac", issuer, forged},
		{"wrong_key", NewIssuer(crypto.NewHMACKey(), time.Hour, timeNowFn), token},
		{
			"expired", NewIssuer(key, time.Hour,
				func() time.Time { return timeNow.Add(2 * time.Hour) }),
			token,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, verr := tt.issuer.Verify(tt.token)
			assert.Error(t, verr)
		})
	}
}

func TestVerifyTamperedPayload(t *testing.T) {
	t.Parallel()

	key := crypto.NewHMACKey()
	issuer := NewIssuer(key, time.Hour, timeNowFn)

	token, err := issuer.Issue("alice")
	require.NoError(t, err)

	dec, err := base58.Decode(token)
	require.NoError(t, err)
	dec[len(dec)-1] ^= 0xff

	_, err = issuer.Verify(base58.Encode(dec))
	assert.Error(t, err)
}

func TestCookie(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer(crypto.NewHMACKey(), time.Hour, timeNowFn)
	c := issuer.Cookie("sometoken")

	assert.Equal(t, CookieName, c.Name)
	assert.Equal(t, "sometoken", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 3600, c.MaxAge)
	assert.True(t, c.HttpOnly)
}
