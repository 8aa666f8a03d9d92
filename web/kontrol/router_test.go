package kontrol

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.kongo.dev/kongo/web/kpassport"
	"go.kongo.dev/kongo/web/server/types"
)

type stubKontroller struct {
	method  string
	address string
	kontrol func(k *Kong) Response
}

func (s *stubKontroller) Address() string { return s.address }

func (s *stubKontroller) Method() string { return s.method }

func (s *stubKontroller) Kontrol(k *Kong) Response { return s.kontrol(k) }

func noPassport(*http.Request) (*kpassport.Passport, error) {
	return nil, errors.New("no passport cookie")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRouterDuplicateRegistration(t *testing.T) {
	t.Parallel()

	ok := func(*Kong) Response { return types.NewJSON(http.StatusOK, nil) }
	_, err := NewRouter(testLogger(), noPassport,
		&stubKontroller{method: http.MethodGet, address: "/a", kontrol: ok},
		&stubKontroller{method: http.MethodPost, address: "/a", kontrol: ok},
		&stubKontroller{method: http.MethodGet, address: "/a", kontrol: ok},
	)
	assert.EqualError(t, err, "duplicate kontroller registration for GET /a")
}

func TestRouterDispatch(t *testing.T) {
	t.Parallel()

	router, err := NewRouter(testLogger(), noPassport,
		&stubKontroller{
			method: http.MethodGet, address: "/hello",
			kontrol: func(k *Kong) Response {
				assert.Nil(t, k.Passport)
				return types.NewJSON(http.StatusOK, map[string]string{"message": "hello"})
			},
		},
		&stubKontroller{
			method: http.MethodGet, address: "/panic",
			kontrol: func(*Kong) Response { panic("boom") },
		},
	)
	require.NoError(t, err)

	tests := []struct {
		name          string
		method        string
		target        string
		expStatusCode int
		expBody       string
	}{
		{
			"ok", http.MethodGet, "/hello", http.StatusOK,
			`{"message":"hello"}`,
		},
		{
			"unknown_address", http.MethodGet, "/nope", http.StatusNotFound,
			`{"status_code":404,"status":"Not Found","error":"no such route"}`,
		},
		{
			"method_mismatch", http.MethodPost, "/hello", http.StatusNotFound,
			`{"status_code":404,"status":"Not Found","error":"no such route"}`,
		},
		{
			"panic_recovered", http.MethodGet, "/panic", http.StatusInternalServerError,
			`{"status_code":500,"status":"Internal Server Error","error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))

			assert.Equal(t, tt.expStatusCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.expBody, rec.Body.String())
		})
	}
}

func TestRouterAttachesPassport(t *testing.T) {
	t.Parallel()

	decode := func(*http.Request) (*kpassport.Passport, error) {
		return &kpassport.Passport{Username: "alice"}, nil
	}

	router, err := NewRouter(testLogger(), decode,
		&stubKontroller{
			method: http.MethodGet, address: "/whoami",
			kontrol: func(k *Kong) Response {
				require.NotNil(t, k.Passport)
				return types.NewJSON(http.StatusOK, map[string]string{
					"username": k.Passport.Username,
				})
			},
		},
	)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alice", body["username"])
}

func TestRouterSetsCookies(t *testing.T) {
	t.Parallel()

	router, err := NewRouter(testLogger(), noPassport,
		&stubKontroller{
			method: http.MethodGet, address: "/cookie",
			kontrol: func(k *Kong) Response {
				k.SetCookie(&http.Cookie{Name: "biscuit", Value: "1"})
				return types.NewJSON(http.StatusOK, nil)
			},
		},
	)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cookie", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "biscuit", cookies[0].Name)
}
