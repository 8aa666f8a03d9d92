package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	actx "go.kongo.dev/kongo/app/context"
	"go.kongo.dev/kongo/crypto"
	"go.kongo.dev/kongo/db"
	"go.kongo.dev/kongo/db/models"
	"go.kongo.dev/kongo/db/queries"
	dbtypes "go.kongo.dev/kongo/db/types"
	"go.kongo.dev/kongo/web/kpassport"
)

var timeNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func timeNowFn() time.Time {
	return timeNow
}

func openStore(t *testing.T, store string) *db.DB {
	t.Helper()

	// A unique name per store, to avoid clashing of in-memory SQLite DBs.
	rndName, err := crypto.RandomData(8)
	require.NoError(t, err)

	d, err := db.Open(context.Background(), store,
		fmt.Sprintf("file:%s-%x?mode=memory&cache=shared", store, rndName), timeNowFn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	return d
}

func newTestCtx(t *testing.T) *actx.Context {
	t.Helper()

	stores := &db.Stores{
		Accounts:   openStore(t, db.StoreAccounts),
		Blog:       openStore(t, db.StoreBlog),
		Newsletter: openStore(t, db.StoreNewsletter),
	}
	require.NoError(t, stores.Init())

	key := crypto.NewHMACKey()
	err := stores.Accounts.Do(func(ctx context.Context, q dbtypes.Querier) error {
		return queries.SetMeta(ctx, q, "test", key[:])
	})
	require.NoError(t, err)

	return &actx.Context{
		Ctx:     context.Background(),
		FS:      memoryfs.New(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		TimeNow: timeNowFn,
		Stores:  stores,
		DataDir: "/data",
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *http.Client, *actx.Context) {
	t.Helper()

	appCtx := newTestCtx(t)
	handler, err := SetupHandlers(appCtx, appCtx.Logger)
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return srv, &http.Client{Jar: jar}, appCtx
}

func postJSON(t *testing.T, client *http.Client, url string, body map[string]string) (int, map[string]any) {
	t.Helper()

	reqBody, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := client.Post(url, "application/json", bytes.NewReader(reqBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	return resp.StatusCode, decodeBody(t, resp.Body)
}

func decodeBody(t *testing.T, r io.Reader) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.NewDecoder(r).Decode(&body))

	return body
}

func TestServerAccountsAndPrivate(t *testing.T) {
	t.Parallel()

	srv, client, appCtx := newTestServer(t)

	// The protected resource rejects unauthenticated requests.
	resp, err := client.Get(srv.URL + "/private")
	require.NoError(t, err)
	body := decodeBody(t, resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "unauthorized", body["error"])

	// The first account registered becomes an admin.
	code, body := postJSON(t, client, srv.URL+"/accounts",
		map[string]string{"username": "admin", "password": "1234567890"})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "admin", body["username"])

	// Duplicate registration is rejected.
	code, body = postJSON(t, client, srv.URL+"/accounts",
		map[string]string{"username": "admin", "password": "1234567890"})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["error"], "already exists")

	// Too short passwords are rejected.
	code, _ = postJSON(t, client, srv.URL+"/accounts",
		map[string]string{"username": "shorty", "password": "123"})
	require.Equal(t, http.StatusBadRequest, code)

	// Wrong credentials fail identically for unknown accounts and wrong
	// passwords.
	code, body = postJSON(t, client, srv.URL+"/login",
		map[string]string{"username": "admin", "password": "wrongpassword"})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "wrong username or password", body["error"])

	code, body = postJSON(t, client, srv.URL+"/login",
		map[string]string{"username": "nobody", "password": "1234567890"})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "wrong username or password", body["error"])

	// Successful login sets the passport cookie.
	code, body = postJSON(t, client, srv.URL+"/login",
		map[string]string{"username": "admin", "password": "1234567890"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "admin", body["username"])

	srvURL, err := url.Parse(srv.URL)
	require.NoError(t, err)
	cookies := client.Jar.Cookies(srvURL)
	require.Len(t, cookies, 1)
	assert.Equal(t, kpassport.CookieName, cookies[0].Name)

	// An admin passport unlocks the protected resource.
	resp, err = client.Get(srv.URL + "/private")
	require.NoError(t, err)
	body = decodeBody(t, resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hello World", body["message"])

	// Accounts registered later are plain members, and are rejected.
	code, _ = postJSON(t, client, srv.URL+"/accounts",
		map[string]string{"username": "bob", "password": "0987654321"})
	require.Equal(t, http.StatusCreated, code)

	code, _ = postJSON(t, client, srv.URL+"/login",
		map[string]string{"username": "bob", "password": "0987654321"})
	require.Equal(t, http.StatusOK, code)

	resp, err = client.Get(srv.URL + "/private")
	require.NoError(t, err)
	body = decodeBody(t, resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "unauthorized", body["error"])

	// Revoking admin privileges takes effect on the next request.
	err = appCtx.Stores.Accounts.Do(func(ctx context.Context, q dbtypes.Querier) error {
		acct := &models.Account{Username: "admin", Admin: false}
		return acct.Save(ctx, q, true)
	})
	require.NoError(t, err)

	code, _ = postJSON(t, client, srv.URL+"/login",
		map[string]string{"username": "admin", "password": "1234567890"})
	require.Equal(t, http.StatusOK, code)

	resp, err = client.Get(srv.URL + "/private")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServerBlog(t *testing.T) {
	t.Parallel()

	srv, client, _ := newTestServer(t)

	// An empty blog lists as an empty collection.
	resp, err := client.Get(srv.URL + "/blog")
	require.NoError(t, err)
	rawBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, "[]", string(rawBody))

	// Publishing requires an admin passport.
	code, _ := postBlogPost(t, client, srv.URL, "First post", "hello", nil)
	require.Equal(t, http.StatusUnauthorized, code)

	code, _ = postJSON(t, client, srv.URL+"/accounts",
		map[string]string{"username": "admin", "password": "1234567890"})
	require.Equal(t, http.StatusCreated, code)
	code, _ = postJSON(t, client, srv.URL+"/login",
		map[string]string{"username": "admin", "password": "1234567890"})
	require.Equal(t, http.StatusOK, code)

	cover := []byte("\x89PNG fake image data")
	code, body := postBlogPost(t, client, srv.URL, "First post", "hello", cover)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "First post", body["title"])
	assert.Equal(t, "admin", body["author"])
	assert.NotEmpty(t, body["id"])
	assert.Contains(t, body["cover"], "/data/covers/")

	// Posts without a title are rejected.
	code, _ = postBlogPost(t, client, srv.URL, "", "hello", nil)
	require.Equal(t, http.StatusBadRequest, code)

	// Listing is public.
	jarless := &http.Client{}
	resp, err = jarless.Get(srv.URL + "/blog")
	require.NoError(t, err)
	var posts []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&posts))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, posts, 1)
	assert.Equal(t, "First post", posts[0]["title"])
}

func postBlogPost(t *testing.T, client *http.Client, srvURL, title, content string, cover []byte) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", title))
	require.NoError(t, mw.WriteField("subtitle", "a subtitle"))
	require.NoError(t, mw.WriteField("content", content))
	if cover != nil {
		fw, err := mw.CreateFormFile("cover", "cover.png")
		require.NoError(t, err)
		_, err = fw.Write(cover)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	resp, err := client.Post(srvURL+"/blog", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	return resp.StatusCode, decodeBody(t, resp.Body)
}

func TestServerNewsletter(t *testing.T) {
	t.Parallel()

	srv, client, _ := newTestServer(t)

	subscribe := func(email string) (int, map[string]any) {
		resp, err := client.Post(srv.URL+"/newsletter",
			"application/x-www-form-urlencoded",
			strings.NewReader(url.Values{"email": {email}}.Encode()))
		require.NoError(t, err)
		defer resp.Body.Close()

		return resp.StatusCode, decodeBody(t, resp.Body)
	}

	code, body := subscribe("reader@example.com")
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "reader@example.com", body["email"])

	code, body = subscribe("reader@example.com")
	require.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["error"], "already exists")

	code, _ = subscribe("not-an-email")
	require.Equal(t, http.StatusBadRequest, code)
}
