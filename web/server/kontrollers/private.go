package kontrollers

import (
	"net/http"

	"go.kongo.dev/kongo/db"
	"go.kongo.dev/kongo/web/kontrol"
	"go.kongo.dev/kongo/web/server/auth"
	"go.kongo.dev/kongo/web/server/types"
)

// Private serves a resource reserved for administrators. It exists mostly to
// verify a deployment's authorization setup end to end.
type Private struct {
	Addr     string
	Accounts *db.DB
}

var _ kontrol.Kontroller = (*Private)(nil)

// Address returns the request path this kontroller serves.
func (k *Private) Address() string { return k.Addr }

// Method returns the HTTP method this kontroller serves.
func (k *Private) Method() string { return http.MethodGet }

// Kontrol handles a protected-resource request.
func (k *Private) Kontrol(kg *kontrol.Kong) kontrol.Response {
	return auth.Gate(k.Accounts, kg, func() kontrol.Response {
		return types.NewJSON(http.StatusOK, map[string]string{
			"message": "Hello World",
		})
	})
}
