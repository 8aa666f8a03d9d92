package kontrollers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nrednav/cuid2"

	"go.kongo.dev/kongo/db"
	"go.kongo.dev/kongo/db/models"
	dbtypes "go.kongo.dev/kongo/db/types"
	"go.kongo.dev/kongo/web/kontrol"
	"go.kongo.dev/kongo/web/server/types"
)

// SubscribeNewsletter records a newsletter subscription. It accepts a form
// body with a single email field.
type SubscribeNewsletter struct {
	Addr       string
	Newsletter *db.DB
}

var _ kontrol.Kontroller = (*SubscribeNewsletter)(nil)

// Address returns the request path this kontroller serves.
func (k *SubscribeNewsletter) Address() string { return k.Addr }

// Method returns the HTTP method this kontroller serves.
func (k *SubscribeNewsletter) Method() string { return http.MethodPost }

// Kontrol handles a newsletter subscription request.
func (k *SubscribeNewsletter) Kontrol(kg *kontrol.Kong) kontrol.Response {
	email, err := formValue(kg.Request, "email")
	if err != nil {
		return types.NewBadRequestError(err.Error())
	}

	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return types.NewBadRequestError("a valid email address must be provided")
	}

	sub := &models.Subscriber{ID: cuid2.Generate(), Email: email}
	err = k.Newsletter.Do(func(ctx context.Context, q dbtypes.Querier) error {
		return sub.Save(ctx, q)
	})
	if err != nil {
		var dup *dbtypes.DuplicateError
		if errors.As(err, &dup) {
			return types.NewBadRequestError(dup.Error())
		}

		slog.Error("failed subscribing to newsletter", "email", email, "error", err.Error())
		return types.NewInternalError("internal server error")
	}

	return types.NewJSON(http.StatusCreated, map[string]string{
		"email": sub.Email,
	})
}
