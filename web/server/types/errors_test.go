package types

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		resp          interface{ GetStatusCode() int }
		expStatusCode int
		expBody       string
	}{
		{
			"bad_request", NewBadRequestError("wrong username or password"),
			http.StatusBadRequest,
			`{"status_code":400,"status":"Bad Request","error":"wrong username or password"}`,
		},
		{
			"not_found", NewNotFoundError("no such route"),
			http.StatusNotFound,
			`{"status_code":404,"status":"Not Found","error":"no such route"}`,
		},
		{
			"internal", NewInternalError("internal server error"),
			http.StatusInternalServerError,
			`{"status_code":500,"status":"Internal Server Error","error":"internal server error"}`,
		},
		{
			"unauthorized", NewUnauthorizedError("unauthorized"),
			http.StatusUnauthorized,
			`{"status_code":401,"status":"Unauthorized","error":"unauthorized"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expStatusCode, tt.resp.GetStatusCode())

			body, err := json.Marshal(tt.resp)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expBody, string(body))
		})
	}
}
