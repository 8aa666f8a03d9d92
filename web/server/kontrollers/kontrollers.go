// Package kontrollers contains the concrete kontroller implementations
// served by the web server. Each one binds a single (method, address) route;
// protected ones evaluate the authorization gate before serving.
package kontrollers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxBodyReadSize = 1024 * 1024 // 1MiB

// decodeJSON decodes the request body into dst, enforcing a maximum body
// size limit to prevent resource exhaustion.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("empty request body")
	}

	limitedReader := io.LimitReader(r.Body, maxBodyReadSize)
	if err := json.NewDecoder(limitedReader).Decode(dst); err != nil {
		return fmt.Errorf("failed decoding request body into JSON: %w", err)
	}

	return nil
}

// formValue returns a named field from a multipart or URL-encoded form body.
func formValue(r *http.Request, name string) (string, error) {
	if err := parseForm(r); err != nil {
		return "", err
	}

	return r.FormValue(name), nil
}

func parseForm(r *http.Request) error {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		err = r.ParseMultipartForm(maxBodyReadSize)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return fmt.Errorf("failed parsing form body: %w", err)
	}

	return nil
}
