package types

import (
	"encoding/json"
	"net/http"
)

// Response represents the base HTTP response structure.
type Response struct {
	StatusCode int    `json:"status_code"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// NewResponse returns a new generic response with the specified status code
// and optional error.
func NewResponse(statusCode int, err error) *Response {
	resp := &Response{
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
	}

	if err != nil {
		resp.Error = err.Error()
	}

	return resp
}

// GetStatusCode returns the HTTP status code for the response.
func (r Response) GetStatusCode() int {
	return r.StatusCode
}

// JSONResponse is a successful response whose body is the payload itself,
// serialized as JSON.
type JSONResponse struct {
	statusCode int
	data       any
}

// NewJSON returns a response with the specified status code and payload.
func NewJSON(statusCode int, data any) *JSONResponse {
	return &JSONResponse{statusCode: statusCode, data: data}
}

// GetStatusCode returns the HTTP status code for the response.
func (r *JSONResponse) GetStatusCode() int {
	return r.statusCode
}

// MarshalJSON serializes only the payload, without any envelope.
func (r *JSONResponse) MarshalJSON() ([]byte, error) {
	//nolint:wrapcheck // This is wrapped by the caller.
	return json.Marshal(r.data)
}
