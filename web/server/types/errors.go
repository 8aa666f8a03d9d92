package types

import "net/http"

// The error responses below form a closed set: every kontroller failure is
// expressed as exactly one of them, with a stable status code and message
// shape across all endpoints.

// BadRequestError is the 400 response for malformed input or a domain rule
// violation, such as a duplicate account username.
type BadRequestError struct {
	Response
}

// NewBadRequestError returns a BadRequestError carrying the given message.
func NewBadRequestError(message string) *BadRequestError {
	resp := NewResponse(http.StatusBadRequest, nil)
	resp.Error = message

	return &BadRequestError{Response: *resp}
}

// NotFoundError is the 404 response produced by the router when no
// kontroller matches the request.
type NotFoundError struct {
	Response
}

// NewNotFoundError returns a NotFoundError carrying the given message.
func NewNotFoundError(message string) *NotFoundError {
	resp := NewResponse(http.StatusNotFound, nil)
	resp.Error = message

	return &NotFoundError{Response: *resp}
}

// InternalError is the 500 response for unexpected faults, including store
// and passport lookup failures. Internal detail is never surfaced in it.
type InternalError struct {
	Response
}

// NewInternalError returns an InternalError carrying the given message.
func NewInternalError(message string) *InternalError {
	resp := NewResponse(http.StatusInternalServerError, nil)
	resp.Error = message

	return &InternalError{Response: *resp}
}

// UnauthorizedError is the 401 response for a request lacking the required
// passport or privilege.
type UnauthorizedError struct {
	Response
}

// NewUnauthorizedError returns an UnauthorizedError carrying the given message.
func NewUnauthorizedError(message string) *UnauthorizedError {
	resp := NewResponse(http.StatusUnauthorized, nil)
	resp.Error = message

	return &UnauthorizedError{Response: *resp}
}
