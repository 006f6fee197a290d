// Package response provides the JSON envelopes returned by the HTTP API.
// Success bodies are resource specific; the helpers here cover the shapes that
// repeat across endpoints.
package response

import (
	"net/http"

	"github.com/kart-io/datasphere/pkg/utils/errors"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	// Error is a human-readable message
	Error string `json:"error"`

	// Code is the business error code
	Code int `json:"code"`

	status int
}

// DataResponse wraps a single resource.
type DataResponse struct {
	Data interface{} `json:"data"`
}

// MessageResponse carries a confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// Meta describes a page of a list.
type Meta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// PageResponse is a paginated list with its meta block.
type PageResponse struct {
	Data interface{} `json:"data"`
	Meta Meta        `json:"meta"`
}

// Err creates an error response from an Errno.
func Err(e *errors.Errno) *ErrorResponse {
	if e == nil {
		e = errors.ErrInternal
	}
	return &ErrorResponse{
		Error:  e.MessageEN,
		Code:   e.Code,
		status: e.HTTPStatus(),
	}
}

// HTTPStatus returns the status code the error should be written with.
// It falls back to the code category when the status is unknown.
func (r *ErrorResponse) HTTPStatus() int {
	if r.status != 0 {
		return r.status
	}
	if e, ok := errors.Lookup(r.Code); ok {
		return e.HTTPStatus()
	}

	switch errors.GetCategory(r.Code) {
	case errors.CategoryRequest:
		return http.StatusBadRequest
	case errors.CategoryAuth:
		return http.StatusUnauthorized
	case errors.CategoryPermission:
		return http.StatusForbidden
	case errors.CategoryResource:
		return http.StatusNotFound
	case errors.CategoryConflict:
		return http.StatusConflict
	case errors.CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Data wraps v as {"data": v}.
func Data(v interface{}) *DataResponse {
	return &DataResponse{Data: v}
}

// Message creates a {"message": msg} body.
func Message(msg string) *MessageResponse {
	return &MessageResponse{Message: msg}
}

// Page creates a paginated response.
func Page(list interface{}, total int64, page, limit int) *PageResponse {
	return &PageResponse{
		Data: list,
		Meta: Meta{Total: total, Page: page, Limit: limit},
	}
}
