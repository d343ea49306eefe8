// Package response provides unified API response structures.
// All HTTP endpoints return this envelope so clients can rely on a single
// code/message/data shape.
package response

import (
	"net/http"
	"time"

	"github.com/kart-io/aegis/pkg/utils/errors"
)

// Response is the unified API response structure.
type Response struct {
	// Code is the business error code (0 = success)
	Code int `json:"code"`

	// Message is a human-readable message
	Message string `json:"message"`

	// Data contains the response payload (nil for errors)
	Data interface{} `json:"data,omitempty"`

	// RequestID is the unique request identifier for tracing
	RequestID string `json:"request_id,omitempty"`

	// Timestamp is the response timestamp (Unix milliseconds)
	Timestamp int64 `json:"timestamp,omitempty"`

	httpCode int
}

// Success creates a successful response with data.
func Success(data interface{}) *Response {
	return &Response{
		Code:      0,
		Message:   "success",
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
		httpCode:  http.StatusOK,
	}
}

// Err creates an error response from an Errno.
func Err(e *errors.Errno) *Response {
	if e == nil {
		return Success(nil)
	}
	return &Response{
		Code:      e.Code,
		Message:   e.MessageEN,
		Timestamp: time.Now().UnixMilli(),
		httpCode:  e.HTTPStatus(),
	}
}

// WithRequestID attaches the request identifier.
func (r *Response) WithRequestID(id string) *Response {
	r.RequestID = id
	return r
}

// HTTPStatus returns the HTTP status code to write.
func (r *Response) HTTPStatus() int {
	if r.httpCode == 0 {
		return http.StatusOK
	}
	return r.httpCode
}
