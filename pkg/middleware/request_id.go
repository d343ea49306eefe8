// Package middleware provides the common Gin middleware the Aegis
// servers install on every route group.
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/aegis/pkg/utils/id"
)

// HeaderXRequestID is the request ID header name.
const HeaderXRequestID = "X-Request-ID"

const requestIDKey = "request_id"

// RequestID returns middleware that tags every request with a unique
// identifier. An inbound X-Request-ID header is preserved so IDs
// propagate across services; otherwise a new ULID is generated. The ID
// is echoed on the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderXRequestID)
		if requestID == "" {
			requestID = id.NewULID()
		}
		c.Set(requestIDKey, requestID)
		c.Header(HeaderXRequestID, requestID)
		c.Next()
	}
}

// GetRequestID returns the request ID stored by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
