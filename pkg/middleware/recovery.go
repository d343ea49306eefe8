package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/aegis/pkg/utils/errors"
	"github.com/kart-io/aegis/pkg/utils/response"
)

// Recovery returns middleware that converts panics into a 500 response
// with the unified envelope. The panic value and stack are logged, never
// returned to the client.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorw("panic recovered",
					"panic", r,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"request_id", GetRequestID(c),
					"stack", string(debug.Stack()),
				)
				resp := response.Err(errors.ErrInternal).WithRequestID(GetRequestID(c))
				c.AbortWithStatusJSON(resp.HTTPStatus(), resp)
			}
		}()
		c.Next()
	}
}
