// Package middleware provides HTTP authentication middleware for Gin.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/aegis/pkg/security/auth"
	"github.com/kart-io/aegis/pkg/security/auth/jwt"
	"github.com/kart-io/aegis/pkg/utils/errors"
	"github.com/kart-io/aegis/pkg/utils/response"
)

const bearerPrefix = "Bearer "

// Authn returns middleware that validates the Authorization header and
// stores the authenticated identity on the request context. Requests
// without a valid token are rejected with 401.
func Authn(tokens *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			abort(c, errors.ErrUnauthorized)
			return
		}

		claims, err := tokens.ParseToken(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			abort(c, err)
			return
		}

		identity := &auth.Identity{Subject: claims.Subject, Domain: claims.Domain}
		c.Request = c.Request.WithContext(auth.ContextWithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	resp := response.Err(errors.FromError(err))
	c.AbortWithStatusJSON(resp.HTTPStatus(), resp)
}
