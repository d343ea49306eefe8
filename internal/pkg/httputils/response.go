// Package httputils provides HTTP utility functions.
package httputils

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/aegis/pkg/middleware"
	"github.com/kart-io/aegis/pkg/utils/errors"
	"github.com/kart-io/aegis/pkg/utils/response"
)

// WriteResponse writes the response to the client.
// It handles both success and error cases, ensuring consistent response format.
func WriteResponse(c *gin.Context, err error, data interface{}) {
	var resp *response.Response
	if err != nil {
		resp = response.Err(errors.FromError(err))
	} else {
		resp = response.Success(data)
	}
	resp.WithRequestID(middleware.GetRequestID(c))
	c.JSON(resp.HTTPStatus(), resp)
}
