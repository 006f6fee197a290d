// Package httputils provides HTTP utility functions.
package httputils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/logger"
	"github.com/kart-io/datasphere/pkg/utils/errors"
	"github.com/kart-io/datasphere/pkg/utils/response"
)

// WriteResponse writes data with 200, or err as an error body.
func WriteResponse(c *gin.Context, err error, data interface{}) {
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// WriteCreated writes data with 201, or err as an error body.
func WriteCreated(c *gin.Context, err error, data interface{}) {
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, data)
}

// WriteError maps err to an Errno and writes {"error", "code"}. Causes are
// logged, never sent to the client.
func WriteError(c *gin.Context, err error) {
	e := errors.FromError(err)
	resp := response.Err(e)
	status := resp.HTTPStatus()

	if status >= http.StatusInternalServerError {
		fields := []interface{}{
			"code", e.Code,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		}
		if cause := e.Unwrap(); cause != nil {
			fields = append(fields, "error", cause.Error())
		}
		logger.Errorw("request failed", fields...)
	}

	c.AbortWithStatusJSON(status, resp)
}
