// Package handler implements the DataSphere HTTP handlers on gin.
package handler

import (
	stderrors "errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/datasphere/internal/pkg/httputils"
	"github.com/kart-io/datasphere/pkg/security/auth"
	"github.com/kart-io/datasphere/pkg/utils/errors"
	"github.com/kart-io/datasphere/pkg/utils/validator"
)

// subject returns the uid of the authenticated caller.
func subject(c *gin.Context) string {
	return auth.SubjectFromContext(c.Request.Context())
}

// bindJSON decodes and validates the request body into req. An empty body
// leaves req zeroed so that the service reports the missing fields. On
// failure the error is written and false is returned.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil && !stderrors.Is(err, io.EOF) {
		httputils.WriteError(c, errors.ErrBadRequest.WithMessage("Invalid JSON body"))
		return false
	}

	if err := validator.Struct(req); err != nil {
		var verrs *validator.ValidationErrors
		if stderrors.As(err, &verrs) {
			httputils.WriteError(c, verrs.Errno())
			return false
		}
		httputils.WriteError(c, errors.ErrValidationFailed)
		return false
	}
	return true
}

// queryInt parses an integer query parameter. Missing or non-numeric values
// yield 0, which the pagers replace with their default.
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

// queryFloat parses an optional float query parameter.
func queryFloat(c *gin.Context, key string) *float64 {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}

func queryBool(c *gin.Context, key string) bool {
	return c.Query(key) == "true"
}
