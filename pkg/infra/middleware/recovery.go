package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/logger"
	"github.com/kart-io/datasphere/pkg/utils/errors"
	"github.com/kart-io/datasphere/pkg/utils/response"
)

// RecoveryConfig defines the config for Recovery middleware.
type RecoveryConfig struct {
	// EnableStackTrace logs the stack trace of the panic.
	EnableStackTrace bool

	// OnPanic is called when a panic occurs.
	OnPanic func(c *gin.Context, err interface{}, stack []byte)
}

// DefaultRecoveryConfig is the default Recovery middleware config.
var DefaultRecoveryConfig = RecoveryConfig{
	EnableStackTrace: true,
}

// Recovery returns a middleware that recovers from panics.
// It converts panics to JSON error responses using the error code system.
func Recovery() gin.HandlerFunc {
	return RecoveryWithConfig(DefaultRecoveryConfig)
}

// RecoveryWithConfig returns a Recovery middleware with custom config.
func RecoveryWithConfig(config RecoveryConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			stack := debug.Stack()

			if config.OnPanic != nil {
				config.OnPanic(c, r, stack)
			}

			fields := []interface{}{
				"panic", fmt.Sprintf("%v", r),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"request_id", GetRequestID(c.Request.Context()),
			}
			if config.EnableStackTrace {
				fields = append(fields, "stack", string(stack))
			}
			logger.Errorw("panic recovered", fields...)

			// The client sees the generic internal error, never the panic value.
			resp := response.Err(errors.ErrPanic)
			c.AbortWithStatusJSON(resp.HTTPStatus(), resp)
		}()
		c.Next()
	}
}
