package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/datasphere/pkg/component/storage"
)

// Probe paths.
const (
	HealthPath = "/health"
	ReadyPath  = "/ready"
)

// readyTimeout bounds the storage pings of one readiness probe.
const readyTimeout = 3 * time.Second

// HealthStatus represents the health status.
type HealthStatus string

const (
	// HealthStatusOK indicates the service is healthy.
	HealthStatusOK HealthStatus = "ok"
	// HealthStatusUnavailable indicates a dependency is down.
	HealthStatusUnavailable HealthStatus = "unavailable"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status HealthStatus           `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult represents an individual health check result.
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Latency string       `json:"latency,omitempty"`
	Message string       `json:"message,omitempty"`
}

// HealthChecker reports the health of every storage client.
// *storage.Manager implements it.
type HealthChecker interface {
	HealthCheckAll(ctx context.Context) map[string]storage.HealthStatus
}

// RegisterHealthRoutes registers the liveness and readiness probes.
//
// /health answers as long as the process serves requests. /ready pings every
// storage client and answers 503 when one of them is down.
func RegisterHealthRoutes(r gin.IRoutes, checker HealthChecker) {
	r.GET(HealthPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{Status: HealthStatusOK})
	})

	r.GET(ReadyPath, func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()

		resp := Check(ctx, checker)
		status := http.StatusOK
		if resp.Status != HealthStatusOK {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, resp)
	})
}

// Check runs every storage health check and folds the results.
func Check(ctx context.Context, checker HealthChecker) HealthResponse {
	resp := HealthResponse{Status: HealthStatusOK}
	if checker == nil {
		return resp
	}

	statuses := checker.HealthCheckAll(ctx)
	if len(statuses) == 0 {
		return resp
	}

	resp.Checks = make(map[string]CheckResult, len(statuses))
	for name, s := range statuses {
		result := CheckResult{Status: HealthStatusOK, Latency: s.Latency.String()}
		if !s.Healthy {
			resp.Status = HealthStatusUnavailable
			result.Status = HealthStatusUnavailable
			if s.Error != nil {
				result.Message = s.Error.Error()
			}
		}
		resp.Checks[name] = result
	}
	return resp
}
