package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/version"
)

// VersionPath is where the build information is served.
const VersionPath = "/version"

// VersionResponse represents the version endpoint response.
type VersionResponse struct {
	ServiceName string `json:"service_name,omitempty"`
	GitVersion  string `json:"git_version"`
	GitCommit   string `json:"git_commit,omitempty"`
	BuildDate   string `json:"build_date,omitempty"`
	GoVersion   string `json:"go_version,omitempty"`
	Platform    string `json:"platform,omitempty"`
}

// RegisterVersionRoutes registers the version endpoint. With hideDetails only
// the git version is reported.
func RegisterVersionRoutes(r gin.IRoutes, hideDetails bool) {
	r.GET(VersionPath, func(c *gin.Context) {
		info := version.Get()

		resp := VersionResponse{
			GitVersion: info.GitVersion,
		}

		// 根据 hideDetails 决定是否显示详细信息
		if !hideDetails {
			resp.ServiceName = info.ServiceName
			resp.GitCommit = info.GitCommit
			resp.BuildDate = info.BuildDate
			resp.GoVersion = info.GoVersion
			resp.Platform = info.Platform
		}

		c.JSON(http.StatusOK, resp)
	})
}
