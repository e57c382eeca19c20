package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/speechkit/version"
)

// startTime anchors the uptime figure reported by Info.
var startTime = time.Now()

// buildFields renders the version record as response fields.
func buildFields() gin.H {
	v := version.GetVersionInfo()
	return gin.H{
		"version":    v.Version,
		"git_commit": v.GitCommit,
		"git_branch": v.GitBranch,
		"build_time": v.BuildTime,
		"go_version": v.GoVersion,
		"is_release": v.IsRelease,
		"is_dirty":   v.IsDirty,
	}
}

// Version reports the build's version record.
func Version() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, buildFields())
	}
}

// Info reports the service identity, build details and uptime.
func Info(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		fields := buildFields()
		fields["service"] = serviceName
		fields["uptime"] = time.Since(startTime).String()
		fields["timestamp"] = timestamp()
		c.JSON(http.StatusOK, fields)
	}
}
