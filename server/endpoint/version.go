package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/beankit/version"
)

// Version returns a handler that reports build version information.
func Version() gin.HandlerFunc {
	return func(c *gin.Context) {
		info := version.GetVersionInfo()
		c.JSON(http.StatusOK, gin.H{
			"version":    info.Version,
			"short":      info.Short(),
			"full":       info.Full(),
			"git_commit": info.GitCommit,
			"git_branch": info.GitBranch,
			"build_time": info.BuildTime,
			"go_version": info.GoVersion,
			"is_release": info.IsRelease,
			"is_dirty":   info.IsDirty,
		})
	}
}
