package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// NoStore marks API answers as uncacheable. Workspace snapshots are per
// session and change after every write.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
		}
		c.Next()
	}
}
