// Package middleware provides gin middleware for the edge-rag HTTP surface.
package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// CORS reflects the request Origin when it matches one of the allowed
// patterns. Non-matching origins get no CORS headers at all, which is what
// makes browsers reject the response. OPTIONS preflights are answered with
// 204 regardless of origin.
func CORS(patterns []*regexp.Regexp) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		if origin != "" && originAllowed(origin, patterns) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Header("Access-Control-Allow-Credentials", "true")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func originAllowed(origin string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(origin) {
			return true
		}
	}
	return false
}
