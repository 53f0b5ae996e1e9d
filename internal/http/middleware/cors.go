package middleware

import (
	"github.com/gin-gonic/gin"

	"taskapi/internal/api"
)

// CORS attaches the fixed header set to every response, including the ones
// produced before the dispatcher runs.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		for k, v := range api.CORSHeaders() {
			c.Header(k, v)
		}
		c.Next()
	}
}
