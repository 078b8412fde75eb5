package middleware

import "github.com/gin-gonic/gin"

// ServerHeader stamps the service identity on every response. It runs before
// routing outcomes are decided, so 404, 405 and 429 replies carry it too.
func ServerHeader(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if name != "" {
			c.Writer.Header().Set("Server", name)
		}
		c.Next()
	}
}
