package internalhttp

import (
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithField("ip", c.ClientIP()).WithField("method", c.Request.Method).WithField("path", c.Request.URL).
			WithField("HTTP version", c.Request.Proto).WithField("user-agent", c.Request.UserAgent()).
			WithField("status", c.Writer.Status()).WithField("latency", time.Since(start)).
			Info("http request processed")
	}
}
