package middleware

import (
	"time" // Request latency

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// RequestLogger logs one structured line per request
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logrus.WithFields(logrus.Fields{
			"status":    c.Writer.Status(),
			"method":    c.Request.Method,
			"path":      c.FullPath(),
			"client_ip": c.ClientIP(),
			"latency":   time.Since(start).String(),
		})
		switch {
		case c.Writer.Status() >= 500:
			entry.Error("Request")
		case c.Writer.Status() >= 400:
			entry.Warn("Request")
		default:
			entry.Info("Request")
		}
	}
}
