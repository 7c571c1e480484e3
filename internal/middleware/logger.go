package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// RequestLogger logs the start and end of every request
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		logger := log.WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})
		logger.Debugf("Begin %s %s", c.Request.Method, c.Request.URL.Path)

		c.Next()

		logger.WithFields(log.Fields{
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Infof("End %s %s %d", c.Request.Method, c.Request.URL.Path, c.Writer.Status())
	}
}
