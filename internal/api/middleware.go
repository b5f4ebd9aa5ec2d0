package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codemind-go/internal/pkg/logger"
)

// LoggingMiddleware logs every request through the application logger.
func LoggingMiddleware(log logger.ILogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		latency := time.Since(startTime)

		details := map[string]interface{}{
			"status":  c.Writer.Status(),
			"latency": latency.String(),
			"ip":      c.ClientIP(),
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
		}
		switch {
		case c.Writer.Status() >= 500:
			log.Error("http", "Request failed", details)
		case c.Writer.Status() >= 400:
			log.Warn("http", "Request rejected", details)
		default:
			log.Info("http", "Request handled", details)
		}
	}
}

// CORSMiddleware allows the configured origins; "*" allows any.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Add("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// ErrorHandlerMiddleware renders errors attached with c.Error when the
// handler wrote no body.
func ErrorHandlerMiddleware(log logger.ILogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		for _, err := range c.Errors {
			log.Error("http", "Handler error", map[string]interface{}{"path": c.Request.URL.Path, "error": err.Err})
		}
		if c.Writer.Written() {
			return
		}
		lastErr := c.Errors.Last()
		c.JSON(statusFor(lastErr.Err), gin.H{"error": lastErr.Error()})
	}
}
