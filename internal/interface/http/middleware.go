package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// errorHandlingMiddleware renders the last error attached by a handler.
func errorHandlingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		httpErr := asHTTPError(c.Errors.Last().Err)
		attrs := []any{"code", httpErr.Code, "status", httpErr.Status, "route", routeOf(c)}
		if httpErr.Err != nil {
			attrs = append(attrs, "error", httpErr.Err)
		}
		if httpErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed", attrs...)
		} else {
			logger.Warn("request rejected", attrs...)
		}

		message := httpErr.Message
		if message == "" {
			message = http.StatusText(httpErr.Status)
		}
		c.JSON(httpErr.Status, gin.H{"error": gin.H{"code": httpErr.Code, "message": message}})
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"route", routeOf(c),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

// routeOf prefers the matched route template so /leaderboard/users/:id logs as one route.
func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return c.Request.URL.Path
}
