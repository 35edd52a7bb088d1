package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// corsPolicy answers browser dashboards. An empty list or "*" allows any origin;
// otherwise only listed origins are echoed back.
type corsPolicy struct {
	anyOrigin bool
	origins   map[string]string
}

func newCORSPolicy(allowed []string) corsPolicy {
	p := corsPolicy{anyOrigin: len(allowed) == 0, origins: make(map[string]string, len(allowed))}
	for _, origin := range allowed {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "*" {
			p.anyOrigin = true
			continue
		}
		if origin != "" {
			p.origins[strings.ToLower(origin)] = origin
		}
	}
	return p
}

// allow returns the Access-Control-Allow-Origin value, or "" when the origin is not allowed.
func (p corsPolicy) allow(origin string) string {
	if p.anyOrigin {
		return "*"
	}
	if canonical, ok := p.origins[strings.ToLower(origin)]; ok {
		return canonical
	}
	return ""
}

func corsMiddleware(allowed []string) gin.HandlerFunc {
	policy := newCORSPolicy(allowed)
	return func(c *gin.Context) {
		headers := c.Writer.Header()
		if !policy.anyOrigin {
			headers.Add("Vary", "Origin")
		}
		if origin := policy.allow(c.GetHeader("Origin")); origin != "" {
			headers.Set("Access-Control-Allow-Origin", origin)
			headers.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			headers.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			headers.Set("Access-Control-Max-Age", "600")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
