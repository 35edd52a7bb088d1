package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/carbonlens/internal/domain/auth"
	apperrors "github.com/yanqian/carbonlens/pkg/errors"
)

// authMiddleware requires a valid access token.
func authMiddleware(svc auth.Service) gin.HandlerFunc {
	return bearerAuth(svc, true)
}

// optionalAuthMiddleware lets anonymous requests through but still rejects a bad token,
// so a typo in the header never silently drops attribution.
func optionalAuthMiddleware(svc auth.Service) gin.HandlerFunc {
	return bearerAuth(svc, false)
}

func bearerAuth(svc auth.Service, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if required {
				abortWithError(c, NewHTTPError(http.StatusUnauthorized, apperrors.CodeUnauthorized, "missing authorization header", nil))
				return
			}
			c.Next()
			return
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, apperrors.CodeUnauthorized, "invalid authorization header", nil))
			return
		}
		claims, err := svc.ValidateToken(c.Request.Context(), token)
		if err != nil {
			httpErr := fromDomainError(err, apperrors.CodeAuth)
			// A presented but rejected token is forbidden rather than unauthenticated.
			if httpErr.Code == apperrors.CodeInvalidToken {
				httpErr.Status = http.StatusForbidden
			}
			abortWithError(c, httpErr)
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}
