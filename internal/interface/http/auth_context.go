package http

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/carbonlens/internal/domain/auth"
	"github.com/yanqian/carbonlens/internal/domain/footprint"
)

const claimsKey = "carbonlens.claims"

func setClaims(c *gin.Context, claims auth.Claims) {
	c.Set(claimsKey, claims)
}

func claimsFrom(c *gin.Context) (auth.Claims, bool) {
	claims, ok := c.Value(claimsKey).(auth.Claims)
	return claims, ok
}

// attributeRun credits an authenticated run to its account. An explicit display
// name wins over the nickname; anonymous requests are left untouched.
func attributeRun(c *gin.Context, req *footprint.AnalyzeRequest) {
	claims, ok := claimsFrom(c)
	if !ok {
		return
	}
	userID := claims.UserID
	req.UserID = &userID
	if strings.TrimSpace(req.DisplayName) == "" {
		req.DisplayName = claims.Nickname
	}
}
