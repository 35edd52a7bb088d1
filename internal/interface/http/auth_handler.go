package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/carbonlens/internal/domain/auth"
	apperrors "github.com/yanqian/carbonlens/pkg/errors"
)

// Register creates an account.
func (h *Handler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badRequest(err))
		return
	}
	user, err := h.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, apperrors.CodeAuth, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login exchanges credentials for tokens.
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badRequest(err))
		return
	}
	resp, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		h.fail(c, apperrors.CodeAuth, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh rotates an access token.
func (h *Handler) Refresh(c *gin.Context) {
	var req auth.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badRequest(err))
		return
	}
	resp, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.fail(c, apperrors.CodeAuth, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me returns the authenticated profile.
func (h *Handler) Me(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, apperrors.CodeUnauthorized, "missing credentials", nil))
		return
	}
	user, err := h.authSvc.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		h.fail(c, apperrors.CodeAuth, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
