package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/carbonlens/internal/domain/recommend"
)

// Recommendations returns coaching tips for analyzer values.
func (h *Handler) Recommendations(c *gin.Context) {
	var req recommend.TipsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badRequest(err))
		return
	}
	resp, err := h.recommendSvc.Generate(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "recommendation_failed", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CoachChat answers a follow-up question with conversation memory.
func (h *Handler) CoachChat(c *gin.Context) {
	var req recommend.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badRequest(err))
		return
	}
	resp, err := h.recommendSvc.Chat(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "chat_failed", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
