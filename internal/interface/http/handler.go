package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/carbonlens/internal/domain/auth"
	"github.com/yanqian/carbonlens/internal/domain/footprint"
	"github.com/yanqian/carbonlens/internal/domain/leaderboard"
	"github.com/yanqian/carbonlens/internal/domain/recommend"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	footprintSvc   footprint.Service
	leaderboardSvc leaderboard.Service
	recommendSvc   recommend.Service
	authSvc        auth.Service
	logger         *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(footprintSvc footprint.Service, leaderboardSvc leaderboard.Service, recommendSvc recommend.Service, authSvc auth.Service, logger *slog.Logger) *Handler {
	return &Handler{
		footprintSvc:   footprintSvc,
		leaderboardSvc: leaderboardSvc,
		recommendSvc:   recommendSvc,
		authSvc:        authSvc,
		logger:         logger.With("component", "http.handler"),
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ComputeFootprint runs the analyzer and records the run on the leaderboard.
func (h *Handler) ComputeFootprint(c *gin.Context) {
	var req footprint.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badRequest(err))
		return
	}
	attributeRun(c, &req)

	resp, err := h.footprintSvc.Analyze(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "compute_failed", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SimulateFootprint applies reduction levers to a baseline.
func (h *Handler) SimulateFootprint(c *gin.Context) {
	var req footprint.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badRequest(err))
		return
	}
	resp, err := h.footprintSvc.Simulate(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "simulate_failed", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListProfiles returns the preset lifestyles with their scores.
func (h *Handler) ListProfiles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"profiles": h.footprintSvc.Profiles(c.Request.Context()),
		"presets":  footprint.PresetNames(),
	})
}

// Leaderboard returns the all-time board.
func (h *Handler) Leaderboard(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be an integer", err))
			return
		}
		limit = parsed
	}
	board, err := h.leaderboardSvc.Top(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, "leaderboard_failed", err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// MonthlyLeaderboard returns the rolling monthly board.
func (h *Handler) MonthlyLeaderboard(c *gin.Context) {
	board, err := h.leaderboardSvc.Monthly(c.Request.Context())
	if err != nil {
		h.fail(c, "leaderboard_failed", err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// UserStanding returns a user's best all-time rank.
func (h *Handler) UserStanding(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "user id must be an integer", err))
		return
	}
	standing, err := h.leaderboardSvc.UserRank(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, "leaderboard_failed", err)
		return
	}
	c.JSON(http.StatusOK, standing)
}

func (h *Handler) fail(c *gin.Context, fallbackCode string, err error) {
	abortWithError(c, fromDomainError(err, fallbackCode))
}
