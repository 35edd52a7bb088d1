package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/carbonlens/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		errorHandlingMiddleware(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	router.GET("/healthz", handler.Health)

	api := router.Group("/api/v1")
	{
		fp := api.Group("/footprint")
		fp.POST("/compute", optionalAuthMiddleware(handler.authSvc), handler.ComputeFootprint)
		fp.POST("/simulate", handler.SimulateFootprint)
		fp.GET("/profiles", handler.ListProfiles)

		board := api.Group("/leaderboard")
		board.GET("", handler.Leaderboard)
		board.GET("/monthly", handler.MonthlyLeaderboard)
		board.GET("/users/:id", handler.UserStanding)

		api.POST("/recommendations", handler.Recommendations)
		api.POST("/recommendations/chat", handler.CoachChat)

		authGroup := api.Group("/auth")
		authGroup.POST("/register", handler.Register)
		authGroup.POST("/login", handler.Login)
		authGroup.POST("/refresh", handler.Refresh)
		authGroup.GET("/me", authMiddleware(handler.authSvc), handler.Me)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
