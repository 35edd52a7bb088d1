//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/carbonlens/internal/bootstrap"
	"github.com/yanqian/carbonlens/internal/domain/auth"
	"github.com/yanqian/carbonlens/internal/domain/footprint"
	"github.com/yanqian/carbonlens/internal/domain/leaderboard"
	"github.com/yanqian/carbonlens/internal/domain/recommend"
	"github.com/yanqian/carbonlens/internal/infra/config"
	httpiface "github.com/yanqian/carbonlens/internal/interface/http"
	"github.com/yanqian/carbonlens/pkg/logger"
)

func initializeApp(cfg *config.Config) (*bootstrap.App, func(), error) {
	wire.Build(
		logger.New,
		provideFootprintConfig,
		provideLeaderboardConfig,
		provideRecommendConfig,
		provideAuthConfig,
		providePersistence,
		provideRunRepository,
		provideLeaderboardRepository,
		provideAuthRepository,
		provideReportArchive,
		provideTipCache,
		provideChatClient,
		provideTokenCounter,
		footprint.NewService,
		leaderboard.NewService,
		recommend.NewService,
		auth.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
