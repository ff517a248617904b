//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/airquality-advisor/internal/bootstrap"
	"github.com/yanqian/airquality-advisor/internal/domain/airquality"
	"github.com/yanqian/airquality-advisor/internal/infra/config"
	"github.com/yanqian/airquality-advisor/internal/infra/llm/chatgpt"
	"github.com/yanqian/airquality-advisor/internal/infra/openweather"
	httpiface "github.com/yanqian/airquality-advisor/internal/interface/http"
	"github.com/yanqian/airquality-advisor/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAdvisorConfig,
		provideChatClient,
		provideOpenWeatherClient,
		provideTokenCounter,
		provideHistoryRepository,
		provideLocationStats,
		provideReportStorage,
		provideBackends,
		airquality.NewService,
		wire.Bind(new(airquality.ChatClient), new(*chatgpt.Client)),
		wire.Bind(new(airquality.Geocoder), new(*openweather.Client)),
		wire.Bind(new(airquality.PollutionClient), new(*openweather.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
