//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/healthcalc/internal/bootstrap"
	"github.com/yanqian/healthcalc/internal/domain/healthcalc"
	"github.com/yanqian/healthcalc/internal/domain/healthtips"
	"github.com/yanqian/healthcalc/internal/domain/history"
	"github.com/yanqian/healthcalc/internal/domain/session"
	"github.com/yanqian/healthcalc/internal/infra/config"
	"github.com/yanqian/healthcalc/internal/infra/llm/chatgpt"
	"github.com/yanqian/healthcalc/internal/infra/tokens"
	httpiface "github.com/yanqian/healthcalc/internal/interface/http"
	"github.com/yanqian/healthcalc/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideTipsConfig,
		provideHistoryConfig,
		provideSessionConfig,
		provideChatGPTClient,
		provideBreakerClient,
		provideTipStore,
		provideHistoryRepository,
		provideEventPublisher,
		provideSessionCalculator,
		provideReadiness,
		tokens.NewCounter,
		healthtips.NewService,
		history.NewService,
		healthcalc.NewService,
		session.NewService,
		wire.Bind(new(healthtips.ChatClient), new(*chatgpt.BreakerClient)),
		wire.Bind(new(healthtips.TokenCounter), new(*tokens.Counter)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
