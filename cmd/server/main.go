package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"travelguide/config"
	"travelguide/internal/adapter/feishu"
	"travelguide/internal/adapter/rest"
	"travelguide/internal/agent"
	"travelguide/internal/conversation"
	"travelguide/internal/core"
	"travelguide/internal/llm"
	"travelguide/internal/speech"
	"travelguide/internal/weather"
)

func newLogger(cfg config.ServerConfig) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Unable to build logger: %v", err)
	}
	return logger
}

func main() {
	// 1. Init Config
	config.Init()
	cfg := config.AppConfig

	// 2. Init Logger
	logger := newLogger(cfg.Server)
	defer logger.Sync()

	// 3. Init upstream clients (keys are checked per call, not here)
	llmProvider := llm.NewProvider(cfg.LLM)
	weatherSvc := weather.NewOpenWeather(cfg.Weather, logger)
	transcriber := speech.NewWhisper(cfg.Speech, cfg.LLM)

	// 4. Init Agent + Dispatcher
	travelAgent := agent.NewTravelAgent(llmProvider, weatherSvc, logger)
	dispatcher := core.NewDispatcher(logger)
	dispatcher.RegisterAgent(travelAgent)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Feishu Adapter (optional)
	lang := conversation.ParseLanguage(cfg.Server.DefaultLanguage, conversation.DefaultLanguage)
	feishuAdapter := feishu.NewAdapter(cfg.Feishu, lang, dispatcher, logger)
	if feishuAdapter.Enabled() {
		go func() {
			if err := feishuAdapter.StartWS(ctx); err != nil {
				logger.Error("Failed to start Feishu WS", zap.Error(err))
			}
		}()
	}

	// 6. REST API (blocks until shutdown)
	restAdapter := rest.NewAdapter(cfg.Server, dispatcher, transcriber, logger)
	if err := restAdapter.Start(ctx); err != nil {
		logger.Fatal("REST Server failed", zap.Error(err))
	}
	logger.Info("Server stopped")
}
