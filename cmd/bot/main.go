package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/quizairium/trivia-bot/internal/config"
	"github.com/quizairium/trivia-bot/internal/delivery/telegram"
	"github.com/quizairium/trivia-bot/internal/game"
	"github.com/quizairium/trivia-bot/internal/generator"
	"github.com/quizairium/trivia-bot/internal/infra/postgres"
	"github.com/quizairium/trivia-bot/internal/infra/postgres/repository"
	"github.com/quizairium/trivia-bot/internal/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zapLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zapLogger.Sync() }()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		zapLogger.Fatal("failed to create bot api", zap.Error(err))
	}

	// Set commands.
	commands := []tgbotapi.BotCommand{
		{
			Command:     "start",
			Description: "Start a new trivia game",
		},
		{
			Command:     "end",
			Description: "End the current game early",
		},
		{
			Command:     "stats",
			Description: "Show your stats in this chat",
		},
		{
			Command:     "leaderboard",
			Description: "Show the chat leaderboard",
		},
		{
			Command:     "help",
			Description: "Help",
		},
	}

	_, err = bot.Request(tgbotapi.NewSetMyCommands(commands...))
	if err != nil {
		zapLogger.Warn("failed to set bot commands", zap.Error(err))
	}

	zapLogger.Info("authorized on telegram", zap.String("account", bot.Self.UserName))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB.URL, postgres.PoolConfig{
		MaxConns:        int32(cfg.DB.MaxConnections),
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		zapLogger.Fatal("failed to create postgres pool", zap.Error(err))
	}
	defer pool.Close()

	gameRepo := repository.NewGameRepository(pool)
	scoreRepo := repository.NewScoreRepository(pool)

	provider := generator.New(cfg.OpenAIAPIKey, generator.Config{
		Model:       cfg.Provider.Model,
		Timeout:     cfg.Provider.Timeout,
		UseFallback: cfg.Provider.UseFallback,
	}, zapLogger)

	manager := game.NewManager(
		game.Config{
			AnswerWindow: cfg.Game.AnswerWindow,
			DecayDivisor: cfg.Game.DecayDivisor,
			BaseBonus:    cfg.Game.BaseBonus,
			MinElapsed:   cfg.Game.MinElapsed,
			AnswerGrace:  cfg.Game.AnswerGrace,
			TimeoutGrace: cfg.Game.TimeoutGrace,
			StartDelay:   cfg.Game.StartDelay,
			ConfigTTL:    cfg.Game.ConfigTTL,
		},
		game.NewRegistry(),
		game.NewScheduler(),
		provider,
		gameRepo,
		scoreRepo,
		zapLogger,
	)
	manager.SetNotifier(telegram.NewNotifier(bot, zapLogger))

	go manager.Run(ctx)

	handler := telegram.NewHandler(
		bot,
		zapLogger,
		telegram.Config{
			LeaderboardSize: cfg.LeaderboardSize,
			StartDelay:      cfg.Game.StartDelay,
		},
		manager,
		scoreRepo,
	)
	if err := handler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zapLogger.Error("handler stopped", zap.Error(err))
	}

	zapLogger.Info("shutdown signal received")
}
