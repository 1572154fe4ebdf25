package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Spok95/telegram-events-bot/internal/app"
	"github.com/Spok95/telegram-events-bot/internal/booking"
	"github.com/Spok95/telegram-events-bot/internal/config"
	"github.com/Spok95/telegram-events-bot/internal/db"
	"github.com/Spok95/telegram-events-bot/internal/jobs"
	"github.com/Spok95/telegram-events-bot/internal/logging"
	"github.com/Spok95/telegram-events-bot/internal/models"
	"github.com/Spok95/telegram-events-bot/internal/observability"
	"github.com/Spok95/telegram-events-bot/internal/session"
	"github.com/Spok95/telegram-events-bot/internal/wizard"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Загрузка переменных окружения
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer lg.Closer()
	logger := lg.Base

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, cfg.Release)
	if err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer database.Close()

	if err := db.Migrate(ctx, database.DB); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Fatal("bot init", zap.Error(err))
	}
	logger.Info("bot started", zap.String("username", bot.Self.UserName))

	if _, err := bot.Request(tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Главное меню"},
		tgbotapi.BotCommand{Command: "id", Description: "Мой Telegram ID"},
	)); err != nil {
		logger.Warn("set commands", zap.Error(err))
	}

	var sessions session.Store = db.SessionStore{DB: database}
	if cfg.SessionStore == config.SessionStoreMemory {
		sessions = session.NewMemory()
	}

	repo := &db.Repo{DB: database, Policy: booking.Policy{ZeroUnlimited: cfg.ZeroQuotaUnlimited}}
	dispatcher := app.NewDispatcher(bot, repo, sessions, wizard.New(repo), cfg, logger)

	app.StartHTTP(ctx, cfg.HTTPAddr, database, logger)

	runner := jobs.New(ctx, logger)
	runner.Every(time.Minute, "stats", jobs.Stats(func(ctx context.Context, now time.Time) (models.Stats, error) {
		return db.CountStats(ctx, database, now)
	}))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		bot.StopReceivingUpdates()
	}()

	dispatcher.Run(ctx, updates)
	runner.Wait()
}
