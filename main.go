package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ryab476/hotel-booking/api"
	"github.com/ryab476/hotel-booking/booking"
	"github.com/ryab476/hotel-booking/bot"
	"github.com/ryab476/hotel-booking/config"
	"github.com/ryab476/hotel-booking/logging"
	"github.com/ryab476/hotel-booking/notify"
	"github.com/ryab476/hotel-booking/storage"
	"github.com/ryab476/hotel-booking/worker"
)

func main() {
	config.Load()
	logger := logging.Init()
	defer logger.Sync()

	cfg := config.AppConfig
	if cfg.BotToken == "" {
		logger.Fatal("Telegram bot token is required. Set BOT_TOKEN in the environment or config file")
	}

	// Initialize SQLite storage
	store, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		logger.Fatal("Failed to initialize SQLite storage",
			zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer store.Close()

	// One API client shared by the bot transport and the operator notifier
	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Fatal("Failed to create Telegram API client", zap.Error(err))
	}

	var notifier notify.Notifier
	if cfg.AdminChatID != 0 {
		notifier = notify.NewTelegramNotifier(botAPI, cfg.AdminChatID)
	} else {
		logger.Warn("ADMIN_CHAT_ID not set, operator notifications go to the log only")
		notifier = notify.NewConsoleNotifier()
	}

	svc := booking.NewService(store, notifier, logger)

	telegramBot := bot.New(botAPI, store, svc, bot.Options{
		AdminName:    cfg.AdminName,
		AdminContact: cfg.AdminContact,
		MiniAppURL:   cfg.MiniAppURL,
	}, logger)

	apiServer := api.NewServer(store, cfg.APIPort, logger)

	reaper := worker.NewReaper(telegramBot, time.Duration(cfg.SessionTTLHours)*time.Hour, logger)
	reaper.Start()

	go func() {
		if err := telegramBot.Start(); err != nil {
			logger.Fatal("Failed to start bot", zap.Error(err))
		}
	}()
	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Fatal("Failed to start API server", zap.Error(err))
		}
	}()

	// Wait for termination signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-sigCh
	logger.Info("Received signal, shutting down", zap.String("signal", receivedSignal.String()))

	reaper.Stop()
	telegramBot.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("API server shutdown failed", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}
