package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Alias1177/CardioPredictor/internal/app"
	"github.com/Alias1177/CardioPredictor/internal/bot"
	"github.com/Alias1177/CardioPredictor/internal/config"
	"github.com/Alias1177/CardioPredictor/internal/features"
	"github.com/Alias1177/CardioPredictor/internal/history"
	"github.com/Alias1177/CardioPredictor/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load(config.Overrides{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	logCloser := app.SetupLogging(cfg.LogLevel, cfg.LogFile)
	defer logCloser.Close()

	// Get bot token from environment
	if cfg.TelegramBotToken == "" {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN not set in environment")
	}

	storage, storageCloser, err := app.OpenHistoryStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.HistoryBackend).Msg("Failed to open history storage")
	}
	defer storageCloser.Close()

	client := app.NewPredictionClient(cfg)
	handler := bot.NewHandler(func(chatID int64) *session.Controller {
		return session.New(session.Options{
			Schema:    features.Heart(),
			Predictor: client,
			History:   history.NewStore(storage, history.WithKey(fmt.Sprintf("%s:%d", history.DefaultKey, chatID))),
		})
	})

	// Initialize Telegram bot
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}
	log.Info().
		Str("username", api.Self.UserName).
		Str("api_base", client.BaseURL()).
		Msg("Authorized on Telegram")

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandling(cancel, api)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := api.GetUpdatesChan(updateConfig)

	for update := range updates {
		if update.Message == nil {
			continue
		}
		go handleMessage(ctx, api, handler, update.Message)
	}
	log.Info().Msg("Bot stopped")
}

// handleMessage answers one message and sends the reply with the main menu
func handleMessage(ctx context.Context, api *tgbotapi.BotAPI, handler *bot.Handler, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	reply := handler.Handle(ctx, chatID, message.Text)

	msg := tgbotapi.NewMessage(chatID, reply)
	msg.ReplyMarkup = bot.MainMenuKeyboard()
	if _, err := api.Send(msg); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send reply")
	}
}

// setupSignalHandling configures handling of OS signals
func setupSignalHandling(cancel context.CancelFunc, api *tgbotapi.BotAPI) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")
		cancel()
		api.StopReceivingUpdates()
	}()
}
