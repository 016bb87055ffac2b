package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"homework_status_bot/internal/app"
	"homework_status_bot/internal/infra/config"
	"homework_status_bot/internal/infra/logger"
	"homework_status_bot/internal/infra/metrics"
	"homework_status_bot/internal/infra/practicum"
	"homework_status_bot/internal/infra/scheduler"
	"homework_status_bot/internal/infra/telegram"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")

	mainLogger.WithFields(logrus.Fields{
		"environment":   cfg.Environment,
		"poll_interval": cfg.PollInterval.String(),
		"endpoint":      cfg.PracticumURL,
		"chat_id":       cfg.TelegramChatID,
	}).Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Telegram Bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := logger.Component("telebot").WithError(err)
			if c != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{"chat_id": c.Chat().ID, "text": c.Text()})
			}
			entry.Error("Telegram handler error")
		},
	}
	bot, err := telegram.ConnectBot(ctx, pref, telegram.DefaultConnectRetryDelay, logger.Component("telegram"))
	if errors.Is(err, telegram.ErrInvalidToken) {
		mainLogger.WithError(err).Fatal("Could not create Telegram bot")
	}
	if err != nil {
		mainLogger.WithError(err).Info("Interrupted before Telegram became reachable")
		return
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	fetcher := practicum.NewClient(cfg.PracticumURL, cfg.PracticumToken, cfg.RequestTimeout, logger.Component("practicum"))
	notifier := telegram.NewNotifier(telegram.NewTelebotAdapter(bot), cfg.TelegramChatID, cfg.SendRatePerSec, logger.Component("notifier"))
	poller := app.NewStatusPoller(fetcher, notifier, collector, logger.Component("poller"), cfg.StartCursor(time.Now()))
	mainLogger.WithField("cursor", poller.Cursor()).Info("Status poller initialized")

	telegram.RegisterBotCommands(bot, cfg.TelegramChatID, poller, cfg.PollInterval, logger.Component("telegram"))

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(registry))
		metricsServer = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				mainLogger.WithError(err).Error("Metrics server stopped")
			}
		}()
		mainLogger.WithField("addr", cfg.MetricsAddr).Info("Metrics endpoint started")
	}

	// Start bot in a goroutine so the poll loop owns the main goroutine
	go bot.Start()

	pollScheduler := scheduler.NewPollScheduler(cfg.PollInterval, logger.Component("scheduler"))
	pollScheduler.Run(ctx, poller.Step) // returns when a signal arrives

	mainLogger.Info("Shutting down application...")
	bot.Stop()
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			mainLogger.WithError(err).Warn("Metrics server shutdown failed")
		}
	}
	mainLogger.Info("Application shut down gracefully.")
}
