// Разовый прогон сборщика, например из cron
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kovalyov-valentin/airport-news-feed/internal/app"
	"github.com/kovalyov-valentin/airport-news-feed/internal/config"
	"github.com/kovalyov-valentin/airport-news-feed/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").WithError(err).Error("failed to load config")
		return 1
	}

	// Боту в разовом прогоне делать нечего
	cfg.TelegramBotToken = ""

	log := logger.New(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("failed to init app")
		return 1
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer closeCancel()

		if err := a.Close(closeCtx); err != nil {
			log.WithError(err).Error("failed to close app")
		}
	}()

	report, err := a.Fetcher.Fetch(ctx)
	if err != nil {
		log.WithError(err).Error("ingestion run failed")
		return 1
	}

	log.WithFields(logrus.Fields{
		"sources":  report.Sources,
		"failed":   report.FailedSources,
		"parsed":   report.Parsed,
		"new":      report.New,
		"inserted": report.Inserted,
	}).Info("ingestion run finished")

	return 0
}
