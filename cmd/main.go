package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kovalyov-valentin/airport-news-feed/internal/app"
	"github.com/kovalyov-valentin/airport-news-feed/internal/config"
	"github.com/kovalyov-valentin/airport-news-feed/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").WithError(err).Fatal("failed to load config")
	}

	log := logger.New(cfg.LogLevel)

	//Graceful Shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Инициализируем наши зависимости
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("failed to init app")
		return
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer closeCancel()

		if err := a.Close(closeCtx); err != nil {
			log.WithError(err).Error("failed to close app")
		}
	}()

	// Воркер fetcher
	go func(ctx context.Context) {
		if err := a.Fetcher.Start(ctx); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("failed to start fetcher")
				return
			}

			log.Info("fetcher stopped")
		}
	}(ctx)

	// Бот запускается только при заданном токене
	if a.Bot != nil {
		go func(ctx context.Context) {
			if err := a.Bot.Run(ctx); err != nil {
				if !errors.Is(err, context.Canceled) {
					log.WithError(err).Error("failed to start bot")
					return
				}

				log.Info("bot stopped")
			}
		}(ctx)
	}

	if err := a.Server.Run(ctx, cfg.HTTPAddr); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("failed to run http server")
			return
		}

		log.Info("http server stopped")
	}
}
