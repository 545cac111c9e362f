// Package app собирает зависимости сервиса из конфига.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/kovalyov-valentin/airport-news-feed/internal/airport"
	"github.com/kovalyov-valentin/airport-news-feed/internal/bot"
	"github.com/kovalyov-valentin/airport-news-feed/internal/bot/middleware"
	"github.com/kovalyov-valentin/airport-news-feed/internal/botkit"
	"github.com/kovalyov-valentin/airport-news-feed/internal/config"
	"github.com/kovalyov-valentin/airport-news-feed/internal/fetcher"
	"github.com/kovalyov-valentin/airport-news-feed/internal/matcher"
	"github.com/kovalyov-valentin/airport-news-feed/internal/metrics"
	"github.com/kovalyov-valentin/airport-news-feed/internal/model"
	"github.com/kovalyov-valentin/airport-news-feed/internal/newsfeed"
	"github.com/kovalyov-valentin/airport-news-feed/internal/server"
	"github.com/kovalyov-valentin/airport-news-feed/internal/source"
	"github.com/kovalyov-valentin/airport-news-feed/internal/storage"
	"github.com/kovalyov-valentin/airport-news-feed/internal/storage/memstore"
	"github.com/kovalyov-valentin/airport-news-feed/internal/storage/mongostore"
)

// Все, что умеет любое из хранилищ
type Store interface {
	fetcher.NewsStorage
	newsfeed.NewsFinder
	fetcher.SourceProvider
	bot.SourceStorage
	bot.SourceDeleter
	server.Pinger
	AirportByCode(ctx context.Context, code string) (*model.Airport, error)
	UpsertAirports(ctx context.Context, airports []model.Airport) error
}

// Postgres хранилище собрано из отдельных таблиц
type postgresStore struct {
	*storage.NewsPostgresStorage
	*storage.SourcePostgresStorage
	*storage.AirportPostgresStorage
	*storage.Pinger
}

type App struct {
	Config  config.Config
	Store   Store
	Metrics *metrics.Metrics
	Fetcher *fetcher.Fetcher
	Feeds   *newsfeed.Service
	Server  *server.Server
	// nil, если не задан telegram_bot_token
	Bot *botkit.Bot

	trigger *fetcher.WindowTrigger
	closers []func(ctx context.Context) error
	log     logrus.FieldLogger
}

func New(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*App, error) {
	a := &App{Config: cfg, Metrics: metrics.New(), log: log}

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	a.Store = store

	airports, err := a.airportProvider(ctx)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	m, err := matcher.New(cfg.Matcher, cfg.SimilarityThreshold)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	loader := source.NewLoader(
		&http.Client{Timeout: cfg.FetchTimeout},
		cfg.UserAgent,
		cfg.EnrichEmptyBodies,
		log,
	)

	static := append(fetcher.StaticSources{}, cfg.FeedSources...)
	if cfg.UseDefaultFeeds {
		static = append(static, source.DefaultFeeds...)
	}

	a.Fetcher = fetcher.NewFetcher(
		store,
		fetcher.MergedSources{static, store},
		loader,
		cfg.FetchInterval,
		cfg.FetchTimeout,
		a.Metrics,
		log,
	)
	a.Feeds = newsfeed.NewService(airports, store, m, cfg.SortByDate, log)

	// Интерфейс с nil указателем внутри не равен nil, поэтому присваиваем только включенный триггер
	var trigger server.Trigger
	if cfg.OpportunisticWindow {
		a.trigger = fetcher.NewWindowTrigger(ctx, a.Fetcher, log)
		trigger = a.trigger
	}
	a.Server = server.New(a.Feeds, store, trigger, a.Metrics, cfg.SiteURL, log)

	if cfg.TelegramBotToken != "" {
		api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("create bot: %w", err)
		}
		a.Bot = NewBot(api, store, a.Feeds, cfg.TelegramChannelID, log)
	}

	return a, nil
}

// NewBot регистрирует команды. Изменять источники могут только админы канала
func NewBot(api *tgbotapi.BotAPI, store Store, feeds bot.FeedService, channelID int64, log logrus.FieldLogger) *botkit.Bot {
	b := botkit.New(api, log)
	b.RegisterCmdView("start", bot.ViewCmdStart())
	b.RegisterCmdView("help", bot.ViewCmdStart())
	b.RegisterCmdView("airport", bot.ViewCmdAirport(feeds))
	b.RegisterCmdView("listsources", bot.ViewCmdListSources(store))
	b.RegisterCmdView("addsource", middleware.AdminOnly(channelID, bot.ViewCmdAddSource(store)))
	b.RegisterCmdView("deletesource", middleware.AdminOnly(channelID, bot.ViewCmdDeleteSource(store)))

	return b
}

func (a *App) openStore(ctx context.Context) (Store, error) {
	switch a.Config.StoreDriver {
	case config.DriverMongo:
		store, err := mongostore.Connect(ctx, mongostore.Config{
			URI:                a.Config.MongoURI,
			Database:           a.Config.DatabaseName,
			NewsCollection:     a.Config.NewsCollection,
			AirportsCollection: a.Config.AirportCollection,
			SourcesCollection:  a.Config.SourcesCollection,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to mongo: %w", err)
		}
		a.closers = append(a.closers, store.Close)

		return store, nil

	case config.DriverPostgres:
		db, err := sqlx.ConnectContext(ctx, "postgres", a.Config.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })

		if err := storage.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}

		return postgresStore{
			NewsPostgresStorage:    storage.NewNewsStorage(db),
			SourcePostgresStorage:  storage.NewSourcePostgresStorage(db),
			AirportPostgresStorage: storage.NewAirportStorage(db),
			Pinger:                 storage.NewPinger(db),
		}, nil

	case config.DriverMemory:
		return memstore.New(), nil
	}

	return nil, fmt.Errorf("unknown store driver %q", a.Config.StoreDriver)
}

// Справочник из файла имеет приоритет. Его содержимое копируется в хранилище,
// чтобы аэропорты были видны и другим экземплярам сервиса
func (a *App) airportProvider(ctx context.Context) (newsfeed.AirportProvider, error) {
	if a.Config.AirportsFile == "" {
		return a.Store, nil
	}

	dir, err := airport.Load(a.Config.AirportsFile)
	if err != nil {
		return nil, err
	}

	if err := a.Store.UpsertAirports(ctx, dir.All()); err != nil {
		return nil, fmt.Errorf("seed airports: %w", err)
	}
	a.log.WithField("airports", dir.Len()).Info("airport directory loaded")

	return dir, nil
}

// Close дожидается фонового прогона и закрывает соединения с хранилищем
func (a *App) Close(ctx context.Context) error {
	if a.trigger != nil {
		a.trigger.Wait()
	}

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil

	return errors.Join(errs...)
}
