package fetcher

import (
	"context"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/kovalyov-valentin/airport-news-feed/internal/dedupe"
	"github.com/kovalyov-valentin/airport-news-feed/internal/metrics"
	"github.com/kovalyov-valentin/airport-news-feed/internal/model"
)

type NewsStorage interface {
	DistinctLinks(ctx context.Context) ([]string, error)
	InsertMany(ctx context.Context, records []model.NewsRecord) (int, error)
}

type SourceProvider interface {
	Sources(ctx context.Context) ([]model.Source, error)
}

// Загрузчик одной ленты. Реализован в пакете source
type FeedLoader interface {
	Load(ctx context.Context, url string) ([]model.NewsRecord, error)
}

// Итог одного прогона
type Report struct {
	Sources       int
	FailedSources int
	Parsed        int
	New           int
	Inserted      int
}

// Структура сборщика
type Fetcher struct {
	// Хранилище новостей
	news NewsStorage
	// Откуда берем список лент
	sources SourceProvider
	loader  FeedLoader

	// Как часто нам надо обновлять источники и доставать статьи
	fetchInterval time.Duration
	// Сколько ждем один источник
	fetchTimeout time.Duration

	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

func NewFetcher(
	news NewsStorage,
	sources SourceProvider,
	loader FeedLoader,
	fetchInterval time.Duration,
	fetchTimeout time.Duration,
	m *metrics.Metrics,
	log logrus.FieldLogger,
) *Fetcher {
	return &Fetcher{
		news:          news,
		sources:       sources,
		loader:        loader,
		fetchInterval: fetchInterval,
		fetchTimeout:  fetchTimeout,
		metrics:       m,
		log:           log.WithField("component", "fetcher"),
	}
}

// Метод для запуска Fetcher.
// Работает в отдельной горутине как самостоятельный воркер: сразу делает прогон,
// потом повторяет его каждые fetchInterval. Ошибки прогона логируются, воркер продолжает работу.
func (f *Fetcher) Start(ctx context.Context) error {
	ticker := time.NewTicker(f.fetchInterval)
	defer ticker.Stop()

	f.runLogged(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			f.runLogged(ctx)
		}
	}
}

func (f *Fetcher) runLogged(ctx context.Context) {
	report, err := f.Fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			f.log.WithError(err).Error("ingestion run failed")
		}
		return
	}

	f.log.WithFields(logrus.Fields{
		"sources":  report.Sources,
		"failed":   report.FailedSources,
		"parsed":   report.Parsed,
		"new":      report.New,
		"inserted": report.Inserted,
	}).Info("ingestion run finished")
}

// Один прогон: забираем все ленты параллельно, отсеиваем то, что уже есть в базе, и сохраняем остальное.
// Упавший источник не ломает прогон. Ошибка возвращается только если недоступно хранилище.
func (f *Fetcher) Fetch(ctx context.Context) (Report, error) {
	start := time.Now()

	report, err := f.fetch(ctx)

	f.metrics.IngestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		f.metrics.IngestRuns.WithLabelValues("error").Inc()
		return report, err
	}
	f.metrics.IngestRuns.WithLabelValues("ok").Inc()

	return report, nil
}

func (f *Fetcher) fetch(ctx context.Context) (Report, error) {
	var report Report

	sources, err := f.sources.Sources(ctx)
	if err != nil {
		if len(sources) == 0 {
			return report, model.WrapStoreError("list sources", err)
		}
		f.log.WithError(err).Warn("part of the sources is unavailable")
	}
	report.Sources = len(sources)

	records, failed := f.loadAll(ctx, sources)
	report.FailedSources = failed

	records = lo.Filter(records, func(r model.NewsRecord, _ int) bool {
		if err := r.Validate(); err != nil {
			f.log.WithError(err).WithField("link", r.Link).Debug("skip record")
			return false
		}
		return true
	})
	report.Parsed = len(records)
	f.metrics.Records.WithLabelValues("parsed").Add(float64(report.Parsed))

	existing, err := f.news.DistinctLinks(ctx)
	if err != nil {
		return report, model.WrapStoreError("distinct links", err)
	}

	fresh := dedupe.FilterNew(records, existing)
	report.New = len(fresh)
	f.metrics.Records.WithLabelValues("new").Add(float64(report.New))

	if len(fresh) == 0 {
		return report, nil
	}

	inserted, err := f.news.InsertMany(ctx, fresh)
	if err != nil {
		return report, model.WrapStoreError("insert news", err)
	}
	report.Inserted = inserted
	f.metrics.Records.WithLabelValues("inserted").Add(float64(inserted))

	return report, nil
}

// Ходим по источникам параллельно, чтобы медленный или сломанный источник не задерживал остальные.
// Результаты склеиваются в порядке источников.
func (f *Fetcher) loadAll(ctx context.Context, sources []model.Source) ([]model.NewsRecord, int) {
	var (
		wg      sync.WaitGroup
		results = make([][]model.NewsRecord, len(sources))
		errs    = make([]error, len(sources))
	)

	for i, src := range sources {
		wg.Add(1)

		go func(i int, src model.Source) {
			defer wg.Done()

			srcCtx, cancel := context.WithTimeout(ctx, f.fetchTimeout)
			defer cancel()

			results[i], errs[i] = f.loader.Load(srcCtx, src.FeedURL)
		}(i, src)
	}

	wg.Wait()

	var failed int
	for i, err := range errs {
		log := f.log.WithFields(logrus.Fields{"source": sources[i].FeedURL, "name": sources[i].Name})

		if err != nil {
			failed++
			results[i] = nil
			f.metrics.SourceFetches.WithLabelValues("error").Inc()
			log.WithError(err).Error("failed to fetch source")
			continue
		}

		f.metrics.SourceFetches.WithLabelValues("ok").Inc()
		log.WithField("records", len(results[i])).Debug("source fetched")
	}

	return lo.Flatten(results), failed
}
