package fetcher

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"github.com/kovalyov-valentin/airport-news-feed/internal/model"
)

// Список лент из конфига
type StaticSources []string

func (s StaticSources) Sources(context.Context) ([]model.Source, error) {
	urls := lo.Uniq(lo.FilterMap(s, func(url string, _ int) (string, bool) {
		url = strings.TrimSpace(url)
		return url, url != ""
	}))

	return lo.Map(urls, func(url string, _ int) model.Source {
		return model.Source{Name: url, FeedURL: url}
	}), nil
}

// Склеивает несколько списков источников, повторы по url выкидывает.
// Если какой-то список недоступен, возвращает то, что удалось собрать, и первую ошибку.
type MergedSources []SourceProvider

func (m MergedSources) Sources(ctx context.Context) ([]model.Source, error) {
	var (
		all      []model.Source
		firstErr error
	)

	for _, provider := range m {
		sources, err := provider.Sources(ctx)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		all = append(all, sources...)
	}

	return lo.UniqBy(all, func(s model.Source) string { return s.FeedURL }), firstErr
}
