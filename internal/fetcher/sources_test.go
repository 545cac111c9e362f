package fetcher_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/kovalyov-valentin/airport-news-feed/internal/fetcher"
	"github.com/kovalyov-valentin/airport-news-feed/internal/model"
	"github.com/kovalyov-valentin/airport-news-feed/internal/storage/memstore"
)

type failingProvider struct{}

func (failingProvider) Sources(context.Context) ([]model.Source, error) {
	return nil, errors.New("store down")
}

func feedURLs(sources []model.Source) []string {
	return lo.Map(sources, func(s model.Source, _ int) string { return s.FeedURL })
}

func TestStaticSources(t *testing.T) {
	sources, err := fetcher.StaticSources{" https://a/feed ", "", "https://b/feed", "https://a/feed"}.Sources(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"https://a/feed", "https://b/feed"}, feedURLs(sources))
}

func TestMergedSources(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	require.NoError(t, store.Add(ctx, model.Source{Name: "B", FeedURL: "https://b/feed"}))
	require.NoError(t, store.Add(ctx, model.Source{Name: "C", FeedURL: "https://c/feed"}))

	merged := fetcher.MergedSources{fetcher.StaticSources{"https://a/feed", "https://b/feed"}, store}

	sources, err := merged.Sources(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"https://a/feed", "https://b/feed", "https://c/feed"}, feedURLs(sources))
}

func TestMergedSourcesPartialFailure(t *testing.T) {
	merged := fetcher.MergedSources{failingProvider{}, fetcher.StaticSources{"https://a/feed"}}

	sources, err := merged.Sources(context.Background())
	require.ErrorContains(t, err, "store down")
	require.Equal(t, []string{"https://a/feed"}, feedURLs(sources))
}
