package dedupe_test

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/kovalyov-valentin/airport-news-feed/internal/dedupe"
	"github.com/kovalyov-valentin/airport-news-feed/internal/model"
)

func records(links ...string) []model.NewsRecord {
	return lo.Map(links, func(link string, _ int) model.NewsRecord {
		return model.NewsRecord{Title: "t " + link, Link: link}
	})
}

func linksOf(rs []model.NewsRecord) []string {
	return lo.Map(rs, func(r model.NewsRecord, _ int) string { return r.Link })
}

func TestFilterNewKeepsOrder(t *testing.T) {
	in := records("https://a/1", "https://a/2", "https://a/3", "https://a/4")

	got := dedupe.FilterNew(in, []string{"https://a/2", "https://a/4"})
	require.Equal(t, []string{"https://a/1", "https://a/3"}, linksOf(got))
}

func TestFilterNewEmptyExisting(t *testing.T) {
	in := records("https://a/1", "https://a/2")

	got := dedupe.FilterNew(in, nil)
	require.Equal(t, in, got)
}

func TestFilterNewAllKnown(t *testing.T) {
	in := records("https://a/1")

	require.Empty(t, dedupe.FilterNew(in, []string{"https://a/1"}))
	require.Empty(t, dedupe.FilterNew(nil, []string{"https://a/1"}))
}

func TestFilterNewIdempotent(t *testing.T) {
	in := records("https://a/1", "https://a/2")
	store := []string{"https://a/0"}

	fresh := dedupe.FilterNew(in, store)
	require.Len(t, fresh, 2)

	store = append(store, linksOf(fresh)...)
	require.Empty(t, dedupe.FilterNew(in, store))
}

func TestFilterNewKeepsBatchDuplicates(t *testing.T) {
	in := records("https://a/1", "https://a/1")

	got := dedupe.FilterNew(in, nil)
	require.Len(t, got, 2)
}
