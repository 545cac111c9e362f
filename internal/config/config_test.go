package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kovalyov-valentin/airport-news-feed/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, config.DriverMongo, cfg.StoreDriver)
	require.Equal(t, "news", cfg.NewsCollection)
	require.Equal(t, time.Hour, cfg.FetchInterval)
	require.Equal(t, 30*time.Second, cfg.FetchTimeout)
	require.Equal(t, "substring", cfg.Matcher)
	require.InDelta(t, 0.9, cfg.SimilarityThreshold, 1e-9)
	require.True(t, cfg.SortByDate)
	require.True(t, cfg.UseDefaultFeeds)
	require.False(t, cfg.OpportunisticWindow)
	require.Empty(t, cfg.TelegramBotToken)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("AFD_STORE_DRIVER", "memory")
	t.Setenv("AFD_MATCHER", "similarity")
	t.Setenv("AFD_SIMILARITY_THRESHOLD", "0.75")
	t.Setenv("AFD_FETCH_INTERVAL", "15m")
	t.Setenv("AFD_FEED_SOURCES", "https://simpleflying.com/feed/,https://samchui.com/feed/")
	t.Setenv("AFD_OPPORTUNISTIC_WINDOW", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, config.DriverMemory, cfg.StoreDriver)
	require.Equal(t, "similarity", cfg.Matcher)
	require.InDelta(t, 0.75, cfg.SimilarityThreshold, 1e-9)
	require.Equal(t, 15*time.Minute, cfg.FetchInterval)
	require.Equal(t, []string{"https://simpleflying.com/feed/", "https://samchui.com/feed/"}, cfg.FeedSources)
	require.True(t, cfg.OpportunisticWindow)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("AFD_STORE_DRIVER", "sqlite")

	_, err := config.Load()
	require.ErrorContains(t, err, "store_driver")
}

func TestValidate(t *testing.T) {
	valid := config.Config{
		StoreDriver:         config.DriverMemory,
		Matcher:             "substring",
		SimilarityThreshold: 0.9,
		FetchInterval:       time.Minute,
		FetchTimeout:        time.Second,
		LogLevel:            "info",
	}
	require.NoError(t, valid.Validate())

	testCases := []struct {
		name   string
		mutate func(c *config.Config)
		errMsg string
	}{
		{name: "matcher", mutate: func(c *config.Config) { c.Matcher = "fuzzy" }, errMsg: "unknown matcher"},
		{name: "threshold", mutate: func(c *config.Config) { c.SimilarityThreshold = 1.5 }, errMsg: "similarity_threshold"},
		{name: "interval", mutate: func(c *config.Config) { c.FetchInterval = 0 }, errMsg: "fetch_interval"},
		{name: "log level", mutate: func(c *config.Config) { c.LogLevel = "loud" }, errMsg: "not a valid logrus Level"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			require.ErrorContains(t, cfg.Validate(), tc.errMsg)
		})
	}
}
