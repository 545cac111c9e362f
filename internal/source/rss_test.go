package source_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/kovalyov-valentin/airport-news-feed/internal/logger"
	"github.com/kovalyov-valentin/airport-news-feed/internal/source"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:dc="http://purl.org/dc/elements/1.1/">
	<channel>
		<title>Aviation</title>
		<item>
			<title>  New route to Istanbul  </title>
			<description><![CDATA[<p>Flights to <b>Istanbul</b> &amp; beyond</p>]]></description>
			<link>https://example.com/ist</link>
			<pubDate>Wed, 03 May 2023 15:04:05 +0000</pubDate>
			<dc:creator>Jane Doe</dc:creator>
		</item>
		<item>
			<title>Content only</title>
			<content:encoded><![CDATA[<div>Heathrow <i>terminal</i> news</div>]]></content:encoded>
			<link>https://example.com/lhr</link>
		</item>
		<item>
			<title>No link</title>
			<description>lost</description>
		</item>
		<item>
			<title>Bad date</title>
			<link>https://example.com/bad</link>
			<pubDate>sometime soon</pubDate>
		</item>
	</channel>
</rss>`

func newLoader(enrich bool) *source.Loader {
	return source.NewLoader(http.DefaultClient, "", enrich, logger.Discard())
}

func serve(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return server
}

func TestLoad(t *testing.T) {
	userAgent := make(chan string, 1)
	server := serve(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case userAgent <- r.Header.Get("User-Agent"):
		default:
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feedXML))
	})

	records, err := newLoader(false).Load(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, source.DefaultUserAgent, <-userAgent)
	require.Len(t, records, 3)

	first := records[0]
	require.Equal(t, "New route to Istanbul", first.Title)
	require.Equal(t, "Flights to Istanbul & beyond", first.Body)
	require.Equal(t, "https://example.com/ist", first.Link)
	require.Equal(t, "Jane Doe", lo.FromPtr(first.Author))
	require.Equal(t, "Wed, 03 May 2023 15:04:05 +0000", lo.FromPtr(first.PublishedDateRaw))
	require.Equal(t, "2023-05-03", lo.FromPtr(first.PublishedDate))
	require.Equal(t, "15:04:05", lo.FromPtr(first.PublishedTime))

	second := records[1]
	require.Equal(t, "Heathrow terminal news", second.Body)
	require.Nil(t, second.PublishedDateRaw)
	require.Nil(t, second.PublishedDate)
	require.Nil(t, second.Author)

	third := records[2]
	require.Empty(t, third.Body)
	require.Equal(t, "sometime soon", lo.FromPtr(third.PublishedDateRaw))
	require.Nil(t, third.PublishedDate)
	require.Nil(t, third.PublishedTime)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "not a feed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("this is not xml"))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := serve(t, tc.handler)

			records, err := newLoader(false).Load(context.Background(), server.URL)
			require.Error(t, err)
			require.Contains(t, err.Error(), server.URL)
			require.Nil(t, records)
		})
	}
}

func TestLoadCanceled(t *testing.T) {
	server := serve(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newLoader(false).Load(ctx, server.URL)
	require.Error(t, err)
}

func TestLoadEnrichesEmptyBodies(t *testing.T) {
	var server *httptest.Server
	server = serve(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/feed":
			xml := strings.ReplaceAll(`<?xml version="1.0"?>
<rss version="2.0"><channel><title>t</title>
<item><title>Empty</title><link>{{base}}/article</link></item>
<item><title>Broken</title><link>{{base}}/missing</link></item>
</channel></rss>`, "{{base}}", server.URL)
			_, _ = w.Write([]byte(xml))
		case "/article":
			_, _ = w.Write([]byte(`<html><head><title>Article</title></head><body>
<article><h1>Article</h1>
<p>Istanbul Airport opened a new terminal today, handling more passengers than ever before in its history.</p>
<p>Airlines expect traffic to keep growing through the summer season as new routes are added across Europe.</p>
<p>The new terminal adds forty gates, a larger security hall and a rail link that connects the airport with the city centre in under thirty minutes.</p>
<p>Officials said the expansion was completed ahead of schedule and that further work on a third runway will begin next spring, subject to approval.</p>
</article></body></html>`))
		default:
			http.NotFound(w, r)
		}
	})

	records, err := newLoader(true).Load(context.Background(), server.URL+"/feed")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Contains(t, records[0].Body, "Istanbul Airport opened a new terminal")
	require.Empty(t, records[1].Body)

	records, err = newLoader(false).Load(context.Background(), server.URL+"/feed")
	require.NoError(t, err)
	require.Empty(t, records[0].Body)
}

func TestStripHTML(t *testing.T) {
	require.Equal(t, "", source.StripHTML("   "))
	require.Equal(t, "plain text", source.StripHTML(" plain text "))
	require.Equal(t, "a b", source.StripHTML("<p>a <span>b</span></p>"))
	require.Equal(t, "Tom & Jerry", source.StripHTML("Tom &amp; Jerry"))
}
